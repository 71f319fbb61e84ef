package fetcher

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	outcomes := []struct {
		body []byte
		err  error
	}{
		{body: []byte(`{"id":1,"name":"Latte"}`)},
		{body: []byte(`{"id":2,"name":"Mocha"}`)},
		{err: errors.New("connection refused")},
		{body: []byte(`not json`)},
	}

	for _, o := range outcomes {
		fetcher := newTestFetcher(t, WithTransport[Coffee](stubTransport(o.body, o.err)), WithMetrics[Coffee](metrics))
		await(t, fetcher.LoadAsync(NewResource[Coffee]("/coffees/1")))
	}

	urlFetcher := newTestFetcher(t, WithTransport[Coffee](stubTransport(nil, nil)), WithMetrics[Coffee](metrics))
	await(t, urlFetcher.LoadAsync(NewResource[Coffee]("")))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.loads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.loads.WithLabelValues("domainError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.loads.WithLabelValues("decodingError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.loads.WithLabelValues("urlError")))
	assert.Equal(t, 4, testutil.CollectAndCount(metrics.duration), "One histogram series per observed outcome")
}

func TestMetricsDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err, "Registering the same collectors twice must fail")
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	assert.NotPanics(t, func() { metrics.observe(outcomeSuccess, time.Millisecond) })
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", outcomeOf(nil))
	assert.Equal(t, "domainError", outcomeOf(&LoadError{Kind: KindDomain}))
	assert.Equal(t, "unknown", outcomeOf(errors.New("plain")))
}
