package fetcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const outcomeSuccess = "success"

// Metrics counts loads and their latency per outcome. The outcome label is "success" or one
// of the error kind names. A nil *Metrics is valid and records nothing.
type Metrics struct {
	loads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics function creates the load collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fetcher_loads_total",
			Help: "Number of completed resource loads by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fetcher_load_duration_seconds",
			Help:    "Time from submitting a resource load to classifying its outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.loads, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.loads.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}

	if kind, ok := KindOf(err); ok {
		return kind.String()
	}

	return "unknown"
}
