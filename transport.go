package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// defaultTimeout bounds a single request made through the default HTTP client.
const defaultTimeout = 30 * time.Second

// Transport is the asynchronous HTTP execution primitive a fetcher is built on.
// Submit must not block on I/O: it hands the request to a worker of its own and returns.
// When the request completes or fails, done is called exactly once with the raw body
// (possibly nil), the response (possibly nil) and the transport error (possibly nil).
type Transport interface {
	Submit(req *http.Request, done func(body []byte, resp *http.Response, err error))
}

// TransportFunc adapts an ordinary function to the Transport interface.
type TransportFunc func(req *http.Request, done func(body []byte, resp *http.Response, err error))

// Submit calls f(req, done).
func (f TransportFunc) Submit(req *http.Request, done func(body []byte, resp *http.Response, err error)) {
	f(req, done)
}

// HTTPClient abstracts HTTP request execution. The standard *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport is the default Transport. Every submitted request is executed on its own
// goroutine through the wrapped HTTPClient and the full body is read before done is called.
// Connection pooling, TLS and timeouts belong to the client, not to this type.
type HTTPTransport struct {
	client HTTPClient
	logger zerolog.Logger
}

// NewHTTPTransport function constructs an HTTPTransport around client.
// A nil client is replaced by an http.Client with a 30 second timeout whose round tripper
// records OpenTelemetry client spans.
func NewHTTPTransport(client HTTPClient, logger zerolog.Logger) *HTTPTransport {
	if client == nil {
		client = newDefaultClient()
	}

	return &HTTPTransport{
		client: client,
		logger: logger.With().Str("component", "http_transport").Logger(),
	}
}

func newDefaultClient() *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Submit executes req in the background and reports the outcome through done.
func (t *HTTPTransport) Submit(req *http.Request, done func(body []byte, resp *http.Response, err error)) {
	go func() {
		body, resp, err := t.do(req)
		done(body, resp, err)
	}()
}

func (t *HTTPTransport) do(req *http.Request) ([]byte, *http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("http request failed")
		return nil, nil, fmt.Errorf("http do: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.logger.Debug().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("failed to read response body")
		return nil, resp, fmt.Errorf("read body: %w", err)
	}

	// Server errors are transport-level failures; the body is still handed back for inspection.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return body, resp, &StatusError{StatusCode: resp.StatusCode}
	}

	return body, resp, nil
}
