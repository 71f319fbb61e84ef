package fetcher

import "github.com/rs/zerolog"

// options type defines the functional options pattern used to configure an HTTPFetcher instance.
type options[T any] func(f *HTTPFetcher[T])

// WithTransport option assigns the transport that executes requests on behalf of the fetcher.
// The transport owns connection management, TLS and timeouts. When this option is not provided,
// the fetcher uses an HTTPTransport over the default HTTP client.
func WithTransport[T any](t Transport) options[T] {
	return func(f *HTTPFetcher[T]) {
		f.transport = t
	}
}

// WithTranscoder option configures the transcoder used to decode response bodies into T.
// Providing a custom transcoder allows callers to control deserialization behavior,
// for example NewStrictTranscoder to reject unknown fields.
func WithTranscoder[T any](t Transcoder[T]) options[T] {
	return func(f *HTTPFetcher[T]) {
		f.transcoder = t
	}
}

// WithDispatcher option specifies the execution context successful completions are scheduled on.
// Without it, completions run inline on the transport goroutine.
func WithDispatcher[T any](d Dispatcher) options[T] {
	return func(f *HTTPFetcher[T]) {
		f.dispatcher = d
	}
}

// WithDispatchPolicy option selects whether failed completions also go through the dispatcher.
// The default, DispatchSuccess, dispatches successes only.
func WithDispatchPolicy[T any](p DispatchPolicy) options[T] {
	return func(f *HTTPFetcher[T]) {
		f.policy = p
	}
}

// WithLogger option sets the logger used for load diagnostics.
func WithLogger[T any](logger zerolog.Logger) options[T] {
	return func(f *HTTPFetcher[T]) {
		f.logger = logger
	}
}

// WithMetrics option attaches load counters created by NewMetrics.
func WithMetrics[T any](m *Metrics) options[T] {
	return func(f *HTTPFetcher[T]) {
		f.metrics = m
	}
}
