package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contentTypeJSON is declared on every request, whether or not it carries a body.
const contentTypeJSON = "application/json"

// HTTPFetcher struct provides an HTTP-backed mechanism for loading resources of type T.
// It encapsulates the transport that performs the call, a transcoder for decoding,
// and the dispatcher plus policy deciding where completions run.
// All fields are configured during construction and are not modified afterward, so a single
// instance holds no per-load state and is safe for concurrent use.
type HTTPFetcher[T any] struct {
	transport  Transport
	transcoder Transcoder[T]
	dispatcher Dispatcher
	policy     DispatchPolicy
	logger     zerolog.Logger
	metrics    *Metrics
}

var _ Fetcher[struct{}] = (*HTTPFetcher[struct{}])(nil)

// NewHTTPFetcher function constructs a fully configured HTTPFetcher instance.
// It applies all provided functional options, validates the dispatch policy,
// and initializes default values for any optional collaborator not explicitly set.
// The function returns an error only when the configuration is invalid.
func NewHTTPFetcher[T any](opts ...options[T]) (*HTTPFetcher[T], error) {
	fetcher := &HTTPFetcher[T]{logger: zerolog.Nop()}

	for _, opt := range opts {
		opt(fetcher)
	}

	if fetcher.policy != DispatchSuccess && fetcher.policy != DispatchAll {
		return nil, ErrInvalidDispatchPolicy
	}

	if fetcher.transport == nil {
		fetcher.transport = NewHTTPTransport(nil, fetcher.logger)
	}

	if fetcher.transcoder == nil {
		fetcher.transcoder = defaultTranscoder[T]{}
	}

	if fetcher.dispatcher == nil {
		fetcher.dispatcher = Inline
	}

	return fetcher, nil
}

// Load is a method on the HTTPFetcher struct that executes resource and reports the outcome to completion.
// It builds the request, hands it to the transport and returns at once. When the transport reports back,
// the outcome is classified with strict precedence: a transport error or an empty body is ErrDomain,
// a body that fails to decode is ErrDecoding, anything else is a success.
// completion is invoked exactly once per call and must not be nil; Load panics on the
// caller's goroutine when it is.
func (f *HTTPFetcher[T]) Load(resource Resource[T], completion func(Result[T])) {
	// Fail here rather than later on a transport or dispatcher goroutine the caller cannot see.
	if completion == nil {
		panic("fetcher: nil completion passed to Load")
	}

	// Every load gets its own child logger so that all of its log lines can be correlated.
	logger := f.logger.With().
		Str("load_id", uuid.NewString()).
		Str("method", string(resource.Method())).
		Str("url", resource.URL()).
		Logger()

	started := time.Now()

	// Guard the completion so that a transport which reports twice cannot fire it twice.
	var once sync.Once
	finish := func(result Result[T]) {
		fired := false

		once.Do(func() {
			fired = true
			f.metrics.observe(outcomeOf(result.Err), time.Since(started))
			f.deliver(result, completion)
		})

		if !fired {
			logger.Warn().Msg("transport reported completion more than once, ignoring")
		}
	}

	// Translate the descriptor into a transport request. A descriptor that cannot be expressed
	// as a request is a url error and never reaches the transport.
	req, err := newRequest(resource)
	if err != nil {
		logger.Warn().Err(err).Stringer("kind", KindURL).Msg("failed to build request")

		// The failure is still delivered asynchronously so that Load never calls back before returning.
		go finish(Result[T]{Err: &LoadError{Kind: KindURL, Err: err}})
		return
	}

	logger.Debug().Msg("submitting request")

	// Hand the request to the transport and return immediately. The callback runs later on the
	// transport's goroutine, classifies the raw outcome and delivers it through the guard above.
	f.transport.Submit(req, func(body []byte, _ *http.Response, err error) {
		finish(f.classify(logger, body, err))
	})
}

// LoadAsync is the channel-delivered form of Load. The returned channel yields exactly one
// Result and is then closed. When successes are dispatched onto a MainLoop, the value arrives
// only after the loop has run the completion.
func (f *HTTPFetcher[T]) LoadAsync(resource Resource[T]) <-chan Result[T] {
	ch := make(chan Result[T], 1)

	f.Load(resource, func(result Result[T]) {
		ch <- result
		close(ch)
	})

	return ch
}

func (f *HTTPFetcher[T]) classify(logger zerolog.Logger, body []byte, err error) Result[T] {
	// Transport failures and empty payloads are not distinguished further.
	if err != nil {
		logger.Warn().Err(err).Stringer("kind", KindDomain).Msg("request failed")
		return Result[T]{Err: &LoadError{Kind: KindDomain, Err: err}}
	}

	if len(body) == 0 {
		logger.Warn().Err(ErrEmptyBody).Stringer("kind", KindDomain).Msg("request returned no data")
		return Result[T]{Err: &LoadError{Kind: KindDomain, Err: ErrEmptyBody}}
	}

	// The body is present, so whatever happens from here on is about its shape.
	// Any decode failure, whether malformed JSON, a type mismatch or a missing field, is a decoding error.
	value, err := f.transcoder.Decode(body)
	if err != nil {
		logger.Warn().Err(err).Stringer("kind", KindDecoding).Int("size", len(body)).Msg("failed to decode response")
		return Result[T]{Err: &LoadError{Kind: KindDecoding, Err: err}}
	}

	logger.Debug().Int("size", len(body)).Msg("resource loaded")

	return Result[T]{Value: value}
}

// deliver runs completion on the dispatcher for successes, and for failures only under DispatchAll.
func (f *HTTPFetcher[T]) deliver(result Result[T], completion func(Result[T])) {
	if result.Err == nil || f.policy == DispatchAll {
		f.dispatcher.Dispatch(func() { completion(result) })
		return
	}

	completion(result)
}

// newRequest translates a resource into the request handed to the transport.
func newRequest[T any](resource Resource[T]) (*http.Request, error) {
	if resource.url == "" {
		return nil, ErrEmptyURL
	}

	method := resource.Method()
	if method != MethodGet && method != MethodPost {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	var body io.Reader
	if resource.HasBody() {
		body = bytes.NewReader(resource.body)
	}

	// Loads are not cancellable; any deadline comes from the transport.
	req, err := http.NewRequestWithContext(context.Background(), string(method), resource.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)

	return req, nil
}
