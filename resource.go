package fetcher

import "net/http"

// Method is the HTTP method a Resource is fetched with.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// Resource describes one fetchable HTTP endpoint: its URL, the method, an optional raw body
// and, through the type parameter T, the shape the response body must decode into.
// A Resource is a read-only value. All fields are set by its constructor and never change,
// so the same value can be shared between goroutines and passed to concurrent loads.
// Malformed URLs are not rejected here; they surface as ErrURL when the resource is loaded.
type Resource[T any] struct {
	url    string
	method Method
	body   []byte
}

// NewResource function builds a GET resource without a body for the given URL.
func NewResource[T any](url string) Resource[T] {
	return Resource[T]{url: url, method: MethodGet}
}

// NewResourceWithBody function builds a resource with full control over method and body.
// An empty method falls back to GET. The body is copied so that later changes to the
// caller's slice cannot leak into the descriptor.
func NewResourceWithBody[T any](url string, method Method, body []byte) Resource[T] {
	if method == "" {
		method = MethodGet
	}

	return Resource[T]{url: url, method: method, body: cloneBytes(body)}
}

// NewJSONResource function encodes payload as JSON and builds a resource carrying it as the body.
// The only error it can return comes from encoding the payload.
func NewJSONResource[T, B any](url string, method Method, payload B) (Resource[T], error) {
	body, err := defaultTranscoder[B]{}.Encode(payload)
	if err != nil {
		return Resource[T]{}, err
	}

	return NewResourceWithBody[T](url, method, body), nil
}

// URL returns the endpoint address.
func (r Resource[T]) URL() string { return r.url }

// Method returns the HTTP method, GET for a zero Resource.
func (r Resource[T]) Method() Method {
	if r.method == "" {
		return MethodGet
	}

	return r.method
}

// Body returns a copy of the raw payload, or nil when the resource has none.
func (r Resource[T]) Body() []byte { return cloneBytes(r.body) }

// HasBody reports whether the resource carries a payload.
func (r Resource[T]) HasBody() bool { return len(r.body) > 0 }

func cloneBytes(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}

	dst := make([]byte, len(src))
	copy(dst, src)

	return dst
}
