package fetcher

// Fetcher is a generic interface defining a contract for types that load HTTP resources.
// It specifies a single method, Load, which executes a Resource and reports its outcome
// to a caller-supplied completion. The generic type T is the shape the response body decodes into.
type Fetcher[T any] interface {
	// Load issues the request described by resource without blocking the caller and invokes
	// completion exactly once, after the request has fully completed, with either the decoded
	// value or a *LoadError matching one of ErrURL, ErrDomain or ErrDecoding.
	// completion must not be nil.
	Load(resource Resource[T], completion func(Result[T]))
}

// Result is the single outcome of a load: a decoded value or an error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the load succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Unwrap returns the value and the error as a pair.
func (r Result[T]) Unwrap() (T, error) { return r.Value, r.Err }
