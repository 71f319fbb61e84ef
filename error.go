package fetcher

import (
	"errors"
	"fmt"
)

// ErrInvalidDispatchPolicy is returned when a fetcher is constructed with a policy other than
// DispatchSuccess or DispatchAll. Construction fails instead of guessing where completions should run.
var ErrInvalidDispatchPolicy = errors.New("invalid dispatch policy")

// The three outcome kinds a load can fail with. They are flat and mutually exclusive:
// every failed load matches exactly one of them through errors.Is.
var (
	// ErrURL reports that the resource could not be turned into a request.
	ErrURL = errors.New("url error")

	// ErrDomain reports a transport failure, a non-2xx reply or an empty payload.
	ErrDomain = errors.New("domain error")

	// ErrDecoding reports a payload that does not conform to the expected shape.
	ErrDecoding = errors.New("decoding error")
)

// Causes wrapped inside a LoadError.
var (
	ErrEmptyBody         = errors.New("response body is empty")
	ErrEmptyURL          = errors.New("resource url is empty")
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrMissingField      = errors.New("missing field")
	ErrNullValue         = errors.New("null value")
)

// ErrorKind classifies a failed load.
type ErrorKind uint8

const (
	KindURL ErrorKind = iota + 1
	KindDomain
	KindDecoding
)

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindURL:
		return "urlError"
	case KindDomain:
		return "domainError"
	case KindDecoding:
		return "decodingError"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindURL:
		return ErrURL
	case KindDomain:
		return ErrDomain
	case KindDecoding:
		return ErrDecoding
	default:
		return nil
	}
}

// LoadError is the error delivered to a completion when a load fails.
// Kind selects which of ErrURL, ErrDomain or ErrDecoding the error matches,
// while Err keeps the underlying cause reachable through errors.Unwrap.
type LoadError struct {
	Kind ErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of this error's kind.
func (e *LoadError) Is(target error) bool {
	sentinel := e.Kind.sentinel()

	return sentinel != nil && target == sentinel
}

// KindOf returns the kind of a load failure, or false when err is not a LoadError.
func KindOf(err error) (ErrorKind, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind, true
	}

	return 0, false
}

// StatusError is reported by HTTPTransport when the server replies with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}
