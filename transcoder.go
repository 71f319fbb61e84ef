package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Transcoder defines the contract for bidirectional conversion between a value of type T
// and its wire representation. Fetchers use Decode to turn a response body into T, which makes
// every load polymorphic over the capability "decode bytes into T". Users may implement custom
// transcoders (e.g. protobuf, msgpack) to control exactly how payloads are read and written.
type Transcoder[T any] interface {
	// Encode converts a value of type T into bytes suitable for a request body.
	Encode(T) ([]byte, error)

	// Decode reconstructs a value of type T from a response body.
	// It returns the zero value of T together with a non-nil error when the payload
	// does not match the shape of T.
	Decode([]byte) (T, error)
}

// Validator is implemented by shapes that need checks the JSON decoder cannot express,
// such as required fields. A non-nil error from Validate turns a decoded value into a decode failure.
type Validator interface {
	Validate() error
}

// NewJSONTranscoder function returns the JSON transcoder fetchers use by default.
func NewJSONTranscoder[T any]() Transcoder[T] {
	return defaultTranscoder[T]{}
}

// NewStrictTranscoder function returns a JSON transcoder that additionally rejects
// object fields which have no counterpart in T.
func NewStrictTranscoder[T any]() Transcoder[T] {
	return strictTranscoder[T]{}
}

// defaultTranscoder is the built-in transcoder used when the user does not provide a custom one.
// It performs JSON serialization and requires the payload to match T exactly: malformed payloads,
// type mismatches, trailing data, absent non-omitempty fields, null where T cannot hold it and
// failed `validate` tags are all rejected. Unknown fields are ignored.
type defaultTranscoder[T any] struct{}

// Encode method serializes the provided value into its JSON representation.
// Any error produced during serialization is returned to the caller for handling.
func (defaultTranscoder[T]) Encode(src T) ([]byte, error) {
	return json.Marshal(src)
}

// Decode method reconstructs a value of type T from its JSON representation.
// After decoding, the payload is checked against the shape of T and the value is validated
// when T implements Validator. On any failure the zero value of T is returned.
func (defaultTranscoder[T]) Decode(src []byte) (T, error) {
	var entry T

	if err := json.Unmarshal(src, &entry); err != nil {
		var zero T
		return zero, err
	}

	// Zero values hide absent fields and nulls, so compare against the raw payload.
	if err := conform(src, &entry); err != nil {
		var zero T
		return zero, err
	}

	if err := validate(&entry); err != nil {
		var zero T
		return zero, err
	}

	return entry, nil
}

// strictTranscoder decodes like defaultTranscoder but refuses unknown object fields.
type strictTranscoder[T any] struct{}

func (strictTranscoder[T]) Encode(src T) ([]byte, error) {
	return json.Marshal(src)
}

func (strictTranscoder[T]) Decode(src []byte) (T, error) {
	var entry T
	var zero T

	dec := json.NewDecoder(bytes.NewReader(src))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&entry); err != nil {
		return zero, err
	}

	// A second value, or any non-whitespace garbage, means the body is not a single T.
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return zero, fmt.Errorf("unexpected data after %T value", entry)
	}

	if err := conform(src, &entry); err != nil {
		return zero, err
	}

	if err := validate(&entry); err != nil {
		return zero, err
	}

	return entry, nil
}

// validate runs Validate on the decoded value, checking the value receiver first and the pointer second.
func validate[T any](entry *T) error {
	if v, ok := any(*entry).(Validator); ok {
		return v.Validate()
	}

	if v, ok := any(entry).(Validator); ok {
		return v.Validate()
	}

	return nil
}
