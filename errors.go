package steelkv

import "errors"

var (
	// ErrKeyNotFound is returned by store reads for keys that do not exist.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrBuilderUsed is returned when a context builder is reused after a
	// successful Build.
	ErrBuilderUsed = errors.New("serde context: builder already used")
)

// SerializationError wraps a failure of the underlying encoder. The original
// cause is always retained and reachable via errors.Unwrap.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return "serialize: " + e.Cause.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// DeserializationError wraps a failure of the underlying decoder.
type DeserializationError struct {
	Cause error
}

func (e *DeserializationError) Error() string {
	return "deserialize: " + e.Cause.Error()
}

func (e *DeserializationError) Unwrap() error {
	return e.Cause
}
