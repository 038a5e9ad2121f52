package steelkv

// Serializer encodes a value of type T into its binary representation.
type Serializer[T any] func(T) ([]byte, error)

// Deserializer decodes a binary representation back into a value of type T.
type Deserializer[T any] func([]byte) (T, error)

// Serde pairs a Serializer and a Deserializer for one logical role, e.g. the
// key or the value of a store interaction. A Serde is immutable; it is built
// once and shared for the lifetime of the component using it.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}
