// Package hash converts between typed values and flat field/value mappings,
// the shape hash entries and stream records are stored in.
package hash

// Mapper converts a value of type T to a field/value mapping and back.
type Mapper[T any] interface {
	ToHash(value T) (map[string][]byte, error)
	FromHash(fields map[string][]byte) (T, error)
}
