package steelkv

import (
	"errors"

	"go.uber.org/multierr"
)

// SerdeContext bundles the serdes used for the different data roles of a
// store interaction: plain keys and values, hash-entry field names and
// values, and strings. A context is immutable once built; share it freely
// across goroutines.
type SerdeContext[K, V, HK, HV any] struct {
	key       Serde[K]
	value     Serde[V]
	hashKey   Serde[HK]
	hashValue Serde[HV]
	str       Serde[string]
}

func (c SerdeContext[K, V, HK, HV]) Key() Serde[K] { return c.key }

func (c SerdeContext[K, V, HK, HV]) Value() Serde[V] { return c.value }

func (c SerdeContext[K, V, HK, HV]) HashKey() Serde[HK] { return c.hashKey }

func (c SerdeContext[K, V, HK, HV]) HashValue() Serde[HV] { return c.hashValue }

func (c SerdeContext[K, V, HK, HV]) String() Serde[string] { return c.str }

// SerdeContextBuilder assembles a SerdeContext. Key, Value, HashKey and
// HashValue are required; String defaults to a raw UTF-8 serde when unset.
// The builder is not safe for concurrent use and becomes unusable after a
// successful Build.
type SerdeContextBuilder[K, V, HK, HV any] struct {
	ctx SerdeContext[K, V, HK, HV]

	keySet       bool
	valueSet     bool
	hashKeySet   bool
	hashValueSet bool
	strSet       bool
	built        bool
}

// NewSerdeContextBuilder creates an empty builder.
func NewSerdeContextBuilder[K, V, HK, HV any]() *SerdeContextBuilder[K, V, HK, HV] {
	return &SerdeContextBuilder[K, V, HK, HV]{}
}

func (b *SerdeContextBuilder[K, V, HK, HV]) Key(s Serde[K]) *SerdeContextBuilder[K, V, HK, HV] {
	b.ctx.key = s
	b.keySet = true
	return b
}

func (b *SerdeContextBuilder[K, V, HK, HV]) Value(s Serde[V]) *SerdeContextBuilder[K, V, HK, HV] {
	b.ctx.value = s
	b.valueSet = true
	return b
}

func (b *SerdeContextBuilder[K, V, HK, HV]) HashKey(s Serde[HK]) *SerdeContextBuilder[K, V, HK, HV] {
	b.ctx.hashKey = s
	b.hashKeySet = true
	return b
}

func (b *SerdeContextBuilder[K, V, HK, HV]) HashValue(s Serde[HV]) *SerdeContextBuilder[K, V, HK, HV] {
	b.ctx.hashValue = s
	b.hashValueSet = true
	return b
}

func (b *SerdeContextBuilder[K, V, HK, HV]) String(s Serde[string]) *SerdeContextBuilder[K, V, HK, HV] {
	b.ctx.str = s
	b.strSet = true
	return b
}

// Build validates the builder and returns the immutable context. All missing
// or incomplete required serdes are reported in one aggregated error.
func (b *SerdeContextBuilder[K, V, HK, HV]) Build() (SerdeContext[K, V, HK, HV], error) {
	if b.built {
		return SerdeContext[K, V, HK, HV]{}, ErrBuilderUsed
	}

	var err error
	if !b.keySet || b.ctx.key.Serializer == nil || b.ctx.key.Deserializer == nil {
		err = multierr.Append(err, errors.New("serde context: key serde must be set"))
	}
	if !b.valueSet || b.ctx.value.Serializer == nil || b.ctx.value.Deserializer == nil {
		err = multierr.Append(err, errors.New("serde context: value serde must be set"))
	}
	if !b.hashKeySet || b.ctx.hashKey.Serializer == nil || b.ctx.hashKey.Deserializer == nil {
		err = multierr.Append(err, errors.New("serde context: hash key serde must be set"))
	}
	if !b.hashValueSet || b.ctx.hashValue.Serializer == nil || b.ctx.hashValue.Deserializer == nil {
		err = multierr.Append(err, errors.New("serde context: hash value serde must be set"))
	}
	if b.strSet && (b.ctx.str.Serializer == nil || b.ctx.str.Deserializer == nil) {
		err = multierr.Append(err, errors.New("serde context: string serde is incomplete"))
	}
	if err != nil {
		return SerdeContext[K, V, HK, HV]{}, err
	}

	if !b.strSet {
		b.ctx.str = rawStringSerde
	}

	b.built = true
	return b.ctx, nil
}

var rawStringSerde = Serde[string]{
	Serializer:   func(s string) ([]byte, error) { return []byte(s), nil },
	Deserializer: func(b []byte) (string, error) { return string(b), nil },
}
