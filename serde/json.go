package serde

import (
	"encoding/json"

	"github.com/steelkv/steelkv"
)

func JSONSerializer[T any]() steelkv.Serializer[T] {
	return func(t T) ([]byte, error) {
		serialized, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return serialized, nil
	}
}

func JSONDeserializer[T any]() steelkv.Deserializer[T] {
	return func(b []byte) (T, error) {
		var deserialized T
		if err := json.Unmarshal(b, &deserialized); err != nil {
			return *new(T), err
		}
		return deserialized, nil
	}
}

// JSON is a typed JSON serde. The target type is fixed at construction; use
// GenericJSON when the concrete type has to be recovered from the data itself.
func JSON[T any]() steelkv.Serde[T] {
	return steelkv.Serde[T]{
		Serializer:   JSONSerializer[T](),
		Deserializer: JSONDeserializer[T](),
	}
}
