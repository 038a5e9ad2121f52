package serde

import "github.com/steelkv/steelkv"

var StringSerializer = func(data string) ([]byte, error) {
	return []byte(data), nil
}

var StringDeserializer = func(data []byte) (string, error) {
	return string(data), nil
}

var String = steelkv.Serde[string]{
	Serializer:   StringSerializer,
	Deserializer: StringDeserializer,
}

var BytesSerializer = func(data []byte) ([]byte, error) {
	return data, nil
}

var BytesDeserializer = func(data []byte) ([]byte, error) {
	return data, nil
}

// Bytes passes raw bytes through unchanged.
var Bytes = steelkv.Serde[[]byte]{
	Serializer:   BytesSerializer,
	Deserializer: BytesDeserializer,
}
