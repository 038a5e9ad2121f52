package hash

import (
	"encoding/json"
	"fmt"
)

// JSONMapper maps a value by flattening its top-level JSON properties into
// one field per property, each holding the property's raw JSON value. T must
// marshal to a JSON object.
type JSONMapper[T any] struct{}

func NewJSONMapper[T any]() JSONMapper[T] {
	return JSONMapper[T]{}
}

func (JSONMapper[T]) ToHash(value T) (map[string][]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	var props map[string]json.RawMessage
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("value of type %T is not a JSON object: %w", value, err)
	}

	out := make(map[string][]byte, len(props))
	for name, raw := range props {
		out[name] = []byte(raw)
	}
	return out, nil
}

func (JSONMapper[T]) FromHash(fields map[string][]byte) (T, error) {
	var value T

	props := make(map[string]json.RawMessage, len(fields))
	for name, raw := range fields {
		props[name] = json.RawMessage(raw)
	}

	data, err := json.Marshal(props)
	if err != nil {
		return value, fmt.Errorf("assemble object: %w", err)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("unmarshal object: %w", err)
	}
	return value, nil
}
