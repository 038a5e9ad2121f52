package stream

import (
	"fmt"

	"golang.org/x/exp/maps"

	"github.com/steelkv/steelkv"
	"github.com/steelkv/steelkv/hash"
)

// ByteRecord is a stream entry in raw binary form: a stream key, an id and a
// field/value mapping. Field names are kept as strings holding the raw field
// bytes. Records are value types; the With* methods return updated copies
// and never touch the original.
type ByteRecord struct {
	Stream []byte
	ID     ID
	Fields map[string][]byte
}

// NewByteRecord creates a record for the given stream with an auto-generated
// id.
func NewByteRecord(stream []byte, fields map[string][]byte) ByteRecord {
	return ByteRecord{
		Stream: stream,
		ID:     AutoID,
		Fields: fields,
	}
}

func (r ByteRecord) WithID(id ID) ByteRecord {
	return ByteRecord{
		Stream: r.Stream,
		ID:     id,
		Fields: maps.Clone(r.Fields),
	}
}

func (r ByteRecord) WithStreamKey(stream []byte) ByteRecord {
	return ByteRecord{
		Stream: stream,
		ID:     r.ID,
		Fields: maps.Clone(r.Fields),
	}
}

// MapRecord is a stream entry whose key, field names and field values have
// been deserialized to their typed forms.
type MapRecord[K any, HK comparable, HV any] struct {
	Stream K
	ID     ID
	Fields map[HK]HV
}

func (r MapRecord[K, HK, HV]) WithID(id ID) MapRecord[K, HK, HV] {
	return MapRecord[K, HK, HV]{
		Stream: r.Stream,
		ID:     id,
		Fields: maps.Clone(r.Fields),
	}
}

func (r MapRecord[K, HK, HV]) WithStreamKey(stream K) MapRecord[K, HK, HV] {
	return MapRecord[K, HK, HV]{
		Stream: stream,
		ID:     r.ID,
		Fields: maps.Clone(r.Fields),
	}
}

// ObjectRecord is a stream entry whose field/value mapping has been collapsed
// into a single typed value by a hash mapper.
type ObjectRecord[K, V any] struct {
	Stream K
	ID     ID
	Value  V
}

func (r ObjectRecord[K, V]) WithID(id ID) ObjectRecord[K, V] {
	return ObjectRecord[K, V]{Stream: r.Stream, ID: id, Value: r.Value}
}

func (r ObjectRecord[K, V]) WithStreamKey(stream K) ObjectRecord[K, V] {
	return ObjectRecord[K, V]{Stream: stream, ID: r.ID, Value: r.Value}
}

// DeserializeRecord converts a binary record into a typed MapRecord, running
// the stream key, every field name and every field value through the given
// deserializers. The record id is carried over unchanged. A nil deserializer
// passes the raw bytes through; the corresponding type must then be []byte
// or string.
func DeserializeRecord[K any, HK comparable, HV any](
	r ByteRecord,
	streamDeserializer steelkv.Deserializer[K],
	fieldDeserializer steelkv.Deserializer[HK],
	valueDeserializer steelkv.Deserializer[HV],
) (MapRecord[K, HK, HV], error) {
	stream, err := applyOrPassthrough(streamDeserializer, r.Stream)
	if err != nil {
		return MapRecord[K, HK, HV]{}, fmt.Errorf("deserialize stream key: %w", err)
	}

	fields := make(map[HK]HV, len(r.Fields))
	for f, v := range r.Fields {
		field, err := applyOrPassthrough(fieldDeserializer, []byte(f))
		if err != nil {
			return MapRecord[K, HK, HV]{}, fmt.Errorf("deserialize field %q: %w", f, err)
		}
		value, err := applyOrPassthrough(valueDeserializer, v)
		if err != nil {
			return MapRecord[K, HK, HV]{}, fmt.Errorf("deserialize value of field %q: %w", f, err)
		}
		fields[field] = value
	}

	return MapRecord[K, HK, HV]{
		Stream: stream,
		ID:     r.ID,
		Fields: fields,
	}, nil
}

// DeserializeRecordAll applies one deserializer to the stream key, field
// names and field values alike.
func DeserializeRecordAll[T comparable](r ByteRecord, deserializer steelkv.Deserializer[T]) (MapRecord[T, T, T], error) {
	return DeserializeRecord[T, T, T](r, deserializer, deserializer, deserializer)
}

// ToObjectRecord collapses the binary field/value mapping into one typed
// value via the mapper, carrying over id and stream key.
func ToObjectRecord[V any](r ByteRecord, mapper hash.Mapper[V]) (ObjectRecord[[]byte, V], error) {
	fields := make(map[string][]byte, len(r.Fields))
	for f, v := range r.Fields {
		fields[f] = v
	}

	value, err := mapper.FromHash(fields)
	if err != nil {
		return ObjectRecord[[]byte, V]{}, fmt.Errorf("map fields: %w", err)
	}

	return ObjectRecord[[]byte, V]{
		Stream: r.Stream,
		ID:     r.ID,
		Value:  value,
	}, nil
}

func applyOrPassthrough[T any](deserializer steelkv.Deserializer[T], raw []byte) (T, error) {
	if deserializer != nil {
		return deserializer(raw)
	}
	if v, ok := any(raw).(T); ok {
		return v, nil
	}
	if v, ok := any(string(raw)).(T); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("no deserializer for target type %T", zero)
}
