package stream

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/steelkv/steelkv/hash"
	"github.com/steelkv/steelkv/serde"
)

func testRecord() ByteRecord {
	return ByteRecord{
		Stream: []byte("sensor-events"),
		ID:     NewID(1526919030474, 55),
		Fields: map[string][]byte{
			"sensor": []byte("sensor-a"),
			"room":   []byte("kitchen"),
		},
	}
}

func TestByteRecordWithID(t *testing.T) {
	original := testRecord()
	updated := original.WithID(NewID(1526919030474, 56))

	assert.Equal(t, NewID(1526919030474, 56), updated.ID)
	assert.Equal(t, original.Stream, updated.Stream)
	assert.Equal(t, original.Fields, updated.Fields)

	// The original is untouched, including its field map.
	assert.Equal(t, NewID(1526919030474, 55), original.ID)
	updated.Fields["sensor"] = []byte("sensor-b")
	assert.Equal(t, []byte("sensor-a"), original.Fields["sensor"])
}

func TestByteRecordWithStreamKey(t *testing.T) {
	original := testRecord()
	updated := original.WithStreamKey([]byte("other-stream"))

	assert.Equal(t, []byte("other-stream"), updated.Stream)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, []byte("sensor-events"), original.Stream)
}

func TestNewByteRecordHasAutoID(t *testing.T) {
	r := NewByteRecord([]byte("s"), map[string][]byte{"f": []byte("v")})
	assert.True(t, r.ID.IsAuto())
}

func TestDeserializeRecord(t *testing.T) {
	r := testRecord()

	typed, err := DeserializeRecordAll(r, serde.StringDeserializer)
	assert.NoError(t, err)

	assert.Equal(t, "sensor-events", typed.Stream)
	assert.Equal(t, r.ID, typed.ID)
	assert.Equal(t, map[string]string{"sensor": "sensor-a", "room": "kitchen"}, typed.Fields)
}

func TestDeserializeRecordMixedSerdes(t *testing.T) {
	r := ByteRecord{
		Stream: []byte("counters"),
		ID:     NewID(1, 1),
		Fields: map[string][]byte{
			"count": mustSerialize(t, serde.Int64Serializer, int64(42)),
		},
	}

	typed, err := DeserializeRecord[string, string, int64](r,
		serde.StringDeserializer, serde.StringDeserializer, serde.Int64Deserializer)
	assert.NoError(t, err)
	assert.Equal(t, "counters", typed.Stream)
	assert.Equal(t, map[string]int64{"count": 42}, typed.Fields)
}

func TestDeserializeRecordNilPassthrough(t *testing.T) {
	r := testRecord()

	// A nil stream deserializer keeps the raw bytes.
	typed, err := DeserializeRecord[[]byte, string, string](r,
		nil, serde.StringDeserializer, serde.StringDeserializer)
	assert.NoError(t, err)
	assert.Equal(t, []byte("sensor-events"), typed.Stream)
	assert.Equal(t, "sensor-a", typed.Fields["sensor"])
}

func TestDeserializeRecordPassthroughTypeMismatch(t *testing.T) {
	r := testRecord()

	_, err := DeserializeRecord[int64, string, string](r,
		nil, serde.StringDeserializer, serde.StringDeserializer)
	assert.Error(t, err)
}

func TestDeserializeRecordError(t *testing.T) {
	r := ByteRecord{
		Stream: []byte("counters"),
		ID:     NewID(1, 1),
		Fields: map[string][]byte{"count": []byte("not eight bytes")},
	}

	_, err := DeserializeRecord[string, string, int64](r,
		serde.StringDeserializer, serde.StringDeserializer, serde.Int64Deserializer)
	assert.Error(t, err)
}

type sensorReading struct {
	Sensor string  `json:"sensor"`
	Value  float64 `json:"value"`
}

func TestToObjectRecord(t *testing.T) {
	mapper := hash.NewJSONMapper[sensorReading]()
	fields, err := mapper.ToHash(sensorReading{Sensor: "sensor-a", Value: 21.5})
	assert.NoError(t, err)

	r := ByteRecord{
		Stream: []byte("sensor-events"),
		ID:     NewID(1526919030474, 55),
		Fields: fields,
	}

	obj, err := ToObjectRecord[sensorReading](r, mapper)
	assert.NoError(t, err)
	assert.Equal(t, sensorReading{Sensor: "sensor-a", Value: 21.5}, obj.Value)
	assert.Equal(t, r.ID, obj.ID)
	assert.Equal(t, r.Stream, obj.Stream)
}

func TestObjectRecordImmutableUpdates(t *testing.T) {
	obj := ObjectRecord[[]byte, sensorReading]{
		Stream: []byte("sensor-events"),
		ID:     NewID(1, 1),
		Value:  sensorReading{Sensor: "sensor-a"},
	}

	updated := obj.WithID(NewID(2, 2)).WithStreamKey([]byte("archive"))
	assert.Equal(t, NewID(2, 2), updated.ID)
	assert.Equal(t, []byte("archive"), updated.Stream)
	assert.Equal(t, NewID(1, 1), obj.ID)
	assert.Equal(t, []byte("sensor-events"), obj.Stream)
}

func mustSerialize[T any](t *testing.T, serializer func(T) ([]byte, error), v T) []byte {
	t.Helper()
	data, err := serializer(v)
	assert.NoError(t, err)
	return data
}
