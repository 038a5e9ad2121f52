package stream

import (
	"time"

	"github.com/samber/lo"
	"github.com/twmb/franz-go/pkg/kgo"
)

// FromKafkaRecord views a consumed Kafka record as a stream entry: the topic
// becomes the stream key, the headers become the field/value mapping, and
// timestamp/offset form the id. Duplicate header names keep the last value.
func FromKafkaRecord(rec *kgo.Record) ByteRecord {
	fields := make(map[string][]byte, len(rec.Headers))
	for _, h := range rec.Headers {
		fields[h.Key] = h.Value
	}

	return ByteRecord{
		Stream: []byte(rec.Topic),
		ID:     NewID(uint64(rec.Timestamp.UnixMilli()), uint64(rec.Offset)),
		Fields: fields,
	}
}

// ToKafkaRecord builds a producible Kafka record from a stream entry,
// inverting FromKafkaRecord. An auto id leaves the timestamp unset so the
// broker assigns it.
func ToKafkaRecord(r ByteRecord) *kgo.Record {
	rec := &kgo.Record{
		Topic: string(r.Stream),
		Headers: lo.MapToSlice(r.Fields, func(k string, v []byte) kgo.RecordHeader {
			return kgo.RecordHeader{Key: k, Value: v}
		}),
	}
	if !r.ID.IsAuto() {
		rec.Timestamp = time.UnixMilli(int64(r.ID.Timestamp()))
		rec.Offset = int64(r.ID.Sequence())
	}
	return rec
}
