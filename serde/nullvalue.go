package serde

import "reflect"

// Null is the marker type for stored null values. It exists so that "the
// value is null" survives a round-trip and stays distinguishable from "the
// key is absent", which serializes to empty bytes.
type Null struct{}

// NullValue is the process-wide Null instance. Deserializing the sentinel's
// wire shape yields exactly this pointer, never a fresh allocation.
var NullValue = &Null{}

// NullValueName is the discriminator the sentinel is tagged with on the wire.
const NullValueName = "steelkv.Null"

var nullType = reflect.TypeOf(Null{})

// registerNullValue binds the sentinel name in r. Adding is idempotent and
// never touches other registrations.
func registerNullValue(r *Registry) {
	if _, ok := r.typeOf(NullValueName); ok {
		return
	}
	r.RegisterName(NullValueName, NullValue)
}
