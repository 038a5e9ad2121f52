package serde

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/steelkv/steelkv"
)

// DefaultTypeProperty is the JSON property carrying the type discriminator.
const DefaultTypeProperty = "@class"

// GenericJSON serializes arbitrary values to JSON and back without a fixed
// target type. Values that are not simple (bools, numbers, strings, and
// slices or arrays of those) carry a type discriminator property so the
// concrete type can be reconstructed on deserialization, at every nesting
// level.
//
// The zero set of options gives a serializer with its own registry, the
// default "@class" property and null-sentinel support. Once constructed, a
// GenericJSON is safe for concurrent use.
type GenericJSON struct {
	typeProperty string
	registry     *Registry
	nullValue    bool
}

type GenericOption func(*GenericJSON)

// WithTypeProperty overrides the discriminator property name. An empty name
// keeps the default.
func WithTypeProperty(name string) GenericOption {
	return func(g *GenericJSON) {
		if name != "" {
			g.typeProperty = name
		}
	}
}

// WithRegistry uses a caller-provided (possibly shared, pre-configured)
// registry instead of a fresh one. The null-sentinel name is still added to
// it unless WithoutNullValue is given; existing registrations are never
// altered.
func WithRegistry(r *Registry) GenericOption {
	return func(g *GenericJSON) {
		g.registry = r
	}
}

// WithoutNullValue disables the null-sentinel special casing and skips its
// registry entry.
func WithoutNullValue() GenericOption {
	return func(g *GenericJSON) {
		g.nullValue = false
	}
}

func NewGenericJSON(opts ...GenericOption) *GenericJSON {
	g := &GenericJSON{
		typeProperty: DefaultTypeProperty,
		nullValue:    true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = NewRegistry()
	}
	if g.nullValue {
		registerNullValue(g.registry)
	}
	return g
}

// Register binds the dynamic types of the given values in the serializer's
// registry. Types serialized by this process register themselves on first
// use; explicit registration is only needed to decode data produced
// elsewhere.
func (g *GenericJSON) Register(values ...any) {
	g.registry.Register(values...)
}

// TypeProperty returns the discriminator property name in effect.
func (g *GenericJSON) TypeProperty() string {
	return g.typeProperty
}

// Serde adapts g to the Serde contract so it can serve as a context's value
// serde.
func (g *GenericJSON) Serde() steelkv.Serde[any] {
	return steelkv.Serde[any]{
		Serializer:   g.Serialize,
		Deserializer: g.Deserialize,
	}
}

// Serialize encodes v. A nil value yields empty bytes, not an error.
func (g *GenericJSON) Serialize(v any) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}
	tree, err := g.encodeValue(reflect.ValueOf(v))
	if err != nil {
		return nil, &steelkv.SerializationError{Cause: err}
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, &steelkv.SerializationError{Cause: err}
	}
	return data, nil
}

// Deserialize decodes data. Empty or nil input yields nil, not an error. The
// embedded discriminator determines the concrete type of tagged objects;
// untagged objects decode to map[string]any, untagged arrays to []any,
// numbers to int64 or float64.
func (g *GenericJSON) Deserialize(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &steelkv.DeserializationError{Cause: err}
	}
	out, err := g.decodeValue(raw)
	if err != nil {
		return nil, &steelkv.DeserializationError{Cause: err}
	}
	return out, nil
}

func (g *GenericJSON) encodeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return g.encodeValue(v.Elem())

	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v.Interface(), nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes()), nil
		}
		return g.encodeSequence(v)

	case reflect.Array:
		return g.encodeSequence(v)

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %v", v.Type().Key())
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			encoded, err := g.encodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = encoded
		}
		return out, nil

	case reflect.Struct:
		if g.nullValue && v.Type() == nullType {
			return map[string]any{g.typeProperty: NullValueName}, nil
		}
		if m, ok := v.Interface().(json.Marshaler); ok {
			raw, err := m.MarshalJSON()
			if err != nil {
				return nil, err
			}
			return json.RawMessage(raw), nil
		}
		return g.encodeStruct(v)

	default:
		return nil, fmt.Errorf("unsupported kind %v", v.Kind())
	}
}

func (g *GenericJSON) encodeSequence(v reflect.Value) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		encoded, err := g.encodeValue(v.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

func (g *GenericJSON) encodeStruct(v reflect.Value) (any, error) {
	out := make(map[string]any)
	out[g.typeProperty] = g.registry.nameFor(v.Type())

	for _, f := range fieldsOf(v.Type()) {
		fv := v.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		encoded, err := g.encodeValue(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		out[f.name] = encoded
	}
	return out, nil
}

func (g *GenericJSON) decodeValue(raw any) (any, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return val, nil
	case json.Number:
		return decodeNumber(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			decoded, err := g.decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	case map[string]any:
		return g.decodeObject(val)
	default:
		return nil, fmt.Errorf("unexpected JSON value of type %T", raw)
	}
}

func (g *GenericJSON) decodeObject(m map[string]any) (any, error) {
	name, tagged := m[g.typeProperty].(string)
	if !tagged {
		out := make(map[string]any, len(m))
		for k, v := range m {
			decoded, err := g.decodeValue(v)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	}

	if g.nullValue && name == NullValueName {
		return NullValue, nil
	}

	t, ok := g.registry.typeOf(name)
	if !ok {
		return nil, fmt.Errorf("unregistered type %q", name)
	}
	ptr := reflect.New(t)
	if err := g.populateStruct(ptr.Elem(), m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return ptr.Elem().Interface(), nil
}

func (g *GenericJSON) populateStruct(dst reflect.Value, m map[string]any) error {
	for _, f := range fieldsOf(dst.Type()) {
		raw, ok := m[f.name]
		if !ok {
			continue
		}
		if err := g.assignValue(dst.Field(f.index), raw); err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
	}
	return nil
}

// assignValue writes the decoded JSON tree raw into dst, converting numbers
// and descending into composites guided by dst's type.
func (g *GenericJSON) assignValue(dst reflect.Value, raw any) error {
	if raw == nil {
		dst.SetZero()
		return nil
	}

	if dst.Kind() != reflect.Pointer && dst.Kind() != reflect.Interface && dst.CanAddr() {
		if u, ok := dst.Addr().Interface().(json.Unmarshaler); ok {
			data, err := json.Marshal(raw)
			if err != nil {
				return err
			}
			return u.UnmarshalJSON(data)
		}
	}

	switch dst.Kind() {
	case reflect.Interface:
		decoded, err := g.decodeValue(raw)
		if err != nil {
			return err
		}
		if decoded == nil {
			dst.SetZero()
			return nil
		}
		rv := reflect.ValueOf(decoded)
		if !rv.Type().AssignableTo(dst.Type()) {
			return fmt.Errorf("cannot assign %v to %v", rv.Type(), dst.Type())
		}
		dst.Set(rv)
		return nil

	case reflect.Pointer:
		p := reflect.New(dst.Type().Elem())
		if err := g.assignValue(p.Elem(), raw); err != nil {
			return err
		}
		dst.Set(p)
		return nil

	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", raw)
		}
		dst.SetBool(b)
		return nil

	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		dst.SetString(s)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := raw.(json.Number)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %v", i, dst.Type())
		}
		dst.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := raw.(json.Number)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return err
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %v", u, dst.Type())
		}
		dst.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		n, ok := raw.(json.Number)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		dst.SetFloat(f)
		return nil

	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("expected base64 string, got %T", raw)
			}
			data, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return err
			}
			dst.SetBytes(data)
			return nil
		}
		arr, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", raw)
		}
		out := reflect.MakeSlice(dst.Type(), len(arr), len(arr))
		for i, elem := range arr {
			if err := g.assignValue(out.Index(i), elem); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	case reflect.Array:
		arr, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", raw)
		}
		if len(arr) > dst.Len() {
			return fmt.Errorf("array of length %d does not fit in %v", len(arr), dst.Type())
		}
		for i, elem := range arr {
			if err := g.assignValue(dst.Index(i), elem); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", raw)
		}
		if dst.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("unsupported map key type %v", dst.Type().Key())
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for k, v := range m {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if err := g.assignValue(elem, v); err != nil {
				return fmt.Errorf("key %s: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), elem)
		}
		dst.Set(out)
		return nil

	case reflect.Struct:
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", raw)
		}
		return g.populateStruct(dst, m)

	default:
		return fmt.Errorf("unsupported kind %v", dst.Kind())
	}
}

func decodeNumber(n json.Number) (any, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return n.Float64()
}

type structField struct {
	name      string
	index     int
	omitEmpty bool
}

var fieldCache sync.Map // reflect.Type -> []structField

// fieldsOf lists the serializable fields of a struct type, honoring json
// tags for naming, "-" and omitempty.
func fieldsOf(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}

	var fields []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		var omitEmpty bool
		if tag, ok := f.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" && len(parts) == 1 {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}
		fields = append(fields, structField{name: name, index: i, omitEmpty: omitEmpty})
	}

	fieldCache.Store(t, fields)
	return fields
}
