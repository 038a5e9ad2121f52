package hash

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// StringMapper maps flat structs whose exported fields are scalars (strings,
// bools, integers, floats), rendering every field value as a string. Field
// names honor json tags. Useful when hash values must stay human-readable.
type StringMapper[T any] struct{}

func NewStringMapper[T any]() StringMapper[T] {
	return StringMapper[T]{}
}

func (StringMapper[T]) ToHash(value T) (map[string][]byte, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("nil value of type %T", value)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %T", value)
	}

	out := make(map[string][]byte)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		s, err := cast.ToStringE(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out[name] = []byte(s)
	}
	return out, nil
}

func (StringMapper[T]) FromHash(fields map[string][]byte) (T, error) {
	var value T
	v := reflect.ValueOf(&value).Elem()
	if v.Kind() != reflect.Struct {
		return value, fmt.Errorf("expected struct type, got %T", value)
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := setFromString(v.Field(i), string(raw)); err != nil {
			return value, fmt.Errorf("field %s: %w", name, err)
		}
	}
	return value, nil
}

func setFromString(dst reflect.Value, s string) error {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
	case reflect.Bool:
		b, err := cast.ToBoolE(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := cast.ToInt64E(s)
		if err != nil {
			return err
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := cast.ToUint64E(s)
		if err != nil {
			return err
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %v", dst.Kind())
	}
	return nil
}

func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	if tag, ok := f.Tag.Lookup("json"); ok {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return f.Name, true
}
