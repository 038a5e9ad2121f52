package serde

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps type discriminator names to Go types so that GenericJSON can
// reconstruct concrete values from tagged JSON objects. A Registry is safe
// for concurrent use and may be shared between serializers.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Register adds the dynamic type of each value under its derived name
// (package-qualified type name). Pointer values register their element type.
// Registering the same type twice is a no-op; registering a different type
// under an already-taken name panics, as this is an init-time programming
// error.
func (r *Registry) Register(values ...any) {
	for _, v := range values {
		t := baseType(reflect.TypeOf(v))
		r.RegisterName(typeName(t), v)
	}
}

// RegisterName adds the dynamic type of value under an explicit name.
func (r *Registry) RegisterName(name string, value any) {
	t := baseType(reflect.TypeOf(value))

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[name]; ok && existing != t {
		panic(fmt.Sprintf("serde: registry name %q already bound to %v", name, existing))
	}
	r.byName[name] = t
	if _, ok := r.byType[t]; !ok {
		r.byType[t] = name
	}
}

// typeOf resolves a discriminator name to the registered type.
func (r *Registry) typeOf(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// nameFor returns the discriminator name for t, registering the derived name
// on first use so values serialized by this process can always be decoded by
// it.
func (r *Registry) nameFor(t reflect.Type) string {
	r.mu.RLock()
	name, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return name
	}

	name = typeName(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[name]; ok && existing != t {
		panic(fmt.Sprintf("serde: registry name %q already bound to %v", name, existing))
	}
	r.byName[name] = t
	r.byType[t] = name
	return name
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(t reflect.Type) string {
	return t.String()
}
