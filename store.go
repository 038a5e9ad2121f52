package steelkv

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-logr/logr"
	"go.uber.org/multierr"
)

// StoreBackend is the byte-level contract a storage engine has to fulfill.
// Typed stores sit on top and run every key and value through a SerdeContext.
type StoreBackend interface {
	Init() error
	Flush(ctx context.Context) error
	Close() error

	Set(k, v []byte) error
	Get(k []byte) (v []byte, err error)
	Delete(k []byte) error

	// Range iterates all pairs with start <= key < end.
	Range(start, end []byte) (Iterator, error)
	// All iterates every pair in the backend.
	All() (Iterator, error)
}

// Keyspace prefixes. Plain entries and hash entries share one backend and
// must not collide.
const (
	prefixPlain = 'k'
	prefixHash  = 'h'
)

type StoreOption func(*storeConfig)

type storeConfig struct {
	log            logr.Logger
	metricsEnabled bool
}

// WithLogger attaches a logger to the store. Defaults to logr.Discard().
func WithLogger(log logr.Logger) StoreOption {
	return func(c *storeConfig) {
		c.log = log
	}
}

// WithMetrics enables per-operation counters, exported in the default
// VictoriaMetrics registry under steelkv_store_ops_total.
func WithMetrics() StoreOption {
	return func(c *storeConfig) {
		c.metricsEnabled = true
	}
}

// KeyValueStore provides typed access to a byte-level backend. Plain entries
// go through the context's key/value serdes, hash entries through the
// hash-key/hash-value serdes. The store is safe for concurrent use if the
// backend is.
type KeyValueStore[K, V any, HK comparable, HV any] struct {
	name    string
	backend StoreBackend
	serdes  SerdeContext[K, V, HK, HV]
	log     logr.Logger

	sets, gets, deletes *metrics.Counter
}

func NewKeyValueStore[K, V any, HK comparable, HV any](
	name string,
	backend StoreBackend,
	serdes SerdeContext[K, V, HK, HV],
	opts ...StoreOption,
) *KeyValueStore[K, V, HK, HV] {
	cfg := storeConfig{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &KeyValueStore[K, V, HK, HV]{
		name:    name,
		backend: backend,
		serdes:  serdes,
		log:     cfg.log.WithValues("store", name),
	}
	if cfg.metricsEnabled {
		s.sets = opCounter(name, "set")
		s.gets = opCounter(name, "get")
		s.deletes = opCounter(name, "delete")
	}
	return s
}

func opCounter(store, op string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`steelkv_store_ops_total{store=%q,op=%q}`, store, op))
}

func (s *KeyValueStore[K, V, HK, HV]) Init() error {
	return s.backend.Init()
}

func (s *KeyValueStore[K, V, HK, HV]) Flush(ctx context.Context) error {
	return s.backend.Flush(ctx)
}

func (s *KeyValueStore[K, V, HK, HV]) Close() error {
	return s.backend.Close()
}

func (s *KeyValueStore[K, V, HK, HV]) Set(k K, v V) error {
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	value, err := s.serdes.Value().Serializer(v)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}

	if s.sets != nil {
		s.sets.Inc()
	}
	s.log.V(1).Info("set", "keyBytes", len(key), "valueBytes", len(value))
	return s.backend.Set(plainKey(key), value)
}

func (s *KeyValueStore[K, V, HK, HV]) Get(k K) (V, error) {
	var v V
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return v, fmt.Errorf("encode key: %w", err)
	}

	if s.gets != nil {
		s.gets.Inc()
	}
	raw, err := s.backend.Get(plainKey(key))
	if err != nil {
		return v, err
	}
	return s.serdes.Value().Deserializer(raw)
}

func (s *KeyValueStore[K, V, HK, HV]) Delete(k K) error {
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	if s.deletes != nil {
		s.deletes.Inc()
	}
	return s.backend.Delete(plainKey(key))
}

// HSet stores one field of the hash entry identified by k.
func (s *KeyValueStore[K, V, HK, HV]) HSet(k K, field HK, value HV) error {
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	f, err := s.serdes.HashKey().Serializer(field)
	if err != nil {
		return fmt.Errorf("encode hash key: %w", err)
	}
	v, err := s.serdes.HashValue().Serializer(value)
	if err != nil {
		return fmt.Errorf("encode hash value: %w", err)
	}

	if s.sets != nil {
		s.sets.Inc()
	}
	return s.backend.Set(hashKey(key, f), v)
}

// HGet reads one field of the hash entry identified by k.
func (s *KeyValueStore[K, V, HK, HV]) HGet(k K, field HK) (HV, error) {
	var hv HV
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return hv, fmt.Errorf("encode key: %w", err)
	}
	f, err := s.serdes.HashKey().Serializer(field)
	if err != nil {
		return hv, fmt.Errorf("encode hash key: %w", err)
	}

	if s.gets != nil {
		s.gets.Inc()
	}
	raw, err := s.backend.Get(hashKey(key, f))
	if err != nil {
		return hv, err
	}
	return s.serdes.HashValue().Deserializer(raw)
}

// HGetAll reads every field of the hash entry identified by k. A missing
// entry yields an empty map, not an error.
func (s *KeyValueStore[K, V, HK, HV]) HGetAll(k K) (map[HK]HV, error) {
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	prefix := hashPrefix(key)
	iter, err := s.backend.Range(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	result := make(map[HK]HV)
	for iter.Next() {
		field, err := s.serdes.HashKey().Deserializer(iter.Key()[len(prefix):])
		if err != nil {
			return nil, fmt.Errorf("decode hash key: %w", err)
		}
		value, err := s.serdes.HashValue().Deserializer(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode hash value: %w", err)
		}
		result[field] = value
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HDel removes the given fields from the hash entry identified by k. All
// fields are attempted; failures are aggregated.
func (s *KeyValueStore[K, V, HK, HV]) HDel(k K, fields ...HK) error {
	key, err := s.serdes.Key().Serializer(k)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}

	var errs error
	for _, field := range fields {
		f, err := s.serdes.HashKey().Serializer(field)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("encode hash key: %w", err))
			continue
		}
		if s.deletes != nil {
			s.deletes.Inc()
		}
		errs = multierr.Append(errs, s.backend.Delete(hashKey(key, f)))
	}
	return errs
}

func plainKey(key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, prefixPlain)
	return append(out, key...)
}

func hashPrefix(key []byte) []byte {
	out := make([]byte, 3, len(key)+3)
	out[0] = prefixHash
	binary.BigEndian.PutUint16(out[1:3], uint16(len(key)))
	return append(out, key...)
}

func hashKey(key, field []byte) []byte {
	return append(hashPrefix(key), field...)
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix, for use as an exclusive upper range bound.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
