// Package memory provides a concurrent in-memory StoreBackend, useful for
// tests and as a reference implementation of the backend contract.
package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/steelkv/steelkv"
)

type Store struct {
	data *xsync.MapOf[string, []byte]
}

func New() *Store {
	return &Store{data: xsync.NewMapOf[string, []byte]()}
}

func (s *Store) Init() error {
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Set(k, v []byte) error {
	value := make([]byte, len(v))
	copy(value, v)
	s.data.Store(string(k), value)
	return nil
}

func (s *Store) Get(k []byte) ([]byte, error) {
	v, ok := s.data.Load(string(k))
	if !ok {
		return nil, steelkv.ErrKeyNotFound
	}
	res := make([]byte, len(v))
	copy(res, v)
	return res, nil
}

func (s *Store) Delete(k []byte) error {
	s.data.Delete(string(k))
	return nil
}

// Range iterates a sorted snapshot of all pairs with start <= key < end. A
// nil end means unbounded.
func (s *Store) Range(start, end []byte) (steelkv.Iterator, error) {
	var pairs []pair
	s.data.Range(func(k string, v []byte) bool {
		key := []byte(k)
		if start != nil && bytes.Compare(key, start) < 0 {
			return true
		}
		if end != nil && bytes.Compare(key, end) >= 0 {
			return true
		}
		pairs = append(pairs, pair{key: key, value: v})
		return true
	})
	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i].key, pairs[j].key) < 0
	})
	return &iterator{pairs: pairs, pos: -1}, nil
}

func (s *Store) All() (steelkv.Iterator, error) {
	return s.Range(nil, nil)
}

var _ steelkv.StoreBackend = (*Store)(nil)

type pair struct {
	key, value []byte
}

type iterator struct {
	pairs []pair
	pos   int
}

func (it *iterator) Next() bool {
	if it.pos+1 >= len(it.pairs) {
		return false
	}
	it.pos++
	return true
}

func (it *iterator) Key() []byte {
	return it.pairs[it.pos].key
}

func (it *iterator) Value() []byte {
	return it.pairs[it.pos].value
}

func (it *iterator) Err() error {
	return nil
}

func (it *iterator) Close() error {
	return nil
}
