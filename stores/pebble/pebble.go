// Package pebble provides a persistent StoreBackend on top of cockroachdb/pebble.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/steelkv/steelkv"
)

type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the backend for the given store name below dir.
func Open(dir, name string) (*Store, error) {
	path := filepath.Join(dir, name)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Init() error {
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	return s.db.Flush()
}

func (s *Store) Close() error {
	if err := s.db.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Store) Set(k, v []byte) error {
	return s.db.Set(k, v, &pebble.WriteOptions{Sync: false})
}

func (s *Store) Get(k []byte) ([]byte, error) {
	v, closer, err := s.db.Get(k)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, steelkv.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	res := make([]byte, len(v))
	copy(res, v)

	return res, nil
}

func (s *Store) Delete(k []byte) error {
	return s.db.Delete(k, &pebble.WriteOptions{})
}

func (s *Store) Range(start, end []byte) (steelkv.Iterator, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}
	return &iterator{iter: iter}, nil
}

func (s *Store) All() (steelkv.Iterator, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	return &iterator{iter: iter}, nil
}

var _ steelkv.StoreBackend = (*Store)(nil)

type iterator struct {
	iter    *pebble.Iterator
	started bool
	valid   bool
}

func (it *iterator) Next() bool {
	if !it.started {
		it.started = true
		it.valid = it.iter.First()
	} else {
		it.valid = it.iter.Next()
	}
	return it.valid
}

func (it *iterator) Key() []byte {
	if !it.valid {
		return nil
	}
	key := make([]byte, len(it.iter.Key()))
	copy(key, it.iter.Key())
	return key
}

func (it *iterator) Value() []byte {
	if !it.valid {
		return nil
	}
	value := make([]byte, len(it.iter.Value()))
	copy(value, it.iter.Value())
	return value
}

func (it *iterator) Err() error {
	return it.iter.Error()
}

func (it *iterator) Close() error {
	return it.iter.Close()
}
