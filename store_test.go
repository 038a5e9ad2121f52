package steelkv_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-logr/stdr"

	"github.com/steelkv/steelkv"
	"github.com/steelkv/steelkv/serde"
	"github.com/steelkv/steelkv/stores/memory"
)

type account struct {
	Owner   string
	Balance int64
}

func newTestContext(t *testing.T) steelkv.SerdeContext[string, account, string, int64] {
	t.Helper()
	ctx, err := steelkv.NewSerdeContextBuilder[string, account, string, int64]().
		Key(serde.String).
		Value(serde.JSON[account]()).
		HashKey(serde.String).
		HashValue(serde.Int64).
		Build()
	assert.NoError(t, err)
	return ctx
}

func TestKeyValueStore(t *testing.T) {
	store := steelkv.NewKeyValueStore("accounts", memory.New(), newTestContext(t))
	assert.NoError(t, store.Init())
	defer store.Close()

	in := account{Owner: "alice", Balance: 42}
	assert.NoError(t, store.Set("acc-1", in))

	out, err := store.Get("acc-1")
	assert.NoError(t, err)
	assert.Equal(t, in, out)

	// Update
	in.Balance = 43
	assert.NoError(t, store.Set("acc-1", in))
	out, err = store.Get("acc-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(43), out.Balance)

	// Delete
	assert.NoError(t, store.Delete("acc-1"))
	_, err = store.Get("acc-1")
	assert.IsError(t, err, steelkv.ErrKeyNotFound)
}

func TestKeyValueStoreGetMissing(t *testing.T) {
	store := steelkv.NewKeyValueStore("accounts", memory.New(), newTestContext(t))
	_, err := store.Get("nope")
	assert.IsError(t, err, steelkv.ErrKeyNotFound)
}

func TestHashOperations(t *testing.T) {
	store := steelkv.NewKeyValueStore("accounts", memory.New(), newTestContext(t),
		steelkv.WithLogger(stdr.New(log.New(io.Discard, "", log.LstdFlags))))

	assert.NoError(t, store.HSet("acc-1", "balance", 42))
	assert.NoError(t, store.HSet("acc-1", "version", 7))
	assert.NoError(t, store.HSet("acc-2", "balance", 1))

	v, err := store.HGet("acc-1", "balance")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v)

	all, err := store.HGetAll("acc-1")
	assert.NoError(t, err)
	assert.Equal(t, map[string]int64{"balance": 42, "version": 7}, all)

	// Entries of other hashes are not visible.
	all, err = store.HGetAll("acc-2")
	assert.NoError(t, err)
	assert.Equal(t, map[string]int64{"balance": 1}, all)

	assert.NoError(t, store.HDel("acc-1", "balance", "version"))
	all, err = store.HGetAll("acc-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(all))
}

func TestHashAndPlainKeysDoNotCollide(t *testing.T) {
	store := steelkv.NewKeyValueStore("accounts", memory.New(), newTestContext(t))

	assert.NoError(t, store.Set("acc-1", account{Owner: "alice"}))
	assert.NoError(t, store.HSet("acc-1", "balance", 42))

	out, err := store.Get("acc-1")
	assert.NoError(t, err)
	assert.Equal(t, "alice", out.Owner)

	all, err := store.HGetAll("acc-1")
	assert.NoError(t, err)
	assert.Equal(t, map[string]int64{"balance": 42}, all)
}

func TestHGetAllMissingEntry(t *testing.T) {
	store := steelkv.NewKeyValueStore("accounts", memory.New(), newTestContext(t))

	all, err := store.HGetAll("ghost")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(all))
}

func TestStoreFlush(t *testing.T) {
	store := steelkv.NewKeyValueStore("accounts", memory.New(), newTestContext(t))
	assert.NoError(t, store.Flush(context.Background()))
}

func TestTypedIterator(t *testing.T) {
	backend := memory.New()
	assert.NoError(t, backend.Set([]byte("a"), []byte("1")))
	assert.NoError(t, backend.Set([]byte("b"), []byte("2")))

	iter, err := backend.All()
	assert.NoError(t, err)

	typed := steelkv.NewTypedIterator(iter, serde.StringDeserializer, serde.StringDeserializer)
	defer typed.Close()

	var keys, values []string
	for typed.Next() {
		keys = append(keys, typed.Key())
		values = append(values, typed.Value())
	}
	assert.NoError(t, typed.Err())
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, []string{"1", "2"}, values)
}
