package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKV runs the shared test suite against a KV backend
func TestKV(t *testing.T, factory func(t *testing.T) KV) {
	t.Helper()

	t.Run("get missing", func(t *testing.T) {
		kv := factory(t)
		defer kv.Close()

		v, ok, err := kv.Get([]byte("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("set get delete", func(t *testing.T) {
		kv := factory(t)
		defer kv.Close()

		require.NoError(t, kv.Set([]byte("k"), []byte("v")))

		v, ok, err := kv.Get([]byte("k"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)

		require.NoError(t, kv.Delete([]byte("k")))

		_, ok, err = kv.Get([]byte("k"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("batch", func(t *testing.T) {
		kv := factory(t)
		defer kv.Close()

		require.NoError(t, kv.Set([]byte("old"), []byte("1")))

		b := kv.NewBatch()
		b.Put(Key(ACCOUNT, []byte{1}), []byte("a"))
		b.Put(Key(HEAD, []byte{2}), []byte("c"))
		b.Delete([]byte("old"))

		// nothing is visible before the batch is written
		_, ok, err := kv.Get(Key(ACCOUNT, []byte{1}))
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, b.Write())

		v, ok, err := kv.Get(Key(ACCOUNT, []byte{1}))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("a"), v)

		_, ok, err = kv.Get([]byte("old"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
