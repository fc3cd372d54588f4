package state

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/0xPolygon/wasm-vm/storage/leveldb"
	"github.com/0xPolygon/wasm-vm/storage/memory"
)

func TestKVState_Memory(t *testing.T) {
	TestState(t, func(t *testing.T) State {
		t.Helper()

		s, err := NewState(memory.NewMemoryStorage())
		require.NoError(t, err)

		return s
	})
}

func TestKVState_LevelDB(t *testing.T) {
	TestState(t, func(t *testing.T) State {
		t.Helper()

		kv, err := leveldb.NewLevelDBStorage(t.TempDir(), hclog.NewNullLogger())
		require.NoError(t, err)

		t.Cleanup(func() {
			kv.Close()
		})

		s, err := NewState(kv)
		require.NoError(t, err)

		return s
	})
}

func TestKVState_Reopen(t *testing.T) {
	t.Parallel()

	path := t.TempDir()

	kv, err := leveldb.NewLevelDBStorage(path, hclog.NewNullLogger())
	require.NoError(t, err)

	s, err := NewState(kv)
	require.NoError(t, err)

	root := Genesis(t, s, PreStates{addr1: {Nonce: 1, Balance: 10}})
	require.NoError(t, kv.Close())

	kv, err = leveldb.NewLevelDBStorage(path, hclog.NewNullLogger())
	require.NoError(t, err)

	defer kv.Close()

	s, err = NewState(kv)
	require.NoError(t, err)

	snap := s.NewSnapshot()
	assert.Equal(t, root, snap.Root())

	account, err := snap.GetAccount(addr1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), account.Nonce)
}

func TestKVState_CorruptedAccount(t *testing.T) {
	t.Parallel()

	kv := memory.NewMemoryStorage()
	require.NoError(t, kv.Set(storage.Key(storage.ACCOUNT, addr1.Bytes()), []byte{0xc1, 0x01}))

	s, err := NewState(kv)
	require.NoError(t, err)

	_, err = s.NewSnapshot().GetAccount(addr1)
	require.Error(t, err)

	// the error surfaces when the transition commits
	txn := NewTxn(s.NewSnapshot())
	assert.False(t, txn.AccountExists(addr1))
	assert.Error(t, txn.Err())
}
