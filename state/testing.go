package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/wasm-vm/types"
)

var (
	addr1 = types.StringToAddress("0x0000000000000000000000000000000000000000000000000000000000000001")
	addr2 = types.StringToAddress("0x0000000000000000000000000000000000000000000000000000000000000002")
)

// PreState is the genesis of an account
type PreState struct {
	Nonce   uint64
	Balance uint64
	Code    []byte
	Storage map[string]string
}

// PreStates is a set of pre states
type PreStates map[types.Address]*PreState

// Genesis writes the pre states on top of s
func Genesis(t *testing.T, s State, p PreStates) types.Hash {
	t.Helper()

	txn := NewTxn(s.NewSnapshot())

	for addr, pre := range p {
		account := newAccount()
		account.Nonce = pre.Nonce
		account.Balance = new(big.Int).SetUint64(pre.Balance)
		account.Code = pre.Code

		for k, v := range pre.Storage {
			account.setStorage([]byte(k), []byte(v))
		}

		txn.SetAccount(addr, account)
	}

	root, err := s.Commit(txn.Commit())
	require.NoError(t, err)

	return root
}

// TestState runs the shared test suite against a State implementation
func TestState(t *testing.T, buildState func(t *testing.T) State) {
	t.Helper()

	t.Run("missing account", func(t *testing.T) {
		s := buildState(t)

		account, err := s.NewSnapshot().GetAccount(addr1)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("commit and read back", func(t *testing.T) {
		s := buildState(t)

		root := Genesis(t, s, PreStates{
			addr1: {Nonce: 3, Balance: 100, Storage: map[string]string{"a": "b"}},
			addr2: {Code: []byte("native:adder")},
		})

		snap := s.NewSnapshot()
		assert.Equal(t, root, snap.Root())

		account, err := snap.GetAccount(addr1)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, uint64(3), account.Nonce)
		assert.Equal(t, big.NewInt(100), account.Balance)
		assert.Equal(t, []byte("b"), account.GetStorage([]byte("a")))

		account, err = snap.GetAccount(addr2)
		require.NoError(t, err)
		assert.True(t, account.IsContract())
	})

	t.Run("delete", func(t *testing.T) {
		s := buildState(t)

		Genesis(t, s, PreStates{addr1: {Balance: 1}})

		txn := NewTxn(s.NewSnapshot())
		txn.DeleteAccount(addr1)

		_, err := s.Commit(txn.Commit())
		require.NoError(t, err)

		account, err := s.NewSnapshot().GetAccount(addr1)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("snapshot is stable", func(t *testing.T) {
		s := buildState(t)

		Genesis(t, s, PreStates{addr1: {Balance: 1}})

		snap := s.NewSnapshot()
		before := snap.Root()

		Genesis(t, s, PreStates{addr2: {Balance: 2}})

		assert.Equal(t, before, snap.Root())
		assert.NotEqual(t, before, s.NewSnapshot().Root())
	})

	t.Run("root depends on history", func(t *testing.T) {
		s1, s2 := buildState(t), buildState(t)

		r1 := Genesis(t, s1, PreStates{addr1: {Balance: 1}})
		r2 := Genesis(t, s2, PreStates{addr1: {Balance: 1}})
		assert.Equal(t, r1, r2)

		r2 = Genesis(t, s2, PreStates{addr1: {Balance: 2}})
		assert.NotEqual(t, r1, r2)
	})
}
