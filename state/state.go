package state

import (
	"fmt"
	"sync"

	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/0xPolygon/wasm-vm/types"
)

// State is the persistent world state transactions are applied to
type State interface {
	NewSnapshot() Snapshot
	Commit(objs []*Object) (types.Hash, error)
}

// Snapshot is a read only view of the state
type Snapshot interface {
	GetAccount(addr types.Address) (*Account, error)
	Root() types.Hash
}

// Object is an account written by a transition. Deleted accounts have a nil Account.
type Object struct {
	Address types.Address
	Account *Account
	Deleted bool
}

// KVState keeps the accounts in a key value storage
type KVState struct {
	kv storage.KV

	lock sync.RWMutex
	root types.Hash
}

// NewState opens the state persisted in kv
func NewState(kv storage.KV) (*KVState, error) {
	s := &KVState{kv: kv}

	root, ok, err := kv.Get(storage.HEAD)
	if err != nil {
		return nil, fmt.Errorf("failed to read head: %w", err)
	}

	if ok {
		s.root = types.BytesToHash(root)
	}

	return s, nil
}

func (s *KVState) NewSnapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return &kvSnapshot{kv: s.kv, root: s.root}
}

// Commit writes objs atomically. The new root chains the previous one with the
// encoding of every written object, so two states with the same history share it.
func (s *KVState) Commit(objs []*Object) (types.Hash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	batch := s.kv.NewBatch()
	h := keccak.DefaultKeccakPool.Get()

	defer keccak.DefaultKeccakPool.Put(h)

	h.Write(s.root.Bytes())

	for _, obj := range objs {
		key := storage.Key(storage.ACCOUNT, obj.Address.Bytes())
		h.Write(obj.Address.Bytes())

		if obj.Deleted {
			batch.Delete(key)

			continue
		}

		raw := obj.Account.MarshalRLP()
		h.Write(raw)
		batch.Put(key, raw)
	}

	root := types.BytesToHash(h.Sum(nil))
	batch.Put(storage.HEAD, root.Bytes())

	if err := batch.Write(); err != nil {
		return types.ZeroHash, err
	}

	s.root = root

	return root, nil
}

type kvSnapshot struct {
	kv   storage.KV
	root types.Hash
}

func (s *kvSnapshot) Root() types.Hash {
	return s.root
}

// GetAccount returns nil when the account does not exist
func (s *kvSnapshot) GetAccount(addr types.Address) (*Account, error) {
	raw, ok, err := s.kv.Get(storage.Key(storage.ACCOUNT, addr.Bytes()))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	account := &Account{}
	if err := account.UnmarshalRLP(raw); err != nil {
		return nil, fmt.Errorf("corrupted account %s: %w", addr, err)
	}

	return account, nil
}
