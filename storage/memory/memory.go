package memory

import (
	"sync"

	"github.com/0xPolygon/wasm-vm/helper/hex"
	"github.com/0xPolygon/wasm-vm/storage"
)

// NewMemoryStorage creates an in memory kv storage
func NewMemoryStorage() storage.KV {
	return &memoryKV{db: map[string][]byte{}}
}

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func (m *memoryKV) Set(p []byte, v []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[hex.EncodeToHex(p)] = append([]byte{}, v...)

	return nil
}

func (m *memoryKV) Get(p []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.db[hex.EncodeToHex(p)]
	if !ok {
		return nil, false, nil
	}

	return append([]byte{}, v...), true, nil
}

func (m *memoryKV) Delete(p []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.db, hex.EncodeToHex(p))

	return nil
}

func (m *memoryKV) NewBatch() storage.Batch {
	return &batch{kv: m}
}

func (m *memoryKV) Close() error {
	return nil
}

type batch struct {
	kv   *memoryKV
	puts map[string][]byte
	dels []string
}

func (b *batch) Put(k, v []byte) {
	if b.puts == nil {
		b.puts = map[string][]byte{}
	}

	b.puts[hex.EncodeToHex(k)] = append([]byte{}, v...)
}

func (b *batch) Delete(k []byte) {
	key := hex.EncodeToHex(k)

	delete(b.puts, key)
	b.dels = append(b.dels, key)
}

func (b *batch) Write() error {
	b.kv.lock.Lock()
	defer b.kv.lock.Unlock()

	for _, k := range b.dels {
		delete(b.kv.db, k)
	}

	for k, v := range b.puts {
		b.kv.db[k] = v
	}

	return nil
}
