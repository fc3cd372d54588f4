package storage

import "errors"

// Prefixes of the records persisted by the vm state
var (
	// ACCOUNT is the prefix of account records, followed by the address
	ACCOUNT = []byte("a")

	// HEAD is the key of the latest committed state root
	HEAD = []byte("o")
)

var ErrClosed = errors.New("storage closed")

// KV is a key value storage interface
type KV interface {
	Set(k, v []byte) error
	Get(k []byte) ([]byte, bool, error)
	Delete(k []byte) error
	NewBatch() Batch
	Close() error
}

// Batch collects writes that are applied atomically by Write
type Batch interface {
	Put(k, v []byte)
	Delete(k []byte)
	Write() error
}

// Key builds a record key from its prefix
func Key(prefix []byte, k []byte) []byte {
	key := make([]byte, 0, len(prefix)+len(k))
	key = append(key, prefix...)

	return append(key, k...)
}
