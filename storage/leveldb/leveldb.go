package leveldb

import (
	"errors"

	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	// minimum cache size in megabytes
	minCache = 16
	// minimum number of open file handles
	minHandles = 16
)

// NewLevelDBStorage opens (or creates) a leveldb database at path
func NewLevelDBStorage(path string, logger hclog.Logger) (storage.KV, error) {
	options := &opt.Options{
		OpenFilesCacheCapacity: minHandles,
		BlockCacheCapacity:     minCache / 2 * opt.MiB,
		WriteBuffer:            minCache / 4 * opt.MiB,
	}

	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, err
	}

	logger.Named("leveldb").Debug("opened database", "path", path)

	return &levelDBKV{db: db}, nil
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db *leveldb.DB
}

// Set sets the key-value pair in leveldb storage
func (l *levelDBKV) Set(p []byte, v []byte) error {
	return l.db.Put(p, v, nil)
}

// Get retrieves the key-value pair in leveldb storage
func (l *levelDBKV) Get(p []byte) ([]byte, bool, error) {
	data, err := l.db.Get(p, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

// Delete removes the key from leveldb storage
func (l *levelDBKV) Delete(p []byte) error {
	return l.db.Delete(p, nil)
}

// NewBatch creates a batch written with a single leveldb write
func (l *levelDBKV) NewBatch() storage.Batch {
	return &batch{db: l.db, b: new(leveldb.Batch)}
}

// Close closes the leveldb storage instance
func (l *levelDBKV) Close() error {
	return l.db.Close()
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(k, v []byte) {
	b.b.Put(k, v)
}

func (b *batch) Delete(k []byte) {
	b.b.Delete(k)
}

func (b *batch) Write() error {
	return b.db.Write(b.b, nil)
}
