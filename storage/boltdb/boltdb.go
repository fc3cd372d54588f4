package boltdb

import (
	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

var bucket = []byte{'b'}

// NewBoltDBStorage opens (or creates) a bolt database file at path
func NewBoltDBStorage(path string, logger hclog.Logger) (storage.KV, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)

		return err
	}); err != nil {
		return nil, err
	}

	logger.Named("boltdb").Debug("opened database", "path", path)

	return &boltDBKV{db: db}, nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

func (l *boltDBKV) Set(p []byte, v []byte) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(p, v)
	})
}

func (l *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)

	err := l.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(p); v != nil {
			// v is only valid for the lifetime of the tx, therefore copying
			data = make([]byte, len(v))
			copy(data, v)
			found = true
		}

		return nil
	})

	return data, found, err
}

func (l *boltDBKV) Delete(p []byte) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete(p)
	})
}

func (l *boltDBKV) NewBatch() storage.Batch {
	return &batch{db: l.db}
}

func (l *boltDBKV) Close() error {
	return l.db.Close()
}

type op struct {
	key   []byte
	value []byte
	del   bool
}

// batch replays its operations inside one bolt update transaction
type batch struct {
	db  *bolt.DB
	ops []op
}

func (b *batch) Put(k, v []byte) {
	b.ops = append(b.ops, op{key: k, value: v})
}

func (b *batch) Delete(k []byte) {
	b.ops = append(b.ops, op{key: k, del: true})
}

func (b *batch) Write() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)

		for _, o := range b.ops {
			var err error
			if o.del {
				err = bkt.Delete(o.key)
			} else {
				err = bkt.Put(o.key, o.value)
			}

			if err != nil {
				return err
			}
		}

		return nil
	})
}
