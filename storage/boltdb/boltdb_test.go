package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	storage.TestKV(t, func(t *testing.T) storage.KV {
		t.Helper()

		kv, err := NewBoltDBStorage(filepath.Join(t.TempDir(), "db"), hclog.NewNullLogger())
		require.NoError(t, err)

		return kv
	})
}
