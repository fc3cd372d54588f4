package leveldb

import (
	"testing"

	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	storage.TestKV(t, func(t *testing.T) storage.KV {
		t.Helper()

		kv, err := NewLevelDBStorage(t.TempDir(), hclog.NewNullLogger())
		require.NoError(t, err)

		return kv
	})
}
