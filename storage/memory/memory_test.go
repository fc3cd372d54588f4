package memory

import (
	"testing"

	"github.com/0xPolygon/wasm-vm/storage"
)

func TestStorage(t *testing.T) {
	storage.TestKV(t, func(t *testing.T) storage.KV {
		t.Helper()

		return NewMemoryStorage()
	})
}
