package types

import (
	"encoding/binary"
	"testing"

	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContractAddress(t *testing.T) {
	t.Parallel()

	creator := StringToAddress("0x0101010101010101010101010101010101010101010101010101010101010a0b")

	addr := NewContractAddress(creator, 5, WASMVMType)

	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, 5)
	h := keccak.Keccak256Concat(creator[:], nonce)

	assert.True(t, addr.IsSmartContract())
	assert.Equal(t, WASMVMType, addr[8:10])
	assert.Equal(t, h[10:30], addr[10:30])
	assert.Equal(t, []byte{0x0a, 0x0b}, addr[30:32])

	// deterministic, and nonce dependent
	assert.Equal(t, addr, NewContractAddress(creator, 5, WASMVMType))
	assert.NotEqual(t, addr, NewContractAddress(creator, 6, WASMVMType))
}

func TestAddress_IsSmartContract(t *testing.T) {
	t.Parallel()

	assert.True(t, ESDTSystemSCAddress.IsSmartContract())
	assert.True(t, StringToAddress("0x01").IsSmartContract())
	assert.False(t, BytesToAddress([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32}).IsSmartContract())
}

func TestAddress_IsSystemAccount(t *testing.T) {
	t.Parallel()

	assert.True(t, ESDTSystemSCAddress.IsSystemAccount())
	assert.False(t, NewContractAddress(StringToAddress("0x01"), 1, WASMVMType).IsSystemAccount())
	assert.False(t, ZeroAddress.IsSystemAccount())
}

func TestAddress_Text(t *testing.T) {
	t.Parallel()

	addr := ESDTSystemSCAddress

	text, err := addr.MarshalText()
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, addr, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("0x0102")))
}

func TestShardOfAddress(t *testing.T) {
	t.Parallel()

	addr := Address{}
	addr[31] = 0x07

	assert.Equal(t, uint32(0), ShardOfAddress(addr, 1))
	assert.Equal(t, uint32(1), ShardOfAddress(addr, 2))
	assert.Equal(t, uint32(1), ShardOfAddress(addr, 3))
	assert.Equal(t, MetachainShardID, ShardOfAddress(ESDTSystemSCAddress, 3))
}

func TestCodeMetadata(t *testing.T) {
	t.Parallel()

	m := CodeMetadataFromBytes([]byte{0x05, 0x06})
	assert.True(t, m.Upgradeable())
	assert.True(t, m.Readable())
	assert.True(t, m.Payable())
	assert.True(t, m.PayableBySC())
	assert.Equal(t, []byte{0x05, 0x06}, m.Bytes())

	assert.Equal(t, MetadataPayable, CodeMetadataFromBytes([]byte{0x02}))
	assert.Equal(t, CodeMetadata(0), CodeMetadataFromBytes([]byte{0x80, 0x01}))
}
