package types

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/0xPolygon/wasm-vm/helper/hex"
	"github.com/0xPolygon/wasm-vm/helper/keccak"
)

const (
	HashLength    = 32
	AddressLength = 32

	// SCAddressNumLeadingZeros is the number of zero bytes that prefix every smart contract address
	SCAddressNumLeadingZeros = 8

	// MetachainShardID is the shard reported for protocol owned system addresses
	MetachainShardID = uint32(0xFFFFFFFF)
)

var (
	ZeroAddress = Address{}
	ZeroHash    = Hash{}

	// ESDTSystemSCAddress is the builtin function dispatch address. It also acts as the
	// balance neutral counterparty of minting and burning
	ESDTSystemSCAddress = StringToAddress("0x000000000000000000010000000000000000000000000000000000000002ffff")

	// WASMVMType is the vm type stamped into the addresses of deployed contracts
	WASMVMType = []byte{0x05, 0x00}
)

type Hash [HashLength]byte

type Address [AddressLength]byte

// BytesToHash converts the given bytes to a hash, keeping the rightmost bytes
func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	*h = BytesToHash(buf)

	return nil
}

// StringToHash converts a hex string to a hash
func StringToHash(str string) Hash {
	return BytesToHash(hex.MustDecodeHex(str))
}

// BytesToAddress converts the given bytes to an address, keeping the rightmost bytes
func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

// StringToAddress converts a hex string to an address
func StringToAddress(str string) Address {
	return BytesToAddress(hex.MustDecodeHex(str))
}

func (a Address) String() string {
	return hex.EncodeToHex(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	if len(buf) != AddressLength {
		return fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(buf))
	}

	*a = BytesToAddress(buf)

	return nil
}

// IsSmartContract returns true if the address carries the smart contract prefix
func (a Address) IsSmartContract() bool {
	for i := 0; i < SCAddressNumLeadingZeros; i++ {
		if a[i] != 0 {
			return false
		}
	}

	return true
}

// IsSystemAccount is true for the protocol owned addresses builtin functions are sent to
func (a Address) IsSystemAccount() bool {
	return a == ESDTSystemSCAddress
}

// NewContractAddress derives the address of a contract deployed by creator at the given nonce:
// 8 zero bytes, the vm type, bytes [10:30) of keccak256(creator || nonce as little endian)
// and the last two bytes of the creator, which keeps the contract in the creator's shard.
func NewContractAddress(creator Address, nonce uint64, vmType []byte) Address {
	nonceBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonceBytes, nonce)

	h := keccak.Keccak256Concat(creator[:], nonceBytes)

	var addr Address

	copy(addr[SCAddressNumLeadingZeros:], vmType)
	copy(addr[SCAddressNumLeadingZeros+len(vmType):AddressLength-2], h[SCAddressNumLeadingZeros+len(vmType):AddressLength-2])
	copy(addr[AddressLength-2:], creator[AddressLength-2:])

	return addr
}

// ShardOfAddress computes the shard of an address from its last byte
func ShardOfAddress(addr Address, numShards uint32) uint32 {
	if addr == ESDTSystemSCAddress {
		return MetachainShardID
	}

	if numShards <= 1 {
		return 0
	}

	n := uint32(bits.Len32(numShards - 1))
	maskHigh := uint32(1)<<n - 1
	maskLow := uint32(1)<<(n-1) - 1

	last := uint32(addr[AddressLength-1])

	shard := last & maskHigh
	if shard > numShards-1 {
		shard = last & maskLow
	}

	return shard
}

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}
