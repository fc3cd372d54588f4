package vmhooks

import (
	"bytes"
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

// StorageStatus is returned by the storage writing hooks
type StorageStatus int32

const (
	StorageUnchanged StorageStatus = iota
	StorageModified
	StorageAdded
	StorageDeleted
)

func isReservedKey(key []byte) bool {
	return bytes.HasPrefix(key, []byte(reservedStorageKeyPrefix))
}

// storageWrite validates and applies a write to the storage of the frame. The base
// cost of the hook is charged by the caller.
func (h *VMHooks) storageWrite(key, value []byte) (StorageStatus, error) {
	if err := h.checkWritable(); err != nil {
		return 0, err
	}

	if isReservedKey(key) {
		return 0, runtime.ErrReservedKeyWrite
	}

	old := h.host.GetStorage(h.self(), key)

	status := StorageModified

	switch {
	case bytes.Equal(old, value):
		return StorageUnchanged, nil
	case len(value) == 0:
		status = StorageDeleted
	case len(old) == 0:
		status = StorageAdded
	}

	if len(value) > len(old) {
		persist := uint64(len(value) - len(old))
		if err := h.useGas(h.schedule.BaseOperationCost.PersistPerByte * persist); err != nil {
			return 0, err
		}
	}

	if err := h.useGas(h.schedule.BaseOperationCost.StorePerByte * uint64(len(value))); err != nil {
		return 0, err
	}

	h.host.SetStorage(h.self(), key, value)

	return status, nil
}

func (h *VMHooks) storageRead(addr types.Address, key []byte) ([]byte, error) {
	value := h.host.GetStorage(addr, key)
	if err := h.useGasForDataCopy(len(value)); err != nil {
		return nil, err
	}

	return value, nil
}

// readableBy reports whether the frame may read the storage of addr
func (h *VMHooks) readableBy(addr types.Address) bool {
	return addr == h.self() || h.host.GetCodeMetadata(addr).Readable()
}

func (h *VMHooks) StorageStore(keyOffset int32, keyLength int32, dataOffset int32, dataLength int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.StorageStore); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	status, err := h.storageWrite(key, data)

	return int32(status), err
}

func (h *VMHooks) StorageLoadLength(keyOffset int32, keyLength int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.StorageLoad); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	value, err := h.storageRead(h.self(), key)
	if err != nil {
		return 0, err
	}

	return int32(len(value)), nil
}

func (h *VMHooks) StorageLoad(keyOffset int32, keyLength int32, dataOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.StorageLoad); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	value, err := h.storageRead(h.self(), key)
	if err != nil {
		return 0, err
	}

	if err := h.memStore(dataOffset, value); err != nil {
		return 0, err
	}

	return int32(len(value)), nil
}

// StorageLoadFromAddress reads the storage of another account. Accounts that are
// not readable look empty.
func (h *VMHooks) StorageLoadFromAddress(addressOffset int32, keyOffset int32, keyLength int32, dataOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.StorageLoad); err != nil {
		return 0, err
	}

	addr, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	if !h.readableBy(addr) {
		return 0, nil
	}

	value, err := h.storageRead(addr, key)
	if err != nil {
		return 0, err
	}

	if err := h.memStore(dataOffset, value); err != nil {
		return 0, err
	}

	return int32(len(value)), nil
}

func (h *VMHooks) MBufferStorageStore(keyHandle int32, sourceHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferStorageStore); err != nil {
		return 0, err
	}

	key, err := h.arena.Buffer(keyHandle)
	if err != nil {
		return 0, err
	}

	data, err := h.arena.Buffer(sourceHandle)
	if err != nil {
		return 0, err
	}

	if _, err := h.storageWrite(key, data); err != nil {
		return 0, err
	}

	return 0, nil
}

func (h *VMHooks) MBufferStorageLoad(keyHandle int32, destinationHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferStorageLoad); err != nil {
		return 0, err
	}

	key, err := h.arena.Buffer(keyHandle)
	if err != nil {
		return 0, err
	}

	value, err := h.storageRead(h.self(), key)
	if err != nil {
		return 0, err
	}

	return 0, h.arena.SetBuffer(destinationHandle, value)
}

func (h *VMHooks) MBufferStorageLoadFromAddress(addressHandle int32, keyHandle int32, destinationHandle int32) error {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferStorageLoad); err != nil {
		return err
	}

	addr, err := h.bufferAddress(addressHandle)
	if err != nil {
		return err
	}

	key, err := h.arena.Buffer(keyHandle)
	if err != nil {
		return err
	}

	if !h.readableBy(addr) {
		return h.arena.SetBuffer(destinationHandle, nil)
	}

	value, err := h.storageRead(addr, key)
	if err != nil {
		return err
	}

	return h.arena.SetBuffer(destinationHandle, value)
}

func (h *VMHooks) BigIntStorageStoreUnsigned(keyOffset int32, keyLength int32, sourceHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntStorageStoreUnsigned); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(sourceHandle)
	if err != nil {
		return 0, err
	}

	value, err := types.TopEncodeBigUint(v)
	if err != nil {
		return 0, ErrStorageValueOutOfRange
	}

	status, err := h.storageWrite(key, value)

	return int32(status), err
}

func (h *VMHooks) BigIntStorageLoadUnsigned(keyOffset int32, keyLength int32, destinationHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntStorageLoadUnsigned); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	value, err := h.storageRead(h.self(), key)
	if err != nil {
		return 0, err
	}

	if err := h.arena.SetBigInt(destinationHandle, types.TopDecodeBigUint(value)); err != nil {
		return 0, err
	}

	return int32(len(value)), nil
}

func (h *VMHooks) SmallIntStorageStoreUnsigned(keyOffset int32, keyLength int32, value int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64StorageStore); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	status, err := h.storageWrite(key, types.TopEncodeUint64(uint64(value)))

	return int32(status), err
}

func (h *VMHooks) SmallIntStorageStoreSigned(keyOffset int32, keyLength int32, value int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64StorageStore); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	status, err := h.storageWrite(key, types.TopEncodeInt64(value))

	return int32(status), err
}

func (h *VMHooks) SmallIntStorageLoadUnsigned(keyOffset int32, keyLength int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64StorageLoad); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	value, err := h.storageRead(h.self(), key)
	if err != nil {
		return 0, err
	}

	v, err := types.TopDecodeUint64(value)
	if err != nil {
		return 0, ErrStorageValueOutOfRange
	}

	return int64(v), nil
}

func (h *VMHooks) SmallIntStorageLoadSigned(keyOffset int32, keyLength int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64StorageLoad); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	value, err := h.storageRead(h.self(), key)
	if err != nil {
		return 0, err
	}

	v, err := types.TopDecodeInt64(value)
	if err != nil {
		return 0, ErrStorageValueOutOfRange
	}

	return v, nil
}

func (h *VMHooks) Int64storageStore(keyOffset int32, keyLength int32, value int64) (int32, error) {
	return h.SmallIntStorageStoreSigned(keyOffset, keyLength, value)
}

func (h *VMHooks) Int64storageLoad(keyOffset int32, keyLength int32) (int64, error) {
	return h.SmallIntStorageLoadSigned(keyOffset, keyLength)
}

func timeLockKey(key []byte) []byte {
	return append([]byte(timeLockKeyPrefix), key...)
}

// SetStorageLock stores the timestamp until which the key is locked
func (h *VMHooks) SetStorageLock(keyOffset int32, keyLength int32, lockTimestamp int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64StorageStore); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	if lockTimestamp < 0 {
		return 0, ErrArgumentOutOfRange
	}

	value := new(big.Int).SetInt64(lockTimestamp).Bytes()

	status, err := h.storageWrite(timeLockKey(key), value)

	return int32(status), err
}

func (h *VMHooks) storageLock(key []byte) (int64, error) {
	value, err := h.storageRead(h.self(), timeLockKey(key))
	if err != nil {
		return 0, err
	}

	v, err := types.TopDecodeUint64(value)
	if err != nil {
		return 0, ErrStorageValueOutOfRange
	}

	return int64(v), nil
}

func (h *VMHooks) GetStorageLock(keyOffset int32, keyLength int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.StorageLoad); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	return h.storageLock(key)
}

// IsStorageLocked is true while the lock timestamp lies after the current block
func (h *VMHooks) IsStorageLocked(keyOffset int32, keyLength int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.StorageLoad); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	lock, err := h.storageLock(key)
	if err != nil {
		return 0, err
	}

	return boolToInt32(uint64(lock) > h.host.GetBlockInfo().Timestamp), nil
}

func (h *VMHooks) ClearStorageLock(keyOffset int32, keyLength int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64StorageStore); err != nil {
		return 0, err
	}

	key, err := h.memLoad(keyOffset, keyLength)
	if err != nil {
		return 0, err
	}

	status, err := h.storageWrite(timeLockKey(key), nil)

	return int32(status), err
}
