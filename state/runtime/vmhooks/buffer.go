package vmhooks

import (
	"bytes"
	"io"

	"github.com/0xPolygon/wasm-vm/helper/hex"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
	"github.com/0xPolygon/wasm-vm/types"
)

const (
	resultOk    int32 = 0
	resultError int32 = 1
)

// sliceBounds reports whether [start, start+length) lies inside a buffer of size n
func sliceBounds(start, length int32, n int) bool {
	if start < 0 || length < 0 {
		return false
	}

	return int64(start)+int64(length) <= int64(n)
}

func (h *VMHooks) MBufferNew() (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferNew); err != nil {
		return 0, err
	}

	return h.arena.NewBuffer(nil), nil
}

func (h *VMHooks) MBufferNewFromBytes(dataOffset int32, dataLength int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferNewFromBytes); err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	return h.arena.NewBuffer(data), nil
}

func (h *VMHooks) MBufferGetLength(mBufferHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferGetLength); err != nil {
		return 0, err
	}

	n, err := h.arena.BufferLen(mBufferHandle)
	if err != nil {
		return 0, err
	}

	return int32(n), nil
}

func (h *VMHooks) MBufferGetBytes(mBufferHandle int32, resultOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferGetBytes); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(mBufferHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(b)); err != nil {
		return 0, err
	}

	return resultOk, h.memStore(resultOffset, b)
}

// MBufferGetByteSlice copies a slice of the buffer to memory. A slice out of the
// buffer bounds returns 1 and leaves memory untouched.
func (h *VMHooks) MBufferGetByteSlice(sourceHandle int32, startingPosition int32, sliceLength int32, resultOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferGetByteSlice); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(sourceHandle)
	if err != nil {
		return 0, err
	}

	if !sliceBounds(startingPosition, sliceLength, len(b)) {
		return resultError, nil
	}

	if err := h.useGasForDataCopy(int(sliceLength)); err != nil {
		return 0, err
	}

	return resultOk, h.memStore(resultOffset, b[startingPosition:startingPosition+sliceLength])
}

func (h *VMHooks) MBufferCopyByteSlice(sourceHandle int32, startingPosition int32, sliceLength int32, destinationHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferCopyByteSlice); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(sourceHandle)
	if err != nil {
		return 0, err
	}

	if !sliceBounds(startingPosition, sliceLength, len(b)) {
		return resultError, nil
	}

	if err := h.useGasForDataCopy(int(sliceLength)); err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(destinationHandle, b[startingPosition:startingPosition+sliceLength])
}

func (h *VMHooks) MBufferEq(mBufferHandle1 int32, mBufferHandle2 int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferEq); err != nil {
		return 0, err
	}

	b1, err := h.arena.Buffer(mBufferHandle1)
	if err != nil {
		return 0, err
	}

	b2, err := h.arena.Buffer(mBufferHandle2)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(b1) + len(b2)); err != nil {
		return 0, err
	}

	return boolToInt32(bytes.Equal(b1, b2)), nil
}

func (h *VMHooks) MBufferSetBytes(mBufferHandle int32, dataOffset int32, dataLength int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferSetBytes); err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(mBufferHandle, data)
}

// MBufferSetByteSlice overwrites part of the buffer in place. It returns 1 when
// the slice does not fit in the buffer.
func (h *VMHooks) MBufferSetByteSlice(mBufferHandle int32, startingPosition int32, dataLength int32, dataOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferSetByteSlice); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(mBufferHandle)
	if err != nil {
		return 0, err
	}

	if !sliceBounds(startingPosition, dataLength, len(b)) {
		return resultError, nil
	}

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	copy(b[startingPosition:], data)

	return resultOk, h.arena.SetBuffer(mBufferHandle, b)
}

func (h *VMHooks) MBufferAppend(accumulatorHandle int32, dataHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferAppend); err != nil {
		return 0, err
	}

	data, err := h.arena.Buffer(dataHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	return resultOk, h.arena.AppendBuffer(accumulatorHandle, data)
}

func (h *VMHooks) MBufferAppendBytes(accumulatorHandle int32, dataOffset int32, dataLength int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferAppendBytes); err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	return resultOk, h.arena.AppendBuffer(accumulatorHandle, data)
}

func (h *VMHooks) MBufferToBigIntUnsigned(mBufferHandle int32, bigIntHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferToBigIntUnsigned); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(mBufferHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBigInt(bigIntHandle, types.TopDecodeBigUint(b))
}

func (h *VMHooks) MBufferToBigIntSigned(mBufferHandle int32, bigIntHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferToBigIntSigned); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(mBufferHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBigInt(bigIntHandle, types.TopDecodeBigInt(b))
}

func (h *VMHooks) MBufferFromBigIntUnsigned(mBufferHandle int32, bigIntHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferFromBigIntUnsigned); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(bigIntHandle)
	if err != nil {
		return 0, err
	}

	b, err := types.TopEncodeBigUint(v)
	if err != nil {
		return 0, ErrNegativeUnsigned
	}

	return resultOk, h.arena.SetBuffer(mBufferHandle, b)
}

func (h *VMHooks) MBufferFromBigIntSigned(mBufferHandle int32, bigIntHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferFromBigIntSigned); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(bigIntHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(mBufferHandle, types.TopEncodeBigInt(v))
}

func (h *VMHooks) MBufferToBigFloat(mBufferHandle int32, bigFloatHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferToBigFloat); err != nil {
		return 0, err
	}

	b, err := h.arena.Buffer(mBufferHandle)
	if err != nil {
		return 0, err
	}

	if len(b) == 0 {
		return 0, ErrBufferToBigFloat
	}

	v, err := h.arena.DecodeFloat(b)
	if err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBigFloat(bigFloatHandle, v)
}

func (h *VMHooks) MBufferFromBigFloat(mBufferHandle int32, bigFloatHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferFromBigFloat); err != nil {
		return 0, err
	}

	v, err := h.arena.BigFloat(bigFloatHandle)
	if err != nil {
		return 0, err
	}

	b, err := managed.EncodeFloat(v)
	if err != nil {
		return 0, managed.ErrBigFloatEncoding
	}

	return resultOk, h.arena.SetBuffer(mBufferHandle, b)
}

// MBufferSetRandom fills the buffer with bytes of the deterministic random stream of the frame
func (h *VMHooks) MBufferSetRandom(destinationHandle int32, length int32) (int32, error) {
	if length < 0 {
		return 0, runtime.ErrNegativeLength
	}

	cost := h.schedule.ManagedBufferAPICost.MBufferSetRandom +
		h.schedule.BaseOperationCost.DataCopyPerByte*uint64(length)
	if err := h.useGas(cost); err != nil {
		return 0, err
	}

	b := make([]byte, length)
	if _, err := io.ReadFull(h.randomReader(), b); err != nil {
		return 0, runtime.ErrExecutionFailed
	}

	return resultOk, h.arena.SetBuffer(destinationHandle, b)
}

func (h *VMHooks) ManagedBufferToHex(sourceHandle int32, destHandle int32) error {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferToHex); err != nil {
		return err
	}

	b, err := h.arena.Buffer(sourceHandle)
	if err != nil {
		return err
	}

	encoded := hex.EncodeToString(b)
	if err := h.useGasForDataCopy(len(encoded)); err != nil {
		return err
	}

	return h.arena.SetBuffer(destHandle, []byte(encoded))
}

func (h *VMHooks) ManagedMapNew() (int32, error) {
	if err := h.useGas(h.schedule.ManagedMapAPICost.ManagedMapNew); err != nil {
		return 0, err
	}

	return h.arena.NewMap(), nil
}

func (h *VMHooks) mapAndKey(mapHandle, keyHandle int32) (map[string][]byte, []byte, error) {
	m, err := h.arena.Map(mapHandle)
	if err != nil {
		return nil, nil, err
	}

	key, err := h.arena.Buffer(keyHandle)
	if err != nil {
		return nil, nil, err
	}

	return m, key, nil
}

func (h *VMHooks) ManagedMapPut(mMapHandle int32, keyHandle int32, valueHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedMapAPICost.ManagedMapPut); err != nil {
		return 0, err
	}

	m, key, err := h.mapAndKey(mMapHandle, keyHandle)
	if err != nil {
		return 0, err
	}

	value, err := h.arena.Buffer(valueHandle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(key) + len(value)); err != nil {
		return 0, err
	}

	m[string(key)] = value

	return resultOk, nil
}

func (h *VMHooks) ManagedMapGet(mMapHandle int32, keyHandle int32, outValueHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedMapAPICost.ManagedMapGet); err != nil {
		return 0, err
	}

	m, key, err := h.mapAndKey(mMapHandle, keyHandle)
	if err != nil {
		return 0, err
	}

	value := m[string(key)]
	if err := h.useGasForDataCopy(len(value)); err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(outValueHandle, value)
}

func (h *VMHooks) ManagedMapRemove(mMapHandle int32, keyHandle int32, outValueHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedMapAPICost.ManagedMapRemove); err != nil {
		return 0, err
	}

	m, key, err := h.mapAndKey(mMapHandle, keyHandle)
	if err != nil {
		return 0, err
	}

	value := m[string(key)]
	delete(m, string(key))

	return resultOk, h.arena.SetBuffer(outValueHandle, value)
}

func (h *VMHooks) ManagedMapContains(mMapHandle int32, keyHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedMapAPICost.ManagedMapContains); err != nil {
		return 0, err
	}

	m, key, err := h.mapAndKey(mMapHandle, keyHandle)
	if err != nil {
		return 0, err
	}

	_, ok := m[string(key)]

	return boolToInt32(ok), nil
}

