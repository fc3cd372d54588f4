package vmhooks

import (
	"encoding/binary"
	"errors"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
	"github.com/0xPolygon/wasm-vm/types"
)

// Memory is the linear memory of the running instance
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// SliceMemory is a fixed size memory backed by a byte slice
type SliceMemory []byte

func (m SliceMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m)) {
		return nil, false
	}

	return m[offset:end], true
}

func (m SliceMemory) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(m)) {
		return false
	}

	copy(m[offset:end], v)

	return true
}

const (
	reservedStorageKeyPrefix = types.ReservedStorageKeyPrefix

	// timeLockKeyPrefix prefixes the storage key holding the lock timestamp of a key
	timeLockKeyPrefix = "timelock"

	addressLen = types.AddressLength
	valueLen   = 32
	hashLen    = types.HashLength

	maxArguments = 1 << 20
)

// VMHooks is the host function surface of one frame. Every hook charges its gas
// before doing any work and reports failures as errors, which the runtimes turn
// into an early exit of the frame.
type VMHooks struct {
	host     runtime.Host
	contract *runtime.Contract
	schedule *gas.Schedule
	params   *chain.Params

	meter  *gas.Meter
	arena  *managed.Arena
	memory Memory
	random sha3.ShakeHash

	output    [][]byte
	logs      []*types.Log
	transfers []*runtime.OutputTransfer
	asyncCall *runtime.AsyncCall
	promises  []*runtime.AsyncCall

	// set by setAsyncContextCallback for the legacy async call
	callbackName    string
	callbackClosure []byte
	callbackGas     uint64
}

// New binds the hooks to a frame and seeds its reserved handles
func New(host runtime.Host, contract *runtime.Contract, schedule *gas.Schedule, params *chain.Params) (*VMHooks, error) {
	h := &VMHooks{
		host:     host,
		contract: contract,
		schedule: schedule,
		params:   params,
		meter:    gas.NewMeter(contract.Gas),
		arena:    managed.NewArena(contract.FrameID, params.BigFloatPrecision),
	}

	err := h.arena.Seed(
		contract.Caller,
		contract.Address,
		contract.Value,
		contract.ESDTTransfers,
		contract.CallbackClosure,
	)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// SetMemory attaches the linear memory of the instance
func (h *VMHooks) SetMemory(m Memory) {
	h.memory = m
}

func (h *VMHooks) Meter() *gas.Meter {
	return h.meter
}

func (h *VMHooks) Arena() *managed.Arena {
	return h.arena
}

func (h *VMHooks) Contract() *runtime.Contract {
	return h.contract
}

// Result builds the outcome of the frame. A frame that failed keeps none of its
// output and consumes all its gas.
func (h *VMHooks) Result(err error) *runtime.ExecutionResult {
	if err != nil && !errors.Is(err, runtime.ErrAsyncCallIssued) {
		return runtime.NewFailedResult(h.contract.Gas, err)
	}

	res := &runtime.ExecutionResult{
		ReturnData: h.output,
		Logs:       h.logs,
		GasLeft:    h.meter.GasLeft(),
		AsyncCall:  h.asyncCall,
		Promises:   h.promises,
		Transfers:  h.transfers,
	}
	res.UpdateGasUsed(h.contract.Gas)

	return res
}

func (h *VMHooks) appendOutput(data []byte) {
	h.output = append(h.output, append([]byte{}, data...))
}

func (h *VMHooks) self() types.Address {
	return h.contract.Address
}

func (h *VMHooks) useGas(cost uint64) error {
	return h.meter.UseGas(cost)
}

func (h *VMHooks) useGasForDataCopy(n int) error {
	return h.meter.UseGas(h.schedule.BaseOperationCost.DataCopyPerByte * uint64(n))
}

func (h *VMHooks) checkWritable() error {
	if h.contract.ReadOnly {
		return runtime.ErrReadOnlyViolation
	}

	return nil
}

func (h *VMHooks) memLoad(offset, length int32) ([]byte, error) {
	if length < 0 {
		return nil, runtime.ErrNegativeLength
	}

	if length == 0 {
		return []byte{}, nil
	}

	if h.memory == nil {
		return nil, runtime.ErrMemoryOutOfBounds
	}

	b, ok := h.memory.Read(uint32(offset), uint32(length))
	if !ok {
		return nil, runtime.ErrMemoryOutOfBounds
	}

	return append([]byte{}, b...), nil
}

func (h *VMHooks) memStore(offset int32, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if h.memory == nil || !h.memory.Write(uint32(offset), data) {
		return runtime.ErrMemoryOutOfBounds
	}

	return nil
}

// memLoadMultiple reads num values laid out back to back at dataOffset, their
// lengths being little endian i32s at lengthsOffset
func (h *VMHooks) memLoadMultiple(dataOffset, lengthsOffset, num int32) ([][]byte, error) {
	if num < 0 {
		return nil, runtime.ErrNegativeLength
	}

	if num == 0 {
		return [][]byte{}, nil
	}

	if num > maxArguments {
		return nil, runtime.ErrMemoryOutOfBounds
	}

	rawLengths, err := h.memLoad(lengthsOffset, num*4)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, num)

	for i := int32(0); i < num; i++ {
		length := int32(binary.LittleEndian.Uint32(rawLengths[i*4:]))

		item, err := h.memLoad(dataOffset, length)
		if err != nil {
			return nil, err
		}

		out = append(out, item)
		dataOffset += length
	}

	return out, nil
}

func (h *VMHooks) memLoadAddress(offset int32) (types.Address, error) {
	b, err := h.memLoad(offset, addressLen)
	if err != nil {
		return types.ZeroAddress, err
	}

	return types.BytesToAddress(b), nil
}

// memLoadValue reads a 32 byte big endian unsigned amount
func (h *VMHooks) memLoadValue(offset int32) (*big.Int, error) {
	b, err := h.memLoad(offset, valueLen)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(b), nil
}

func (h *VMHooks) bufferAddress(handle int32) (types.Address, error) {
	b, err := h.arena.Buffer(handle)
	if err != nil {
		return types.ZeroAddress, err
	}

	if len(b) != addressLen {
		return types.ZeroAddress, runtime.ErrInvalidAddress
	}

	return types.BytesToAddress(b), nil
}

func (h *VMHooks) argument(id int32) ([]byte, error) {
	if id < 0 || int(id) >= len(h.contract.Args) {
		return nil, runtime.ErrArgIndexOutOfRange
	}

	return h.contract.Args[id], nil
}

// randomReader is the deterministic entropy source of the frame
func (h *VMHooks) randomReader() sha3.ShakeHash {
	if h.random == nil {
		frame := make([]byte, 8)
		binary.BigEndian.PutUint64(frame, h.contract.FrameID)

		h.random = sha3.NewShake256()
		_, _ = h.random.Write(h.contract.TxHash.Bytes())
		_, _ = h.random.Write(h.host.GetBlockInfo().RandomSeed)
		_, _ = h.random.Write(frame)
	}

	return h.random
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}

	return 0
}
