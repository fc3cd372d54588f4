package vmhooks

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

const testGas = 100_000_000

var (
	addrSelf   = types.StringToAddress("0x000000000000000000000500aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrCaller = types.StringToAddress("0x1111111111111111111111111111111111111111111111111111111111111111")
	addrOther  = types.StringToAddress("0x000000000000000000000500bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type fakeHost struct {
	storage  map[types.Address]map[string][]byte
	metadata map[types.Address]types.CodeMetadata
	code     map[types.Address][]byte
	block    types.BlockInfo

	calls []*runtime.Contract
	call  func(c *runtime.Contract) *runtime.ExecutionResult
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		storage:  map[types.Address]map[string][]byte{},
		metadata: map[types.Address]types.CodeMetadata{},
		code:     map[types.Address][]byte{},
		block:    types.BlockInfo{Timestamp: 1000, RandomSeed: []byte{1, 2, 3}},
	}
}

func (f *fakeHost) AccountExists(addr types.Address) bool     { return true }
func (f *fakeHost) GetBalance(addr types.Address) *big.Int    { return big.NewInt(0) }
func (f *fakeHost) GetNonce(addr types.Address) uint64        { return 0 }
func (f *fakeHost) GetCode(addr types.Address) []byte         { return f.code[addr] }
func (f *fakeHost) GetOwner(addr types.Address) types.Address { return types.ZeroAddress }

func (f *fakeHost) GetCodeMetadata(addr types.Address) types.CodeMetadata {
	return f.metadata[addr]
}

func (f *fakeHost) GetStorage(addr types.Address, key []byte) []byte {
	return f.storage[addr][string(key)]
}

func (f *fakeHost) SetStorage(addr types.Address, key []byte, value []byte) {
	if f.storage[addr] == nil {
		f.storage[addr] = map[string][]byte{}
	}

	if len(value) == 0 {
		delete(f.storage[addr], string(key))

		return
	}

	f.storage[addr][string(key)] = value
}

func (f *fakeHost) GetEsdtBalance(addr types.Address, tokenID []byte, nonce uint64) *big.Int {
	return big.NewInt(0)
}

func (f *fakeHost) GetEsdtData(addr types.Address, tokenID []byte) (*types.EsdtData, bool) {
	return nil, false
}

func (f *fakeHost) GetEsdtInstance(addr types.Address, tokenID []byte, nonce uint64) (*types.EsdtInstance, bool) {
	return nil, false
}

func (f *fakeHost) GetTokenInfo(tokenID []byte) (*types.TokenInfo, bool) { return nil, false }
func (f *fakeHost) GetBlockInfo() types.BlockInfo                         { return f.block }
func (f *fakeHost) GetPrevBlockInfo() types.BlockInfo                     { return types.BlockInfo{} }
func (f *fakeHost) GetBlockHash(nonce uint64) types.Hash                  { return types.ZeroHash }
func (f *fakeHost) GetStateRootHash() types.Hash                          { return types.ZeroHash }
func (f *fakeHost) ShardOfAddress(addr types.Address) uint32              { return 0 }
func (f *fakeHost) IsBuiltinFunction(name string) bool                    { return false }

func (f *fakeHost) Call(c *runtime.Contract) *runtime.ExecutionResult {
	f.calls = append(f.calls, c)

	if f.call != nil {
		return f.call(c)
	}

	return &runtime.ExecutionResult{GasLeft: c.Gas}
}

func newTestHooks(t *testing.T, host *fakeHost, modify ...func(c *runtime.Contract)) (*VMHooks, SliceMemory) {
	t.Helper()

	c := runtime.NewContractCall(0, addrCaller, addrCaller, addrSelf, big.NewInt(0), testGas, "run", nil)
	c.FrameID = 1

	for _, m := range modify {
		m(c)
	}

	h, err := New(host, c, gas.DefaultSchedule(), chain.DefaultParams())
	require.NoError(t, err)

	mem := make(SliceMemory, 4096)
	h.SetMemory(mem)

	return h, mem
}

func readOnly(c *runtime.Contract) { c.ReadOnly = true }

func TestMemoryOutOfBounds(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())

	_, err := h.StorageStore(int32(len(mem))-2, 4, 0, 1)
	assert.ErrorIs(t, err, runtime.ErrMemoryOutOfBounds)

	_, err = h.StorageStore(0, -1, 0, 1)
	assert.ErrorIs(t, err, runtime.ErrNegativeLength)

	err = h.Finish(int32(len(mem)), 1)
	assert.ErrorIs(t, err, runtime.ErrMemoryOutOfBounds)
}

func TestStorage_Status(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())

	copy(mem[0:], "key")
	copy(mem[16:], "abcd")

	cases := []struct {
		name   string
		length int32
		status StorageStatus
	}{
		{name: "added", length: 2, status: StorageAdded},
		{name: "unchanged", length: 2, status: StorageUnchanged},
		{name: "modified", length: 4, status: StorageModified},
		{name: "deleted", length: 0, status: StorageDeleted},
		{name: "deleted again", length: 0, status: StorageUnchanged},
	}

	// the writes build on each other, so they run in order
	for _, c := range cases {
		status, err := h.StorageStore(0, 3, 16, c.length)
		require.NoError(t, err, c.name)
		assert.Equal(t, int32(c.status), status, c.name)
	}
}

func TestStorage_Restrictions(t *testing.T) {
	t.Parallel()

	t.Run("reserved key", func(t *testing.T) {
		t.Parallel()

		h, mem := newTestHooks(t, newFakeHost())
		copy(mem, "ELRONDsomething")

		_, err := h.StorageStore(0, 15, 0, 1)
		assert.ErrorIs(t, err, runtime.ErrReservedKeyWrite)
	})

	t.Run("read only frame", func(t *testing.T) {
		t.Parallel()

		h, mem := newTestHooks(t, newFakeHost(), readOnly)
		copy(mem, "key")

		_, err := h.StorageStore(0, 3, 0, 1)
		assert.ErrorIs(t, err, runtime.ErrReadOnlyViolation)
	})

	t.Run("unreadable account", func(t *testing.T) {
		t.Parallel()

		host := newFakeHost()
		host.SetStorage(addrOther, []byte("key"), []byte("secret"))

		h, mem := newTestHooks(t, host)
		copy(mem, addrOther.Bytes())
		copy(mem[64:], "key")

		n, err := h.StorageLoadFromAddress(0, 64, 3, 128)
		require.NoError(t, err)
		assert.Equal(t, int32(0), n)

		host.metadata[addrOther] = types.MetadataReadable

		n, err = h.StorageLoadFromAddress(0, 64, 3, 128)
		require.NoError(t, err)
		assert.Equal(t, int32(6), n)
		assert.Equal(t, "secret", string(mem[128:134]))
	})
}

func TestHooks_GasBeforeMemory(t *testing.T) {
	t.Parallel()

	schedule := gas.DefaultSchedule()

	// offsets past the end of memory only fail once the hook was paid for
	cases := []struct {
		name string
		cost uint64
		call func(h *VMHooks, bad int32) error
	}{
		{
			name: "store",
			cost: schedule.BaseOpsAPICost.StorageStore,
			call: func(h *VMHooks, bad int32) error {
				_, err := h.StorageStore(bad, 4, bad, 4)

				return err
			},
		},
		{
			name: "load",
			cost: schedule.BaseOpsAPICost.StorageLoad,
			call: func(h *VMHooks, bad int32) error {
				_, err := h.StorageLoad(bad, 4, 0)

				return err
			},
		},
		{
			name: "small int store",
			cost: schedule.BaseOpsAPICost.Int64StorageStore,
			call: func(h *VMHooks, bad int32) error {
				_, err := h.SmallIntStorageStoreUnsigned(bad, 4, 1)

				return err
			},
		},
		{
			name: "finish",
			cost: schedule.BaseOpsAPICost.Finish,
			call: func(h *VMHooks, bad int32) error {
				return h.Finish(bad, 4)
			},
		},
		{
			name: "write log",
			cost: schedule.BaseOpsAPICost.Log,
			call: func(h *VMHooks, bad int32) error {
				return h.WriteLog(bad, 4, 0, 0)
			},
		},
		{
			name: "storage lock",
			cost: schedule.BaseOpsAPICost.StorageLoad,
			call: func(h *VMHooks, bad int32) error {
				_, err := h.GetStorageLock(bad, 4)

				return err
			},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h, mem := newTestHooks(t, newFakeHost(), func(ct *runtime.Contract) { ct.Gas = c.cost - 1 })
			assert.ErrorIs(t, c.call(h, int32(len(mem))), runtime.ErrOutOfGas)

			h, mem = newTestHooks(t, newFakeHost())
			before := h.Meter().GasLeft()

			assert.ErrorIs(t, c.call(h, int32(len(mem))), runtime.ErrMemoryOutOfBounds)
			assert.Equal(t, before-c.cost, h.Meter().GasLeft())
		})
	}
}

func TestBigInt_DivisionByZero(t *testing.T) {
	t.Parallel()

	h, _ := newTestHooks(t, newFakeHost())

	x, err := h.BigIntNew(10)
	require.NoError(t, err)

	zero, err := h.BigIntNew(0)
	require.NoError(t, err)

	assert.ErrorIs(t, h.BigIntTDiv(x, x, zero), runtime.ErrDivisionByZero)
	assert.ErrorIs(t, h.BigIntTMod(x, x, zero), runtime.ErrDivisionByZero)
}

func TestBigInt_Int64Range(t *testing.T) {
	t.Parallel()

	h, _ := newTestHooks(t, newFakeHost())

	x, err := h.BigIntNew(7)
	require.NoError(t, err)

	v, err := h.BigIntGetInt64(x)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	require.NoError(t, h.BigIntShl(x, x, 70))

	_, err = h.BigIntGetInt64(x)
	assert.ErrorIs(t, err, ErrBigIntNotInt64)
}

func TestHandles_ForeignFrame(t *testing.T) {
	t.Parallel()

	h1, _ := newTestHooks(t, newFakeHost())
	h2, _ := newTestHooks(t, newFakeHost(), func(c *runtime.Contract) { c.FrameID = 2 })

	x, err := h1.BigIntNew(1)
	require.NoError(t, err)

	y, err := h2.BigIntNew(1)
	require.NoError(t, err)

	assert.Error(t, h2.BigIntAdd(y, y, x))
}

func TestBuffer_ByteSlice(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())
	copy(mem, "hello")

	buf, err := h.MBufferNewFromBytes(0, 5)
	require.NoError(t, err)

	cases := []struct {
		name   string
		start  int32
		length int32
		result int32
		want   string
	}{
		{name: "inside", start: 1, length: 3, result: resultOk, want: "ell"},
		{name: "up to the end", start: 0, length: 5, result: resultOk, want: "hello"},
		{name: "past the end", start: 3, length: 3, result: resultError},
		{name: "negative start", start: -1, length: 2, result: resultError},
		{name: "negative length", start: 0, length: -1, result: resultError},
	}

	for _, c := range cases {
		for i := 100; i < 110; i++ {
			mem[i] = 0xee
		}

		res, err := h.MBufferGetByteSlice(buf, c.start, c.length, 100)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.result, res, c.name)

		if c.result == resultOk {
			assert.Equal(t, c.want, string(mem[100:100+c.length]), c.name)
		} else {
			assert.Equal(t, byte(0xee), mem[100], c.name)
		}
	}
}

func TestWriteLog(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())

	copy(mem[0:], "event")

	lengths := mem[64:]
	binary.LittleEndian.PutUint32(lengths[0:], 3)
	binary.LittleEndian.PutUint32(lengths[4:], 3)

	copy(mem[128:], "evttop")

	require.NoError(t, h.WriteEventLog(2, 64, 128, 0, 5))

	res := h.Result(nil)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, addrSelf, res.Logs[0].Address)
	assert.Equal(t, "evt", string(res.Logs[0].Identifier))
	assert.Equal(t, [][]byte{[]byte("top")}, res.Logs[0].Topics)
	assert.Equal(t, "event", string(res.Logs[0].Data))
}

func TestReturnData(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())
	copy(mem, "abc")

	require.NoError(t, h.Finish(0, 1))
	require.NoError(t, h.Finish(0, 3))

	n, err := h.GetNumReturnData()
	require.NoError(t, err)
	assert.Equal(t, int32(2), n)

	size, err := h.GetReturnDataSize(1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), size)

	require.NoError(t, h.DeleteFromReturnData(0))

	size, err = h.GetReturnDataSize(0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), size)

	_, err = h.GetReturnDataSize(1)
	assert.ErrorIs(t, err, runtime.ErrReturnDataOutOfRange)

	require.NoError(t, h.CleanReturnData())

	n, err = h.GetNumReturnData()
	require.NoError(t, err)
	assert.Equal(t, int32(0), n)
}

func TestTransferExecute_Encoding(t *testing.T) {
	t.Parallel()

	token := []byte("NFT-123456")

	cases := []struct {
		name     string
		nonce    int64
		address  types.Address
		function string
		args     [][]byte
	}{
		{
			name:     "fungible",
			nonce:    0,
			address:  addrOther,
			function: types.BuiltinESDTTransfer,
			args:     [][]byte{token, {0x07}, []byte("buy")},
		},
		{
			name:     "non fungible",
			nonce:    5,
			address:  addrSelf,
			function: types.BuiltinESDTNFTTransfer,
			args:     [][]byte{token, {0x05}, {0x07}, addrOther.Bytes(), []byte("buy")},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			host := newFakeHost()
			h, mem := newTestHooks(t, host)

			copy(mem[0:], addrOther.Bytes())
			copy(mem[100:], token)
			mem[200+31] = 7
			copy(mem[300:], "buy")

			before := h.Meter().GasLeft()

			status, err := h.TransferESDTNFTExecute(0, 100, int32(len(token)), 200, c.nonce, 0, 300, 3, 0, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, int32(0), status)

			require.Len(t, host.calls, 1)
			child := host.calls[0]
			assert.Equal(t, types.TransferExecute, child.Type)
			assert.Equal(t, c.address, child.Address)
			assert.Equal(t, addrSelf, child.Caller)
			assert.Equal(t, c.function, child.Function)
			assert.Equal(t, c.args, child.Args)
			assert.Equal(t, 1, child.Depth)

			// the child gave back all its gas
			schedule := gas.DefaultSchedule()
			charged := schedule.BaseOpsAPICost.TransferValue + 3*schedule.BaseOperationCost.DataCopyPerByte
			assert.Equal(t, before-charged, h.Meter().GasLeft())
		})
	}
}

func TestTransferExecute_EGLDWithESDT(t *testing.T) {
	t.Parallel()

	h, _ := newTestHooks(t, newFakeHost())

	payments := []*types.EsdtTokenPayment{types.NewEsdtTokenPayment([]byte("TKN-123456"), 0, big.NewInt(1))}

	_, err := h.transferExecute(addrOther, big.NewInt(1), payments, 0, "", nil)
	assert.ErrorIs(t, err, ErrEGLDWithESDT)
}

func TestTransferExecute_FailureLogged(t *testing.T) {
	t.Parallel()

	host := newFakeHost()
	host.call = func(c *runtime.Contract) *runtime.ExecutionResult {
		return runtime.NewFailedResult(c.Gas, runtime.NewUserError("refused"))
	}

	h, _ := newTestHooks(t, host)

	status, err := h.transferExecute(addrOther, big.NewInt(0), nil, 1_000_000, "buy", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(runtime.UserError), status)

	res := h.Result(nil)
	require.Len(t, res.Logs, 1)

	l := res.Logs[0]
	assert.Equal(t, types.InternalVMErrorsIdentifier, string(l.Identifier))
	assert.Equal(t, addrSelf, l.Address)
	assert.Equal(t, [][]byte{addrOther.Bytes(), []byte("buy")}, l.Topics)
	assert.Equal(t, []byte("refused"), l.Data)
}

func TestSyncCall_Failure(t *testing.T) {
	t.Parallel()

	failing := func(c *runtime.Contract) *runtime.ExecutionResult {
		return runtime.NewFailedResult(c.Gas, runtime.NewUserError("boom"))
	}

	setup := func(t *testing.T) (*fakeHost, *VMHooks, int32, int32, int32, int32) {
		t.Helper()

		host := newFakeHost()
		host.call = failing

		h, _ := newTestHooks(t, host)

		dest := h.arena.NewBuffer(addrOther.Bytes())
		value := h.arena.NewBigInt(big.NewInt(0))
		function := h.arena.NewBuffer([]byte("fail"))
		args := h.arena.NewBuffer(nil)

		return host, h, dest, value, function, args
	}

	t.Run("error return variant reports the status", func(t *testing.T) {
		t.Parallel()

		_, h, dest, value, function, args := setup(t)

		status, err := h.ManagedExecuteOnDestContextWithErrorReturn(0, dest, value, function, args, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(runtime.UserError), status)
	})

	t.Run("managed variant ends the frame", func(t *testing.T) {
		t.Parallel()

		_, h, dest, value, function, args := setup(t)

		_, err := h.ManagedExecuteOnDestContext(0, dest, value, function, args, 0)
		require.Error(t, err)
		assert.Equal(t, runtime.UserError, runtime.ReturnCodeOf(err))
		assert.Equal(t, "boom", runtime.MessageOf(err))
	})

	t.Run("same context call to self", func(t *testing.T) {
		t.Parallel()

		_, h, _, value, function, args := setup(t)
		self := h.arena.NewBuffer(addrSelf.Bytes())

		_, err := h.ManagedExecuteOnSameContext(0, self, value, function, args, 0)
		assert.ErrorIs(t, err, runtime.ErrSyncCallToSelf)
	})
}

func TestSyncCall_AbsorbsResult(t *testing.T) {
	t.Parallel()

	host := newFakeHost()
	host.call = func(c *runtime.Contract) *runtime.ExecutionResult {
		return &runtime.ExecutionResult{
			ReturnData: [][]byte{[]byte("x"), []byte("yz")},
			Logs:       []*types.Log{{Address: c.Address, Identifier: []byte("child")}},
			GasLeft:    c.Gas / 2,
		}
	}

	h, _ := newTestHooks(t, host)

	dest := h.arena.NewBuffer(addrOther.Bytes())
	value := h.arena.NewBigInt(big.NewInt(0))
	_ = value
	function := h.arena.NewBuffer([]byte("get"))
	args := h.arena.NewBuffer(nil)
	result := h.arena.NewBuffer(nil)

	_, err := h.ManagedExecuteReadOnly(0, dest, function, args, result)
	require.NoError(t, err)

	require.Len(t, host.calls, 1)
	assert.True(t, host.calls[0].ReadOnly)

	vec, err := h.arena.ReadBufferVec(result)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x"), []byte("yz")}, vec)

	res := h.Result(nil)
	assert.Len(t, res.ReturnData, 2)
	assert.Len(t, res.Logs, 1)
}

func TestAsyncCall_Legacy(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())

	copy(mem[0:], addrOther.Bytes())
	data := "add@0a"
	copy(mem[100:], data)

	err := h.AsyncCall(0, 32, 100, int32(len(data)))
	require.ErrorIs(t, err, runtime.ErrAsyncCallIssued)

	res := h.Result(err)
	require.NoError(t, res.Err)
	require.NotNil(t, res.AsyncCall)

	call := res.AsyncCall
	assert.True(t, call.Legacy)
	assert.Equal(t, addrOther, call.Destination)
	assert.Equal(t, "add", call.Function)
	assert.Equal(t, [][]byte{{0x0a}}, call.Args)
	assert.Equal(t, runtime.CallbackFunctionName, call.SuccessCallback)
	assert.Equal(t, gas.DefaultSchedule().BaseOpsAPICost.AsyncCallbackGasLock, call.CallbackGas)
	assert.Equal(t, uint64(0), h.Meter().GasLeft())
}

func TestAsyncCall_Restrictions(t *testing.T) {
	t.Parallel()

	t.Run("read only frame", func(t *testing.T) {
		t.Parallel()

		h, mem := newTestHooks(t, newFakeHost(), readOnly)
		copy(mem[100:], "add")

		err := h.AsyncCall(0, 32, 100, 3)
		assert.ErrorIs(t, err, runtime.ErrAsyncCallNotAllowed)
	})

	t.Run("promise without function", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestHooks(t, newFakeHost())

		_, err := h.CreateAsyncCall(0, 32, 100, 0, 0, 0, 0, 0, 1000, 1000)
		assert.ErrorIs(t, err, ErrEmptyPromiseFunction)
	})

	t.Run("malformed data", func(t *testing.T) {
		t.Parallel()

		h, mem := newTestHooks(t, newFakeHost())
		copy(mem[100:], "add@zz")

		err := h.AsyncCall(0, 32, 100, 6)
		assert.ErrorIs(t, err, ErrInvalidCallData)
	})
}

func TestCreateAsyncCall(t *testing.T) {
	t.Parallel()

	h, mem := newTestHooks(t, newFakeHost())

	copy(mem[0:], addrOther.Bytes())
	copy(mem[100:], "ping@01")
	copy(mem[200:], "onOk")
	copy(mem[300:], "onErr")

	before := h.Meter().GasLeft()

	status, err := h.CreateAsyncCall(0, 32, 100, 7, 200, 4, 300, 5, 5000, 2000)
	require.NoError(t, err)
	assert.Equal(t, int32(0), status)

	res := h.Result(nil)
	require.Len(t, res.Promises, 1)

	p := res.Promises[0]
	assert.False(t, p.Legacy)
	assert.Equal(t, "ping", p.Function)
	assert.Equal(t, "onOk", p.SuccessCallback)
	assert.Equal(t, "onErr", p.ErrorCallback)
	assert.Equal(t, uint64(5000), p.GasLimit)
	assert.Equal(t, uint64(2000), p.CallbackGas)

	schedule := gas.DefaultSchedule()
	charged := schedule.BaseOpsAPICost.CreateAsyncCall + 16*schedule.BaseOperationCost.DataCopyPerByte + 5000 + 2000
	assert.Equal(t, before-charged, h.Meter().GasLeft())
	assert.Equal(t, uint64(2000), h.Meter().Locked())
}

func TestDeleteContract(t *testing.T) {
	t.Parallel()

	h, _ := newTestHooks(t, newFakeHost())

	assert.ErrorIs(t, h.DeleteContract(0, 0, 0, 0, 0), ErrDeleteNotSupported)
}
