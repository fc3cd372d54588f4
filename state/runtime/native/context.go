package native

import (
	"encoding/binary"
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/vmhooks"
	"github.com/0xPolygon/wasm-vm/types"
)

const valueLen = 32

// memory is the linear memory of a native frame, it only grows
type memory struct {
	buf []byte
}

func (m *memory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.buf)) {
		return nil, false
	}

	return m.buf[offset:end], true
}

func (m *memory) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(m.buf)) {
		return false
	}

	copy(m.buf[offset:end], v)

	return true
}

func (m *memory) alloc(n int) int32 {
	offset := len(m.buf)
	m.buf = append(m.buf, make([]byte, n)...)

	return int32(offset)
}

func (m *memory) put(b []byte) (int32, int32) {
	offset := m.alloc(len(b))
	copy(m.buf[offset:], b)

	return offset, int32(len(b))
}

func (m *memory) get(offset, length int32) []byte {
	return append([]byte{}, m.buf[offset:offset+length]...)
}

// Context is the view of a native endpoint on its frame. Every method goes
// through the hooks, so it is charged and validated like the same call made by
// a wasm contract, and a failing hook ends the endpoint.
type Context struct {
	hooks  *vmhooks.VMHooks
	memory *memory
}

func newContext(hooks *vmhooks.VMHooks) *Context {
	return &Context{hooks: hooks, memory: &memory{}}
}

// Hooks gives access to the raw hook surface
func (c *Context) Hooks() *vmhooks.VMHooks {
	return c.hooks
}

func (c *Context) check(err error) {
	if err != nil {
		panic(exitSignal{err: err})
	}
}

func (c *Context) i32(v int32, err error) int32 {
	c.check(err)

	return v
}

func (c *Context) i64(v int64, err error) int64 {
	c.check(err)

	return v
}

// buffer mints a managed buffer holding b
func (c *Context) buffer(b []byte) int32 {
	return c.i32(c.hooks.MBufferNewFromBytes(c.memory.put(b)))
}

func (c *Context) readBuffer(h int32) []byte {
	length := c.i32(c.hooks.MBufferGetLength(h))
	offset := c.memory.alloc(int(length))
	c.i32(c.hooks.MBufferGetBytes(h, offset))

	return c.memory.get(offset, length)
}

func (c *Context) bigInt(v *big.Int) int32 {
	h := c.i32(c.hooks.BigIntNew(0))
	if v != nil && v.Sign() != 0 {
		offset, length := c.memory.put(types.TopEncodeBigInt(v))
		c.check(c.hooks.BigIntSetSignedBytes(h, offset, length))
	}

	return h
}

func (c *Context) readBigInt(h int32) *big.Int {
	length := c.i32(c.hooks.BigIntSignedByteLength(h))
	offset := c.memory.alloc(int(length))
	c.i32(c.hooks.BigIntGetSignedBytes(h, offset))

	return types.TopDecodeBigInt(c.memory.get(offset, length))
}

// vec mints a managed vec of buffers
func (c *Context) vec(items [][]byte) int32 {
	raw := make([]byte, 0, 4*len(items))
	for _, item := range items {
		raw = binary.BigEndian.AppendUint32(raw, uint32(c.buffer(item)))
	}

	return c.buffer(raw)
}

func (c *Context) readVec(h int32) [][]byte {
	items, err := c.hooks.Arena().ReadBufferVec(h)
	c.check(err)

	return items
}

func (c *Context) payments(payments []*types.EsdtTokenPayment) int32 {
	raw := make([]byte, 0, 16*len(payments))
	for _, p := range payments {
		raw = binary.BigEndian.AppendUint32(raw, uint32(c.buffer(p.TokenID)))
		raw = binary.BigEndian.AppendUint64(raw, p.Nonce)
		raw = binary.BigEndian.AppendUint32(raw, uint32(c.bigInt(p.Amount)))
	}

	return c.buffer(raw)
}

func (c *Context) address(f func(offset int32) error) types.Address {
	offset := c.memory.alloc(types.AddressLength)
	c.check(f(offset))

	return types.BytesToAddress(c.memory.get(offset, types.AddressLength))
}

// Function is the endpoint being run
func (c *Context) Function() string {
	offset := c.memory.alloc(len(c.hooks.Contract().Function))
	length := c.i32(c.hooks.GetFunction(offset))

	return string(c.memory.get(offset, length))
}

func (c *Context) NumArguments() int {
	return int(c.i32(c.hooks.GetNumArguments()))
}

func (c *Context) Argument(i int) []byte {
	h := c.i32(c.hooks.MBufferNew())
	c.i32(c.hooks.MBufferGetArgument(int32(i), h))

	return c.readBuffer(h)
}

// Arguments returns every argument of the call
func (c *Context) Arguments() [][]byte {
	n := c.NumArguments()

	args := make([][]byte, n)
	for i := range args {
		args[i] = c.Argument(i)
	}

	return args
}

func (c *Context) ArgumentBigUint(i int) *big.Int {
	h := c.i32(c.hooks.BigIntNew(0))
	c.check(c.hooks.BigIntGetUnsignedArgument(int32(i), h))

	return c.readBigInt(h)
}

func (c *Context) ArgumentUint64(i int) uint64 {
	return uint64(c.i64(c.hooks.SmallIntGetUnsignedArgument(int32(i))))
}

func (c *Context) ArgumentAddress(i int) types.Address {
	h := c.i32(c.hooks.MBufferNew())
	c.i32(c.hooks.MBufferGetArgument(int32(i), h))

	b := c.readBuffer(h)
	if len(b) != types.AddressLength {
		c.check(runtime.ErrInvalidAddress)
	}

	return types.BytesToAddress(b)
}

func (c *Context) Caller() types.Address {
	return c.address(c.hooks.GetCaller)
}

func (c *Context) SelfAddress() types.Address {
	return c.address(c.hooks.GetSCAddress)
}

func (c *Context) Owner() types.Address {
	return c.address(c.hooks.GetOwnerAddress)
}

// CallValue is the EGLD sent with the call
func (c *Context) CallValue() *big.Int {
	h := c.i32(c.hooks.BigIntNew(0))
	c.check(c.hooks.BigIntGetCallValue(h))

	return c.readBigInt(h)
}

// ESDTTransfers are the tokens sent with the call
func (c *Context) ESDTTransfers() []*types.EsdtTokenPayment {
	h := c.i32(c.hooks.MBufferNew())
	c.check(c.hooks.ManagedGetMultiESDTCallValue(h))

	payments, err := c.hooks.Arena().ReadPayments(h)
	c.check(err)

	return payments
}

func (c *Context) CheckNoPayment() {
	c.check(c.hooks.CheckNoPayment())
}

func (c *Context) BlockNonce() uint64 {
	return uint64(c.i64(c.hooks.GetBlockNonce()))
}

func (c *Context) BlockTimestamp() uint64 {
	return uint64(c.i64(c.hooks.GetBlockTimestamp()))
}

func (c *Context) GasLeft() uint64 {
	return uint64(c.i64(c.hooks.GetGasLeft()))
}

// ChargeGas stands for the instructions a wasm contract would execute
func (c *Context) ChargeGas(cost uint64) {
	c.check(c.hooks.Meter().UseGas(cost))
}

func (c *Context) StorageLoad(key []byte) []byte {
	dst := c.i32(c.hooks.MBufferNew())
	c.i32(c.hooks.MBufferStorageLoad(c.buffer(key), dst))

	return c.readBuffer(dst)
}

func (c *Context) StorageStore(key, value []byte) {
	c.i32(c.hooks.MBufferStorageStore(c.buffer(key), c.buffer(value)))
}

// StorageLoadFrom reads the storage of another, readable, account
func (c *Context) StorageLoadFrom(addr types.Address, key []byte) []byte {
	dst := c.i32(c.hooks.MBufferNew())
	c.check(c.hooks.MBufferStorageLoadFromAddress(c.buffer(addr.Bytes()), c.buffer(key), dst))

	return c.readBuffer(dst)
}

func (c *Context) StorageLoadBigUint(key []byte) *big.Int {
	return new(big.Int).SetBytes(c.StorageLoad(key))
}

func (c *Context) StorageStoreBigUint(key []byte, v *big.Int) {
	c.StorageStore(key, v.Bytes())
}

func (c *Context) StorageLoadUint64(key []byte) uint64 {
	offset, length := c.memory.put(key)

	return uint64(c.i64(c.hooks.SmallIntStorageLoadUnsigned(offset, length)))
}

func (c *Context) StorageStoreUint64(key []byte, v uint64) {
	offset, length := c.memory.put(key)
	c.i32(c.hooks.SmallIntStorageStoreUnsigned(offset, length, int64(v)))
}

func (c *Context) Finish(data []byte) {
	c.i32(c.hooks.MBufferFinish(c.buffer(data)))
}

func (c *Context) FinishBigUint(v *big.Int) {
	c.check(c.hooks.BigIntFinishUnsigned(c.bigInt(v)))
}

func (c *Context) FinishUint64(v uint64) {
	c.check(c.hooks.SmallIntFinishUnsigned(int64(v)))
}

// SignalError fails the endpoint with a user error
func (c *Context) SignalError(msg string) {
	c.check(c.hooks.SignalError(c.memory.put([]byte(msg))))
}

// Require fails the endpoint with msg unless cond holds
func (c *Context) Require(cond bool, msg string) {
	if !cond {
		c.SignalError(msg)
	}
}

// WriteLog emits an event whose first topic is the identifier
func (c *Context) WriteLog(identifier string, topics [][]byte, data []byte) {
	all := append([][]byte{[]byte(identifier)}, topics...)
	c.check(c.hooks.ManagedWriteLog(c.vec(all), c.buffer(data)))
}

// TransferEGLD moves value to dest, failing the endpoint if the transfer fails
func (c *Context) TransferEGLD(dest types.Address, value *big.Int) {
	destOffset, _ := c.memory.put(dest.Bytes())

	amount := make([]byte, valueLen)
	value.FillBytes(amount)
	valueOffset, _ := c.memory.put(amount)

	dataOffset, dataLength := c.memory.put(nil)

	c.i32(c.hooks.TransferValue(destOffset, valueOffset, dataOffset, dataLength))
}

// TransferESDTExecute sends tokens to dest and optionally calls function there.
// A failure of the transfer is reported as a non zero code.
func (c *Context) TransferESDTExecute(
	dest types.Address,
	payments []*types.EsdtTokenPayment,
	gasLimit uint64,
	function string,
	args ...[]byte,
) runtime.ReturnCode {
	return runtime.ReturnCode(c.i32(c.hooks.ManagedMultiTransferESDTNFTExecute(
		c.buffer(dest.Bytes()),
		c.payments(payments),
		int64(gasLimit),
		c.buffer([]byte(function)),
		c.vec(args),
	)))
}

// TransferEGLDExecute sends value to dest and calls function there
func (c *Context) TransferEGLDExecute(
	dest types.Address,
	value *big.Int,
	gasLimit uint64,
	function string,
	args ...[]byte,
) runtime.ReturnCode {
	return runtime.ReturnCode(c.i32(c.hooks.ManagedTransferValueExecute(
		c.buffer(dest.Bytes()),
		c.bigInt(value),
		int64(gasLimit),
		c.buffer([]byte(function)),
		c.vec(args),
	)))
}

// ExecuteOnDestContext calls function on dest, a failure of the callee fails the caller
func (c *Context) ExecuteOnDestContext(dest types.Address, value *big.Int, gasLimit uint64, function string, args ...[]byte) [][]byte {
	result := c.i32(c.hooks.MBufferNew())

	c.i32(c.hooks.ManagedExecuteOnDestContext(
		int64(gasLimit),
		c.buffer(dest.Bytes()),
		c.bigInt(value),
		c.buffer([]byte(function)),
		c.vec(args),
		result,
	))

	return c.readVec(result)
}

// TryExecuteOnDestContext calls function on dest and reports its status
func (c *Context) TryExecuteOnDestContext(
	dest types.Address,
	value *big.Int,
	gasLimit uint64,
	function string,
	args ...[]byte,
) (runtime.ReturnCode, [][]byte) {
	result := c.i32(c.hooks.MBufferNew())

	code := c.i32(c.hooks.ManagedExecuteOnDestContextWithErrorReturn(
		int64(gasLimit),
		c.buffer(dest.Bytes()),
		c.bigInt(value),
		c.buffer([]byte(function)),
		c.vec(args),
		result,
	))

	if code != 0 {
		return runtime.ReturnCode(code), nil
	}

	return runtime.Ok, c.readVec(result)
}

// ExecuteOnSameContext runs the code of dest on the storage of the caller
func (c *Context) ExecuteOnSameContext(dest types.Address, gasLimit uint64, function string, args ...[]byte) [][]byte {
	result := c.i32(c.hooks.MBufferNew())

	c.i32(c.hooks.ManagedExecuteOnSameContext(
		int64(gasLimit),
		c.buffer(dest.Bytes()),
		c.bigInt(nil),
		c.buffer([]byte(function)),
		c.vec(args),
		result,
	))

	return c.readVec(result)
}

func (c *Context) ExecuteReadOnly(dest types.Address, gasLimit uint64, function string, args ...[]byte) [][]byte {
	result := c.i32(c.hooks.MBufferNew())

	c.i32(c.hooks.ManagedExecuteReadOnly(
		int64(gasLimit),
		c.buffer(dest.Bytes()),
		c.buffer([]byte(function)),
		c.vec(args),
		result,
	))

	return c.readVec(result)
}

// CallBuiltin runs a builtin function on behalf of the contract with all the gas left
func (c *Context) CallBuiltin(function string, args ...[]byte) [][]byte {
	return c.ExecuteOnDestContext(c.SelfAddress(), nil, 0, function, args...)
}

// DeployContract deploys code with the given metadata and returns the new address
func (c *Context) DeployContract(code []byte, metadata types.CodeMetadata, value *big.Int, gasLimit uint64, args ...[]byte) types.Address {
	address := c.i32(c.hooks.MBufferNew())
	result := c.i32(c.hooks.MBufferNew())

	c.i32(c.hooks.ManagedCreateContract(
		int64(gasLimit),
		c.bigInt(value),
		c.buffer(code),
		c.buffer(metadata.Bytes()),
		c.vec(args),
		address,
		result,
	))

	return types.BytesToAddress(c.readBuffer(address))
}

// AsyncCall registers the legacy async call and ends the endpoint
func (c *Context) AsyncCall(dest types.Address, value *big.Int, function string, args ...[]byte) {
	c.check(c.hooks.ManagedAsyncCall(
		c.buffer(dest.Bytes()),
		c.bigInt(value),
		c.buffer([]byte(function)),
		c.vec(args),
	))
}

// SetAsyncCallback names the callback of the legacy async call and attaches a closure
func (c *Context) SetAsyncCallback(callback string, closure []byte, gasLimit uint64) {
	nameOffset, nameLength := c.memory.put([]byte(callback))
	dataOffset, dataLength := c.memory.put(closure)

	c.i32(c.hooks.SetAsyncContextCallback(nameOffset, nameLength, dataOffset, dataLength, int64(gasLimit)))
}

// Promise is an async call with its own callbacks
type Promise struct {
	Destination types.Address
	Value       *big.Int
	Function    string
	Args        [][]byte
	Success     string
	Failure     string
	Gas         uint64
	CallbackGas uint64
	Closure     []byte
}

// RegisterPromise schedules p to run once the endpoint returns
func (c *Context) RegisterPromise(p *Promise) {
	successOffset, successLength := c.memory.put([]byte(p.Success))
	failureOffset, failureLength := c.memory.put([]byte(p.Failure))

	c.i32(c.hooks.ManagedCreateAsyncCall(
		c.buffer(p.Destination.Bytes()),
		c.bigInt(p.Value),
		c.buffer([]byte(p.Function)),
		c.vec(p.Args),
		successOffset,
		successLength,
		failureOffset,
		failureLength,
		int64(p.Gas),
		int64(p.CallbackGas),
		c.buffer(p.Closure),
	))
}

// CallbackClosure is the closure attached to the async call being answered
func (c *Context) CallbackClosure() []byte {
	h := c.i32(c.hooks.MBufferNew())
	c.check(c.hooks.ManagedGetCallbackClosure(h))

	return c.readBuffer(h)
}

// BackTransfers are the payments received from the callees of this frame
func (c *Context) BackTransfers() (*big.Int, []*types.EsdtTokenPayment) {
	esdt := c.i32(c.hooks.MBufferNew())
	egld := c.i32(c.hooks.BigIntNew(0))
	c.check(c.hooks.ManagedGetBackTransfers(esdt, egld))

	payments, err := c.hooks.Arena().ReadPayments(esdt)
	c.check(err)

	return c.readBigInt(egld), payments
}

func (c *Context) ESDTBalance(addr types.Address, tokenID []byte, nonce uint64) *big.Int {
	value := c.i32(c.hooks.BigIntNew(0))
	c.check(c.hooks.ManagedGetESDTBalance(c.buffer(addr.Bytes()), c.buffer(tokenID), int64(nonce), value))

	return c.readBigInt(value)
}

func (c *Context) EGLDBalance(addr types.Address) *big.Int {
	offset, _ := c.memory.put(addr.Bytes())
	value := c.i32(c.hooks.BigIntNew(0))
	c.check(c.hooks.BigIntGetExternalBalance(offset, value))

	return c.readBigInt(value)
}
