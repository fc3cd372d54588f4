package state

import (
	"math/big"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/builtin"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

// DeveloperFeePercentage is the share of the fee of a contract call credited to the
// developer reward of the contract
const DeveloperFeePercentage = 30

// Executor is the main entity that applies transactions on top of a State
type Executor struct {
	logger   hclog.Logger
	state    State
	params   *chain.Params
	schedule *gas.Schedule
	builtins *builtin.Builtins
	runtimes []runtime.Runtime
}

// NewExecutor creates a new executor without any runtime
func NewExecutor(logger hclog.Logger, s State, params *chain.Params, schedule *gas.Schedule) *Executor {
	logger = logger.Named("executor")

	return &Executor{
		logger:   logger,
		state:    s,
		params:   params,
		schedule: schedule,
		builtins: builtin.NewBuiltins(logger, schedule, params),
	}
}

// SetRuntime adds a runtime. The first runtime able to run a code wins.
func (e *Executor) SetRuntime(r runtime.Runtime) {
	e.runtimes = append(e.runtimes, r)
}

func (e *Executor) Builtins() *builtin.Builtins {
	return e.builtins
}

func (e *Executor) State() State {
	return e.state
}

// BeginTxn opens a transition on top of the latest state
func (e *Executor) BeginTxn(block, prevBlock types.BlockInfo) *Transition {
	snap := e.state.NewSnapshot()

	return &Transition{
		logger:    e.logger,
		executor:  e,
		state:     NewTxn(snap),
		root:      snap.Root(),
		block:     block,
		prevBlock: prevBlock,
	}
}

// Apply runs txs in a single transition and commits it
func (e *Executor) Apply(
	block, prevBlock types.BlockInfo,
	txs ...*types.Transaction,
) ([]*runtime.ExecutionResult, types.Hash, error) {
	t := e.BeginTxn(block, prevBlock)

	results := make([]*runtime.ExecutionResult, 0, len(txs))
	for _, tx := range txs {
		results = append(results, t.Apply(tx))
	}

	root, err := t.Commit()
	if err != nil {
		return nil, types.ZeroHash, err
	}

	return results, root, nil
}

var _ runtime.Host = (*Transition)(nil)

// Transition applies transactions on a write cache and is the host of every frame
// they run. It is not safe for concurrent use.
type Transition struct {
	logger   hclog.Logger
	executor *Executor

	state     *Txn
	root      types.Hash
	block     types.BlockInfo
	prevBlock types.BlockInfo

	frames   uint64
	asyncSeq uint64
}

// Txn returns the write cache of the transition
func (t *Transition) Txn() *Txn {
	return t.state
}

// Commit persists every change of the transition and returns the new root
func (t *Transition) Commit() (types.Hash, error) {
	if err := t.state.Err(); err != nil {
		return types.ZeroHash, err
	}

	return t.executor.state.Commit(t.state.Commit())
}

// Apply runs tx. An invalid transaction changes nothing and its result only carries
// the reason.
func (t *Transition) Apply(tx *types.Transaction) *runtime.ExecutionResult {
	// frame ids and async keys only depend on the transaction itself
	t.frames, t.asyncSeq = 0, 0

	result, err := t.apply(tx)
	if err != nil {
		t.logger.Debug("invalid tx", "hash", tx.Hash, "from", tx.From, "err", err)
		metrics.IncrCounter([]string{"vm", "tx_invalid"}, 1)

		return &runtime.ExecutionResult{Err: err}
	}

	if result.Failed() {
		t.logger.Debug("tx failed",
			"hash", tx.Hash,
			"to", tx.To,
			"function", tx.Function,
			"return-code", result.ReturnCode(),
			"message", result.ReturnMessage(),
		)
		metrics.IncrCounter([]string{"vm", "tx_failed"}, 1)
	} else {
		t.logger.Debug("apply tx", "hash", tx.Hash, "to", tx.To, "function", tx.Function, "gas", result.GasUsed)
		metrics.IncrCounter([]string{"vm", "tx_applied"}, 1)
	}

	return result
}

func (t *Transition) intrinsicGas(tx *types.Transaction) uint64 {
	size := len(tx.Function) + len(tx.Code)
	for _, arg := range tx.Args {
		size += len(arg)
	}

	cost := t.executor.schedule.BaseOperationCost

	return cost.TxBase + cost.TxDataPerByte*uint64(size)
}

func (t *Transition) apply(tx *types.Transaction) (*runtime.ExecutionResult, error) {
	gasPrice := tx.GasPrice
	if gasPrice == nil {
		gasPrice = new(big.Int)
	}

	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}

	// contract results were paid for by the transaction that produced them
	isUser := tx.CallType == types.Direct

	var intrinsic uint64

	if isUser {
		intrinsic = t.intrinsicGas(tx)
		if tx.GasLimit < intrinsic {
			return nil, runtime.ErrOutOfGas
		}

		fee := new(big.Int).Mul(new(big.Int).SetUint64(tx.GasLimit), gasPrice)
		if t.state.GetBalance(tx.From).Cmp(new(big.Int).Add(fee, value)) < 0 {
			return nil, runtime.ErrInsufficientFunds
		}

		t.state.IncrNonce(tx.From)

		if err := t.state.SubBalance(tx.From, fee); err != nil {
			return nil, err
		}
	}

	c := t.txContract(tx, value, gasPrice, tx.GasLimit-intrinsic)

	result := t.Call(c)
	if result.Succeeded() {
		t.runAsync(c, result)
	} else {
		result.Logs = append(result.Logs, types.NewInternalVMErrorsLog(tx.From, tx.To, tx.Function, result.ReturnMessage()))
	}

	result.UpdateGasUsed(tx.GasLimit)

	if !isUser {
		return result, nil
	}

	if result.GasLeft > 0 {
		refund := new(big.Int).Mul(new(big.Int).SetUint64(result.GasLeft), gasPrice)
		t.state.AddBalance(tx.From, refund)
	}

	// system accounts run builtin functions and earn no developer fees
	if result.Succeeded() && tx.To.IsSmartContract() && !tx.To.IsSystemAccount() && result.GasUsed > intrinsic {
		reward := new(big.Int).Mul(new(big.Int).SetUint64(result.GasUsed-intrinsic), gasPrice)
		reward.Mul(reward, big.NewInt(DeveloperFeePercentage))
		reward.Div(reward, big.NewInt(100))

		t.state.AddDeveloperReward(tx.To, reward)
	}

	return result, nil
}

// txContract builds the top level frame of tx
func (t *Transition) txContract(tx *types.Transaction, value, gasPrice *big.Int, gas uint64) *runtime.Contract {
	var c *runtime.Contract

	switch {
	case tx.IsContractCreation():
		c = runtime.NewContractCreation(0, tx.From, tx.From, value, gas, tx.Code, tx.CodeMetadata, tx.Args)

	case tx.Function == runtime.UpgradeContractFunctionName && len(tx.Args) >= 2:
		c = runtime.NewContractCall(0, tx.From, tx.From, tx.To, value, gas, runtime.UpgradeFunctionName, tx.Args[2:])
		c.Type = types.Upgrade
		c.Code = tx.Args[0]
		c.CodeMetadata = types.CodeMetadataFromBytes(tx.Args[1])

	default:
		c = runtime.NewContractCall(0, tx.From, tx.From, tx.To, value, gas, tx.Function, tx.Args)
		c.Type = tx.CallType

		if len(tx.ESDTTransfers) > 0 {
			c.Address, c.Function, c.Args = builtin.TransferCall(tx.From, tx.To, tx.ESDTTransfers, tx.Function, tx.Args)
			c.CodeAddress = c.Address
		}
	}

	c.GasPrice = gasPrice
	c.TxHash = tx.Hash
	c.PrevTxHash = tx.PrevTxHash
	c.OriginalTxHash = tx.OriginalTxHash

	if c.OriginalTxHash == types.ZeroHash {
		c.OriginalTxHash = tx.Hash
	}

	return c
}

// Call implements the runtime.Host interface. Every frame runs in its own scope,
// reverted when the frame fails.
func (t *Transition) Call(c *runtime.Contract) *runtime.ExecutionResult {
	if c.Depth > t.executor.params.MaxCallDepth {
		return runtime.NewFailedResult(c.Gas, runtime.ErrCallStackOverflow)
	}

	if c.Value == nil {
		c.Value = new(big.Int)
	}

	t.frames++
	c.FrameID = t.frames

	switch {
	case c.Type == types.Deploy:
		return t.create(c)
	case c.Type == types.Upgrade:
		return t.upgrade(c)
	case t.executor.builtins.IsBuiltin(c.Function):
		return t.scoped(c, t.runBuiltin)
	default:
		return t.scoped(c, t.run)
	}
}

func (t *Transition) scoped(
	c *runtime.Contract,
	f func(c *runtime.Contract) *runtime.ExecutionResult,
) *runtime.ExecutionResult {
	snapshot := t.state.Snapshot()

	result := f(c)
	if result.Failed() {
		t.state.RevertToSnapshot(snapshot)
	}

	return result
}

func (t *Transition) runtimeFor(code []byte) runtime.Runtime {
	for _, r := range t.executor.runtimes {
		if r.CanRun(code) {
			return r
		}
	}

	return nil
}

// transferValue moves the EGLD of the frame to the account it runs on
func (t *Transition) transferValue(c *runtime.Contract) error {
	if c.Value.Sign() == 0 {
		return nil
	}

	if c.ReadOnly {
		return runtime.ErrReadOnlyViolation
	}

	if c.Function == "" && len(t.state.GetCode(c.Address)) > 0 {
		md := t.state.GetCodeMetadata(c.Address)
		if !md.Payable() && !(c.Caller.IsSmartContract() && md.PayableBySC()) {
			return runtime.ErrNotPayable
		}
	}

	return t.state.TransferValue(c.Caller, c.Address, c.Value)
}

func (t *Transition) run(c *runtime.Contract) *runtime.ExecutionResult {
	if err := t.transferValue(c); err != nil {
		return runtime.NewFailedResult(c.Gas, err)
	}

	var transfers []*runtime.OutputTransfer

	if c.Value.Sign() > 0 {
		transfers = append(transfers, &runtime.OutputTransfer{
			From:     c.Caller,
			To:       c.Address,
			Value:    new(big.Int).Set(c.Value),
			CallType: c.Type,
		})
	}

	// plain transfer
	if c.Function == "" {
		return &runtime.ExecutionResult{GasLeft: c.Gas, Transfers: transfers}
	}

	code := t.state.GetCode(c.CodeAddress)
	if len(code) == 0 {
		return runtime.NewFailedResult(c.Gas, runtime.ErrContractNotFound)
	}

	c.Code = code
	c.CodeMetadata = t.state.GetCodeMetadata(c.CodeAddress)

	r := t.runtimeFor(code)
	if r == nil {
		return runtime.NewFailedResult(c.Gas, runtime.ErrContractInvalid)
	}

	result := r.Run(c, t)
	if result.Succeeded() {
		result.Transfers = append(transfers, result.Transfers...)
	}

	return result
}

func (t *Transition) runBuiltin(c *runtime.Contract) *runtime.ExecutionResult {
	if c.ReadOnly {
		return runtime.NewFailedResult(c.Gas, runtime.ErrReadOnlyViolation)
	}

	// issuing fees are paid to the system contract before the function checks them
	if c.Value.Sign() > 0 {
		if err := t.state.TransferValue(c.Caller, c.Address, c.Value); err != nil {
			return runtime.NewFailedResult(c.Gas, err)
		}
	}

	out, err := t.executor.builtins.Run(&builtin.Input{
		Caller:   c.Caller,
		To:       c.Address,
		Value:    c.Value,
		Function: c.Function,
		Args:     c.Args,
		Gas:      c.Gas,
		CallType: c.Type,
		Block:    t.block,
	}, t.state)
	if err != nil {
		return runtime.NewFailedResult(c.Gas, err)
	}

	result := &runtime.ExecutionResult{
		ReturnData: out.ReturnData,
		Logs:       out.Logs,
		GasLeft:    out.GasLeft,
		Transfers:  out.Transfers,
	}

	if out.Call != nil {
		callType := types.Direct
		if c.Caller.IsSmartContract() {
			callType = types.TransferExecute
		}

		nested := &runtime.Contract{
			Type:           callType,
			CodeAddress:    out.Call.Destination,
			Address:        out.Call.Destination,
			Caller:         c.Caller,
			Origin:         c.Origin,
			Depth:          c.Depth,
			Value:          new(big.Int),
			ESDTTransfers:  out.Call.Payments,
			Function:       out.Call.Function,
			Args:           out.Call.Args,
			Gas:            out.GasLeft,
			GasPrice:       c.GasPrice,
			TxHash:         c.TxHash,
			PrevTxHash:     c.PrevTxHash,
			OriginalTxHash: c.OriginalTxHash,
		}

		res := t.Call(nested)
		if res.Failed() {
			failed := runtime.NewFailedResult(c.Gas, res.Err)
			failed.Logs = res.Logs

			return failed
		}

		result.ReturnData = append(result.ReturnData, res.ReturnData...)
		result.Logs = append(result.Logs, res.Logs...)
		result.Transfers = append(result.Transfers, res.Transfers...)
		result.GasLeft = res.GasLeft
		result.AsyncCall = res.AsyncCall
		result.Promises = res.Promises
	}

	result.UpdateGasUsed(c.Gas)

	return result
}

// create deploys the code of c at an address derived from the creator and its nonce
func (t *Transition) create(c *runtime.Contract) *runtime.ExecutionResult {
	if c.ReadOnly {
		return runtime.NewFailedResult(c.Gas, runtime.ErrReadOnlyViolation)
	}

	// the nonce of a user was already increased by its transaction
	nonce := t.state.GetNonce(c.Caller)
	if c.Depth == 0 {
		if nonce > 0 {
			nonce--
		}
	} else {
		t.state.IncrNonce(c.Caller)
	}

	address := types.NewContractAddress(c.Caller, nonce, types.WASMVMType)
	if len(t.state.GetCode(address)) > 0 {
		return runtime.NewFailedResult(c.Gas, runtime.ErrAccountCollision)
	}

	r := t.runtimeFor(c.Code)
	if r == nil {
		return runtime.NewFailedResult(c.Gas, runtime.ErrContractInvalid)
	}

	c.Address = address
	c.CodeAddress = address

	return t.scoped(c, func(c *runtime.Contract) *runtime.ExecutionResult {
		t.state.SetCode(address, c.Code, c.CodeMetadata)
		t.state.SetOwner(address, c.Caller)

		if err := t.state.TransferValue(c.Caller, address, c.Value); err != nil {
			return runtime.NewFailedResult(c.Gas, err)
		}

		result := r.Run(c, t)
		if result.Succeeded() {
			result.NewAddress = address
		}

		return result
	})
}

// upgrade replaces the code of c.Address, which the caller must own
func (t *Transition) upgrade(c *runtime.Contract) *runtime.ExecutionResult {
	if c.ReadOnly {
		return runtime.NewFailedResult(c.Gas, runtime.ErrReadOnlyViolation)
	}

	if len(t.state.GetCode(c.Address)) == 0 {
		return runtime.NewFailedResult(c.Gas, runtime.ErrContractNotFound)
	}

	if t.state.GetOwner(c.Address) != c.Caller || !t.state.GetCodeMetadata(c.Address).Upgradeable() {
		return runtime.NewFailedResult(c.Gas, runtime.ErrUpgradeNotAllowed)
	}

	r := t.runtimeFor(c.Code)
	if r == nil {
		return runtime.NewFailedResult(c.Gas, runtime.ErrContractInvalid)
	}

	c.CodeAddress = c.Address

	return t.scoped(c, func(c *runtime.Contract) *runtime.ExecutionResult {
		t.state.SetCode(c.Address, c.Code, c.CodeMetadata)

		if err := t.state.TransferValue(c.Caller, c.Address, c.Value); err != nil {
			return runtime.NewFailedResult(c.Gas, err)
		}

		return r.Run(c, t)
	})
}

// merge appends the output of a follow up execution to result
func merge(result, next *runtime.ExecutionResult) {
	result.ReturnData = append(result.ReturnData, next.ReturnData...)
	result.Logs = append(result.Logs, next.Logs...)
	result.Transfers = append(result.Transfers, next.Transfers...)
	result.GasLeft += next.GasLeft
}

// runAsync executes the async calls registered by a successful frame: every leg in
// registration order, then every callback in the same order. Their outcome is merged
// into result, a failed leg or callback keeps what ran before it.
func (t *Transition) runAsync(parent *runtime.Contract, result *runtime.ExecutionResult) {
	calls := append([]*runtime.AsyncCall{}, result.Promises...)
	if result.AsyncCall != nil {
		calls = append(calls, result.AsyncCall)
	}

	result.AsyncCall = nil
	result.Promises = nil

	if len(calls) == 0 {
		return
	}

	legs := make([]*runtime.ExecutionResult, len(calls))
	keys := make([][]byte, len(calls))

	for i, call := range calls {
		if call.Legacy {
			keys[i] = t.storeAsyncContext(parent, call)
		}

		legs[i] = t.runAsyncLeg(parent, call)
		merge(result, legs[i])

		if legs[i].Failed() {
			result.Logs = append(result.Logs,
				types.NewInternalVMErrorsLog(call.Caller, call.Destination, call.Function, legs[i].ReturnMessage()))
		}
	}

	for i, call := range calls {
		cb := t.runCallback(parent, call, legs[i], keys[i])
		if cb == nil {
			// nothing to answer, the locked gas goes back
			result.GasLeft += call.CallbackGas

			continue
		}

		merge(result, cb)

		if cb.Failed() {
			result.Logs = append(result.Logs,
				types.NewInternalVMErrorsLog(call.Destination, call.Caller, t.callbackName(call, legs[i]), cb.ReturnMessage()))
		}
	}
}

func (t *Transition) isCrossShard(from, to types.Address) bool {
	// the system contract is reachable from every shard
	if to == types.ESDTSystemSCAddress {
		return false
	}

	return t.ShardOfAddress(from) != t.ShardOfAddress(to)
}

func (t *Transition) runAsyncLeg(parent *runtime.Contract, call *runtime.AsyncCall) *runtime.ExecutionResult {
	if t.isCrossShard(call.Caller, call.Destination) {
		return runtime.NewFailedResult(call.GasLimit, runtime.ErrCrossShardCall)
	}

	leg := &runtime.Contract{
		Type:           types.AsyncCall,
		CodeAddress:    call.Destination,
		Address:        call.Destination,
		Caller:         call.Caller,
		Origin:         parent.Origin,
		Depth:          parent.Depth + 1,
		Value:          call.Value,
		Function:       call.Function,
		Args:           call.Args,
		Gas:            call.GasLimit,
		GasPrice:       parent.GasPrice,
		TxHash:         parent.TxHash,
		PrevTxHash:     parent.TxHash,
		OriginalTxHash: parent.OriginalTxHash,
	}

	if !t.state.AccountExists(call.Destination) && !t.executor.builtins.IsBuiltin(call.Function) {
		if !t.executor.params.InsertGhostAccounts {
			return runtime.NewFailedResult(call.GasLimit, runtime.ErrContractNotFound)
		}

		// ghost account: the value lands, nothing runs
		leg.Function = ""
		leg.Args = nil

		t.state.CreateAccount(call.Destination)
		t.logger.Debug("ghost account", "address", call.Destination)
	}

	result := t.Call(leg)
	if result.Succeeded() {
		t.runAsync(leg, result)
	}

	return result
}

func (t *Transition) callbackName(call *runtime.AsyncCall, leg *runtime.ExecutionResult) string {
	if leg.Succeeded() {
		return call.SuccessCallback
	}

	return call.ErrorCallback
}

// callbackArgs are [0x00, results...] on success and [code, message] on failure
func callbackArgs(leg *runtime.ExecutionResult) [][]byte {
	if leg.Succeeded() {
		return append([][]byte{{0x00}}, leg.ReturnData...)
	}

	code := new(big.Int).SetUint64(uint64(leg.ReturnCode()))

	return [][]byte{code.Bytes(), []byte(leg.ReturnMessage())}
}

func (t *Transition) runCallback(
	parent *runtime.Contract,
	call *runtime.AsyncCall,
	leg *runtime.ExecutionResult,
	key []byte,
) *runtime.ExecutionResult {
	name := t.callbackName(call, leg)
	closure := call.CallbackClosure

	if call.Legacy {
		if ctx, ok := t.loadAsyncContext(call.Caller, key); ok {
			name, closure = ctx.Callback, ctx.Closure
		}
	}

	if name == "" {
		return nil
	}

	cb := &runtime.Contract{
		Type:            types.AsyncCallback,
		CodeAddress:     call.Caller,
		Address:         call.Caller,
		Caller:          call.Destination,
		Origin:          parent.Origin,
		Depth:           parent.Depth + 1,
		Value:           new(big.Int),
		Function:        name,
		Args:            callbackArgs(leg),
		Gas:             call.CallbackGas,
		GasPrice:        parent.GasPrice,
		TxHash:          parent.TxHash,
		PrevTxHash:      parent.TxHash,
		OriginalTxHash:  parent.OriginalTxHash,
		CallbackClosure: closure,
	}

	result := t.Call(cb)
	if result.Succeeded() {
		t.runAsync(cb, result)
	}

	return result
}

// storeAsyncContext keeps a legacy async call in the storage of its caller until the
// callback fires
func (t *Transition) storeAsyncContext(parent *runtime.Contract, call *runtime.AsyncCall) []byte {
	t.asyncSeq++

	key := append([]byte(types.CallbackClosureKeyPrefix), parent.TxHash.Bytes()...)
	key = append(key, types.TopEncodeUint64(t.asyncSeq)...)

	ctx := &asyncContext{
		Callback:    call.SuccessCallback,
		Closure:     call.CallbackClosure,
		Destination: call.Destination,
		Function:    call.Function,
		Args:        call.Args,
		Value:       call.Value,
	}

	t.state.SetStorage(call.Caller, key, ctx.MarshalRLP())

	return key
}

// loadAsyncContext reads and deletes a stored legacy async call
func (t *Transition) loadAsyncContext(caller types.Address, key []byte) (*asyncContext, bool) {
	raw := t.state.GetStorage(caller, key)
	if raw == nil {
		return nil, false
	}

	t.state.SetStorage(caller, key, nil)

	ctx := &asyncContext{}
	if err := ctx.UnmarshalRLP(raw); err != nil {
		t.logger.Error("corrupted async context", "caller", caller, "err", err)

		return nil, false
	}

	return ctx, true
}

func (t *Transition) AccountExists(addr types.Address) bool {
	return t.state.AccountExists(addr)
}

func (t *Transition) GetBalance(addr types.Address) *big.Int {
	return t.state.GetBalance(addr)
}

func (t *Transition) GetNonce(addr types.Address) uint64 {
	return t.state.GetNonce(addr)
}

func (t *Transition) GetCode(addr types.Address) []byte {
	return t.state.GetCode(addr)
}

func (t *Transition) GetCodeMetadata(addr types.Address) types.CodeMetadata {
	return t.state.GetCodeMetadata(addr)
}

func (t *Transition) GetOwner(addr types.Address) types.Address {
	return t.state.GetOwner(addr)
}

func (t *Transition) GetStorage(addr types.Address, key []byte) []byte {
	return t.state.GetStorage(addr, key)
}

func (t *Transition) SetStorage(addr types.Address, key []byte, value []byte) {
	t.state.SetStorage(addr, key, value)
}

func (t *Transition) GetEsdtBalance(addr types.Address, tokenID []byte, nonce uint64) *big.Int {
	return t.state.GetEsdtBalance(addr, tokenID, nonce)
}

func (t *Transition) GetEsdtData(addr types.Address, tokenID []byte) (*types.EsdtData, bool) {
	return t.state.GetEsdtData(addr, tokenID)
}

func (t *Transition) GetEsdtInstance(addr types.Address, tokenID []byte, nonce uint64) (*types.EsdtInstance, bool) {
	return t.state.GetEsdtInstance(addr, tokenID, nonce)
}

func (t *Transition) GetTokenInfo(tokenID []byte) (*types.TokenInfo, bool) {
	return t.state.GetTokenInfo(tokenID)
}

func (t *Transition) GetBlockInfo() types.BlockInfo {
	return t.block
}

func (t *Transition) GetPrevBlockInfo() types.BlockInfo {
	return t.prevBlock
}

// GetBlockHash knows the hashes of the current and the previous block only
func (t *Transition) GetBlockHash(nonce uint64) types.Hash {
	switch nonce {
	case t.block.Nonce:
		return t.block.Hash
	case t.prevBlock.Nonce:
		return t.prevBlock.Hash
	default:
		return types.ZeroHash
	}
}

// GetStateRootHash is the root the transition started from
func (t *Transition) GetStateRootHash() types.Hash {
	return t.root
}

func (t *Transition) ShardOfAddress(addr types.Address) uint32 {
	return types.ShardOfAddress(addr, t.executor.params.NumShards)
}

func (t *Transition) IsBuiltinFunction(name string) bool {
	return t.executor.builtins.IsBuiltin(name)
}
