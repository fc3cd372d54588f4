package vmhooks

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/builtin"
	"github.com/0xPolygon/wasm-vm/types"
)

// requestedGas converts the gas argument of a hook, 0 meaning all the available gas
func requestedGas(gas int64) (uint64, error) {
	if gas < 0 {
		return 0, ErrArgumentOutOfRange
	}

	return uint64(gas), nil
}

// callWithGas runs a nested frame with exactly limit gas, charged up front and refunded
// by what the child did not use
func (h *VMHooks) callWithGas(child *runtime.Contract, limit uint64) (*runtime.ExecutionResult, error) {
	if err := h.useGas(limit); err != nil {
		return nil, err
	}

	child.Gas = limit
	child.Depth = h.contract.Depth + 1
	child.Origin = h.contract.Origin
	child.GasPrice = h.contract.GasPrice
	child.TxHash = h.contract.TxHash
	child.PrevTxHash = h.contract.PrevTxHash
	child.OriginalTxHash = h.contract.OriginalTxHash

	if child.CodeAddress == types.ZeroAddress {
		child.CodeAddress = child.Address
	}

	if child.Value == nil {
		child.Value = new(big.Int)
	}

	res := h.host.Call(child)
	h.meter.Refund(res.GasLeft)

	return res, nil
}

// call runs a nested frame with the requested gas, capped so that the frame keeps
// enough gas to handle the result
func (h *VMHooks) call(child *runtime.Contract, gas int64) (*runtime.ExecutionResult, error) {
	requested, err := requestedGas(gas)
	if err != nil {
		return nil, err
	}

	limit, err := h.meter.ChildGasLimit(requested, h.schedule.BaseOperationCost.ReturnPathReserve)
	if err != nil {
		return nil, err
	}

	return h.callWithGas(child, limit)
}

// absorb merges the output of a successful child into the frame. The child return
// data is also written as a vec of buffers under resultHandle when it is not 0.
func (h *VMHooks) absorb(res *runtime.ExecutionResult, resultHandle int32) error {
	for _, data := range res.ReturnData {
		h.appendOutput(data)
	}

	h.logs = append(h.logs, res.Logs...)
	h.transfers = append(h.transfers, res.Transfers...)
	h.promises = append(h.promises, res.Promises...)

	if res.AsyncCall != nil {
		h.promises = append(h.promises, res.AsyncCall)
	}

	if resultHandle != 0 {
		return h.arena.WriteBufferVec(resultHandle, res.ReturnData)
	}

	return nil
}

// fallible reports the status of a child. Failures keep the logs the host attached
// to the result.
func (h *VMHooks) fallible(res *runtime.ExecutionResult, resultHandle int32) (int32, error) {
	if res.Failed() {
		h.logs = append(h.logs, res.Logs...)

		return int32(runtime.NestedReturnCode(res.Err)), nil
	}

	return resultOk, h.absorb(res, resultHandle)
}

// mustSucceed ends the frame when the child failed
func (h *VMHooks) mustSucceed(res *runtime.ExecutionResult, resultHandle int32) error {
	if res.Failed() {
		return runtime.NewError(runtime.NestedReturnCode(res.Err), res.ReturnMessage())
	}

	return h.absorb(res, resultHandle)
}

func (h *VMHooks) checkValue(value *big.Int, payments []*types.EsdtTokenPayment) error {
	if value.Sign() < 0 {
		return runtime.ErrInsufficientFunds
	}

	if value.Sign() > 0 || len(payments) > 0 {
		return h.checkWritable()
	}

	return nil
}

// transferContract builds the frame moving the payments to dest and calling function.
// ESDT transfers go through the builtin functions with the call appended to their arguments.
func (h *VMHooks) transferContract(
	dest types.Address,
	value *big.Int,
	payments []*types.EsdtTokenPayment,
	function string,
	args [][]byte,
) (*runtime.Contract, error) {
	if err := h.checkValue(value, payments); err != nil {
		return nil, err
	}

	if value.Sign() > 0 && len(payments) > 0 {
		return nil, ErrEGLDWithESDT
	}

	for _, p := range payments {
		if p.Amount.Sign() < 0 {
			return nil, runtime.ErrInsufficientFunds
		}
	}

	child := &runtime.Contract{
		Type:   types.TransferExecute,
		Caller: h.self(),
		Value:  new(big.Int).Set(value),
	}

	if len(payments) == 0 {
		child.Address = dest
		child.Function = function
		child.Args = args
	} else {
		child.Address, child.Function, child.Args = builtin.TransferCall(h.self(), dest, payments, function, args)
	}

	return child, nil
}

// transferExecute moves the payments to dest and optionally calls function there.
// It returns the status of the nested call.
func (h *VMHooks) transferExecute(
	dest types.Address,
	value *big.Int,
	payments []*types.EsdtTokenPayment,
	gasLimit int64,
	function string,
	args [][]byte,
) (int32, error) {
	child, err := h.transferContract(dest, value, payments, function, args)
	if err != nil {
		return 0, err
	}

	var res *runtime.ExecutionResult

	if function == "" && len(payments) == 0 {
		res, err = h.callWithGas(child, 0)
	} else {
		res, err = h.call(child, gasLimit)
	}

	if err != nil {
		return 0, err
	}

	if res.Failed() {
		h.logs = append(h.logs, types.NewInternalVMErrorsLog(h.self(), dest, function, res.ReturnMessage()))
	}

	return h.fallible(res, 0)
}

// TransferValue moves EGLD to dest. A failed transfer ends the frame.
func (h *VMHooks) TransferValue(destOffset int32, valueOffset int32, dataOffset int32, length int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.TransferValue); err != nil {
		return 0, err
	}

	dest, err := h.memLoadAddress(destOffset)
	if err != nil {
		return 0, err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return 0, err
	}

	data, err := h.memLoad(dataOffset, length)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	child, err := h.transferContract(dest, value, nil, "", nil)
	if err != nil {
		return 0, err
	}

	res, err := h.callWithGas(child, 0)
	if err != nil {
		return 0, err
	}

	return resultOk, h.mustSucceed(res, 0)
}

func (h *VMHooks) TransferValueExecute(
	destOffset int32,
	valueOffset int32,
	gasLimit int64,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.TransferValue); err != nil {
		return 0, err
	}

	dest, err := h.memLoadAddress(destOffset)
	if err != nil {
		return 0, err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return 0, err
	}

	function, args, err := h.memLoadCall(functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
	if err != nil {
		return 0, err
	}

	return h.transferExecute(dest, value, nil, gasLimit, function, args)
}

func (h *VMHooks) TransferESDTExecute(
	destOffset int32,
	tokenIDOffset int32,
	tokenIDLen int32,
	valueOffset int32,
	gasLimit int64,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	return h.TransferESDTNFTExecute(destOffset, tokenIDOffset, tokenIDLen, valueOffset, 0, gasLimit,
		functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
}

func (h *VMHooks) TransferESDTNFTExecute(
	destOffset int32,
	tokenIDOffset int32,
	tokenIDLen int32,
	valueOffset int32,
	nonce int64,
	gasLimit int64,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.TransferValue); err != nil {
		return 0, err
	}

	dest, tokenID, err := h.memLoadToken(destOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return 0, err
	}

	function, args, err := h.memLoadCall(functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
	if err != nil {
		return 0, err
	}

	payment := types.NewEsdtTokenPayment(tokenID, uint64(nonce), value)

	return h.transferExecute(dest, new(big.Int), []*types.EsdtTokenPayment{payment}, gasLimit, function, args)
}

// argsPerTransfer is the number of arguments describing one payment: token, nonce, amount
const argsPerTransfer = 3

func (h *VMHooks) MultiTransferESDTNFTExecute(
	destOffset int32,
	numTokenTransfers int32,
	tokenTransfersArgsLengthOffset int32,
	tokenTransferDataOffset int32,
	gasLimit int64,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.TransferValue); err != nil {
		return 0, err
	}

	dest, err := h.memLoadAddress(destOffset)
	if err != nil {
		return 0, err
	}

	if numTokenTransfers < 0 || numTokenTransfers > maxArguments/argsPerTransfer {
		return 0, ErrArgumentOutOfRange
	}

	raw, err := h.memLoadMultiple(tokenTransferDataOffset, tokenTransfersArgsLengthOffset, numTokenTransfers*argsPerTransfer)
	if err != nil {
		return 0, err
	}

	payments := make([]*types.EsdtTokenPayment, 0, numTokenTransfers)

	for i := 0; i < len(raw); i += argsPerTransfer {
		nonce := new(big.Int).SetBytes(raw[i+1])
		if !nonce.IsUint64() {
			return 0, ErrArgumentOutOfRange
		}

		payments = append(payments, types.NewEsdtTokenPayment(raw[i], nonce.Uint64(), new(big.Int).SetBytes(raw[i+2])))
	}

	function, args, err := h.memLoadCall(functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
	if err != nil {
		return 0, err
	}

	return h.transferExecute(dest, new(big.Int), payments, gasLimit, function, args)
}

func (h *VMHooks) ManagedTransferValueExecute(
	dstHandle int32,
	valueHandle int32,
	gasLimit int64,
	functionHandle int32,
	argumentsHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.TransferValue); err != nil {
		return 0, err
	}

	dest, err := h.bufferAddress(dstHandle)
	if err != nil {
		return 0, err
	}

	value, err := h.arena.BigInt(valueHandle)
	if err != nil {
		return 0, err
	}

	function, args, err := h.managedCall(functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return h.transferExecute(dest, value, nil, gasLimit, function, args)
}

func (h *VMHooks) ManagedMultiTransferESDTNFTExecute(
	dstHandle int32,
	tokenTransfersHandle int32,
	gasLimit int64,
	functionHandle int32,
	argumentsHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.TransferValue); err != nil {
		return 0, err
	}

	dest, err := h.bufferAddress(dstHandle)
	if err != nil {
		return 0, err
	}

	payments, err := h.arena.ReadPayments(tokenTransfersHandle)
	if err != nil {
		return 0, err
	}

	function, args, err := h.managedCall(functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return h.transferExecute(dest, new(big.Int), payments, gasLimit, function, args)
}

// memLoadCall reads the function name and the arguments of a legacy call
func (h *VMHooks) memLoadCall(
	functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset int32,
) (string, [][]byte, error) {
	function, err := h.memLoad(functionOffset, functionLength)
	if err != nil {
		return "", nil, err
	}

	args, err := h.memLoadMultiple(dataOffset, argumentsLengthOffset, numArguments)
	if err != nil {
		return "", nil, err
	}

	size := len(function)
	for _, a := range args {
		size += len(a)
	}

	if err := h.useGasForDataCopy(size); err != nil {
		return "", nil, err
	}

	return string(function), args, nil
}

func (h *VMHooks) managedCall(functionHandle, argumentsHandle int32) (string, [][]byte, error) {
	function, err := h.arena.Buffer(functionHandle)
	if err != nil {
		return "", nil, err
	}

	args, err := h.arena.ReadBufferVec(argumentsHandle)
	if err != nil {
		return "", nil, err
	}

	size := len(function)
	for _, a := range args {
		size += len(a)
	}

	if err := h.useGasForDataCopy(size); err != nil {
		return "", nil, err
	}

	return string(function), args, nil
}

// syncCall runs function on dest and waits for its result
func (h *VMHooks) syncCall(
	kind types.CallType,
	gas int64,
	dest types.Address,
	value *big.Int,
	function string,
	args [][]byte,
) (*runtime.ExecutionResult, error) {
	if err := h.checkValue(value, nil); err != nil {
		return nil, err
	}

	child := &runtime.Contract{
		Type:        kind,
		CodeAddress: dest,
		Address:     dest,
		Caller:      h.self(),
		Value:       new(big.Int).Set(value),
		Function:    function,
		Args:        args,
		ReadOnly:    h.contract.ReadOnly || kind == types.ExecuteReadOnly,
	}

	if kind == types.ExecuteOnSameContext {
		if dest == h.self() {
			return nil, runtime.ErrSyncCallToSelf
		}

		child.Address = h.self()
	}

	return h.call(child, gas)
}

func syncCallCost(h *VMHooks, kind types.CallType) uint64 {
	switch kind {
	case types.ExecuteOnSameContext:
		return h.schedule.BaseOpsAPICost.ExecuteOnSameContext
	case types.ExecuteReadOnly:
		return h.schedule.BaseOpsAPICost.ExecuteReadOnly
	default:
		return h.schedule.BaseOpsAPICost.ExecuteOnDestContext
	}
}

// legacySyncCall reads a legacy call from memory, runs it and returns its status
func (h *VMHooks) legacySyncCall(
	kind types.CallType,
	gasLimit int64,
	addressOffset int32,
	value *big.Int,
	functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset int32,
) (int32, error) {
	dest, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return 0, err
	}

	function, args, err := h.memLoadCall(functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
	if err != nil {
		return 0, err
	}

	res, err := h.syncCall(kind, gasLimit, dest, value, function, args)
	if err != nil {
		return 0, err
	}

	return h.fallible(res, 0)
}

func (h *VMHooks) legacySyncCallWithValue(
	kind types.CallType,
	gasLimit int64,
	addressOffset, valueOffset int32,
	functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset int32,
) (int32, error) {
	if err := h.useGas(syncCallCost(h, kind)); err != nil {
		return 0, err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return 0, err
	}

	return h.legacySyncCall(kind, gasLimit, addressOffset, value,
		functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
}

func (h *VMHooks) ExecuteOnSameContext(
	gasLimit int64,
	addressOffset int32,
	valueOffset int32,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	return h.legacySyncCallWithValue(types.ExecuteOnSameContext, gasLimit, addressOffset, valueOffset,
		functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
}

func (h *VMHooks) ExecuteOnDestContext(
	gasLimit int64,
	addressOffset int32,
	valueOffset int32,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	return h.legacySyncCallWithValue(types.ExecuteOnDestContext, gasLimit, addressOffset, valueOffset,
		functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
}

func (h *VMHooks) ExecuteReadOnly(
	gasLimit int64,
	addressOffset int32,
	functionOffset int32,
	functionLength int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.ExecuteReadOnly); err != nil {
		return 0, err
	}

	return h.legacySyncCall(types.ExecuteReadOnly, gasLimit, addressOffset, new(big.Int),
		functionOffset, functionLength, numArguments, argumentsLengthOffset, dataOffset)
}

// managedSyncCall resolves the handles of a managed call and runs it
func (h *VMHooks) managedSyncCall(
	kind types.CallType,
	gas int64,
	addressHandle, valueHandle, functionHandle, argumentsHandle int32,
) (*runtime.ExecutionResult, error) {
	if err := h.useGas(syncCallCost(h, kind)); err != nil {
		return nil, err
	}

	dest, err := h.bufferAddress(addressHandle)
	if err != nil {
		return nil, err
	}

	value := new(big.Int)

	if kind != types.ExecuteReadOnly {
		if value, err = h.arena.BigInt(valueHandle); err != nil {
			return nil, err
		}
	}

	function, args, err := h.managedCall(functionHandle, argumentsHandle)
	if err != nil {
		return nil, err
	}

	return h.syncCall(kind, gas, dest, value, function, args)
}

func (h *VMHooks) ManagedExecuteOnSameContext(
	gas int64,
	addressHandle int32,
	valueHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) (int32, error) {
	res, err := h.managedSyncCall(types.ExecuteOnSameContext, gas, addressHandle, valueHandle, functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.mustSucceed(res, resultHandle)
}

func (h *VMHooks) ManagedExecuteOnDestContext(
	gas int64,
	addressHandle int32,
	valueHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) (int32, error) {
	res, err := h.managedSyncCall(types.ExecuteOnDestContext, gas, addressHandle, valueHandle, functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.mustSucceed(res, resultHandle)
}

func (h *VMHooks) ManagedExecuteReadOnly(
	gas int64,
	addressHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) (int32, error) {
	res, err := h.managedSyncCall(types.ExecuteReadOnly, gas, addressHandle, 0, functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return resultOk, h.mustSucceed(res, resultHandle)
}

// ManagedExecuteOnSameContextWithErrorReturn returns the status of the child instead of
// failing the frame with it
func (h *VMHooks) ManagedExecuteOnSameContextWithErrorReturn(
	gas int64,
	addressHandle int32,
	valueHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) (int32, error) {
	res, err := h.managedSyncCall(types.ExecuteOnSameContext, gas, addressHandle, valueHandle, functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return h.fallible(res, resultHandle)
}

func (h *VMHooks) ManagedExecuteOnDestContextWithErrorReturn(
	gas int64,
	addressHandle int32,
	valueHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) (int32, error) {
	res, err := h.managedSyncCall(types.ExecuteOnDestContext, gas, addressHandle, valueHandle, functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return h.fallible(res, resultHandle)
}

func (h *VMHooks) ManagedExecuteReadOnlyWithErrorReturn(
	gas int64,
	addressHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) (int32, error) {
	res, err := h.managedSyncCall(types.ExecuteReadOnly, gas, addressHandle, 0, functionHandle, argumentsHandle)
	if err != nil {
		return 0, err
	}

	return h.fallible(res, resultHandle)
}

// deploy runs the init endpoint of new code. The host derives the address of the contract.
func (h *VMHooks) deploy(gas int64, value *big.Int, code []byte, metadata types.CodeMetadata, args [][]byte) (*runtime.ExecutionResult, error) {
	if err := h.checkWritable(); err != nil {
		return nil, err
	}

	if value.Sign() < 0 {
		return nil, runtime.ErrInsufficientFunds
	}

	if err := h.useGasForDataCopy(len(code)); err != nil {
		return nil, err
	}

	child := &runtime.Contract{
		Type:         types.Deploy,
		Code:         code,
		CodeMetadata: metadata,
		Caller:       h.self(),
		Value:        new(big.Int).Set(value),
		Function:     runtime.InitFunctionName,
		Args:         args,
	}

	return h.call(child, gas)
}

// sourceCode returns the code of an existing contract
func (h *VMHooks) sourceCode(addr types.Address) ([]byte, error) {
	if err := h.useGas(h.schedule.BaseOperationCost.GetCode); err != nil {
		return nil, err
	}

	code := h.host.GetCode(addr)
	if len(code) == 0 {
		return nil, runtime.ErrContractNotFound
	}

	return code, nil
}

// CreateContract deploys code and writes the new address at resultOffset. It returns
// the status of the deployment.
func (h *VMHooks) CreateContract(
	gasLimit int64,
	valueOffset int32,
	codeOffset int32,
	codeMetadataOffset int32,
	length int32,
	resultOffset int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CreateContract); err != nil {
		return 0, err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return 0, err
	}

	code, err := h.memLoad(codeOffset, length)
	if err != nil {
		return 0, err
	}

	metadata, err := h.memLoad(codeMetadataOffset, types.CodeMetadataLength)
	if err != nil {
		return 0, err
	}

	args, err := h.memLoadMultiple(dataOffset, argumentsLengthOffset, numArguments)
	if err != nil {
		return 0, err
	}

	return h.legacyDeploy(gasLimit, value, code, metadata, args, resultOffset)
}

func (h *VMHooks) DeployFromSourceContract(
	gasLimit int64,
	valueOffset int32,
	sourceContractAddressOffset int32,
	codeMetadataOffset int32,
	resultAddressOffset int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CreateContract); err != nil {
		return 0, err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return 0, err
	}

	source, err := h.memLoadAddress(sourceContractAddressOffset)
	if err != nil {
		return 0, err
	}

	metadata, err := h.memLoad(codeMetadataOffset, types.CodeMetadataLength)
	if err != nil {
		return 0, err
	}

	args, err := h.memLoadMultiple(dataOffset, argumentsLengthOffset, numArguments)
	if err != nil {
		return 0, err
	}

	code, err := h.sourceCode(source)
	if err != nil {
		return 0, err
	}

	return h.legacyDeploy(gasLimit, value, code, metadata, args, resultAddressOffset)
}

func (h *VMHooks) legacyDeploy(gasLimit int64, value *big.Int, code, metadata []byte, args [][]byte, resultOffset int32) (int32, error) {
	res, err := h.deploy(gasLimit, value, code, types.CodeMetadataFromBytes(metadata), args)
	if err != nil {
		return 0, err
	}

	status, err := h.fallible(res, 0)
	if err != nil || status != resultOk {
		return status, err
	}

	return resultOk, h.memStore(resultOffset, res.NewAddress.Bytes())
}

func (h *VMHooks) managedDeploy(
	gas int64,
	value *big.Int,
	code []byte,
	codeMetadataHandle, argumentsHandle, resultAddressHandle, resultHandle int32,
) (int32, error) {
	metadata, err := h.arena.Buffer(codeMetadataHandle)
	if err != nil {
		return 0, err
	}

	args, err := h.arena.ReadBufferVec(argumentsHandle)
	if err != nil {
		return 0, err
	}

	res, err := h.deploy(gas, value, code, types.CodeMetadataFromBytes(metadata), args)
	if err != nil {
		return 0, err
	}

	if err := h.mustSucceed(res, resultHandle); err != nil {
		return 0, err
	}

	return resultOk, h.arena.SetBuffer(resultAddressHandle, res.NewAddress.Bytes())
}

func (h *VMHooks) ManagedCreateContract(
	gas int64,
	valueHandle int32,
	codeHandle int32,
	codeMetadataHandle int32,
	argumentsHandle int32,
	resultAddressHandle int32,
	resultHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CreateContract); err != nil {
		return 0, err
	}

	value, err := h.arena.BigInt(valueHandle)
	if err != nil {
		return 0, err
	}

	code, err := h.arena.Buffer(codeHandle)
	if err != nil {
		return 0, err
	}

	return h.managedDeploy(gas, value, code, codeMetadataHandle, argumentsHandle, resultAddressHandle, resultHandle)
}

func (h *VMHooks) ManagedDeployFromSourceContract(
	gas int64,
	valueHandle int32,
	addressHandle int32,
	codeMetadataHandle int32,
	argumentsHandle int32,
	resultAddressHandle int32,
	resultHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CreateContract); err != nil {
		return 0, err
	}

	value, err := h.arena.BigInt(valueHandle)
	if err != nil {
		return 0, err
	}

	source, err := h.bufferAddress(addressHandle)
	if err != nil {
		return 0, err
	}

	code, err := h.sourceCode(source)
	if err != nil {
		return 0, err
	}

	return h.managedDeploy(gas, value, code, codeMetadataHandle, argumentsHandle, resultAddressHandle, resultHandle)
}

// upgrade replaces the code of dest and runs its upgrade endpoint. The host checks
// that the caller owns dest and that dest is upgradeable.
func (h *VMHooks) upgrade(
	dest types.Address,
	gas int64,
	value *big.Int,
	code []byte,
	metadata types.CodeMetadata,
	args [][]byte,
	resultHandle int32,
) error {
	if err := h.checkWritable(); err != nil {
		return err
	}

	if value.Sign() < 0 {
		return runtime.ErrInsufficientFunds
	}

	if err := h.useGasForDataCopy(len(code)); err != nil {
		return err
	}

	child := &runtime.Contract{
		Type:         types.Upgrade,
		Code:         code,
		CodeMetadata: metadata,
		CodeAddress:  dest,
		Address:      dest,
		Caller:       h.self(),
		Value:        new(big.Int).Set(value),
		Function:     runtime.UpgradeFunctionName,
		Args:         args,
	}

	res, err := h.call(child, gas)
	if err != nil {
		return err
	}

	return h.mustSucceed(res, resultHandle)
}

func (h *VMHooks) UpgradeContract(
	destOffset int32,
	gasLimit int64,
	valueOffset int32,
	codeOffset int32,
	codeMetadataOffset int32,
	length int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.UpgradeContract); err != nil {
		return err
	}

	dest, err := h.memLoadAddress(destOffset)
	if err != nil {
		return err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return err
	}

	code, err := h.memLoad(codeOffset, length)
	if err != nil {
		return err
	}

	metadata, err := h.memLoad(codeMetadataOffset, types.CodeMetadataLength)
	if err != nil {
		return err
	}

	args, err := h.memLoadMultiple(dataOffset, argumentsLengthOffset, numArguments)
	if err != nil {
		return err
	}

	return h.upgrade(dest, gasLimit, value, code, types.CodeMetadataFromBytes(metadata), args, 0)
}

func (h *VMHooks) UpgradeFromSourceContract(
	destOffset int32,
	gasLimit int64,
	valueOffset int32,
	sourceContractAddressOffset int32,
	codeMetadataOffset int32,
	numArguments int32,
	argumentsLengthOffset int32,
	dataOffset int32,
) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.UpgradeContract); err != nil {
		return err
	}

	dest, err := h.memLoadAddress(destOffset)
	if err != nil {
		return err
	}

	value, err := h.memLoadValue(valueOffset)
	if err != nil {
		return err
	}

	source, err := h.memLoadAddress(sourceContractAddressOffset)
	if err != nil {
		return err
	}

	metadata, err := h.memLoad(codeMetadataOffset, types.CodeMetadataLength)
	if err != nil {
		return err
	}

	args, err := h.memLoadMultiple(dataOffset, argumentsLengthOffset, numArguments)
	if err != nil {
		return err
	}

	code, err := h.sourceCode(source)
	if err != nil {
		return err
	}

	return h.upgrade(dest, gasLimit, value, code, types.CodeMetadataFromBytes(metadata), args, 0)
}

func (h *VMHooks) managedUpgrade(
	destHandle int32,
	gas int64,
	valueHandle int32,
	code []byte,
	codeMetadataHandle, argumentsHandle, resultHandle int32,
) error {
	dest, err := h.bufferAddress(destHandle)
	if err != nil {
		return err
	}

	value, err := h.arena.BigInt(valueHandle)
	if err != nil {
		return err
	}

	metadata, err := h.arena.Buffer(codeMetadataHandle)
	if err != nil {
		return err
	}

	args, err := h.arena.ReadBufferVec(argumentsHandle)
	if err != nil {
		return err
	}

	return h.upgrade(dest, gas, value, code, types.CodeMetadataFromBytes(metadata), args, resultHandle)
}

func (h *VMHooks) ManagedUpgradeContract(
	destHandle int32,
	gas int64,
	valueHandle int32,
	codeHandle int32,
	codeMetadataHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.UpgradeContract); err != nil {
		return err
	}

	code, err := h.arena.Buffer(codeHandle)
	if err != nil {
		return err
	}

	return h.managedUpgrade(destHandle, gas, valueHandle, code, codeMetadataHandle, argumentsHandle, resultHandle)
}

func (h *VMHooks) ManagedUpgradeFromSourceContract(
	destHandle int32,
	gas int64,
	valueHandle int32,
	addressHandle int32,
	codeMetadataHandle int32,
	argumentsHandle int32,
	resultHandle int32,
) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.UpgradeContract); err != nil {
		return err
	}

	source, err := h.bufferAddress(addressHandle)
	if err != nil {
		return err
	}

	code, err := h.sourceCode(source)
	if err != nil {
		return err
	}

	return h.managedUpgrade(destHandle, gas, valueHandle, code, codeMetadataHandle, argumentsHandle, resultHandle)
}

func (h *VMHooks) DeleteContract(destOffset int32, gasLimit int64, numArguments int32, argumentsLengthOffset int32, dataOffset int32) error {
	return ErrDeleteNotSupported
}

func (h *VMHooks) ManagedDeleteContract(destHandle int32, gasLimit int64, argumentsHandle int32) error {
	return ErrDeleteNotSupported
}

func (h *VMHooks) returnData(resultID int32) ([]byte, error) {
	if resultID < 0 || int(resultID) >= len(h.output) {
		return nil, runtime.ErrReturnDataOutOfRange
	}

	return h.output[resultID], nil
}

func (h *VMHooks) GetNumReturnData() (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetNumReturnData); err != nil {
		return 0, err
	}

	return int32(len(h.output)), nil
}

func (h *VMHooks) GetReturnDataSize(resultID int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetReturnDataSize); err != nil {
		return 0, err
	}

	data, err := h.returnData(resultID)
	if err != nil {
		return 0, err
	}

	return int32(len(data)), nil
}

func (h *VMHooks) GetReturnData(resultID int32, dataOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetReturnData); err != nil {
		return 0, err
	}

	data, err := h.returnData(resultID)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return 0, err
	}

	if err := h.memStore(dataOffset, data); err != nil {
		return 0, err
	}

	return int32(len(data)), nil
}

func (h *VMHooks) ManagedGetReturnData(resultID int32, resultHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetReturnData); err != nil {
		return err
	}

	data, err := h.returnData(resultID)
	if err != nil {
		return err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return err
	}

	return h.arena.SetBuffer(resultHandle, data)
}

func (h *VMHooks) CleanReturnData() error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CleanReturnData); err != nil {
		return err
	}

	h.output = nil

	return nil
}

func (h *VMHooks) DeleteFromReturnData(resultID int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.DeleteFromReturnData); err != nil {
		return err
	}

	if _, err := h.returnData(resultID); err != nil {
		return err
	}

	h.output = append(h.output[:resultID], h.output[resultID+1:]...)

	return nil
}
