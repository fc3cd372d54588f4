package vmhooks

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

func (h *VMHooks) checkAsyncAllowed() error {
	if h.contract.ReadOnly {
		return runtime.ErrAsyncCallNotAllowed
	}

	return nil
}

// legacyAsyncCall registers the single async call of the frame. All the gas left,
// minus the callback lock, goes to the destination and the frame ends.
func (h *VMHooks) legacyAsyncCall(dest types.Address, value *big.Int, function string, args [][]byte) error {
	if err := h.checkAsyncAllowed(); err != nil {
		return err
	}

	if h.asyncCall != nil {
		return runtime.ErrAsyncCallNotAllowed
	}

	if value.Sign() < 0 {
		return runtime.ErrInsufficientFunds
	}

	callbackGas := h.schedule.BaseOpsAPICost.AsyncCallbackGasLock
	if h.callbackGas > 0 {
		callbackGas = h.callbackGas
	}

	if err := h.meter.Lock(callbackGas); err != nil {
		return err
	}

	callback := h.callbackName
	if callback == "" {
		callback = runtime.CallbackFunctionName
	}

	gasLimit := h.meter.GasLeft()
	if err := h.useGas(gasLimit); err != nil {
		return err
	}

	h.asyncCall = &runtime.AsyncCall{
		Caller:          h.self(),
		Destination:     dest,
		Value:           new(big.Int).Set(value),
		Function:        function,
		Args:            args,
		GasLimit:        gasLimit,
		SuccessCallback: callback,
		ErrorCallback:   callback,
		CallbackGas:     callbackGas,
		CallbackClosure: h.callbackClosure,
		Legacy:          true,
	}

	return runtime.ErrAsyncCallIssued
}

// AsyncCall ends the frame with a call to dest described by data, fn@hex@hex
func (h *VMHooks) AsyncCall(destOffset int32, valueOffset int32, dataOffset int32, length int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.AsyncCallStep); err != nil {
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

	data, err := h.memLoad(dataOffset, length)
	if err != nil {
		return err
	}

	if err := h.useGasForDataCopy(len(data)); err != nil {
		return err
	}

	function, args, err := types.ParseCallData(data)
	if err != nil {
		return ErrInvalidCallData
	}

	return h.legacyAsyncCall(dest, value, function, args)
}

func (h *VMHooks) ManagedAsyncCall(destHandle int32, valueHandle int32, functionHandle int32, argumentsHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.AsyncCallStep); err != nil {
		return err
	}

	dest, err := h.bufferAddress(destHandle)
	if err != nil {
		return err
	}

	value, err := h.arena.BigInt(valueHandle)
	if err != nil {
		return err
	}

	function, args, err := h.managedCall(functionHandle, argumentsHandle)
	if err != nil {
		return err
	}

	return h.legacyAsyncCall(dest, value, function, args)
}

// promise registers an async call that runs after the frame ends. gas goes to the
// destination and extraGasForCallback is locked for the callback.
func (h *VMHooks) promise(
	dest types.Address,
	value *big.Int,
	function string,
	args [][]byte,
	success, failure string,
	gas, extraGasForCallback int64,
	closure []byte,
) error {
	if err := h.checkAsyncAllowed(); err != nil {
		return err
	}

	if function == "" {
		return ErrEmptyPromiseFunction
	}

	if value.Sign() < 0 {
		return runtime.ErrInsufficientFunds
	}

	if gas < 0 || extraGasForCallback < 0 {
		return ErrArgumentOutOfRange
	}

	if err := h.useGas(uint64(gas)); err != nil {
		return err
	}

	if err := h.meter.Lock(uint64(extraGasForCallback)); err != nil {
		return err
	}

	h.promises = append(h.promises, &runtime.AsyncCall{
		Caller:          h.self(),
		Destination:     dest,
		Value:           new(big.Int).Set(value),
		Function:        function,
		Args:            args,
		GasLimit:        uint64(gas),
		SuccessCallback: success,
		ErrorCallback:   failure,
		CallbackGas:     uint64(extraGasForCallback),
		CallbackClosure: closure,
	})

	return nil
}

func (h *VMHooks) CreateAsyncCall(
	destOffset int32,
	valueOffset int32,
	dataOffset int32,
	dataLength int32,
	successOffset int32,
	successLength int32,
	errorOffset int32,
	errorLength int32,
	gas int64,
	extraGasForCallback int64,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CreateAsyncCall); err != nil {
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

	data, err := h.memLoad(dataOffset, dataLength)
	if err != nil {
		return 0, err
	}

	success, err := h.memLoad(successOffset, successLength)
	if err != nil {
		return 0, err
	}

	failure, err := h.memLoad(errorOffset, errorLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(data) + len(success) + len(failure)); err != nil {
		return 0, err
	}

	function, args, err := types.ParseCallData(data)
	if err != nil {
		return 0, ErrInvalidCallData
	}

	err = h.promise(dest, value, function, args, string(success), string(failure), gas, extraGasForCallback, nil)
	if err != nil {
		return 0, err
	}

	return resultOk, nil
}

func (h *VMHooks) ManagedCreateAsyncCall(
	destHandle int32,
	valueHandle int32,
	functionHandle int32,
	argumentsHandle int32,
	successOffset int32,
	successLength int32,
	errorOffset int32,
	errorLength int32,
	gas int64,
	extraGasForCallback int64,
	callbackClosureHandle int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.CreateAsyncCall); err != nil {
		return 0, err
	}

	dest, err := h.bufferAddress(destHandle)
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

	success, err := h.memLoad(successOffset, successLength)
	if err != nil {
		return 0, err
	}

	failure, err := h.memLoad(errorOffset, errorLength)
	if err != nil {
		return 0, err
	}

	closure, err := h.arena.Buffer(callbackClosureHandle)
	if err != nil {
		return 0, err
	}

	err = h.promise(dest, value, function, args, string(success), string(failure), gas, extraGasForCallback, closure)
	if err != nil {
		return 0, err
	}

	return resultOk, nil
}

// SetAsyncContextCallback configures the callback of the legacy async call
func (h *VMHooks) SetAsyncContextCallback(callback int32, callbackLength int32, data int32, dataLength int32, gas int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.SetAsyncCallback); err != nil {
		return 0, err
	}

	if err := h.checkAsyncAllowed(); err != nil {
		return 0, err
	}

	if gas < 0 {
		return 0, ErrArgumentOutOfRange
	}

	name, err := h.memLoad(callback, callbackLength)
	if err != nil {
		return 0, err
	}

	closure, err := h.memLoad(data, dataLength)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(name) + len(closure)); err != nil {
		return 0, err
	}

	h.callbackName = string(name)
	h.callbackClosure = closure
	h.callbackGas = uint64(gas)

	return resultOk, nil
}
