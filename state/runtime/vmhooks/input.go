package vmhooks

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/helper/common"
	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
	"github.com/0xPolygon/wasm-vm/types"
)

func (h *VMHooks) GetNumArguments() (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetNumArguments); err != nil {
		return 0, err
	}

	return int32(len(h.contract.Args)), nil
}

func (h *VMHooks) GetArgumentLength(id int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetArgument); err != nil {
		return 0, err
	}

	arg, err := h.argument(id)
	if err != nil {
		return 0, err
	}

	return int32(len(arg)), nil
}

func (h *VMHooks) GetArgument(id int32, argOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetArgument); err != nil {
		return 0, err
	}

	arg, err := h.argument(id)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(arg)); err != nil {
		return 0, err
	}

	if err := h.memStore(argOffset, arg); err != nil {
		return 0, err
	}

	return int32(len(arg)), nil
}

func (h *VMHooks) GetFunction(functionOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetFunction); err != nil {
		return 0, err
	}

	if err := h.memStore(functionOffset, []byte(h.contract.Function)); err != nil {
		return 0, err
	}

	return int32(len(h.contract.Function)), nil
}

func (h *VMHooks) MBufferGetArgument(id int32, destinationHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.ManagedBufferAPICost.MBufferGetArgument); err != nil {
		return 0, err
	}

	arg, err := h.argument(id)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForDataCopy(len(arg)); err != nil {
		return 0, err
	}

	return 0, h.arena.SetBuffer(destinationHandle, arg)
}

func (h *VMHooks) BigIntGetUnsignedArgument(id int32, destinationHandle int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetUnsignedArgument); err != nil {
		return err
	}

	arg, err := h.argument(id)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, types.TopDecodeBigUint(arg))
}

func (h *VMHooks) BigIntGetSignedArgument(id int32, destinationHandle int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetSignedArgument); err != nil {
		return err
	}

	arg, err := h.argument(id)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, types.TopDecodeBigInt(arg))
}

func (h *VMHooks) SmallIntGetUnsignedArgument(id int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64GetArgument); err != nil {
		return 0, err
	}

	arg, err := h.argument(id)
	if err != nil {
		return 0, err
	}

	v, err := types.TopDecodeUint64(arg)
	if err != nil {
		return 0, ErrArgumentOutOfRange
	}

	return int64(v), nil
}

func (h *VMHooks) SmallIntGetSignedArgument(id int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.Int64GetArgument); err != nil {
		return 0, err
	}

	arg, err := h.argument(id)
	if err != nil {
		return 0, err
	}

	v, err := types.TopDecodeInt64(arg)
	if err != nil {
		return 0, ErrArgumentOutOfRange
	}

	return v, nil
}

func (h *VMHooks) Int64getArgument(id int32) (int64, error) {
	return h.SmallIntGetSignedArgument(id)
}

func (h *VMHooks) GetCaller(resultOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCaller); err != nil {
		return err
	}

	return h.memStore(resultOffset, h.contract.Caller.Bytes())
}

func (h *VMHooks) ManagedCaller(destinationHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCaller); err != nil {
		return err
	}

	return h.arena.SetBuffer(destinationHandle, h.contract.Caller.Bytes())
}

func (h *VMHooks) GetSCAddress(resultOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetSCAddress); err != nil {
		return err
	}

	return h.memStore(resultOffset, h.self().Bytes())
}

func (h *VMHooks) ManagedSCAddress(destinationHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetSCAddress); err != nil {
		return err
	}

	return h.arena.SetBuffer(destinationHandle, h.self().Bytes())
}

func (h *VMHooks) GetOwnerAddress(resultOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetOwnerAddress); err != nil {
		return err
	}

	return h.memStore(resultOffset, h.host.GetOwner(h.self()).Bytes())
}

func (h *VMHooks) ManagedOwnerAddress(destinationHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetOwnerAddress); err != nil {
		return err
	}

	return h.arena.SetBuffer(destinationHandle, h.host.GetOwner(h.self()).Bytes())
}

func (h *VMHooks) callValue() *big.Int {
	if h.contract.Value == nil {
		return new(big.Int)
	}

	return h.contract.Value
}

// GetCallValue writes the EGLD value as 32 big endian bytes
func (h *VMHooks) GetCallValue(resultOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return 0, err
	}

	value := common.PadLeftOrTrim(h.callValue().Bytes(), valueLen)
	if err := h.memStore(resultOffset, value); err != nil {
		return 0, err
	}

	return int32(len(value)), nil
}

func (h *VMHooks) BigIntGetCallValue(destinationHandle int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetCallValue); err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, h.callValue())
}

func (h *VMHooks) CheckNoPayment() error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return err
	}

	if h.callValue().Sign() > 0 {
		return ErrNoEGLDPayment
	}

	if len(h.contract.ESDTTransfers) > 0 {
		return ErrNoESDTPayment
	}

	return nil
}

func (h *VMHooks) GetNumESDTTransfers() (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetNumESDTTransfers); err != nil {
		return 0, err
	}

	return int32(len(h.contract.ESDTTransfers)), nil
}

func (h *VMHooks) esdtTransfer(index int32) (*types.EsdtTokenPayment, error) {
	if index < 0 || int(index) >= len(h.contract.ESDTTransfers) {
		return nil, ErrInvalidTokenIndex
	}

	return h.contract.ESDTTransfers[index], nil
}

func (h *VMHooks) GetESDTValue(resultOffset int32) (int32, error) {
	return h.GetESDTValueByIndex(resultOffset, 0)
}

func (h *VMHooks) GetESDTValueByIndex(resultOffset int32, index int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return 0, err
	}

	transfer, err := h.esdtTransfer(index)
	if err != nil {
		return 0, err
	}

	value := common.PadLeftOrTrim(transfer.Amount.Bytes(), valueLen)
	if err := h.memStore(resultOffset, value); err != nil {
		return 0, err
	}

	return int32(len(value)), nil
}

func (h *VMHooks) BigIntGetESDTCallValue(destinationHandle int32) error {
	return h.BigIntGetESDTCallValueByIndex(destinationHandle, 0)
}

func (h *VMHooks) BigIntGetESDTCallValueByIndex(destinationHandle int32, index int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetCallValue); err != nil {
		return err
	}

	transfer, err := h.esdtTransfer(index)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, transfer.Amount)
}

func (h *VMHooks) GetESDTTokenName(resultOffset int32) (int32, error) {
	return h.GetESDTTokenNameByIndex(resultOffset, 0)
}

func (h *VMHooks) GetESDTTokenNameByIndex(resultOffset int32, index int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return 0, err
	}

	transfer, err := h.esdtTransfer(index)
	if err != nil {
		return 0, err
	}

	if err := h.memStore(resultOffset, transfer.TokenID); err != nil {
		return 0, err
	}

	return int32(len(transfer.TokenID)), nil
}

func (h *VMHooks) GetESDTTokenNonce() (int64, error) {
	return h.GetESDTTokenNonceByIndex(0)
}

func (h *VMHooks) GetESDTTokenNonceByIndex(index int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return 0, err
	}

	transfer, err := h.esdtTransfer(index)
	if err != nil {
		return 0, err
	}

	return int64(transfer.Nonce), nil
}

func (h *VMHooks) GetESDTTokenType() (int32, error) {
	return h.GetESDTTokenTypeByIndex(0)
}

func (h *VMHooks) GetESDTTokenTypeByIndex(index int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return 0, err
	}

	transfer, err := h.esdtTransfer(index)
	if err != nil {
		return 0, err
	}

	return int32(h.tokenType(transfer.TokenID, transfer.Nonce)), nil
}

// tokenType uses the registry when the token is known and falls back to the nonce
func (h *VMHooks) tokenType(tokenID []byte, nonce uint64) types.EsdtTokenType {
	if info, ok := h.host.GetTokenInfo(tokenID); ok {
		return info.Type.Classify()
	}

	if nonce == 0 {
		return types.Fungible
	}

	return types.NonFungible
}

// GetCallValueTokenName writes the value and the token name of the single payment of the call
func (h *VMHooks) GetCallValueTokenName(callValueOffset int32, tokenNameOffset int32) (int32, error) {
	return h.GetCallValueTokenNameByIndex(callValueOffset, tokenNameOffset, 0)
}

func (h *VMHooks) GetCallValueTokenNameByIndex(callValueOffset int32, tokenNameOffset int32, index int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return 0, err
	}

	value := h.callValue()
	tokenName := []byte{}

	if len(h.contract.ESDTTransfers) > 0 {
		transfer, err := h.esdtTransfer(index)
		if err != nil {
			return 0, err
		}

		value = transfer.Amount
		tokenName = transfer.TokenID
	}

	if err := h.memStore(callValueOffset, common.PadLeftOrTrim(value.Bytes(), valueLen)); err != nil {
		return 0, err
	}

	if err := h.memStore(tokenNameOffset, tokenName); err != nil {
		return 0, err
	}

	return int32(len(tokenName)), nil
}

func (h *VMHooks) ManagedGetMultiESDTCallValue(multiCallValueHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallValue); err != nil {
		return err
	}

	return h.arena.WritePayments(multiCallValueHandle, h.contract.ESDTTransfers)
}

func (h *VMHooks) ManagedGetCallbackClosure(callbackClosureHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCallbackClosure); err != nil {
		return err
	}

	closure, err := h.arena.Buffer(managed.HandleCallbackClosure)
	if err != nil {
		return err
	}

	return h.arena.SetBuffer(callbackClosureHandle, closure)
}

// ManagedGetBackTransfers reports what the nested calls of this frame sent back to it
func (h *VMHooks) ManagedGetBackTransfers(esdtTransfersValueHandle int32, egldValueHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBackTransfers); err != nil {
		return err
	}

	egld := new(big.Int)
	payments := []*types.EsdtTokenPayment{}

	for _, t := range h.transfers {
		if t.To != h.self() || t.From == h.self() {
			continue
		}

		if t.Value != nil {
			egld.Add(egld, t.Value)
		}

		for _, p := range t.ESDTTransfers {
			payments = append(payments, p.Copy())
		}
	}

	if err := h.arena.WritePayments(esdtTransfersValueHandle, payments); err != nil {
		return err
	}

	return h.arena.SetBigInt(egldValueHandle, egld)
}
