package vmhooks

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/helper/common"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

func (h *VMHooks) GetGasLeft() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetGasLeft); err != nil {
		return 0, err
	}

	return int64(h.meter.GasLeft()), nil
}

func (h *VMHooks) GetBlockTimestamp() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockTimeStamp); err != nil {
		return 0, err
	}

	return int64(h.host.GetBlockInfo().Timestamp), nil
}

func (h *VMHooks) GetBlockNonce() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockNonce); err != nil {
		return 0, err
	}

	return int64(h.host.GetBlockInfo().Nonce), nil
}

func (h *VMHooks) GetBlockRound() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockRound); err != nil {
		return 0, err
	}

	return int64(h.host.GetBlockInfo().Round), nil
}

func (h *VMHooks) GetBlockEpoch() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockEpoch); err != nil {
		return 0, err
	}

	return int64(h.host.GetBlockInfo().Epoch), nil
}

func (h *VMHooks) GetBlockRandomSeed(pointer int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockRandomSeed); err != nil {
		return err
	}

	return h.memStore(pointer, h.host.GetBlockInfo().RandomSeed)
}

func (h *VMHooks) ManagedGetBlockRandomSeed(resultHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockRandomSeed); err != nil {
		return err
	}

	return h.arena.SetBuffer(resultHandle, h.host.GetBlockInfo().RandomSeed)
}

func (h *VMHooks) GetPrevBlockTimestamp() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockTimeStamp); err != nil {
		return 0, err
	}

	return int64(h.host.GetPrevBlockInfo().Timestamp), nil
}

func (h *VMHooks) GetPrevBlockNonce() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockNonce); err != nil {
		return 0, err
	}

	return int64(h.host.GetPrevBlockInfo().Nonce), nil
}

func (h *VMHooks) GetPrevBlockRound() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockRound); err != nil {
		return 0, err
	}

	return int64(h.host.GetPrevBlockInfo().Round), nil
}

func (h *VMHooks) GetPrevBlockEpoch() (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockEpoch); err != nil {
		return 0, err
	}

	return int64(h.host.GetPrevBlockInfo().Epoch), nil
}

func (h *VMHooks) GetPrevBlockRandomSeed(pointer int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockRandomSeed); err != nil {
		return err
	}

	return h.memStore(pointer, h.host.GetPrevBlockInfo().RandomSeed)
}

func (h *VMHooks) ManagedGetPrevBlockRandomSeed(resultHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockRandomSeed); err != nil {
		return err
	}

	return h.arena.SetBuffer(resultHandle, h.host.GetPrevBlockInfo().RandomSeed)
}

func (h *VMHooks) GetStateRootHash(pointer int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetStateRootHash); err != nil {
		return err
	}

	return h.memStore(pointer, h.host.GetStateRootHash().Bytes())
}

func (h *VMHooks) ManagedGetStateRootHash(resultHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetStateRootHash); err != nil {
		return err
	}

	return h.arena.SetBuffer(resultHandle, h.host.GetStateRootHash().Bytes())
}

func (h *VMHooks) GetOriginalTxHash(dataOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetOriginalTxHash); err != nil {
		return err
	}

	return h.memStore(dataOffset, h.contract.OriginalTxHash.Bytes())
}

func (h *VMHooks) ManagedGetOriginalTxHash(resultHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetOriginalTxHash); err != nil {
		return err
	}

	return h.arena.SetBuffer(resultHandle, h.contract.OriginalTxHash.Bytes())
}

func (h *VMHooks) GetCurrentTxHash(dataOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCurrentTxHash); err != nil {
		return err
	}

	return h.memStore(dataOffset, h.contract.TxHash.Bytes())
}

func (h *VMHooks) GetPrevTxHash(dataOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetPrevTxHash); err != nil {
		return err
	}

	return h.memStore(dataOffset, h.contract.PrevTxHash.Bytes())
}

func (h *VMHooks) GetShardOfAddress(addressOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetShardOfAddress); err != nil {
		return 0, err
	}

	addr, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return 0, err
	}

	return int32(h.host.ShardOfAddress(addr)), nil
}

func (h *VMHooks) IsSmartContract(addressOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.IsSmartContract); err != nil {
		return 0, err
	}

	addr, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return 0, err
	}

	return boolToInt32(addr.IsSmartContract() && len(h.host.GetCode(addr)) > 0), nil
}

func (h *VMHooks) GetBlockHash(nonce int64, resultOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetBlockHash); err != nil {
		return 0, err
	}

	if nonce < 0 || uint64(nonce) > h.host.GetBlockInfo().Nonce {
		return 1, nil
	}

	if err := h.memStore(resultOffset, h.host.GetBlockHash(uint64(nonce)).Bytes()); err != nil {
		return 0, err
	}

	return 0, nil
}

func (h *VMHooks) GetExternalBalance(addressOffset int32, resultOffset int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetExternalBalance); err != nil {
		return err
	}

	addr, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return err
	}

	return h.memStore(resultOffset, common.PadLeftOrTrim(h.host.GetBalance(addr).Bytes(), valueLen))
}

func (h *VMHooks) BigIntGetExternalBalance(addressOffset int32, result int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetExternalBalance); err != nil {
		return err
	}

	addr, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(result, h.host.GetBalance(addr))
}

func (h *VMHooks) memLoadToken(addressOffset, tokenIDOffset, tokenIDLen int32) (types.Address, []byte, error) {
	addr, err := h.memLoadAddress(addressOffset)
	if err != nil {
		return types.ZeroAddress, nil, err
	}

	token, err := h.memLoad(tokenIDOffset, tokenIDLen)
	if err != nil {
		return types.ZeroAddress, nil, err
	}

	return addr, token, nil
}

func (h *VMHooks) GetESDTBalance(
	addressOffset int32,
	tokenIDOffset int32,
	tokenIDLen int32,
	nonce int64,
	resultOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTBalance); err != nil {
		return 0, err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	balance := h.host.GetEsdtBalance(addr, token, uint64(nonce)).Bytes()
	if err := h.memStore(resultOffset, balance); err != nil {
		return 0, err
	}

	return int32(len(balance)), nil
}

func (h *VMHooks) BigIntGetESDTExternalBalance(
	addressOffset int32,
	tokenIDOffset int32,
	tokenIDLen int32,
	nonce int64,
	resultHandle int32,
) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTBalance); err != nil {
		return err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(resultHandle, h.host.GetEsdtBalance(addr, token, uint64(nonce)))
}

func (h *VMHooks) ManagedGetESDTBalance(addressHandle int32, tokenIDHandle int32, nonce int64, valueHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTBalance); err != nil {
		return err
	}

	addr, err := h.bufferAddress(addressHandle)
	if err != nil {
		return err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(valueHandle, h.host.GetEsdtBalance(addr, token, uint64(nonce)))
}

// esdtMetadata returns the metadata of an instance, empty when there is none
func (h *VMHooks) esdtMetadata(addr types.Address, token []byte, nonce uint64) *types.EsdtMetadata {
	inst, ok := h.host.GetEsdtInstance(addr, token, nonce)
	if !ok || inst.Metadata == nil {
		return &types.EsdtMetadata{}
	}

	return inst.Metadata
}

func (h *VMHooks) GetESDTNFTNameLength(addressOffset int32, tokenIDOffset int32, tokenIDLen int32, nonce int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTTokenData); err != nil {
		return 0, err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	return int32(len(h.esdtMetadata(addr, token, uint64(nonce)).Name)), nil
}

func (h *VMHooks) GetESDTNFTAttributeLength(
	addressOffset int32,
	tokenIDOffset int32,
	tokenIDLen int32,
	nonce int64,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTTokenData); err != nil {
		return 0, err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	return int32(len(h.esdtMetadata(addr, token, uint64(nonce)).Attributes)), nil
}

func (h *VMHooks) GetESDTNFTURILength(addressOffset int32, tokenIDOffset int32, tokenIDLen int32, nonce int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTTokenData); err != nil {
		return 0, err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	uris := h.esdtMetadata(addr, token, uint64(nonce)).URIs
	if len(uris) == 0 {
		return 0, nil
	}

	return int32(len(uris[0])), nil
}

// tokenProperties encodes the two property bytes of an instance: frozen, then reserved
func (h *VMHooks) tokenProperties(addr types.Address, token []byte) []byte {
	props := []byte{0, 0}

	if data, ok := h.host.GetEsdtData(addr, token); ok && data.Frozen {
		props[0] = 1
	}

	return props
}

func (h *VMHooks) GetESDTTokenData(
	addressOffset int32,
	tokenIDOffset int32,
	tokenIDLen int32,
	nonce int64,
	valueHandle int32,
	propertiesOffset int32,
	hashOffset int32,
	nameOffset int32,
	attributesOffset int32,
	creatorOffset int32,
	royaltiesHandle int32,
	urisOffset int32,
) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTTokenData); err != nil {
		return 0, err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	meta := h.esdtMetadata(addr, token, uint64(nonce))

	if err := h.arena.SetBigInt(valueHandle, h.host.GetEsdtBalance(addr, token, uint64(nonce))); err != nil {
		return 0, err
	}

	if err := h.arena.SetBigInt(royaltiesHandle, new(big.Int).SetUint64(uint64(meta.Royalties))); err != nil {
		return 0, err
	}

	firstURI := []byte{}
	if len(meta.URIs) > 0 {
		firstURI = meta.URIs[0]
	}

	writes := []struct {
		offset int32
		data   []byte
	}{
		{propertiesOffset, h.tokenProperties(addr, token)},
		{hashOffset, meta.Hash},
		{nameOffset, meta.Name},
		{attributesOffset, meta.Attributes},
		{creatorOffset, meta.Creator.Bytes()},
		{urisOffset, firstURI},
	}

	for _, w := range writes {
		if err := h.memStore(w.offset, w.data); err != nil {
			return 0, err
		}
	}

	return int32(len(meta.Attributes)), nil
}

func (h *VMHooks) ManagedGetESDTTokenData(
	addressHandle int32,
	tokenIDHandle int32,
	nonce int64,
	valueHandle int32,
	propertiesHandle int32,
	hashHandle int32,
	nameHandle int32,
	attributesHandle int32,
	creatorHandle int32,
	royaltiesHandle int32,
	urisHandle int32,
) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTTokenData); err != nil {
		return err
	}

	addr, err := h.bufferAddress(addressHandle)
	if err != nil {
		return err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return err
	}

	meta := h.esdtMetadata(addr, token, uint64(nonce))

	if err := h.arena.SetBigInt(valueHandle, h.host.GetEsdtBalance(addr, token, uint64(nonce))); err != nil {
		return err
	}

	if err := h.arena.SetBigInt(royaltiesHandle, new(big.Int).SetUint64(uint64(meta.Royalties))); err != nil {
		return err
	}

	buffers := []struct {
		handle int32
		data   []byte
	}{
		{propertiesHandle, h.tokenProperties(addr, token)},
		{hashHandle, meta.Hash},
		{nameHandle, meta.Name},
		{attributesHandle, meta.Attributes},
		{creatorHandle, meta.Creator.Bytes()},
	}

	for _, b := range buffers {
		if err := h.arena.SetBuffer(b.handle, b.data); err != nil {
			return err
		}
	}

	return h.arena.WriteBufferVec(urisHandle, meta.URIs)
}

func (h *VMHooks) GetCurrentESDTNFTNonce(addressOffset int32, tokenIDOffset int32, tokenIDLen int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCurrentESDTNFTNonce); err != nil {
		return 0, err
	}

	addr, token, err := h.memLoadToken(addressOffset, tokenIDOffset, tokenIDLen)
	if err != nil {
		return 0, err
	}

	data, ok := h.host.GetEsdtData(addr, token)
	if !ok {
		return 0, nil
	}

	return int64(data.LastNonce), nil
}

// GetESDTLocalRoles returns the role flags the current contract holds for a token
func (h *VMHooks) GetESDTLocalRoles(tokenIDHandle int32) (int64, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetESDTLocalRoles); err != nil {
		return 0, err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return 0, err
	}

	data, ok := h.host.GetEsdtData(h.self(), token)
	if !ok {
		return 0, nil
	}

	return int64(data.Roles), nil
}

func (h *VMHooks) ValidateTokenIdentifier(tokenIDHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.ValidateTokenIdentifier); err != nil {
		return 0, err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return 0, err
	}

	return boolToInt32(types.IsValidTokenIdentifier(token)), nil
}

func (h *VMHooks) ManagedIsESDTFrozen(addressHandle int32, tokenIDHandle int32, nonce int64) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.IsESDTFrozen); err != nil {
		return 0, err
	}

	addr, err := h.bufferAddress(addressHandle)
	if err != nil {
		return 0, err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return 0, err
	}

	data, ok := h.host.GetEsdtData(addr, token)

	return boolToInt32(ok && data.Frozen), nil
}

func (h *VMHooks) ManagedIsESDTPaused(tokenIDHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.IsESDTPaused); err != nil {
		return 0, err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return 0, err
	}

	info, ok := h.host.GetTokenInfo(token)

	return boolToInt32(ok && info.Paused), nil
}

func (h *VMHooks) ManagedIsESDTLimitedTransfer(tokenIDHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.IsESDTLimitedTransfer); err != nil {
		return 0, err
	}

	token, err := h.arena.Buffer(tokenIDHandle)
	if err != nil {
		return 0, err
	}

	info, ok := h.host.GetTokenInfo(token)

	return boolToInt32(ok && info.LimitedTransfer), nil
}

func (h *VMHooks) ManagedGetCodeMetadata(addressHandle int32, responseHandle int32) error {
	if err := h.useGas(h.schedule.BaseOpsAPICost.GetCodeMetadata); err != nil {
		return err
	}

	addr, err := h.bufferAddress(addressHandle)
	if err != nil {
		return err
	}

	if !h.host.AccountExists(addr) {
		return runtime.ErrContractNotFound
	}

	return h.arena.SetBuffer(responseHandle, h.host.GetCodeMetadata(addr).Bytes())
}

func (h *VMHooks) ManagedIsBuiltinFunction(functionNameHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.IsBuiltinFunction); err != nil {
		return 0, err
	}

	name, err := h.arena.Buffer(functionNameHandle)
	if err != nil {
		return 0, err
	}

	return boolToInt32(h.host.IsBuiltinFunction(string(name))), nil
}

// IsReservedFunctionName reports names a contract may not declare as endpoints
func (h *VMHooks) IsReservedFunctionName(nameHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BaseOpsAPICost.IsBuiltinFunction); err != nil {
		return 0, err
	}

	name, err := h.arena.Buffer(nameHandle)
	if err != nil {
		return 0, err
	}

	reserved := h.host.IsBuiltinFunction(string(name)) || string(name) == runtime.UpgradeContractFunctionName

	return boolToInt32(reserved), nil
}
