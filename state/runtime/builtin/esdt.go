package builtin

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

// maxRoyalties is 100% in basis points
const maxRoyalties = 10000

// lookupToken returns the registry record of a token, nil for tokens created outside
// of the ESDT system contract
func lookupToken(st State, tokenID []byte) *types.TokenInfo {
	info, ok := st.GetTokenInfo(tokenID)
	if !ok {
		return nil
	}

	return info
}

func checkNotPaused(info *types.TokenInfo) error {
	if info != nil && info.Paused {
		return ErrPaused
	}

	return nil
}

func adjustSupply(st State, tokenID []byte, delta *big.Int) {
	if info := lookupToken(st, tokenID); info != nil {
		info.Supply.Add(info.Supply, delta)
		st.SetTokenInfo(info)
	}
}

// mint credits newly created tokens to addr
func mint(st State, addr types.Address, tokenID []byte, nonce uint64, amount *big.Int) error {
	if err := st.TransferEsdt(types.ESDTSystemSCAddress, addr, tokenID, nonce, amount); err != nil {
		return err
	}

	adjustSupply(st, tokenID, amount)

	return nil
}

// burn destroys tokens held by addr
func burn(st State, addr types.Address, tokenID []byte, nonce uint64, amount *big.Int) error {
	if err := st.TransferEsdt(addr, types.ESDTSystemSCAddress, tokenID, nonce, amount); err != nil {
		return err
	}

	adjustSupply(st, tokenID, new(big.Int).Neg(amount))

	return nil
}

// checkLocalCall validates the calls a role holder sends to itself
func checkLocalCall(in *Input, minArgs int) error {
	if err := checkNoValue(in); err != nil {
		return err
	}

	if in.To != in.Caller {
		return ErrInvalidReceiver
	}

	return checkNumArgs(in, minArgs)
}

// localTokenArgs reads (token, amount) or (token, nonce, amount)
func localTokenArgs(args [][]byte) ([]byte, uint64, *big.Int, error) {
	var nonce uint64

	amountArg := args[1]

	if len(args) > 2 {
		n, err := parseNonce(args[1])
		if err != nil {
			return nil, 0, nil, err
		}

		nonce, amountArg = n, args[2]
	}

	amount, err := parseAmount(amountArg)
	if err != nil {
		return nil, 0, nil, err
	}

	return args[0], nonce, amount, nil
}

// instance returns the instance held by addr, failing when it does not exist
func instance(st State, addr types.Address, tokenID []byte, nonce uint64) (*types.EsdtData, *types.EsdtInstance, error) {
	data, ok := st.GetEsdtData(addr, tokenID)
	if !ok {
		return nil, nil, ErrNFTNotFound
	}

	inst, ok := data.Instances[nonce]
	if !ok {
		return nil, nil, ErrNFTNotFound
	}

	return data, inst, nil
}

// nftCall reads the (token, nonce) pair addressing an existing instance of the caller
// after checking its role
func nftCall(in *Input, st State, minArgs int, role types.EsdtRoles) (*types.EsdtData, *types.EsdtInstance, uint64, error) {
	if err := checkLocalCall(in, minArgs); err != nil {
		return nil, nil, 0, err
	}

	tokenID := in.Args[0]

	if err := checkRole(st, in.Caller, tokenID, role); err != nil {
		return nil, nil, 0, err
	}

	if err := checkNotPaused(lookupToken(st, tokenID)); err != nil {
		return nil, nil, 0, err
	}

	nonce, err := parseNonce(in.Args[1])
	if err != nil {
		return nil, nil, 0, err
	}

	if nonce == 0 {
		return nil, nil, 0, ErrWrongTokenType
	}

	data, inst, err := instance(st, in.Caller, tokenID, nonce)
	if err != nil {
		return nil, nil, 0, err
	}

	return data, inst, nonce, nil
}

func argsSize(args [][]byte) uint64 {
	size := 0
	for _, arg := range args {
		size += len(arg)
	}

	return uint64(size)
}

type localMint struct{}

func (l *localMint) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTLocalMint
}

func (l *localMint) run(in *Input, st State) (*Output, error) {
	if err := checkLocalCall(in, 2); err != nil {
		return nil, err
	}

	tokenID, nonce, amount, err := localTokenArgs(in.Args)
	if err != nil {
		return nil, err
	}

	if err := checkRole(st, in.Caller, tokenID, types.RoleLocalMint); err != nil {
		return nil, err
	}

	if err := checkNotPaused(lookupToken(st, tokenID)); err != nil {
		return nil, err
	}

	if err := mint(st, in.Caller, tokenID, nonce, amount); err != nil {
		return nil, err
	}

	return &Output{
		Logs: []*types.Log{tokenLog(in.Caller, in.Function, tokenID, nonce, amount)},
	}, nil
}

type localBurn struct{}

func (l *localBurn) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTLocalBurn
}

func (l *localBurn) run(in *Input, st State) (*Output, error) {
	if err := checkLocalCall(in, 2); err != nil {
		return nil, err
	}

	tokenID, nonce, amount, err := localTokenArgs(in.Args)
	if err != nil {
		return nil, err
	}

	if err := checkRole(st, in.Caller, tokenID, types.RoleLocalBurn); err != nil {
		return nil, err
	}

	if err := checkNotPaused(lookupToken(st, tokenID)); err != nil {
		return nil, err
	}

	if err := burn(st, in.Caller, tokenID, nonce, amount); err != nil {
		return nil, err
	}

	return &Output{
		Logs: []*types.Log{tokenLog(in.Caller, in.Function, tokenID, nonce, amount)},
	}, nil
}

// nftCreate mints the next nonce of a token with its metadata:
// token, quantity, name, royalties, hash, attributes, uris...
type nftCreate struct{}

func (n *nftCreate) gas(in *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTNFTCreate + schedule.BaseOperationCost.StorePerByte*argsSize(in.Args)
}

func (n *nftCreate) run(in *Input, st State) (*Output, error) {
	if err := checkLocalCall(in, 6); err != nil {
		return nil, err
	}

	tokenID := in.Args[0]

	if err := checkRole(st, in.Caller, tokenID, types.RoleNFTCreate); err != nil {
		return nil, err
	}

	info := lookupToken(st, tokenID)
	if err := checkNotPaused(info); err != nil {
		return nil, err
	}

	if info != nil && !info.Type.HasNonces() {
		return nil, ErrWrongTokenType
	}

	quantity, err := parseAmount(in.Args[1])
	if err != nil {
		return nil, ErrInvalidQuantity
	}

	if info != nil && info.Type == types.NonFungible && quantity.Cmp(big.NewInt(1)) != 0 {
		return nil, ErrInvalidQuantity
	}

	royalties, err := types.TopDecodeUint64(in.Args[3])
	if err != nil || royalties > maxRoyalties {
		return nil, ErrInvalidRoyalties
	}

	metadata := &types.EsdtMetadata{
		Creator:    in.Caller,
		Royalties:  uint32(royalties),
		Name:       append([]byte{}, in.Args[2]...),
		Hash:       append([]byte{}, in.Args[4]...),
		Attributes: append([]byte{}, in.Args[5]...),
	}

	for _, uri := range in.Args[6:] {
		metadata.URIs = append(metadata.URIs, append([]byte{}, uri...))
	}

	data := esdtData(st, in.Caller, tokenID)
	data.LastNonce++
	nonce := data.LastNonce

	data.Instances[nonce] = &types.EsdtInstance{
		Balance:  quantity,
		Metadata: metadata,
	}

	st.SetEsdtData(in.Caller, data)
	adjustSupply(st, tokenID, quantity)

	return &Output{
		ReturnData: [][]byte{types.TopEncodeUint64(nonce)},
		Logs:       []*types.Log{tokenLog(in.Caller, in.Function, tokenID, nonce, quantity)},
	}, nil
}

// nftAddQuantity mints more of an existing semi fungible instance
type nftAddQuantity struct{}

func (n *nftAddQuantity) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTNFTAddQuantity
}

func (n *nftAddQuantity) run(in *Input, st State) (*Output, error) {
	_, _, nonce, err := nftCall(in, st, 3, types.RoleNFTAddQuantity)
	if err != nil {
		return nil, err
	}

	tokenID := in.Args[0]

	if info := lookupToken(st, tokenID); info != nil && info.Type == types.NonFungible {
		return nil, ErrWrongTokenType
	}

	quantity, err := parseAmount(in.Args[2])
	if err != nil {
		return nil, err
	}

	if err := mint(st, in.Caller, tokenID, nonce, quantity); err != nil {
		return nil, err
	}

	return &Output{
		Logs: []*types.Log{tokenLog(in.Caller, in.Function, tokenID, nonce, quantity)},
	}, nil
}

type nftBurn struct{}

func (n *nftBurn) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTNFTBurn
}

func (n *nftBurn) run(in *Input, st State) (*Output, error) {
	_, _, nonce, err := nftCall(in, st, 3, types.RoleNFTBurn)
	if err != nil {
		return nil, err
	}

	quantity, err := parseAmount(in.Args[2])
	if err != nil {
		return nil, err
	}

	if err := burn(st, in.Caller, in.Args[0], nonce, quantity); err != nil {
		return nil, err
	}

	return &Output{
		Logs: []*types.Log{tokenLog(in.Caller, in.Function, in.Args[0], nonce, quantity)},
	}, nil
}

// nftUpdateAttributes replaces the attributes of an instance held by the caller
type nftUpdateAttributes struct{}

func (n *nftUpdateAttributes) gas(in *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTNFTUpdateAttributes + schedule.BaseOperationCost.StorePerByte*argsSize(in.Args)
}

func (n *nftUpdateAttributes) run(in *Input, st State) (*Output, error) {
	data, inst, nonce, err := nftCall(in, st, 3, types.RoleNFTUpdateAttributes)
	if err != nil {
		return nil, err
	}

	if inst.Metadata == nil {
		return nil, ErrNFTNotFound
	}

	inst.Metadata.Attributes = append([]byte{}, in.Args[2]...)
	st.SetEsdtData(in.Caller, data)

	return &Output{
		Logs: []*types.Log{tokenLog(in.Caller, in.Function, in.Args[0], nonce, new(big.Int), in.Args[2])},
	}, nil
}

// nftAddURI appends uris to the metadata of an instance held by the caller
type nftAddURI struct{}

func (n *nftAddURI) gas(in *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTNFTAddURI + schedule.BaseOperationCost.StorePerByte*argsSize(in.Args)
}

func (n *nftAddURI) run(in *Input, st State) (*Output, error) {
	data, inst, nonce, err := nftCall(in, st, 3, types.RoleNFTAddURI)
	if err != nil {
		return nil, err
	}

	if inst.Metadata == nil {
		return nil, ErrNFTNotFound
	}

	for _, uri := range in.Args[2:] {
		inst.Metadata.URIs = append(inst.Metadata.URIs, append([]byte{}, uri...))
	}

	st.SetEsdtData(in.Caller, data)

	return &Output{
		Logs: []*types.Log{tokenLog(in.Caller, in.Function, in.Args[0], nonce, new(big.Int))},
	}, nil
}
