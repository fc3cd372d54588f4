package builtin

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/helper/hex"
	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

const (
	minTokenNameLength = 3
	maxTokenNameLength = 20
	maxDecimals        = 18

	// number of keccak bytes rendered in the random suffix of a token identifier
	tokenRandomBytes = types.TokenRandomSuffixChars / 2
)

// GenerateTokenID derives the identifier of a token issued by caller. The suffix is
// the hex form of the first 3 bytes of keccak256(caller || seed).
func GenerateTokenID(ticker []byte, caller types.Address, seed []byte) []byte {
	h := keccak.Keccak256Concat(caller.Bytes(), seed)

	id := append([]byte{}, ticker...)
	id = append(id, '-')

	return append(id, hex.EncodeToString(h[:tokenRandomBytes])...)
}

func isValidTokenName(name []byte) bool {
	if len(name) < minTokenNameLength || len(name) > maxTokenNameLength {
		return false
	}

	for _, c := range name {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlpha && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}

// applyProperties reads (name, "true"|"false") pairs into info
func applyProperties(info *types.TokenInfo, props [][]byte) error {
	if len(props)%2 != 0 {
		return ErrInvalidArguments
	}

	for i := 0; i < len(props); i += 2 {
		value, err := parseBool(props[i+1])
		if err != nil {
			return err
		}

		switch string(props[i]) {
		case "canFreeze":
			info.CanFreeze = value
		case "canPause":
			info.CanPause = value
		case "canMint":
			info.CanMint = value
		case "canBurn":
			info.CanBurn = value
		case "canWipe", "canChangeOwner", "canUpgrade", "canAddSpecialRoles",
			"canTransferNFTCreateRole", "canCreateMultiShard":
			// accepted for compatibility, nothing in this vm depends on them
		default:
			return ErrInvalidProperty
		}
	}

	return nil
}

func checkSystemCall(in *Input) error {
	if in.To != types.ESDTSystemSCAddress {
		return ErrNotSystemContract
	}

	return nil
}

// managedToken loads the registry record of the token named by the first argument
// and checks the caller manages it
func managedToken(in *Input, st State) (*types.TokenInfo, error) {
	if err := checkSystemCall(in); err != nil {
		return nil, err
	}

	if err := checkNoValue(in); err != nil {
		return nil, err
	}

	if err := checkNumArgs(in, 1); err != nil {
		return nil, err
	}

	info, err := tokenInfo(st, in.Args[0])
	if err != nil {
		return nil, err
	}

	if info.Manager != in.Caller {
		return nil, ErrNotManager
	}

	return info, nil
}

// issue registers a new token of the given type, managed by the caller
type issue struct {
	b         *Builtins
	tokenType types.EsdtTokenType
}

func (i *issue) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.IssueToken
}

func (i *issue) run(in *Input, st State) (*Output, error) {
	if err := checkSystemCall(in); err != nil {
		return nil, err
	}

	if in.Value.Cmp(i.b.params.IssueCost) != 0 {
		return nil, ErrIssueCost
	}

	info := &types.TokenInfo{
		Type:    i.tokenType,
		Manager: in.Caller,
		Supply:  new(big.Int),
	}

	props, err := i.parseArgs(in.Args, info)
	if err != nil {
		return nil, err
	}

	if err := applyProperties(info, props); err != nil {
		return nil, err
	}

	info.Identifier = GenerateTokenID(info.Ticker, in.Caller, in.Block.RandomSeed)
	if _, ok := st.GetTokenInfo(info.Identifier); ok {
		return nil, ErrTokenExists
	}

	supply := new(big.Int).Set(info.Supply)
	info.Supply = new(big.Int)
	st.SetTokenInfo(info)

	out := &Output{
		ReturnData: [][]byte{info.Identifier},
		Logs: []*types.Log{{
			Address:    in.Caller,
			Identifier: []byte(in.Function),
			Topics:     [][]byte{info.Identifier, info.Name, info.Ticker, []byte(info.Type.String())},
		}},
	}

	if supply.Sign() > 0 {
		if err := mint(st, in.Caller, info.Identifier, 0, supply); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// parseArgs reads name, ticker and the type specific supply and decimals, and returns
// the remaining property arguments
func (i *issue) parseArgs(args [][]byte, info *types.TokenInfo) ([][]byte, error) {
	fixed := 2

	switch i.tokenType {
	case types.Fungible:
		fixed = 4
	case types.Meta:
		fixed = 3
	}

	if len(args) < fixed {
		return nil, ErrInvalidArguments
	}

	info.Name = append([]byte{}, args[0]...)
	info.Ticker = append([]byte{}, args[1]...)

	if !isValidTokenName(info.Name) {
		return nil, ErrInvalidTokenName
	}

	if !types.IsValidTicker(info.Ticker) {
		return nil, ErrInvalidTicker
	}

	var decimals []byte

	switch i.tokenType {
	case types.Fungible:
		info.Supply = new(big.Int).SetBytes(args[2])
		decimals = args[3]
	case types.Meta:
		decimals = args[2]
	}

	if decimals != nil {
		d, err := types.TopDecodeUint64(decimals)
		if err != nil || d > maxDecimals {
			return nil, ErrInvalidDecimals
		}

		info.Decimals = uint32(d)
	}

	return args[fixed:], nil
}

// setSpecialRole grants or revokes roles of an account on a token
type setSpecialRole struct {
	set bool
}

func (s *setSpecialRole) gas(_ *Input, schedule *gas.Schedule) uint64 {
	if s.set {
		return schedule.BuiltInCost.SetSpecialRole
	}

	return schedule.BuiltInCost.UnSetSpecialRole
}

func (s *setSpecialRole) run(in *Input, st State) (*Output, error) {
	info, err := managedToken(in, st)
	if err != nil {
		return nil, err
	}

	if err := checkNumArgs(in, 3); err != nil {
		return nil, err
	}

	addr, err := parseAddress(in.Args[1])
	if err != nil {
		return nil, err
	}

	var roles types.EsdtRoles

	for _, name := range in.Args[2:] {
		role, ok := types.RoleFromName(string(name))
		if !ok {
			return nil, ErrInvalidRole
		}

		roles |= role
	}

	data := esdtData(st, addr, info.Identifier)
	if s.set {
		data.Roles |= roles
	} else {
		data.Roles &^= roles
	}

	st.SetEsdtData(addr, data)

	return &Output{
		Logs: []*types.Log{{
			Address:    in.Caller,
			Identifier: []byte(in.Function),
			Topics:     append([][]byte{info.Identifier, addr.Bytes()}, in.Args[2:]...),
		}},
	}, nil
}

// pause stops or resumes every transfer of a token
type pause struct {
	pause bool
}

func (p *pause) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.Pause
}

func (p *pause) run(in *Input, st State) (*Output, error) {
	info, err := managedToken(in, st)
	if err != nil {
		return nil, err
	}

	if !info.CanPause || info.Paused == p.pause {
		return nil, ErrCannotPause
	}

	info.Paused = p.pause
	st.SetTokenInfo(info)

	return &Output{}, nil
}

// freeze blocks or unblocks the holdings of one account
type freeze struct {
	freeze bool
}

func (f *freeze) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.Freeze
}

func (f *freeze) run(in *Input, st State) (*Output, error) {
	info, err := managedToken(in, st)
	if err != nil {
		return nil, err
	}

	if err := checkNumArgs(in, 2); err != nil {
		return nil, err
	}

	addr, err := parseAddress(in.Args[1])
	if err != nil {
		return nil, err
	}

	if !info.CanFreeze {
		return nil, ErrCannotFreeze
	}

	data := esdtData(st, addr, info.Identifier)
	data.Frozen = f.freeze
	st.SetEsdtData(addr, data)

	return &Output{}, nil
}
