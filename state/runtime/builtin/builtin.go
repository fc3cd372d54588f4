package builtin

import (
	"math/big"
	"sort"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

// State is the part of the transaction state mutated by the builtin functions.
// Getters return copies, changes are written back with the setters.
type State interface {
	AccountExists(addr types.Address) bool
	GetBalance(addr types.Address) *big.Int
	TransferValue(from, to types.Address, amount *big.Int) error
	AddBalance(addr types.Address, amount *big.Int)

	GetCodeMetadata(addr types.Address) types.CodeMetadata
	GetOwner(addr types.Address) types.Address
	SetOwner(addr, owner types.Address)
	GetStorage(addr types.Address, key []byte) []byte
	SetStorage(addr types.Address, key []byte, value []byte)
	GetDeveloperReward(addr types.Address) *big.Int
	SetDeveloperReward(addr types.Address, amount *big.Int)

	GetEsdtData(addr types.Address, tokenID []byte) (*types.EsdtData, bool)
	SetEsdtData(addr types.Address, data *types.EsdtData)
	// TransferEsdt moves amount of (tokenID, nonce) keeping the instance metadata. The
	// ESDT system contract address mints when used as source and burns as destination.
	TransferEsdt(from, to types.Address, tokenID []byte, nonce uint64, amount *big.Int) error

	GetTokenInfo(tokenID []byte) (*types.TokenInfo, bool)
	SetTokenInfo(info *types.TokenInfo)
}

// Input is a call addressed to a builtin function
type Input struct {
	Caller   types.Address
	To       types.Address
	Value    *big.Int
	Function string
	Args     [][]byte
	Gas      uint64
	CallType types.CallType
	Block    types.BlockInfo
}

// NestedCall is the call appended to a transfer. It runs on the destination once
// the tokens moved.
type NestedCall struct {
	Destination types.Address
	Function    string
	Args        [][]byte
	Payments    []*types.EsdtTokenPayment
}

// Output is the outcome of a successful builtin function
type Output struct {
	ReturnData [][]byte
	Logs       []*types.Log
	GasLeft    uint64
	Transfers  []*runtime.OutputTransfer
	Call       *NestedCall
}

type function interface {
	gas(in *Input, schedule *gas.Schedule) uint64
	run(in *Input, st State) (*Output, error)
}

// Builtins is the registry of the functions run by the protocol instead of a contract
type Builtins struct {
	logger    hclog.Logger
	schedule  *gas.Schedule
	params    *chain.Params
	functions map[string]function
}

// NewBuiltins creates the registry of every builtin function
func NewBuiltins(logger hclog.Logger, schedule *gas.Schedule, params *chain.Params) *Builtins {
	b := &Builtins{
		logger:   logger.Named("builtin"),
		schedule: schedule,
		params:   params,
	}
	b.setupFunctions()

	return b
}

func (b *Builtins) setupFunctions() {
	// ESDT system contract
	b.register(types.BuiltinIssue, &issue{b, types.Fungible})
	b.register(types.BuiltinIssueNonFungible, &issue{b, types.NonFungible})
	b.register(types.BuiltinIssueSemiFungible, &issue{b, types.SemiFungible})
	b.register(types.BuiltinRegisterMetaESDT, &issue{b, types.Meta})
	b.register(types.BuiltinSetSpecialRole, &setSpecialRole{set: true})
	b.register(types.BuiltinUnSetSpecialRole, &setSpecialRole{set: false})
	b.register(types.BuiltinPause, &pause{pause: true})
	b.register(types.BuiltinUnPause, &pause{pause: false})
	b.register(types.BuiltinFreeze, &freeze{freeze: true})
	b.register(types.BuiltinUnFreeze, &freeze{freeze: false})

	// local token management
	b.register(types.BuiltinESDTLocalMint, &localMint{})
	b.register(types.BuiltinESDTLocalBurn, &localBurn{})
	b.register(types.BuiltinESDTNFTCreate, &nftCreate{})
	b.register(types.BuiltinESDTNFTAddQuantity, &nftAddQuantity{})
	b.register(types.BuiltinESDTNFTBurn, &nftBurn{})
	b.register(types.BuiltinESDTNFTUpdateAttributes, &nftUpdateAttributes{})
	b.register(types.BuiltinESDTNFTAddURI, &nftAddURI{})

	// transfers
	b.register(types.BuiltinESDTTransfer, &esdtTransfer{})
	b.register(types.BuiltinESDTNFTTransfer, &esdtNFTTransfer{})
	b.register(types.BuiltinMultiESDTNFTTransfer, &multiESDTNFTTransfer{})

	// accounts
	b.register(types.BuiltinChangeOwnerAddress, &changeOwnerAddress{})
	b.register(types.BuiltinSaveKeyValue, &saveKeyValue{})
	b.register(types.BuiltinClaimDeveloperRewards, &claimDeveloperRewards{})
}

func (b *Builtins) register(name string, f function) {
	if len(b.functions) == 0 {
		b.functions = map[string]function{}
	}

	b.functions[name] = f
}

// IsBuiltin returns true when name is handled by the protocol
func (b *Builtins) IsBuiltin(name string) bool {
	_, ok := b.functions[name]

	return ok
}

// Names returns the sorted names of the builtin functions
func (b *Builtins) Names() []string {
	names := make([]string, 0, len(b.functions))
	for name := range b.functions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Run charges the cost of the function and runs it. A failed function may have
// written to st, the caller reverts it.
func (b *Builtins) Run(in *Input, st State) (*Output, error) {
	f, ok := b.functions[in.Function]
	if !ok {
		return nil, runtime.ErrUnknownBuiltin
	}

	if in.Value == nil {
		in.Value = new(big.Int)
	}

	cost := f.gas(in, b.schedule)

	// In the case of not enough gas for the builtin execution we return ErrOutOfGas
	if in.Gas < cost {
		return nil, runtime.ErrOutOfGas
	}

	metrics.IncrCounter([]string{"vm", "builtin", in.Function}, 1)

	out, err := f.run(in, st)
	if err != nil {
		b.logger.Debug("builtin failed", "function", in.Function, "caller", in.Caller, "err", err)

		return nil, err
	}

	out.GasLeft = in.Gas - cost

	return out, nil
}
