package runtime

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/types"
)

// Host is the execution host seen by a running frame
type Host interface {
	AccountExists(addr types.Address) bool
	GetBalance(addr types.Address) *big.Int
	GetNonce(addr types.Address) uint64
	GetCode(addr types.Address) []byte
	GetCodeMetadata(addr types.Address) types.CodeMetadata
	GetOwner(addr types.Address) types.Address
	GetStorage(addr types.Address, key []byte) []byte
	SetStorage(addr types.Address, key []byte, value []byte)
	GetEsdtBalance(addr types.Address, tokenID []byte, nonce uint64) *big.Int
	GetEsdtData(addr types.Address, tokenID []byte) (*types.EsdtData, bool)
	GetEsdtInstance(addr types.Address, tokenID []byte, nonce uint64) (*types.EsdtInstance, bool)
	GetTokenInfo(tokenID []byte) (*types.TokenInfo, bool)
	GetBlockInfo() types.BlockInfo
	GetPrevBlockInfo() types.BlockInfo
	GetBlockHash(nonce uint64) types.Hash
	GetStateRootHash() types.Hash
	ShardOfAddress(addr types.Address) uint32
	IsBuiltinFunction(name string) bool

	// Call runs a nested frame (sync call, transfer and execute, deploy or upgrade)
	Call(c *Contract) *ExecutionResult
}

// Runtime can execute contracts
type Runtime interface {
	Run(c *Contract, host Host) *ExecutionResult
	CanRun(code []byte) bool
	Name() string
}

// Contract is the frame being executed
type Contract struct {
	Type types.CallType

	Code         []byte
	CodeMetadata types.CodeMetadata

	// CodeAddress is the account whose code runs
	CodeAddress types.Address
	// Address owns the storage and the balance of the frame
	Address types.Address

	Caller types.Address
	Origin types.Address
	Depth  int

	Value         *big.Int
	ESDTTransfers []*types.EsdtTokenPayment

	Function string
	Args     [][]byte

	Gas      uint64
	GasPrice *big.Int
	ReadOnly bool

	TxHash         types.Hash
	PrevTxHash     types.Hash
	OriginalTxHash types.Hash

	CallbackClosure []byte

	// FrameID is unique within a transaction and tags the handles minted by the frame
	FrameID uint64
}

// NewContractCall creates a frame that calls an endpoint of to
func NewContractCall(
	depth int,
	origin types.Address,
	from types.Address,
	to types.Address,
	value *big.Int,
	gas uint64,
	function string,
	args [][]byte,
) *Contract {
	if value == nil {
		value = new(big.Int)
	}

	return &Contract{
		Type:        types.Direct,
		CodeAddress: to,
		Address:     to,
		Caller:      from,
		Origin:      origin,
		Depth:       depth,
		Value:       value,
		Function:    function,
		Args:        args,
		Gas:         gas,
	}
}

// NewContractCreation creates a deployment frame
func NewContractCreation(
	depth int,
	origin types.Address,
	from types.Address,
	value *big.Int,
	gas uint64,
	code []byte,
	metadata types.CodeMetadata,
	args [][]byte,
) *Contract {
	c := NewContractCall(depth, origin, from, types.ZeroAddress, value, gas, InitFunctionName, args)
	c.Type = types.Deploy
	c.Code = code
	c.CodeMetadata = metadata

	return c
}

// Copy returns a shallow copy of the frame with its own argument slices
func (c *Contract) Copy() *Contract {
	cc := *c

	if c.Value != nil {
		cc.Value = new(big.Int).Set(c.Value)
	}

	cc.Args = append([][]byte{}, c.Args...)
	cc.ESDTTransfers = make([]*types.EsdtTokenPayment, len(c.ESDTTransfers))

	for i, p := range c.ESDTTransfers {
		cc.ESDTTransfers[i] = p.Copy()
	}

	return &cc
}

const (
	// InitFunctionName is the endpoint run on deploy
	InitFunctionName = "init"
	// UpgradeFunctionName is the endpoint run on upgrade
	UpgradeFunctionName = "upgrade"
	// CallbackFunctionName is the default callback of a legacy async call
	CallbackFunctionName = "callBack"
	// UpgradeContractFunctionName is the protocol function that upgrades a contract
	UpgradeContractFunctionName = "upgradeContract"
)

// AsyncCall is a cross-contract call deferred until the end of the frame.
// Legacy async calls and promises share this record.
type AsyncCall struct {
	Caller          types.Address
	Destination     types.Address
	Value           *big.Int
	Function        string
	Args            [][]byte
	GasLimit        uint64
	SuccessCallback string
	ErrorCallback   string
	CallbackGas     uint64
	CallbackClosure []byte

	// Legacy is set for the single async call that ends its frame
	Legacy bool
}

// OutputTransfer is a value or token movement produced during execution
type OutputTransfer struct {
	From          types.Address
	To            types.Address
	Value         *big.Int
	ESDTTransfers []*types.EsdtTokenPayment
	CallType      types.CallType
}

// ExecutionResult includes all output after executing a frame
// no matter the execution itself is successful or not.
type ExecutionResult struct {
	ReturnData [][]byte
	Logs       []*types.Log
	GasLeft    uint64
	GasUsed    uint64
	NewAddress types.Address
	Err        error

	// AsyncCall is the pending legacy async call, if any
	AsyncCall *AsyncCall
	Promises  []*AsyncCall
	Transfers []*OutputTransfer
}

func (r *ExecutionResult) Succeeded() bool { return r.Err == nil }
func (r *ExecutionResult) Failed() bool    { return r.Err != nil }

// ReturnCode is the status code of the result
func (r *ExecutionResult) ReturnCode() ReturnCode {
	return ReturnCodeOf(r.Err)
}

// ReturnMessage is the failure message, empty on success
func (r *ExecutionResult) ReturnMessage() string {
	return MessageOf(r.Err)
}

// UpdateGasUsed computes the gas used from the frame limit
func (r *ExecutionResult) UpdateGasUsed(gasLimit uint64) {
	if r.GasLeft > gasLimit {
		r.GasLeft = gasLimit
	}

	r.GasUsed = gasLimit - r.GasLeft
}

// NewFailedResult returns a result that consumed all its gas
func NewFailedResult(gasLimit uint64, err error) *ExecutionResult {
	return &ExecutionResult{
		GasUsed: gasLimit,
		Err:     err,
	}
}
