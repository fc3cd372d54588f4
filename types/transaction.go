package types

import "math/big"

// CallType tells a frame how it was entered
type CallType int

const (
	// Direct is a call made by a user transaction
	Direct CallType = iota
	// AsyncCall is the leg executing the destination of an async call
	AsyncCall
	// AsyncCallback is the leg executing the callback on the original caller
	AsyncCallback
	// TransferExecute is a transfer, optionally followed by a call, issued by a contract
	TransferExecute
	ExecuteOnDestContext
	ExecuteOnSameContext
	ExecuteReadOnly
	Deploy
	Upgrade
)

func (c CallType) String() string {
	switch c {
	case Direct:
		return "direct"
	case AsyncCall:
		return "asyncCall"
	case AsyncCallback:
		return "asyncCallback"
	case TransferExecute:
		return "transferExecute"
	case ExecuteOnDestContext:
		return "executeOnDestContext"
	case ExecuteOnSameContext:
		return "executeOnSameContext"
	case ExecuteReadOnly:
		return "executeReadOnly"
	case Deploy:
		return "deploy"
	case Upgrade:
		return "upgrade"
	default:
		return "unknown"
	}
}

// Transaction is a fully ordered transaction handed to the vm
type Transaction struct {
	Nonce         uint64
	From          Address
	To            Address
	Value         *big.Int
	ESDTTransfers []*EsdtTokenPayment
	Function      string
	Args          [][]byte
	GasLimit      uint64
	GasPrice      *big.Int
	Hash          Hash
	CallType      CallType

	// PrevTxHash and OriginalTxHash give the context of callbacks
	PrevTxHash     Hash
	OriginalTxHash Hash

	// Code and CodeMetadata are set on deployments, To is then the zero address
	Code         []byte
	CodeMetadata CodeMetadata
}

// IsContractCreation returns true when the transaction deploys Code
func (t *Transaction) IsContractCreation() bool {
	return t.To == ZeroAddress && len(t.Code) > 0
}

// BlockInfo is the block context a transaction executes in
type BlockInfo struct {
	Nonce      uint64
	Round      uint64
	Epoch      uint32
	Timestamp  uint64
	RandomSeed []byte
	Hash       Hash
}
