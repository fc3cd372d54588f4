package state

import (
	"math/big"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

// Txn is the write cache of a block on top of a snapshot. Every written account is
// kept in an immutable radix tree, so a nested scope is just the tree it started with.
type Txn struct {
	snapshot  Snapshot
	snapshots []*iradix.Tree
	txn       *iradix.Txn

	// err is the first failure reading the snapshot
	err error
}

// NewTxn creates a write cache on top of snapshot
func NewTxn(snapshot Snapshot) *Txn {
	i := iradix.New()

	return &Txn{
		snapshot:  snapshot,
		snapshots: []*iradix.Tree{},
		txn:       i.Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (txn *Txn) Snapshot() int {
	t := txn.txn.CommitOnly()

	id := len(txn.snapshots)
	txn.snapshots = append(txn.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot
func (txn *Txn) RevertToSnapshot(id int) {
	if id >= len(txn.snapshots) {
		panic("BUG: revert to unknown snapshot")
	}

	tree := txn.snapshots[id]
	txn.txn = tree.Txn()
}

// Err reports a failure to read the persisted state
func (txn *Txn) Err() error {
	return txn.err
}

// stateObject is the internal representation of the account
type stateObject struct {
	account *Account
	deleted bool
}

func (s *stateObject) Copy() *stateObject {
	return &stateObject{
		account: s.account.Copy(),
		deleted: s.deleted,
	}
}

func (txn *Txn) getStateObject(addr types.Address) (*stateObject, bool) {
	val, exists := txn.txn.Get(addr.Bytes())
	if exists {
		obj := val.(*stateObject) //nolint:forcetypeassert
		if obj.deleted {
			return nil, false
		}

		return obj.Copy(), true
	}

	account, err := txn.snapshot.GetAccount(addr)
	if err != nil {
		if txn.err == nil {
			txn.err = err
		}

		return nil, false
	}

	if account == nil {
		return nil, false
	}

	return &stateObject{account: account.Copy()}, true
}

func (txn *Txn) upsertAccount(addr types.Address, create bool, f func(object *stateObject)) {
	object, exists := txn.getStateObject(addr)
	if !exists && create {
		object = &stateObject{account: newAccount()}
	}

	// run the callback to modify the account
	f(object)

	if object != nil {
		txn.txn.Insert(addr.Bytes(), object)
	}
}

// GetAccount returns a copy of the account
func (txn *Txn) GetAccount(addr types.Address) (*Account, bool) {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil, false
	}

	return object.account, true
}

// SetAccount replaces the whole account, used to load genesis and scenario state
func (txn *Txn) SetAccount(addr types.Address, account *Account) {
	txn.txn.Insert(addr.Bytes(), &stateObject{account: account.Copy()})
}

// CreateAccount makes sure addr exists
func (txn *Txn) CreateAccount(addr types.Address) {
	txn.upsertAccount(addr, true, func(*stateObject) {})
}

func (txn *Txn) AccountExists(addr types.Address) bool {
	_, exists := txn.getStateObject(addr)

	return exists
}

// DeleteAccount removes addr from the state
func (txn *Txn) DeleteAccount(addr types.Address) {
	txn.txn.Insert(addr.Bytes(), &stateObject{account: newAccount(), deleted: true})
}

// GetBalance returns the balance of an address
func (txn *Txn) GetBalance(addr types.Address) *big.Int {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return big.NewInt(0)
	}

	return object.account.Balance
}

// AddBalance adds balance
func (txn *Txn) AddBalance(addr types.Address, amount *big.Int) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Balance.Add(object.account.Balance, amount)
	})
}

func (txn *Txn) SetBalance(addr types.Address, balance *big.Int) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Balance = new(big.Int).Set(balance)
	})
}

// SubBalance reduces the balance, failing when it is not enough
func (txn *Txn) SubBalance(addr types.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}

	if txn.GetBalance(addr).Cmp(amount) < 0 {
		return runtime.ErrInsufficientFunds
	}

	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Balance.Sub(object.account.Balance, amount)
	})

	return nil
}

// TransferValue moves amount of EGLD from one account to another
func (txn *Txn) TransferValue(from, to types.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return runtime.ErrInsufficientFunds
	}

	if err := txn.SubBalance(from, amount); err != nil {
		return err
	}

	txn.AddBalance(to, amount)

	return nil
}

func (txn *Txn) GetNonce(addr types.Address) uint64 {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return 0
	}

	return object.account.Nonce
}

func (txn *Txn) SetNonce(addr types.Address, nonce uint64) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Nonce = nonce
	})
}

func (txn *Txn) IncrNonce(addr types.Address) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Nonce++
	})
}

func (txn *Txn) GetCode(addr types.Address) []byte {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil
	}

	return object.account.Code
}

// SetCode installs code with its metadata
func (txn *Txn) SetCode(addr types.Address, code []byte, metadata types.CodeMetadata) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Code = append([]byte{}, code...)
		object.account.CodeMetadata = metadata
	})
}

func (txn *Txn) GetCodeMetadata(addr types.Address) types.CodeMetadata {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return 0
	}

	return object.account.CodeMetadata
}

func (txn *Txn) GetOwner(addr types.Address) types.Address {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return types.ZeroAddress
	}

	return object.account.Owner
}

func (txn *Txn) SetOwner(addr, owner types.Address) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Owner = owner
	})
}

func (txn *Txn) GetUsername(addr types.Address) []byte {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil
	}

	return object.account.Username
}

func (txn *Txn) SetUsername(addr types.Address, username []byte) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.Username = append([]byte{}, username...)
	})
}

// GetStorage returns a copy of the value under key, nil when unset
func (txn *Txn) GetStorage(addr types.Address, key []byte) []byte {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil
	}

	v := object.account.GetStorage(key)
	if v == nil {
		return nil
	}

	return append([]byte{}, v...)
}

// SetStorage writes value under key, an empty value deletes it
func (txn *Txn) SetStorage(addr types.Address, key []byte, value []byte) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.setStorage(key, value)
	})
}

func (txn *Txn) GetDeveloperReward(addr types.Address) *big.Int {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return big.NewInt(0)
	}

	return object.account.DeveloperReward
}

func (txn *Txn) SetDeveloperReward(addr types.Address, amount *big.Int) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.DeveloperReward = new(big.Int).Set(amount)
	})
}

// AddDeveloperReward credits the owner share of the fees paid for running addr
func (txn *Txn) AddDeveloperReward(addr types.Address, amount *big.Int) {
	txn.upsertAccount(addr, false, func(object *stateObject) {
		if object != nil {
			object.account.DeveloperReward.Add(object.account.DeveloperReward, amount)
		}
	})
}

// GetEsdtData returns a copy of what addr holds of tokenID
func (txn *Txn) GetEsdtData(addr types.Address, tokenID []byte) (*types.EsdtData, bool) {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil, false
	}

	return object.account.GetEsdtData(tokenID)
}

// SetEsdtData writes back what addr holds of data.TokenID
func (txn *Txn) SetEsdtData(addr types.Address, data *types.EsdtData) {
	txn.upsertAccount(addr, true, func(object *stateObject) {
		object.account.setEsdtData(data)
	})
}

func (txn *Txn) GetEsdtBalance(addr types.Address, tokenID []byte, nonce uint64) *big.Int {
	data, ok := txn.GetEsdtData(addr, tokenID)
	if !ok {
		return big.NewInt(0)
	}

	return data.Balance(nonce)
}

func (txn *Txn) GetEsdtInstance(addr types.Address, tokenID []byte, nonce uint64) (*types.EsdtInstance, bool) {
	data, ok := txn.GetEsdtData(addr, tokenID)
	if !ok {
		return nil, false
	}

	inst, ok := data.Instances[nonce]

	return inst, ok
}

// TransferEsdt moves amount of (tokenID, nonce) from one account to another in three
// phases: the source is checked and debited, then the destination is credited with the
// instance metadata of the source. The ESDT system contract is balance neutral: as a
// source it mints, as a destination it burns.
func (txn *Txn) TransferEsdt(from, to types.Address, tokenID []byte, nonce uint64, amount *big.Int) error {
	if amount.Sign() < 0 {
		return runtime.ErrInsufficientFunds
	}

	var metadata *types.EsdtMetadata

	if from != types.ESDTSystemSCAddress {
		data, ok := txn.GetEsdtData(from, tokenID)
		if !ok {
			return runtime.ErrInsufficientFunds
		}

		inst, ok := data.Instances[nonce]
		if !ok || inst.Balance.Cmp(amount) < 0 {
			return runtime.ErrInsufficientFunds
		}

		metadata = inst.Metadata

		inst.Balance.Sub(inst.Balance, amount)
		if inst.Balance.Sign() == 0 {
			delete(data.Instances, nonce)
		}

		txn.SetEsdtData(from, data)
	}

	if to == types.ESDTSystemSCAddress {
		return nil
	}

	data, ok := txn.GetEsdtData(to, tokenID)
	if !ok {
		data = types.NewEsdtData(tokenID)
	}

	inst, ok := data.Instances[nonce]
	if !ok {
		inst = &types.EsdtInstance{Balance: new(big.Int), Metadata: metadata.Copy()}
		data.Instances[nonce] = inst
	}

	inst.Balance.Add(inst.Balance, amount)
	txn.SetEsdtData(to, data)

	return nil
}

func tokenRegistryKey(tokenID []byte) []byte {
	return append([]byte(types.TokenRegistryKeyPrefix), tokenID...)
}

// GetTokenInfo reads the registry record of a token kept by the ESDT system contract
func (txn *Txn) GetTokenInfo(tokenID []byte) (*types.TokenInfo, bool) {
	raw := txn.GetStorage(types.ESDTSystemSCAddress, tokenRegistryKey(tokenID))
	if raw == nil {
		return nil, false
	}

	info, err := unmarshalTokenInfo(raw)
	if err != nil {
		if txn.err == nil {
			txn.err = err
		}

		return nil, false
	}

	return info, true
}

func (txn *Txn) SetTokenInfo(info *types.TokenInfo) {
	txn.SetStorage(types.ESDTSystemSCAddress, tokenRegistryKey(info.Identifier), marshalTokenInfo(info))
}

// Commit returns every account written since the txn was created
func (txn *Txn) Commit() []*Object {
	objs := []*Object{}

	txn.txn.Commit().Root().Walk(func(k []byte, v interface{}) bool {
		a, ok := v.(*stateObject)
		if !ok {
			return false
		}

		obj := &Object{
			Address: types.BytesToAddress(k),
			Deleted: a.deleted,
		}

		if !a.deleted {
			obj.Account = a.account
		}

		objs = append(objs, obj)

		return false
	})

	return objs
}
