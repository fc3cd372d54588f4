package state

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/0xPolygon/wasm-vm/types"
)

// Account is the state of an address. Storage and the token holdings are replaced,
// never mutated, once the account is shared with a snapshot.
type Account struct {
	Nonce           uint64
	Balance         *big.Int
	Code            []byte
	CodeMetadata    types.CodeMetadata
	Owner           types.Address
	Username        []byte
	DeveloperReward *big.Int

	// Storage maps raw keys to values
	Storage *iradix.Tree

	// Esdt maps token identifiers to what the account holds of them
	Esdt map[string]*types.EsdtData
}

func newAccount() *Account {
	return &Account{
		Balance:         big.NewInt(0),
		DeveloperReward: big.NewInt(0),
		Storage:         iradix.New(),
		Esdt:            map[string]*types.EsdtData{},
	}
}

func (a *Account) String() string {
	return fmt.Sprintf("%d %s", a.Nonce, a.Balance.String())
}

// Copy returns an account that can be modified without touching a
func (a *Account) Copy() *Account {
	aa := &Account{
		Nonce:           a.Nonce,
		Balance:         new(big.Int).Set(a.Balance),
		Code:            a.Code,
		CodeMetadata:    a.CodeMetadata,
		Owner:           a.Owner,
		Username:        a.Username,
		DeveloperReward: new(big.Int).Set(a.DeveloperReward),
		Storage:         a.Storage,
		Esdt:            make(map[string]*types.EsdtData, len(a.Esdt)),
	}

	// the records are copied on write
	for k, v := range a.Esdt {
		aa.Esdt[k] = v
	}

	return aa
}

// IsContract is true once code has been deployed on the account
func (a *Account) IsContract() bool {
	return len(a.Code) > 0
}

// Empty is true when nothing distinguishes the account from a missing one
func (a *Account) Empty() bool {
	return a.Nonce == 0 &&
		a.Balance.Sign() == 0 &&
		len(a.Code) == 0 &&
		a.DeveloperReward.Sign() == 0 &&
		a.Storage.Len() == 0 &&
		len(a.Esdt) == 0 &&
		len(a.Username) == 0
}

func (a *Account) GetStorage(key []byte) []byte {
	v, ok := a.Storage.Get(key)
	if !ok {
		return nil
	}

	return v.([]byte)
}

// setStorage writes value under key, an empty value deletes the key
func (a *Account) setStorage(key, value []byte) {
	if len(value) == 0 {
		a.Storage, _, _ = a.Storage.Delete(key)

		return
	}

	a.Storage, _, _ = a.Storage.Insert(key, append([]byte{}, value...))
}

// WalkStorage calls fn for every storage entry in key order until fn returns true
func (a *Account) WalkStorage(fn func(key, value []byte) bool) {
	a.Storage.Root().Walk(func(k []byte, v interface{}) bool {
		return fn(k, v.([]byte))
	})
}

// GetEsdtData returns a copy of the holdings of tokenID
func (a *Account) GetEsdtData(tokenID []byte) (*types.EsdtData, bool) {
	data, ok := a.Esdt[string(tokenID)]
	if !ok {
		return nil, false
	}

	return data.Copy(), true
}

// setEsdtData stores a copy of data, dropping it when there is nothing left
func (a *Account) setEsdtData(data *types.EsdtData) {
	if data.IsEmpty() {
		delete(a.Esdt, string(data.TokenID))

		return
	}

	a.Esdt[string(data.TokenID)] = data.Copy()
}

// EsdtTokens returns the identifiers of the held tokens in ascending order
func (a *Account) EsdtTokens() [][]byte {
	tokens := make([][]byte, 0, len(a.Esdt))
	for k := range a.Esdt {
		tokens = append(tokens, []byte(k))
	}

	sort.Slice(tokens, func(i, j int) bool {
		return bytes.Compare(tokens[i], tokens[j]) < 0
	})

	return tokens
}
