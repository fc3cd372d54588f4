package state

import (
	"fmt"
	"math/big"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/wasm-vm/types"
)

type marshalRLPFunc func(ar *fastrlp.Arena) *fastrlp.Value

type unmarshalRLPFunc func(p *fastrlp.Parser, v *fastrlp.Value) error

func marshalRLPTo(obj marshalRLPFunc, dst []byte) []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	dst = obj(ar).MarshalTo(dst)
	fastrlp.DefaultArenaPool.Put(ar)

	return dst
}

func unmarshalRlp(obj unmarshalRLPFunc, input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return obj(pr, v)
}

func numElems(v *fastrlp.Value, expected int, what string) ([]*fastrlp.Value, error) {
	elems, err := v.GetElems()
	if err != nil {
		return nil, err
	}

	if len(elems) != expected {
		return nil, fmt.Errorf("incorrect number of elements to decode %s, expected %d but found %d",
			what, expected, len(elems))
	}

	return elems, nil
}

func newBytesList(ar *fastrlp.Arena, items [][]byte) *fastrlp.Value {
	if len(items) == 0 {
		return ar.NewNullArray()
	}

	vv := ar.NewArray()
	for _, item := range items {
		vv.Set(ar.NewBytes(item))
	}

	return vv
}

func getBytesList(v *fastrlp.Value) ([][]byte, error) {
	elems, err := v.GetElems()
	if err != nil {
		return nil, err
	}

	var items [][]byte

	for _, elem := range elems {
		b, err := elem.GetBytes(nil)
		if err != nil {
			return nil, err
		}

		items = append(items, b)
	}

	return items, nil
}

func getAddress(v *fastrlp.Value) (types.Address, error) {
	b, err := v.GetBytes(nil)
	if err != nil {
		return types.ZeroAddress, err
	}

	if len(b) != types.AddressLength {
		return types.ZeroAddress, fmt.Errorf("address of %d bytes", len(b))
	}

	return types.BytesToAddress(b), nil
}

func getBigInt(v *fastrlp.Value) (*big.Int, error) {
	b := new(big.Int)
	if err := v.GetBigInt(b); err != nil {
		return nil, err
	}

	return b, nil
}

func (a *Account) MarshalRLP() []byte {
	return a.MarshalRLPTo(nil)
}

func (a *Account) MarshalRLPTo(dst []byte) []byte {
	return marshalRLPTo(a.MarshalRLPWith, dst)
}

// MarshalRLPWith encodes [nonce, balance, code, metadata, owner, username, reward, storage, esdt]
func (a *Account) MarshalRLPWith(ar *fastrlp.Arena) *fastrlp.Value {
	vv := ar.NewArray()
	vv.Set(ar.NewUint(a.Nonce))
	vv.Set(ar.NewBigInt(a.Balance))
	vv.Set(ar.NewBytes(a.Code))
	vv.Set(ar.NewUint(uint64(a.CodeMetadata)))
	vv.Set(ar.NewBytes(a.Owner.Bytes()))
	vv.Set(ar.NewBytes(a.Username))
	vv.Set(ar.NewBigInt(a.DeveloperReward))

	// storage as (key, value) pairs in key order
	if a.Storage.Len() == 0 {
		vv.Set(ar.NewNullArray())
	} else {
		storage := ar.NewArray()

		a.WalkStorage(func(k, v []byte) bool {
			pair := ar.NewArray()
			pair.Set(ar.NewBytes(k))
			pair.Set(ar.NewBytes(v))
			storage.Set(pair)

			return false
		})

		vv.Set(storage)
	}

	// esdt records in token order
	if len(a.Esdt) == 0 {
		vv.Set(ar.NewNullArray())
	} else {
		esdt := ar.NewArray()
		for _, token := range a.EsdtTokens() {
			esdt.Set(marshalEsdtData(ar, a.Esdt[string(token)]))
		}

		vv.Set(esdt)
	}

	return vv
}

func (a *Account) UnmarshalRLP(input []byte) error {
	return unmarshalRlp(a.UnmarshalRLPFrom, input)
}

func (a *Account) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := numElems(v, 9, "account")
	if err != nil {
		return err
	}

	if a.Nonce, err = elems[0].GetUint64(); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}

	if a.Balance, err = getBigInt(elems[1]); err != nil {
		return fmt.Errorf("balance: %w", err)
	}

	if a.Code, err = elems[2].GetBytes(nil); err != nil {
		return fmt.Errorf("code: %w", err)
	}

	metadata, err := elems[3].GetUint64()
	if err != nil {
		return fmt.Errorf("code metadata: %w", err)
	}

	a.CodeMetadata = types.CodeMetadata(metadata)

	if a.Owner, err = getAddress(elems[4]); err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	if a.Username, err = elems[5].GetBytes(nil); err != nil {
		return fmt.Errorf("username: %w", err)
	}

	if a.DeveloperReward, err = getBigInt(elems[6]); err != nil {
		return fmt.Errorf("developer reward: %w", err)
	}

	pairs, err := elems[7].GetElems()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	txn := iradix.New().Txn()

	for _, pair := range pairs {
		kv, err := getBytesList(pair)
		if err != nil || len(kv) != 2 {
			return fmt.Errorf("storage entry: %v", err)
		}

		txn.Insert(kv[0], kv[1])
	}

	a.Storage = txn.Commit()

	records, err := elems[8].GetElems()
	if err != nil {
		return fmt.Errorf("esdt: %w", err)
	}

	a.Esdt = make(map[string]*types.EsdtData, len(records))

	for _, record := range records {
		data, err := unmarshalEsdtData(record)
		if err != nil {
			return fmt.Errorf("esdt: %w", err)
		}

		a.Esdt[string(data.TokenID)] = data
	}

	return nil
}

// marshalEsdtData encodes [token, lastNonce, roles, frozen, instances]
func marshalEsdtData(ar *fastrlp.Arena, d *types.EsdtData) *fastrlp.Value {
	vv := ar.NewArray()
	vv.Set(ar.NewBytes(d.TokenID))
	vv.Set(ar.NewUint(d.LastNonce))
	vv.Set(ar.NewUint(uint64(d.Roles)))
	vv.Set(ar.NewBool(d.Frozen))

	if len(d.Instances) == 0 {
		vv.Set(ar.NewNullArray())

		return vv
	}

	instances := ar.NewArray()

	for _, nonce := range d.Nonces() {
		inst := d.Instances[nonce]

		iv := ar.NewArray()
		iv.Set(ar.NewUint(nonce))
		iv.Set(ar.NewBigInt(inst.Balance))
		iv.Set(marshalEsdtMetadata(ar, inst.Metadata))
		instances.Set(iv)
	}

	vv.Set(instances)

	return vv
}

func unmarshalEsdtData(v *fastrlp.Value) (*types.EsdtData, error) {
	elems, err := numElems(v, 5, "esdt data")
	if err != nil {
		return nil, err
	}

	tokenID, err := elems[0].GetBytes(nil)
	if err != nil {
		return nil, err
	}

	d := types.NewEsdtData(tokenID)

	if d.LastNonce, err = elems[1].GetUint64(); err != nil {
		return nil, err
	}

	roles, err := elems[2].GetUint64()
	if err != nil {
		return nil, err
	}

	d.Roles = types.EsdtRoles(roles)

	if d.Frozen, err = elems[3].GetBool(); err != nil {
		return nil, err
	}

	instances, err := elems[4].GetElems()
	if err != nil {
		return nil, err
	}

	for _, iv := range instances {
		fields, err := numElems(iv, 3, "esdt instance")
		if err != nil {
			return nil, err
		}

		nonce, err := fields[0].GetUint64()
		if err != nil {
			return nil, err
		}

		balance, err := getBigInt(fields[1])
		if err != nil {
			return nil, err
		}

		metadata, err := unmarshalEsdtMetadata(fields[2])
		if err != nil {
			return nil, err
		}

		d.Instances[nonce] = &types.EsdtInstance{Balance: balance, Metadata: metadata}
	}

	return d, nil
}

// marshalEsdtMetadata encodes [creator, royalties, name, hash, uris, attributes], or an
// empty list for instances without metadata
func marshalEsdtMetadata(ar *fastrlp.Arena, m *types.EsdtMetadata) *fastrlp.Value {
	if m == nil {
		return ar.NewNullArray()
	}

	vv := ar.NewArray()
	vv.Set(ar.NewBytes(m.Creator.Bytes()))
	vv.Set(ar.NewUint(uint64(m.Royalties)))
	vv.Set(ar.NewBytes(m.Name))
	vv.Set(ar.NewBytes(m.Hash))
	vv.Set(newBytesList(ar, m.URIs))
	vv.Set(ar.NewBytes(m.Attributes))

	return vv
}

func unmarshalEsdtMetadata(v *fastrlp.Value) (*types.EsdtMetadata, error) {
	elems, err := v.GetElems()
	if err != nil {
		return nil, err
	}

	if len(elems) == 0 {
		return nil, nil
	}

	if len(elems) != 6 {
		return nil, fmt.Errorf("incorrect number of elements to decode esdt metadata, expected 6 but found %d", len(elems))
	}

	m := &types.EsdtMetadata{}

	if m.Creator, err = getAddress(elems[0]); err != nil {
		return nil, err
	}

	royalties, err := elems[1].GetUint64()
	if err != nil {
		return nil, err
	}

	m.Royalties = uint32(royalties)

	if m.Name, err = elems[2].GetBytes(nil); err != nil {
		return nil, err
	}

	if m.Hash, err = elems[3].GetBytes(nil); err != nil {
		return nil, err
	}

	if m.URIs, err = getBytesList(elems[4]); err != nil {
		return nil, err
	}

	if m.Attributes, err = elems[5].GetBytes(nil); err != nil {
		return nil, err
	}

	return m, nil
}

// token registry flags
const (
	flagPaused = 1 << iota
	flagLimitedTransfer
	flagCanFreeze
	flagCanPause
	flagCanMint
	flagCanBurn
)

func tokenFlags(info *types.TokenInfo) uint64 {
	var flags uint64

	set := func(cond bool, flag uint64) {
		if cond {
			flags |= flag
		}
	}

	set(info.Paused, flagPaused)
	set(info.LimitedTransfer, flagLimitedTransfer)
	set(info.CanFreeze, flagCanFreeze)
	set(info.CanPause, flagCanPause)
	set(info.CanMint, flagCanMint)
	set(info.CanBurn, flagCanBurn)

	return flags
}

// marshalTokenInfo encodes [id, name, ticker, type, decimals, manager, flags, supply]
func marshalTokenInfo(info *types.TokenInfo) []byte {
	return marshalRLPTo(func(ar *fastrlp.Arena) *fastrlp.Value {
		vv := ar.NewArray()
		vv.Set(ar.NewBytes(info.Identifier))
		vv.Set(ar.NewBytes(info.Name))
		vv.Set(ar.NewBytes(info.Ticker))
		vv.Set(ar.NewUint(uint64(info.Type)))
		vv.Set(ar.NewUint(uint64(info.Decimals)))
		vv.Set(ar.NewBytes(info.Manager.Bytes()))
		vv.Set(ar.NewUint(tokenFlags(info)))
		vv.Set(ar.NewBigInt(info.Supply))

		return vv
	}, nil)
}

func unmarshalTokenInfo(input []byte) (*types.TokenInfo, error) {
	info := &types.TokenInfo{}

	err := unmarshalRlp(func(_ *fastrlp.Parser, v *fastrlp.Value) error {
		elems, err := numElems(v, 8, "token info")
		if err != nil {
			return err
		}

		if info.Identifier, err = elems[0].GetBytes(nil); err != nil {
			return err
		}

		if info.Name, err = elems[1].GetBytes(nil); err != nil {
			return err
		}

		if info.Ticker, err = elems[2].GetBytes(nil); err != nil {
			return err
		}

		tokenType, err := elems[3].GetUint64()
		if err != nil {
			return err
		}

		info.Type = types.TokenTypeFromByte(byte(tokenType))

		decimals, err := elems[4].GetUint64()
		if err != nil {
			return err
		}

		info.Decimals = uint32(decimals)

		if info.Manager, err = getAddress(elems[5]); err != nil {
			return err
		}

		flags, err := elems[6].GetUint64()
		if err != nil {
			return err
		}

		info.Paused = flags&flagPaused != 0
		info.LimitedTransfer = flags&flagLimitedTransfer != 0
		info.CanFreeze = flags&flagCanFreeze != 0
		info.CanPause = flags&flagCanPause != 0
		info.CanMint = flags&flagCanMint != 0
		info.CanBurn = flags&flagCanBurn != 0

		info.Supply, err = getBigInt(elems[7])

		return err
	}, input)
	if err != nil {
		return nil, err
	}

	return info, nil
}

// asyncContext is a legacy async call waiting for its callback
type asyncContext struct {
	Callback    string
	Closure     []byte
	Destination types.Address
	Function    string
	Args        [][]byte
	Value       *big.Int
}

func (c *asyncContext) MarshalRLP() []byte {
	return marshalRLPTo(func(ar *fastrlp.Arena) *fastrlp.Value {
		vv := ar.NewArray()
		vv.Set(ar.NewBytes([]byte(c.Callback)))
		vv.Set(ar.NewBytes(c.Closure))
		vv.Set(ar.NewBytes(c.Destination.Bytes()))
		vv.Set(ar.NewBytes([]byte(c.Function)))
		vv.Set(newBytesList(ar, c.Args))
		vv.Set(ar.NewBigInt(c.Value))

		return vv
	}, nil)
}

func (c *asyncContext) UnmarshalRLP(input []byte) error {
	return unmarshalRlp(func(_ *fastrlp.Parser, v *fastrlp.Value) error {
		elems, err := numElems(v, 6, "async context")
		if err != nil {
			return err
		}

		callback, err := elems[0].GetBytes(nil)
		if err != nil {
			return err
		}

		c.Callback = string(callback)

		if c.Closure, err = elems[1].GetBytes(nil); err != nil {
			return err
		}

		if c.Destination, err = getAddress(elems[2]); err != nil {
			return err
		}

		function, err := elems[3].GetBytes(nil)
		if err != nil {
			return err
		}

		c.Function = string(function)

		if c.Args, err = getBytesList(elems[4]); err != nil {
			return err
		}

		c.Value, err = getBigInt(elems[5])

		return err
	}, input)
}
