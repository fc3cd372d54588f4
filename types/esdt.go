package types

import (
	"math/big"
	"sort"
)

// EsdtRoles is the bitset of special roles an account holds for one token
type EsdtRoles uint32

const (
	RoleLocalMint EsdtRoles = 1 << iota
	RoleLocalBurn
	RoleNFTCreate
	RoleNFTAddQuantity
	RoleNFTBurn
	RoleNFTAddURI
	RoleNFTUpdateAttributes
	RoleTransfer
)

var roleNames = []struct {
	role EsdtRoles
	name string
}{
	{RoleLocalMint, "ESDTRoleLocalMint"},
	{RoleLocalBurn, "ESDTRoleLocalBurn"},
	{RoleNFTCreate, "ESDTRoleNFTCreate"},
	{RoleNFTAddQuantity, "ESDTRoleNFTAddQuantity"},
	{RoleNFTBurn, "ESDTRoleNFTBurn"},
	{RoleNFTAddURI, "ESDTRoleNFTAddURI"},
	{RoleNFTUpdateAttributes, "ESDTRoleNFTUpdateAttributes"},
	{RoleTransfer, "ESDTTransferRole"},
}

// RoleFromName parses the wire name of a role
func RoleFromName(name string) (EsdtRoles, bool) {
	for _, r := range roleNames {
		if r.name == name {
			return r.role, true
		}
	}

	return 0, false
}

func (r EsdtRoles) Has(role EsdtRoles) bool {
	return r&role == role
}

// Names returns the wire names of the roles in the set
func (r EsdtRoles) Names() []string {
	names := []string{}

	for _, n := range roleNames {
		if r.Has(n.role) {
			names = append(names, n.name)
		}
	}

	return names
}

// EsdtMetadata is the immutable description of a non fungible instance
type EsdtMetadata struct {
	Creator    Address
	Royalties  uint32
	Name       []byte
	Hash       []byte
	URIs       [][]byte
	Attributes []byte
}

func (m *EsdtMetadata) Copy() *EsdtMetadata {
	if m == nil {
		return nil
	}

	mm := &EsdtMetadata{
		Creator:    m.Creator,
		Royalties:  m.Royalties,
		Name:       append([]byte{}, m.Name...),
		Hash:       append([]byte{}, m.Hash...),
		Attributes: append([]byte{}, m.Attributes...),
	}

	for _, uri := range m.URIs {
		mm.URIs = append(mm.URIs, append([]byte{}, uri...))
	}

	return mm
}

// EsdtInstance is the balance of one (token, nonce) pair
type EsdtInstance struct {
	Balance  *big.Int
	Metadata *EsdtMetadata
}

func (i *EsdtInstance) Copy() *EsdtInstance {
	return &EsdtInstance{
		Balance:  new(big.Int).Set(i.Balance),
		Metadata: i.Metadata.Copy(),
	}
}

// EsdtData is everything an account holds for one token
type EsdtData struct {
	TokenID   []byte
	LastNonce uint64
	Roles     EsdtRoles
	Frozen    bool
	Instances map[uint64]*EsdtInstance
}

func NewEsdtData(tokenID []byte) *EsdtData {
	return &EsdtData{
		TokenID:   append([]byte{}, tokenID...),
		Instances: map[uint64]*EsdtInstance{},
	}
}

func (d *EsdtData) Copy() *EsdtData {
	dd := &EsdtData{
		TokenID:   append([]byte{}, d.TokenID...),
		LastNonce: d.LastNonce,
		Roles:     d.Roles,
		Frozen:    d.Frozen,
		Instances: make(map[uint64]*EsdtInstance, len(d.Instances)),
	}

	for nonce, inst := range d.Instances {
		dd.Instances[nonce] = inst.Copy()
	}

	return dd
}

// Balance returns the balance of the given nonce, zero when absent
func (d *EsdtData) Balance(nonce uint64) *big.Int {
	if inst, ok := d.Instances[nonce]; ok {
		return new(big.Int).Set(inst.Balance)
	}

	return big.NewInt(0)
}

// Nonces returns the instance nonces in ascending order
func (d *EsdtData) Nonces() []uint64 {
	nonces := make([]uint64, 0, len(d.Instances))
	for nonce := range d.Instances {
		nonces = append(nonces, nonce)
	}

	sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })

	return nonces
}

// IsEmpty is true when the data carries no balance and no roles and can be dropped
func (d *EsdtData) IsEmpty() bool {
	return len(d.Instances) == 0 && d.Roles == 0 && !d.Frozen && d.LastNonce == 0
}

// TokenInfo is the global registry record of an issued token
type TokenInfo struct {
	Identifier      []byte
	Name            []byte
	Ticker          []byte
	Type            EsdtTokenType
	Decimals        uint32
	Manager         Address
	Paused          bool
	LimitedTransfer bool
	CanFreeze       bool
	CanPause        bool
	CanMint         bool
	CanBurn         bool
	Supply          *big.Int
}

func (t *TokenInfo) Copy() *TokenInfo {
	tt := *t
	tt.Identifier = append([]byte{}, t.Identifier...)
	tt.Name = append([]byte{}, t.Name...)
	tt.Ticker = append([]byte{}, t.Ticker...)
	tt.Supply = new(big.Int).Set(t.Supply)

	return &tt
}
