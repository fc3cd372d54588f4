package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/wasm-vm/types"
)

func drawBytes(t *rapid.T, label string, max int) []byte {
	return rapid.SliceOfN(rapid.Byte(), 0, max).Draw(t, label)
}

func drawAddress(t *rapid.T, label string) types.Address {
	return types.BytesToAddress(rapid.SliceOfN(rapid.Byte(), types.AddressLength, types.AddressLength).Draw(t, label))
}

func drawAccount(t *rapid.T) *Account {
	a := newAccount()
	a.Nonce = rapid.Uint64().Draw(t, "nonce")
	a.Balance = new(big.Int).SetBytes(drawBytes(t, "balance", 40))
	a.Code = drawBytes(t, "code", 64)
	a.CodeMetadata = types.CodeMetadata(rapid.Uint16().Draw(t, "metadata"))
	a.Owner = drawAddress(t, "owner")
	a.Username = drawBytes(t, "username", 16)
	a.DeveloperReward = new(big.Int).SetBytes(drawBytes(t, "reward", 16))

	for _, k := range rapid.SliceOfN(rapid.SliceOfN(rapid.Byte(), 1, 8), 0, 8).Draw(t, "keys") {
		a.setStorage(k, drawBytes(t, "value", 16))
	}

	tokens := rapid.SliceOfN(rapid.StringMatching(`[A-Z]{3,6}-[0-9a-f]{6}`), 0, 3).Draw(t, "tokens")
	for _, token := range tokens {
		data := types.NewEsdtData([]byte(token))
		data.LastNonce = rapid.Uint64Range(0, 5).Draw(t, "lastNonce")
		data.Roles = types.EsdtRoles(rapid.Uint8().Draw(t, "roles"))
		data.Frozen = rapid.Bool().Draw(t, "frozen")

		for _, nonce := range rapid.SliceOfN(rapid.Uint64Range(0, 5), 0, 3).Draw(t, "nonces") {
			inst := &types.EsdtInstance{Balance: new(big.Int).SetBytes(drawBytes(t, "amount", 16))}

			if nonce > 0 {
				inst.Metadata = &types.EsdtMetadata{
					Creator:    drawAddress(t, "creator"),
					Royalties:  rapid.Uint32Range(0, 10000).Draw(t, "royalties"),
					Name:       drawBytes(t, "name", 16),
					Hash:       drawBytes(t, "hash", 32),
					URIs:       rapid.SliceOfN(rapid.SliceOfN(rapid.Byte(), 0, 16), 0, 2).Draw(t, "uris"),
					Attributes: drawBytes(t, "attributes", 16),
				}
			}

			data.Instances[nonce] = inst
		}

		a.setEsdtData(data)
	}

	return a
}

func TestAccount_EncodingIsStable(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := drawAccount(t)
		raw := a.MarshalRLP()

		b := &Account{}
		require.NoError(t, b.UnmarshalRLP(raw))

		assert.Equal(t, raw, b.MarshalRLP())
		assert.Equal(t, a.Nonce, b.Nonce)
		assert.Equal(t, 0, a.Balance.Cmp(b.Balance))
		assert.Equal(t, a.Owner, b.Owner)
		assert.Equal(t, a.CodeMetadata, b.CodeMetadata)
		assert.Equal(t, a.Storage.Len(), b.Storage.Len())
		assert.Equal(t, a.EsdtTokens(), b.EsdtTokens())
	})
}

func TestAccount_UnmarshalErrors(t *testing.T) {
	t.Parallel()

	valid := newAccount().MarshalRLP()

	cases := []struct {
		name  string
		input []byte
	}{
		{"empty", []byte{}},
		{"not a list", []byte{0x80}},
		{"short list", []byte{0xc2, 0x01, 0x02}},
		{"truncated", valid[:len(valid)-1]},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Error(t, (&Account{}).UnmarshalRLP(c.input))
		})
	}
}

func TestTokenInfo_Encoding(t *testing.T) {
	t.Parallel()

	info := &types.TokenInfo{
		Identifier: []byte("COOL-123456"),
		Name:       []byte("Cool"),
		Ticker:     []byte("COOL"),
		Type:       types.NonFungible,
		Decimals:   0,
		Manager:    addr1,
		CanFreeze:  true,
		CanBurn:    true,
		Paused:     true,
		Supply:     big.NewInt(7),
	}

	decoded, err := unmarshalTokenInfo(marshalTokenInfo(info))
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}

func TestAsyncContext_Encoding(t *testing.T) {
	t.Parallel()

	ctx := &asyncContext{
		Callback:    "callBack",
		Closure:     []byte{1, 2},
		Destination: addr2,
		Function:    "getValue",
		Args:        [][]byte{{0x2a}},
		Value:       big.NewInt(5),
	}

	decoded := &asyncContext{}
	require.NoError(t, decoded.UnmarshalRLP(ctx.MarshalRLP()))
	assert.Equal(t, ctx, decoded)
}
