package scenario

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/0xPolygon/wasm-vm/types"
)

func TestInterpreter_Bytes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  []byte
	}{
		{"empty", "", []byte{}},
		{"zero", "0", []byte{}},
		{"decimal", "1,000", []byte{0x03, 0xe8}},
		{"underscores", "1_000", []byte{0x03, 0xe8}},
		{"hex", "0x0102", []byte{1, 2}},
		{"string", "str:abc", []byte("abc")},
		{"quoted string", "''abc", []byte("abc")},
		{"true", "true", []byte{1}},
		{"false", "false", []byte{}},
		{"u64", "u64:1", []byte{0, 0, 0, 0, 0, 0, 0, 1}},
		{"u32", "u32:258", []byte{0, 0, 1, 2}},
		{"u16", "u16:1", []byte{0, 1}},
		{"u8", "u8:7", []byte{7}},
		{"nested", "nested:str:ab", []byte{0, 0, 0, 2, 'a', 'b'}},
		{"biguint", "biguint:256", []byte{0, 0, 0, 2, 1, 0}},
		{"native code", "native:adder", []byte("native:adder")},
		{"concatenation", "str:a|u8:1|0x02", []byte{'a', 1, 2}},
		{"keccak", "keccak256:str:a", keccak.Keccak256(nil, []byte("a"))},
	}

	in := newInterpreter("")

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := in.bytes(c.value)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestInterpreter_Invalid(t *testing.T) {
	t.Parallel()

	in := newInterpreter(t.TempDir())

	for _, v := range []string{"0xzz", "-1", "abc", "u8:256", "file:missing.wasm", "nested:0xz"} {
		_, err := in.bytes(v)
		assert.ErrorIs(t, err, ErrInvalidValue, v)
	}

	_, err := in.address("str:short")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = in.uint64("18446744073709551616")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestInterpreter_Addresses(t *testing.T) {
	t.Parallel()

	in := newInterpreter("")

	user, err := in.address("address:owner")
	require.NoError(t, err)
	assert.Equal(t, "owner___________________________", string(user.Bytes()))
	assert.False(t, user.IsSmartContract())

	sc, err := in.address("sc:adder")
	require.NoError(t, err)
	assert.True(t, sc.IsSmartContract())
	assert.Equal(t, types.WASMVMType, sc[types.SCAddressNumLeadingZeros:types.SCAddressNumLeadingZeros+2])
	assert.Equal(t, "adder", string(sc[10:15]))

	deployed := types.NewContractAddress(user, 1, types.WASMVMType)
	in.bind("sc:adder", deployed)

	sc, err = in.address("sc:adder")
	require.NoError(t, err)
	assert.Equal(t, deployed, sc)

	raw, err := in.address("0x11" + strings.Repeat("00", 30) + "0a")
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), raw[0])
	assert.Equal(t, byte(0x0a), raw[31])
}

func TestInterpreter_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "code.wasm"), []byte{0x00, 0x61, 0x73, 0x6d}, 0600))

	got, err := newInterpreter(dir).bytes("file:code.wasm")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, got)
}

func TestInterpreter_NumbersRoundTrip(t *testing.T) {
	t.Parallel()

	in := newInterpreter("")

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 0, 40).Draw(t, "raw")
		n := new(big.Int).SetBytes(raw)

		// decimal and hex spellings of a number agree
		fromDecimal, err := in.bigInt(n.String())
		require.NoError(t, err)

		fromHex, err := in.bigInt("0x" + n.Text(16))
		require.NoError(t, err)

		assert.Equal(t, 0, n.Cmp(fromDecimal))
		assert.Equal(t, 0, n.Cmp(fromHex))

		b, err := in.bytes(n.String())
		require.NoError(t, err)
		assert.Equal(t, n.Bytes(), b)
	})
}
