package managed

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/wasm-vm/types"
)

func TestArena_Handles(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)

	h1 := a.NewBigInt(big.NewInt(5))
	h2 := a.NewBigInt(big.NewInt(7))
	assert.Greater(t, h1, int32(0))
	assert.Greater(t, h2, h1)

	v, err := a.BigInt(h1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int64())

	// handles minted by another frame do not resolve
	other := NewArena(2, 53)
	_, err = other.BigInt(h1)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	// a handle of the right frame that was never minted
	_, err = a.BigInt(h2 + 10)
	assert.ErrorIs(t, err, ErrNoBigInt)

	_, err = a.Buffer(h2 + 10)
	assert.ErrorIs(t, err, ErrNoBuffer)
}

func TestArena_ReservedHandles(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)

	v, err := a.BigInt(-500)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	b, err := a.Buffer(-500)
	require.NoError(t, err)
	assert.Empty(t, b)

	require.NoError(t, a.SetBuffer(-500, []byte{1, 2}))
	require.NoError(t, a.AppendBuffer(-500, []byte{3}))

	b, err = a.Buffer(-500)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	caller := types.StringToAddress("0x01")
	self := types.StringToAddress("0x02")
	payments := []*types.EsdtTokenPayment{
		types.NewEsdtTokenPayment([]byte("TOK-123456"), 0, big.NewInt(10)),
		types.NewEsdtTokenPayment([]byte("NFT-abcdef"), 3, big.NewInt(1)),
	}

	require.NoError(t, a.Seed(caller, self, big.NewInt(42), payments, []byte("closure")))

	value, err := a.BigInt(HandleCallValueEGLD)
	require.NoError(t, err)
	assert.Equal(t, int64(42), value.Int64())

	got, err := a.ReadPayments(HandleCallValueMultiESDT)
	require.NoError(t, err)
	assert.Equal(t, payments, got)

	b, err = a.Buffer(HandleAddressSelf)
	require.NoError(t, err)
	assert.Equal(t, self.Bytes(), b)

	b, err = a.Buffer(HandleEgldIdentifier)
	require.NoError(t, err)
	assert.Equal(t, []byte("EGLD-000000"), b)
}

func TestArena_BufferReadsCopyOut(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)
	h := a.NewBuffer([]byte("abc"))

	b, err := a.Buffer(h)
	require.NoError(t, err)

	b[0] = 'x'

	b, err = a.Buffer(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
}

func TestArena_BufferVec(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(rapid.SliceOf(rapid.Byte())).Draw(t, "items")

		a := NewArena(3, 53)
		h := a.NewBuffer(nil)

		require.NoError(t, a.WriteBufferVec(h, items))

		got, err := a.ReadBufferVec(h)
		require.NoError(t, err)
		require.Len(t, got, len(items))

		for i := range items {
			assert.Equal(t, len(items[i]), len(got[i]))
			assert.Equal(t, string(items[i]), string(got[i]))
		}
	})
}

func TestArena_BufferVecMalformed(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)
	h := a.NewBuffer([]byte{0, 0, 1})

	_, err := a.ReadBufferVec(h)
	assert.ErrorIs(t, err, ErrArgBufferMalformed)

	_, err = a.ReadPayments(h)
	assert.ErrorIs(t, err, ErrPaymentMalformed)
}

func floatOf(t *testing.T, f *big.Float) float64 {
	t.Helper()

	v, _ := f.Float64()

	return v
}

func TestArena_BigFloat(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)

	cases := []struct {
		name     string
		fn       func() (*big.Float, error)
		expected float64
	}{
		{"from parts", func() (*big.Float, error) { return a.FloatFromParts(1, 5, -1) }, 1.5},
		{"from negative parts", func() (*big.Float, error) { return a.FloatFromParts(-1, 25, -2) }, -1.25},
		{"from frac", func() (*big.Float, error) { return a.FloatFromFrac(1, 4) }, 0.25},
		{"from sci", func() (*big.Float, error) { return a.FloatFromSci(314, -2) }, 3.14},
		{"sqrt", func() (*big.Float, error) { return a.Sqrt(big.NewFloat(2)) }, math.Sqrt2},
		{"pow", func() (*big.Float, error) { return a.Pow(big.NewFloat(2), 10) }, 1024},
		{"negative pow", func() (*big.Float, error) { return a.Pow(big.NewFloat(2), -2) }, 0.25},
		{"ln", func() (*big.Float, error) { return a.Ln(big.NewFloat(math.E)) }, 1},
		{"ln small", func() (*big.Float, error) { return a.Ln(big.NewFloat(0.1)) }, math.Log(0.1)},
		{"log2", func() (*big.Float, error) { return a.Log2(big.NewFloat(1024)) }, 10},
		{"exp", func() (*big.Float, error) { return a.Exp(big.NewFloat(1)) }, math.E},
		{"exp negative", func() (*big.Float, error) { return a.Exp(big.NewFloat(-3.5)) }, math.Exp(-3.5)},
		{"pi", func() (*big.Float, error) { return a.Pi(), nil }, math.Pi},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			v, err := c.fn()
			require.NoError(t, err)
			assert.InDelta(t, c.expected, floatOf(t, v), 1e-12)
		})
	}
}

func TestArena_BigFloatErrors(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)

	_, err := a.Sqrt(big.NewFloat(-1))
	assert.ErrorIs(t, err, ErrBadLowerBounds)

	_, err = a.Ln(big.NewFloat(0))
	assert.ErrorIs(t, err, ErrBadLowerBounds)

	_, err = a.Quo(big.NewFloat(1), big.NewFloat(0))
	assert.Error(t, err)

	_, err = a.FloatFromParts(1, 1, 1)
	assert.ErrorIs(t, err, ErrPositiveExponent)

	_, err = a.Exp(big.NewFloat(1 << 30))
	assert.ErrorIs(t, err, ErrBigFloatNotNormal)
}

func TestRounding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		v        float64
		floor    int64
		ceil     int64
		truncate int64
	}{
		{"positive", 2.5, 2, 3, 2},
		{"negative", -2.5, -3, -2, -2},
		{"integer", 4, 4, 4, 4},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			f := big.NewFloat(c.v)
			assert.Equal(t, c.floor, Floor(f).Int64())
			assert.Equal(t, c.ceil, Ceil(f).Int64())
			assert.Equal(t, c.truncate, Truncate(f).Int64())
		})
	}
}

func TestFloatEncoding(t *testing.T) {
	t.Parallel()

	a := NewArena(1, 53)

	b, err := EncodeFloat(big.NewFloat(-12.75))
	require.NoError(t, err)

	v, err := a.DecodeFloat(b)
	require.NoError(t, err)
	assert.Equal(t, -12.75, floatOf(t, v))

	_, err = a.DecodeFloat([]byte{0xff})
	assert.ErrorIs(t, err, ErrBigFloatEncoding)
}
