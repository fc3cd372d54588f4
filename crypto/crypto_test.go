package crypto

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bn256 "github.com/umbracle/go-eth-bn256"
)

func TestHashes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		hash     func([]byte) []byte
		expected string
	}{
		{
			"keccak256",
			func(b []byte) []byte { return Keccak256(b) },
			"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
		{
			"sha256",
			Sha256,
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			"ripemd160",
			Ripemd160,
			"8eb208f7e05d987a9b044a8e98c6b087f15a0bfc",
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.expected, hex.EncodeToString(c.hash([]byte("abc"))))
		})
	}
}

func TestVerifyEd25519(t *testing.T) {
	t.Parallel()

	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{7}, ed25519.SeedSize))
	msg := []byte("message")
	sig := ed25519.Sign(key, msg)
	pub := key.Public().(ed25519.PublicKey)

	require.NoError(t, VerifyEd25519(pub, msg, sig))
	assert.ErrorIs(t, VerifyEd25519(pub, []byte("other"), sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyEd25519(pub[:10], msg, sig), ErrInvalidPublicKey)
}

func TestVerifySecp256k1(t *testing.T) {
	t.Parallel()

	priv, pub := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{3}, 32))
	msg := []byte("message")

	sig := ecdsa.Sign(priv, Sha256(Sha256(msg)))
	require.NoError(t, VerifySecp256k1(pub.SerializeCompressed(), msg, sig.Serialize()))
	require.NoError(t, VerifySecp256k1(pub.SerializeUncompressed(), msg, sig.Serialize()))
	assert.ErrorIs(t, VerifySecp256k1(pub.SerializeCompressed(), []byte("other"), sig.Serialize()), ErrInvalidSignature)

	keccakSig := ecdsa.Sign(priv, Keccak256(msg))
	require.NoError(t, VerifyCustomSecp256k1(pub.SerializeCompressed(), msg, keccakSig.Serialize(), HashKeccak256))
	assert.ErrorIs(t, VerifyCustomSecp256k1(pub.SerializeCompressed(), msg, keccakSig.Serialize(), 9), ErrUnknownHashType)

	// plain messages must already be digests
	assert.Error(t, VerifyCustomSecp256k1(pub.SerializeCompressed(), msg, keccakSig.Serialize(), HashPlain))
}

func TestEncodeSecp256k1DerSignature(t *testing.T) {
	t.Parallel()

	encoded, err := EncodeSecp256k1DerSignature([]byte{1, 2, 3}, []byte{4, 5})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x09, 0x02, 0x03, 0x01, 0x02, 0x03, 0x02, 0x02, 0x04, 0x05}, encoded)

	parsed, err := ecdsa.ParseDERSignature(encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, parsed.Serialize())

	_, err = EncodeSecp256k1DerSignature(make([]byte, 33), []byte{1})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyBLS(t *testing.T) {
	t.Parallel()

	k := big.NewInt(123456789)
	msg := []byte("bls message")

	pub := new(bn256.G2).ScalarBaseMult(k).Marshal()

	point, err := HashToG1(msg)
	require.NoError(t, err)

	sig := new(bn256.G1).ScalarMult(point, k).Marshal()

	require.NoError(t, VerifyBLS(pub, msg, sig))
	assert.ErrorIs(t, VerifyBLS(pub, []byte("other"), sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyBLS(pub[:64], msg, sig), ErrInvalidPublicKey)
}

func TestEllipticCurves(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"p224", "p256", "p384", "p521"} {
		curve, err := CurveByName(name)
		require.NoError(t, err)

		x, y := curve.ScalarBaseMult([]byte{2})
		assert.True(t, curve.IsOnCurve(x, y))

		xx, yy, err := UnmarshalPoint(curve, MarshalPoint(curve, x, y))
		require.NoError(t, err)
		assert.Equal(t, 0, x.Cmp(xx))
		assert.Equal(t, 0, y.Cmp(yy))

		xx, yy, err = UnmarshalCompressedPoint(curve, MarshalCompressedPoint(curve, x, y))
		require.NoError(t, err)
		assert.Equal(t, 0, x.Cmp(xx))
		assert.Equal(t, 0, y.Cmp(yy))

		_, _, err = UnmarshalPoint(curve, []byte{4, 1, 2})
		assert.ErrorIs(t, err, ErrInvalidPoint)
	}

	_, err := CurveByName("secp256k1")
	assert.ErrorIs(t, err, ErrUnknownCurve)
}
