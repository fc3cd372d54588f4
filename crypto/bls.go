package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/0xPolygon/wasm-vm/helper/common"
	bn256 "github.com/umbracle/go-eth-bn256"
)

const (
	BLSPublicKeySize = 128
	BLSSignatureSize = 64
)

var (
	// negated generator of G2
	negG2Point = mustG2Point("198e9393920d483a7260bfb731fb5d25f1aa493335a9e71297e485b7aef312c21800deef121f1e76426a00665e5c4479674322d4f75edadd46debd5cd992f6ed275dc4a288d1afb3cbb1ac09187524c7db36395df7be3b99e673b13a075a65ec1d9befcd05a5323e6da4d435f3b617cdb3af83285c2df711ef39c01571827f9d") //nolint

	// prime of the base field
	bn256P, _ = new(big.Int).SetString("21888242871839275222246405745257275088696311157297823662689037894645226208583", 10)
)

func mustG2Point(str string) *bn256.G2 {
	buf, err := hex.DecodeString(str)
	if err != nil {
		panic(err)
	}

	p := new(bn256.G2)
	if _, err := p.Unmarshal(buf); err != nil {
		panic(err)
	}

	return p
}

// VerifyBLS checks a signature (point on G1) of msg against a public key (point on G2)
func VerifyBLS(key, msg, sig []byte) error {
	if len(key) != BLSPublicKeySize {
		return ErrInvalidPublicKey
	}

	if len(sig) != BLSSignatureSize {
		return ErrInvalidSignature
	}

	pub := new(bn256.G2)
	if _, err := pub.Unmarshal(key); err != nil {
		return ErrInvalidPublicKey
	}

	s := new(bn256.G1)
	if _, err := s.Unmarshal(sig); err != nil {
		return ErrInvalidSignature
	}

	point, err := HashToG1(msg)
	if err != nil {
		return err
	}

	if !bn256.PairingCheck([]*bn256.G1{s, point}, []*bn256.G2{negG2Point, pub}) {
		return ErrInvalidSignature
	}

	return nil
}

// HashToG1 maps a message to a G1 point: x starts at sha256(msg) mod p and is incremented
// until x^3 + 3 is a quadratic residue
func HashToG1(msg []byte) (*bn256.G1, error) {
	h := sha256.Sum256(msg)
	x := new(big.Int).Mod(new(big.Int).SetBytes(h[:]), bn256P)

	for {
		rhs := new(big.Int).Mul(x, x)
		rhs.Mul(rhs, x)
		rhs.Add(rhs, big.NewInt(3))

		if y := new(big.Int).ModSqrt(rhs.Mod(rhs, bn256P), bn256P); y != nil {
			buf := append(common.PadLeftOrTrim(x.Bytes(), 32), common.PadLeftOrTrim(y.Bytes(), 32)...)

			g1 := new(bn256.G1)
			if _, err := g1.Unmarshal(buf); err != nil {
				return nil, err
			}

			return g1, nil
		}

		x.Add(x, big.NewInt(1))
	}
}
