package crypto

import (
	"crypto/elliptic"
	"errors"
	"io"
	"math/big"
)

var (
	ErrUnknownCurve = errors.New("unknown elliptic curve")
	ErrInvalidPoint = errors.New("invalid point")
)

// CurveByName returns one of the supported NIST curves: p224, p256, p384 and p521
func CurveByName(name string) (elliptic.Curve, error) {
	switch name {
	case "p224":
		return elliptic.P224(), nil
	case "p256":
		return elliptic.P256(), nil
	case "p384":
		return elliptic.P384(), nil
	case "p521":
		return elliptic.P521(), nil
	default:
		return nil, ErrUnknownCurve
	}
}

// CurveByteLength is the byte length of a field element of the curve
func CurveByteLength(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

// UnmarshalPoint decodes an uncompressed point and checks it is on the curve
func UnmarshalPoint(curve elliptic.Curve, data []byte) (*big.Int, *big.Int, error) {
	x, y := elliptic.Unmarshal(curve, data) //nolint:staticcheck
	if x == nil {
		return nil, nil, ErrInvalidPoint
	}

	return x, y, nil
}

// UnmarshalCompressedPoint decodes a compressed point and checks it is on the curve
func UnmarshalCompressedPoint(curve elliptic.Curve, data []byte) (*big.Int, *big.Int, error) {
	x, y := elliptic.UnmarshalCompressed(curve, data)
	if x == nil {
		return nil, nil, ErrInvalidPoint
	}

	return x, y, nil
}

// MarshalPoint encodes a point in uncompressed form
func MarshalPoint(curve elliptic.Curve, x, y *big.Int) []byte {
	return elliptic.Marshal(curve, x, y) //nolint:staticcheck
}

// MarshalCompressedPoint encodes a point in compressed form
func MarshalCompressedPoint(curve elliptic.Curve, x, y *big.Int) []byte {
	return elliptic.MarshalCompressed(curve, x, y)
}

// GenerateKey derives a key pair reading entropy from rand. The vm hands a deterministic
// reader so every node derives the same key.
func GenerateKey(curve elliptic.Curve, rand io.Reader) ([]byte, *big.Int, *big.Int, error) {
	return elliptic.GenerateKey(curve, rand) //nolint:staticcheck
}
