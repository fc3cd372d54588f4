package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"

	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrUnknownHashType  = errors.New("unknown hash type")
)

// Keccak256 returns the legacy keccak-256 digest of the concatenated inputs
func Keccak256(v ...[]byte) []byte {
	return keccak.Keccak256Concat(v...)
}

// Sha256 returns the sha256 digest of data
func Sha256(data []byte) []byte {
	h := sha256.Sum256(data)

	return h[:]
}

// Ripemd160 returns the ripemd160 digest of data
func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)

	return h.Sum(nil)
}

// VerifyEd25519 checks an ed25519 signature
func VerifyEd25519(key, msg, sig []byte) error {
	if len(key) != ed25519.PublicKeySize {
		return ErrInvalidPublicKey
	}

	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(key, msg, sig) {
		return ErrInvalidSignature
	}

	return nil
}
