package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// HashType selects how the message is hashed before a secp256k1 verification
type HashType uint8

const (
	HashPlain HashType = iota
	HashSha256
	HashDoubleSha256
	HashKeccak256
	HashRipemd160
)

const plainMessageLength = 32

func (h HashType) digest(msg []byte) ([]byte, error) {
	switch h {
	case HashPlain:
		if len(msg) != plainMessageLength {
			return nil, ErrInvalidSignature
		}

		return msg, nil
	case HashSha256:
		return Sha256(msg), nil
	case HashDoubleSha256:
		return Sha256(Sha256(msg)), nil
	case HashKeccak256:
		return Keccak256(msg), nil
	case HashRipemd160:
		return Ripemd160(msg), nil
	default:
		return nil, ErrUnknownHashType
	}
}

// VerifySecp256k1 checks a DER encoded signature over the double sha256 of msg
func VerifySecp256k1(key, msg, sig []byte) error {
	return VerifyCustomSecp256k1(key, msg, sig, HashDoubleSha256)
}

// VerifyCustomSecp256k1 checks a DER encoded signature over the digest of msg selected by hashType
func VerifyCustomSecp256k1(key, msg, sig []byte, hashType HashType) error {
	digest, err := hashType.digest(msg)
	if err != nil {
		return err
	}

	pub, err := btcec.ParsePubKey(key)
	if err != nil {
		return ErrInvalidPublicKey
	}

	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return ErrInvalidSignature
	}

	if !signature.Verify(digest, pub) {
		return ErrInvalidSignature
	}

	return nil
}

// EncodeSecp256k1DerSignature builds the DER form of the (r, s) signature pair
func EncodeSecp256k1DerSignature(r, s []byte) ([]byte, error) {
	var rr, ss btcec.ModNScalar

	if len(r) > 32 || len(s) > 32 || rr.SetByteSlice(r) || ss.SetByteSlice(s) {
		return nil, ErrInvalidSignature
	}

	return ecdsa.NewSignature(&rr, &ss).Serialize(), nil
}
