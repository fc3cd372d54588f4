package types

import (
	"bytes"
	"fmt"
)

const (
	// EGLDTokenIdentifier is the reserved wire name of the native token
	EGLDTokenIdentifier = "EGLD-000000"

	MinTickerLength        = 3
	MaxTickerLength        = 10
	TokenRandomSuffixChars = 6
)

// EsdtTokenType is the single byte token type tag
type EsdtTokenType byte

const (
	Fungible EsdtTokenType = iota
	NonFungible
	SemiFungible
	Meta
	DynamicNFT
	DynamicSFT
	DynamicMeta
	Invalid
)

// TokenTypeFromByte decodes a token type tag. Any value outside the known range is Invalid.
func TokenTypeFromByte(b byte) EsdtTokenType {
	if b >= byte(Invalid) {
		return Invalid
	}

	return EsdtTokenType(b)
}

func (t EsdtTokenType) String() string {
	switch t {
	case Fungible:
		return "FungibleESDT"
	case NonFungible:
		return "NonFungibleESDT"
	case SemiFungible:
		return "SemiFungibleESDT"
	case Meta:
		return "MetaESDT"
	case DynamicNFT:
		return "DynamicNonFungibleESDT"
	case DynamicSFT:
		return "DynamicSemiFungibleESDT"
	case DynamicMeta:
		return "DynamicMetaESDT"
	default:
		return "Invalid"
	}
}

// TokenTypeFromString parses the wire name of a token type
func TokenTypeFromString(s string) EsdtTokenType {
	for t := Fungible; t < Invalid; t++ {
		if t.String() == s {
			return t
		}
	}

	return Invalid
}

// Classify returns the type reported for a token instance. Semi fungible tokens are
// reported as non fungible.
func (t EsdtTokenType) Classify() EsdtTokenType {
	if t == SemiFungible {
		return NonFungible
	}

	return t
}

// HasNonces returns true for the token types whose instances are addressed by nonce
func (t EsdtTokenType) HasNonces() bool {
	return t != Fungible && t != Invalid
}

// IsValidTicker checks a ticker has 3 to 10 chars of uppercase letters or digits
func IsValidTicker(ticker []byte) bool {
	if len(ticker) < MinTickerLength || len(ticker) > MaxTickerLength {
		return false
	}

	for _, c := range ticker {
		if !isUpperAlphanumeric(c) {
			return false
		}
	}

	return true
}

// IsValidTokenIdentifier checks the TICKER-xxxxxx pattern
func IsValidTokenIdentifier(id []byte) bool {
	dash := bytes.IndexByte(id, '-')
	if dash < 0 {
		return false
	}

	if !IsValidTicker(id[:dash]) {
		return false
	}

	suffix := id[dash+1:]
	if len(suffix) != TokenRandomSuffixChars {
		return false
	}

	for _, c := range suffix {
		if !isLowerHex(c) {
			return false
		}
	}

	return true
}

// TickerOf returns the ticker part of a token identifier
func TickerOf(id []byte) []byte {
	if dash := bytes.IndexByte(id, '-'); dash >= 0 {
		return id[:dash]
	}

	return id
}

func isUpperAlphanumeric(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isLowerHex(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= '0' && c <= '9')
}

// EgldOrEsdtTokenIdentifier is either the native token or a named ESDT
type EgldOrEsdtTokenIdentifier struct {
	token []byte
}

func NewEgldTokenIdentifier() EgldOrEsdtTokenIdentifier {
	return EgldOrEsdtTokenIdentifier{}
}

func NewEsdtTokenIdentifier(token []byte) EgldOrEsdtTokenIdentifier {
	return EgldOrEsdtTokenIdentifier{token: token}
}

// ParseEgldOrEsdtTokenIdentifier maps the reserved native name to the native variant
func ParseEgldOrEsdtTokenIdentifier(b []byte) EgldOrEsdtTokenIdentifier {
	if len(b) == 0 || string(b) == EGLDTokenIdentifier {
		return NewEgldTokenIdentifier()
	}

	return NewEsdtTokenIdentifier(b)
}

func (e EgldOrEsdtTokenIdentifier) IsEgld() bool {
	return e.token == nil
}

// Esdt returns the ESDT identifier, nil for the native token
func (e EgldOrEsdtTokenIdentifier) Esdt() []byte {
	return e.token
}

// Bytes returns the wire form of the identifier
func (e EgldOrEsdtTokenIdentifier) Bytes() []byte {
	if e.IsEgld() {
		return []byte(EGLDTokenIdentifier)
	}

	return e.token
}

func (e EgldOrEsdtTokenIdentifier) String() string {
	return string(e.Bytes())
}

// TokenNonceKey builds the key under which an instance is reported, TICKER-xxxxxx-nonce
func TokenNonceKey(token []byte, nonce uint64) string {
	if nonce == 0 {
		return string(token)
	}

	return fmt.Sprintf("%s-%x", token, nonce)
}
