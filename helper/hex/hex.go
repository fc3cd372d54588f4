package hex

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeToHex generates a hex string based on the byte representation, with the '0x' prefix
func EncodeToHex(str []byte) string {
	return "0x" + hex.EncodeToString(str)
}

// EncodeToString is a wrapper method for hex.EncodeToString
func EncodeToString(str []byte) string {
	return hex.EncodeToString(str)
}

// DecodeHex converts a hex string, with or without the '0x' prefix, to a byte array.
// Odd length strings are left padded with a zero nibble.
func DecodeHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(strings.TrimPrefix(str, "0x"), "0X")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	return hex.DecodeString(str)
}

// MustDecodeHex type-checks and converts a hex string to a byte array
func MustDecodeHex(str string) []byte {
	buf, err := DecodeHex(str)
	if err != nil {
		panic(fmt.Errorf("could not decode hex: %w", err))
	}

	return buf
}
