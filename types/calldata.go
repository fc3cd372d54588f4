package types

import (
	"errors"
	"strings"

	"github.com/0xPolygon/wasm-vm/helper/hex"
)

const callDataSeparator = "@"

var ErrInvalidCallData = errors.New("invalid call data")

// ParseCallData splits transaction data of the form fn@hex@hex into the function
// name and its arguments
func ParseCallData(data []byte) (string, [][]byte, error) {
	if len(data) == 0 {
		return "", [][]byte{}, nil
	}

	parts := strings.Split(string(data), callDataSeparator)
	if parts[0] == "" {
		return "", nil, ErrInvalidCallData
	}

	args := make([][]byte, 0, len(parts)-1)

	for _, p := range parts[1:] {
		if p == "" {
			args = append(args, []byte{})

			continue
		}

		if len(p)%2 == 1 {
			return "", nil, ErrInvalidCallData
		}

		arg, err := hex.DecodeHex(p)
		if err != nil {
			return "", nil, ErrInvalidCallData
		}

		args = append(args, arg)
	}

	return parts[0], args, nil
}

// BuildCallData is the inverse of ParseCallData
func BuildCallData(function string, args ...[]byte) []byte {
	var sb strings.Builder

	sb.WriteString(function)

	for _, arg := range args {
		sb.WriteString(callDataSeparator)
		sb.WriteString(hex.EncodeToString(arg))
	}

	return []byte(sb.String())
}
