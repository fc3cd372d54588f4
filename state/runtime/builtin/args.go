package builtin

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/types"
)

func checkNumArgs(in *Input, min int) error {
	if len(in.Args) < min {
		return ErrInvalidArguments
	}

	return nil
}

func checkNoValue(in *Input) error {
	if in.Value.Sign() != 0 {
		return ErrCalledWithValue
	}

	return nil
}

func parseNonce(b []byte) (uint64, error) {
	nonce, err := types.TopDecodeUint64(b)
	if err != nil {
		return 0, ErrInvalidArguments
	}

	return nonce, nil
}

// parseAmount decodes a strictly positive unsigned amount
func parseAmount(b []byte) (*big.Int, error) {
	amount := new(big.Int).SetBytes(b)
	if amount.Sign() <= 0 {
		return nil, ErrNegativeValue
	}

	return amount, nil
}

func parseAddress(b []byte) (types.Address, error) {
	if len(b) != types.AddressLength {
		return types.ZeroAddress, ErrInvalidArguments
	}

	return types.BytesToAddress(b), nil
}

func parseBool(b []byte) (bool, error) {
	switch string(b) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, ErrInvalidProperty
	}
}

// appendedCall splits the function and arguments appended after the first n arguments
func appendedCall(args [][]byte, n int) (string, [][]byte) {
	if len(args) <= n || len(args[n]) == 0 {
		return "", nil
	}

	return string(args[n]), args[n+1:]
}

// tokenLog is the log written by the functions moving or changing token balances
func tokenLog(addr types.Address, function string, tokenID []byte, nonce uint64, amount *big.Int, extra ...[]byte) *types.Log {
	topics := [][]byte{
		append([]byte{}, tokenID...),
		types.TopEncodeUint64(nonce),
		amount.Bytes(),
	}

	return &types.Log{
		Address:    addr,
		Identifier: []byte(function),
		Topics:     append(topics, extra...),
	}
}

// esdtData loads the holdings of addr, empty when it holds nothing of tokenID yet
func esdtData(st State, addr types.Address, tokenID []byte) *types.EsdtData {
	data, ok := st.GetEsdtData(addr, tokenID)
	if !ok {
		return types.NewEsdtData(tokenID)
	}

	return data
}

func checkRole(st State, addr types.Address, tokenID []byte, role types.EsdtRoles) error {
	if !esdtData(st, addr, tokenID).Roles.Has(role) {
		return ErrActionNotAllowed
	}

	return nil
}

func tokenInfo(st State, tokenID []byte) (*types.TokenInfo, error) {
	info, ok := st.GetTokenInfo(tokenID)
	if !ok {
		return nil, ErrTokenNotFound
	}

	return info, nil
}
