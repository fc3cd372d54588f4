package builtin

import (
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

func isFrozen(st State, addr types.Address, tokenID []byte) bool {
	data, ok := st.GetEsdtData(addr, tokenID)

	return ok && data.Frozen
}

func hasRole(st State, addr types.Address, tokenID []byte, role types.EsdtRoles) bool {
	data, ok := st.GetEsdtData(addr, tokenID)

	return ok && data.Roles.Has(role)
}

func checkTransferable(st State, from, to types.Address, tokenID []byte) error {
	info := lookupToken(st, tokenID)

	if err := checkNotPaused(info); err != nil {
		return err
	}

	if isFrozen(st, from, tokenID) || isFrozen(st, to, tokenID) {
		return ErrFrozen
	}

	if info != nil && info.LimitedTransfer &&
		!hasRole(st, from, tokenID, types.RoleTransfer) && !hasRole(st, to, tokenID, types.RoleTransfer) {
		return ErrLimitedTransfer
	}

	return nil
}

// checkPayable rejects plain token transfers to contracts not accepting them
func checkPayable(st State, from, to types.Address, function string) error {
	if function != "" || !to.IsSmartContract() || !st.AccountExists(to) {
		return nil
	}

	md := st.GetCodeMetadata(to)
	if md.Payable() || (from.IsSmartContract() && md.PayableBySC()) {
		return nil
	}

	return ErrNotPayable
}

// transfer moves every payment from the caller to dest and prepares the call
// appended to the transfer
func transfer(
	in *Input,
	st State,
	dest types.Address,
	payments []*types.EsdtTokenPayment,
	function string,
	args [][]byte,
) (*Output, error) {
	if err := checkPayable(st, in.Caller, dest, function); err != nil {
		return nil, err
	}

	out := &Output{}

	for _, p := range payments {
		if !types.IsValidTokenIdentifier(p.TokenID) {
			return nil, runtime.ErrInvalidTokenID
		}

		if err := checkTransferable(st, in.Caller, dest, p.TokenID); err != nil {
			return nil, err
		}

		if err := st.TransferEsdt(in.Caller, dest, p.TokenID, p.Nonce, p.Amount); err != nil {
			return nil, err
		}

		out.Logs = append(out.Logs, tokenLog(in.Caller, in.Function, p.TokenID, p.Nonce, p.Amount, dest.Bytes()))
	}

	out.Transfers = []*runtime.OutputTransfer{{
		From:          in.Caller,
		To:            dest,
		ESDTTransfers: payments,
		CallType:      in.CallType,
	}}

	if function != "" && dest.IsSmartContract() {
		out.Call = &NestedCall{
			Destination: dest,
			Function:    function,
			Args:        args,
			Payments:    payments,
		}
	}

	return out, nil
}

// TransferCall encodes payments from sender to dest, followed by an optional call, as
// the builtin function moving them. It returns the address the function is sent to.
func TransferCall(
	sender, dest types.Address,
	payments []*types.EsdtTokenPayment,
	function string,
	args [][]byte,
) (types.Address, string, [][]byte) {
	var call [][]byte
	if function != "" {
		call = append([][]byte{[]byte(function)}, args...)
	}

	switch {
	case len(payments) == 1 && payments[0].Nonce == 0:
		p := payments[0]

		return dest, types.BuiltinESDTTransfer, append([][]byte{p.TokenID, p.Amount.Bytes()}, call...)
	case len(payments) == 1:
		p := payments[0]

		return sender, types.BuiltinESDTNFTTransfer, append([][]byte{
			p.TokenID,
			types.TopEncodeUint64(p.Nonce),
			p.Amount.Bytes(),
			dest.Bytes(),
		}, call...)
	default:
		multi := [][]byte{dest.Bytes(), types.TopEncodeUint64(uint64(len(payments)))}
		for _, p := range payments {
			multi = append(multi, p.TokenID, types.TopEncodeUint64(p.Nonce), p.Amount.Bytes())
		}

		return sender, types.BuiltinMultiESDTNFTTransfer, append(multi, call...)
	}
}

// esdtTransfer: token, amount, [function, args...] sent to the destination
type esdtTransfer struct{}

func (e *esdtTransfer) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTTransfer
}

func (e *esdtTransfer) run(in *Input, st State) (*Output, error) {
	if err := checkNoValue(in); err != nil {
		return nil, err
	}

	if err := checkNumArgs(in, 2); err != nil {
		return nil, err
	}

	amount, err := parseAmount(in.Args[1])
	if err != nil {
		return nil, err
	}

	function, args := appendedCall(in.Args, 2)
	payment := types.NewEsdtTokenPayment(in.Args[0], 0, amount)

	return transfer(in, st, in.To, []*types.EsdtTokenPayment{payment}, function, args)
}

// esdtNFTTransfer: token, nonce, amount, destination, [function, args...] sent to self
type esdtNFTTransfer struct{}

func (e *esdtNFTTransfer) gas(_ *Input, schedule *gas.Schedule) uint64 {
	return schedule.BuiltInCost.ESDTNFTTransfer
}

func (e *esdtNFTTransfer) run(in *Input, st State) (*Output, error) {
	if err := checkLocalCall(in, 4); err != nil {
		return nil, err
	}

	nonce, err := parseNonce(in.Args[1])
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(in.Args[2])
	if err != nil {
		return nil, err
	}

	dest, err := parseAddress(in.Args[3])
	if err != nil {
		return nil, err
	}

	function, args := appendedCall(in.Args, 4)
	payment := types.NewEsdtTokenPayment(in.Args[0], nonce, amount)

	return transfer(in, st, dest, []*types.EsdtTokenPayment{payment}, function, args)
}

// multiESDTNFTTransfer: destination, count, count x (token, nonce, amount),
// [function, args...] sent to self
type multiESDTNFTTransfer struct{}

func (m *multiESDTNFTTransfer) gas(in *Input, schedule *gas.Schedule) uint64 {
	count := uint64(1)

	if len(in.Args) > 1 {
		if n, err := types.TopDecodeUint64(in.Args[1]); err == nil && n > 0 {
			count = n
		}
	}

	return schedule.BuiltInCost.MultiESDTNFTTransfer * count
}

func (m *multiESDTNFTTransfer) run(in *Input, st State) (*Output, error) {
	if err := checkLocalCall(in, 2); err != nil {
		return nil, err
	}

	dest, err := parseAddress(in.Args[0])
	if err != nil {
		return nil, err
	}

	count, err := parseNonce(in.Args[1])
	if err != nil {
		return nil, err
	}

	if count == 0 || uint64(len(in.Args)-2)/3 < count {
		return nil, ErrInvalidArguments
	}

	payments := make([]*types.EsdtTokenPayment, 0, count)

	for i := 0; i < int(count); i++ {
		raw := in.Args[2+3*i : 5+3*i]

		nonce, err := parseNonce(raw[1])
		if err != nil {
			return nil, err
		}

		amount, err := parseAmount(raw[2])
		if err != nil {
			return nil, err
		}

		payments = append(payments, types.NewEsdtTokenPayment(raw[0], nonce, amount))
	}

	function, args := appendedCall(in.Args, 2+3*int(count))

	return transfer(in, st, dest, payments, function, args)
}
