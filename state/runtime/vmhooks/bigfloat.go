package vmhooks

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
)

func (h *VMHooks) floatBinaryOp(cost uint64, dest, op1, op2 int32, op func(x, y *big.Float) (*big.Float, error)) error {
	if err := h.useGas(cost); err != nil {
		return err
	}

	x, err := h.arena.BigFloat(op1)
	if err != nil {
		return err
	}

	y, err := h.arena.BigFloat(op2)
	if err != nil {
		return err
	}

	z, err := op(x, y)
	if err != nil {
		return err
	}

	return h.arena.SetBigFloat(dest, z)
}

func (h *VMHooks) floatUnaryOp(cost uint64, dest, op1 int32, op func(x *big.Float) (*big.Float, error)) error {
	if err := h.useGas(cost); err != nil {
		return err
	}

	x, err := h.arena.BigFloat(op1)
	if err != nil {
		return err
	}

	z, err := op(x)
	if err != nil {
		return err
	}

	return h.arena.SetBigFloat(dest, z)
}

// floatToBigInt rounds the float under op and stores it as a big int
func (h *VMHooks) floatToBigInt(cost uint64, destBigInt, op int32, round func(*big.Float) *big.Int) error {
	if err := h.useGas(cost); err != nil {
		return err
	}

	x, err := h.arena.BigFloat(op)
	if err != nil {
		return err
	}

	return h.arena.SetBigInt(destBigInt, round(x))
}

func (h *VMHooks) BigFloatNewFromParts(integralPart int32, fractionalPart int32, exponent int32) (int32, error) {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatNewFromParts); err != nil {
		return 0, err
	}

	v, err := h.arena.FloatFromParts(integralPart, fractionalPart, exponent)
	if err != nil {
		return 0, err
	}

	return h.arena.NewBigFloat(v), nil
}

func (h *VMHooks) BigFloatNewFromFrac(numerator int64, denominator int64) (int32, error) {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatNewFromParts); err != nil {
		return 0, err
	}

	v, err := h.arena.FloatFromFrac(numerator, denominator)
	if err != nil {
		return 0, err
	}

	return h.arena.NewBigFloat(v), nil
}

func (h *VMHooks) BigFloatNewFromSci(significand int64, exponent int64) (int32, error) {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatNewFromParts); err != nil {
		return 0, err
	}

	v, err := h.arena.FloatFromSci(significand, exponent)
	if err != nil {
		return 0, err
	}

	return h.arena.NewBigFloat(v), nil
}

func (h *VMHooks) BigFloatAdd(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.floatBinaryOp(h.schedule.BigFloatAPICost.BigFloatAdd, destinationHandle, op1Handle, op2Handle,
		func(x, y *big.Float) (*big.Float, error) {
			return new(big.Float).SetPrec(h.arena.Precision()).Add(x, y), nil
		})
}

func (h *VMHooks) BigFloatSub(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.floatBinaryOp(h.schedule.BigFloatAPICost.BigFloatSub, destinationHandle, op1Handle, op2Handle,
		func(x, y *big.Float) (*big.Float, error) {
			return new(big.Float).SetPrec(h.arena.Precision()).Sub(x, y), nil
		})
}

func (h *VMHooks) BigFloatMul(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.floatBinaryOp(h.schedule.BigFloatAPICost.BigFloatMul, destinationHandle, op1Handle, op2Handle,
		func(x, y *big.Float) (*big.Float, error) {
			return new(big.Float).SetPrec(h.arena.Precision()).Mul(x, y), nil
		})
}

func (h *VMHooks) BigFloatDiv(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.floatBinaryOp(h.schedule.BigFloatAPICost.BigFloatDiv, destinationHandle, op1Handle, op2Handle,
		h.arena.Quo)
}

func (h *VMHooks) BigFloatNeg(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatNeg, destinationHandle, opHandle,
		func(x *big.Float) (*big.Float, error) {
			return new(big.Float).Neg(x), nil
		})
}

func (h *VMHooks) BigFloatClone(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatClone, destinationHandle, opHandle,
		func(x *big.Float) (*big.Float, error) {
			return x, nil
		})
}

func (h *VMHooks) BigFloatAbs(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatAbs, destinationHandle, opHandle,
		func(x *big.Float) (*big.Float, error) {
			return new(big.Float).Abs(x), nil
		})
}

func (h *VMHooks) BigFloatSqrt(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatSqrt, destinationHandle, opHandle, h.arena.Sqrt)
}

func (h *VMHooks) BigFloatPow(destinationHandle int32, opHandle int32, exponent int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatPow, destinationHandle, opHandle,
		func(x *big.Float) (*big.Float, error) {
			return h.arena.Pow(x, exponent)
		})
}

func (h *VMHooks) BigFloatLn(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatLn, destinationHandle, opHandle, h.arena.Ln)
}

func (h *VMHooks) BigFloatLog2(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatLog2, destinationHandle, opHandle, h.arena.Log2)
}

func (h *VMHooks) BigFloatExp(destinationHandle int32, opHandle int32) error {
	return h.floatUnaryOp(h.schedule.BigFloatAPICost.BigFloatExp, destinationHandle, opHandle, h.arena.Exp)
}

func (h *VMHooks) BigFloatCmp(op1Handle int32, op2Handle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatCmp); err != nil {
		return 0, err
	}

	x, err := h.arena.BigFloat(op1Handle)
	if err != nil {
		return 0, err
	}

	y, err := h.arena.BigFloat(op2Handle)
	if err != nil {
		return 0, err
	}

	return int32(x.Cmp(y)), nil
}

func (h *VMHooks) BigFloatSign(opHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatSign); err != nil {
		return 0, err
	}

	x, err := h.arena.BigFloat(opHandle)
	if err != nil {
		return 0, err
	}

	if x.IsInf() {
		return 0, managed.ErrBigFloatNotNormal
	}

	return int32(x.Sign()), nil
}

func (h *VMHooks) BigFloatFloor(destBigIntHandle int32, opHandle int32) error {
	return h.floatToBigInt(h.schedule.BigFloatAPICost.BigFloatFloor, destBigIntHandle, opHandle, managed.Floor)
}

func (h *VMHooks) BigFloatCeil(destBigIntHandle int32, opHandle int32) error {
	return h.floatToBigInt(h.schedule.BigFloatAPICost.BigFloatCeil, destBigIntHandle, opHandle, managed.Ceil)
}

func (h *VMHooks) BigFloatTruncate(destBigIntHandle int32, opHandle int32) error {
	return h.floatToBigInt(h.schedule.BigFloatAPICost.BigFloatTruncate, destBigIntHandle, opHandle, managed.Truncate)
}

func (h *VMHooks) BigFloatSetInt64(destinationHandle int32, value int64) error {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatSetInt64); err != nil {
		return err
	}

	return h.arena.SetBigFloat(destinationHandle, new(big.Float).SetInt64(value))
}

func (h *VMHooks) BigFloatIsInt(opHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatIsInt); err != nil {
		return 0, err
	}

	x, err := h.arena.BigFloat(opHandle)
	if err != nil {
		return 0, err
	}

	return boolToInt32(x.IsInt()), nil
}

func (h *VMHooks) BigFloatSetBigInt(destinationHandle int32, bigIntHandle int32) error {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatSetBigInt); err != nil {
		return err
	}

	v, err := h.arena.BigInt(bigIntHandle)
	if err != nil {
		return err
	}

	if err := h.useGasForBigInts(v); err != nil {
		return err
	}

	return h.arena.SetBigFloat(destinationHandle, new(big.Float).SetInt(v))
}

func (h *VMHooks) BigFloatGetConstPi(destinationHandle int32) error {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatGetConst); err != nil {
		return err
	}

	return h.arena.SetBigFloat(destinationHandle, h.arena.Pi())
}

func (h *VMHooks) BigFloatGetConstE(destinationHandle int32) error {
	if err := h.useGas(h.schedule.BigFloatAPICost.BigFloatGetConst); err != nil {
		return err
	}

	return h.arena.SetBigFloat(destinationHandle, h.arena.E())
}
