package vmhooks

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
	"github.com/0xPolygon/wasm-vm/types"
)

const (
	// maxBigIntByteLenForNormalCost is the size up to which a big int operation costs its flat price
	maxBigIntByteLenForNormalCost = 32

	// maxBigIntResultLen bounds the results of pow and shl
	maxBigIntResultLen = 1 << 24
)

// useGasForBigInts charges the copy of operands that are too big for the flat price
func (h *VMHooks) useGasForBigInts(values ...*big.Int) error {
	var total uint64

	for _, v := range values {
		n := uint64((v.BitLen() + 7) / 8)
		if n > maxBigIntByteLenForNormalCost {
			total += n * h.schedule.BigIntAPICost.CopyPerByteForTooBig
		}
	}

	return h.useGas(total)
}

// binaryOp resolves both operands, charges them and stores op(x, y) under dest
func (h *VMHooks) binaryOp(cost uint64, dest, op1, op2 int32, op func(z, x, y *big.Int) error) error {
	if err := h.useGas(cost); err != nil {
		return err
	}

	x, err := h.arena.BigInt(op1)
	if err != nil {
		return err
	}

	y, err := h.arena.BigInt(op2)
	if err != nil {
		return err
	}

	if err := h.useGasForBigInts(x, y); err != nil {
		return err
	}

	z := new(big.Int)
	if err := op(z, x, y); err != nil {
		return err
	}

	return h.arena.SetBigInt(dest, z)
}

func (h *VMHooks) unaryOp(cost uint64, dest, op1 int32, op func(z, x *big.Int) error) error {
	if err := h.useGas(cost); err != nil {
		return err
	}

	x, err := h.arena.BigInt(op1)
	if err != nil {
		return err
	}

	if err := h.useGasForBigInts(x); err != nil {
		return err
	}

	z := new(big.Int)
	if err := op(z, x); err != nil {
		return err
	}

	return h.arena.SetBigInt(dest, z)
}

func checkNonZero(y *big.Int) error {
	if y.Sign() == 0 {
		return runtime.ErrDivisionByZero
	}

	return nil
}

func checkBitwise(values ...*big.Int) error {
	for _, v := range values {
		if v.Sign() < 0 {
			return managed.ErrBitwiseNegative
		}
	}

	return nil
}

func (h *VMHooks) BigIntNew(smallValue int64) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntNew); err != nil {
		return 0, err
	}

	return h.arena.NewBigInt(big.NewInt(smallValue)), nil
}

func (h *VMHooks) BigIntUnsignedByteLength(referenceHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntUnsignedByteLength); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(referenceHandle)
	if err != nil {
		return 0, err
	}

	return int32(len(v.Bytes())), nil
}

func (h *VMHooks) BigIntSignedByteLength(referenceHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntSignedByteLength); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(referenceHandle)
	if err != nil {
		return 0, err
	}

	return int32(len(types.TopEncodeBigInt(v))), nil
}

func (h *VMHooks) BigIntGetUnsignedBytes(referenceHandle int32, byteOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetUnsignedBytes); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(referenceHandle)
	if err != nil {
		return 0, err
	}

	b := v.Bytes()
	if err := h.useGasForDataCopy(len(b)); err != nil {
		return 0, err
	}

	if err := h.memStore(byteOffset, b); err != nil {
		return 0, err
	}

	return int32(len(b)), nil
}

func (h *VMHooks) BigIntGetSignedBytes(referenceHandle int32, byteOffset int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetSignedBytes); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(referenceHandle)
	if err != nil {
		return 0, err
	}

	b := types.TopEncodeBigInt(v)
	if err := h.useGasForDataCopy(len(b)); err != nil {
		return 0, err
	}

	if err := h.memStore(byteOffset, b); err != nil {
		return 0, err
	}

	return int32(len(b)), nil
}

func (h *VMHooks) BigIntSetUnsignedBytes(destinationHandle int32, byteOffset int32, byteLength int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntSetUnsignedBytes); err != nil {
		return err
	}

	b, err := h.memLoad(byteOffset, byteLength)
	if err != nil {
		return err
	}

	if err := h.useGasForDataCopy(len(b)); err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, types.TopDecodeBigUint(b))
}

func (h *VMHooks) BigIntSetSignedBytes(destinationHandle int32, byteOffset int32, byteLength int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntSetSignedBytes); err != nil {
		return err
	}

	b, err := h.memLoad(byteOffset, byteLength)
	if err != nil {
		return err
	}

	if err := h.useGasForDataCopy(len(b)); err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, types.TopDecodeBigInt(b))
}

func (h *VMHooks) BigIntIsInt64(destinationHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntIsInt64); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(destinationHandle)
	if err != nil {
		return 0, err
	}

	return boolToInt32(v.IsInt64()), nil
}

func (h *VMHooks) BigIntGetInt64(destinationHandle int32) (int64, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntGetInt64); err != nil {
		return 0, err
	}

	v, err := h.arena.BigInt(destinationHandle)
	if err != nil {
		return 0, err
	}

	if !v.IsInt64() {
		return 0, ErrBigIntNotInt64
	}

	return v.Int64(), nil
}

func (h *VMHooks) BigIntSetInt64(destinationHandle int32, value int64) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntSetInt64); err != nil {
		return err
	}

	return h.arena.SetBigInt(destinationHandle, big.NewInt(value))
}

func (h *VMHooks) BigIntAdd(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntAdd, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			z.Add(x, y)

			return nil
		})
}

func (h *VMHooks) BigIntSub(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntSub, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			z.Sub(x, y)

			return nil
		})
}

func (h *VMHooks) BigIntMul(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntMul, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			z.Mul(x, y)

			return nil
		})
}

// BigIntTDiv divides rounding towards zero
func (h *VMHooks) BigIntTDiv(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntTDiv, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkNonZero(y); err != nil {
				return err
			}

			z.Quo(x, y)

			return nil
		})
}

// BigIntTMod is the remainder of BigIntTDiv, with the sign of the dividend
func (h *VMHooks) BigIntTMod(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntTMod, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkNonZero(y); err != nil {
				return err
			}

			z.Rem(x, y)

			return nil
		})
}

// BigIntEDiv is the euclidean division
func (h *VMHooks) BigIntEDiv(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntEDiv, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkNonZero(y); err != nil {
				return err
			}

			z.Div(x, y)

			return nil
		})
}

// BigIntEMod is the euclidean modulus, never negative
func (h *VMHooks) BigIntEMod(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntEMod, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkNonZero(y); err != nil {
				return err
			}

			z.Mod(x, y)

			return nil
		})
}

func (h *VMHooks) BigIntSqrt(destinationHandle int32, opHandle int32) error {
	return h.unaryOp(h.schedule.BigIntAPICost.BigIntSqrt, destinationHandle, opHandle,
		func(z, x *big.Int) error {
			if x.Sign() < 0 {
				return managed.ErrBadLowerBounds
			}

			z.Sqrt(x)

			return nil
		})
}

// BigIntPow charges the size of the result before computing it
func (h *VMHooks) BigIntPow(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntPow, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if y.Sign() < 0 {
				return managed.ErrNegativeExponent
			}

			if !y.IsUint64() {
				return runtime.ErrOutOfGas
			}

			bits := new(big.Int).Mul(big.NewInt(int64(x.BitLen())), y)
			if !bits.IsUint64() {
				return runtime.ErrOutOfGas
			}

			resultLen := (bits.Uint64() + 7) / 8
			if resultLen > maxBigIntResultLen {
				h.meter.SetGasLeft(0)

				return runtime.ErrOutOfGas
			}

			if resultLen > maxBigIntByteLenForNormalCost {
				if err := h.useGas(resultLen * h.schedule.BigIntAPICost.CopyPerByteForTooBig); err != nil {
					return err
				}
			}

			z.Exp(x, y, nil)

			return nil
		})
}

// BigIntLog2 returns the index of the highest set bit, -1 for zero
func (h *VMHooks) BigIntLog2(opHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntLog); err != nil {
		return 0, err
	}

	x, err := h.arena.BigInt(opHandle)
	if err != nil {
		return 0, err
	}

	if x.Sign() < 0 {
		return 0, managed.ErrBadLowerBounds
	}

	return int32(x.BitLen() - 1), nil
}

func (h *VMHooks) BigIntAbs(destinationHandle int32, opHandle int32) error {
	return h.unaryOp(h.schedule.BigIntAPICost.BigIntAbs, destinationHandle, opHandle,
		func(z, x *big.Int) error {
			z.Abs(x)

			return nil
		})
}

func (h *VMHooks) BigIntNeg(destinationHandle int32, opHandle int32) error {
	return h.unaryOp(h.schedule.BigIntAPICost.BigIntNeg, destinationHandle, opHandle,
		func(z, x *big.Int) error {
			z.Neg(x)

			return nil
		})
}

func (h *VMHooks) BigIntSign(opHandle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntSign); err != nil {
		return 0, err
	}

	x, err := h.arena.BigInt(opHandle)
	if err != nil {
		return 0, err
	}

	return int32(x.Sign()), nil
}

func (h *VMHooks) BigIntCmp(op1Handle int32, op2Handle int32) (int32, error) {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntCmp); err != nil {
		return 0, err
	}

	x, err := h.arena.BigInt(op1Handle)
	if err != nil {
		return 0, err
	}

	y, err := h.arena.BigInt(op2Handle)
	if err != nil {
		return 0, err
	}

	if err := h.useGasForBigInts(x, y); err != nil {
		return 0, err
	}

	return int32(x.Cmp(y)), nil
}

func (h *VMHooks) BigIntNot(destinationHandle int32, opHandle int32) error {
	return h.unaryOp(h.schedule.BigIntAPICost.BigIntNot, destinationHandle, opHandle,
		func(z, x *big.Int) error {
			if err := checkBitwise(x); err != nil {
				return err
			}

			z.Not(x)

			return nil
		})
}

func (h *VMHooks) BigIntAnd(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntAnd, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkBitwise(x, y); err != nil {
				return err
			}

			z.And(x, y)

			return nil
		})
}

func (h *VMHooks) BigIntOr(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntOr, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkBitwise(x, y); err != nil {
				return err
			}

			z.Or(x, y)

			return nil
		})
}

func (h *VMHooks) BigIntXor(destinationHandle int32, op1Handle int32, op2Handle int32) error {
	return h.binaryOp(h.schedule.BigIntAPICost.BigIntXor, destinationHandle, op1Handle, op2Handle,
		func(z, x, y *big.Int) error {
			if err := checkBitwise(x, y); err != nil {
				return err
			}

			z.Xor(x, y)

			return nil
		})
}

func (h *VMHooks) BigIntShr(destinationHandle int32, opHandle int32, bits int32) error {
	return h.unaryOp(h.schedule.BigIntAPICost.BigIntShr, destinationHandle, opHandle,
		func(z, x *big.Int) error {
			if err := checkBitwise(x); err != nil {
				return err
			}

			if bits < 0 {
				return ErrNegativeShift
			}

			z.Rsh(x, uint(bits))

			return nil
		})
}

// BigIntShl charges the bytes the shift adds
func (h *VMHooks) BigIntShl(destinationHandle int32, opHandle int32, bits int32) error {
	return h.unaryOp(h.schedule.BigIntAPICost.BigIntShl, destinationHandle, opHandle,
		func(z, x *big.Int) error {
			if err := checkBitwise(x); err != nil {
				return err
			}

			if bits < 0 {
				return ErrNegativeShift
			}

			added := uint64(bits) / 8
			if added > maxBigIntResultLen {
				h.meter.SetGasLeft(0)

				return runtime.ErrOutOfGas
			}

			if added > maxBigIntByteLenForNormalCost {
				if err := h.useGas(added * h.schedule.BigIntAPICost.CopyPerByteForTooBig); err != nil {
					return err
				}
			}

			z.Lsh(x, uint(bits))

			return nil
		})
}

func (h *VMHooks) BigIntFinishUnsigned(referenceHandle int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntFinishUnsigned); err != nil {
		return err
	}

	v, err := h.arena.BigInt(referenceHandle)
	if err != nil {
		return err
	}

	b, err := types.TopEncodeBigUint(v)
	if err != nil {
		return ErrNegativeUnsigned
	}

	return h.finish(b)
}

func (h *VMHooks) BigIntFinishSigned(referenceHandle int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntFinishSigned); err != nil {
		return err
	}

	v, err := h.arena.BigInt(referenceHandle)
	if err != nil {
		return err
	}

	return h.finish(types.TopEncodeBigInt(v))
}

// BigIntToString writes the decimal representation into a buffer
func (h *VMHooks) BigIntToString(bigIntHandle int32, destinationHandle int32) error {
	if err := h.useGas(h.schedule.BigIntAPICost.BigIntToString); err != nil {
		return err
	}

	v, err := h.arena.BigInt(bigIntHandle)
	if err != nil {
		return err
	}

	s := v.String()
	if err := h.useGasForDataCopy(len(s)); err != nil {
		return err
	}

	return h.arena.SetBuffer(destinationHandle, []byte(s))
}
