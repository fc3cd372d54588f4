package managed

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
)

const (
	guardBits = 32

	// arguments of exp are bounded so that results stay representable
	maxExpArgument = 1 << 20

	minSciExponent = -400
)

func (a *Arena) workFloat() *big.Float {
	return new(big.Float).SetPrec(a.precision + guardBits).SetMode(big.ToNearestEven)
}

// round returns v at the arena precision
func (a *Arena) round(v *big.Float) (*big.Float, error) {
	if v.IsInf() {
		return nil, ErrBigFloatNotNormal
	}

	return a.newFloat().Set(v), nil
}

// FloatFromParts builds integral + fractional * 10^exponent. The exponent must not be positive
// and the fractional part takes the sign of the integral part.
func (a *Arena) FloatFromParts(integral, fractional, exponent int32) (*big.Float, error) {
	if exponent > 0 {
		return nil, ErrPositiveExponent
	}

	if exponent < minSciExponent {
		return nil, ErrExponentTooSmall
	}

	if fractional < 0 {
		fractional = -fractional
	}

	frac, err := a.FloatFromSci(int64(fractional), int64(exponent))
	if err != nil {
		return nil, err
	}

	v := a.workFloat().SetInt64(int64(integral))
	if integral < 0 {
		v.Sub(v, frac)
	} else {
		v.Add(v, frac)
	}

	return a.round(v)
}

// FloatFromFrac builds numerator / denominator
func (a *Arena) FloatFromFrac(numerator, denominator int64) (*big.Float, error) {
	if denominator == 0 {
		return nil, runtime.ErrDivisionByZero
	}

	n := a.workFloat().SetInt64(numerator)
	d := a.workFloat().SetInt64(denominator)

	return a.round(n.Quo(n, d))
}

// FloatFromSci builds significand * 10^exponent, exponent <= 0
func (a *Arena) FloatFromSci(significand, exponent int64) (*big.Float, error) {
	if exponent > 0 {
		return nil, ErrPositiveExponent
	}

	if exponent < minSciExponent {
		return nil, ErrExponentTooSmall
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(-exponent), nil)

	v := a.workFloat().SetInt64(significand)
	v.Quo(v, a.workFloat().SetInt(scale))

	return a.round(v)
}

// Quo divides x by y
func (a *Arena) Quo(x, y *big.Float) (*big.Float, error) {
	if y.Sign() == 0 {
		return nil, runtime.ErrDivisionByZero
	}

	return a.round(a.workFloat().Quo(x, y))
}

// Sqrt returns the square root of x, x >= 0
func (a *Arena) Sqrt(x *big.Float) (*big.Float, error) {
	if x.Sign() < 0 {
		return nil, ErrBadLowerBounds
	}

	if x.Sign() == 0 {
		return a.newFloat(), nil
	}

	return a.round(a.workFloat().Sqrt(x))
}

// Pow raises x to an integer power
func (a *Arena) Pow(x *big.Float, exponent int32) (*big.Float, error) {
	n := int64(exponent)
	neg := n < 0

	if neg {
		if x.Sign() == 0 {
			return nil, runtime.ErrDivisionByZero
		}

		n = -n
	}

	result := a.workFloat().SetInt64(1)
	base := a.workFloat().Set(x)

	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}

		base.Mul(base, base)
		n >>= 1

		if result.IsInf() {
			return nil, ErrBigFloatNotNormal
		}
	}

	if neg {
		result.Quo(a.workFloat().SetInt64(1), result)
	}

	return a.round(result)
}

// Floor rounds towards negative infinity
func Floor(x *big.Float) *big.Int {
	i, acc := x.Int(nil)
	if x.Sign() < 0 && acc != big.Exact {
		i.Sub(i, big.NewInt(1))
	}

	return i
}

// Ceil rounds towards positive infinity
func Ceil(x *big.Float) *big.Int {
	i, acc := x.Int(nil)
	if x.Sign() > 0 && acc != big.Exact {
		i.Add(i, big.NewInt(1))
	}

	return i
}

// Truncate rounds towards zero
func Truncate(x *big.Float) *big.Int {
	i, _ := x.Int(nil)

	return i
}

// atanhSeries computes 2 * atanh(z) = ln((1+z)/(1-z)) for |z| < 1
func (a *Arena) atanhSeries(z *big.Float) *big.Float {
	sum := a.workFloat().Set(z)
	z2 := a.workFloat().Mul(z, z)
	term := a.workFloat().Set(z)
	eps := a.epsilon()

	for k := int64(3); ; k += 2 {
		term.Mul(term, z2)
		add := a.workFloat().Quo(term, a.workFloat().SetInt64(k))

		if a.workFloat().Abs(add).Cmp(eps) < 0 {
			break
		}

		sum.Add(sum, add)
	}

	return sum.Mul(sum, a.workFloat().SetInt64(2))
}

func (a *Arena) epsilon() *big.Float {
	return a.workFloat().SetMantExp(big.NewFloat(1), -int(a.precision+guardBits))
}

func (a *Arena) ln2() *big.Float {
	third := a.workFloat().Quo(a.workFloat().SetInt64(1), a.workFloat().SetInt64(3))

	return a.atanhSeries(third)
}

func (a *Arena) ln(x *big.Float) (*big.Float, error) {
	if x.Sign() <= 0 {
		return nil, ErrBadLowerBounds
	}

	// x = m * 2^e with 0.5 <= m < 1
	m := a.workFloat()
	e := x.MantExp(m)

	one := a.workFloat().SetInt64(1)
	num := a.workFloat().Sub(m, one)
	den := a.workFloat().Add(m, one)

	lnM := a.atanhSeries(num.Quo(num, den))
	lnE := a.workFloat().Mul(a.ln2(), a.workFloat().SetInt64(int64(e)))

	return lnM.Add(lnM, lnE), nil
}

// Ln is the natural logarithm, x > 0
func (a *Arena) Ln(x *big.Float) (*big.Float, error) {
	v, err := a.ln(x)
	if err != nil {
		return nil, err
	}

	return a.round(v)
}

// Log2 is the base 2 logarithm, x > 0
func (a *Arena) Log2(x *big.Float) (*big.Float, error) {
	v, err := a.ln(x)
	if err != nil {
		return nil, err
	}

	return a.round(v.Quo(v, a.ln2()))
}

// Exp is e^x
func (a *Arena) Exp(x *big.Float) (*big.Float, error) {
	if a.workFloat().Abs(x).Cmp(big.NewFloat(maxExpArgument)) > 0 {
		return nil, ErrBigFloatNotNormal
	}

	// exp(x) = exp(x / 2^k)^(2^k) with |x / 2^k| < 1/2
	k := 0
	if exp := x.MantExp(nil); exp > -1 {
		k = exp + 1
	}

	r := a.workFloat().SetMantExp(x, -k)

	sum := a.workFloat().SetInt64(1)
	term := a.workFloat().SetInt64(1)
	eps := a.epsilon()

	for n := int64(1); ; n++ {
		term.Mul(term, r)
		term.Quo(term, a.workFloat().SetInt64(n))

		if a.workFloat().Abs(term).Cmp(eps) < 0 {
			break
		}

		sum.Add(sum, term)
	}

	for i := 0; i < k; i++ {
		sum.Mul(sum, sum)
	}

	return a.round(sum)
}

// E is Euler's number at the arena precision
func (a *Arena) E() *big.Float {
	v, _ := a.Exp(big.NewFloat(1))

	return v
}

// Pi is computed with Machin's formula: pi = 16 atan(1/5) - 4 atan(1/239)
func (a *Arena) Pi() *big.Float {
	pi := a.workFloat().Mul(a.atanInv(5), a.workFloat().SetInt64(16))
	pi.Sub(pi, a.workFloat().Mul(a.atanInv(239), a.workFloat().SetInt64(4)))

	return a.newFloat().Set(pi)
}

// atanInv computes atan(1/n)
func (a *Arena) atanInv(n int64) *big.Float {
	x := a.workFloat().Quo(a.workFloat().SetInt64(1), a.workFloat().SetInt64(n))
	x2 := a.workFloat().Mul(x, x)
	sum := a.workFloat().Set(x)
	term := a.workFloat().Set(x)
	eps := a.epsilon()

	for k := int64(3); ; k += 2 {
		term.Mul(term, x2)
		add := a.workFloat().Quo(term, a.workFloat().SetInt64(k))

		if add.Cmp(eps) < 0 {
			break
		}

		if (k/2)%2 == 1 {
			sum.Sub(sum, add)
		} else {
			sum.Add(sum, add)
		}
	}

	return sum
}

// EncodeFloat serializes a big float for storage in a buffer
func EncodeFloat(v *big.Float) ([]byte, error) {
	return v.GobEncode()
}

// DecodeFloat parses a buffer written by EncodeFloat and rounds it to the arena precision
func (a *Arena) DecodeFloat(b []byte) (*big.Float, error) {
	v := new(big.Float)
	if err := v.GobDecode(b); err != nil {
		return nil, ErrBigFloatEncoding
	}

	return a.round(v)
}
