package managed

import (
	"crypto/elliptic"
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
)

// Reserved handles. They are negative, exist in every frame and are created on first use.
const (
	HandleZeroBigInt         int32 = -10
	HandleCallValueEGLD      int32 = -11
	HandleCallValueMultiESDT int32 = -12
	HandleScratchBigInt1     int32 = -13
	HandleScratchBigInt2     int32 = -14
	HandleScratchBigFloat    int32 = -15
	HandleScratchBuffer1     int32 = -20
	HandleScratchBuffer2     int32 = -21
	HandleAddressCaller      int32 = -30
	HandleAddressSelf        int32 = -31
	HandleCallbackClosure    int32 = -40
	HandleEmptyBuffer        int32 = -60
	HandleEgldIdentifier     int32 = -61
)

const (
	counterBits = 20
	counterMask = 1<<counterBits - 1
	maxTag      = 1<<(31-counterBits) - 1
)

var (
	ErrInvalidHandle      = runtime.NewExecutionFailed("invalid handle")
	ErrNoBigInt           = runtime.NewExecutionFailed("no bigInt under the given handle")
	ErrNoBigFloat         = runtime.NewExecutionFailed("no bigFloat under the given handle")
	ErrNoBuffer           = runtime.NewExecutionFailed("no managed buffer under the given handle")
	ErrNoMap              = runtime.NewExecutionFailed("no managed map under the given handle")
	ErrNoEllipticCurve    = runtime.NewExecutionFailed("no elliptic curve under the given handle")
	ErrTooManyHandles     = runtime.NewExecutionFailed("too many handles")
	ErrBigFloatNotNormal  = runtime.NewExecutionFailed("number is not normal")
	ErrBitwiseNegative    = runtime.NewExecutionFailed("bitwise operations only allowed on positive integers")
	ErrNegativeExponent   = runtime.NewExecutionFailed("exponent is negative")
	ErrPositiveExponent   = runtime.NewExecutionFailed("exponent is positive")
	ErrExponentTooSmall   = runtime.NewExecutionFailed("exponent is too small")
	ErrBadLowerBounds     = runtime.NewExecutionFailed("bad bounds (lower)")
	ErrBigFloatEncoding   = runtime.NewExecutionFailed("invalid big float encoding")
	ErrArgBufferMalformed = runtime.NewExecutionFailed("managed vec of buffers has an invalid length")
	ErrPaymentMalformed   = runtime.NewExecutionFailed("managed vec of payments has an invalid length")
)

// Arena owns every managed value of one frame. Positive handles are minted in
// increasing order and carry the frame tag in their high bits, so a handle
// minted by another frame never resolves here.
type Arena struct {
	tag  int32
	next int32

	precision uint

	bigInts   map[int32]*big.Int
	bigFloats map[int32]*big.Float
	buffers   map[int32][]byte
	maps      map[int32]map[string][]byte
	curves    map[int32]elliptic.Curve
}

// NewArena creates the arena of the frame with the given id
func NewArena(frameID uint64, precision uint) *Arena {
	return &Arena{
		tag:       int32(frameID%maxTag) + 1,
		precision: precision,
		bigInts:   map[int32]*big.Int{},
		bigFloats: map[int32]*big.Float{},
		buffers:   map[int32][]byte{},
		maps:      map[int32]map[string][]byte{},
		curves:    map[int32]elliptic.Curve{},
	}
}

// Precision is the mantissa precision of the big floats of the arena
func (a *Arena) Precision() uint {
	return a.precision
}

func (a *Arena) mint() int32 {
	if a.next >= counterMask {
		// recovered by the runtimes as an early exit
		panic(ErrTooManyHandles)
	}

	a.next++

	return a.tag<<counterBits | a.next
}

// owned reports whether the handle may be resolved by this arena
func (a *Arena) owned(h int32) bool {
	if h < 0 {
		return true
	}

	return h>>counterBits == a.tag && h&counterMask != 0
}

// NewBigInt stores a copy of v and returns its handle
func (a *Arena) NewBigInt(v *big.Int) int32 {
	h := a.mint()
	a.bigInts[h] = new(big.Int).Set(v)

	return h
}

// BigInt returns the value under h. Reserved handles read as zero until written.
func (a *Arena) BigInt(h int32) (*big.Int, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	v, ok := a.bigInts[h]
	if ok {
		return v, nil
	}

	if h < 0 {
		v = new(big.Int)
		a.bigInts[h] = v

		return v, nil
	}

	return nil, ErrNoBigInt
}

// BigIntForWrite returns the value under h, creating it when the handle is free
func (a *Arena) BigIntForWrite(h int32) (*big.Int, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	v, ok := a.bigInts[h]
	if !ok {
		v = new(big.Int)
		a.bigInts[h] = v
	}

	return v, nil
}

// SetBigInt overwrites the value under h with a copy of v
func (a *Arena) SetBigInt(h int32, v *big.Int) error {
	dest, err := a.BigIntForWrite(h)
	if err != nil {
		return err
	}

	dest.Set(v)

	return nil
}

func (a *Arena) NewBigFloat(v *big.Float) int32 {
	h := a.mint()
	a.bigFloats[h] = a.newFloat().Set(v)

	return h
}

func (a *Arena) newFloat() *big.Float {
	return new(big.Float).SetPrec(a.precision).SetMode(big.ToNearestEven)
}

func (a *Arena) BigFloat(h int32) (*big.Float, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	v, ok := a.bigFloats[h]
	if ok {
		return v, nil
	}

	if h < 0 {
		v = a.newFloat()
		a.bigFloats[h] = v

		return v, nil
	}

	return nil, ErrNoBigFloat
}

func (a *Arena) BigFloatForWrite(h int32) (*big.Float, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	v, ok := a.bigFloats[h]
	if !ok {
		v = a.newFloat()
		a.bigFloats[h] = v
	}

	return v, nil
}

// SetBigFloat stores v under h, rounded to the arena precision
func (a *Arena) SetBigFloat(h int32, v *big.Float) error {
	if v.IsInf() {
		return ErrBigFloatNotNormal
	}

	dest, err := a.BigFloatForWrite(h)
	if err != nil {
		return err
	}

	dest.Set(v)

	return nil
}

// NewBuffer stores a copy of b and returns its handle
func (a *Arena) NewBuffer(b []byte) int32 {
	h := a.mint()
	a.buffers[h] = append([]byte{}, b...)

	return h
}

// Buffer returns a copy of the bytes under h
func (a *Arena) Buffer(h int32) ([]byte, error) {
	b, err := a.bufferRef(h)
	if err != nil {
		return nil, err
	}

	return append([]byte{}, b...), nil
}

// BufferLen returns the length of the buffer under h
func (a *Arena) BufferLen(h int32) (int, error) {
	b, err := a.bufferRef(h)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

func (a *Arena) bufferRef(h int32) ([]byte, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	b, ok := a.buffers[h]
	if ok {
		return b, nil
	}

	if h < 0 {
		return nil, nil
	}

	return nil, ErrNoBuffer
}

// SetBuffer overwrites the buffer under h with a copy of b
func (a *Arena) SetBuffer(h int32, b []byte) error {
	if !a.owned(h) {
		return ErrInvalidHandle
	}

	a.buffers[h] = append([]byte{}, b...)

	return nil
}

// AppendBuffer appends b to the buffer under h
func (a *Arena) AppendBuffer(h int32, b []byte) error {
	cur, err := a.bufferRef(h)
	if err != nil {
		return err
	}

	a.buffers[h] = append(append(make([]byte, 0, len(cur)+len(b)), cur...), b...)

	return nil
}

func (a *Arena) NewMap() int32 {
	h := a.mint()
	a.maps[h] = map[string][]byte{}

	return h
}

// Map returns the map under h. The map is shared with the arena.
func (a *Arena) Map(h int32) (map[string][]byte, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	m, ok := a.maps[h]
	if ok {
		return m, nil
	}

	if h < 0 {
		m = map[string][]byte{}
		a.maps[h] = m

		return m, nil
	}

	return nil, ErrNoMap
}

func (a *Arena) NewEllipticCurve(c elliptic.Curve) int32 {
	h := a.mint()
	a.curves[h] = c

	return h
}

func (a *Arena) EllipticCurve(h int32) (elliptic.Curve, error) {
	if !a.owned(h) {
		return nil, ErrInvalidHandle
	}

	c, ok := a.curves[h]
	if !ok {
		return nil, ErrNoEllipticCurve
	}

	return c, nil
}
