package types

import (
	"encoding/binary"
	"errors"
	"math/big"
)

var (
	ErrInputTooShort = errors.New("input too short")
	ErrInputTooLong  = errors.New("input too long")
	ErrNegativeUint  = errors.New("negative value for unsigned encoding")
)

// TopEncodeUint64 encodes v big endian without leading zero bytes. Zero encodes to an empty slice.
func TopEncodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)

	i := 0
	for i < 8 && buf[i] == 0 {
		i++
	}

	return buf[i:]
}

// TopDecodeUint64 decodes a top encoded unsigned 64 bit number
func TopDecodeUint64(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, ErrInputTooLong
	}

	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}

	return v, nil
}

// TopEncodeInt64 encodes v as minimal two's complement big endian bytes
func TopEncodeInt64(v int64) []byte {
	return TopEncodeBigInt(big.NewInt(v))
}

// TopDecodeInt64 decodes minimal two's complement big endian bytes
func TopDecodeInt64(b []byte) (int64, error) {
	if len(b) > 8 {
		return 0, ErrInputTooLong
	}

	v := TopDecodeBigInt(b)
	if !v.IsInt64() {
		return 0, ErrInputTooLong
	}

	return v.Int64(), nil
}

// TopEncodeBigUint encodes a non negative integer as minimal big endian bytes
func TopEncodeBigUint(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, ErrNegativeUint
	}

	return v.Bytes(), nil
}

// TopDecodeBigUint decodes big endian unsigned bytes
func TopDecodeBigUint(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// TopEncodeBigInt encodes v as minimal two's complement big endian bytes. Zero encodes to
// an empty slice.
func TopEncodeBigInt(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return []byte{}
	case 1:
		b := v.Bytes()
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}

		return b
	}

	// negative: two's complement over the smallest byte width that fits
	length := (new(big.Int).Not(v).BitLen())/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(length*8))
	b := new(big.Int).Add(mod, v).Bytes()

	if len(b) < length {
		padded := make([]byte, length)
		for i := 0; i < length-len(b); i++ {
			padded[i] = 0xff
		}

		copy(padded[length-len(b):], b)
		b = padded
	}

	return b
}

// TopDecodeBigInt decodes two's complement big endian bytes
func TopDecodeBigInt(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}

	return v
}

// NestedEncoder appends nested encoded values to a buffer
type NestedEncoder struct {
	buf []byte
}

func (e *NestedEncoder) Bytes() []byte {
	return e.buf
}

// WriteBytes writes a 4 byte big endian length prefix followed by the bytes
func (e *NestedEncoder) WriteBytes(b []byte) {
	e.WriteUint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *NestedEncoder) WriteUint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

func (e *NestedEncoder) WriteUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *NestedEncoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)

	return nil
}

// WriteBigUint writes a length prefixed unsigned big integer
func (e *NestedEncoder) WriteBigUint(v *big.Int) {
	e.WriteBytes(v.Bytes())
}

// NestedDecoder reads nested encoded values from a buffer
type NestedDecoder struct {
	buf []byte
	pos int
}

func NewNestedDecoder(buf []byte) *NestedDecoder {
	return &NestedDecoder{buf: buf}
}

// Remaining returns the number of bytes not consumed yet
func (d *NestedDecoder) Remaining() int {
	return len(d.buf) - d.pos
}

func (d *NestedDecoder) Done() bool {
	return d.pos == len(d.buf)
}

func (d *NestedDecoder) Peek() (byte, error) {
	if d.Remaining() < 1 {
		return 0, ErrInputTooShort
	}

	return d.buf[d.pos], nil
}

func (d *NestedDecoder) Skip(n int) error {
	if d.Remaining() < n {
		return ErrInputTooShort
	}

	d.pos += n

	return nil
}

func (d *NestedDecoder) ReadUint32() (uint32, error) {
	if d.Remaining() < 4 {
		return 0, ErrInputTooShort
	}

	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4

	return v, nil
}

func (d *NestedDecoder) ReadUint64() (uint64, error) {
	if d.Remaining() < 8 {
		return 0, ErrInputTooShort
	}

	v := binary.BigEndian.Uint64(d.buf[d.pos:])
	d.pos += 8

	return v, nil
}

// ReadBytes reads a length prefixed byte slice
func (d *NestedDecoder) ReadBytes() ([]byte, error) {
	size, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}

	if uint64(d.Remaining()) < uint64(size) {
		return nil, ErrInputTooShort
	}

	b := make([]byte, size)
	copy(b, d.buf[d.pos:])
	d.pos += int(size)

	return b, nil
}

// ReadBigUint reads a length prefixed unsigned big integer
func (d *NestedDecoder) ReadBigUint() (*big.Int, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(b), nil
}
