package types

import (
	"errors"
	"math/big"
)

var ErrInvalidPayment = errors.New("invalid esdt token payment encoding")

// EsdtTokenPayment is a (token, nonce, amount) triple attached to a call
type EsdtTokenPayment struct {
	TokenID []byte
	Nonce   uint64
	Amount  *big.Int
}

func NewEsdtTokenPayment(token []byte, nonce uint64, amount *big.Int) *EsdtTokenPayment {
	return &EsdtTokenPayment{
		TokenID: append([]byte{}, token...),
		Nonce:   nonce,
		Amount:  new(big.Int).Set(amount),
	}
}

func (p *EsdtTokenPayment) Copy() *EsdtTokenPayment {
	return NewEsdtTokenPayment(p.TokenID, p.Nonce, p.Amount)
}

// NestedEncode writes len(token) || token || nonce || len(amount) || amount
func (p *EsdtTokenPayment) NestedEncode(e *NestedEncoder) {
	e.WriteBytes(p.TokenID)
	e.WriteUint64(p.Nonce)
	e.WriteBigUint(p.Amount)
}

// TopEncode encodes a single payment. The output never carries the legacy type prefix.
func (p *EsdtTokenPayment) TopEncode() []byte {
	e := &NestedEncoder{}
	p.NestedEncode(e)

	return e.Bytes()
}

// DecodeNestedEsdtTokenPayment reads one payment record. Records written by older encoders
// start with a token type byte of 0 or 1. Such a prefix is recognized because a plain record
// starts with the 4 byte length of a non empty token identifier: that length can neither read
// as zero nor have its most significant byte set to 1.
func DecodeNestedEsdtTokenPayment(d *NestedDecoder) (*EsdtTokenPayment, error) {
	if hasLegacyPrefix(d) {
		if err := d.Skip(1); err != nil {
			return nil, err
		}
	}

	token, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}

	if len(token) == 0 {
		return nil, ErrInvalidPayment
	}

	nonce, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}

	amount, err := d.ReadBigUint()
	if err != nil {
		return nil, err
	}

	return &EsdtTokenPayment{TokenID: token, Nonce: nonce, Amount: amount}, nil
}

func hasLegacyPrefix(d *NestedDecoder) bool {
	if d.Remaining() < 5 {
		return false
	}

	first := d.buf[d.pos]
	if first == 1 {
		return true
	}

	return first == 0 && d.buf[d.pos+1] == 0 && d.buf[d.pos+2] == 0 && d.buf[d.pos+3] == 0
}

// TopDecodeEsdtTokenPayment decodes a buffer holding exactly one payment
func TopDecodeEsdtTokenPayment(b []byte) (*EsdtTokenPayment, error) {
	d := NewNestedDecoder(b)

	p, err := DecodeNestedEsdtTokenPayment(d)
	if err != nil {
		return nil, err
	}

	if !d.Done() {
		return nil, ErrInputTooLong
	}

	return p, nil
}

// EncodePayments nested encodes a list of payments, one after the other
func EncodePayments(payments []*EsdtTokenPayment) []byte {
	e := &NestedEncoder{}
	for _, p := range payments {
		p.NestedEncode(e)
	}

	return e.Bytes()
}

// DecodePayments decodes a concatenation of payment records
func DecodePayments(b []byte) ([]*EsdtTokenPayment, error) {
	d := NewNestedDecoder(b)
	payments := []*EsdtTokenPayment{}

	for !d.Done() {
		p, err := DecodeNestedEsdtTokenPayment(d)
		if err != nil {
			return nil, err
		}

		payments = append(payments, p)
	}

	return payments, nil
}
