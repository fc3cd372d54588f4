package managed

import (
	"encoding/binary"
	"math/big"

	"github.com/0xPolygon/wasm-vm/types"
)

const (
	handleLen  = 4
	paymentLen = 16
)

// ReadBufferVec resolves a managed vec of buffers: a buffer holding 4 byte big
// endian handles, each one pointing to a buffer
func (a *Arena) ReadBufferVec(h int32) ([][]byte, error) {
	raw, err := a.bufferRef(h)
	if err != nil {
		return nil, err
	}

	if len(raw)%handleLen != 0 {
		return nil, ErrArgBufferMalformed
	}

	out := make([][]byte, 0, len(raw)/handleLen)

	for i := 0; i < len(raw); i += handleLen {
		item, err := a.Buffer(int32(binary.BigEndian.Uint32(raw[i:])))
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// WriteBufferVec mints one buffer per item and stores their handles under h
func (a *Arena) WriteBufferVec(h int32, items [][]byte) error {
	if !a.owned(h) {
		return ErrInvalidHandle
	}

	raw := make([]byte, 0, len(items)*handleLen)

	for _, item := range items {
		raw = binary.BigEndian.AppendUint32(raw, uint32(a.NewBuffer(item)))
	}

	a.buffers[h] = raw

	return nil
}

// ReadPayments resolves a managed vec of payments. Each record is 16 bytes:
// token buffer handle, nonce (8 bytes) and amount big int handle, big endian.
func (a *Arena) ReadPayments(h int32) ([]*types.EsdtTokenPayment, error) {
	raw, err := a.bufferRef(h)
	if err != nil {
		return nil, err
	}

	if len(raw)%paymentLen != 0 {
		return nil, ErrPaymentMalformed
	}

	out := make([]*types.EsdtTokenPayment, 0, len(raw)/paymentLen)

	for i := 0; i < len(raw); i += paymentLen {
		token, err := a.Buffer(int32(binary.BigEndian.Uint32(raw[i:])))
		if err != nil {
			return nil, err
		}

		amount, err := a.BigInt(int32(binary.BigEndian.Uint32(raw[i+12:])))
		if err != nil {
			return nil, err
		}

		out = append(out, types.NewEsdtTokenPayment(token, binary.BigEndian.Uint64(raw[i+4:]), amount))
	}

	return out, nil
}

// WritePayments stores the payments under h in the 16 byte record layout
func (a *Arena) WritePayments(h int32, payments []*types.EsdtTokenPayment) error {
	if !a.owned(h) {
		return ErrInvalidHandle
	}

	raw := make([]byte, 0, len(payments)*paymentLen)

	for _, p := range payments {
		amount := p.Amount
		if amount == nil {
			amount = new(big.Int)
		}

		raw = binary.BigEndian.AppendUint32(raw, uint32(a.NewBuffer(p.TokenID)))
		raw = binary.BigEndian.AppendUint64(raw, p.Nonce)
		raw = binary.BigEndian.AppendUint32(raw, uint32(a.NewBigInt(amount)))
	}

	a.buffers[h] = raw

	return nil
}

// Seed fills the reserved handles of a frame
func (a *Arena) Seed(caller, self types.Address, value *big.Int, payments []*types.EsdtTokenPayment, closure []byte) error {
	if value == nil {
		value = new(big.Int)
	}

	a.bigInts[HandleZeroBigInt] = new(big.Int)
	a.bigInts[HandleCallValueEGLD] = new(big.Int).Set(value)
	a.buffers[HandleAddressCaller] = caller.Bytes()
	a.buffers[HandleAddressSelf] = self.Bytes()
	a.buffers[HandleCallbackClosure] = append([]byte{}, closure...)
	a.buffers[HandleEmptyBuffer] = []byte{}
	a.buffers[HandleEgldIdentifier] = []byte(types.EGLDTokenIdentifier)

	return a.WritePayments(HandleCallValueMultiESDT, payments)
}
