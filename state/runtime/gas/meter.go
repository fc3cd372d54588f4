package gas

import (
	"github.com/0xPolygon/wasm-vm/state/runtime"
)

// Meter tracks the gas of one frame
type Meter struct {
	limit  uint64
	left   uint64
	locked uint64
}

func NewMeter(limit uint64) *Meter {
	return &Meter{limit: limit, left: limit}
}

// UseGas charges cost. When there is not enough gas left the meter is drained.
func (m *Meter) UseGas(cost uint64) error {
	if cost > m.left {
		m.left = 0

		return runtime.ErrOutOfGas
	}

	m.left -= cost

	return nil
}

func (m *Meter) Limit() uint64 {
	return m.limit
}

func (m *Meter) GasLeft() uint64 {
	return m.left
}

func (m *Meter) GasUsed() uint64 {
	return m.limit - m.left
}

// Locked is the gas reserved for callbacks
func (m *Meter) Locked() uint64 {
	return m.locked
}

// Refund gives back gas that was handed to a nested frame and not used
func (m *Meter) Refund(n uint64) {
	m.left += n
	if m.left > m.limit {
		m.left = m.limit
	}
}

// SetGasLeft overwrites the remaining gas. It can only lower it.
func (m *Meter) SetGasLeft(n uint64) {
	if n < m.left {
		m.left = n
	}
}

// Lock reserves n for a callback; the gas is charged now and reported through Locked
func (m *Meter) Lock(n uint64) error {
	if err := m.UseGas(n); err != nil {
		return err
	}

	m.locked += n

	return nil
}

// ChildGasLimit returns the gas handed to a nested call. A request of 0, or one
// above what is available, gets everything but the return path reserve.
func (m *Meter) ChildGasLimit(requested, reserve uint64) (uint64, error) {
	if m.left <= reserve {
		return 0, runtime.ErrOutOfGas
	}

	available := m.left - reserve
	if requested == 0 || requested > available {
		return available, nil
	}

	return requested, nil
}
