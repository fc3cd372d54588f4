package wasm

import (
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
)

const (
	opUnreachable  = 0x00
	opNop          = 0x01
	opBlock        = 0x02
	opLoop         = 0x03
	opIf           = 0x04
	opElse         = 0x05
	opEnd          = 0x0b
	opBr           = 0x0c
	opBrIf         = 0x0d
	opBrTable      = 0x0e
	opReturn       = 0x0f
	opCall         = 0x10
	opCallIndirect = 0x11
	opDrop         = 0x1a
	opSelect       = 0x1b
	opSelectTyped  = 0x1c
	opLocalGet     = 0x20
	opLocalTee     = 0x22
	opGlobalGet    = 0x23
	opGlobalSet    = 0x24
	opTableGet     = 0x25
	opTableSet     = 0x26
	opI32Load      = 0x28
	opI64Store32   = 0x3e
	opMemorySize   = 0x3f
	opMemoryGrow   = 0x40
	opI32Const     = 0x41
	opI64Const     = 0x42
	opI32Eqz       = 0x45
	opI64LtS       = 0x53
	opI64Sub       = 0x7d
	opI32WrapI64   = 0xa7
	opI64ExtendU   = 0xad
	opI32Extend8S  = 0xc0
	opI64Extend32S = 0xc4
	opRefNull      = 0xd0
	opRefIsNull    = 0xd1
	opRefFunc      = 0xd2
	opMiscPrefix   = 0xfc
)

// isFloatMemoryOp covers f32/f64 loads and stores
func isFloatMemoryOp(op byte) bool {
	return op == 0x2a || op == 0x2b || op == 0x38 || op == 0x39
}

func isDivision(op byte) bool {
	return (op >= 0x6d && op <= 0x70) || (op >= 0x7f && op <= 0x82)
}

// readBlockType skips the type of a block, loop or if
func readBlockType(r *reader) error {
	b, err := r.byte()
	if err != nil {
		return err
	}

	switch b {
	case blockTypeNil, 0x7f, 0x7e, 0x70, 0x6f:
		return nil
	case 0x7d, 0x7c, 0x7b:
		return errOpcodeForbidden
	}

	// type index as a signed 33 bit integer, the first byte is already read
	if b&0x80 == 0 {
		return nil
	}

	return r.sleb(4)
}

func readMemArg(r *reader) error {
	if _, err := r.uleb(); err != nil {
		return err
	}

	_, err := r.uleb()

	return err
}

func readIndices(r *reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.uleb(); err != nil {
			return err
		}
	}

	return nil
}

// decodeInstruction reads one instruction, rejecting the float, SIMD and threads
// proposals, and reports its cost class
func decodeInstruction(r *reader, costs *gas.WASMOpcodeCost) (instruction, error) {
	ins := instruction{start: r.pos}

	op, err := r.byte()
	if err != nil {
		return ins, err
	}

	switch {
	case op == opUnreachable || op == opNop:
		ins.cost = costs.Control
		ins.boundary = op == opUnreachable

	case op == opBlock || op == opLoop || op == opIf:
		ins.cost = costs.Control
		ins.boundary = true
		err = readBlockType(r)

	case op == opElse || op == opEnd || op == opReturn:
		ins.cost = costs.Control
		ins.boundary = true

	case op == opBr || op == opBrIf:
		ins.cost = costs.Control
		ins.boundary = true
		_, err = r.uleb()

	case op == opBrTable:
		ins.cost = costs.Control
		ins.boundary = true

		var n uint64
		if n, err = r.uleb(); err == nil {
			err = readIndices(r, int(n)+1)
		}

	case op == opCall:
		ins.cost = costs.Call
		ins.boundary = true
		_, err = r.uleb()

	case op == opCallIndirect:
		ins.cost = costs.CallIndirect
		ins.boundary = true
		err = readIndices(r, 2)

	case op == opDrop || op == opSelect:
		ins.cost = costs.Parametric

	case op == opSelectTyped:
		ins.cost = costs.Parametric

		var n uint64
		if n, err = r.uleb(); err == nil {
			_, err = r.bytes(n)
		}

	case op >= opLocalGet && op <= opGlobalSet:
		ins.cost = costs.Variable
		_, err = r.uleb()

	case op == opTableGet || op == opTableSet:
		ins.cost = costs.Variable
		_, err = r.uleb()

	case op >= opI32Load && op <= opI64Store32:
		if isFloatMemoryOp(op) {
			return ins, errOpcodeForbidden
		}

		if op <= 0x35 {
			ins.cost = costs.MemoryLoad
		} else {
			ins.cost = costs.MemoryStore
		}

		err = readMemArg(r)

	case op == opMemorySize:
		ins.cost = costs.MemorySize
		_, err = r.uleb()

	case op == opMemoryGrow:
		ins.cost = costs.MemoryGrow
		_, err = r.uleb()

	case op == opI32Const:
		ins.cost = costs.Const
		err = r.sleb(5)

	case op == opI64Const:
		ins.cost = costs.Const
		err = r.sleb(10)

	case op >= opI32Eqz && op <= 0x5a:
		ins.cost = costs.Numeric

	case op >= 0x67 && op <= 0x8a:
		if isDivision(op) {
			ins.cost = costs.Division
		} else {
			ins.cost = costs.Numeric
		}

	case op == opI32WrapI64 || op == 0xac || op == opI64ExtendU:
		ins.cost = costs.Conversion

	case op >= opI32Extend8S && op <= opI64Extend32S:
		ins.cost = costs.Conversion

	case op == opRefNull:
		ins.cost = costs.Variable
		_, err = r.byte()

	case op == opRefIsNull:
		ins.cost = costs.Variable

	case op == opRefFunc:
		ins.cost = costs.Variable
		_, err = r.uleb()

	case op == opMiscPrefix:
		err = decodeMisc(r, &ins, costs)

	default:
		// f32/f64 constants, comparisons and arithmetic, float conversions,
		// tail calls, SIMD and atomics
		return ins, errOpcodeForbidden
	}

	if err != nil {
		return ins, err
	}

	ins.end = r.pos

	return ins, nil
}

func decodeMisc(r *reader, ins *instruction, costs *gas.WASMOpcodeCost) error {
	sub, err := r.uleb()
	if err != nil {
		return err
	}

	ins.cost = costs.BulkMemory

	switch sub {
	case 8: // memory.init
		return readIndices(r, 2)
	case 9, 13, 15, 16, 17: // data.drop, elem.drop, table.grow, table.size, table.fill
		return readIndices(r, 1)
	case 10, 12, 14: // memory.copy, table.init, table.copy
		return readIndices(r, 2)
	case 11: // memory.fill
		return readIndices(r, 1)
	default:
		// saturating float truncations
		return errOpcodeForbidden
	}
}
