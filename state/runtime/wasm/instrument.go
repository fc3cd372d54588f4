package wasm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
)

// GasGlobalName is the export holding the gas left of the running instance
const GasGlobalName = "__gas_left"

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

var (
	errMalformed       = errors.New("malformed module")
	errOpcodeForbidden = errors.New("forbidden opcode")
	errGasGlobalExport = errors.New("module already exports " + GasGlobalName)
	errStartFunction   = errors.New("start function is not allowed")
)

const (
	sectionCustom    = 0
	sectionType      = 1
	sectionImport    = 2
	sectionFunction  = 3
	sectionTable     = 4
	sectionMemory    = 5
	sectionGlobal    = 6
	sectionExport    = 7
	sectionStart     = 8
	sectionElement   = 9
	sectionCode      = 10
	sectionData      = 11
	sectionDataCount = 12
)

const (
	importFunc   = 0x00
	importTable  = 0x01
	importMemory = 0x02
	importGlobal = 0x03

	exportGlobal = 0x03

	valueTypeI64 = 0x7e
	blockTypeNil = 0x40
)

// isWASM reports whether code starts with the wasm binary header
func isWASM(code []byte) bool {
	return len(code) >= 8 && bytes.Equal(code[:4], wasmMagic) && bytes.Equal(code[4:8], wasmVersion)
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool {
	return r.pos >= len(r.buf)
}

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errMalformed
	}

	b := r.buf[r.pos]
	r.pos++

	return b, nil
}

func (r *reader) bytes(n uint64) ([]byte, error) {
	if n > uint64(len(r.buf)-r.pos) {
		return nil, errMalformed
	}

	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)

	return b, nil
}

// uleb reads an unsigned LEB128, which is the encoding of binary.Uvarint
func (r *reader) uleb() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, errMalformed
	}

	r.pos += n

	return v, nil
}

// sleb skips a signed LEB128 of at most maxBytes bytes
func (r *reader) sleb(maxBytes int) error {
	for i := 0; i < maxBytes; i++ {
		b, err := r.byte()
		if err != nil {
			return err
		}

		if b&0x80 == 0 {
			return nil
		}
	}

	return errMalformed
}

func (r *reader) name() (string, error) {
	n, err := r.uleb()
	if err != nil {
		return "", err
	}

	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func (r *reader) limits() error {
	flags, err := r.byte()
	if err != nil {
		return err
	}

	// shared memories belong to the threads proposal
	if flags > 1 {
		return errOpcodeForbidden
	}

	if _, err := r.uleb(); err != nil {
		return err
	}

	if flags == 1 {
		if _, err := r.uleb(); err != nil {
			return err
		}
	}

	return nil
}

func appendUleb(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

func appendSleb(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7

		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}

		dst = append(dst, b|0x80)
	}
}

func appendSection(dst []byte, id byte, payload []byte) []byte {
	dst = append(dst, id)
	dst = appendUleb(dst, uint64(len(payload)))

	return append(dst, payload...)
}

// Instrument adds gas metering to a wasm module. The result defines and exports
// a mutable i64 global named __gas_left and charges every straight line segment
// of code against it, trapping once it turns negative.
func Instrument(code []byte, costs *gas.WASMOpcodeCost) ([]byte, error) {
	if !isWASM(code) {
		return nil, errMalformed
	}

	type section struct {
		id      byte
		payload []byte
	}

	var sections []section

	r := &reader{buf: code, pos: 8}
	for !r.done() {
		id, err := r.byte()
		if err != nil {
			return nil, err
		}

		size, err := r.uleb()
		if err != nil {
			return nil, err
		}

		payload, err := r.bytes(size)
		if err != nil {
			return nil, err
		}

		sections = append(sections, section{id: id, payload: payload})
	}

	var importedGlobals, definedGlobals uint64

	for _, s := range sections {
		var err error

		switch s.id {
		case sectionImport:
			importedGlobals, err = countImportedGlobals(s.payload)
		case sectionGlobal:
			definedGlobals, err = (&reader{buf: s.payload}).uleb()
		case sectionExport:
			err = checkExports(s.payload)
		case sectionStart:
			err = errStartFunction
		}

		if err != nil {
			return nil, err
		}
	}

	gasGlobal := importedGlobals + definedGlobals

	out := append(append([]byte{}, wasmMagic...), wasmVersion...)
	globalDone, exportDone := false, false

	// the global and export sections are created when the module has none
	beforeExport := func(id byte) bool {
		return id == sectionExport || id == sectionStart || id == sectionElement ||
			id == sectionDataCount || id == sectionCode || id == sectionData
	}

	for _, s := range sections {
		if s.id != sectionCustom && !globalDone && s.id != sectionGlobal && beforeExport(s.id) {
			out = appendSection(out, sectionGlobal, addGasGlobal(nil))
			globalDone = true
		}

		if s.id != sectionCustom && !exportDone && s.id != sectionExport && s.id != sectionGlobal &&
			beforeExport(s.id) {
			out = appendSection(out, sectionExport, addGasExport(nil, gasGlobal))
			exportDone = true
		}

		switch s.id {
		case sectionGlobal:
			out = appendSection(out, s.id, addGasGlobal(s.payload))
			globalDone = true

		case sectionExport:
			out = appendSection(out, s.id, addGasExport(s.payload, gasGlobal))
			exportDone = true

		case sectionCode:
			payload, err := instrumentCode(s.payload, uint32(gasGlobal), costs)
			if err != nil {
				return nil, err
			}

			out = appendSection(out, s.id, payload)

		default:
			out = appendSection(out, s.id, s.payload)
		}
	}

	if !globalDone {
		out = appendSection(out, sectionGlobal, addGasGlobal(nil))
	}

	if !exportDone {
		out = appendSection(out, sectionExport, addGasExport(nil, gasGlobal))
	}

	return out, nil
}

func countImportedGlobals(payload []byte) (uint64, error) {
	r := &reader{buf: payload}

	count, err := r.uleb()
	if err != nil {
		return 0, err
	}

	var globals uint64

	for i := uint64(0); i < count; i++ {
		if _, err := r.name(); err != nil {
			return 0, err
		}

		if _, err := r.name(); err != nil {
			return 0, err
		}

		kind, err := r.byte()
		if err != nil {
			return 0, err
		}

		switch kind {
		case importFunc:
			_, err = r.uleb()
		case importTable:
			if _, err = r.byte(); err == nil {
				err = r.limits()
			}
		case importMemory:
			err = r.limits()
		case importGlobal:
			globals++
			_, err = r.bytes(2)
		default:
			err = errMalformed
		}

		if err != nil {
			return 0, err
		}
	}

	return globals, nil
}

func checkExports(payload []byte) error {
	r := &reader{buf: payload}

	count, err := r.uleb()
	if err != nil {
		return err
	}

	for i := uint64(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return err
		}

		if name == GasGlobalName {
			return errGasGlobalExport
		}

		if _, err := r.byte(); err != nil {
			return err
		}

		if _, err := r.uleb(); err != nil {
			return err
		}
	}

	return nil
}

// rewriteVector increments the element count of a vector payload and appends item
func rewriteVector(payload []byte, item []byte) []byte {
	var count uint64

	rest := payload
	if len(payload) > 0 {
		r := &reader{buf: payload}
		count, _ = r.uleb()
		rest = payload[r.pos:]
	}

	out := appendUleb(nil, count+1)
	out = append(out, rest...)

	return append(out, item...)
}

func addGasGlobal(payload []byte) []byte {
	// mutable i64 initialized to 0, the runtime sets it before every call
	return rewriteVector(payload, []byte{valueTypeI64, 0x01, opI64Const, 0x00, opEnd})
}

func addGasExport(payload []byte, index uint64) []byte {
	item := appendUleb(nil, uint64(len(GasGlobalName)))
	item = append(item, GasGlobalName...)
	item = append(item, exportGlobal)
	item = appendUleb(item, index)

	return rewriteVector(payload, item)
}

func instrumentCode(payload []byte, gasGlobal uint32, costs *gas.WASMOpcodeCost) ([]byte, error) {
	r := &reader{buf: payload}

	count, err := r.uleb()
	if err != nil {
		return nil, err
	}

	out := appendUleb(nil, count)

	for i := uint64(0); i < count; i++ {
		size, err := r.uleb()
		if err != nil {
			return nil, err
		}

		body, err := r.bytes(size)
		if err != nil {
			return nil, err
		}

		instrumented, err := instrumentBody(body, gasGlobal, costs)
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}

		out = appendUleb(out, uint64(len(instrumented)))
		out = append(out, instrumented...)
	}

	if !r.done() {
		return nil, errMalformed
	}

	return out, nil
}

type instruction struct {
	start, end int
	cost       uint64
	boundary   bool
}

func instrumentBody(body []byte, gasGlobal uint32, costs *gas.WASMOpcodeCost) ([]byte, error) {
	r := &reader{buf: body}

	// locals
	groups, err := r.uleb()
	if err != nil {
		return nil, err
	}

	for j := uint64(0); j < groups; j++ {
		if _, err := r.uleb(); err != nil {
			return nil, err
		}

		if _, err := r.byte(); err != nil {
			return nil, err
		}
	}

	out := append([]byte{}, body[:r.pos]...)

	var instructions []instruction

	for !r.done() {
		ins, err := decodeInstruction(r, costs)
		if err != nil {
			return nil, err
		}

		instructions = append(instructions, ins)
	}

	segmentStart := 0

	for segmentStart < len(instructions) {
		segmentEnd := segmentStart
		cost := uint64(0)

		for segmentEnd < len(instructions) {
			cost += instructions[segmentEnd].cost
			segmentEnd++

			if instructions[segmentEnd-1].boundary {
				break
			}
		}

		out = appendCharge(out, gasGlobal, cost)

		for _, ins := range instructions[segmentStart:segmentEnd] {
			out = append(out, body[ins.start:ins.end]...)
		}

		segmentStart = segmentEnd
	}

	return out, nil
}

// appendCharge subtracts cost from the gas global and traps when it turns negative
func appendCharge(dst []byte, gasGlobal uint32, cost uint64) []byte {
	if cost == 0 {
		return dst
	}

	dst = append(dst, opGlobalGet)
	dst = appendUleb(dst, uint64(gasGlobal))
	dst = append(dst, opI64Const)
	dst = appendSleb(dst, int64(cost))
	dst = append(dst, opI64Sub, opGlobalSet)
	dst = appendUleb(dst, uint64(gasGlobal))
	dst = append(dst, opGlobalGet)
	dst = appendUleb(dst, uint64(gasGlobal))
	dst = append(dst, opI64Const, 0x00, opI64LtS, opIf, blockTypeNil, opUnreachable, opEnd)

	return dst
}
