package wasm

import (
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/types"
)

const (
	i32 = 0x7f
	i64 = 0x7e
)

type importSpec struct {
	name    string
	params  []byte
	results []byte
}

type funcSpec struct {
	name   string
	params []byte
	body   []byte
}

func vec(items ...[]byte) []byte {
	out := appendUleb(nil, uint64(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}

	return out
}

func wasmName(s string) []byte {
	return append(appendUleb(nil, uint64(len(s))), s...)
}

func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, appendUleb(nil, uint64(len(params)))...)
	out = append(out, params...)
	out = append(out, appendUleb(nil, uint64(len(results)))...)

	return append(out, results...)
}

// buildModule assembles a module with one memory holding data at offset 0
func buildModule(imports []importSpec, funcs []funcSpec, data []byte) []byte {
	var typesVec, importsVec, funcsVec, exportsVec, codeVec [][]byte

	for i, imp := range imports {
		typesVec = append(typesVec, funcType(imp.params, imp.results))

		item := append(wasmName(HostModuleName), wasmName(imp.name)...)
		item = append(item, importFunc)
		item = appendUleb(item, uint64(i))
		importsVec = append(importsVec, item)
	}

	exportsVec = append(exportsVec, append(wasmName("memory"), 0x02, 0x00))

	for i, fn := range funcs {
		typeIndex := uint64(len(typesVec))
		typesVec = append(typesVec, funcType(fn.params, nil))
		funcsVec = append(funcsVec, appendUleb(nil, typeIndex))

		export := append(wasmName(fn.name), 0x00)
		export = appendUleb(export, uint64(len(imports)+i))
		exportsVec = append(exportsVec, export)

		body := append([]byte{0x00}, fn.body...)
		body = append(body, opEnd)
		codeVec = append(codeVec, append(appendUleb(nil, uint64(len(body))), body...))
	}

	out := append(append([]byte{}, wasmMagic...), wasmVersion...)
	out = appendSection(out, sectionType, vec(typesVec...))

	if len(importsVec) > 0 {
		out = appendSection(out, sectionImport, vec(importsVec...))
	}

	out = appendSection(out, sectionFunction, vec(funcsVec...))
	out = appendSection(out, sectionMemory, vec([]byte{0x00, 0x01}))
	out = appendSection(out, sectionExport, vec(exportsVec...))
	out = appendSection(out, sectionCode, vec(codeVec...))

	if len(data) > 0 {
		segment := []byte{0x00, opI32Const, 0x00, opEnd}
		segment = append(segment, appendUleb(nil, uint64(len(data)))...)
		segment = append(segment, data...)
		out = appendSection(out, sectionData, vec(segment))
	}

	return out
}

func i32Const(v int64) []byte {
	return appendSleb([]byte{opI32Const}, v)
}

func call(index uint64) []byte {
	return appendUleb([]byte{opCall}, index)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

type nullHost struct{}

func (nullHost) AccountExists(types.Address) bool                      { return true }
func (nullHost) GetBalance(types.Address) *big.Int                     { return big.NewInt(0) }
func (nullHost) GetNonce(types.Address) uint64                         { return 0 }
func (nullHost) GetCode(types.Address) []byte                          { return nil }
func (nullHost) GetCodeMetadata(types.Address) types.CodeMetadata      { return types.CodeMetadata(0) }
func (nullHost) GetOwner(types.Address) types.Address                  { return types.ZeroAddress }
func (nullHost) GetStorage(types.Address, []byte) []byte               { return nil }
func (nullHost) SetStorage(types.Address, []byte, []byte)              {}
func (nullHost) GetEsdtBalance(types.Address, []byte, uint64) *big.Int { return big.NewInt(0) }
func (nullHost) GetTokenInfo([]byte) (*types.TokenInfo, bool)          { return nil, false }
func (nullHost) GetBlockInfo() types.BlockInfo                         { return types.BlockInfo{} }
func (nullHost) GetPrevBlockInfo() types.BlockInfo                     { return types.BlockInfo{} }
func (nullHost) GetBlockHash(uint64) types.Hash                        { return types.ZeroHash }
func (nullHost) GetStateRootHash() types.Hash                          { return types.ZeroHash }
func (nullHost) ShardOfAddress(types.Address) uint32                   { return 0 }
func (nullHost) IsBuiltinFunction(string) bool                         { return false }

func (nullHost) GetEsdtData(types.Address, []byte) (*types.EsdtData, bool) {
	return nil, false
}

func (nullHost) GetEsdtInstance(types.Address, []byte, uint64) (*types.EsdtInstance, bool) {
	return nil, false
}

func (nullHost) Call(c *runtime.Contract) *runtime.ExecutionResult {
	return &runtime.ExecutionResult{GasLeft: c.Gas}
}

var addrContract = types.StringToAddress("0x000000000000000000000500aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

func newTestWASM(t *testing.T, modify ...func(p *chain.Params)) *WASM {
	t.Helper()

	params := chain.DefaultParams()
	for _, m := range modify {
		m(params)
	}

	w, err := NewWASM(hclog.NewNullLogger(), gas.DefaultSchedule(), params)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = w.Close()
	})

	return w
}

func runCode(w *WASM, code []byte, function string, gasLimit uint64) *runtime.ExecutionResult {
	c := runtime.NewContractCall(0, addrContract, addrContract, addrContract, nil, gasLimit, function, nil)
	c.Code = code
	c.FrameID = 1

	return w.Run(c, nullHost{})
}

var (
	finishImport      = importSpec{name: "finish", params: []byte{i32, i32}}
	signalErrorImport = importSpec{name: "signalError", params: []byte{i32, i32}}
)

func TestWASM_Finish(t *testing.T) {
	t.Parallel()

	w := newTestWASM(t)
	code := buildModule(
		[]importSpec{finishImport},
		[]funcSpec{{name: "main", body: concat(i32Const(0), i32Const(5), call(0))}},
		[]byte("hello"),
	)

	res := runCode(w, code, "main", 10_000_000)
	require.NoError(t, res.Err)
	assert.Equal(t, [][]byte{[]byte("hello")}, res.ReturnData)

	compileCost := gas.DefaultSchedule().BaseOperationCost.CompilePerByte * uint64(len(code))
	assert.Greater(t, res.GasUsed, compileCost)
	assert.Equal(t, uint64(10_000_000), res.GasUsed+res.GasLeft)
}

func TestWASM_CompiledModuleIsCached(t *testing.T) {
	t.Parallel()

	w := newTestWASM(t)
	code := buildModule(nil, []funcSpec{{name: "main"}}, nil)

	first := runCode(w, code, "main", 10_000_000)
	second := runCode(w, code, "main", 10_000_000)

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, first.GasUsed, second.GasUsed)
	assert.Equal(t, 1, w.cache.Len())
}

func TestWASM_GasLeftIsSynced(t *testing.T) {
	t.Parallel()

	w := newTestWASM(t)
	code := buildModule(
		[]importSpec{
			{name: "getGasLeft", results: []byte{i64}},
			{name: "int64finish", params: []byte{i64}},
		},
		[]funcSpec{{name: "main", body: concat(call(0), call(1))}},
		nil,
	)

	const limit = 10_000_000

	res := runCode(w, code, "main", limit)
	require.NoError(t, res.Err)
	require.Len(t, res.ReturnData, 1)

	reported := new(big.Int).SetBytes(res.ReturnData[0])
	compileCost := gas.DefaultSchedule().BaseOperationCost.CompilePerByte * uint64(len(code))

	assert.True(t, reported.IsUint64())
	assert.Less(t, reported.Uint64(), uint64(limit)-compileCost)
	assert.Greater(t, reported.Uint64(), res.GasLeft)
}

func TestWASM_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		imports  []importSpec
		funcs    []funcSpec
		data     []byte
		function string
		code     runtime.ReturnCode
		message  string
	}{
		{
			name:     "function not found",
			funcs:    []funcSpec{{name: "main"}},
			function: "missing",
			code:     runtime.FunctionNotFound,
		},
		{
			name:     "wrong signature",
			funcs:    []funcSpec{{name: "main", params: []byte{i32}}},
			function: "main",
			code:     runtime.FunctionWrongSignature,
		},
		{
			name:     "signal error",
			imports:  []importSpec{signalErrorImport},
			funcs:    []funcSpec{{name: "main", body: concat(i32Const(0), i32Const(4), call(0))}},
			data:     []byte("boom"),
			function: "main",
			code:     runtime.UserError,
			message:  "boom",
		},
		{
			name:     "trap",
			funcs:    []funcSpec{{name: "main", body: []byte{opUnreachable}}},
			function: "main",
			code:     runtime.ExecutionFailed,
		},
		{
			name:     "memory out of bounds in hook",
			imports:  []importSpec{finishImport},
			funcs:    []funcSpec{{name: "main", body: concat(i32Const(65530), i32Const(100), call(0))}},
			function: "main",
			code:     runtime.ExecutionFailed,
			message:  runtime.ErrMemoryOutOfBounds.Message,
		},
		{
			name:     "unknown import",
			imports:  []importSpec{{name: "notAHook"}},
			funcs:    []funcSpec{{name: "main"}},
			function: "main",
			code:     runtime.ContractInvalid,
		},
		{
			name:     "import with wrong signature",
			imports:  []importSpec{{name: "finish", params: []byte{i64, i32}}},
			funcs:    []funcSpec{{name: "main"}},
			function: "main",
			code:     runtime.ContractInvalid,
		},
		{
			name:     "float opcode",
			funcs:    []funcSpec{{name: "main", body: []byte{0x43, 0, 0, 0, 0, opDrop}}},
			function: "main",
			code:     runtime.ContractInvalid,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			w := newTestWASM(t)
			res := runCode(w, buildModule(c.imports, c.funcs, c.data), c.function, 10_000_000)

			require.Error(t, res.Err)
			assert.Equal(t, c.code, res.ReturnCode())
			assert.Equal(t, uint64(10_000_000), res.GasUsed)
			assert.Empty(t, res.ReturnData)

			if c.message != "" {
				assert.Equal(t, c.message, res.ReturnMessage())
			}
		})
	}
}

func TestWASM_OutOfGas(t *testing.T) {
	t.Parallel()

	w := newTestWASM(t)

	// loop forever
	code := buildModule(nil, []funcSpec{{
		name: "main",
		body: []byte{opLoop, blockTypeNil, opBr, 0x00, opEnd},
	}}, nil)

	limit := gas.DefaultSchedule().BaseOperationCost.CompilePerByte*uint64(len(code)) + 10_000

	res := runCode(w, code, "main", limit)
	assert.ErrorIs(t, res.Err, runtime.ErrOutOfGas)
	assert.Equal(t, limit, res.GasUsed)
}

func TestWASM_CompileCostExceedsLimit(t *testing.T) {
	t.Parallel()

	w := newTestWASM(t)
	code := buildModule(nil, []funcSpec{{name: "main"}}, nil)

	res := runCode(w, code, "main", 10)
	assert.ErrorIs(t, res.Err, runtime.ErrOutOfGas)
}

func TestWASM_EIVersionGating(t *testing.T) {
	t.Parallel()

	code := buildModule(
		[]importSpec{{name: "managedGetBackTransfers", params: []byte{i32, i32}}},
		[]funcSpec{{name: "main"}},
		nil,
	)

	older := newTestWASM(t, func(p *chain.Params) {
		p.EIVersion = "1.2"
	})
	assert.Equal(t, runtime.ContractInvalid, runCode(older, code, "main", 10_000_000).ReturnCode())

	current := newTestWASM(t)
	assert.NoError(t, runCode(current, code, "main", 10_000_000).Err)
}

func TestWASM_CanRun(t *testing.T) {
	t.Parallel()

	w := newTestWASM(t)

	assert.True(t, w.CanRun(buildModule(nil, nil, nil)))
	assert.False(t, w.CanRun([]byte("native:adder")))
	assert.False(t, w.CanRun(nil))
}

func TestHookFunctions(t *testing.T) {
	t.Parallel()

	byName := map[string]*hookFunction{}
	for _, hf := range hookFunctions() {
		byName[hf.name] = hf
	}

	assert.Equal(t, []byte{i32, i32}, []byte(byName["finish"].params))
	assert.Empty(t, byName["finish"].results)
	assert.Equal(t, []byte{i32}, []byte(byName["mBufferNew"].results))
	assert.Equal(t, []byte{i64}, []byte(byName["int64getArgument"].results))

	for _, name := range []string{"result", "setMemory", "meter", "arena", "contract"} {
		assert.NotContains(t, byName, name)
	}
}

func TestInstrument_Rejects(t *testing.T) {
	t.Parallel()

	costs := &gas.DefaultSchedule().WASMOpcodeCost
	valid := buildModule(nil, []funcSpec{{name: "main"}}, nil)

	withStart := append(append([]byte{}, valid...), appendSection(nil, sectionStart, []byte{0x00})...)

	withExport := buildModule(nil, []funcSpec{{name: GasGlobalName}}, nil)

	cases := []struct {
		name string
		code []byte
		err  error
	}{
		{"not wasm", []byte("native:adder"), errMalformed},
		{"truncated", valid[:len(valid)-3], errMalformed},
		{"start function", withStart, errStartFunction},
		{"gas global exported", withExport, errGasGlobalExport},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := Instrument(c.code, costs)
			assert.ErrorIs(t, err, c.err)
		})
	}
}

func TestInstrument_ChargesSegments(t *testing.T) {
	t.Parallel()

	costs := &gas.DefaultSchedule().WASMOpcodeCost

	body := []byte{0x00, opNop, opNop, opEnd}

	out, err := instrumentBody(body, 3, costs)
	require.NoError(t, err)

	charge := appendCharge(nil, 3, 3*costs.Control)
	expected := concat([]byte{0x00}, charge, []byte{opNop, opNop, opEnd})

	assert.Equal(t, expected, out)
}
