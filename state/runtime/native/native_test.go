package native

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

var (
	addrContract = types.StringToAddress("0x000000000000000000000500aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrCaller   = types.StringToAddress("0x1111111111111111111111111111111111111111111111111111111111111111")
)

type mapHost struct {
	storage map[string][]byte
}

func (h *mapHost) AccountExists(types.Address) bool                     { return true }
func (h *mapHost) GetBalance(types.Address) *big.Int                    { return big.NewInt(0) }
func (h *mapHost) GetNonce(types.Address) uint64                        { return 0 }
func (h *mapHost) GetCode(types.Address) []byte                         { return nil }
func (h *mapHost) GetCodeMetadata(types.Address) types.CodeMetadata     { return types.CodeMetadata(0) }
func (h *mapHost) GetOwner(types.Address) types.Address                 { return addrCaller }
func (h *mapHost) GetEsdtBalance(types.Address, []byte, uint64) *big.Int { return big.NewInt(0) }
func (h *mapHost) GetTokenInfo([]byte) (*types.TokenInfo, bool)         { return nil, false }
func (h *mapHost) GetBlockInfo() types.BlockInfo                        { return types.BlockInfo{Nonce: 7} }
func (h *mapHost) GetPrevBlockInfo() types.BlockInfo                    { return types.BlockInfo{} }
func (h *mapHost) GetBlockHash(uint64) types.Hash                       { return types.ZeroHash }
func (h *mapHost) GetStateRootHash() types.Hash                         { return types.ZeroHash }
func (h *mapHost) ShardOfAddress(types.Address) uint32                  { return 0 }
func (h *mapHost) IsBuiltinFunction(string) bool                        { return false }

func (h *mapHost) GetStorage(_ types.Address, key []byte) []byte {
	return h.storage[string(key)]
}

func (h *mapHost) SetStorage(_ types.Address, key []byte, value []byte) {
	h.storage[string(key)] = value
}

func (h *mapHost) GetEsdtData(types.Address, []byte) (*types.EsdtData, bool) {
	return nil, false
}

func (h *mapHost) GetEsdtInstance(types.Address, []byte, uint64) (*types.EsdtInstance, bool) {
	return nil, false
}

func (h *mapHost) Call(c *runtime.Contract) *runtime.ExecutionResult {
	return &runtime.ExecutionResult{GasLeft: c.Gas}
}

func testContract() Contract {
	return Contract{
		"store": func(ctx *Context) {
			ctx.StorageStore([]byte("key"), ctx.Argument(0))
			ctx.Finish(ctx.StorageLoad([]byte("key")))
		},
		"sum": func(ctx *Context) {
			total := new(big.Int)
			for i := 0; i < ctx.NumArguments(); i++ {
				total.Add(total, ctx.ArgumentBigUint(i))
			}

			ctx.FinishBigUint(total)
		},
		"whoami": func(ctx *Context) {
			ctx.Finish(ctx.Caller().Bytes())
			ctx.Finish(ctx.SelfAddress().Bytes())
			ctx.FinishUint64(ctx.BlockNonce())
			ctx.Finish([]byte(ctx.Function()))
		},
		"fail": func(ctx *Context) {
			ctx.StorageStore([]byte("key"), []byte("lost"))
			ctx.Require(false, "nope")
			ctx.Finish([]byte("unreachable"))
		},
		"burn": func(ctx *Context) {
			ctx.ChargeGas(1 << 40)
		},
		"badArgument": func(ctx *Context) {
			ctx.Argument(3)
		},
	}
}

func newTestNative(t *testing.T) *Native {
	t.Helper()

	n := NewNative(hclog.NewNullLogger(), gas.DefaultSchedule(), chain.DefaultParams())
	n.Register("test", testContract())

	return n
}

func run(n *Native, host runtime.Host, code []byte, function string, args ...[]byte) *runtime.ExecutionResult {
	c := runtime.NewContractCall(0, addrCaller, addrCaller, addrContract, nil, 10_000_000, function, args)
	c.Code = code
	c.FrameID = 1

	return n.Run(c, host)
}

func TestNative_Endpoints(t *testing.T) {
	t.Parallel()

	n := newTestNative(t)

	cases := []struct {
		name     string
		function string
		args     [][]byte
		output   [][]byte
	}{
		{
			name:     "storage round trip",
			function: "store",
			args:     [][]byte{[]byte("value")},
			output:   [][]byte{[]byte("value")},
		},
		{
			name:     "big uint arguments",
			function: "sum",
			args:     [][]byte{{0x01, 0x00}, {0xff}, {}},
			output:   [][]byte{{0x01, 0xff}},
		},
		{
			name:     "frame info",
			function: "whoami",
			output: [][]byte{
				addrCaller.Bytes(),
				addrContract.Bytes(),
				{0x07},
				[]byte("whoami"),
			},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			host := &mapHost{storage: map[string][]byte{}}

			res := run(n, host, Code("test"), c.function, c.args...)
			require.NoError(t, res.Err)
			assert.Equal(t, c.output, res.ReturnData)
			assert.Greater(t, res.GasUsed, uint64(0))
		})
	}
}

func TestNative_Failures(t *testing.T) {
	t.Parallel()

	n := newTestNative(t)

	cases := []struct {
		name     string
		code     []byte
		function string
		status   runtime.ReturnCode
		message  string
	}{
		{"user error", Code("test"), "fail", runtime.UserError, "nope"},
		{"out of gas", Code("test"), "burn", runtime.OutOfGas, runtime.ErrOutOfGas.Message},
		{"missing argument", Code("test"), "badArgument", runtime.ExecutionFailed, runtime.ErrArgIndexOutOfRange.Message},
		{"function not found", Code("test"), "missing", runtime.FunctionNotFound, runtime.ErrFunctionNotFound.Message},
		{"unknown contract", Code("other"), "store", runtime.ContractInvalid, `unknown native contract "other"`},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			res := run(n, &mapHost{storage: map[string][]byte{}}, c.code, c.function)

			assert.Equal(t, c.status, res.ReturnCode())
			assert.Equal(t, c.message, res.ReturnMessage())
			assert.Equal(t, uint64(10_000_000), res.GasUsed)
			assert.Empty(t, res.ReturnData)
		})
	}
}

func TestNative_CanRun(t *testing.T) {
	t.Parallel()

	n := newTestNative(t)

	assert.True(t, n.CanRun(Code("test")))
	assert.False(t, n.CanRun([]byte{0x00, 0x61, 0x73, 0x6d}))
	assert.Equal(t, []string{"test"}, n.Contracts())
}
