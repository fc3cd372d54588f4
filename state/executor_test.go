package state

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
	"pgregory.net/rapid"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/state/runtime/native"
	"github.com/0xPolygon/wasm-vm/storage/memory"
	"github.com/0xPolygon/wasm-vm/types"
)

const testGasLimit = 50_000_000

func userAddress(b byte) types.Address {
	var a types.Address
	for i := range a {
		a[i] = b
	}

	return a
}

func contractAddress(b byte) types.Address {
	var a types.Address
	for i := types.SCAddressNumLeadingZeros; i < types.AddressLength; i++ {
		a[i] = b
	}

	return a
}

var (
	alice = userAddress(0xa1)
	bob   = userAddress(0xb0)
	owner = userAddress(0x0e)

	contractA = contractAddress(0x0a)
	contractB = contractAddress(0x0b)
	contractC = contractAddress(0x0c)
)

type harness struct {
	executor *Executor
	native   *native.Native
	txs      byte
}

func newHarness(t *testing.T, pre PreStates) *harness {
	t.Helper()

	logger := hclog.NewNullLogger()
	params := chain.DefaultParams()
	schedule := gas.DefaultSchedule()

	s, err := NewState(memory.NewMemoryStorage())
	require.NoError(t, err)

	Genesis(t, s, pre)

	n := native.NewNative(logger, schedule, params)
	for name, c := range testContracts() {
		n.Register(name, c)
	}

	e := NewExecutor(logger, s, params, schedule)
	e.SetRuntime(n)

	return &harness{executor: e, native: n}
}

// modify writes f's changes on top of the latest state
func (h *harness) modify(t *testing.T, f func(txn *Txn)) {
	t.Helper()

	txn := NewTxn(h.executor.State().NewSnapshot())
	f(txn)

	_, err := h.executor.State().Commit(txn.Commit())
	require.NoError(t, err)
}

// view returns a read cache on the latest state
func (h *harness) view() *Txn {
	return NewTxn(h.executor.State().NewSnapshot())
}

func (h *harness) call(from, to types.Address, value int64, function string, args ...[]byte) *types.Transaction {
	h.txs++

	return &types.Transaction{
		From:     from,
		To:       to,
		Value:    big.NewInt(value),
		Function: function,
		Args:     args,
		GasLimit: testGasLimit,
		Hash:     types.BytesToHash([]byte{h.txs}),
	}
}

func (h *harness) applyBlock(t *testing.T, block types.BlockInfo, txs ...*types.Transaction) []*runtime.ExecutionResult {
	t.Helper()

	results, _, err := h.executor.Apply(block, types.BlockInfo{Nonce: block.Nonce - 1}, txs...)
	require.NoError(t, err)
	require.Len(t, results, len(txs))

	return results
}

func (h *harness) apply(t *testing.T, nonce uint64, txs ...*types.Transaction) []*runtime.ExecutionResult {
	t.Helper()

	return h.applyBlock(t, types.BlockInfo{Nonce: nonce}, txs...)
}

func requireOk(t *testing.T, res *runtime.ExecutionResult) {
	t.Helper()

	require.NoError(t, res.Err, res.ReturnMessage())
}

func logsNamed(logs []*types.Log, identifier string) []*types.Log {
	var found []*types.Log

	for _, l := range logs {
		if string(l.Identifier) == identifier {
			found = append(found, l)
		}
	}

	return found
}

const (
	statusFunding byte = iota
	statusSuccessful
	statusFailed
)

var (
	keyTarget   = []byte("target")
	keyDeadline = []byte("deadline")
	keyStatus   = []byte("status")
)

func depositKey(addr types.Address) []byte {
	return append([]byte("deposit"), addr.Bytes()...)
}

func crowdfundStatus(ctx *native.Context) byte {
	if s := ctx.StorageLoad(keyStatus); len(s) > 0 {
		return s[0]
	}

	if ctx.BlockNonce() <= ctx.StorageLoadUint64(keyDeadline) {
		return statusFunding
	}

	if ctx.EGLDBalance(ctx.SelfAddress()).Cmp(ctx.StorageLoadBigUint(keyTarget)) >= 0 {
		return statusSuccessful
	}

	return statusFailed
}

func crowdfundContract() native.Contract {
	return native.Contract{
		"init": func(ctx *native.Context) {
			ctx.StorageStoreBigUint(keyTarget, ctx.ArgumentBigUint(0))
			ctx.StorageStoreUint64(keyDeadline, ctx.ArgumentUint64(1))
		},
		"fund": func(ctx *native.Context) {
			ctx.Require(crowdfundStatus(ctx) == statusFunding, "cannot fund after deadline")

			key := depositKey(ctx.Caller())
			ctx.StorageStoreBigUint(key, new(big.Int).Add(ctx.StorageLoadBigUint(key), ctx.CallValue()))
		},
		"status": func(ctx *native.Context) {
			ctx.Finish([]byte{crowdfundStatus(ctx)})
		},
		"claim": func(ctx *native.Context) {
			switch crowdfundStatus(ctx) {
			case statusFunding:
				ctx.SignalError("cannot claim before deadline")
			case statusSuccessful:
				ctx.Require(ctx.Caller() == ctx.Owner(), "only owner can claim successful funding")
				ctx.StorageStore(keyStatus, []byte{statusSuccessful})
				ctx.TransferEGLD(ctx.Caller(), ctx.EGLDBalance(ctx.SelfAddress()))
			case statusFailed:
				key := depositKey(ctx.Caller())

				deposit := ctx.StorageLoadBigUint(key)
				if deposit.Sign() > 0 {
					ctx.StorageStore(key, nil)
					ctx.TransferEGLD(ctx.Caller(), deposit)
				}
			}
		},
	}
}

var tokenNFT = []byte("COOL-123456")

func nftContract() native.Contract {
	return native.Contract{
		// the nonce returned by the builtin ends up in the output
		"create": func(ctx *native.Context) {
			ctx.CallBuiltin(types.BuiltinESDTNFTCreate,
				tokenNFT,
				[]byte{0x01},
				[]byte("cool #1"),
				nil,
				nil,
				[]byte{0, 0, 0},
			)
		},
		"send": func(ctx *native.Context) {
			payment := types.NewEsdtTokenPayment(tokenNFT, ctx.ArgumentUint64(1), big.NewInt(1))

			code := ctx.TransferESDTExecute(ctx.ArgumentAddress(0), []*types.EsdtTokenPayment{payment}, 0, "")
			ctx.Require(code == runtime.Ok, "transfer failed")
		},
		"accept": func(ctx *native.Context) {
			ctx.Require(len(ctx.ESDTTransfers()) == 1, "expected one payment")
		},
		"update": func(ctx *native.Context) {
			ctx.CallBuiltin(types.BuiltinESDTNFTUpdateAttributes, tokenNFT, ctx.Argument(0), ctx.Argument(1))
		},
	}
}

func callerContract() native.Contract {
	recordCallback := func(ctx *native.Context) {
		ctx.WriteLog(ctx.Function(), ctx.Arguments(), ctx.CallbackClosure())
	}

	return native.Contract{
		"tryCall": func(ctx *native.Context) {
			ctx.StorageStore([]byte("a"), []byte("before"))

			code, _ := ctx.TryExecuteOnDestContext(ctx.ArgumentAddress(0), big.NewInt(0), ctx.ArgumentUint64(1), "heavy")

			ctx.StorageStore([]byte("a"), []byte("after"))
			ctx.FinishUint64(uint64(code))
		},
		"tryTransfer": func(ctx *native.Context) {
			code := ctx.TransferEGLDExecute(ctx.ArgumentAddress(0), big.NewInt(10), 5_000_000, "fail")

			ctx.StorageStore([]byte("a"), []byte("after"))
			ctx.FinishUint64(uint64(code))
		},
		"mustCall": func(ctx *native.Context) {
			ctx.StorageStore([]byte("a"), []byte("before"))
			ctx.ExecuteOnDestContext(ctx.ArgumentAddress(0), big.NewInt(0), ctx.ArgumentUint64(1), "heavy")
		},
		"fanout": func(ctx *native.Context) {
			ctx.RegisterPromise(&native.Promise{
				Destination: contractB,
				Function:    "answer",
				Success:     "cb_b",
				Failure:     "cb_b",
				Gas:         5_000_000,
				CallbackGas: 1_000_000,
				Closure:     []byte("closure_b"),
			})
			ctx.RegisterPromise(&native.Promise{
				Destination: contractC,
				Function:    "fail",
				Success:     "cb_c",
				Failure:     "cb_c",
				Gas:         5_000_000,
				CallbackGas: 1_000_000,
				Closure:     []byte("closure_c"),
			})
		},
		"legacy": func(ctx *native.Context) {
			ctx.SetAsyncCallback(runtime.CallbackFunctionName, []byte("legacy closure"), 0)
			ctx.AsyncCall(contractB, big.NewInt(0), "answer")
		},
		"cb_b":                       recordCallback,
		"cb_c":                       recordCallback,
		runtime.CallbackFunctionName: recordCallback,
	}
}

func calleeContract() native.Contract {
	return native.Contract{
		"answer": func(ctx *native.Context) {
			ctx.FinishUint64(42)
		},
		"fail": func(ctx *native.Context) {
			ctx.StorageStore([]byte("x"), []byte("lost"))
			ctx.SignalError("c failed")
		},
		"heavy": func(ctx *native.Context) {
			ctx.StorageStore([]byte("b"), []byte("lost"))
			ctx.ChargeGas(1 << 40)
		},
	}
}

// entropyContract returns 8 random bytes and the handle of the buffer holding them
func entropyContract() native.Contract {
	return native.Contract{
		"random": func(ctx *native.Context) {
			hooks := ctx.Hooks()

			handle, err := hooks.MBufferNew()
			ctx.Require(err == nil, "new buffer")

			_, err = hooks.MBufferSetRandom(handle, 8)
			ctx.Require(err == nil, "set random")

			_, err = hooks.MBufferFinish(handle)
			ctx.Require(err == nil, "finish buffer")

			ctx.FinishUint64(uint64(handle))
		},
	}
}

func upgradedContract() native.Contract {
	return native.Contract{
		"upgrade": func(ctx *native.Context) {
			ctx.StorageStoreUint64([]byte("version"), 2)
		},
	}
}

func testContracts() map[string]native.Contract {
	return map[string]native.Contract{
		"crowdfund": crowdfundContract(),
		"nft":       nftContract(),
		"caller":    callerContract(),
		"callee":    calleeContract(),
		"v2":        upgradedContract(),
		"entropy":   entropyContract(),
	}
}

func deployCrowdfund(t *testing.T, h *harness, target, deadline uint64) types.Address {
	t.Helper()

	tx := h.call(owner, types.ZeroAddress, 0, "", new(big.Int).SetUint64(target).Bytes(), types.TopEncodeUint64(deadline))
	tx.Code = native.Code("crowdfund")
	tx.CodeMetadata = types.MetadataUpgradeable

	res := h.apply(t, 1, tx)[0]
	requireOk(t, res)
	require.True(t, res.NewAddress.IsSmartContract())

	assert.Equal(t, owner, h.view().GetOwner(res.NewAddress))

	return res.NewAddress
}

func TestExecutor_CrowdfundSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice: {Balance: 1000},
		bob:   {Balance: 1000},
		owner: {},
	})

	cf := deployCrowdfund(t, h, 1000, 100)

	for _, res := range h.apply(t, 50,
		h.call(alice, cf, 600, "fund"),
		h.call(bob, cf, 500, "fund"),
	) {
		requireOk(t, res)
	}

	res := h.apply(t, 101,
		h.call(bob, cf, 0, "claim"),
		h.call(owner, cf, 0, "claim"),
		h.call(alice, cf, 0, "status"),
	)

	assert.Equal(t, runtime.UserError, res[0].ReturnCode())
	assert.Equal(t, "only owner can claim successful funding", res[0].ReturnMessage())

	requireOk(t, res[1])
	require.Len(t, res[1].Transfers, 1)
	assert.Equal(t, owner, res[1].Transfers[0].To)

	requireOk(t, res[2])
	assert.Equal(t, [][]byte{{statusSuccessful}}, res[2].ReturnData)

	view := h.view()
	assert.Equal(t, big.NewInt(0), view.GetBalance(cf))
	assert.Equal(t, big.NewInt(1100), view.GetBalance(owner))
	assert.Equal(t, big.NewInt(400), view.GetBalance(alice))
	assert.Equal(t, big.NewInt(500), view.GetBalance(bob))
}

func TestExecutor_CrowdfundRefund(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice: {Balance: 1000},
		bob:   {Balance: 1000},
		owner: {},
	})

	cf := deployCrowdfund(t, h, 1000, 80)

	for _, res := range h.apply(t, 80,
		h.call(alice, cf, 300, "fund"),
		h.call(bob, cf, 200, "fund"),
	) {
		requireOk(t, res)
	}

	// funding is closed once the deadline passed
	res := h.apply(t, 81, h.call(alice, cf, 1, "fund"))[0]
	assert.Equal(t, "cannot fund after deadline", res.ReturnMessage())

	requireOk(t, h.apply(t, 81, h.call(alice, cf, 0, "claim"))[0])

	view := h.view()
	assert.Equal(t, big.NewInt(1000), view.GetBalance(alice))
	assert.Equal(t, big.NewInt(200), view.GetBalance(cf))
	assert.Nil(t, view.GetStorage(cf, depositKey(alice)))

	res = h.apply(t, 82, h.call(alice, cf, 0, "status"))[0]
	requireOk(t, res)
	assert.Equal(t, [][]byte{{statusFailed}}, res.ReturnData)

	requireOk(t, h.apply(t, 90, h.call(bob, cf, 0, "claim"))[0])

	view = h.view()
	assert.Equal(t, big.NewInt(1000), view.GetBalance(bob))
	assert.Equal(t, big.NewInt(0), view.GetBalance(cf))
}

func TestExecutor_NFTRoundTrip(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice:     {},
		contractA: {Code: native.Code("nft")},
	})

	h.modify(t, func(txn *Txn) {
		txn.SetEsdtData(contractA, &types.EsdtData{
			TokenID:   tokenNFT,
			Roles:     types.RoleNFTCreate | types.RoleNFTUpdateAttributes,
			Instances: map[uint64]*types.EsdtInstance{},
		})
	})

	res := h.apply(t, 1, h.call(alice, contractA, 0, "create"))[0]
	requireOk(t, res)
	assert.Equal(t, [][]byte{{0x01}}, res.ReturnData)

	nonce := types.TopEncodeUint64(1)

	requireOk(t, h.apply(t, 2, h.call(alice, contractA, 0, "send", alice.Bytes(), nonce))[0])

	back := h.call(alice, contractA, 0, "accept")
	back.ESDTTransfers = []*types.EsdtTokenPayment{types.NewEsdtTokenPayment(tokenNFT, 1, big.NewInt(1))}
	requireOk(t, h.apply(t, 3, back)[0])

	_, ok := h.view().GetEsdtInstance(alice, tokenNFT, 1)
	assert.False(t, ok)

	requireOk(t, h.apply(t, 4, h.call(alice, contractA, 0, "update", nonce, []byte{255, 255, 255}))[0])
	requireOk(t, h.apply(t, 5, h.call(alice, contractA, 0, "send", alice.Bytes(), nonce))[0])

	view := h.view()

	inst, ok := view.GetEsdtInstance(alice, tokenNFT, 1)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(1), inst.Balance)
	assert.Equal(t, []byte{255, 255, 255}, inst.Metadata.Attributes)
	assert.Equal(t, contractA, inst.Metadata.Creator)

	_, ok = view.GetEsdtInstance(contractA, tokenNFT, 1)
	assert.False(t, ok)
}

func TestExecutor_OutOfGasInNestedCall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		gas  uint64
	}{
		{"below the compile cost", 1000},
		{"after a write", 200_000},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, PreStates{
				alice:     {},
				contractA: {Code: native.Code("caller")},
				contractB: {Code: native.Code("callee")},
			})

			res := h.apply(t, 1, h.call(alice, contractA, 0, "tryCall", contractB.Bytes(), types.TopEncodeUint64(c.gas)))[0]
			requireOk(t, res)
			assert.Equal(t, [][]byte{{byte(runtime.ExecutionFailed)}}, res.ReturnData)

			view := h.view()
			assert.Equal(t, []byte("after"), view.GetStorage(contractA, []byte("a")))
			assert.Nil(t, view.GetStorage(contractB, []byte("b")))
		})
	}

	t.Run("failure propagates", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, PreStates{
			alice:     {},
			contractA: {Code: native.Code("caller")},
			contractB: {Code: native.Code("callee")},
		})

		res := h.apply(t, 1, h.call(alice, contractA, 0, "mustCall", contractB.Bytes(), types.TopEncodeUint64(200_000)))[0]
		assert.Equal(t, runtime.ExecutionFailed, res.ReturnCode())
		assert.Equal(t, uint64(testGasLimit), res.GasUsed)
		assert.Len(t, logsNamed(res.Logs, types.InternalVMErrorsIdentifier), 1)

		view := h.view()
		assert.Nil(t, view.GetStorage(contractA, []byte("a")))
		assert.Equal(t, uint64(1), view.GetNonce(alice))
	})
}

func TestExecutor_TokenIdentifier(t *testing.T) {
	t.Parallel()

	caller := userAddress(0x01)
	seed := make([]byte, 32)

	for i := range seed {
		seed[i] = 0x02
	}

	hash := sha3.NewLegacyKeccak256()
	hash.Write(caller.Bytes())
	hash.Write(seed)
	expected := "TICK-" + hex.EncodeToString(hash.Sum(nil)[:3])

	issue := func(h *harness) *types.Transaction {
		tx := h.call(caller, types.ESDTSystemSCAddress, 0, types.BuiltinIssue,
			[]byte("Name"), []byte("TICK"), nil, nil)
		tx.Value = chain.DefaultParams().IssueCost
		tx.GasLimit = 100_000_000

		return tx
	}

	balance := new(big.Int).Mul(chain.DefaultParams().IssueCost, big.NewInt(2)).Uint64()

	for i := 0; i < 2; i++ {
		h := newHarness(t, PreStates{caller: {Balance: balance}})

		res := h.applyBlock(t, types.BlockInfo{Nonce: 1, RandomSeed: seed}, issue(h), issue(h))

		requireOk(t, res[0])
		assert.Equal(t, [][]byte{[]byte(expected)}, res[0].ReturnData)

		// same caller and seed collide
		assert.Equal(t, runtime.UserError, res[1].ReturnCode())

		info, ok := h.view().GetTokenInfo([]byte(expected))
		require.True(t, ok)
		assert.Equal(t, caller, info.Manager)
		assert.Equal(t, []byte("TICK"), info.Ticker)

		// the fee of the failed issue went back
		assert.Equal(t, chain.DefaultParams().IssueCost, h.view().GetBalance(caller))
	}
}

func TestExecutor_PromisesFanIn(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice:     {},
		contractA: {Code: native.Code("caller")},
		contractB: {Code: native.Code("callee")},
		contractC: {Code: native.Code("callee")},
	})

	res := h.apply(t, 1, h.call(alice, contractA, 0, "fanout"))[0]
	requireOk(t, res)

	var callbacks []*types.Log

	for _, l := range res.Logs {
		if name := string(l.Identifier); name == "cb_b" || name == "cb_c" {
			callbacks = append(callbacks, l)
		}
	}

	require.Len(t, callbacks, 2)

	assert.Equal(t, "cb_b", string(callbacks[0].Identifier))
	assert.Equal(t, [][]byte{{0x00}, {42}}, callbacks[0].Topics)
	assert.Equal(t, []byte("closure_b"), callbacks[0].Data)

	assert.Equal(t, "cb_c", string(callbacks[1].Identifier))
	assert.Equal(t, [][]byte{{byte(runtime.UserError)}, []byte("c failed")}, callbacks[1].Topics)
	assert.Equal(t, []byte("closure_c"), callbacks[1].Data)

	failures := logsNamed(res.Logs, types.InternalVMErrorsIdentifier)
	require.Len(t, failures, 1)
	assert.Equal(t, contractC.Bytes(), failures[0].Topics[0])

	assert.Equal(t, [][]byte{{42}}, res.ReturnData)
	assert.Nil(t, h.view().GetStorage(contractC, []byte("x")))
}

func TestExecutor_LegacyAsyncCall(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice:     {},
		contractA: {Code: native.Code("caller")},
		contractB: {Code: native.Code("callee")},
	})

	res := h.apply(t, 1, h.call(alice, contractA, 0, "legacy"))[0]
	requireOk(t, res)

	callbacks := logsNamed(res.Logs, runtime.CallbackFunctionName)
	require.Len(t, callbacks, 1)
	assert.Equal(t, [][]byte{{0x00}, {42}}, callbacks[0].Topics)
	assert.Equal(t, []byte("legacy closure"), callbacks[0].Data)

	// the stored context is gone once the callback ran
	account, ok := h.view().GetAccount(contractA)
	require.True(t, ok)
	assert.Equal(t, 0, account.Storage.Len())
}

func TestExecutor_Upgrade(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{owner: {}, alice: {}})

	cf := deployCrowdfund(t, h, 10, 10)

	upgrade := func(from types.Address) *types.Transaction {
		return h.call(from, cf, 0, runtime.UpgradeContractFunctionName,
			native.Code("v2"), types.MetadataUpgradeable.Bytes())
	}

	res := h.apply(t, 2, upgrade(alice))[0]
	assert.Equal(t, runtime.ErrUpgradeNotAllowed.Error(), res.Err.Error())

	requireOk(t, h.apply(t, 3, upgrade(owner))[0])

	view := h.view()
	assert.Equal(t, native.Code("v2"), view.GetCode(cf))
	assert.Equal(t, types.TopEncodeUint64(2), view.GetStorage(cf, []byte("version")))
	// storage survives the upgrade
	assert.NotNil(t, view.GetStorage(cf, keyTarget))
}

func TestExecutor_Fees(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice:     {Balance: 1_000_000_000},
		contractB: {Code: native.Code("callee")},
	})

	tx := h.call(alice, contractB, 0, "answer")
	tx.GasPrice = big.NewInt(1)

	res := h.apply(t, 1, tx)[0]
	requireOk(t, res)
	require.Greater(t, res.GasUsed, uint64(0))
	require.Less(t, res.GasUsed, uint64(testGasLimit))

	schedule := gas.DefaultSchedule()
	intrinsic := schedule.BaseOperationCost.TxBase + schedule.BaseOperationCost.TxDataPerByte*uint64(len("answer"))

	view := h.view()
	assert.Equal(t, new(big.Int).SetUint64(1_000_000_000-res.GasUsed), view.GetBalance(alice))
	assert.Equal(t, uint64(1), view.GetNonce(alice))
	assert.Equal(t,
		new(big.Int).SetUint64((res.GasUsed-intrinsic)*DeveloperFeePercentage/100),
		view.GetDeveloperReward(contractB),
	)
}

func TestExecutor_InvalidTransactions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tx   func(h *harness) *types.Transaction
		err  error
	}{
		{
			name: "gas below intrinsic",
			tx: func(h *harness) *types.Transaction {
				tx := h.call(alice, contractB, 0, "answer")
				tx.GasLimit = 1000

				return tx
			},
			err: runtime.ErrOutOfGas,
		},
		{
			name: "cannot pay the value",
			tx: func(h *harness) *types.Transaction {
				return h.call(alice, contractB, 101, "answer")
			},
			err: runtime.ErrInsufficientFunds,
		},
		{
			name: "cannot pay the fee",
			tx: func(h *harness) *types.Transaction {
				tx := h.call(alice, contractB, 0, "answer")
				tx.GasPrice = big.NewInt(1)

				return tx
			},
			err: runtime.ErrInsufficientFunds,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, PreStates{
				alice:     {Balance: 100},
				contractB: {Code: native.Code("callee")},
			})

			res := h.apply(t, 1, c.tx(h))[0]
			assert.ErrorIs(t, res.Err, c.err)

			view := h.view()
			assert.Equal(t, uint64(0), view.GetNonce(alice))
			assert.Equal(t, big.NewInt(100), view.GetBalance(alice))
		})
	}
}

func TestExecutor_PlainTransfers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice:     {Balance: 100},
		contractB: {Code: native.Code("callee")},
	})

	h.modify(t, func(txn *Txn) {
		txn.SetCode(contractC, native.Code("callee"), types.MetadataPayable)
	})

	res := h.apply(t, 1,
		h.call(alice, bob, 10, ""),
		h.call(alice, contractB, 10, ""),
		h.call(alice, contractC, 10, ""),
	)

	requireOk(t, res[0])
	assert.ErrorIs(t, res[1].Err, runtime.ErrNotPayable)
	requireOk(t, res[2])

	view := h.view()
	assert.Equal(t, big.NewInt(80), view.GetBalance(alice))
	assert.Equal(t, big.NewInt(10), view.GetBalance(bob))
	assert.Equal(t, big.NewInt(0), view.GetBalance(contractB))
	assert.Equal(t, big.NewInt(10), view.GetBalance(contractC))
}

func TestExecutor_CallDepth(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{contractB: {Code: native.Code("callee")}})
	tr := h.executor.BeginTxn(types.BlockInfo{Nonce: 1}, types.BlockInfo{})

	c := runtime.NewContractCall(chain.DefaultMaxCallDepth+1, alice, alice, contractB, nil, 1_000_000, "answer", nil)

	res := tr.Call(c)
	assert.ErrorIs(t, res.Err, runtime.ErrCallStackOverflow)
	assert.Equal(t, uint64(1_000_000), res.GasUsed)
}

func TestExecutor_Determinism(t *testing.T) {
	t.Parallel()

	run := func() (types.Hash, []*runtime.ExecutionResult) {
		h := newHarness(t, PreStates{
			alice:     {},
			contractA: {Code: native.Code("caller")},
			contractB: {Code: native.Code("callee")},
			contractC: {Code: native.Code("callee")},
		})

		results, root, err := h.executor.Apply(types.BlockInfo{Nonce: 1}, types.BlockInfo{}, h.call(alice, contractA, 0, "fanout"))
		require.NoError(t, err)

		return root, results
	}

	root1, res1 := run()
	root2, res2 := run()

	assert.Equal(t, root1, root2)
	assert.Equal(t, res1, res2)
}

func TestExecutor_TransferExecuteFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, PreStates{
		alice:     {},
		contractA: {Balance: 100, Code: native.Code("caller")},
		contractB: {Code: native.Code("callee")},
	})

	res := h.apply(t, 1, h.call(alice, contractA, 0, "tryTransfer", contractB.Bytes()))[0]
	requireOk(t, res)
	assert.Equal(t, [][]byte{{byte(runtime.UserError)}}, res.ReturnData)

	failures := logsNamed(res.Logs, types.InternalVMErrorsIdentifier)
	require.Len(t, failures, 1)
	assert.Equal(t, contractA, failures[0].Address)
	assert.Equal(t, [][]byte{contractB.Bytes(), []byte("fail")}, failures[0].Topics)
	assert.Equal(t, []byte("c failed"), failures[0].Data)

	view := h.view()
	assert.Equal(t, big.NewInt(100), view.GetBalance(contractA))
	assert.Equal(t, big.NewInt(0), view.GetBalance(contractB))
	assert.Nil(t, view.GetStorage(contractB, []byte("x")))
	assert.Equal(t, []byte("after"), view.GetStorage(contractA, []byte("a")))
}

func TestExecutor_PositionInBlock(t *testing.T) {
	t.Parallel()

	pre := PreStates{
		alice:     {},
		bob:       {},
		contractA: {Code: native.Code("entropy")},
		contractB: {Code: native.Code("callee")},
	}
	seed := []byte("seed")

	randomTx := func(h *harness) *types.Transaction {
		tx := h.call(alice, contractA, 0, "random")
		tx.Hash = types.BytesToHash([]byte("random"))

		return tx
	}

	h := newHarness(t, pre)
	alone := h.applyBlock(t, types.BlockInfo{Nonce: 1, RandomSeed: seed}, randomTx(h))[0]
	requireOk(t, alone)
	require.Len(t, alone.ReturnData, 2)
	assert.Len(t, alone.ReturnData[0], 8)

	t.Run("same block", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(rt *rapid.T) {
			before := rapid.IntRange(1, 4).Draw(rt, "before")

			h := newHarness(t, pre)

			txs := make([]*types.Transaction, 0, before+1)
			for i := 0; i < before; i++ {
				txs = append(txs, h.call(bob, contractB, 0, "answer"))
			}

			txs = append(txs, randomTx(h))

			res := h.applyBlock(t, types.BlockInfo{Nonce: 1, RandomSeed: seed}, txs...)

			last := res[len(res)-1]
			require.NoError(rt, last.Err)
			assert.Equal(rt, alone.ReturnData, last.ReturnData)
		})
	})

	t.Run("next block", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, pre)
		requireOk(t, h.applyBlock(t, types.BlockInfo{Nonce: 1, RandomSeed: seed}, h.call(bob, contractB, 0, "answer"))[0])

		res := h.applyBlock(t, types.BlockInfo{Nonce: 2, RandomSeed: seed}, randomTx(h))[0]
		requireOk(t, res)
		assert.Equal(t, alone.ReturnData, res.ReturnData)
	})
}

func TestExecutor_NoDeveloperRewardForSystemAccount(t *testing.T) {
	t.Parallel()

	issueCost := chain.DefaultParams().IssueCost
	balance := new(big.Int).Add(issueCost, big.NewInt(100_000_000))

	h := newHarness(t, PreStates{alice: {Balance: balance.Uint64()}})

	tx := h.call(alice, types.ESDTSystemSCAddress, 0, types.BuiltinIssue, []byte("Name"), []byte("TICK"), nil, nil)
	tx.Value = issueCost
	tx.GasLimit = 100_000_000
	tx.GasPrice = big.NewInt(1)

	res := h.apply(t, 1, tx)[0]
	requireOk(t, res)

	reward := h.view().GetDeveloperReward(types.ESDTSystemSCAddress)
	assert.True(t, reward == nil || reward.Sign() == 0)
}
