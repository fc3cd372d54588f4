// Package contracts holds sample contracts for the native runtime. They are
// deployable from scenarios as native:<name>.
package contracts

import (
	"math/big"

	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/native"
	"github.com/0xPolygon/wasm-vm/types"
)

const (
	Adder        = "adder"
	Crowdfunding = "crowdfunding"
	Forwarder    = "forwarder"
)

// Register adds every sample contract to n
func Register(n *native.Native) {
	n.Register(Adder, adder())
	n.Register(Crowdfunding, crowdfunding())
	n.Register(Forwarder, forwarder())
}

var keySum = []byte("sum")

func adder() native.Contract {
	return native.Contract{
		"init": func(ctx *native.Context) {
			ctx.StorageStoreBigUint(keySum, ctx.ArgumentBigUint(0))
		},
		"upgrade": func(ctx *native.Context) {},
		"add": func(ctx *native.Context) {
			ctx.CheckNoPayment()

			sum := new(big.Int).Add(ctx.StorageLoadBigUint(keySum), ctx.ArgumentBigUint(0))
			ctx.StorageStoreBigUint(keySum, sum)
		},
		"getSum": func(ctx *native.Context) {
			ctx.FinishBigUint(ctx.StorageLoadBigUint(keySum))
		},
	}
}

var (
	keyTarget   = []byte("target")
	keyDeadline = []byte("deadline")
	keyToken    = []byte("tokenIdentifier")
	keyClaimed  = []byte("claimed")
)

// funding status, as returned by the status endpoint
const (
	statusFundingPeriod byte = iota
	statusSuccessful
	statusFailed
)

func depositKey(addr types.Address) []byte {
	return append([]byte("deposit"), addr.Bytes()...)
}

func crowdfunding() native.Contract {
	// funds are in EGLD unless a token was given at deploy
	token := func(ctx *native.Context) []byte {
		return ctx.StorageLoad(keyToken)
	}

	funds := func(ctx *native.Context) *big.Int {
		if t := token(ctx); len(t) > 0 {
			return ctx.ESDTBalance(ctx.SelfAddress(), t, 0)
		}

		return ctx.EGLDBalance(ctx.SelfAddress())
	}

	status := func(ctx *native.Context) byte {
		if ctx.BlockTimestamp() <= ctx.StorageLoadUint64(keyDeadline) {
			return statusFundingPeriod
		}

		if len(ctx.StorageLoad(keyClaimed)) > 0 || funds(ctx).Cmp(ctx.StorageLoadBigUint(keyTarget)) >= 0 {
			return statusSuccessful
		}

		return statusFailed
	}

	send := func(ctx *native.Context, to types.Address, amount *big.Int) {
		if t := token(ctx); len(t) > 0 {
			code := ctx.TransferESDTExecute(to, []*types.EsdtTokenPayment{types.NewEsdtTokenPayment(t, 0, amount)}, 0, "")
			ctx.Require(code == runtime.Ok, "transfer failed")

			return
		}

		ctx.TransferEGLD(to, amount)
	}

	return native.Contract{
		"init": func(ctx *native.Context) {
			target := ctx.ArgumentBigUint(0)
			ctx.Require(target.Sign() > 0, "Target must be more than 0")

			deadline := ctx.ArgumentUint64(1)
			ctx.Require(deadline > ctx.BlockTimestamp(), "Deadline can't be in the past")

			ctx.StorageStoreBigUint(keyTarget, target)
			ctx.StorageStoreUint64(keyDeadline, deadline)

			if ctx.NumArguments() > 2 {
				ctx.StorageStore(keyToken, ctx.Argument(2))
			}
		},
		"fund": func(ctx *native.Context) {
			ctx.Require(status(ctx) == statusFundingPeriod, "cannot fund after deadline")

			amount := ctx.CallValue()

			if t := token(ctx); len(t) > 0 {
				payments := ctx.ESDTTransfers()
				ctx.Require(len(payments) == 1 && string(payments[0].TokenID) == string(t), "wrong token")

				amount = payments[0].Amount
			}

			key := depositKey(ctx.Caller())
			ctx.StorageStoreBigUint(key, new(big.Int).Add(ctx.StorageLoadBigUint(key), amount))
		},
		"status": func(ctx *native.Context) {
			ctx.Finish([]byte{status(ctx)})
		},
		"getCurrentFunds": func(ctx *native.Context) {
			ctx.FinishBigUint(funds(ctx))
		},
		"getTarget": func(ctx *native.Context) {
			ctx.FinishBigUint(ctx.StorageLoadBigUint(keyTarget))
		},
		"getDeadline": func(ctx *native.Context) {
			ctx.FinishUint64(ctx.StorageLoadUint64(keyDeadline))
		},
		"getDeposit": func(ctx *native.Context) {
			ctx.FinishBigUint(ctx.StorageLoadBigUint(depositKey(ctx.ArgumentAddress(0))))
		},
		"claim": func(ctx *native.Context) {
			switch status(ctx) {
			case statusFundingPeriod:
				ctx.SignalError("cannot claim before deadline")

			case statusSuccessful:
				ctx.Require(ctx.Caller() == ctx.Owner(), "only owner can claim successful funding")

				ctx.StorageStore(keyClaimed, []byte{1})
				send(ctx, ctx.Caller(), funds(ctx))

			case statusFailed:
				key := depositKey(ctx.Caller())

				if deposit := ctx.StorageLoadBigUint(key); deposit.Sign() > 0 {
					ctx.StorageStore(key, nil)
					send(ctx, ctx.Caller(), deposit)
				}
			}
		},
	}
}

var keyLastResult = []byte("lastResult")

// forwarder relays payments and calls to other contracts
func forwarder() native.Contract {
	return native.Contract{
		"init": func(ctx *native.Context) {},
		// forward sends every received token to the address in the first argument
		"forward": func(ctx *native.Context) {
			to := ctx.ArgumentAddress(0)

			if value := ctx.CallValue(); value.Sign() > 0 {
				ctx.TransferEGLD(to, value)
			}

			if payments := ctx.ESDTTransfers(); len(payments) > 0 {
				code := ctx.TransferESDTExecute(to, payments, 0, "")
				ctx.Require(code == runtime.Ok, "forward failed")
			}
		},
		"syncCall": func(ctx *native.Context) {
			args := ctx.Arguments()

			ctx.ExecuteOnDestContext(types.BytesToAddress(args[0]), big.NewInt(0), 0, string(args[1]), args[2:]...)
		},
		"asyncCall": func(ctx *native.Context) {
			args := ctx.Arguments()

			ctx.SetAsyncCallback("callBack", args[1], 0)
			ctx.AsyncCall(types.BytesToAddress(args[0]), big.NewInt(0), string(args[1]), args[2:]...)
		},
		// the callback keeps the status and the data of the last answer
		"callBack": func(ctx *native.Context) {
			args := ctx.Arguments()

			ctx.StorageStore(keyLastResult, types.BuildCallData(string(ctx.CallbackClosure()), args...))
			ctx.WriteLog("callBack", args, ctx.CallbackClosure())
		},
		"lastResult": func(ctx *native.Context) {
			ctx.Finish(ctx.StorageLoad(keyLastResult))
		},
	}
}
