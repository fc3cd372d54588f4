package vmhooks

import (
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/types"
)

var (
	ErrNoEGLDPayment          = runtime.NewUserError("function does not accept EGLD payment")
	ErrNoESDTPayment          = runtime.NewUserError("function does not accept ESDT payment")
	ErrInvalidTokenIndex      = runtime.NewExecutionFailed("invalid token index")
	ErrEGLDWithESDT           = runtime.NewExecutionFailed("cannot transfer EGLD and ESDT in the same call")
	ErrEmptyPromiseFunction   = runtime.NewExecutionFailed("promises can only be created for a named endpoint")
	ErrInvalidCallData        = runtime.NewExecutionFailed(types.ErrInvalidCallData.Error())
	ErrDeleteNotSupported     = runtime.NewExecutionFailed("contract deletion is not supported")
	ErrNegativeShift          = runtime.NewExecutionFailed("bits to shift must not be negative")
	ErrPointNotOnCurve        = runtime.NewExecutionFailed("point is not on the curve")
	ErrNegativeLogArgument    = runtime.NewExecutionFailed("logarithm of a non positive number")
	ErrBufferToBigFloat       = runtime.NewExecutionFailed("buffer does not hold a big float")
	ErrInvalidNumberOfTopics  = runtime.NewExecutionFailed("invalid number of topics")
	ErrStorageValueOutOfRange = runtime.NewExecutionFailed("storage value out of range")
	ErrArgumentOutOfRange     = runtime.NewExecutionFailed("argument out of range")
	ErrBigIntNotInt64         = runtime.NewExecutionFailed("big int does not fit in an int64")
	ErrNegativeUnsigned       = runtime.NewExecutionFailed("cannot encode a negative number as unsigned")
	ErrBLSVerify              = runtime.NewExecutionFailed("err verifyBLS")
	ErrEd25519Verify          = runtime.NewExecutionFailed("err verifyEd25519")
	ErrSecp256k1Verify        = runtime.NewExecutionFailed("err verifySecp256k1")
)
