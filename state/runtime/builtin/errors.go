package builtin

import "github.com/0xPolygon/wasm-vm/state/runtime"

var (
	ErrInvalidArguments    = runtime.NewExecutionFailed("invalid arguments to process built-in function")
	ErrCalledWithValue     = runtime.NewExecutionFailed("built in function called with tx value is not allowed")
	ErrNegativeValue       = runtime.NewExecutionFailed("negative value")
	ErrInvalidReceiver     = runtime.NewExecutionFailed("invalid receiver address")
	ErrActionNotAllowed    = runtime.NewExecutionFailed("action is not allowed")
	ErrFrozen              = runtime.NewExecutionFailed("ESDT is frozen for this account")
	ErrPaused              = runtime.NewExecutionFailed("esdt token is paused")
	ErrLimitedTransfer     = runtime.NewExecutionFailed("token has limited transfer, transfer role is required")
	ErrTokenNotFound       = runtime.NewExecutionFailed("no token with the given identifier")
	ErrNFTNotFound         = runtime.NewExecutionFailed("NFT token does not exist")
	ErrWrongTokenType      = runtime.NewExecutionFailed("operation not supported for this token type")
	ErrInvalidQuantity     = runtime.NewExecutionFailed("invalid quantity")
	ErrInvalidRoyalties    = runtime.NewExecutionFailed("invalid royalties value")
	ErrInvalidRole         = runtime.NewExecutionFailed("invalid role name")
	ErrNotPayable          = runtime.ErrNotPayable
	ErrOperationNotAllowed = runtime.NewExecutionFailed("operation not permitted")

	// ESDT system contract
	ErrIssueCost         = runtime.NewUserError("callValue not equals with baseIssuingCost")
	ErrInvalidTicker     = runtime.NewUserError("ticker name is not valid")
	ErrInvalidTokenName  = runtime.NewUserError("token name is not valid")
	ErrInvalidDecimals   = runtime.NewUserError("invalid number of decimals")
	ErrInvalidProperty   = runtime.NewUserError("invalid token property")
	ErrTokenExists       = runtime.NewUserError("token identifier already exists")
	ErrNotSystemContract = runtime.NewUserError("function must be called on the ESDT system contract")
	ErrNotManager        = runtime.NewUserError("can be called by owner only")
	ErrCannotPause       = runtime.NewUserError("cannot pause/un-pause")
	ErrCannotFreeze      = runtime.NewUserError("cannot freeze")
)
