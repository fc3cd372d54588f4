package runtime

import (
	"errors"
	"fmt"
)

// ReturnCode is the status of a finished frame as seen by its caller
type ReturnCode uint64

const (
	Ok ReturnCode = iota
	FunctionNotFound
	FunctionWrongSignature
	ContractNotFound
	UserError
	OutOfGas
	AccountCollision
	OutOfFunds
	CallStackOverFlow
	ContractInvalid
	ExecutionFailed
	UpgradeFailed
	SimulateFailed
)

func (r ReturnCode) String() string {
	switch r {
	case Ok:
		return "ok"
	case FunctionNotFound:
		return "function not found"
	case FunctionWrongSignature:
		return "wrong signature for function"
	case ContractNotFound:
		return "contract not found"
	case UserError:
		return "user error"
	case OutOfGas:
		return "out of gas"
	case AccountCollision:
		return "account collision"
	case OutOfFunds:
		return "out of funds"
	case CallStackOverFlow:
		return "call stack overflow"
	case ContractInvalid:
		return "contract invalid"
	case ExecutionFailed:
		return "execution failed"
	case UpgradeFailed:
		return "upgrade failed"
	case SimulateFailed:
		return "simulate failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(r))
	}
}

// VMError is a failure carrying the code reported to the caller of the frame
type VMError struct {
	Code    ReturnCode
	Message string
}

func NewError(code ReturnCode, msg string) *VMError {
	return &VMError{Code: code, Message: msg}
}

// NewUserError is the error raised by signalError
func NewUserError(msg string) *VMError {
	return NewError(UserError, msg)
}

// NewExecutionFailed wraps an arbitrary failure message
func NewExecutionFailed(msg string) *VMError {
	return NewError(ExecutionFailed, msg)
}

func (e *VMError) Error() string {
	return e.Message
}

func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError) //nolint:errorlint
	if !ok {
		return false
	}

	return t.Code == e.Code && t.Message == e.Message
}

var (
	ErrFunctionNotFound       = NewError(FunctionNotFound, "function not found")
	ErrFunctionWrongSignature = NewError(FunctionWrongSignature, "wrong signature for function")
	ErrContractNotFound       = NewError(ContractNotFound, "contract not found")
	ErrOutOfGas               = NewError(OutOfGas, "not enough gas")
	ErrAccountCollision       = NewError(AccountCollision, "account collision")
	ErrInsufficientFunds      = NewError(OutOfFunds, "insufficient funds")
	ErrCallStackOverflow      = NewError(CallStackOverFlow, "max call depth reached")
	ErrContractInvalid        = NewError(ContractInvalid, "invalid contract code")
	ErrUpgradeNotAllowed      = NewError(UpgradeFailed, "upgrade not allowed")
	ErrExecutionFailed        = NewError(ExecutionFailed, "execution failed")

	ErrMemoryOutOfBounds    = NewExecutionFailed("memory out of bounds")
	ErrArgIndexOutOfRange   = NewExecutionFailed("argument index out of range")
	ErrReturnDataOutOfRange = NewExecutionFailed("return data index out of range")
	ErrReservedKeyWrite     = NewExecutionFailed("cannot write to storage under reserved key")
	ErrReadOnlyViolation    = NewExecutionFailed("cannot write on read only mode")
	ErrDivisionByZero       = NewExecutionFailed("division by 0")
	ErrNegativeLength       = NewExecutionFailed("negative length")
	ErrBadBounds            = NewExecutionFailed("bad bounds")
	ErrSyncCallToSelf       = NewExecutionFailed("cannot execute on same context a contract on the same address")
	ErrNotPayable           = NewExecutionFailed("sending value to non payable contract")
	ErrInvalidAddress       = NewExecutionFailed("invalid address")
	ErrInvalidTokenID       = NewExecutionFailed("invalid token identifier")
	ErrInvalidCallback      = NewExecutionFailed("invalid callback")
	ErrCrossShardCall       = NewExecutionFailed("cross shard execution is not supported")
	ErrAsyncCallNotAllowed  = NewExecutionFailed("async call is not allowed at this location")
	ErrUnknownBuiltin       = NewExecutionFailed("unknown builtin function")
)

// ErrAsyncCallIssued ends a frame successfully right after it registered a legacy async call
var ErrAsyncCallIssued = errors.New("async call issued")

// ReturnCodeOf maps an error to the code reported to the caller
func ReturnCodeOf(err error) ReturnCode {
	if err == nil {
		return Ok
	}

	var vmErr *VMError
	if errors.As(err, &vmErr) {
		return vmErr.Code
	}

	return ExecutionFailed
}

// MessageOf returns the message reported to the caller, empty on success
func MessageOf(err error) string {
	if err == nil {
		return ""
	}

	var vmErr *VMError
	if errors.As(err, &vmErr) {
		return vmErr.Message
	}

	return err.Error()
}

// NestedReturnCode is the code a parent observes for a failed child frame.
// Running out of gas inside a child is reported as a plain execution failure.
func NestedReturnCode(err error) ReturnCode {
	code := ReturnCodeOf(err)
	if code == OutOfGas {
		return ExecutionFailed
	}

	return code
}
