package runtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnCodeOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code ReturnCode
		msg  string
	}{
		{"nil", nil, Ok, ""},
		{"vm error", ErrOutOfGas, OutOfGas, "not enough gas"},
		{"user error", NewUserError("bad input"), UserError, "bad input"},
		{"wrapped", fmt.Errorf("frame: %w", ErrContractNotFound), ContractNotFound, "contract not found"},
		{"plain error", errors.New("boom"), ExecutionFailed, "boom"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.code, ReturnCodeOf(c.err))
			assert.Equal(t, c.msg, MessageOf(c.err))
		})
	}
}

func TestVMError_Is(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, fmt.Errorf("x: %w", ErrOutOfGas), ErrOutOfGas)
	assert.ErrorIs(t, NewError(OutOfGas, "not enough gas"), ErrOutOfGas)
	assert.NotErrorIs(t, NewUserError("not enough gas"), ErrOutOfGas)
}

func TestNestedReturnCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExecutionFailed, NestedReturnCode(ErrOutOfGas))
	assert.Equal(t, UserError, NestedReturnCode(NewUserError("x")))
	assert.Equal(t, Ok, NestedReturnCode(nil))
}

func TestExecutionResult_UpdateGasUsed(t *testing.T) {
	t.Parallel()

	r := &ExecutionResult{GasLeft: 40}
	r.UpdateGasUsed(100)
	assert.Equal(t, uint64(60), r.GasUsed)

	r = NewFailedResult(100, ErrOutOfGas)
	assert.Equal(t, uint64(0), r.GasLeft)
	assert.Equal(t, uint64(100), r.GasUsed)
	assert.Equal(t, OutOfGas, r.ReturnCode())
}
