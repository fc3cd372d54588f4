package chain

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.EIVersion = "0.1"
	p.MaxCallDepth = 0
	p.NumShards = 0

	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedEIVersion)

	merr, ok := err.(*multierror.Error) //nolint:errorlint
	require.True(t, ok)
	assert.Len(t, merr.Errors, 3)
}
