package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadLeftOrTrim(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0, 0, 1}, PadLeftOrTrim([]byte{1}, 3))
	assert.Equal(t, []byte{2, 3}, PadLeftOrTrim([]byte{1, 2, 3}, 2))
	assert.Equal(t, []byte{1, 2}, PadLeftOrTrim([]byte{1, 2}, 2))
}

func TestSetupDataDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, SetupDataDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// existing directories are fine
	require.NoError(t, SetupDataDir(dir))
}
