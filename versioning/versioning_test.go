package versioning

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	Version, Commit = "", ""
	assert.Equal(t, "dev ("+runtime.Version()+")", Describe())

	Version, Commit = "v0.3.0", "abc123"
	assert.Equal(t, "v0.3.0 (commit abc123, "+runtime.Version()+")", Describe())

	Version, Commit = "", ""
}
