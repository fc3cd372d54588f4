package versioning

import (
	"fmt"
	"runtime"
)

// Build information, set with -ldflags "-X github.com/0xPolygon/wasm-vm/versioning.Version=..."
var (
	Version   string
	Branch    string
	Commit    string
	BuildTime string
)

const unknown = "dev"

// Describe returns a one line summary of the build, for --version
func Describe() string {
	version := Version
	if version == "" {
		version = unknown
	}

	if Commit == "" {
		return fmt.Sprintf("%s (%s)", version, runtime.Version())
	}

	return fmt.Sprintf("%s (commit %s, %s)", version, Commit, runtime.Version())
}
