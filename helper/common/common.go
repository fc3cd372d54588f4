package common

import (
	"fmt"
	"os"
	"path/filepath"
)

// PadLeftOrTrim left-pads the passed in byte array to the specified size,
// or trims the array if it exceeds the passed in size
func PadLeftOrTrim(bb []byte, size int) []byte {
	l := len(bb)
	if l == size {
		return bb
	}

	if l > size {
		return bb[l-size:]
	}

	tmp := make([]byte, size)
	copy(tmp[size-l:], bb)

	return tmp
}

// SetupDataDir creates the data directory if it does not exist yet
func SetupDataDir(dataDir string) error {
	path, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create data dir: (%s): %w", dataDir, err)
	}

	return nil
}
