package keccak

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeccak256(t *testing.T) {
	t.Parallel()

	// keccak256 of the empty string
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256(nil, nil)),
	)

	assert.Equal(t, Keccak256(nil, []byte("abcdef")), Keccak256Concat([]byte("abc"), []byte("def")))
}
