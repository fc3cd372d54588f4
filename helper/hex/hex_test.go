package hex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected []byte
	}{
		{"with prefix", "0x0102", []byte{1, 2}},
		{"without prefix", "ff", []byte{0xff}},
		{"odd length", "0x102", []byte{1, 2}},
		{"empty", "0x", []byte{}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			res, err := DecodeHex(c.input)
			require.NoError(t, err)
			assert.Equal(t, c.expected, res)
		})
	}

	_, err := DecodeHex("0xzz")
	assert.Error(t, err)
}

func TestMustDecodeHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x0a0b", EncodeToHex(MustDecodeHex("0A0B")))
	assert.Panics(t, func() { MustDecodeHex("0xgg") })
}
