package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallData(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		data     string
		function string
		args     [][]byte
		err      bool
	}{
		{name: "empty", data: "", args: [][]byte{}},
		{name: "function only", data: "add", function: "add", args: [][]byte{}},
		{name: "arguments", data: "add@01@ff00", function: "add", args: [][]byte{{0x01}, {0xff, 0x00}}},
		{name: "empty argument", data: "add@", function: "add", args: [][]byte{{}}},
		{name: "odd hex", data: "add@123", err: true},
		{name: "bad hex", data: "add@zz", err: true},
		{name: "missing function", data: "@01", err: true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			function, args, err := ParseCallData([]byte(c.data))
			if c.err {
				require.ErrorIs(t, err, ErrInvalidCallData)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.function, function)
			assert.Equal(t, c.args, args)
		})
	}
}

func TestBuildCallData(t *testing.T) {
	t.Parallel()

	data := BuildCallData("transfer", []byte{0x0a}, []byte{})
	assert.Equal(t, "transfer@0a@", string(data))

	function, args, err := ParseCallData(data)
	require.NoError(t, err)
	assert.Equal(t, "transfer", function)
	assert.Equal(t, [][]byte{{0x0a}, {}}, args)
}
