package root

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/wasm-vm/chain"
)

func TestRootCommand(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want []string
	}{
		{"version flag", []string{"--version"}, []string{"wasm-vm dev"}},
		{"version command", []string{"version"}, []string{"[VERSION INFO]", "EI version", chain.EIVersion}},
		{"version json", []string{"version", "--json"}, []string{`"eiVersion":"` + chain.EIVersion + `"`}},
		{"subcommands", []string{"--help"}, []string{"run", "gas", "version"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rc := NewRootCommand()

			out := new(bytes.Buffer)
			rc.baseCmd.SetOut(out)
			rc.baseCmd.SetErr(out)
			rc.baseCmd.SetArgs(c.args)

			require.NoError(t, rc.baseCmd.Execute())

			for _, want := range c.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}
