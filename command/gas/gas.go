package gas

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/command/gas/dump"
	"github.com/0xPolygon/wasm-vm/command/gas/validate"
)

func GetCommand() *cobra.Command {
	gasCmd := &cobra.Command{
		Use:   "gas",
		Short: "Top level command for working with gas schedules. Only accepts subcommands.",
	}

	registerSubcommands(gasCmd)

	return gasCmd
}

func registerSubcommands(baseCmd *cobra.Command) {
	// gas dump
	baseCmd.AddCommand(dump.GetCommand())

	// gas validate
	baseCmd.AddCommand(validate.GetCommand())
}
