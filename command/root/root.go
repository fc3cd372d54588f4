package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/command/gas"
	"github.com/0xPolygon/wasm-vm/command/helper"
	"github.com/0xPolygon/wasm-vm/command/run"
	"github.com/0xPolygon/wasm-vm/command/version"
	"github.com/0xPolygon/wasm-vm/versioning"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	// Execute prints the error once
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:           "wasm-vm",
			Short:         "A WASM smart contract virtual machine, driven by scenario files",
			Version:       versioning.Describe(),
			SilenceErrors: true,
		},
	}

	rootCommand.baseCmd.SetVersionTemplate("wasm-vm {{.Version}}\n")

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterLogFlags(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		run.GetCommand(),
		gas.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)

		os.Exit(1)
	}
}
