package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/command"
	"github.com/0xPolygon/wasm-vm/versioning"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the build information and the executor interface version of the vm",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	outputter.SetCommandResult(
		&VersionResult{
			Version:   versioning.Version,
			Commit:    versioning.Commit,
			Branch:    versioning.Branch,
			BuildTime: versioning.BuildTime,
			GoVersion: runtime.Version(),
			EIVersion: chain.EIVersion,
		},
	)
}
