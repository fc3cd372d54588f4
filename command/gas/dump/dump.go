package dump

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/command"
)

func GetCommand() *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:     "dump",
		Short:   "Prints the built-in gas schedule, as a starting point for a custom one",
		Args:    cobra.NoArgs,
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(dumpCmd)

	return dumpCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.format,
		formatFlag,
		formatJSON,
		fmt.Sprintf("the schedule format (%s or %s)", formatJSON, formatYAML),
	)

	cmd.Flags().StringVar(
		&params.output,
		outputFlag,
		"",
		"the file the schedule is written to. The schedule is printed when empty",
	)
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return params.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	if err := params.initSchedule(); err != nil {
		outputter.SetError(err)

		return
	}

	if params.output != "" {
		if err := params.writeSchedule(); err != nil {
			outputter.SetError(err)

			return
		}
	}

	result, err := params.getResult()
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}
