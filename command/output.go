package command

import (
	"io"

	"github.com/spf13/cobra"
)

// OutputFormatter is the standardized interface all output formatters
// should use
type OutputFormatter interface {
	// getErrorOutput returns the CLI command error
	getErrorOutput() string

	// getCommandOutput returns the CLI command output
	getCommandOutput() string

	// SetError sets the encountered error
	SetError(err error)

	// SetCommandResult sets the result of the command execution
	SetCommandResult(result CommandResult)

	// WriteOutput writes the result / error output
	WriteOutput()
}

type CommandResult interface {
	GetOutput() string
}

func shouldOutputJSON(baseCmd *cobra.Command) bool {
	flag := baseCmd.Flag(JSONOutputFlag)

	return flag != nil && flag.Changed
}

// InitializeOutputter picks the formatter requested by the flags of cmd. The output
// goes to the writers of cmd.
func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	common := commonOutputFormatter{
		out: cmd.OutOrStdout(),
		err: cmd.ErrOrStderr(),
	}

	if shouldOutputJSON(cmd) {
		return &JSONOutput{common}
	}

	return &CLIOutput{common}
}

type commonOutputFormatter struct {
	out io.Writer
	err io.Writer

	errorOutput   error
	commandOutput CommandResult
}

func (c *commonOutputFormatter) SetError(err error) {
	c.errorOutput = err
}

func (c *commonOutputFormatter) SetCommandResult(result CommandResult) {
	c.commandOutput = result
}
