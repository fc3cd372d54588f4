package command

import (
	"fmt"
)

// CLIOutput prints results as tables. A result set alongside an error is still
// printed, before the error.
type CLIOutput struct {
	commonOutputFormatter
}

func (cli *CLIOutput) WriteOutput() {
	if cli.commandOutput != nil {
		_, _ = fmt.Fprintln(cli.out, cli.getCommandOutput())
	}

	if cli.errorOutput != nil {
		_, _ = fmt.Fprintf(cli.err, "Error: %s\n", cli.getErrorOutput())
	}
}

func (cli *CLIOutput) getErrorOutput() string {
	return cli.errorOutput.Error()
}

func (cli *CLIOutput) getCommandOutput() string {
	return cli.commandOutput.GetOutput()
}
