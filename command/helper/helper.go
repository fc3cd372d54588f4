package helper

import (
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/command"
)

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterLogFlags registers the logging settings for all child commands
func RegisterLogFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.LogLevelFlag,
		command.DefaultLogLevel,
		"the log level for console output",
	)

	cmd.PersistentFlags().Bool(
		command.JSONLogFlag,
		false,
		"log in json format (default false)",
	)
}

// FormatList formats a list, using a specific blank value replacement
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}
