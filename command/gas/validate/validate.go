package validate

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/command"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
)

func GetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schedule file]",
		Short: "Checks that a gas schedule file sets every cost and nothing else",
		Args:  cobra.ExactArgs(1),
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, args []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	result, err := validate(args[0])
	if err != nil {
		outputter.SetError(fmt.Errorf("invalid gas schedule %s: %w", args[0], err))

		return
	}

	outputter.SetCommandResult(result)
}

func validate(path string) (*ValidateResult, error) {
	schedule, err := gas.LoadSchedule(path)
	if err != nil {
		return nil, err
	}

	raw, err := schedule.Encode()
	if err != nil {
		return nil, err
	}

	res := &ValidateResult{Path: path}

	for name, costs := range raw {
		group := &Group{Name: name}
		if m, ok := costs.(map[string]interface{}); ok {
			group.Costs = len(m)
		}

		res.Groups = append(res.Groups, group)
		res.Total += group.Costs
	}

	sort.Slice(res.Groups, func(i, j int) bool {
		return res.Groups[i].Name < res.Groups[j].Name
	})

	return res, nil
}
