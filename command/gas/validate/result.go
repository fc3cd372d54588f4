package validate

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/wasm-vm/command/helper"
)

type Group struct {
	Name  string `json:"name"`
	Costs int    `json:"costs"`
}

type ValidateResult struct {
	Path   string   `json:"path"`
	Groups []*Group `json:"groups"`
	Total  int      `json:"total"`
}

func (r *ValidateResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[GAS SCHEDULE]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("File|%s", r.Path),
		fmt.Sprintf("Costs|%d", r.Total),
	}))
	buffer.WriteString("\n\n")

	rows := make([]string, 0, len(r.Groups)+1)
	rows = append(rows, "Group|Costs")

	for _, g := range r.Groups {
		rows = append(rows, fmt.Sprintf("%s|%d", g.Name, g.Costs))
	}

	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
