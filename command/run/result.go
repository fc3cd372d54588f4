package run

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/wasm-vm/command/helper"
	"github.com/0xPolygon/wasm-vm/scenario"
)

type ScenarioResult struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Steps   int    `json:"steps"`
	Txs     int    `json:"txs"`
	GasUsed uint64 `json:"gasUsed"`
	Root    string `json:"root"`
	Error   string `json:"error,omitempty"`
}

type RunResult struct {
	Scenarios []*ScenarioResult `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
}

func newRunResult(reports []*scenario.Report) *RunResult {
	res := &RunResult{
		Scenarios: make([]*ScenarioResult, 0, len(reports)),
	}

	for _, report := range reports {
		r := &ScenarioResult{
			ID:      report.ID,
			Path:    report.Path,
			Name:    report.Name,
			Passed:  report.Passed(),
			Steps:   report.Steps,
			Txs:     report.Txs,
			GasUsed: report.GasUsed,
			Root:    report.Root.String(),
		}

		if report.Err != nil {
			r.Error = report.Err.Error()
			res.Failed++
		} else {
			res.Passed++
		}

		res.Scenarios = append(res.Scenarios, r)
	}

	return res
}

func (r *RunResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, 0, len(r.Scenarios)+1)
	rows = append(rows, "Scenario|Status|Steps|Txs|Gas used")

	for _, s := range r.Scenarios {
		status := "PASS"
		if !s.Passed {
			status = "FAIL"
		}

		rows = append(rows, fmt.Sprintf("%s|%s|%d|%d|%d", s.Path, status, s.Steps, s.Txs, s.GasUsed))
	}

	buffer.WriteString("\n[SCENARIOS]\n")
	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	for _, s := range r.Scenarios {
		if s.Error != "" {
			buffer.WriteString(fmt.Sprintf("\n[FAILED] %s\n%s\n", s.Path, s.Error))
		}
	}

	buffer.WriteString("\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Passed|%d", r.Passed),
		fmt.Sprintf("Failed|%d", r.Failed),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
