package dump

import (
	"fmt"
)

type DumpResult struct {
	Output   string `json:"output,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

func (r *DumpResult) GetOutput() string {
	if r.Output != "" {
		return fmt.Sprintf("\n[GAS SCHEDULE]\nSchedule written to %s\n", r.Output)
	}

	return r.Schedule
}
