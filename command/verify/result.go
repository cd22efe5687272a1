package verify

import (
	"bytes"
	"fmt"

	"github.com/punchingpaco/pacodeploy/command/helper"
)

type ContractStatus struct {
	Label   string `json:"label"`
	Address string `json:"address"`
	HasCode bool   `json:"hasCode"`
}

type VerifyResult struct {
	RunID     string           `json:"runId"`
	Contracts []ContractStatus `json:"contracts"`
}

// Missing returns the labels of the contracts without code
func (r *VerifyResult) Missing() []string {
	var missing []string

	for _, c := range r.Contracts {
		if !c.HasCode {
			missing = append(missing, c.Label)
		}
	}

	return missing
}

func (r *VerifyResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString(fmt.Sprintf("\n[VERIFY RUN %s]\n", r.RunID))

	rows := make([]string, len(r.Contracts))

	for i, c := range r.Contracts {
		status := "ok"
		if !c.HasCode {
			status = "NO CODE"
		}

		rows[i] = fmt.Sprintf("%s|%s|%s", c.Label, c.Address, status)
	}

	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
