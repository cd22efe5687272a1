package deployments

import (
	"bytes"
	"fmt"
	"time"

	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/store"
)

type DeploymentsResult struct {
	ChainID uint64          `json:"chainId"`
	Records []*store.Record `json:"records"`
}

func (r *DeploymentsResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString(fmt.Sprintf("\n[DEPLOYMENTS ON CHAIN %d]\n", r.ChainID))

	if len(r.Records) == 0 {
		buffer.WriteString("No deployments recorded\n")

		return buffer.String()
	}

	rows := make([]string, len(r.Records)+1)
	rows[0] = "Run|#|Label|Contract|Address|Block|Deployed at"

	for i, record := range r.Records {
		rows[i+1] = fmt.Sprintf("%s|%d|%s|%s|%s|%d|%s",
			record.RunID,
			record.Index+1,
			record.Label,
			record.Contract,
			record.Address.Hex(),
			record.BlockNumber,
			record.DeployedAt.Format(time.RFC3339),
		)
	}

	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
