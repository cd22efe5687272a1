package deploy

import (
	"bytes"
	"fmt"

	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/deployer"
)

type ContractResult struct {
	Label       string `json:"label"`
	Contract    string `json:"contract"`
	Address     string `json:"address"`
	TxHash      string `json:"txHash"`
	GasUsed     uint64 `json:"gasUsed"`
	BlockNumber uint64 `json:"blockNumber"`
}

type DeployResult struct {
	ChainID   uint64           `json:"chainId"`
	RunID     string           `json:"runId"`
	Contracts []ContractResult `json:"contracts"`
}

func newDeployResult(chainID uint64, runID string, deployments []*deployer.Deployment) *DeployResult {
	result := &DeployResult{
		ChainID:   chainID,
		RunID:     runID,
		Contracts: make([]ContractResult, len(deployments)),
	}

	for i, d := range deployments {
		result.Contracts[i] = ContractResult{
			Label:       d.Label,
			Contract:    d.Contract,
			Address:     d.Address.Hex(),
			TxHash:      d.TxHash.Hex(),
			GasUsed:     d.GasUsed,
			BlockNumber: d.BlockNumber,
		}
	}

	return result
}

// GetOutput prints one address line per contract, in deployment order
func (r *DeployResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, len(r.Contracts))
	for i, c := range r.Contracts {
		rows[i] = fmt.Sprintf("%s deploy address|%s", c.Label, c.Address)
	}

	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
