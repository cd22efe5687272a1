package verify

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/config"
)

const (
	chainIDFlag = "chain-id"
	runIDFlag   = "run"
)

var (
	params = &verifyParams{}

	errInvalidChainID = errors.New("chain id must be greater than 0")
)

type verifyParams struct {
	chainID uint64
	runID   string

	config *config.Config
}

func (p *verifyParams) validateFlags(cmd *cobra.Command) error {
	if p.chainID == 0 {
		return errInvalidChainID
	}

	cfg, err := helper.LoadConfig(cmd)
	if err != nil {
		return err
	}

	p.config = cfg

	return nil
}

func (p *verifyParams) getRequiredFlags() []string {
	return []string{
		chainIDFlag,
	}
}
