package deployments

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/config"
)

const (
	chainIDFlag = "chain-id"
	allFlag     = "all"
)

var (
	params = &deploymentsParams{}

	errInvalidChainID = errors.New("chain id must be greater than 0")
)

type deploymentsParams struct {
	chainID uint64
	all     bool

	config *config.Config
}

func (p *deploymentsParams) validateFlags(cmd *cobra.Command) error {
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

func (p *deploymentsParams) getRequiredFlags() []string {
	return []string{
		chainIDFlag,
	}
}
