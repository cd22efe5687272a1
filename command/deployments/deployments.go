package deployments

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command"
	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/store"
)

// GetCommand returns the deployments command
func GetCommand() *cobra.Command {
	deploymentsCmd := &cobra.Command{
		Use:     "deployments",
		Short:   "Lists the recorded deployments of a chain",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	helper.RegisterConfigFlags(deploymentsCmd)
	setFlags(deploymentsCmd)
	helper.SetRequiredFlags(deploymentsCmd, params.getRequiredFlags())

	return deploymentsCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		0,
		"the chain id the deployments were made on",
	)

	cmd.Flags().BoolVar(
		&params.all,
		allFlag,
		false,
		"list every run instead of the latest one",
	)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	return params.validateFlags(cmd)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	logger := command.NewLogger("deployments", params.config.LogLevel)

	result, err := listDeployments(logger, params.config.StorePath(), params.chainID, params.all)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

// listDeployments reads the records of a chain without creating the store.
// A missing store or a chain without runs is an empty result.
func listDeployments(logger hclog.Logger, path string, chainID uint64, all bool) (*DeploymentsResult, error) {
	result := &DeploymentsResult{
		ChainID: chainID,
		Records: []*store.Record{},
	}

	records, err := store.OpenReadOnly(logger, path)
	if errors.Is(err, store.ErrStoreMissing) {
		logger.Debug("no deployment store", "path", path)

		return result, nil
	} else if err != nil {
		return nil, err
	}
	defer records.Close()

	var list []*store.Record

	if all {
		list, err = records.List(chainID)
	} else {
		list, err = records.Latest(chainID)
	}

	if errors.Is(err, store.ErrNoDeployments) {
		return result, nil
	} else if err != nil {
		return nil, err
	}

	if len(list) > 0 {
		result.Records = list
	}

	return result, nil
}
