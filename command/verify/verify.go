package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/umbracle/go-web3"
	"github.com/umbracle/go-web3/jsonrpc"

	"github.com/punchingpaco/pacodeploy/command"
	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/helper/hex"
	"github.com/punchingpaco/pacodeploy/store"
)

var (
	errMissingCode = errors.New("deployed contracts without code")
	errUnknownRun  = errors.New("no records for run")
)

// CodeReader returns the code at an address as a hex string
type CodeReader interface {
	GetCode(addr web3.Address, block web3.BlockNumberOrHash) (string, error)
}

// GetCommand returns the verify command
func GetCommand() *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:     "verify",
		Short:   "Checks that the contracts of a recorded run still have code on chain",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	helper.RegisterConfigFlags(verifyCmd)
	setFlags(verifyCmd)
	helper.SetRequiredFlags(verifyCmd, params.getRequiredFlags())

	return verifyCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(
		&params.chainID,
		chainIDFlag,
		0,
		"the chain id the deployments were made on",
	)

	cmd.Flags().StringVar(
		&params.runID,
		runIDFlag,
		"",
		"the run to verify, the latest one when empty",
	)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	return params.validateFlags(cmd)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	logger := command.NewLogger("verify", params.config.LogLevel)

	records, err := loadRecords(logger)
	if err != nil {
		outputter.SetError(err)

		return
	}

	client, err := jsonrpc.NewClient(params.config.JSONRPCURL)
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to initialize JSON RPC client for %s: %w",
			params.config.JSONRPCURL, err))

		return
	}
	defer client.Close()

	result, err := verifyRecords(logger, client.Eth(), records)
	if err != nil {
		outputter.SetError(err)

		return
	}

	setResult(outputter, result)
}

// setResult sets the verification table, the command fails after printing
// it when a contract has no code
func setResult(outputter command.OutputFormatter, result *VerifyResult) {
	outputter.SetCommandResult(result)

	if missing := result.Missing(); len(missing) > 0 {
		outputter.SetError(fmt.Errorf("%w: %s", errMissingCode, strings.Join(missing, ", ")))
	}
}

func loadRecords(logger hclog.Logger) ([]*store.Record, error) {
	records, err := store.OpenReadOnly(logger, params.config.StorePath())
	if err != nil {
		return nil, err
	}
	defer records.Close()

	if params.runID == "" {
		return records.Latest(params.chainID)
	}

	all, err := records.List(params.chainID)
	if err != nil {
		return nil, err
	}

	var run []*store.Record

	for _, r := range all {
		if r.RunID == params.runID {
			run = append(run, r)
		}
	}

	if len(run) == 0 {
		return nil, fmt.Errorf("%w %s on chain %d", errUnknownRun, params.runID, params.chainID)
	}

	return run, nil
}

// verifyRecords reads the code of every recorded contract at the latest block
func verifyRecords(logger hclog.Logger, reader CodeReader, records []*store.Record) (*VerifyResult, error) {
	result := &VerifyResult{
		Contracts: make([]ContractStatus, 0, len(records)),
	}

	for _, r := range records {
		code, err := reader.GetCode(web3.Address(r.Address), web3.Latest)
		if err != nil {
			return nil, fmt.Errorf("failed to read code of %s at %s: %w", r.Label, r.Address, err)
		}

		hasCode := !hex.IsEmptyCode(code)
		if !hasCode {
			logger.Warn("no code at recorded address", "label", r.Label, "address", r.Address)
		}

		result.RunID = r.RunID
		result.Contracts = append(result.Contracts, ContractStatus{
			Label:   r.Label,
			Address: r.Address.Hex(),
			HasCode: hasCode,
		})
	}

	return result, nil
}
