package deploy

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command"
	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/config"
	"github.com/punchingpaco/pacodeploy/contracts/artifact"
	"github.com/punchingpaco/pacodeploy/deployer"
	secretsHelper "github.com/punchingpaco/pacodeploy/secrets/helper"
	"github.com/punchingpaco/pacodeploy/store"
)

const metricsNamespace = "pacodeploy"

// nodeBackend is the connection runDeploy deploys through
type nodeBackend interface {
	deployer.Backend
	Close()
}

// dialBackend connects to the node, replaced in tests
var dialBackend = func(ctx context.Context, url string) (nodeBackend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// GetCommand returns the deploy command
func GetCommand() *cobra.Command {
	deployCmd := &cobra.Command{
		Use:     "deploy",
		Short:   "Deploys the whitelist, ERC-721, ERC-20 and staking contracts, in this order",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	helper.RegisterConfigFlags(deployCmd)
	setFlags(deployCmd)

	return deployCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().String(
		command.ArtifactsDirFlag,
		config.DefaultArtifactsDir,
		"the hardhat or foundry artifacts directory",
	)

	cmd.Flags().StringVar(
		&params.privateKey,
		privateKeyFlag,
		"",
		fmt.Sprintf("hex-encoded private key of the deployer (defaults to $%s)", secretsHelper.DeployerKeyEnv),
	)

	cmd.Flags().StringVar(
		&params.secretsConfigPath,
		secretsConfigFlag,
		"",
		"the path to the secrets manager configuration file holding the deployer key",
	)

	cmd.Flags().StringVar(
		&params.passwordFile,
		passwordFileFlag,
		"",
		"the file holding the keystore password, prompted for when empty",
	)

	cmd.Flags().StringVar(
		&params.maxWhitelistedRaw,
		maxWhitelistedFlag,
		fmt.Sprintf("%d", deployer.DefaultMaxWhitelistedAddresses),
		"the maximum number of whitelisted addresses",
	)

	cmd.Flags().StringVar(
		&params.baseURI,
		baseURIFlag,
		deployer.DefaultBaseURI,
		"the base token URI of the ERC-721",
	)

	cmd.Flags().StringVar(
		&params.gasPriceRaw,
		gasPriceFlag,
		"",
		"the gas price in wei, suggested by the node when empty",
	)

	cmd.Flags().StringVar(
		&params.gasLimitRaw,
		gasLimitFlag,
		"0",
		"the gas limit of every deployment, estimated when 0",
	)

	cmd.Flags().StringVar(
		&params.metricsPushURL,
		metricsPushFlag,
		"",
		"the Prometheus Pushgateway url the run metrics are pushed to",
	)

	cmd.MarkFlagsMutuallyExclusive(privateKeyFlag, secretsConfigFlag)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	return params.validateFlags(cmd)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	logger := command.NewLogger("deploy", params.config.LogLevel)

	result, err := runDeploy(cmd.Context(), logger, params.config, params.keyOptions())
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

func runDeploy(
	ctx context.Context,
	logger hclog.Logger,
	cfg *config.Config,
	keyOpts secretsHelper.KeyOptions,
) (*DeployResult, error) {
	key, err := secretsHelper.ResolveDeployerKey(logger, keyOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deployer key: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	registry, err := artifact.NewRegistry(logger, cfg.ArtifactsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	client, err := dialBackend(ctx, cfg.JSONRPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.JSONRPCURL, err)
	}
	defer client.Close()

	d, err := deployer.NewDeployer(logger, client, key, cfg.DeployerConfig())
	if err != nil {
		return nil, err
	}

	chainID, err := d.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	records, err := store.Open(logger, cfg.StorePath())
	if err != nil {
		return nil, err
	}
	defer records.Close()

	run := records.NewRun(chainID.Uint64())

	metrics := deployer.NilMetrics()
	if cfg.Metrics.PushURL != "" {
		// only the run metrics are pushed, not the process collectors
		metricsRegistry := prometheus.NewRegistry()
		metrics = deployer.GetPrometheusMetrics(metricsRegistry, metricsNamespace)

		defer pushMetrics(logger, cfg.Metrics, metricsRegistry, chainID.String())
	}

	logger.Info("deploying contracts",
		"deployer", d.From(),
		"chainID", chainID,
		"run", run.ID(),
		"artifacts", cfg.ArtifactsDir,
	)

	pipeline := deployer.NewPipeline(
		logger,
		d,
		registry,
		deployer.WithRecorder(run),
		deployer.WithMetrics(metrics),
	)

	deployments, err := pipeline.Run(ctx, deployer.DefaultPlan(cfg.PlanParams()))
	if err != nil {
		return nil, fmt.Errorf("failed to deploy contracts: %w", err)
	}

	return newDeployResult(chainID.Uint64(), run.ID(), deployments), nil
}

// pushMetrics is best effort, a failed push never fails the run
func pushMetrics(logger hclog.Logger, cfg *config.Metrics, gatherer prometheus.Gatherer, chainID string) {
	err := push.New(cfg.PushURL, cfg.Job).
		Gatherer(gatherer).
		Grouping("chain_id", chainID).
		Push()
	if err != nil {
		logger.Warn("failed to push metrics", "url", cfg.PushURL, "err", err)
	}
}
