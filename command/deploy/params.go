package deploy

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/config"
	secretsHelper "github.com/punchingpaco/pacodeploy/secrets/helper"
)

const (
	privateKeyFlag     = "private-key"
	secretsConfigFlag  = "secrets-config"
	passwordFileFlag   = "password-file"
	maxWhitelistedFlag = "max-whitelisted"
	baseURIFlag        = "base-uri"
	gasPriceFlag       = "gas-price"
	gasLimitFlag       = "gas-limit"
	metricsPushFlag    = "metrics-push-url"
)

var (
	params = &deployParams{}
)

type deployParams struct {
	privateKey        string
	secretsConfigPath string
	passwordFile      string

	maxWhitelistedRaw string
	baseURI           string
	gasPriceRaw       string
	gasLimitRaw       string
	metricsPushURL    string

	config *config.Config
}

func (p *deployParams) validateFlags(cmd *cobra.Command) error {
	cfg, err := helper.LoadConfig(cmd, p.applyOverrides)
	if err != nil {
		return err
	}

	p.config = cfg

	return nil
}

func (p *deployParams) applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed(maxWhitelistedFlag) {
		n, err := strconv.Atoi(p.maxWhitelistedRaw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", maxWhitelistedFlag, err)
		}

		cfg.Whitelist.MaxWhitelistedAddresses = n
	}

	if flags.Changed(baseURIFlag) {
		cfg.ERC721.BaseURI = p.baseURI
	}

	if flags.Changed(gasPriceFlag) {
		cfg.Gas.PriceWei = p.gasPriceRaw
	}

	if flags.Changed(gasLimitFlag) {
		n, err := strconv.Atoi(p.gasLimitRaw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", gasLimitFlag, err)
		}

		cfg.Gas.Limit = n
	}

	if flags.Changed(metricsPushFlag) {
		cfg.Metrics.PushURL = p.metricsPushURL
	}

	return nil
}

func (p *deployParams) keyOptions() secretsHelper.KeyOptions {
	privateKey := p.privateKey
	if privateKey == "" {
		privateKey = os.Getenv(secretsHelper.DeployerKeyEnv)
	}

	return secretsHelper.KeyOptions{
		PrivateKey:        privateKey,
		SecretsConfigPath: p.secretsConfigPath,
		PasswordFile:      p.passwordFile,
	}
}
