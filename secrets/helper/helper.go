package helper

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/punchingpaco/pacodeploy/secrets"
	"github.com/punchingpaco/pacodeploy/secrets/awsssm"
	"github.com/punchingpaco/pacodeploy/secrets/hashicorpvault"
	"github.com/punchingpaco/pacodeploy/secrets/local"
)

// DeployerKeyEnv holds a hex private key and is used when no flag is given
const DeployerKeyEnv = "PACO_DEPLOYER_KEY"

var (
	ErrNoKeySource = errors.New("no deployer key: set --private-key, " + DeployerKeyEnv + " or --secrets-config")
)

type factory func(hclog.Logger, *secrets.SecretsManagerConfig) (secrets.SecretsManager, error)

var factories = map[secrets.SecretsManagerType]factory{
	secrets.Local:          local.SecretsManagerFactory,
	secrets.HashicorpVault: hashicorpvault.SecretsManagerFactory,
	secrets.AWSSSM:         awsssm.SecretsManagerFactory,
}

// InitSecretsManager creates the secrets manager described by the config
func InitSecretsManager(logger hclog.Logger, config *secrets.SecretsManagerConfig) (secrets.SecretsManager, error) {
	if !secrets.SupportedServiceManager(config.Type) {
		return nil, fmt.Errorf("%w: %q", secrets.ErrUnsupportedType, config.Type)
	}

	return factories[config.Type](logger, config)
}

// KeyOptions are the possible sources of the deployer key, in priority order
type KeyOptions struct {
	// PrivateKey is a hex key from the command line or DeployerKeyEnv
	PrivateKey string

	// SecretsConfigPath is the path of a SecretsManagerConfig JSON file
	SecretsConfigPath string

	// PasswordFile holds the keystore password. When empty the
	// password is prompted for.
	PasswordFile string
}

// ResolveDeployerKey returns the deployer private key from the first
// configured source
func ResolveDeployerKey(logger hclog.Logger, opts KeyOptions) (*ecdsa.PrivateKey, error) {
	if opts.PrivateKey != "" {
		logger.Debug("using deployer key from the command line")

		return secrets.DecodePrivateKey([]byte(opts.PrivateKey), nil)
	}

	if opts.SecretsConfigPath == "" {
		return nil, ErrNoKeySource
	}

	config, err := secrets.ReadConfig(opts.SecretsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read secrets config: %w", err)
	}

	manager, err := InitSecretsManager(logger, config)
	if err != nil {
		return nil, err
	}

	raw, err := manager.GetSecret(secrets.DeployerKey)
	if err != nil {
		return nil, err
	}

	password := secrets.PromptPassword()
	if opts.PasswordFile != "" {
		password = secrets.PasswordFromFile(opts.PasswordFile)
	}

	logger.Debug("using deployer key from secrets manager", "type", config.Type)

	return secrets.DecodePrivateKey(raw, password)
}
