package hashicorpvault

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	vault "github.com/hashicorp/vault/api"

	"github.com/punchingpaco/pacodeploy/secrets"
)

const defaultMount = "secret"

var (
	errMissingServerURL = errors.New("no server url specified for Vault")
	errMissingToken     = errors.New("no token specified for Vault")
	errMissingName      = errors.New("no deployer name specified for Vault")
)

// VaultSecretsManager is a SecretsManager that reads secrets from a
// Hashicorp Vault KV v2 engine
type VaultSecretsManager struct {
	logger hclog.Logger

	client *vault.Client

	// secretsPath is <mount>/data/<name>, every secret is a key of that entry
	secretsPath string
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	logger hclog.Logger,
	config *secrets.SecretsManagerConfig,
) (secrets.SecretsManager, error) {
	if config.ServerURL == "" {
		return nil, errMissingServerURL
	}

	if config.Token == "" {
		return nil, errMissingToken
	}

	if config.Name == "" {
		return nil, errMissingName
	}

	clientConfig := vault.DefaultConfig()
	clientConfig.Address = config.ServerURL

	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vault client: %w", err)
	}

	client.SetToken(config.Token)

	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	return &VaultSecretsManager{
		logger:      logger.Named(string(secrets.HashicorpVault)),
		client:      client,
		secretsPath: fmt.Sprintf("%s/data/%s", config.ExtraString("mount", defaultMount), config.Name),
	}, nil
}

// GetSecret fetches a secret from the Hashicorp Vault server
func (v *VaultSecretsManager) GetSecret(name string) ([]byte, error) {
	secret, err := v.client.Logical().Read(v.secretsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read secret from Vault, %w", err)
	}

	if secret == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	// KV v2 nests the values under data
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unable to assert type for secret %s from Vault", name)
	}

	value, ok := data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}

	str, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("secret %s is not a string", name)
	}

	v.logger.Debug("secret read", "path", v.secretsPath, "name", name)

	return []byte(str), nil
}

// HasSecret checks if the secret is present on the Hashicorp Vault server
func (v *VaultSecretsManager) HasSecret(name string) bool {
	_, err := v.GetSecret(name)

	return err == nil
}
