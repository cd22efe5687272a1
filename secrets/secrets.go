package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Secret names
const (
	// DeployerKey is the private key (hex or keystore JSON) of the deploying account
	DeployerKey = "deployer-key"
)

// Secret managers types
const (
	// Local pertains to the local FS
	Local SecretsManagerType = "local"

	// HashicorpVault pertains to the Hashicorp Vault server
	HashicorpVault SecretsManagerType = "hashicorp-vault"

	// AWSSSM pertains to AWS SSM using Parameter Store
	AWSSSM SecretsManagerType = "aws-ssm"
)

var (
	ErrSecretNotFound        = errors.New("secret not found")
	ErrUnsupportedType       = errors.New("unsupported secrets manager")
	ErrInvalidSecretsConfig  = errors.New("invalid secrets configuration")
	ErrMissingExtraParameter = errors.New("missing extra parameter")
)

// SecretsManagerType is the type of secrets manager
type SecretsManagerType string

// SecretsManager defines the base public interface a secrets backend implements
type SecretsManager interface {
	// GetSecret gets the secret by name
	GetSecret(name string) ([]byte, error)

	// HasSecret checks if the secret is present
	HasSecret(name string) bool
}

// SecretsManagerConfig is the configuration that gets
// written to a single configuration file
type SecretsManagerConfig struct {
	Token     string                 `json:"token"`      // Access token to the instance
	ServerURL string                 `json:"server_url"` // The URL of the running server
	Type      SecretsManagerType     `json:"type"`       // The type of SecretsManager
	Name      string                 `json:"name"`       // The name of the current deployer
	Namespace string                 `json:"namespace"`  // The namespace of the service
	Extra     map[string]interface{} `json:"extra"`      // Any kind of arbitrary data
}

// ExtraString returns a string entry of Extra, or def when it is missing
func (c *SecretsManagerConfig) ExtraString(key, def string) string {
	if v, ok := c.Extra[key].(string); ok && v != "" {
		return v
	}

	return def
}

// ReadConfig reads the SecretsManagerConfig from the specified path
func ReadConfig(path string) (*SecretsManagerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &SecretsManagerConfig{}
	if err := json.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSecretsConfig, path, err)
	}

	return config, nil
}

// SupportedServiceManager checks if the passed in service manager type is supported
func SupportedServiceManager(service SecretsManagerType) bool {
	return service == HashicorpVault ||
		service == AWSSSM ||
		service == Local
}
