package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/punchingpaco/pacodeploy/secrets"
)

// LocalSecretsManager reads secrets from files of a local directory,
// one file per secret name
type LocalSecretsManager struct {
	logger hclog.Logger
	path   string
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	logger hclog.Logger,
	config *secrets.SecretsManagerConfig,
) (secrets.SecretsManager, error) {
	path := config.ExtraString("path", "")
	if path == "" {
		return nil, fmt.Errorf("%w: path", secrets.ErrMissingExtraParameter)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open secrets directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path %s is not a directory", path)
	}

	return &LocalSecretsManager{
		logger: logger.Named(string(secrets.Local)),
		path:   path,
	}, nil
}

// GetSecret gets the local secret from the file system
func (l *LocalSecretsManager) GetSecret(name string) ([]byte, error) {
	secret, err := os.ReadFile(filepath.Join(l.path, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("unable to read secret %s: %w", name, err)
	}

	l.logger.Debug("secret read", "name", name)

	return secret, nil
}

// HasSecret checks if the secret file is present on disk
func (l *LocalSecretsManager) HasSecret(name string) bool {
	_, err := os.Stat(filepath.Join(l.path, name))

	return err == nil
}
