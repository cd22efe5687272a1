package awsssm

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/hashicorp/go-hclog"

	"github.com/punchingpaco/pacodeploy/secrets"
)

var (
	errMissingRegion = errors.New("no region specified for AWS SSM")
	errMissingName   = errors.New("no deployer name specified for AWS SSM")
)

// AwsSsmManager is a SecretsManager that reads SecureString parameters
// from the AWS SSM Parameter Store
type AwsSsmManager struct {
	logger hclog.Logger

	client ssmiface.SSMAPI

	// basePath is <ssm-parameters-path>/<name>
	basePath string
}

// SecretsManagerFactory implements the factory method
func SecretsManagerFactory(
	logger hclog.Logger,
	config *secrets.SecretsManagerConfig,
) (secrets.SecretsManager, error) {
	region := config.ExtraString("region", "")
	if region == "" {
		return nil, errMissingRegion
	}

	if config.Name == "" {
		return nil, errMissingName
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize AWS session: %w", err)
	}

	return NewManager(logger, ssm.New(sess), config), nil
}

// NewManager creates the manager on top of an existing SSM client
func NewManager(logger hclog.Logger, client ssmiface.SSMAPI, config *secrets.SecretsManagerConfig) *AwsSsmManager {
	return &AwsSsmManager{
		logger:   logger.Named(string(secrets.AWSSSM)),
		client:   client,
		basePath: fmt.Sprintf("%s/%s", config.ExtraString("ssm-parameters-path", ""), config.Name),
	}
}

func (a *AwsSsmManager) parameterPath(name string) string {
	return fmt.Sprintf("%s/%s", a.basePath, name)
}

// GetSecret fetches and decrypts a parameter
func (a *AwsSsmManager) GetSecret(name string) ([]byte, error) {
	path := a.parameterPath(name)

	output, err := a.client.GetParameter(&ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) && awsErr.Code() == ssm.ErrCodeParameterNotFound {
			return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, path)
		}

		return nil, fmt.Errorf("unable to fetch parameter %s: %w", path, err)
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return nil, fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, path)
	}

	a.logger.Debug("secret read", "path", path)

	return []byte(aws.StringValue(output.Parameter.Value)), nil
}

// HasSecret checks if the parameter exists
func (a *AwsSsmManager) HasSecret(name string) bool {
	_, err := a.GetSecret(name)

	return err == nil
}
