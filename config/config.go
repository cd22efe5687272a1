package config

import (
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"

	"github.com/punchingpaco/pacodeploy/deployer"
)

const (
	DefaultJSONRPCURL   = "http://127.0.0.1:8545"
	DefaultArtifactsDir = "artifacts"
	DefaultDataDir      = ".pacodeploy"
	DefaultTimeout      = "10m"
	DefaultMetricsJob   = "pacodeploy"
	DefaultLogLevel     = "INFO"
)

var (
	errInvalidGasPrice = errors.New("gas price must be a positive integer amount of wei")
)

// Config defines the deployment run configuration
type Config struct {
	JSONRPCURL   string     `hcl:"json_rpc_url" json:"json_rpc_url"`
	ArtifactsDir string     `hcl:"artifacts_dir" json:"artifacts_dir"`
	DataDir      string     `hcl:"data_dir" json:"data_dir"`
	Timeout      string     `hcl:"timeout" json:"timeout"`
	LogLevel     string     `hcl:"log_level" json:"log_level"`
	Whitelist    *Whitelist `hcl:"whitelist" json:"whitelist"`
	ERC721       *ERC721    `hcl:"erc721" json:"erc721"`
	Gas          *Gas       `hcl:"gas" json:"gas"`
	Metrics      *Metrics   `hcl:"metrics" json:"metrics"`
}

// Whitelist holds the whitelist constructor inputs
type Whitelist struct {
	MaxWhitelistedAddresses int `hcl:"max_whitelisted_addresses" json:"max_whitelisted_addresses"`
}

// ERC721 holds the ERC-721 constructor inputs that are not addresses
type ERC721 struct {
	BaseURI string `hcl:"base_uri" json:"base_uri"`
}

// Gas overrides the node suggestions. Zero values mean "ask the node".
type Gas struct {
	PriceWei    string `hcl:"price_wei" json:"price_wei"`
	MaxPriceWei string `hcl:"max_price_wei" json:"max_price_wei"`
	Limit       int    `hcl:"limit" json:"limit"`
	// Margin is the headroom added to estimates, in percent.
	// Nil keeps the default, an explicit zero disables the headroom.
	Margin *int `hcl:"margin" json:"margin"`
}

// Metrics configures pushing run metrics to a Prometheus Pushgateway
type Metrics struct {
	PushURL string `hcl:"push_url" json:"push_url"`
	Job     string `hcl:"job" json:"job"`
}

// DefaultConfig returns the plain deploy setup:
// a local node and the default constructor inputs
func DefaultConfig() *Config {
	return &Config{
		JSONRPCURL:   DefaultJSONRPCURL,
		ArtifactsDir: DefaultArtifactsDir,
		DataDir:      DefaultDataDir,
		Timeout:      DefaultTimeout,
		LogLevel:     DefaultLogLevel,
		Whitelist: &Whitelist{
			MaxWhitelistedAddresses: deployer.DefaultMaxWhitelistedAddresses,
		},
		ERC721: &ERC721{
			BaseURI: deployer.DefaultBaseURI,
		},
		Gas: &Gas{
			Margin: intPtr(deployer.DefaultGasLimitMargin),
		},
		Metrics: &Metrics{
			Job: DefaultMetricsJob,
		},
	}
}

// ReadConfigFile reads an HCL or JSON configuration file. Values missing
// from the file keep their defaults.
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := filepath.Ext(path); ext {
	case ".hcl", ".json":
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	config := &Config{}
	if err := hcl.Decode(config, string(data)); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	config.fillDefaults()

	return config, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()

	if c.JSONRPCURL == "" {
		c.JSONRPCURL = def.JSONRPCURL
	}

	if c.ArtifactsDir == "" {
		c.ArtifactsDir = def.ArtifactsDir
	}

	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}

	if c.Timeout == "" {
		c.Timeout = def.Timeout
	}

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	if c.Whitelist == nil {
		c.Whitelist = def.Whitelist
	} else if c.Whitelist.MaxWhitelistedAddresses == 0 {
		c.Whitelist.MaxWhitelistedAddresses = def.Whitelist.MaxWhitelistedAddresses
	}

	if c.ERC721 == nil {
		c.ERC721 = def.ERC721
	} else if c.ERC721.BaseURI == "" {
		c.ERC721.BaseURI = def.ERC721.BaseURI
	}

	if c.Gas == nil {
		c.Gas = def.Gas
	} else if c.Gas.Margin == nil {
		c.Gas.Margin = def.Gas.Margin
	}

	if c.Metrics == nil {
		c.Metrics = def.Metrics
	} else if c.Metrics.Job == "" {
		c.Metrics.Job = def.Metrics.Job
	}
}

// Validate reports every invalid value at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validateURL(c.JSONRPCURL, "http", "https", "ws", "wss"); err != nil {
		result = multierror.Append(result, fmt.Errorf("json_rpc_url: %w", err))
	}

	if c.ArtifactsDir == "" {
		result = multierror.Append(result, errors.New("artifacts_dir is empty"))
	}

	if c.DataDir == "" {
		result = multierror.Append(result, errors.New("data_dir is empty"))
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil {
		result = multierror.Append(result, fmt.Errorf("timeout: %w", err))
	} else if d <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	if c.Whitelist.MaxWhitelistedAddresses < 0 {
		result = multierror.Append(result, errors.New("whitelist.max_whitelisted_addresses is negative"))
	} else if err := c.PlanParams().Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if _, err := c.GasPrice(); err != nil {
		result = multierror.Append(result, err)
	}

	if _, err := c.MaxGasPrice(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Gas.Limit < 0 {
		result = multierror.Append(result, errors.New("gas.limit is negative"))
	}

	if c.Gas.Margin != nil && *c.Gas.Margin < 0 {
		result = multierror.Append(result, errors.New("gas.margin is negative"))
	}

	if c.Metrics.PushURL != "" {
		if err := validateURL(c.Metrics.PushURL, "http", "https"); err != nil {
			result = multierror.Append(result, fmt.Errorf("metrics.push_url: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	for _, scheme := range schemes {
		if u.Scheme == scheme && u.Host != "" {
			return nil
		}
	}

	return fmt.Errorf("%q is not a %v url", raw, schemes)
}

// TimeoutDuration returns the parsed run timeout, valid after Validate
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)

	return d
}

// GasPrice returns the configured gas price, nil when the node should suggest it
func (c *Config) GasPrice() (*big.Int, error) {
	return parseWei("gas.price_wei", c.Gas.PriceWei)
}

// MaxGasPrice returns the cap of suggested gas prices, nil for no cap
func (c *Config) MaxGasPrice() (*big.Int, error) {
	return parseWei("gas.max_price_wei", c.Gas.MaxPriceWei)
}

func parseWei(name, raw string) (*big.Int, error) {
	if raw == "" {
		return nil, nil
	}

	price, ok := new(big.Int).SetString(raw, 10)
	if !ok || price.Sign() <= 0 {
		return nil, fmt.Errorf("%s: %w, got %q", name, errInvalidGasPrice, raw)
	}

	return price, nil
}

// PlanParams returns the constructor inputs of the default plan
func (c *Config) PlanParams() deployer.PlanParams {
	return deployer.PlanParams{
		MaxWhitelistedAddresses: uint64(c.Whitelist.MaxWhitelistedAddresses),
		BaseURI:                 c.ERC721.BaseURI,
	}
}

// DeployerConfig returns the gas settings of the deployer, valid after Validate
func (c *Config) DeployerConfig() deployer.Config {
	price, _ := c.GasPrice()
	maxPrice, _ := c.MaxGasPrice()

	margin := deployer.DefaultGasLimitMargin
	if c.Gas.Margin != nil {
		margin = *c.Gas.Margin
	}

	return deployer.Config{
		GasPrice:       price,
		GasLimit:       uint64(c.Gas.Limit),
		GasLimitMargin: uint64(margin),
		MaxGasPrice:    maxPrice,
	}
}

func intPtr(i int) *int {
	return &i
}

// StorePath is the leveldb directory of the deployment records
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "deployments")
}
