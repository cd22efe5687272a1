package helper

import (
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command"
	"github.com/punchingpaco/pacodeploy/config"
)

// FormatList formats a list into a string
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key : Value
//
// Key : <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " : "

	return columnize.Format(in, columnConf)
}

// SetRequiredFlags marks the given flags as required
func SetRequiredFlags(cmd *cobra.Command, requiredFlags []string) {
	for _, requiredFlag := range requiredFlags {
		_ = cmd.MarkFlagRequired(requiredFlag)
	}
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterLogLevelFlag registers the --log-level setting for all child commands
func RegisterLogLevelFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.LogLevelFlag,
		command.DefaultLogLevel,
		"the log level for console output (logs are written to stderr)",
	)
}

// RegisterConfigFlags registers the flags shared by every command that
// talks to a node or reads the deployment records
func RegisterConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String(
		command.ConfigFlag,
		"",
		"the HCL or JSON configuration file, flags override its values",
	)

	cmd.Flags().String(
		command.JSONRPCFlag,
		config.DefaultJSONRPCURL,
		"the JSON-RPC endpoint of the node",
	)

	cmd.Flags().String(
		command.DataDirFlag,
		config.DefaultDataDir,
		"the directory holding the deployment records",
	)

	cmd.Flags().String(
		command.TimeoutFlag,
		config.DefaultTimeout,
		"the maximum duration of the command",
	)
}

// ConfigOverride changes the configuration from command specific flags
type ConfigOverride func(cmd *cobra.Command, cfg *config.Config) error

// LoadConfig reads the --config file, or the defaults when none is given,
// applies the flags explicitly set on the command line and validates the
// result
func LoadConfig(cmd *cobra.Command, overrides ...ConfigOverride) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if path, _ := cmd.Flags().GetString(command.ConfigFlag); path != "" {
		var err error

		if cfg, err = config.ReadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	for _, override := range overrides {
		if err := override(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// flag overrides, only applied when the flag is registered and set
var stringOverrides = map[string]func(*config.Config, string){
	command.JSONRPCFlag:      func(c *config.Config, v string) { c.JSONRPCURL = v },
	command.ArtifactsDirFlag: func(c *config.Config, v string) { c.ArtifactsDir = v },
	command.DataDirFlag:      func(c *config.Config, v string) { c.DataDir = v },
	command.TimeoutFlag:      func(c *config.Config, v string) { c.Timeout = v },
	command.LogLevelFlag:     func(c *config.Config, v string) { c.LogLevel = v },
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	for name, set := range stringOverrides {
		if !cmd.Flags().Changed(name) {
			continue
		}

		value, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}

		set(cfg, value)
	}

	return nil
}
