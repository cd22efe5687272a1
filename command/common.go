package command

const (
	ConfigFlag       = "config"
	JSONRPCFlag      = "json-rpc"
	ArtifactsDirFlag = "artifacts"
	DataDirFlag      = "data-dir"
	TimeoutFlag      = "timeout"
	LogLevelFlag     = "log-level"
	JSONOutputFlag   = "json"
)

const (
	DefaultLogLevel = "INFO"
)
