package command

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger creates the command logger. Logs always go to stderr so that
// stdout only carries the command result.
func NewLogger(name, level string) hclog.Logger {
	if level == "" {
		level = DefaultLogLevel
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}
