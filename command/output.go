package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CommandResult is the printable result of a command
type CommandResult interface {
	GetOutput() string
}

// OutputFormatter collects the result and error of a command and writes them
// once the command is done. Results go to stdout, errors to stderr
// followed by a non-zero exit. A result set next to an error is still written.
type OutputFormatter interface {
	SetError(err error)
	SetCommandResult(result CommandResult)
	WriteOutput()
}

type commonOutputFormatter struct {
	errorOutput   error
	commandOutput CommandResult

	stdout io.Writer
	stderr io.Writer
	exit   func(code int)
}

func (c *commonOutputFormatter) SetError(err error) {
	c.errorOutput = err
}

func (c *commonOutputFormatter) SetCommandResult(result CommandResult) {
	c.commandOutput = result
}

// InitializeOutputter returns the formatter selected by the --json flag
func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	common := commonOutputFormatter{
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
	}

	if shouldOutputJSON(cmd) {
		return &jsonOutput{commonOutputFormatter: common}
	}

	return &cliOutput{commonOutputFormatter: common}
}

func shouldOutputJSON(cmd *cobra.Command) bool {
	flag := cmd.Flag(JSONOutputFlag)
	if flag == nil {
		return false
	}

	return flag.Value.String() == "true"
}

type cliOutput struct {
	commonOutputFormatter
}

func (cli *cliOutput) WriteOutput() {
	if cli.commandOutput != nil {
		_, _ = io.WriteString(cli.stdout, cli.commandOutput.GetOutput())
	}

	if cli.errorOutput != nil {
		_, _ = fmt.Fprintf(cli.stderr, "Error: %v\n", cli.errorOutput)

		cli.exit(1)
	}
}

type jsonOutput struct {
	commonOutputFormatter
}

func (jo *jsonOutput) WriteOutput() {
	if jo.commandOutput != nil {
		raw, err := json.MarshalIndent(jo.commandOutput, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(jo.stderr, "Error: unable to marshal result: %v\n", err)

			jo.exit(1)

			return
		}

		_, _ = fmt.Fprintln(jo.stdout, string(raw))
	}

	if jo.errorOutput != nil {
		raw, _ := json.Marshal(struct {
			Err string `json:"err"`
		}{
			Err: jo.errorOutput.Error(),
		})

		_, _ = fmt.Fprintln(jo.stderr, string(raw))

		jo.exit(1)
	}
}
