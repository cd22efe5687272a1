package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/punchingpaco/pacodeploy/command/deploy"
	"github.com/punchingpaco/pacodeploy/command/deployments"
	"github.com/punchingpaco/pacodeploy/command/helper"
	"github.com/punchingpaco/pacodeploy/command/verify"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "pacodeploy",
			Short: "Deploys the Punching Paco contracts to an EVM chain",
			SilenceUsage:  true,
			SilenceErrors: true,
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterLogLevelFlag(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		deploy.GetCommand(),
		deployments.GetCommand(),
		verify.GetCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}
}
