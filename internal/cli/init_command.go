package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/dirsnap/internal/config"
)

const (
	initCommandUse              = "init"
	initCommandShortDescription = "write a default configuration file"
	initGlobalFlagName          = "global"
	initForceFlagName           = "force"
	initGlobalFlagDescription   = "write ~/.dirsnap/config.yaml instead of ./.dirsnap.yaml"
	initForceFlagDescription    = "overwrite an existing configuration file"
	initCreatedTemplate         = "configuration written to %s\n"
)

func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initCommandUse,
		Short: initCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), initCreatedTemplate, destinationPath)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, initGlobalFlagName, false, initGlobalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, initForceFlagName, false, initForceFlagDescription)
	return initCommand
}
