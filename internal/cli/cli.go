// Package cli provides the dirsnap command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/dirsnap/internal/config"
	"github.com/temirov/dirsnap/internal/output"
	"github.com/temirov/dirsnap/internal/services/clipboard"
	"github.com/temirov/dirsnap/internal/tokenizer"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	pathFlagName     = "path"
	outputFlagName   = "output"
	maxDepthFlagName = "max-depth"
	formatFlagName   = "format"
	copyFlagName     = "copy"
	tokensFlagName   = "tokens"
	modelFlagName    = "model"
	configFlagName   = "config"
	verboseFlagName  = "verbose"
	versionFlagName  = "version"

	pathFlagShorthand     = "p"
	outputFlagShorthand   = "o"
	maxDepthFlagShorthand = "d"
	verboseFlagShorthand  = "v"

	pathFlagDescription     = "directory to snapshot (same as the positional argument)"
	outputFlagDescription   = "file to write the rendered tree to; '-' writes to standard output"
	maxDepthFlagDescription = "deepest directory level whose contents are listed"
	formatFlagDescription   = "output format: raw, json, xml, or yaml"
	copyFlagDescription     = "also copy the rendered tree to the clipboard"
	tokensFlagDescription   = "report the token count of the rendered tree"
	modelFlagDescription    = "tokenizer model to use for token counting"
	configFlagDescription   = "configuration file to load instead of ./" + utils.ConfigFileName
	verboseFlagDescription  = "log skipped entries and other diagnostics"
	versionFlagDescription  = "display application version"

	versionTemplate      = utils.ApplicationName + " version: %s\n"
	rootUse              = utils.ApplicationName + " [path]"
	rootShortDescription = "write an indented snapshot of a directory tree"
	rootLongDescription  = `dirsnap walks a directory up to a maximum depth and writes an indented listing.
Each line holds one path, indented with one tab per level. Within a directory,
subdirectories come first and files second, each group sorted by path.
Directories below the depth bound are listed without their contents.

A root directory named like a subcommand (init, help, completion) must be
passed with --path, for example: dirsnap --path init`
	rootUsageExample = `  # Snapshot the working directory into output.txt
  dirsnap

  # Snapshot /srv two levels deep and print to the terminal
  dirsnap /srv --max-depth 2 --output -

  # Write a YAML tree and copy it to the clipboard
  dirsnap ./project --format yaml -o tree.yaml --copy`

	errorConflictingPathsFormat = "conflicting root paths '%s' and '%s'"
	errorMaxDepthRangeFormat    = "max depth %d is outside the range 0..%d"
	errorInvalidFormatFormat    = "invalid format value '%s'"
	errorLoadConfigFormat       = "load configuration: %w"
)

// Dependencies carries the process-level collaborators of the command tree.
type Dependencies struct {
	Logger *zap.Logger
	// LogLevel, when set, is raised to debug by --verbose.
	LogLevel   *zap.AtomicLevel
	Stdout     io.Writer
	Clipboard  clipboard.Copier
	NewCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
	// WorkingDirectory overrides os.Getwd for the default root and local configuration lookup.
	WorkingDirectory string
	// ReadDirectory overrides os.ReadDir for the snapshot walk.
	ReadDirectory func(directoryPath string) ([]fs.DirEntry, error)
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	return dependencies
}

// snapshotOptions is the fully resolved configuration of one run.
type snapshotOptions struct {
	rootPath        string
	outputPath      string
	maxDepth        int
	format          string
	copyToClipboard bool
	tokensEnabled   bool
	tokenModel      string
	verbose         bool
}

// Execute runs dirsnap with the process arguments.
func Execute(dependencies Dependencies) error {
	rootCommand := createRootCommand(dependencies)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()

	var options snapshotOptions
	var showVersion bool
	var configurationPath string

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, printError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			resolvedOptions, resolveError := resolveOptions(command.Flags(), options, arguments, configurationPath, dependencies.WorkingDirectory)
			if resolveError != nil {
				return resolveError
			}
			return runSnapshot(dependencies, resolvedOptions)
		},
	}
	rootCommand.SetOut(dependencies.Stdout)

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.rootPath, pathFlagName, pathFlagShorthand, "", pathFlagDescription)
	flagSet.StringVarP(&options.outputPath, outputFlagName, outputFlagShorthand, utils.DefaultOutputPath, outputFlagDescription)
	flagSet.IntVarP(&options.maxDepth, maxDepthFlagName, maxDepthFlagShorthand, utils.DefaultMaxDepth, maxDepthFlagDescription)
	flagSet.StringVar(&options.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(flagSet, &options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(flagSet, &options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&options.tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flagSet.StringVar(&configurationPath, configFlagName, "", configFlagDescription)
	flagSet.BoolVarP(&options.verbose, verboseFlagName, verboseFlagShorthand, false, verboseFlagDescription)
	flagSet.BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// resolveOptions layers configuration files under explicitly set flags and validates the result.
func resolveOptions(flagSet *pflag.FlagSet, flagOptions snapshotOptions, arguments []string, configurationPath string, workingDirectory string) (snapshotOptions, error) {
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: configurationPath,
	})
	if loadError != nil {
		return snapshotOptions{}, fmt.Errorf(errorLoadConfigFormat, loadError)
	}
	resolved := applyConfiguration(flagSet, flagOptions, configuration)

	if len(arguments) == 1 {
		if resolved.rootPath != "" && resolved.rootPath != arguments[0] {
			return snapshotOptions{}, fmt.Errorf(errorConflictingPathsFormat, resolved.rootPath, arguments[0])
		}
		resolved.rootPath = arguments[0]
	}

	resolved.format = strings.ToLower(strings.TrimSpace(resolved.format))
	if !output.IsSupportedFormat(resolved.format) {
		return snapshotOptions{}, fmt.Errorf(errorInvalidFormatFormat, resolved.format)
	}
	if resolved.maxDepth < 0 || resolved.maxDepth > utils.MaxDepthLimit {
		return snapshotOptions{}, fmt.Errorf(errorMaxDepthRangeFormat, resolved.maxDepth, utils.MaxDepthLimit)
	}
	if resolved.outputPath == "" {
		return snapshotOptions{}, errors.New("output path must not be empty")
	}
	return resolved, nil
}

// applyConfiguration copies configured values onto options for every flag the user did not set.
func applyConfiguration(flagSet *pflag.FlagSet, options snapshotOptions, configuration config.ApplicationConfiguration) snapshotOptions {
	unset := func(flagName string) bool {
		return !flagSet.Changed(flagName)
	}
	if unset(outputFlagName) && configuration.Output != "" {
		options.outputPath = configuration.Output
	}
	if unset(maxDepthFlagName) && configuration.MaxDepth != nil {
		options.maxDepth = *configuration.MaxDepth
	}
	if unset(formatFlagName) && configuration.Format != "" {
		options.format = configuration.Format
	}
	if unset(copyFlagName) && configuration.Copy != nil {
		options.copyToClipboard = *configuration.Copy
	}
	if unset(verboseFlagName) && configuration.Verbose != nil {
		options.verbose = *configuration.Verbose
	}
	if unset(tokensFlagName) && configuration.Tokens.Enabled != nil {
		options.tokensEnabled = *configuration.Tokens.Enabled
	}
	if unset(modelFlagName) && configuration.Tokens.Model != "" {
		options.tokenModel = configuration.Tokens.Model
	}
	return options
}
