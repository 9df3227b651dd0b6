package utils

const (
	// ApplicationName is the command name and the prefix of configuration locations.
	ApplicationName = "dirsnap"
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".dirsnap.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".dirsnap"
	// GlobalConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// DefaultOutputPath is the file the rendered tree is written to when none is configured.
	DefaultOutputPath = "output.txt"
	// DefaultMaxDepth bounds recursion when no depth is configured.
	DefaultMaxDepth = 10
	// MaxDepthLimit is the largest accepted depth bound.
	MaxDepthLimit = 255
)

// LoggerInitializationFailedMessageFormat reports a logger that could not be constructed.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal errors reported at the process boundary.
const ApplicationExecutionFailedMessage = "dirsnap failed"
