// Package utils holds the logger factory, version lookup, and formatting helpers shared by dirsnap.
package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion      = "unknown"
	develBuildVersion   = "(devel)"
	gitExecutableName   = "git"
	gitDescribeArgument = "describe"
)

// Version may be set at link time with -ldflags "-X github.com/temirov/dirsnap/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion returns the link-time version, then the module version from build info,
// then the nearest git tag of the working directory, and finally "unknown".
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	if buildInfo, buildInfoAvailable := debug.ReadBuildInfo(); buildInfoAvailable {
		if moduleVersion := buildInfo.Main.Version; moduleVersion != "" && moduleVersion != develBuildVersion {
			return moduleVersion
		}
	}
	repositoryRoot, found := findRepositoryRoot(".")
	if !found {
		return unknownVersion
	}
	describeArgumentSets := [][]string{
		{gitDescribeArgument, "--tags", "--exact-match"},
		{gitDescribeArgument, "--tags", "--long", "--dirty"},
	}
	for _, describeArguments := range describeArgumentSets {
		// #nosec G204
		describeCommand := exec.Command(gitExecutableName, describeArguments...)
		describeCommand.Dir = repositoryRoot
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil {
			if trimmed := strings.TrimSpace(string(describeOutput)); trimmed != "" {
				return trimmed
			}
		}
	}
	return unknownVersion
}

// findRepositoryRoot walks upward from startDirectory to the first directory containing .git.
func findRepositoryRoot(startDirectory string) (string, bool) {
	currentDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", false
	}
	for {
		gitInfo, statError := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if statError == nil && gitInfo.IsDir() {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}
