package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

const (
	// warningSkipEntryFormat is used when an entry is neither a regular file nor a directory.
	warningSkipEntryFormat = "skipping %s: %s"
	// warningStatEntryFormat is used when a symbolic link target cannot be resolved.
	warningStatEntryFormat = "skipping %s: unable to resolve link: %v"

	notDirectoryReason   = "not a directory"
	specialFileReason    = "not a regular file or directory"
	emptyRootPathMessage = "empty root path"
)

// Builder constructs snapshots bounded by MaxDepth.
// Warn, when set, receives one message per skipped entry.
// ReadDirectory lists a directory and defaults to os.ReadDir.
type Builder struct {
	MaxDepth      int
	Warn          func(message string)
	ReadDirectory func(directoryPath string) ([]fs.DirEntry, error)
}

// Build validates rootDirectoryPath and returns the snapshot rooted there at depth zero.
// The root path is recorded exactly as given.
func (builder *Builder) Build(rootDirectoryPath string) (*Snapshot, error) {
	if rootDirectoryPath == "" {
		return nil, NewError(ErrPath, rootDirectoryPath, errors.New(emptyRootPathMessage))
	}
	rootInfo, rootStatError := os.Stat(rootDirectoryPath)
	if rootStatError != nil {
		return nil, NewError(ErrPath, rootDirectoryPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return nil, NewError(ErrPath, rootDirectoryPath, errors.New(notDirectoryReason))
	}
	return builder.BuildLevel(rootDirectoryPath, 0)
}

// BuildLevel snapshots directoryPath as if it were found at currentDepth.
// Directories deeper than MaxDepth are returned truncated with no children.
// Any enumeration failure anywhere below aborts the whole build.
func (builder *Builder) BuildLevel(directoryPath string, currentDepth int) (*Snapshot, error) {
	if currentDepth > builder.MaxDepth {
		return &Snapshot{DirectoryPath: directoryPath, Depth: currentDepth, Truncated: true}, nil
	}

	directoryEntries, readDirectoryError := builder.readDirectory(directoryPath)
	if readDirectoryError != nil {
		return nil, NewError(ErrRead, directoryPath, readDirectoryError)
	}

	var directoryPaths []string
	var filePaths []string
	for _, directoryEntry := range directoryEntries {
		childPath := childEntryPath(directoryPath, directoryEntry.Name())
		entryMode, resolved := builder.resolveMode(childPath, directoryEntry)
		if !resolved {
			continue
		}
		switch {
		case entryMode.IsDir():
			directoryPaths = append(directoryPaths, childPath)
		case entryMode.IsRegular():
			filePaths = append(filePaths, childPath)
		default:
			builder.warn(fmt.Sprintf(warningSkipEntryFormat, childPath, specialFileReason))
		}
	}

	sort.Strings(directoryPaths)
	sort.Strings(filePaths)

	children := make([]Entry, 0, len(directoryPaths)+len(filePaths))
	for _, childDirectoryPath := range directoryPaths {
		childSnapshot, buildError := builder.BuildLevel(childDirectoryPath, currentDepth+1)
		if buildError != nil {
			return nil, buildError
		}
		children = append(children, DirectoryEntry(childSnapshot))
	}
	for _, childFilePath := range filePaths {
		children = append(children, FileEntry(childFilePath))
	}

	return &Snapshot{DirectoryPath: directoryPath, Children: children, Depth: currentDepth}, nil
}

// childEntryPath appends name to the parent path without cleaning it, so a root such as
// "." or "a/./b" keeps its form in every descendant.
func childEntryPath(parentPath string, name string) string {
	if strings.HasSuffix(parentPath, string(os.PathSeparator)) || strings.HasSuffix(parentPath, "/") {
		return parentPath + name
	}
	return parentPath + string(os.PathSeparator) + name
}

func (builder *Builder) readDirectory(directoryPath string) ([]fs.DirEntry, error) {
	if builder.ReadDirectory != nil {
		return builder.ReadDirectory(directoryPath)
	}
	return os.ReadDir(directoryPath)
}

// resolveMode returns the type of the entry, following symbolic links to their target.
func (builder *Builder) resolveMode(childPath string, directoryEntry fs.DirEntry) (fs.FileMode, bool) {
	entryType := directoryEntry.Type()
	if entryType&fs.ModeSymlink == 0 {
		return entryType, true
	}
	targetInfo, statError := os.Stat(childPath)
	if statError != nil {
		builder.warn(fmt.Sprintf(warningStatEntryFormat, childPath, statError))
		return 0, false
	}
	return targetInfo.Mode(), true
}

func (builder *Builder) warn(message string) {
	if builder.Warn != nil {
		builder.Warn(message)
	}
}
