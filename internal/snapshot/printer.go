package snapshot

import (
	"io"
	"strings"
)

const (
	indentUnit         = "\t"
	replacementPattern = "\uFFFD"
)

// Print renders the snapshot depth-first in pre-order. Each directory line is indented by
// its depth and each file line by its parent's depth plus one. The first failed write
// aborts printing and is returned as an ErrWrite error.
func Print(directorySnapshot *Snapshot, writer io.Writer) error {
	if directorySnapshot == nil {
		return nil
	}
	if writeError := writeLine(writer, directorySnapshot.Depth, directorySnapshot.DirectoryPath); writeError != nil {
		return writeError
	}
	for _, child := range directorySnapshot.Children {
		switch child.Kind {
		case EntryKindDirectory:
			if printError := Print(child.Directory, writer); printError != nil {
				return printError
			}
		case EntryKindFile:
			if writeError := writeLine(writer, directorySnapshot.Depth+1, child.Path); writeError != nil {
				return writeError
			}
		}
	}
	return nil
}

// DisplayPath returns entryPath with invalid UTF-8 sequences replaced by U+FFFD.
func DisplayPath(entryPath string) string {
	return strings.ToValidUTF8(entryPath, replacementPattern)
}

func writeLine(writer io.Writer, depth int, entryPath string) error {
	line := strings.Repeat(indentUnit, depth) + DisplayPath(entryPath) + "\n"
	if _, writeError := io.WriteString(writer, line); writeError != nil {
		return NewError(ErrWrite, entryPath, writeError)
	}
	return nil
}
