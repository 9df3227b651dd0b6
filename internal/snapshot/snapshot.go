// Package snapshot builds an in-memory image of a directory subtree bounded by depth
// and prints it as a tab-indented listing.
package snapshot

// EntryKind distinguishes the two variants of Entry.
type EntryKind int

const (
	// EntryKindFile marks a leaf entry identified only by its path.
	EntryKindFile EntryKind = iota
	// EntryKindDirectory marks an entry owning a nested Snapshot.
	EntryKindDirectory
)

// Entry is either a file leaf or a nested directory snapshot.
// Directory is non-nil exactly when Kind is EntryKindDirectory.
type Entry struct {
	Kind      EntryKind
	Path      string
	Directory *Snapshot
}

// FileEntry constructs a file leaf.
func FileEntry(filePath string) Entry {
	return Entry{Kind: EntryKindFile, Path: filePath}
}

// DirectoryEntry constructs an entry owning the provided snapshot.
func DirectoryEntry(directorySnapshot *Snapshot) Entry {
	return Entry{Kind: EntryKindDirectory, Path: directorySnapshot.DirectoryPath, Directory: directorySnapshot}
}

// Snapshot represents one directory level and its possibly truncated contents.
// Children holds directories first, then files, each group in ascending byte order of path.
type Snapshot struct {
	DirectoryPath string
	Children      []Entry
	Depth         int
	// Truncated is set when Depth exceeded the maximum and the contents were not read.
	Truncated bool
}

// Stats holds aggregate counts over a snapshot tree. The root directory is counted.
type Stats struct {
	Directories int
	Files       int
	Truncated   int
}

// Stats walks the tree and returns its aggregate counts.
func (directorySnapshot *Snapshot) Stats() Stats {
	var stats Stats
	directorySnapshot.accumulate(&stats)
	return stats
}

func (directorySnapshot *Snapshot) accumulate(stats *Stats) {
	if directorySnapshot == nil {
		return
	}
	stats.Directories++
	if directorySnapshot.Truncated {
		stats.Truncated++
	}
	for _, child := range directorySnapshot.Children {
		switch child.Kind {
		case EntryKindDirectory:
			child.Directory.accumulate(stats)
		case EntryKindFile:
			stats.Files++
		}
	}
}
