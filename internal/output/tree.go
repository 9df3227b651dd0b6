package output

import (
	"github.com/temirov/dirsnap/internal/snapshot"
	"github.com/temirov/dirsnap/internal/types"
)

// BuildTreeOutputNode converts a snapshot into its serialisable form, preserving child order.
// Paths are converted lossily to UTF-8.
func BuildTreeOutputNode(directorySnapshot *snapshot.Snapshot) *types.TreeOutputNode {
	if directorySnapshot == nil {
		return nil
	}
	node := &types.TreeOutputNode{
		Path:      snapshot.DisplayPath(directorySnapshot.DirectoryPath),
		Type:      types.NodeTypeDirectory,
		Depth:     directorySnapshot.Depth,
		Truncated: directorySnapshot.Truncated,
	}
	for _, child := range directorySnapshot.Children {
		switch child.Kind {
		case snapshot.EntryKindDirectory:
			node.Children = append(node.Children, BuildTreeOutputNode(child.Directory))
		case snapshot.EntryKindFile:
			node.Children = append(node.Children, &types.TreeOutputNode{
				Path:  snapshot.DisplayPath(child.Path),
				Type:  types.NodeTypeFile,
				Depth: directorySnapshot.Depth + 1,
			})
		}
	}
	return node
}
