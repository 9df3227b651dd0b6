// Package types defines the data structures shared across dirsnap packages.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// TreeOutputNode is the serialisable form of a snapshot entry used by the structured renderers.
type TreeOutputNode struct {
	XMLName   xml.Name          `json:"-" xml:"node" yaml:"-"`
	Path      string            `json:"path" xml:"path" yaml:"path"`
	Type      string            `json:"type" xml:"type" yaml:"type"`
	Depth     int               `json:"depth" xml:"depth" yaml:"depth"`
	Truncated bool              `json:"truncated,omitempty" xml:"truncated,omitempty" yaml:"truncated,omitempty"`
	Children  []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty" yaml:"children,omitempty"`
}

// RunSummary captures aggregate information about one completed snapshot run.
type RunSummary struct {
	Directories  int
	Files        int
	Truncated    int
	BytesWritten int64
	Destination  string
	Tokens       int
	Model        string
}
