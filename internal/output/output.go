// Package output renders snapshots in the supported formats and writes them to a sink.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/dirsnap/internal/snapshot"
	"github.com/temirov/dirsnap/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	xmlHeader      = xml.Header
	xmlRootElement = "snapshot"

	errorUnsupportedFormat = "unsupported output format '%s'"
	errorMarshalFormat     = "marshal %s output: %w"
)

// Renderer writes a snapshot to writer in one output format.
type Renderer interface {
	Render(writer io.Writer, rootSnapshot *snapshot.Snapshot) error
}

// IsSupportedFormat reports whether the provided format is recognized.
func IsSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case types.FormatRaw, types.FormatJSON, types.FormatXML, types.FormatYAML:
		return true
	default:
		return false
	}
}

// NewRenderer returns the renderer for format.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case types.FormatRaw:
		return rawRenderer{}, nil
	case types.FormatJSON:
		return jsonRenderer{}, nil
	case types.FormatXML:
		return xmlRenderer{}, nil
	case types.FormatYAML:
		return yamlRenderer{}, nil
	default:
		return nil, fmt.Errorf(errorUnsupportedFormat, format)
	}
}

// rawRenderer produces the tab-indented listing.
type rawRenderer struct{}

func (rawRenderer) Render(writer io.Writer, rootSnapshot *snapshot.Snapshot) error {
	return snapshot.Print(rootSnapshot, writer)
}

type jsonRenderer struct{}

func (jsonRenderer) Render(writer io.Writer, rootSnapshot *snapshot.Snapshot) error {
	jsonData, marshalError := json.MarshalIndent(BuildTreeOutputNode(rootSnapshot), indentPrefix, indentSpacer)
	if marshalError != nil {
		return fmt.Errorf(errorMarshalFormat, types.FormatJSON, marshalError)
	}
	jsonData = append(jsonData, '\n')
	return writeRendered(writer, rootSnapshot, jsonData)
}

type xmlSnapshotDocument struct {
	XMLName xml.Name              `xml:"snapshot"`
	Root    *types.TreeOutputNode `xml:"node"`
}

type xmlRenderer struct{}

func (xmlRenderer) Render(writer io.Writer, rootSnapshot *snapshot.Snapshot) error {
	document := xmlSnapshotDocument{
		XMLName: xml.Name{Local: xmlRootElement},
		Root:    BuildTreeOutputNode(rootSnapshot),
	}
	xmlData, marshalError := xml.MarshalIndent(document, indentPrefix, indentSpacer)
	if marshalError != nil {
		return fmt.Errorf(errorMarshalFormat, types.FormatXML, marshalError)
	}
	rendered := make([]byte, 0, len(xmlHeader)+len(xmlData)+1)
	rendered = append(rendered, xmlHeader...)
	rendered = append(rendered, xmlData...)
	rendered = append(rendered, '\n')
	return writeRendered(writer, rootSnapshot, rendered)
}

type yamlRenderer struct{}

func (yamlRenderer) Render(writer io.Writer, rootSnapshot *snapshot.Snapshot) error {
	var builder strings.Builder
	encoder := yaml.NewEncoder(&builder)
	encoder.SetIndent(yamlIndent)
	if encodeError := encoder.Encode(BuildTreeOutputNode(rootSnapshot)); encodeError != nil {
		return fmt.Errorf(errorMarshalFormat, types.FormatYAML, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(errorMarshalFormat, types.FormatYAML, closeError)
	}
	return writeRendered(writer, rootSnapshot, []byte(builder.String()))
}

func writeRendered(writer io.Writer, rootSnapshot *snapshot.Snapshot, rendered []byte) error {
	if _, writeError := writer.Write(rendered); writeError != nil {
		rootPath := ""
		if rootSnapshot != nil {
			rootPath = rootSnapshot.DirectoryPath
		}
		return snapshot.NewError(snapshot.ErrWrite, rootPath, writeError)
	}
	return nil
}
