package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports a timeline in YAML format
type YAMLExporter struct{}

// Export writes doc to w
func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
