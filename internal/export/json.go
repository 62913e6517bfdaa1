package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports a timeline as a single pretty-printed JSON document
type JSONExporter struct{}

// Export writes doc to w
func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
