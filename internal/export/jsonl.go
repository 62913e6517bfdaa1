package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports one session per line
type JSONLExporter struct{}

// Export writes each session of doc as its own JSON line
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, s := range doc.Sessions {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
