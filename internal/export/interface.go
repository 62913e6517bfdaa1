// Package export writes reconstructed timelines in portable formats.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/blackwell-systems/rewind/internal/timeline"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// Document is the serialized form of one day's timeline.
type Document struct {
	Day          string    `json:"day" yaml:"day"`
	WindowStart  time.Time `json:"window_start" yaml:"window_start"`
	WindowEnd    time.Time `json:"window_end" yaml:"window_end"`
	TotalSeconds int64     `json:"total_seconds" yaml:"total_seconds"`
	Sessions     []Session `json:"sessions" yaml:"sessions"`
}

// Session is one exported usage session.
type Session struct {
	Package         string    `json:"package" yaml:"package"`
	Label           string    `json:"label" yaml:"label"`
	Color           string    `json:"color" yaml:"color"`
	Start           time.Time `json:"start" yaml:"start"`
	End             time.Time `json:"end" yaml:"end"`
	DurationSeconds int64     `json:"duration_seconds" yaml:"duration_seconds"`
}

// NewDocument converts a timeline for the given window into a Document.
func NewDocument(tl timeline.AppTimeline, w timeline.Window) *Document {
	doc := &Document{
		Day:          w.Start.Format("2006-01-02"),
		WindowStart:  w.Start,
		WindowEnd:    w.End,
		TotalSeconds: tl.TotalSeconds,
		Sessions:     make([]Session, 0, len(tl.Sessions)),
	}
	for _, s := range tl.Sessions {
		doc.Sessions = append(doc.Sessions, Session{
			Package:         s.Start.App.Package,
			Label:           s.Start.App.Label,
			Color:           s.Start.App.Color,
			Start:           s.Start.Timestamp,
			End:             s.End.Timestamp,
			DurationSeconds: s.Seconds(),
		})
	}
	return doc
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml, md)", format)
	}
}
