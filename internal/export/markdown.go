package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// MarkdownExporter exports a timeline as a Markdown table
type MarkdownExporter struct{}

// Export writes doc to w
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Timeline %s\n\n", doc.Day)
	_, _ = fmt.Fprintf(w, "**Sessions:** %d  \n", len(doc.Sessions))
	_, _ = fmt.Fprintf(w, "**Total:** %s\n\n", time.Duration(doc.TotalSeconds)*time.Second)

	if len(doc.Sessions) == 0 {
		_, _ = fmt.Fprintf(w, "_No sessions recorded._\n")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| Start | End | Duration | App |\n")
	_, _ = fmt.Fprintf(w, "|---|---|---|---|\n")
	for _, s := range doc.Sessions {
		_, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			s.Start.Format("15:04:05"),
			s.End.Format("15:04:05"),
			time.Duration(s.DurationSeconds)*time.Second,
			escapeCell(s.Label))
		if err != nil {
			return err
		}
	}

	return nil
}

// escapeCell keeps a value from breaking the table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
