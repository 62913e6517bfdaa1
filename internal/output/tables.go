package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/rewind/internal/analyzer"
	"github.com/blackwell-systems/rewind/internal/store"
	"github.com/blackwell-systems/rewind/internal/timeline"
)

// RenderTimelineTable renders sessions as a table in timeline order.
func RenderTimelineTable(tl timeline.AppTimeline) string {
	if tl.Len() == 0 {
		return "No sessions recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-9s %-9s %-9s %s\n", "Start", "End", "Duration", "App"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, s := range tl.Sessions {
		sb.WriteString(fmt.Sprintf("%-9s %-9s %-9s %s\n",
			s.Start.Timestamp.Format("15:04:05"),
			s.End.Timestamp.Format("15:04:05"),
			FormatDuration(s.Duration()),
			truncate(s.Start.App.Label, 30)))
	}

	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-19s %-9s %d sessions\n", "Total",
		FormatDuration(time.Duration(tl.TotalSeconds)*time.Second), tl.Len()))
	return sb.String()
}

// RenderAppTable renders per-app totals. Rows keep the caller's order.
func RenderAppTable(totals []analyzer.AppTotal) string {
	if len(totals) == 0 {
		return "No app usage recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-9s %-9s %s\n", "App", "Sessions", "Total", "Share"))
	sb.WriteString(strings.Repeat("─", 54))
	sb.WriteString("\n")

	for _, t := range totals {
		sb.WriteString(fmt.Sprintf("%-24s %-9d %-9s %5.1f%%\n",
			truncate(t.App.Label, 24),
			t.Sessions,
			FormatDuration(time.Duration(t.TotalSeconds)*time.Second),
			t.Share*100))
	}
	return sb.String()
}

// RenderUsageTable renders long-term usage statistics. labels maps package
// identifiers to display names; unknown packages show the identifier.
func RenderUsageTable(stats []*analyzer.UsageStats, labels map[string]string) string {
	if len(stats) == 0 {
		return "No usage statistics available.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-8s %-16s %s\n", "App", "Resumes", "Last Used", "Frequency"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, s := range stats {
		name := s.Package
		if label, ok := labels[s.Package]; ok {
			name = label
		}
		lastUsed := "never"
		if s.LastUsed != nil {
			lastUsed = FormatRelativeTime(*s.LastUsed)
		}
		sb.WriteString(fmt.Sprintf("%-24s %-8d %-16s %s\n",
			truncate(name, 24),
			s.Resumes,
			truncate(lastUsed, 16),
			s.Frequency))
	}
	return sb.String()
}

// RenderAppList renders the scanned catalog.
func RenderAppList(apps []*store.App) string {
	if len(apps) == 0 {
		return "No apps found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-32s %-24s %s\n", "Package", "Label", "Color"))
	sb.WriteString(strings.Repeat("─", 66))
	sb.WriteString("\n")

	for _, app := range apps {
		sb.WriteString(fmt.Sprintf("%-32s %-24s %s\n",
			truncate(app.Package, 32),
			truncate(app.Label, 24),
			app.Color))
	}
	return sb.String()
}
