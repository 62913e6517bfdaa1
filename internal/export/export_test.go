package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/rewind/internal/timeline"
	"gopkg.in/yaml.v3"
)

func testDocument(t *testing.T) *Document {
	t.Helper()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	catalog := timeline.Catalog{
		"a": {Package: "a", Label: "Alpha", Color: "#ff0000"},
		"b": {Package: "b", Label: "Be|ta", Color: "#00ff00"},
	}
	events := []timeline.RawEvent{
		{Package: "a", Timestamp: base, Kind: timeline.ActivityResumed},
		{Package: "b", Timestamp: base.Add(10 * time.Second), Kind: timeline.ActivityResumed},
		{Package: "a", Timestamp: base.Add(15 * time.Second), Kind: timeline.ActivityResumed},
	}
	tl := timeline.Reconstruct(catalog, events)
	return NewDocument(tl, timeline.DayWindow(base, time.UTC))
}

func TestNewDocument(t *testing.T) {
	doc := testDocument(t)

	if doc.Day != "2026-10-19" {
		t.Errorf("Day = %s, want 2026-10-19", doc.Day)
	}
	if doc.TotalSeconds != 15 {
		t.Errorf("TotalSeconds = %d, want 15", doc.TotalSeconds)
	}
	wantStart := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if !doc.WindowStart.Equal(wantStart) {
		t.Errorf("WindowStart = %v, want %v", doc.WindowStart, wantStart)
	}
	if want := wantStart.AddDate(0, 0, 1).Add(-time.Nanosecond); !doc.WindowEnd.Equal(want) {
		t.Errorf("WindowEnd = %v, want %v", doc.WindowEnd, want)
	}
	if len(doc.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(doc.Sessions))
	}
	if doc.Sessions[0].Label != "Alpha" || doc.Sessions[0].DurationSeconds != 10 {
		t.Errorf("session[0] = %+v", doc.Sessions[0])
	}
	if doc.Sessions[1].Package != "b" || doc.Sessions[1].DurationSeconds != 5 {
		t.Errorf("session[1] = %+v", doc.Sessions[1])
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"json", "json", false},
		{"jsonl", "jsonl", false},
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"md", "md", false},
		{"markdown", "md", false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), "supported") {
					t.Errorf("error %q should list supported formats", err)
				}
				return
			}
			if exp.Extension() != tt.wantExt {
				t.Errorf("Extension() = %s, want %s", exp.Extension(), tt.wantExt)
			}
		})
	}
}

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(testDocument(t), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var got Document
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.TotalSeconds != 15 || len(got.Sessions) != 2 {
		t.Errorf("decoded document = %+v", got)
	}
	if !got.WindowStart.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window_start = %v, want start of day", got.WindowStart)
	}
	if !strings.Contains(buf.String(), `"window_end"`) {
		t.Errorf("output missing window_end:\n%s", buf.String())
	}
}

func TestJSONLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(testDocument(t), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var s Session
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONLExporter_EmptyTimeline(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(&Document{Day: "2026-10-19"}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(testDocument(t), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if got["day"] != "2026-10-19" {
		t.Errorf("day = %v, want 2026-10-19", got["day"])
	}
	if !strings.Contains(buf.String(), "total_seconds: 15") {
		t.Errorf("output missing total_seconds:\n%s", buf.String())
	}
}

func TestMarkdownExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(testDocument(t), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Timeline 2026-10-19",
		"**Sessions:** 2",
		"**Total:** 15s",
		"| 09:00:00 | 09:00:10 | 10s | Alpha |",
		`Be\|ta`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(&Document{Day: "2026-10-19"}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions recorded") {
		t.Errorf("expected empty marker, got:\n%s", buf.String())
	}
}
