package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/export"
)

var (
	exportDate   string
	exportFormat string
	exportOutput string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export a day's timeline as JSON, JSONL, YAML or Markdown",
		Long: `Rebuild a day's usage sessions and write them in a portable format.

Formats:
  json      one document with all sessions
  jsonl     one session per line
  yaml      one YAML document
  md        a Markdown table

Without --output the export is written to stdout. When --output is a
directory, a file named after the day is created inside it.`,
		Example: `  # Today's sessions as JSON on stdout
  rewind export --format json

  # Yesterday as Markdown into a file
  rewind export --date yesterday --format md --output notes/

  # A specific day as JSONL
  rewind export --date 2026-03-14 --format jsonl --output day.jsonl`,
		RunE: runExport,
	}
)

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "day to export: YYYY-MM-DD, today or yesterday (default: today)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format: json, jsonl, yaml, md")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file or directory (default: stdout)")

	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	exporter, err := export.NewExporter(strings.ToLower(exportFormat))
	if err != nil {
		return err
	}

	tl, window, err := loadTimeline(cmd, exportDate, timelineOptions(nil, nil))
	if err != nil {
		return err
	}
	doc := export.NewDocument(tl, window)

	if exportOutput == "" {
		return exporter.Export(doc, cmd.OutOrStdout())
	}

	path := exportOutput
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "rewind-"+doc.Day+"."+exporter.Extension())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(doc, f); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	logger.Info().Str("path", path).Int("sessions", len(doc.Sessions)).Msg("exported timeline")
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d sessions to %s\n", len(doc.Sessions), path)
	return nil
}
