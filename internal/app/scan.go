package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/catalog"
	"github.com/blackwell-systems/rewind/internal/config"
	"github.com/blackwell-systems/rewind/internal/output"
	"github.com/blackwell-systems/rewind/internal/store"
	"github.com/blackwell-systems/rewind/internal/timeline"
)

var (
	scanManifest string
	scanQuiet    bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Index installed apps from the app manifest",
		Long: `Read the app manifest, drop system apps and launchers, derive each app's
color from its icon, and store the result as the app catalog.

Only apps in the catalog appear in timelines. Events for other packages are
kept in the database but ignored when sessions are rebuilt.

Labels can be overridden in ~/.config/rewind/labels, one per line:
  org.mozilla.firefox=Firefox

The scan command should be run:
  • After setting up rewind for the first time
  • After installing or removing apps
  • After editing the manifest or label overrides`,
		Example: `  # Scan using the default manifest (~/.config/rewind/apps.yaml)
  rewind scan

  # Scan a specific manifest
  rewind scan --manifest ./apps.yaml

  # Scan quietly (suppress output)
  rewind scan --quiet`,
		RunE: runScan,
	}
)

const manifestExample = `apps:
  - package: org.mozilla.firefox
    label: Firefox
    icon: /usr/share/icons/hicolor/256x256/apps/firefox.png
  - package: org.gnome.Shell
    label: GNOME Shell
    system: true`

func init() {
	scanCmd.Flags().StringVar(&scanManifest, "manifest", "", "app manifest path (default: ~/.config/rewind/apps.yaml)")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "suppress output")

	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if scanQuiet {
		out = io.Discard
	}

	manifest := cfg.Manifest
	if scanManifest != "" {
		manifest = scanManifest
	}

	labels, err := config.LoadLabels(configDir())
	if err != nil {
		return err
	}

	loader, err := catalog.NewLoader(labels, logger)
	if err != nil {
		return err
	}
	var progress *output.ProgressBar
	loader.OnResolve = func(done, total int) {
		if progress == nil {
			progress = output.NewProgress(total, "Extracting icon colors")
			progress.SetWriter(out)
		}
		progress.Set(done)
	}

	apps, err := loader.Load(manifest)
	if errors.Is(err, catalog.ErrManifestNotFound) {
		fmt.Fprintf(out, "No app manifest found at %s.\n\nCreate one like this:\n\n%s\n", manifest, manifestExample)
		return err
	}
	if err != nil {
		return err
	}
	if progress != nil {
		progress.Finish()
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	rows := toStoreApps(apps, time.Now())
	if err := st.ReplaceApps(rows); err != nil {
		return fmt.Errorf("failed to store apps: %w", err)
	}

	logger.Info().Str("manifest", manifest).Int("apps", len(rows)).Msg("catalog scanned")

	fmt.Fprintf(out, "✓ Indexed %d apps\n\n", len(rows))
	fmt.Fprint(out, output.RenderAppList(rows))
	return nil
}

func toStoreApps(apps []timeline.InstalledApp, scannedAt time.Time) []*store.App {
	rows := make([]*store.App, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, &store.App{
			Package:   a.Package,
			Label:     a.Label,
			IconPath:  a.IconPath,
			Color:     a.Color,
			ScannedAt: scannedAt,
		})
	}
	return rows
}
