package catalog

import (
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/rewind/internal/timeline"
)

// Loader turns manifest entries into InstalledApps.
type Loader struct {
	colors *ColorExtractor
	labels map[string]string
	logger zerolog.Logger

	// OnResolve, if set, is called after each eligible entry is resolved.
	OnResolve func(done, total int)
}

// NewLoader creates a Loader. labels may be nil.
func NewLoader(labels map[string]string, logger zerolog.Logger) (*Loader, error) {
	colors, err := NewColorExtractor(defaultColorCacheSize)
	if err != nil {
		return nil, err
	}
	return &Loader{
		colors: colors,
		labels: labels,
		logger: logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Load reads the manifest at path and returns the eligible apps in
// manifest order. Label overrides are applied before filtering, so an
// override can rename an app into or out of the launcher exclusion.
func (l *Loader) Load(path string) ([]timeline.InstalledApp, error) {
	entries, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return l.Build(entries), nil
}

// Build resolves entries into InstalledApps. Duplicate packages keep the
// last entry, at the position of the first, and the survivor is what gets
// filtered.
func (l *Loader) Build(entries []Entry) []timeline.InstalledApp {
	ApplyLabels(entries, l.labels)
	unique := l.dedupe(entries)
	eligible := Filter(unique)

	l.logger.Debug().
		Int("listed", len(entries)).
		Int("eligible", len(eligible)).
		Msg("filtered manifest")

	apps := make([]timeline.InstalledApp, 0, len(eligible))
	for n, e := range eligible {
		apps = append(apps, timeline.InstalledApp{
			Package:  e.Package,
			Label:    e.Label,
			IconPath: e.Icon,
			Color:    l.colors.Color(e.Icon),
		})
		if l.OnResolve != nil {
			l.OnResolve(n+1, len(eligible))
		}
	}
	return apps
}

func (l *Loader) dedupe(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, dup := index[e.Package]; dup {
			l.logger.Warn().Str("package", e.Package).Msg("duplicate manifest entry, keeping last")
			out[i] = e
			continue
		}
		index[e.Package] = len(out)
		out = append(out, e)
	}
	return out
}

// ToCatalog indexes apps by package identifier.
func ToCatalog(apps []timeline.InstalledApp) timeline.Catalog {
	c := make(timeline.Catalog, len(apps))
	for _, app := range apps {
		c[app.Package] = app
	}
	return c
}
