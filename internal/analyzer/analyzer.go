package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/rewind/internal/store"
	"github.com/blackwell-systems/rewind/internal/timeline"
)

// Analyzer loads stored apps and events and turns them into timelines and
// usage statistics.
type Analyzer struct {
	store  *store.Store
	logger zerolog.Logger
}

// New creates a new Analyzer instance with the given store.
func New(store *store.Store, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		logger: logger.With().Str("component", "analyzer").Logger(),
	}
}

// Options controls how a day's timeline is built.
type Options struct {
	// Location defines the calendar day. Nil means time.Local.
	Location *time.Location
	// RequireForeground drops events of apps with no foreground time in
	// the window. An app still in front counts up to now.
	RequireForeground bool
	// CloseOpen ends a still-running last session at the earlier of now
	// and the end of the window instead of dropping it.
	CloseOpen bool
	// Now overrides the clock used by CloseOpen and RequireForeground.
	// Nil means time.Now.
	Now func() time.Time
}

// LoadCatalog reads the scanned apps into a Catalog.
func (a *Analyzer) LoadCatalog() (timeline.Catalog, error) {
	apps, err := a.store.ListApps()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	catalog := make(timeline.Catalog, len(apps))
	for _, app := range apps {
		catalog[app.Package] = timeline.InstalledApp{
			Package:  app.Package,
			Label:    app.Label,
			IconPath: app.IconPath,
			Color:    app.Color,
		}
	}
	return catalog, nil
}

// LoadEvents returns the recorded events inside w, oldest first. Rows with
// an unknown kind are skipped.
func (a *Analyzer) LoadEvents(w timeline.Window) ([]timeline.RawEvent, error) {
	rows, err := a.store.QueryEvents(w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	events := make([]timeline.RawEvent, 0, len(rows))
	for _, row := range rows {
		kind, ok := timeline.ParseEventKind(row.Kind)
		if !ok {
			a.logger.Warn().Int64("id", row.ID).Str("kind", row.Kind).Msg("skipping event with unknown kind")
			continue
		}
		events = append(events, timeline.RawEvent{
			Package:   row.Package,
			Timestamp: row.Timestamp,
			Kind:      kind,
		})
	}
	return events, nil
}

// Timeline builds the session timeline for the calendar day containing day.
// If ctx is cancelled before reconstruction, the partial load is discarded
// and ctx.Err() is returned.
func (a *Analyzer) Timeline(ctx context.Context, day time.Time, opts Options) (timeline.AppTimeline, timeline.Window, error) {
	window := timeline.DayWindow(day, opts.Location)

	catalog, err := a.LoadCatalog()
	if err != nil {
		return timeline.AppTimeline{}, window, err
	}
	events, err := a.LoadEvents(window)
	if err != nil {
		return timeline.AppTimeline{}, window, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	// Neither the open session nor foreground time runs past now or the
	// end of the day.
	bound := now()
	if bound.After(window.End) {
		bound = window.End
	}

	if opts.RequireForeground {
		before := len(events)
		events = timeline.FilterForeground(events, timeline.ForegroundTotals(events, bound))
		a.logger.Debug().Int("before", before).Int("after", len(events)).Msg("applied foreground filter")
	}

	if err := ctx.Err(); err != nil {
		return timeline.AppTimeline{}, window, err
	}

	var tl timeline.AppTimeline
	if opts.CloseOpen {
		tl = timeline.ReconstructUntil(catalog, events, bound)
	} else {
		tl = timeline.Reconstruct(catalog, events)
	}

	a.logger.Debug().
		Time("day", window.Start).
		Int("apps", len(catalog)).
		Int("events", len(events)).
		Int("sessions", tl.Len()).
		Int64("total_seconds", tl.TotalSeconds).
		Msg("reconstructed timeline")

	return tl, window, nil
}
