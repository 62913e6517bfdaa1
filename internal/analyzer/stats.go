package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/blackwell-systems/rewind/internal/timeline"
)

// AppTotal is one app's share of a timeline.
type AppTotal struct {
	App          timeline.InstalledApp
	Sessions     int
	TotalSeconds int64
	Share        float64 // fraction of the timeline total, 0-1
}

// AppTotals sums session time per app, largest first. Ties are broken by
// package name.
func AppTotals(tl timeline.AppTimeline) []AppTotal {
	index := make(map[string]int)
	var totals []AppTotal
	for _, s := range tl.Sessions {
		pkg := s.Start.App.Package
		i, ok := index[pkg]
		if !ok {
			i = len(totals)
			index[pkg] = i
			totals = append(totals, AppTotal{App: s.Start.App})
		}
		totals[i].Sessions++
		totals[i].TotalSeconds += s.Seconds()
	}

	for i := range totals {
		if tl.TotalSeconds > 0 {
			totals[i].Share = float64(totals[i].TotalSeconds) / float64(tl.TotalSeconds)
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].TotalSeconds != totals[j].TotalSeconds {
			return totals[i].TotalSeconds > totals[j].TotalSeconds
		}
		return totals[i].App.Package < totals[j].App.Package
	})
	return totals
}

// UsageStats summarizes an app's recorded history across all days.
type UsageStats struct {
	Package   string
	Resumes   int
	FirstSeen *time.Time
	LastUsed  *time.Time
	DaysSince int    // Days since last used, -1 if never used
	Frequency string // "daily", "weekly", "monthly", "rarely", "never"
}

// GetUsageStats returns usage statistics for a single app.
func (a *Analyzer) GetUsageStats(pkg string, now time.Time) (*UsageStats, error) {
	stats, err := a.UsageHistory([]string{pkg}, now)
	if err != nil {
		return nil, err
	}
	return stats[0], nil
}

// UsageHistory returns usage statistics for each of pkgs, in the same
// order, from a single pass over the recorded events.
func (a *Analyzer) UsageHistory(pkgs []string, now time.Time) ([]*UsageStats, error) {
	rows, err := a.store.QueryEvents(time.Unix(0, 0), now)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage events: %w", err)
	}

	byPkg := make(map[string]*UsageStats, len(pkgs))
	all := make([]*UsageStats, len(pkgs))
	for i, pkg := range pkgs {
		all[i] = &UsageStats{Package: pkg, DaysSince: -1}
		byPkg[pkg] = all[i]
	}

	for _, row := range rows {
		stats, ok := byPkg[row.Package]
		if !ok || row.Kind != string(timeline.ActivityResumed) {
			continue
		}
		ts := row.Timestamp
		if stats.FirstSeen == nil {
			stats.FirstSeen = &ts
		}
		stats.LastUsed = &ts
		stats.Resumes++
	}

	for _, stats := range all {
		if stats.LastUsed != nil {
			stats.DaysSince = int(now.Sub(*stats.LastUsed).Hours() / 24)
		}
		stats.Frequency = computeFrequency(stats, now)
	}
	return all, nil
}

// computeFrequency classifies usage by recency and average resumes per day
// since the app was first seen.
func computeFrequency(stats *UsageStats, now time.Time) string {
	if stats.LastUsed == nil {
		return "never"
	}

	days := int(now.Sub(*stats.FirstSeen).Hours() / 24)
	if days == 0 {
		days = 1
	}
	perDay := float64(stats.Resumes) / float64(days)

	switch {
	case stats.DaysSince <= 7 && perDay >= 0.5:
		return "daily"
	case stats.DaysSince <= 30 && perDay >= 0.1:
		return "weekly"
	case stats.DaysSince <= 90:
		return "monthly"
	default:
		return "rarely"
	}
}
