package timeline

import "time"

// ForegroundTotals sums per-package foreground time over events.
//
// A package is in the foreground from its resume until its own pause or
// until another package resumes, whichever comes first. A package still in
// the foreground at the end of events is counted up to until; a zero until
// leaves that span out.
func ForegroundTotals(events []RawEvent, until time.Time) map[string]time.Duration {
	totals := make(map[string]time.Duration)

	var (
		current string
		since   time.Time
	)
	for _, ev := range events {
		switch ev.Kind {
		case ActivityResumed:
			if current != "" && current != ev.Package {
				totals[current] += ev.Timestamp.Sub(since)
			}
			if current != ev.Package {
				current = ev.Package
				since = ev.Timestamp
			}
			if _, ok := totals[current]; !ok {
				totals[current] = 0
			}
		case ActivityPaused:
			if ev.Package == current {
				totals[current] += ev.Timestamp.Sub(since)
				current = ""
			}
		}
	}
	if current != "" && until.After(since) {
		totals[current] += until.Sub(since)
	}
	return totals
}

// FilterForeground keeps only the events whose package has a nonzero
// foreground total.
func FilterForeground(events []RawEvent, totals map[string]time.Duration) []RawEvent {
	out := make([]RawEvent, 0, len(events))
	for _, ev := range events {
		if totals[ev.Package] > 0 {
			out = append(out, ev)
		}
	}
	return out
}
