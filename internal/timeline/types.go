package timeline

import "time"

// EventKind identifies what a usage event reports about an app.
type EventKind string

const (
	// ActivityResumed marks the moment an app's UI became foreground-active.
	ActivityResumed EventKind = "resumed"
	// ActivityPaused marks the moment an app's UI left the foreground.
	ActivityPaused EventKind = "paused"
)

// ParseEventKind maps a recorded kind string to an EventKind.
func ParseEventKind(s string) (EventKind, bool) {
	switch EventKind(s) {
	case ActivityResumed, ActivityPaused:
		return EventKind(s), true
	default:
		return "", false
	}
}

// DefaultColor is used when an app's icon yields no dominant color.
const DefaultColor = "#888888"

// InstalledApp is an app eligible for the timeline.
type InstalledApp struct {
	Package  string
	Label    string
	IconPath string
	Color    string // "#rrggbb", dominant icon color
}

// Catalog maps a package identifier to its InstalledApp.
type Catalog map[string]InstalledApp

// RawEvent is one entry from the usage event log.
type RawEvent struct {
	Package   string
	Timestamp time.Time
	Kind      EventKind
}

// AppEvent is a RawEvent resolved against the catalog.
type AppEvent struct {
	App       InstalledApp
	Timestamp time.Time
	Kind      EventKind
}

// at returns a copy of e re-timestamped to t.
func (e AppEvent) at(t time.Time) AppEvent {
	e.Timestamp = t
	return e
}

// AppSession is a contiguous interval attributed to one app.
type AppSession struct {
	Start AppEvent
	End   AppEvent
}

// Duration returns End - Start.
func (s AppSession) Duration() time.Duration {
	return s.End.Timestamp.Sub(s.Start.Timestamp)
}

// Seconds returns the session duration in whole seconds.
func (s AppSession) Seconds() int64 {
	return int64(s.Duration() / time.Second)
}

// AppTimeline is the ordered session list for one query window.
type AppTimeline struct {
	Sessions     []AppSession
	TotalSeconds int64
}

// Len returns the number of sessions.
func (tl AppTimeline) Len() int {
	return len(tl.Sessions)
}
