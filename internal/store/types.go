package store

import "time"

// App is a catalog entry as persisted by the last scan.
type App struct {
	Package   string
	Label     string
	IconPath  string
	Color     string
	ScannedAt time.Time
}

// UsageEvent records a foreground transition of an app.
type UsageEvent struct {
	ID        int64
	Package   string
	Kind      string // "resumed" or "paused"
	Timestamp time.Time
}
