package timeline

import "time"

// Window is a closed time interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the window covering the calendar day of day in loc,
// from local midnight to the last nanosecond before the next midnight.
func DayWindow(day time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	return Window{Start: start, End: end}
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
