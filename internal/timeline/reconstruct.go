package timeline

import "time"

// state is the fold accumulator carried across events.
type state struct {
	pending  *AppEvent
	sessions []AppSession
	total    int64
}

// step folds a single raw event into s.
func (s state) step(catalog Catalog, ev RawEvent) state {
	if ev.Kind != ActivityResumed {
		return s
	}
	app, ok := catalog[ev.Package]
	if !ok {
		return s
	}
	incoming := AppEvent{App: app, Timestamp: ev.Timestamp, Kind: ev.Kind}

	switch {
	case s.pending == nil:
		s.pending = &incoming
	case s.pending.App.Package == incoming.App.Package:
		// Re-resume of the open app; the session continues.
	default:
		s = s.close(incoming.Timestamp)
		s.pending = &incoming
	}
	return s
}

// close emits a session for the pending event ending at t.
func (s state) close(t time.Time) state {
	session := AppSession{Start: *s.pending, End: s.pending.at(t)}
	s.sessions = append(s.sessions, session)
	s.total += session.Seconds()
	s.pending = nil
	return s
}

func fold(catalog Catalog, events []RawEvent) state {
	var s state
	for _, ev := range events {
		s = s.step(catalog, ev)
	}
	return s
}

// Reconstruct rebuilds usage sessions from chronologically ordered events.
//
// Only resume events for packages in catalog are considered. A session is
// closed when a different app resumes; repeated resumes of the open app
// extend it. The last open event is dropped without producing a session.
func Reconstruct(catalog Catalog, events []RawEvent) AppTimeline {
	s := fold(catalog, events)
	return AppTimeline{Sessions: s.sessions, TotalSeconds: s.total}
}

// ReconstructUntil is Reconstruct, except that an event still open at the
// end of input is closed at bound. Bounds earlier than the open event's
// timestamp leave it unclosed.
func ReconstructUntil(catalog Catalog, events []RawEvent, bound time.Time) AppTimeline {
	s := fold(catalog, events)
	if s.pending != nil && !bound.Before(s.pending.Timestamp) {
		s = s.close(bound)
	}
	return AppTimeline{Sessions: s.sessions, TotalSeconds: s.total}
}
