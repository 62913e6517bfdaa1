package analyzer

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/rewind/internal/store"
	"github.com/blackwell-systems/rewind/internal/timeline"
)

func session(pkg string, startMin, endMin int) timeline.AppSession {
	app := timeline.InstalledApp{Package: pkg, Label: pkg}
	return timeline.AppSession{
		Start: timeline.AppEvent{App: app, Timestamp: day.Add(time.Duration(startMin) * time.Minute), Kind: timeline.ActivityResumed},
		End:   timeline.AppEvent{App: app, Timestamp: day.Add(time.Duration(endMin) * time.Minute), Kind: timeline.ActivityResumed},
	}
}

func TestAppTotals(t *testing.T) {
	tl := timeline.AppTimeline{
		Sessions: []timeline.AppSession{
			session("a", 0, 10),
			session("b", 10, 40),
			session("a", 40, 50),
			session("c", 50, 70),
		},
		TotalSeconds: 70 * 60,
	}

	totals := AppTotals(tl)
	if len(totals) != 3 {
		t.Fatalf("expected 3 apps, got %d", len(totals))
	}

	want := []struct {
		pkg      string
		sessions int
		seconds  int64
	}{
		{"b", 1, 1800},
		{"a", 2, 1200},
		{"c", 1, 1200},
	}
	for i, w := range want {
		got := totals[i]
		if got.App.Package != w.pkg || got.Sessions != w.sessions || got.TotalSeconds != w.seconds {
			t.Errorf("totals[%d] = %s/%d/%d, want %s/%d/%d",
				i, got.App.Package, got.Sessions, got.TotalSeconds, w.pkg, w.sessions, w.seconds)
		}
	}

	var share float64
	for _, tot := range totals {
		share += tot.Share
	}
	if share < 0.999 || share > 1.001 {
		t.Errorf("shares sum to %f, want 1", share)
	}
}

func TestAppTotals_Empty(t *testing.T) {
	if totals := AppTotals(timeline.AppTimeline{}); len(totals) != 0 {
		t.Errorf("expected no totals, got %d", len(totals))
	}
}

func TestGetUsageStats_NeverUsed(t *testing.T) {
	s := setupTestStore(t)

	stats, err := New(s, zerolog.Nop()).GetUsageStats("unused", day)
	if err != nil {
		t.Fatalf("GetUsageStats failed: %v", err)
	}
	if stats.Resumes != 0 {
		t.Errorf("expected 0 resumes, got %d", stats.Resumes)
	}
	if stats.LastUsed != nil {
		t.Error("expected LastUsed to be nil")
	}
	if stats.DaysSince != -1 {
		t.Errorf("expected DaysSince -1, got %d", stats.DaysSince)
	}
	if stats.Frequency != "never" {
		t.Errorf("expected frequency never, got %s", stats.Frequency)
	}
}

func TestGetUsageStats_Frequency(t *testing.T) {
	tests := []struct {
		name     string
		resumes  []int // days before now
		want     string
		wantDays int
	}{
		{"daily", []int{6, 5, 4, 3, 2, 1}, "daily", 1},
		{"weekly", []int{20, 10, 5}, "weekly", 5},
		{"monthly", []int{60}, "monthly", 60},
		{"rarely", []int{200}, "rarely", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestStore(t)
			now := day.AddDate(0, 0, 300)
			for _, d := range tt.resumes {
				ev := &store.UsageEvent{Package: "a", Kind: string(timeline.ActivityResumed), Timestamp: now.AddDate(0, 0, -d)}
				if err := s.InsertUsageEvent(ev); err != nil {
					t.Fatalf("InsertUsageEvent: %v", err)
				}
			}
			// Pauses and other apps do not count.
			other := &store.UsageEvent{Package: "b", Kind: string(timeline.ActivityResumed), Timestamp: now.AddDate(0, 0, -1)}
			if err := s.InsertUsageEvent(other); err != nil {
				t.Fatalf("InsertUsageEvent: %v", err)
			}

			stats, err := New(s, zerolog.Nop()).GetUsageStats("a", now)
			if err != nil {
				t.Fatalf("GetUsageStats failed: %v", err)
			}
			if stats.Resumes != len(tt.resumes) {
				t.Errorf("Resumes = %d, want %d", stats.Resumes, len(tt.resumes))
			}
			if stats.DaysSince != tt.wantDays {
				t.Errorf("DaysSince = %d, want %d", stats.DaysSince, tt.wantDays)
			}
			if stats.Frequency != tt.want {
				t.Errorf("Frequency = %s, want %s", stats.Frequency, tt.want)
			}
		})
	}
}

func TestUsageHistory_Order(t *testing.T) {
	s := setupTestStore(t)
	now := day.Add(12 * time.Hour)
	for _, pkg := range []string{"b", "a", "b"} {
		ev := &store.UsageEvent{Package: pkg, Kind: string(timeline.ActivityResumed), Timestamp: day.Add(time.Hour)}
		if err := s.InsertUsageEvent(ev); err != nil {
			t.Fatalf("InsertUsageEvent: %v", err)
		}
	}

	stats, err := New(s, zerolog.Nop()).UsageHistory([]string{"a", "b", "c"}, now)
	if err != nil {
		t.Fatalf("UsageHistory failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(stats))
	}
	want := []struct {
		pkg     string
		resumes int
	}{{"a", 1}, {"b", 2}, {"c", 0}}
	for i, w := range want {
		if stats[i].Package != w.pkg || stats[i].Resumes != w.resumes {
			t.Errorf("stats[%d] = %s/%d, want %s/%d", i, stats[i].Package, stats[i].Resumes, w.pkg, w.resumes)
		}
	}
	if stats[2].Frequency != "never" {
		t.Errorf("c frequency = %s, want never", stats[2].Frequency)
	}
}
