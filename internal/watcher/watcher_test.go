package watcher

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	st := setupTestStore(t)

	w, err := New(st, testEventLog(t), Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	if w.store != st {
		t.Error("watcher store not set correctly")
	}
	if w.opts.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", w.opts.PollInterval, defaultPollInterval)
	}
}

func TestNew_NilStore(t *testing.T) {
	if _, err := New(nil, testEventLog(t), Options{}, zerolog.Nop()); err == nil {
		t.Error("New(nil) expected error, got nil")
	}
}

func TestNew_MissingPaths(t *testing.T) {
	if _, err := New(setupTestStore(t), EventLog{}, Options{}, zerolog.Nop()); err == nil {
		t.Error("New() with empty paths expected error, got nil")
	}
}

func TestStopBeforeStart(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() before Start() error = %v, want nil", err)
	}
}

// waitForEvents polls the store until it holds want events or the deadline
// passes.
func waitForEvents(t *testing.T, w *Watcher, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n, err := w.store.GetEventCount()
		if err != nil {
			t.Fatalf("GetEventCount() error: %v", err)
		}
		if n == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events", want)
}

func TestWatcher_IngestsOnStartAndWrite(t *testing.T) {
	st := setupTestStore(t)
	el := testEventLog(t)
	ts := time.Now().UnixNano()

	appendLog(t, el.Path, fmt.Sprintf("%d,a,resumed\n", ts))

	w, err := New(st, el, Options{PollInterval: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	waitForEvents(t, w, 1)

	appendLog(t, el.Path, fmt.Sprintf("%d,a,paused\n", ts+int64(time.Second)))
	waitForEvents(t, w, 2)
}

func TestWatcher_FlushOnStop(t *testing.T) {
	st := setupTestStore(t)
	el := testEventLog(t)

	w, err := New(st, el, Options{PollInterval: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	appendLog(t, el.Path, fmt.Sprintf("%d,a,resumed\n", time.Now().UnixNano()))
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	n, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount() error: %v", err)
	}
	if n != 1 {
		t.Errorf("events after Stop() = %d, want 1", n)
	}
}

func TestWatcher_Retention(t *testing.T) {
	st := setupTestStore(t)
	el := testEventLog(t)
	old := time.Now().Add(-48 * time.Hour).UnixNano()
	recent := time.Now().UnixNano()

	appendLog(t, el.Path, fmt.Sprintf("%d,a,resumed\n%d,b,resumed\n", old, recent))

	w, err := New(st, el, Options{Retention: 24 * time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	w.process("test")

	n, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount() error: %v", err)
	}
	if n != 1 {
		t.Errorf("events after retention = %d, want 1", n)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("first Stop() error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}

func TestWatcher_Drain(t *testing.T) {
	st := setupTestStore(t)
	el := testEventLog(t)

	// More lines than one pass reads, plus one event past retention.
	var b strings.Builder
	fmt.Fprintf(&b, "%d,old,resumed\n", time.Now().Add(-48*time.Hour).UnixNano())
	now := time.Now().UnixNano()
	for i := 0; i < maxEventLogLinesPerTick+5; i++ {
		fmt.Fprintf(&b, "%d,a,resumed\n", now+int64(i))
	}
	appendLog(t, el.Path, b.String())

	w, err := New(st, el, Options{Retention: 24 * time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ingested, pruned, err := w.Drain()
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if ingested != maxEventLogLinesPerTick+6 {
		t.Errorf("ingested = %d, want %d", ingested, maxEventLogLinesPerTick+6)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	n, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount() error: %v", err)
	}
	if n != maxEventLogLinesPerTick+5 {
		t.Errorf("events after Drain() = %d, want %d", n, maxEventLogLinesPerTick+5)
	}
}
