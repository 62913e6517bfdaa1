package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/rewind/internal/store"
)

// setupTestStore creates an in-memory SQLite store for tests and registers
// cleanup with t.Cleanup so callers don't need explicit defer.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("setupTestStore: open: %v", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		t.Fatalf("setupTestStore: schema: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// testEventLog returns an EventLog rooted in a fresh temp dir.
func testEventLog(t *testing.T) EventLog {
	t.Helper()
	dir := t.TempDir()
	return EventLog{
		Path:       filepath.Join(dir, "events.log"),
		OffsetPath: filepath.Join(dir, "events.offset"),
	}
}

// appendLog appends raw content to the event log.
func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write log: %v", err)
	}
}
