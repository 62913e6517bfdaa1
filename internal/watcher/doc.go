// Package watcher ingests foreground usage events recorded by rewind-record.
//
// The recorder appends one line per resume or pause to the event log. The
// Watcher picks up new lines as they are written (fsnotify, with a
// 30-second polling fallback) and batch-inserts them into the database.
//
// Key features:
//   - Crash-safe offset tracking (temp file + rename pattern)
//   - Batched SQLite inserts (single transaction per pass)
//   - Optional pruning of events past a retention window
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	st, err := store.New("~/.rewind/rewind.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	w, err := watcher.New(st, watcher.EventLog{
//		Path:       "~/.rewind/events.log",
//		OffsetPath: "~/.rewind/events.offset",
//	}, watcher.Options{}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
package watcher
