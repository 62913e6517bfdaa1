package watcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/rewind/internal/store"
	"github.com/blackwell-systems/rewind/internal/timeline"
)

const maxEventLogLinesPerTick = 10_000

// EventLog locates the recorder's append-only log and the file that tracks
// how far into it ingestion has progressed.
type EventLog struct {
	Path       string
	OffsetPath string
}

// ProcessEventLog reads entries appended to the event log since the last
// processed offset and batch-inserts them into the store in a single
// transaction. It returns the number of events inserted.
//
// Log format (one entry per line, written by cmd/rewind-record):
//
//	<unix_nano>,<package>,<kind>
//
// Example:
//
//	1709012345678901234,org.mozilla.firefox,resumed
//
// A trailing line without a newline is left for the next call, since the
// recorder may still be writing it. No error is returned when the log does
// not exist yet.
func ProcessEventLog(st *store.Store, el EventLog, logger zerolog.Logger) (int, error) {
	if _, err := os.Stat(el.Path); os.IsNotExist(err) {
		return 0, nil
	}

	offset, err := readOffset(el.OffsetPath)
	if err != nil {
		return 0, fmt.Errorf("event log: read offset: %w", err)
	}

	f, err := os.Open(el.Path)
	if err != nil {
		return 0, fmt.Errorf("event log: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("event log: stat: %w", err)
	}
	if offset > info.Size() {
		// Log was truncated or replaced.
		logger.Warn().Int64("offset", offset).Int64("size", info.Size()).Msg("event log shrank, restarting from beginning")
		offset = 0
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return 0, fmt.Errorf("event log: seek: %w", err)
		}
	}

	var events []*store.UsageEvent
	newOffset := offset
	lines := 0

	r := bufio.NewReader(f)
	for lines < maxEventLogLinesPerTick {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("event log: read: %w", err)
		}
		newOffset += int64(len(line))
		lines++

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		event, ok := parseEventLine(line)
		if !ok {
			logger.Warn().Str("line", line).Msg("skipping malformed event log line")
			continue
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		if err := st.InsertUsageEvents(events); err != nil {
			return 0, fmt.Errorf("event log: %w", err)
		}
	}

	// Only advance the offset after a successful commit.
	if newOffset != offset {
		if err := writeOffsetAtomic(el.OffsetPath, newOffset); err != nil {
			return 0, err
		}
	}

	if len(events) > 0 {
		logger.Debug().Int("events", len(events)).Int64("offset", newOffset).Msg("ingested event log")
	}
	return len(events), nil
}

// parseEventLine parses a line of the form "<unix_nano>,<package>,<kind>".
func parseEventLine(line string) (*store.UsageEvent, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return nil, false
	}

	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ts <= 0 {
		return nil, false
	}
	pkg := strings.TrimSpace(parts[1])
	if pkg == "" {
		return nil, false
	}
	kind, ok := timeline.ParseEventKind(strings.TrimSpace(parts[2]))
	if !ok {
		return nil, false
	}

	return &store.UsageEvent{
		Package:   pkg,
		Kind:      string(kind),
		Timestamp: time.Unix(0, ts),
	}, true
}

// Pending returns how many bytes of the log have not been ingested yet.
// A log shorter than the stored offset counts as fully pending, matching
// the reset ProcessEventLog performs.
func (el EventLog) Pending() (int64, error) {
	info, err := os.Stat(el.Path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	offset, err := readOffset(el.OffsetPath)
	if err != nil {
		return 0, err
	}
	if offset > info.Size() {
		return info.Size(), nil
	}
	return info.Size() - offset, nil
}

// readOffset returns the stored byte offset, or 0 if none has been written.
func readOffset(offsetPath string) (int64, error) {
	data, err := os.ReadFile(offsetPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	offset, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse offset %q: %w", s, err)
	}
	if offset < 0 {
		return 0, nil
	}
	return offset, nil
}

// writeOffsetAtomic writes offset via a temp-file rename.
func writeOffsetAtomic(offsetPath string, offset int64) error {
	tmpPath := filepath.Join(filepath.Dir(offsetPath), ".offset.tmp")

	if err := os.WriteFile(tmpPath, []byte(strconv.FormatInt(offset, 10)), 0600); err != nil {
		return fmt.Errorf("write temp offset file: %w", err)
	}
	if err := os.Rename(tmpPath, offsetPath); err != nil {
		return fmt.Errorf("rename offset file: %w", err)
	}
	return nil
}
