package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/rewind/internal/store"
)

const (
	defaultPollInterval = 30 * time.Second
	// debounce coalesces the burst of write events produced while the
	// recorder appends.
	debounce = 250 * time.Millisecond
)

// Options tunes a Watcher. The zero value polls every 30 seconds and keeps
// events forever.
type Options struct {
	PollInterval time.Duration
	// Retention prunes events older than this after each ingest. Zero
	// disables pruning.
	Retention time.Duration
}

// Watcher ingests the recorder's event log into the store. It reacts to
// writes on the log via fsnotify and also polls on a ticker in case a
// notification is missed.
type Watcher struct {
	store  *store.Store
	log    EventLog
	opts   Options
	logger zerolog.Logger

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	stopErr  error
	wg       sync.WaitGroup
	ticker   *time.Ticker
}

// New creates a new Watcher instance.
func New(st *store.Store, el EventLog, opts Options, logger zerolog.Logger) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if el.Path == "" || el.OffsetPath == "" {
		return nil, fmt.Errorf("event log and offset paths are required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Watcher{
		store:  st,
		log:    el,
		opts:   opts,
		logger: logger.With().Str("component", "watcher").Logger(),
		stopCh: make(chan struct{}),
	}, nil
}

// Start processes whatever is already in the log, then begins watching.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.log.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create event log directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory so the log can be created or rotated.
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.fsw = fsw

	w.process("initial")

	w.ticker = time.NewTicker(w.opts.PollInterval)
	w.wg.Add(1)
	go w.run()

	w.logger.Info().Str("log", w.log.Path).Dur("poll", w.opts.PollInterval).Msg("watching event log")
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.log.Path) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if pending == nil {
					pending = time.After(debounce)
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		case <-pending:
			pending = nil
			w.process("write")
		case <-w.ticker.C:
			w.process("tick")
		case <-w.stopCh:
			w.process("final")
			return
		}
	}
}

// process ingests the log and applies retention. Errors are logged, not
// returned, so a bad tick never stops the watcher.
func (w *Watcher) process(trigger string) {
	n, err := ProcessEventLog(w.store, w.log, w.logger)
	if err != nil {
		w.logger.Error().Err(err).Str("trigger", trigger).Msg("event log processing failed")
		return
	}
	if n > 0 {
		w.logger.Info().Int("events", n).Str("trigger", trigger).Msg("ingested events")
	}

	if _, err := w.prune(); err != nil {
		w.logger.Error().Err(err).Msg("pruning events failed")
	}
}

// prune deletes events older than the retention period, if one is set.
func (w *Watcher) prune() (int64, error) {
	if w.opts.Retention <= 0 {
		return 0, nil
	}
	pruned, err := w.store.PruneEvents(time.Now().Add(-w.opts.Retention))
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		w.logger.Info().Int64("events", pruned).Msg("pruned old events")
	}
	return pruned, nil
}

// Drain ingests everything pending in the log without watching it, then
// applies retention. It returns the number of events ingested and pruned.
func (w *Watcher) Drain() (int, int64, error) {
	total := 0
	for {
		n, err := ProcessEventLog(w.store, w.log, w.logger)
		if err != nil {
			return total, 0, err
		}
		total += n
		if n == 0 {
			break
		}
	}
	pruned, err := w.prune()
	if err != nil {
		return total, 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return total, pruned, nil
}

// Stop halts the watcher and flushes any remaining log entries. Calls
// after the first return the first call's result.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)

		if w.ticker != nil {
			w.ticker.Stop()
		}
		w.wg.Wait()

		if w.fsw != nil {
			w.stopErr = w.fsw.Close()
		}
	})
	return w.stopErr
}
