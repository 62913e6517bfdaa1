package store

import (
	"database/sql"
	"fmt"
	"time"
)

// App operations

const appColumns = `package, label, icon_path, color, scanned_at`

// InsertApp inserts or replaces an app in the database.
func (s *Store) InsertApp(app *App) error {
	query := `
		INSERT OR REPLACE INTO apps (` + appColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		app.Package,
		app.Label,
		app.IconPath,
		app.Color,
		app.ScannedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert app %s: %w", app.Package, classify(err))
	}

	return nil
}

// ReplaceApps swaps the whole app table for apps in a single transaction.
func (s *Store) ReplaceApps(apps []*App) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM apps`); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("failed to clear apps: %w", classify(err))
	}

	stmt, err := tx.Prepare(`INSERT INTO apps (` + appColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, app := range apps {
		if _, err := stmt.Exec(
			app.Package,
			app.Label,
			app.IconPath,
			app.Color,
			app.ScannedAt.UTC().Format(time.RFC3339),
		); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("failed to insert app %s: %w", app.Package, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit apps: %w", err)
	}
	return nil
}

// GetApp retrieves an app by package identifier.
func (s *Store) GetApp(pkg string) (*App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE package = ?`

	app, err := scanApp(s.db.QueryRow(query, pkg))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("app %s not found", pkg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app %s: %w", pkg, classify(err))
	}

	return app, nil
}

// ListApps returns all apps ordered by package identifier.
func (s *Store) ListApps() ([]*App, error) {
	query := `SELECT ` + appColumns + ` FROM apps ORDER BY package`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", classify(err))
	}
	defer rows.Close()

	var apps []*App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app row: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}

	return apps, nil
}

// DeleteApp removes an app from the database.
func (s *Store) DeleteApp(pkg string) error {
	result, err := s.db.Exec(`DELETE FROM apps WHERE package = ?`, pkg)
	if err != nil {
		return fmt.Errorf("failed to delete app %s: %w", pkg, classify(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("app %s not found", pkg)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(row rowScanner) (*App, error) {
	var app App
	var iconPath sql.NullString
	var scannedAt string

	if err := row.Scan(
		&app.Package,
		&app.Label,
		&iconPath,
		&app.Color,
		&scannedAt,
	); err != nil {
		return nil, err
	}
	app.IconPath = iconPath.String

	t, err := time.Parse(time.RFC3339, scannedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scanned_at for %s: %w", app.Package, err)
	}
	app.ScannedAt = t

	return &app, nil
}

// Usage event operations

// InsertUsageEvent records a single usage event.
func (s *Store) InsertUsageEvent(event *UsageEvent) error {
	query := `
		INSERT INTO usage_events (package, kind, timestamp_ns)
		VALUES (?, ?, ?)
	`

	_, err := s.db.Exec(query, event.Package, event.Kind, event.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert usage event for %s: %w", event.Package, classify(err))
	}

	return nil
}

// InsertUsageEvents batch-inserts events in a single transaction.
// Events are inserted in slice order, which is the order QueryEvents
// returns for equal timestamps.
func (s *Store) InsertUsageEvents(events []*UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO usage_events (package, kind, timestamp_ns) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("failed to prepare statement: %w", classify(err))
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(e.Package, e.Kind, e.Timestamp.UnixNano()); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("failed to insert usage event for %s: %w", e.Package, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage events: %w", err)
	}
	return nil
}

// QueryEvents returns all events with start <= timestamp <= end, oldest
// first. Events sharing a timestamp come back in insertion order.
func (s *Store) QueryEvents(start, end time.Time) ([]*UsageEvent, error) {
	query := `
		SELECT id, package, kind, timestamp_ns
		FROM usage_events
		WHERE timestamp_ns >= ? AND timestamp_ns <= ?
		ORDER BY timestamp_ns ASC, id ASC
	`

	rows, err := s.db.Query(query, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query usage events: %w", classify(err))
	}
	defer rows.Close()

	var events []*UsageEvent
	for rows.Next() {
		var event UsageEvent
		var ts int64

		if err := rows.Scan(&event.ID, &event.Package, &event.Kind, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan usage event row: %w", err)
		}
		event.Timestamp = time.Unix(0, ts)

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage events: %w", err)
	}

	return events, nil
}

// GetEventCount returns the total number of usage events recorded.
func (s *Store) GetEventCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM usage_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", classify(err))
	}
	return count, nil
}

// GetLastEventTime returns the timestamp of the most recent usage event.
// Returns nil if no events exist.
func (s *Store) GetLastEventTime() (*time.Time, error) {
	var ts sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(timestamp_ns) FROM usage_events").Scan(&ts)
	if err != nil {
		return nil, fmt.Errorf("failed to get last event time: %w", classify(err))
	}
	if !ts.Valid {
		return nil, nil
	}

	t := time.Unix(0, ts.Int64)
	return &t, nil
}

// PruneEvents deletes events older than before and returns how many were removed.
func (s *Store) PruneEvents(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM usage_events WHERE timestamp_ns < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage events: %w", classify(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
