// Package access decides whether rewind may read usage history.
package access

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrAccessDenied is returned when usage access has not been granted.
var ErrAccessDenied = errors.New("usage access not granted: run 'rewind access grant'")

// MarkerName is the file whose presence grants usage access.
const MarkerName = "access.granted"

// Gate reports whether usage access is currently granted.
type Gate interface {
	Granted() (bool, error)
}

// FileGate grants access while a marker file exists in its directory.
type FileGate struct {
	dir string
}

// NewFileGate returns a gate backed by dir/access.granted.
func NewFileGate(dir string) *FileGate {
	return &FileGate{dir: dir}
}

// Path returns the marker file path.
func (g *FileGate) Path() string {
	return filepath.Join(g.dir, MarkerName)
}

// Granted reports whether the marker file exists.
func (g *FileGate) Granted() (bool, error) {
	info, err := os.Stat(g.Path())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check access marker: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Grant creates the marker file, recording when access was given.
func (g *FileGate) Grant() error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(g.Path(), []byte(stamp), 0600); err != nil {
		return fmt.Errorf("failed to write access marker: %w", err)
	}
	return nil
}

// Revoke removes the marker file. Revoking twice is not an error.
func (g *FileGate) Revoke() error {
	if err := os.Remove(g.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove access marker: %w", err)
	}
	return nil
}

// Require returns ErrAccessDenied unless gate reports access granted.
func Require(gate Gate) error {
	ok, err := gate.Granted()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}
