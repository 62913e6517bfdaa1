// Package catalog builds the set of installed apps eligible for the timeline.
//
// The installed-application registry is read from a YAML manifest:
//
//	apps:
//	  - package: org.mozilla.firefox
//	    label: Firefox
//	    icon: /usr/share/icons/hicolor/256x256/apps/firefox.png
//	  - package: org.gnome.Shell
//	    label: GNOME Shell
//	    system: true
//
// System apps and launchers are filtered out, labels may be overridden from
// the config directory, and each remaining app gets a background color taken
// from its icon.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrManifestNotFound is returned when the manifest file does not exist.
var ErrManifestNotFound = errors.New("app manifest not found")

// Entry is one application listed in the manifest.
type Entry struct {
	Package string `yaml:"package"`
	Label   string `yaml:"label"`
	Icon    string `yaml:"icon"`
	System  bool   `yaml:"system"`
}

type manifest struct {
	Apps []Entry `yaml:"apps"`
}

// ReadManifest reads and parses the manifest at path. Relative icon paths
// are resolved against the manifest's directory.
func ReadManifest(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	entries, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range entries {
		if entries[i].Icon != "" && !filepath.IsAbs(entries[i].Icon) {
			entries[i].Icon = filepath.Join(dir, entries[i].Icon)
		}
	}
	return entries, nil
}

// ParseManifest decodes manifest YAML from r. Entries without a package
// identifier are skipped; a missing label defaults to the package.
func ParseManifest(r io.Reader) ([]Entry, error) {
	var m manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	entries := make([]Entry, 0, len(m.Apps))
	for _, e := range m.Apps {
		if e.Package == "" {
			continue
		}
		if e.Label == "" {
			e.Label = e.Package
		}
		entries = append(entries, e)
	}
	return entries, nil
}
