package catalog

import "strings"

// Filter drops system apps and anything whose label mentions "launcher"
// (case-insensitive). Order is preserved.
func Filter(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.System {
			continue
		}
		if strings.Contains(strings.ToLower(e.Label), "launcher") {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ApplyLabels replaces entry labels using overrides keyed by package.
func ApplyLabels(entries []Entry, overrides map[string]string) {
	for i := range entries {
		if label, ok := overrides[entries[i].Package]; ok {
			entries[i].Label = label
		}
	}
}
