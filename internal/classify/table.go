// Package classify maps an average strip colour to the nearest entry of a reference table.
package classify

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/stripscan/internal/colour"
)

// Reference is one known strip colour and the label it stands for.
type Reference struct {
	Colour colour.RGB `json:"colour"`
	Label  string     `json:"label"`
}

// ReferenceTable is an ordered, immutable set of reference colours.
// Order matters: when two entries are equally close the earlier one wins.
type ReferenceTable struct {
	name          string
	entries       []Reference
	notFoundLabel string
	hazardNotice  string
	hazardReason  string
}

// TableEntry is a reference entry as written by hand, with a hex colour code.
type TableEntry struct {
	Hex   string `yaml:"hex" json:"hex"`
	Label string `yaml:"label" json:"label"`
}

// TableFile is the on-disk YAML layout of a reference table.
type TableFile struct {
	Name     string       `yaml:"name"`
	NotFound string       `yaml:"not_found"`
	Hazard   string       `yaml:"hazard,omitempty"`
	Reason   string       `yaml:"hazard_reason,omitempty"`
	Entries  []TableEntry `yaml:"entries"`
}

// NewReferenceTable builds a table from hex-coded entries, preserving their order.
// Duplicate colour codes and empty labels are rejected.
func NewReferenceTable(name, notFoundLabel string, entries []TableEntry) (*ReferenceTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: reference table %q has no entries", colour.ErrInvalidInput, name)
	}
	if strings.TrimSpace(notFoundLabel) == "" {
		return nil, fmt.Errorf("%w: reference table %q needs a not-found label", colour.ErrInvalidInput, name)
	}

	seen := make(map[colour.RGB]int, len(entries))
	refs := make([]Reference, 0, len(entries))
	for i, e := range entries {
		c, err := colour.ParseHex(e.Hex)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if strings.TrimSpace(e.Label) == "" {
			return nil, fmt.Errorf("%w: entry %d (%s) has an empty label", colour.ErrInvalidInput, i, e.Hex)
		}
		if prev, ok := seen[c]; ok {
			return nil, fmt.Errorf("%w: entry %d duplicates colour %s from entry %d", colour.ErrInvalidInput, i, c.Hex(), prev)
		}
		seen[c] = i
		refs = append(refs, Reference{Colour: c, Label: e.Label})
	}

	return &ReferenceTable{
		name:          name,
		entries:       refs,
		notFoundLabel: notFoundLabel,
	}, nil
}

// LoadTable reads a reference table from a YAML file.
func LoadTable(path string) (*ReferenceTable, error) {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified table path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read reference table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML reference table.
func ParseTable(data []byte) (*ReferenceTable, error) {
	var f TableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse reference table: %v", colour.ErrInvalidInput, err)
	}
	t, err := NewReferenceTable(f.Name, f.NotFound, f.Entries)
	if err != nil {
		return nil, err
	}
	return t.WithHazardNotice(f.Hazard, f.Reason), nil
}

// Name returns the table's descriptive name.
func (t *ReferenceTable) Name() string {
	return t.name
}

// Len returns the number of entries.
func (t *ReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in table order.
func (t *ReferenceTable) Entries() []Reference {
	return slices.Clone(t.entries)
}

// NotFoundLabel is reported when no entry is within the threshold.
func (t *ReferenceTable) NotFoundLabel() string {
	return t.notFoundLabel
}

// WithHazardNotice returns a copy of t that shows notice, followed by reason,
// alongside any match. Either may be empty.
func (t *ReferenceTable) WithHazardNotice(notice, reason string) *ReferenceTable {
	c := *t
	c.entries = slices.Clone(t.entries)
	c.hazardNotice = notice
	c.hazardReason = reason
	return &c
}

// HazardNotice is the warning headline shown with a matched reading; empty if the table has none.
func (t *ReferenceTable) HazardNotice() string {
	return t.hazardNotice
}

// HazardReason is the line explaining the warning.
func (t *ReferenceTable) HazardReason() string {
	return t.hazardReason
}

// IsReferenceLabel reports whether label belongs to one of the table's entries.
func (t *ReferenceTable) IsReferenceLabel(label string) bool {
	return slices.ContainsFunc(t.entries, func(r Reference) bool {
		return r.Label == label
	})
}

// File returns the table in its YAML file layout.
func (t *ReferenceTable) File() TableFile {
	f := TableFile{Name: t.name, NotFound: t.notFoundLabel, Hazard: t.hazardNotice, Reason: t.hazardReason}
	for _, r := range t.entries {
		f.Entries = append(f.Entries, TableEntry{Hex: r.Colour.Hex(), Label: r.Label})
	}
	return f
}
