package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultKnownHeaders are publication-section headers confirmed across real
// CVs. The list is the precision anchor of the classifier: without it the
// known-header feature never fires and detection degrades to noise.
var defaultKnownHeaders = []string{
	"publications",
	"selected publications",
	"peer-reviewed publications",
	"refereed publications",
	"journal articles",
	"journal publications",
	"refereed journal articles",
	"conference papers",
	"conference publications",
	"conference proceedings",
	"refereed conference papers",
	"book chapters",
	"books and chapters",
	"books",
	"preprints",
	"working papers",
	"technical reports",
	"workshop papers",
	"posters and abstracts",
	"invited papers",
	"publications and presentations",
}

// HeaderList is the reference list of known publication-section headers.
// Matching is case-insensitive and exact on the trimmed line. The list is an
// independently loadable asset, deliberately separate from trained weights.
type HeaderList struct {
	set     map[string]struct{}
	ordered []string
}

// NewHeaderList builds a header list from the given entries. A nil or empty
// slice yields an empty list (callers normally want DefaultHeaderList).
func NewHeaderList(entries []string) *HeaderList {
	l := &HeaderList{set: make(map[string]struct{})}
	for _, e := range entries {
		l.Add(e)
	}
	return l
}

// DefaultHeaderList returns the built-in reference list.
func DefaultHeaderList() *HeaderList {
	return NewHeaderList(defaultKnownHeaders)
}

// LoadHeaderList reads a YAML file containing a flat list of header strings.
func LoadHeaderList(path string) (*HeaderList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read header list: %w", err)
	}

	var entries []string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse header list: %w", err)
	}

	return NewHeaderList(entries), nil
}

// Save writes the list as a YAML file.
func (l *HeaderList) Save(path string) error {
	data, err := yaml.Marshal(l.ordered)
	if err != nil {
		return fmt.Errorf("marshal header list: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write header list: %w", err)
	}
	return nil
}

// Add inserts a header, normalizing case and surrounding whitespace.
func (l *HeaderList) Add(header string) {
	key := normalizeHeader(header)
	if key == "" {
		return
	}
	if _, ok := l.set[key]; ok {
		return
	}
	l.set[key] = struct{}{}
	l.ordered = append(l.ordered, key)
}

// Contains reports whether the line exactly matches a known header,
// case-insensitively. Trailing colons are ignored so "Publications:" still
// matches.
func (l *HeaderList) Contains(line string) bool {
	_, ok := l.set[normalizeHeader(line)]
	return ok
}

// Len returns the number of known headers.
func (l *HeaderList) Len() int {
	return len(l.ordered)
}

// Entries returns the known headers in insertion order.
func (l *HeaderList) Entries() []string {
	out := make([]string, len(l.ordered))
	copy(out, l.ordered)
	return out
}

// IsPublicationHeader reports whether a line names a publication-bearing
// section: either a known-list match or a line mentioning publications
// outright.
func (l *HeaderList) IsPublicationHeader(line string) bool {
	if l.Contains(line) {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(line))
	return strings.Contains(lower, "publication")
}

func normalizeHeader(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimRight(s, ":")
	return strings.TrimSpace(s)
}
