// Package section carves a CV's raw text into header-delimited sections and
// plans how to feed oversized documents to the extraction collaborator in
// bounded units.
package section

import (
	"fmt"
	"strings"

	"github.com/dchernyak/cvproof/internal/classify"
)

// Section is a header-delimited span of document text. Boundaries run from
// the line after one detected header to the line before the next (or end of
// document).
type Section struct {
	Header  string
	Content string
	Start   int // Line index of the first content line
	End     int // Line index one past the last content line
}

// headerLine is an internal record of a detected header.
type headerLine struct {
	index       int
	text        string
	publication bool
}

// Splitter splits documents using a trained header classifier.
type Splitter struct {
	classifier *classify.Classifier
}

// NewSplitter creates a splitter backed by the given classifier.
func NewSplitter(classifier *classify.Classifier) *Splitter {
	return &Splitter{classifier: classifier}
}

// Split runs the classifier over every line and builds sections between
// consecutive detected headers. Detected headers are filtered to
// publication-relevant ones when any exist; otherwise the full header list is
// used so a CV with non-standard headers never loses all its sections.
func (s *Splitter) Split(text string) ([]Section, error) {
	lines := strings.Split(text, "\n")
	total := len(lines)

	var headers []headerLine
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		isHeader, err := s.classifier.Predict(line, i, total)
		if err != nil {
			return nil, fmt.Errorf("classify line %d: %w", i, err)
		}
		if !isHeader {
			continue
		}
		headers = append(headers, headerLine{
			index:       i,
			text:        strings.TrimSpace(line),
			publication: s.classifier.Headers().IsPublicationHeader(line),
		})
	}

	if len(headers) == 0 {
		return nil, nil
	}

	// Publication-filter policy: keep only publication headers if any were
	// found, else fall back to everything detected.
	filtered := headers[:0:0]
	for _, h := range headers {
		if h.publication {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) == 0 {
		filtered = headers
	}

	var sections []Section
	for i, h := range filtered {
		start := h.index + 1
		end := total
		if i+1 < len(filtered) {
			end = filtered[i+1].index
		}
		if start > end {
			start = end
		}

		content := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if content == "" {
			continue
		}

		sections = append(sections, Section{
			Header:  h.text,
			Content: content,
			Start:   start,
			End:     end,
		})
	}

	return sections, nil
}
