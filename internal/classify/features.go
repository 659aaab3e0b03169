package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// Feature names used as keys in the classifier's weight map. The trained
// model file refers to features by these names, so they are part of the
// persistence contract.
const (
	FeatureAllUpper    = "all_upper"
	FeatureYear        = "contains_year"
	FeatureShortLine   = "short_line"
	FeatureFewWords    = "few_words"
	FeatureHasColon    = "has_colon"
	FeatureUpperHalf   = "upper_half"
	FeatureKnownHeader = "known_header"
)

// FeatureNames lists every feature in a stable order.
var FeatureNames = []string{
	FeatureAllUpper,
	FeatureYear,
	FeatureShortLine,
	FeatureFewWords,
	FeatureHasColon,
	FeatureUpperHalf,
	FeatureKnownHeader,
}

const (
	shortLineMaxChars = 60
	fewWordsMax       = 6
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// LineFeatures is the fixed feature vector derived from one line of CV text
// and its position in the document. Created fresh per classification call,
// never persisted.
type LineFeatures struct {
	Text          string
	AllUpperCase  bool
	ContainsYear  bool
	Length        int
	PositionRatio float64 // 0 at top of document, 1 at bottom
	WordCount     int
	HasColon      bool
	KnownHeader   bool
}

// FeatureExtractor turns a line plus its position into a LineFeatures vector.
// The known-header test depends on the reference header list, so the
// extractor is constructed from a HeaderList.
type FeatureExtractor struct {
	headers *HeaderList
}

// NewFeatureExtractor creates an extractor backed by the given header list.
func NewFeatureExtractor(headers *HeaderList) *FeatureExtractor {
	if headers == nil {
		headers = NewHeaderList(nil)
	}
	return &FeatureExtractor{headers: headers}
}

// Extract computes the feature vector for a line at lineIndex out of
// totalLines.
func (e *FeatureExtractor) Extract(line string, lineIndex, totalLines int) LineFeatures {
	trimmed := strings.TrimSpace(line)

	ratio := 0.0
	if totalLines > 1 {
		ratio = float64(lineIndex) / float64(totalLines-1)
	}

	return LineFeatures{
		Text:          trimmed,
		AllUpperCase:  isAllUpper(trimmed),
		ContainsYear:  yearPattern.MatchString(trimmed),
		Length:        len(trimmed),
		PositionRatio: ratio,
		WordCount:     len(strings.Fields(trimmed)),
		HasColon:      strings.Contains(trimmed, ":"),
		KnownHeader:   e.headers.Contains(trimmed),
	}
}

// Active reports which named features fire for this vector. Numeric fields
// are binarized here so the classifier can stay a flat name→weight map.
func (f LineFeatures) Active() map[string]bool {
	return map[string]bool{
		FeatureAllUpper:    f.AllUpperCase,
		FeatureYear:        f.ContainsYear,
		FeatureShortLine:   f.Length > 0 && f.Length <= shortLineMaxChars,
		FeatureFewWords:    f.WordCount > 0 && f.WordCount <= fewWordsMax,
		FeatureHasColon:    f.HasColon,
		FeatureUpperHalf:   f.PositionRatio <= 0.5,
		FeatureKnownHeader: f.KnownHeader,
	}
}

// isAllUpper reports whether the line contains at least one letter and no
// lowercase letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
