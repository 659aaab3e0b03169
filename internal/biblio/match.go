package biblio

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// titleSimilarityThreshold is the minimum 0-100 similarity for a title
	// match without a DOI.
	titleSimilarityThreshold = 90

	// titleLengthRatioMin guards against high-similarity substrings: the
	// shorter normalized title must be at least this fraction of the longer.
	titleLengthRatioMin = 0.8
)

// accentStripper removes combining marks after NFD decomposition, so
// "Müller" and "Muller" normalize identically.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle case-folds, strips accents and punctuation, and collapses
// whitespace. Idempotent: normalizing a normalized title is a no-op.
func NormalizeTitle(title string) string {
	if stripped, _, err := transform.String(accentStripper, title); err == nil {
		title = stripped
	}

	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// Similarity computes a 0-100 similarity score between two titles based on
// edit distance over their normalized forms. Symmetric by construction.
func Similarity(a, b string) int {
	na := NormalizeTitle(a)
	nb := NormalizeTitle(b)

	if na == "" && nb == "" {
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	dist := levenshtein.ComputeDistance(na, nb)
	longer := len([]rune(na))
	if l := len([]rune(nb)); l > longer {
		longer = l
	}

	score := 100 - (100*dist+longer/2)/longer
	if score < 0 {
		score = 0
	}
	return score
}

// TitlesMatch applies the similarity threshold and the length-ratio guard to
// a candidate title and one source title.
func TitlesMatch(candidate, source string) bool {
	na := NormalizeTitle(candidate)
	nb := NormalizeTitle(source)
	if na == "" || nb == "" {
		return false
	}

	shorter, longer := len(na), len(nb)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if float64(shorter) < titleLengthRatioMin*float64(longer) {
		return false
	}

	return Similarity(na, nb) >= titleSimilarityThreshold
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes so equality is
// purely on the identifier.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return doi
}

// DOIsMatch reports case-insensitive DOI equality. A DOI match takes
// precedence over any title comparison.
func DOIsMatch(a, b string) bool {
	na := NormalizeDOI(a)
	nb := NormalizeDOI(b)
	return na != "" && na == nb
}

// RecordMatches reports whether a search record matches the candidate title
// and DOI: DOI equality wins outright, otherwise any of the record's titles
// must pass the title test.
func RecordMatches(candidateTitle, candidateDOI string, rec SourceRecord) bool {
	if candidateDOI != "" && DOIsMatch(candidateDOI, rec.DOI) {
		return true
	}
	for _, t := range rec.Titles {
		if TitlesMatch(candidateTitle, t) {
			return true
		}
	}
	return false
}
