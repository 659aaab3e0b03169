package biblio

import "strings"

// AuthorName renders a source author as a display name.
func AuthorName(a SourceAuthor) string {
	if a.Name != "" {
		return a.Name
	}
	return strings.TrimSpace(a.Given + " " + a.Family)
}

// ExtractAuthors returns the record's author names, deduplicated
// case-insensitively in source order.
func ExtractAuthors(rec SourceRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range rec.Authors {
		name := AuthorName(a)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// NamesMatch reports whether two person names plausibly refer to the same
// person. Comparison is order-insensitive over name tokens and tolerant of
// middle names and initials: every token of the shorter name must be
// accounted for in the longer one, with at least one full-token agreement so
// initials alone never suffice.
func NamesMatch(a, b string) bool {
	ta := nameTokens(a)
	tb := nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	// Compare the smaller token set against the larger.
	if len(ta) > len(tb) {
		ta, tb = tb, ta
	}

	used := make([]bool, len(tb))
	fullMatches := 0

	for _, tok := range ta {
		matched := false
		for j, other := range tb {
			if used[j] {
				continue
			}
			if tok == other {
				used[j] = true
				matched = true
				if len(tok) > 1 {
					fullMatches++
				}
				break
			}
			if initialMatches(tok, other) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return fullMatches >= 1
}

// MatchAuthor finds the first author in names matching the candidate name.
func MatchAuthor(candidateName string, names []string) (string, bool) {
	if strings.TrimSpace(candidateName) == "" {
		return "", false
	}
	for _, n := range names {
		if NamesMatch(candidateName, n) {
			return n, true
		}
	}
	return "", false
}

// nameTokens normalizes a name and splits it into lowercase tokens, treating
// "Last, First" comma order and dotted initials uniformly.
func nameTokens(name string) []string {
	normalized := NormalizeTitle(name) // Same fold/accent/punctuation treatment
	if normalized == "" {
		return nil
	}

	fields := strings.Fields(normalized)

	// Split run-together initials like "jk" from "J.K." being folded; after
	// NormalizeTitle "J.K. Rowling" is "j k rowling" already, so nothing more
	// is needed here beyond dropping empty tokens.
	var tokens []string
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// initialMatches reports whether one token is a single-letter initial of the
// other.
func initialMatches(a, b string) bool {
	if len(a) == 1 && len(b) > 1 {
		return b[0] == a[0]
	}
	if len(b) == 1 && len(a) > 1 {
		return a[0] == b[0]
	}
	return false
}
