package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Publication is the wire shape of one extracted publication.
type Publication struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Year       Year     `json:"year"`
	Venue      string   `json:"venue"`
	Type       string   `json:"type"`
	DOI        string   `json:"doi"`
	SourceText string   `json:"source_text"`
}

// Verification is the collaborator's self-reported assessment of one
// publication. Only trusted in LLM-only verification mode.
type Verification struct {
	IsOnline       bool   `json:"is_online"`
	HasAuthorMatch bool   `json:"has_author_match"`
	Link           string `json:"link"`
	CitationCount  int    `json:"citation_count"`
}

// Entry pairs a publication with its optional self-reported verification.
type Entry struct {
	Publication  Publication   `json:"publication"`
	Verification *Verification `json:"verification,omitempty"`
}

// Year tolerates the number-vs-string drift generative output shows for
// years. Anything unparseable decodes to 0 rather than failing the record.
type Year int

// UnmarshalJSON accepts 2020, "2020", "2020a", null, or "".
func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	// Keep the leading digit run; years like "2020a" or "2020, in press"
	// appear in real CVs.
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		*y = 0
		return nil
	}
	*y = Year(n)
	return nil
}

type envelope struct {
	Publications []Entry `json:"publications"`
}

// RecoveryParser turns the collaborator's free-text output into structured
// entries. Recovery is tiered: direct parse of the cleaned text, then a
// balanced-brace scan for complete objects, then a loose title/authors
// pattern, then an empty result. Malformed text never produces an error; a
// bad unit must not fail the whole CV.
type RecoveryParser struct {
	Verbose bool
}

// NewRecoveryParser creates a parser.
func NewRecoveryParser(verbose bool) *RecoveryParser {
	return &RecoveryParser{Verbose: verbose}
}

var (
	fencePattern         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	looseTitlePattern    = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)+)"`)
	looseAuthorsPattern  = regexp.MustCompile(`"authors"\s*:\s*\[((?:[^\[\]"]|"(?:[^"\\]|\\.)*")*)\]`)
	quotedStringPattern  = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// Parse recovers publication entries from raw collaborator output. The
// second return distinguishes an unrecoverable response (false) from a
// well-formed one that legitimately contains no publications (true with an
// empty slice); callers retry only the former.
func (p *RecoveryParser) Parse(raw string) ([]Entry, bool) {
	if entries, ok := p.parseDirect(raw); ok {
		return entries, true
	}

	if entries := p.scanObjects(raw); len(entries) > 0 {
		p.logf("recovered %d publication object(s) from malformed response", len(entries))
		return entries, true
	}

	if entries := p.scanLoose(raw); len(entries) > 0 {
		p.logf("recovered %d minimal record(s) via loose pattern scan", len(entries))
		return entries, true
	}

	p.logf("response unrecoverable, contributing no candidates")
	return nil, false
}

// parseDirect is tier 1: strip wrapping, slice to the outermost braces,
// normalize trailing commas, and parse in one shot.
func (p *RecoveryParser) parseDirect(raw string) ([]Entry, bool) {
	clean := raw
	if m := fencePattern.FindStringSubmatch(clean); m != nil {
		clean = m[1]
	}

	start := strings.IndexByte(clean, '{')
	end := strings.LastIndexByte(clean, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	clean = clean[start : end+1]
	clean = trailingCommaPattern.ReplaceAllString(clean, "$1")

	var env envelope
	if err := json.Unmarshal([]byte(clean), &env); err == nil {
		// A parse that found no publications key proves nothing; let the
		// scan tiers look at the full text.
		if len(env.Publications) > 0 || strings.Contains(clean, `"publications"`) {
			return keepTitled(env.Publications), true
		}
		return nil, false
	}

	// The collaborator sometimes returns a bare array of entries.
	if arrStart := strings.IndexByte(clean, '['); arrStart >= 0 {
		arrEnd := strings.LastIndexByte(clean, ']')
		if arrEnd > arrStart {
			var entries []Entry
			if err := json.Unmarshal([]byte(clean[arrStart:arrEnd+1]), &entries); err == nil {
				return keepTitled(entries), true
			}
		}
	}

	return nil, false
}

// scanObjects is tier 2: walk the text for balanced objects that start with a
// "publication" key and parse each one individually. Truncated trailing
// objects simply never balance and are skipped, so nothing is fabricated.
func (p *RecoveryParser) scanObjects(raw string) []Entry {
	var entries []Entry

	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		if !startsEntryObject(raw[i:]) {
			continue
		}

		obj, ok := balancedObject(raw[i:])
		if !ok {
			continue
		}

		cleaned := trailingCommaPattern.ReplaceAllString(obj, "$1")
		var entry Entry
		if err := json.Unmarshal([]byte(cleaned), &entry); err == nil && strings.TrimSpace(entry.Publication.Title) != "" {
			entries = append(entries, entry)
			i += len(obj) - 1
		}
	}

	return entries
}

// startsEntryObject reports whether the text beginning at an opening brace
// looks like `{ "publication" ... }`.
func startsEntryObject(s string) bool {
	rest := strings.TrimLeft(s[1:], " \t\r\n")
	return strings.HasPrefix(rest, `"publication"`)
}

// balancedObject returns the balanced JSON object starting at s[0] == '{',
// tracking string literals and escapes.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// scanLoose is tier 3: pair up "title" and "authors" keys directly, building
// minimal records with unknown year and venue.
func (p *RecoveryParser) scanLoose(raw string) []Entry {
	titleMatches := looseTitlePattern.FindAllStringSubmatchIndex(raw, -1)
	if len(titleMatches) == 0 {
		return nil
	}

	var entries []Entry
	for i, m := range titleMatches {
		title := unescape(raw[m[2]:m[3]])
		if strings.TrimSpace(title) == "" {
			continue
		}

		// Authors, if present, sit between this title and the next one.
		segEnd := len(raw)
		if i+1 < len(titleMatches) {
			segEnd = titleMatches[i+1][0]
		}
		segment := raw[m[1]:segEnd]

		var authors []string
		if am := looseAuthorsPattern.FindStringSubmatch(segment); am != nil {
			for _, qm := range quotedStringPattern.FindAllStringSubmatch(am[1], -1) {
				if name := strings.TrimSpace(unescape(qm[1])); name != "" {
					authors = append(authors, name)
				}
			}
		}

		entries = append(entries, Entry{
			Publication: Publication{
				Title:   title,
				Authors: authors,
			},
		})
	}

	return entries
}

// keepTitled drops entries without a title; they carry nothing verifiable.
func keepTitled(entries []Entry) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Publication.Title) != "" {
			out = append(out, e)
		}
	}
	return out
}

func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

func (p *RecoveryParser) logf(format string, args ...interface{}) {
	if p.Verbose {
		fmt.Fprintf(os.Stderr, "recovery: "+format+"\n", args...)
	}
}
