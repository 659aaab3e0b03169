package llm

import (
	"strings"
	"testing"
)

func TestRecovery_CleanResponse(t *testing.T) {
	parser := NewRecoveryParser(false)

	raw := `{
		"publications": [
			{
				"publication": {
					"title": "Deep Learning for Everything",
					"authors": ["Jane Smith", "Alan Doe"],
					"year": 2020,
					"venue": "Journal of Examples",
					"type": "journal",
					"doi": "10.1234/jex.2020.1",
					"source_text": "Smith, J. and Doe, A. (2020)..."
				},
				"verification": {
					"is_online": true,
					"has_author_match": true,
					"link": "https://doi.org/10.1234/jex.2020.1",
					"citation_count": 42
				}
			}
		]
	}`

	entries, ok := parser.Parse(raw)
	if !ok {
		t.Fatal("clean response must report a successful parse")
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Publication.Title != "Deep Learning for Everything" {
		t.Errorf("title = %q", e.Publication.Title)
	}
	if int(e.Publication.Year) != 2020 {
		t.Errorf("year = %d", e.Publication.Year)
	}
	if e.Verification == nil || !e.Verification.IsOnline || e.Verification.CitationCount != 42 {
		t.Errorf("verification not parsed: %+v", e.Verification)
	}
}

func TestRecovery_FencedAndProse(t *testing.T) {
	parser := NewRecoveryParser(false)

	raw := "Here is the extracted data you asked for:\n```json\n" +
		`{"publications": [{"publication": {"title": "A Paper", "authors": ["J. Smith"], "year": "2019"}}]}` +
		"\n```\nLet me know if you need anything else!"

	entries, _ := parser.Parse(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Publication.Title != "A Paper" {
		t.Errorf("title = %q", entries[0].Publication.Title)
	}
	if int(entries[0].Publication.Year) != 2019 {
		t.Errorf("quoted year should parse, got %d", entries[0].Publication.Year)
	}
}

func TestRecovery_TrailingCommas(t *testing.T) {
	parser := NewRecoveryParser(false)

	raw := `{"publications": [
		{"publication": {"title": "First", "authors": ["A"],}},
		{"publication": {"title": "Second", "authors": ["B"],},},
	]}`

	entries, _ := parser.Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestRecovery_TruncatedMidArray(t *testing.T) {
	parser := NewRecoveryParser(false)

	// Two complete objects, then truncation mid-third. Exactly the two
	// complete ones must come back; nothing fabricated.
	raw := `{"publications": [
		{"publication": {"title": "Complete One", "authors": ["A"], "year": 2018}, "verification": {"is_online": true, "has_author_match": false, "link": "", "citation_count": 3}},
		{"publication": {"title": "Complete Two", "authors": ["B"], "year": 2019}, "verification": {"is_online": false, "has_author_match": false, "link": "", "citation_count": 0}},
		{"publication": {"title": "Cut Off Mid`

	entries, _ := parser.Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 recovered entries, got %d", len(entries))
	}
	if entries[0].Publication.Title != "Complete One" || entries[1].Publication.Title != "Complete Two" {
		t.Errorf("wrong entries recovered: %q, %q", entries[0].Publication.Title, entries[1].Publication.Title)
	}
	if entries[0].Verification == nil || !entries[0].Verification.IsOnline {
		t.Error("first entry's verification lost in recovery")
	}
	for _, e := range entries {
		if strings.Contains(e.Publication.Title, "Cut Off") {
			t.Error("truncated object must not be recovered")
		}
	}
}

func TestRecovery_LooseTier(t *testing.T) {
	parser := NewRecoveryParser(false)

	// Broken beyond object recovery: no publication-keyed objects balance,
	// but title/authors pairs survive.
	raw := `The model hiccuped: "title": "Orphaned Paper", "authors": ["X. Yz", "Q. Wert"], then
	some prose, and "title": "Second Orphan" with no author list`

	entries, _ := parser.Parse(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 loose entries, got %d", len(entries))
	}
	if entries[0].Publication.Title != "Orphaned Paper" {
		t.Errorf("title = %q", entries[0].Publication.Title)
	}
	if len(entries[0].Publication.Authors) != 2 {
		t.Errorf("authors = %v", entries[0].Publication.Authors)
	}
	if int(entries[0].Publication.Year) != 0 {
		t.Error("loose-tier entries must have unknown year")
	}
	if entries[1].Publication.Title != "Second Orphan" {
		t.Errorf("second title = %q", entries[1].Publication.Title)
	}
	if len(entries[1].Publication.Authors) != 0 {
		t.Errorf("second entry should have no authors, got %v", entries[1].Publication.Authors)
	}
}

func TestRecovery_GarbageYieldsEmpty(t *testing.T) {
	parser := NewRecoveryParser(false)

	for _, raw := range []string{
		"",
		"I could not find any publications in this text.",
		"{}",
		"null",
		"[1, 2, 3]",
	} {
		entries, ok := parser.Parse(raw)
		if ok {
			t.Errorf("garbage %q must not report a successful parse", raw)
		}
		if len(entries) != 0 {
			t.Errorf("garbage %q produced %d entries", raw, len(entries))
		}
	}
}

func TestRecovery_EmptyPublicationsList(t *testing.T) {
	parser := NewRecoveryParser(false)

	entries, ok := parser.Parse(`{"publications": []}`)
	if !ok {
		t.Error("an empty publication list is a successful parse, not a failure")
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestRecovery_DropsUntitledEntries(t *testing.T) {
	parser := NewRecoveryParser(false)

	raw := `{"publications": [
		{"publication": {"title": "", "authors": ["A"]}},
		{"publication": {"title": "Kept", "authors": []}}
	]}`

	entries, _ := parser.Parse(raw)
	if len(entries) != 1 || entries[0].Publication.Title != "Kept" {
		t.Errorf("expected only the titled entry, got %+v", entries)
	}
}

func TestParseNameResponse(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Jane Q. Researcher", "Jane Q. Researcher"},
		{"  Jane Q. Researcher  \nExtra explanation here", "Jane Q. Researcher"},
		{`"Jane Smith"`, "Jane Smith"},
		{"unknown", ""},
		{"Unknown", ""},
		{"", ""},
		{"I am sorry but I cannot determine whose CV this is from the text", ""},
	}

	for _, tt := range tests {
		if got := ParseNameResponse(tt.raw); got != tt.want {
			t.Errorf("ParseNameResponse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
