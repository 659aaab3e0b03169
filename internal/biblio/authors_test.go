package biblio

import "testing"

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Jane Smith", "Jane Smith", true},
		{"Jane Smith", "Smith, Jane", true},          // Order-insensitive
		{"Jane Smith", "Jane A. Smith", true},        // Extra middle initial
		{"J. Smith", "Jane Smith", true},             // Initial matches full token
		{"Jane A. Smith", "Jane Alice Smith", true},  // Initial vs middle name
		{"José García", "Jose Garcia", true},         // Accent folding
		{"JANE SMITH", "jane smith", true},           // Case folding
		{"Jane Smith", "John Smith", false},          // Different given name
		{"Jane Smith", "Jane Smithson", false},       // Different family name
		{"J. S.", "Jane Smith", false},               // Initials alone are not enough
		{"", "Jane Smith", false},
		{"Jane Smith", "", false},
	}

	for _, tt := range tests {
		if got := NamesMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("NamesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNamesMatch_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Jane Smith", "Jane A. Smith"},
		{"J. Smith", "Jane Smith"},
		{"Jane Smith", "John Doe"},
	}
	for _, p := range pairs {
		if NamesMatch(p[0], p[1]) != NamesMatch(p[1], p[0]) {
			t.Errorf("NamesMatch not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestExtractAuthors_Deduplicates(t *testing.T) {
	rec := SourceRecord{
		Authors: []SourceAuthor{
			{Given: "Jane", Family: "Smith"},
			{Name: "jane smith"},
			{Given: "Alan", Family: "Doe"},
			{},
		},
	}

	names := ExtractAuthors(rec)
	if len(names) != 2 {
		t.Fatalf("expected 2 unique authors, got %d: %v", len(names), names)
	}
	if names[0] != "Jane Smith" || names[1] != "Alan Doe" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestMatchAuthor(t *testing.T) {
	names := []string{"Alan Doe", "Jane A. Smith", "Kim Lee"}

	matched, ok := MatchAuthor("Jane Smith", names)
	if !ok {
		t.Fatal("expected a match for Jane Smith")
	}
	if matched != "Jane A. Smith" {
		t.Errorf("matched = %q, want 'Jane A. Smith'", matched)
	}

	if _, ok := MatchAuthor("Pat Unrelated", names); ok {
		t.Error("unexpected match for unrelated name")
	}
	if _, ok := MatchAuthor("", names); ok {
		t.Error("empty candidate name must not match")
	}
}
