package biblio

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deep Learning for NLP", "deep learning for nlp"},
		{"  Foo   Bar!  ", "foo bar"},
		{"Graph-Based Methods: A Survey", "graph based methods a survey"},
		{"Über die Quantenmechanik", "uber die quantenmechanik"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	titles := []string{
		"Deep Learning for Natural Language Processing",
		"Foo: Bar, and Baz (2nd edition)",
		"Évaluation des Systèmes",
		"",
	}
	for _, title := range titles {
		once := NormalizeTitle(title)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q vs %q", title, once, twice)
		}
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Deep Learning for NLP", "Deep Learning for Natural Language Processing"},
		{"Foo Bar", "foo bar!"},
		{"A completely different title", "Nothing alike here at all"},
		{"", "nonempty"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("similarity(%q, %q) = %d but reversed = %d", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_Scores(t *testing.T) {
	if got := Similarity("Foo Bar", "FOO-BAR!"); got != 100 {
		t.Errorf("case/punctuation variants should score 100, got %d", got)
	}
	if got := Similarity("Deep Learning for NLP", "Deep Learning for Natural Language Processing"); got >= 90 {
		t.Errorf("abbreviated title should score below 90, got %d", got)
	}
	if got := Similarity("", ""); got != 100 {
		t.Errorf("two empty titles score 100, got %d", got)
	}
}

func TestTitlesMatch_LengthRatioGuard(t *testing.T) {
	// One title wholly contained in another: whatever the edit similarity,
	// the 0.64 length ratio must reject it.
	if TitlesMatch("Deep Learning for NLP", "Deep Learning for Natural Language Processing") {
		t.Error("abbreviated title must not match expanded title")
	}

	if !TitlesMatch("Deep Learning for Natural Language Processing", "Deep learning for natural language processing.") {
		t.Error("trivially equivalent titles must match")
	}
}

func TestDOIsMatch(t *testing.T) {
	if !DOIsMatch("10.1/ABC", "10.1/abc") {
		t.Error("DOI comparison must be case-insensitive")
	}
	if !DOIsMatch("https://doi.org/10.1234/xyz", "doi:10.1234/XYZ") {
		t.Error("resolver prefixes must be stripped before comparison")
	}
	if DOIsMatch("", "") {
		t.Error("empty DOIs never match")
	}
	if DOIsMatch("10.1/abc", "10.1/abd") {
		t.Error("different DOIs must not match")
	}
}

func TestRecordMatches_DOIPrecedence(t *testing.T) {
	rec := SourceRecord{
		DOI:    "10.1/ABC",
		Titles: []string{"A wholly unrelated record title"},
	}

	// DOI equality accepts the match regardless of title similarity.
	if !RecordMatches("Some other candidate title entirely", "10.1/abc", rec) {
		t.Error("DOI match must take precedence over title similarity")
	}

	// Without the DOI, the dissimilar title rejects it.
	if RecordMatches("Some other candidate title entirely", "", rec) {
		t.Error("dissimilar title without DOI must not match")
	}
}
