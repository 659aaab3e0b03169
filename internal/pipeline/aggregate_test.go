package pipeline

import (
	"testing"

	"github.com/dchernyak/cvproof/internal/model"
)

func titled(title, section string) Extraction {
	return Extraction{Candidate: model.PublicationCandidate{Title: title, SourceSection: section}}
}

func TestDedupe_FirstWins(t *testing.T) {
	in := []Extraction{
		titled("Deep Learning for NLP", "Journal Articles"),
		titled("Another Paper", "Journal Articles"),
		titled("Deep learning for NLP.", "Conference Papers"), // same title, different casing
		titled("DEEP-LEARNING FOR NLP", ""),                   // same title again
	}

	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 unique extractions, got %d", len(out))
	}
	if out[0].Candidate.Title != "Deep Learning for NLP" {
		t.Errorf("first occurrence must win, got %q", out[0].Candidate.Title)
	}
	if out[0].Candidate.SourceSection != "Journal Articles" {
		t.Errorf("kept entry lost its section: %q", out[0].Candidate.SourceSection)
	}
	if out[1].Candidate.Title != "Another Paper" {
		t.Errorf("document order not preserved: %q", out[1].Candidate.Title)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []Extraction{
		titled("Paper A", ""),
		titled("paper a", ""),
		titled("Paper B", ""),
	}

	once := Dedupe(in)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Candidate.Title != twice[i].Candidate.Title {
			t.Errorf("entry %d changed on second pass", i)
		}
	}
}

func TestDedupe_Empty(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Errorf("nil input should dedupe to empty, got %d", len(out))
	}
}
