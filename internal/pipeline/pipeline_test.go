package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dchernyak/cvproof/internal/model"
)

// fakeVerifier implements CandidateVerifier with canned outcomes by title.
type fakeVerifier struct {
	outcomes map[string]model.VerificationOutcome
}

func (f *fakeVerifier) Verify(ctx context.Context, candidate model.PublicationCandidate, candidateName string) model.VerificationOutcome {
	if outcome, ok := f.outcomes[candidate.Title]; ok {
		return outcome
	}
	return model.VerificationOutcome{Status: model.StatusUnableToVerify}
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Pacing.MinCallInterval = 0
	cfg.Pacing.TokensPerMinute = 0
	return cfg
}

func isNamePrompt(prompt string) bool {
	return strings.Contains(prompt, "Whose CV is this?")
}

func TestPipeline_Run_SearchMode(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			if isNamePrompt(prompt) {
				return "Jane Smith", nil
			}
			return `{"publications": [` +
				entryJSON("First Paper", "", "") + `,` +
				entryJSON("Second Paper", "", "") + `,` +
				entryJSON("first paper.", "", "") + // duplicate under normalization
				`]}`, nil
		},
	}

	cfg := testConfig()
	orch := newTestOrchestrator(provider, cfg.Chunking.MaxChars)
	verifier := &fakeVerifier{outcomes: map[string]model.VerificationOutcome{
		"First Paper": {Status: model.StatusVerified, HasAuthorMatch: true, MatchedAuthor: "Jane Smith"},
	}}
	p := New(cfg, nil, orch, verifier)

	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte("Jane Smith\nPublications\nFirst Paper. 2020.\nSecond Paper. 2021.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := p.Run(context.Background(), path)
	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}

	report := result.Report
	if report.CandidateName != "Jane Smith" {
		t.Errorf("candidate name = %q", report.CandidateName)
	}
	if report.ID == "" {
		t.Error("report must carry an ID")
	}
	if report.SourceFile != "cv.txt" {
		t.Errorf("source file = %q", report.SourceFile)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d", len(report.Entries))
	}
	if report.Counts.Total != 2 || report.Counts.Verified != 1 || report.Counts.UnableToVerify != 1 {
		t.Errorf("counts = %+v", report.Counts)
	}
	if report.Entries[0].Outcome.Status != model.StatusVerified {
		t.Errorf("first entry status = %s", report.Entries[0].Outcome.Status)
	}
}

func TestPipeline_Run_LLMOnlyMode(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			if isNamePrompt(prompt) {
				return "unknown", nil
			}
			return `{"publications": [
				{"publication": {"title": "Online Paper"}, "verification": {"is_online": true, "has_author_match": true, "link": "https://example.org/p1"}},
				{"publication": {"title": "Offline Paper"}, "verification": {"is_online": false, "has_author_match": false}},
				{"publication": {"title": "Unassessed Paper"}}
			]}`, nil
		},
	}

	cfg := testConfig()
	p := New(cfg, nil, newTestOrchestrator(provider, cfg.Chunking.MaxChars), nil)

	result := p.RunText(context.Background(), "short cv text", "cv.txt")
	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if result.CandidateName != "" {
		t.Errorf("unknown sentinel should leave the name empty, got %q", result.CandidateName)
	}

	byTitle := make(map[string]model.VerificationStatus)
	for _, e := range result.Report.Entries {
		byTitle[e.Candidate.Title] = e.Outcome.Status
	}
	if byTitle["Online Paper"] != model.StatusVerified {
		t.Errorf("online paper status = %s", byTitle["Online Paper"])
	}
	if byTitle["Offline Paper"] != model.StatusNotVerified {
		t.Errorf("offline paper status = %s", byTitle["Offline Paper"])
	}
	if byTitle["Unassessed Paper"] != model.StatusUnableToVerify {
		t.Errorf("unassessed paper status = %s", byTitle["Unassessed Paper"])
	}
}

func TestPipeline_Run_ExtractionFailureIsFatal(t *testing.T) {
	cfg := testConfig()
	provider := &stubProvider{respond: func(string) (string, error) { return "", nil }}
	p := New(cfg, nil, newTestOrchestrator(provider, cfg.Chunking.MaxChars), nil)

	result := p.Run(context.Background(), filepath.Join(t.TempDir(), "cv.docx"))
	if result.Success {
		t.Fatal("unsupported file type must fail the run")
	}
	if result.Error == "" {
		t.Error("error envelope must carry a message")
	}
	if result.Report != nil {
		t.Error("failed run must not produce a report")
	}
}

func TestPipeline_WindowUnitsKeepDocumentOrder(t *testing.T) {
	// Three exactly aligned windows, extracted concurrently; entries must come
	// back in document order regardless of completion order.
	segment := func(marker string) string {
		return marker + strings.Repeat("x", 45)
	}
	text := segment("MARK1") + segment("MARK2") + segment("MARK3")

	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			switch {
			case isNamePrompt(prompt):
				return "Jane Smith", nil
			case strings.Contains(prompt, "MARK1"):
				return `{"publications": [` + entryJSON("Alpha", "", "") + `]}`, nil
			case strings.Contains(prompt, "MARK2"):
				return `{"publications": [` + entryJSON("Beta", "", "") + `]}`, nil
			case strings.Contains(prompt, "MARK3"):
				return `{"publications": [` + entryJSON("Gamma", "", "") + `]}`, nil
			default:
				return `{"publications": []}`, nil
			}
		},
	}

	cfg := testConfig()
	cfg.Chunking.MaxChars = 50
	p := New(cfg, nil, newTestOrchestrator(provider, cfg.Chunking.MaxChars), &fakeVerifier{})

	result := p.RunText(context.Background(), text, "cv.txt")
	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}

	entries := result.Report.Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	for i, w := range want {
		if entries[i].Candidate.Title != w {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Candidate.Title, w)
		}
	}
}
