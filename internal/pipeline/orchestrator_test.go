package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dchernyak/cvproof/internal/llm"
	"github.com/dchernyak/cvproof/internal/model"
	"github.com/dchernyak/cvproof/internal/section"
	"github.com/dchernyak/cvproof/internal/worker"
)

// stubProvider scripts completions by inspecting the prompt.
type stubProvider struct {
	respond func(prompt string) (string, error)
	prompts []string
}

func (s *stubProvider) Name() string                        { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.prompts = append(s.prompts, req.Prompt)
	return s.respond(req.Prompt)
}

func newTestOrchestrator(provider llm.Provider, maxChars int) *Orchestrator {
	return NewOrchestrator(provider, worker.NewPacer(0, 0), model.LLMConfig{MaxTokens: 1000}, maxChars, false)
}

func entryJSON(title, doi, sourceText string) string {
	return `{"publication": {"title": "` + title + `", "authors": ["Jane Smith"], "year": 2020, "doi": "` + doi + `", "source_text": "` + sourceText + `"}}`
}

func TestExtractGroup_SingleUnit(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			return `{"publications": [` +
				entryJSON("First Paper", "10.1234/first", "") + `,` +
				entryJSON("Second Paper", "", "See doi.org, 10.5678/second.") +
				`]}`, nil
		},
	}
	o := newTestOrchestrator(provider, 0)

	unit := section.Unit{Header: "Journal Articles", Text: "some section text"}
	extractions := o.ExtractGroup(context.Background(), []section.Unit{unit}, "Jane Smith")

	if len(extractions) != 2 {
		t.Fatalf("expected 2 extractions, got %d", len(extractions))
	}
	if extractions[0].Candidate.SourceSection != "Journal Articles" {
		t.Errorf("source section = %q", extractions[0].Candidate.SourceSection)
	}
	if extractions[0].Candidate.DOI != "10.1234/first" {
		t.Errorf("reported DOI lost: %q", extractions[0].Candidate.DOI)
	}
	// The second entry had no reported DOI but one in its source text.
	if extractions[1].Candidate.DOI != "10.5678/second" {
		t.Errorf("source-text DOI not recovered: %q", extractions[1].Candidate.DOI)
	}
}

func TestExtractGroup_FallsBackToSimplerPrompt(t *testing.T) {
	provider := &stubProvider{}
	provider.respond = func(prompt string) (string, error) {
		if len(provider.prompts) == 1 {
			return "I could not process this request.", nil
		}
		return `{"publications": [` + entryJSON("Recovered Paper", "", "") + `]}`, nil
	}
	o := newTestOrchestrator(provider, 0)

	extractions := o.ExtractGroup(context.Background(), []section.Unit{{Text: "cv text"}}, "")

	if len(extractions) != 1 || extractions[0].Candidate.Title != "Recovered Paper" {
		t.Fatalf("fallback extraction failed: %+v", extractions)
	}
	if len(provider.prompts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[1], "List every publication") {
		t.Error("second call should use the simpler publications-only prompt")
	}
}

func TestExtractGroup_BatchThenPerSection(t *testing.T) {
	provider := &stubProvider{}
	provider.respond = func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "=== Section:"):
			return "garbage", nil
		case strings.Contains(prompt, "first section body"):
			return `{"publications": [` + entryJSON("Paper One", "", "") + `]}`, nil
		case strings.Contains(prompt, "second section body"):
			return `{"publications": [` + entryJSON("Paper Two", "", "") + `]}`, nil
		default:
			return `{"publications": []}`, nil
		}
	}
	o := newTestOrchestrator(provider, 0)

	group := []section.Unit{
		{Header: "Journal Articles", Text: "first section body"},
		{Header: "Conference Papers", Text: "second section body"},
	}
	extractions := o.ExtractGroup(context.Background(), group, "Jane Smith")

	if len(extractions) != 2 {
		t.Fatalf("expected 2 extractions after per-section retry, got %d", len(extractions))
	}
	if extractions[0].Candidate.SourceSection != "Journal Articles" ||
		extractions[1].Candidate.SourceSection != "Conference Papers" {
		t.Error("per-section retry should preserve section attribution")
	}
}

func TestExtractGroup_CleanEmptyResponseIsFinal(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			return `{"publications": []}`, nil
		},
	}
	o := newTestOrchestrator(provider, 0)

	unit := section.Unit{Header: "Education", Text: "BSc in Computing, 2010-2014"}
	extractions := o.ExtractGroup(context.Background(), []section.Unit{unit}, "Jane Smith")

	if len(extractions) != 0 {
		t.Fatalf("expected no extractions, got %d", len(extractions))
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("a parsed empty list must not trigger the fallback prompt, got %d calls", len(provider.prompts))
	}
}

func TestExtractGroup_CleanEmptyBatchIsFinal(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			return `{"publications": []}`, nil
		},
	}
	o := newTestOrchestrator(provider, 0)

	group := []section.Unit{
		{Header: "Education", Text: "degrees"},
		{Header: "Service", Text: "committees"},
	}
	extractions := o.ExtractGroup(context.Background(), group, "Jane Smith")

	if len(extractions) != 0 {
		t.Fatalf("expected no extractions, got %d", len(extractions))
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("a parsed empty batch must not be retried per section, got %d calls", len(provider.prompts))
	}
}

func TestExtractGroup_ProviderErrorSkipsUnit(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			return "", errors.New("service unavailable")
		},
	}
	o := newTestOrchestrator(provider, 0)

	extractions := o.ExtractGroup(context.Background(), []section.Unit{{Text: "cv text"}}, "")
	if len(extractions) != 0 {
		t.Errorf("failed unit should contribute nothing, got %d extractions", len(extractions))
	}
}

func TestDetectName(t *testing.T) {
	provider := &stubProvider{
		respond: func(prompt string) (string, error) {
			return "Jane Smith\n", nil
		},
	}
	o := newTestOrchestrator(provider, 0)

	if name := o.DetectName(context.Background(), "CV of Jane Smith"); name != "Jane Smith" {
		t.Errorf("name = %q", name)
	}

	failing := newTestOrchestrator(&stubProvider{
		respond: func(prompt string) (string, error) { return "", errors.New("boom") },
	}, 0)
	if name := failing.DetectName(context.Background(), "text"); name != "" {
		t.Errorf("failed detection should return empty name, got %q", name)
	}
}

func TestGroups_SectionsBatchUnderLimit(t *testing.T) {
	o := newTestOrchestrator(&stubProvider{respond: func(string) (string, error) { return "", nil }}, 100)

	plan := section.Plan{
		Mode: section.ModeSections,
		Units: []section.Unit{
			{Header: "A", Text: strings.Repeat("a", 60)},
			{Header: "B", Text: strings.Repeat("b", 60)},
			{Header: "C", Text: strings.Repeat("c", 30)},
		},
	}

	groups := o.Groups(plan)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 1 || groups[0][0].Header != "A" {
		t.Errorf("first group = %+v", groups[0])
	}
	if len(groups[1]) != 2 {
		t.Errorf("B and C fit one group together, got %+v", groups[1])
	}
}

func TestGroups_WindowsOnePerGroup(t *testing.T) {
	o := newTestOrchestrator(&stubProvider{respond: func(string) (string, error) { return "", nil }}, 100)

	plan := section.Plan{
		Mode:  section.ModeWindows,
		Units: []section.Unit{{Text: "a"}, {Text: "b"}},
	}
	groups := o.Groups(plan)
	if len(groups) != 2 || len(groups[0]) != 1 {
		t.Errorf("window units must not be batched: %+v", groups)
	}
}
