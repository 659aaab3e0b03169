package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dchernyak/cvproof/internal/biblio"
	"github.com/dchernyak/cvproof/internal/classify"
	"github.com/dchernyak/cvproof/internal/model"
	"github.com/dchernyak/cvproof/internal/section"
	"github.com/dchernyak/cvproof/internal/textex"
	"github.com/dchernyak/cvproof/internal/worker"
)

// CandidateVerifier resolves one candidate to an outcome. *biblio.Verifier
// implements it; a nil verifier switches the pipeline to LLM-only mode, where
// the collaborator's self-reported assessment is the only signal.
type CandidateVerifier interface {
	Verify(ctx context.Context, candidate model.PublicationCandidate, candidateName string) model.VerificationOutcome
}

// Pipeline runs the full flow for one CV: text extraction, section
// splitting, chunk planning, candidate extraction, deduplication,
// verification, and report assembly.
type Pipeline struct {
	cfg        *model.Config
	classifier *classify.Classifier // nil disables section detection
	orch       *Orchestrator
	verifier   CandidateVerifier // nil selects LLM-only verification
	verbose    bool
}

// New creates a pipeline over the given collaborators.
func New(cfg *model.Config, classifier *classify.Classifier, orch *Orchestrator, verifier CandidateVerifier) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		orch:       orch,
		verifier:   verifier,
		verbose:    cfg.Output.Verbose,
	}
}

// Run processes one CV file. Text extraction failure is the only fatal
// condition; it produces an error envelope because nothing downstream can
// run without text.
func (p *Pipeline) Run(ctx context.Context, path string) model.Result {
	text, err := textex.ExtractFile(path)
	if err != nil {
		return model.Result{Success: false, Error: err.Error()}
	}
	return p.RunText(ctx, text, filepath.Base(path))
}

// RunText processes already-extracted CV text.
func (p *Pipeline) RunText(ctx context.Context, text, sourceFile string) model.Result {
	var sections []section.Section
	if p.classifier != nil {
		s, err := section.NewSplitter(p.classifier).Split(text)
		if err != nil {
			// Losing sections only costs chunking quality; the planner falls
			// back to whole-document or window units.
			p.logf("section split failed, continuing without sections: %v", err)
		} else {
			sections = s
		}
	}

	plan := section.NewPlanner(p.cfg.Chunking.MaxChars).Plan(text, sections)
	p.logf("plan: mode=%s units=%d sections=%d", plan.Mode, len(plan.Units), len(sections))

	name := p.orch.DetectName(ctx, text)
	if name != "" {
		p.logf("candidate name: %s", name)
	}

	extractions := Dedupe(p.extractAll(ctx, plan, name))
	p.logf("extracted %d unique candidate(s)", len(extractions))

	entries := make([]model.ReportEntry, 0, len(extractions))
	for _, ex := range extractions {
		entries = append(entries, model.ReportEntry{
			Candidate: ex.Candidate,
			Outcome:   p.verifyOne(ctx, ex, name),
		})
	}

	report := &model.Report{
		ID:            uuid.NewString(),
		SourceFile:    sourceFile,
		CandidateName: name,
		GeneratedAt:   time.Now().UTC(),
		Entries:       entries,
		Counts:        model.Tally(entries),
	}

	return model.Result{
		Success:       true,
		CandidateName: name,
		Report:        report,
	}
}

// extractAll fans extraction groups out over a worker pool and reassembles
// the results in document order, so dedup's first-wins rule stays
// deterministic.
func (p *Pipeline) extractAll(ctx context.Context, plan section.Plan, name string) []Extraction {
	groups := p.orch.Groups(plan)
	if len(groups) == 0 {
		return nil
	}
	if len(groups) == 1 {
		return p.orch.ExtractGroup(ctx, groups[0], name)
	}

	pool := worker.NewPool(p.cfg.Concurrency.ExtractionWorkers)
	pool.Start()
	for i, group := range groups {
		pool.Submit(&extractJob{orch: p.orch, index: i, group: group, name: name})
	}

	results := pool.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].(*extractResult).index < results[j].(*extractResult).index
	})

	var extractions []Extraction
	for _, r := range results {
		extractions = append(extractions, r.(*extractResult).extractions...)
	}
	return extractions
}

func (p *Pipeline) verifyOne(ctx context.Context, ex Extraction, name string) model.VerificationOutcome {
	if p.verifier != nil {
		return p.verifier.Verify(ctx, ex.Candidate, name)
	}
	if ex.SelfReport == nil {
		return model.VerificationOutcome{
			Status: model.StatusUnableToVerify,
			Note:   "no self-reported assessment",
		}
	}
	return biblio.OutcomeFromSelfReport(
		ex.SelfReport.IsOnline,
		ex.SelfReport.HasAuthorMatch,
		ex.SelfReport.Link,
		ex.SelfReport.CitationCount,
	)
}

// extractJob is one extraction group queued on the worker pool.
type extractJob struct {
	orch  *Orchestrator
	index int
	group []section.Unit
	name  string
}

// Execute implements worker.Job.
func (j *extractJob) Execute(ctx context.Context) worker.Result {
	return &extractResult{
		index:       j.index,
		extractions: j.orch.ExtractGroup(ctx, j.group, j.name),
	}
}

type extractResult struct {
	index       int
	extractions []Extraction
}

// GetError implements worker.Result; extraction failures are absorbed per
// unit, so the job itself never fails.
func (r *extractResult) GetError() error { return nil }

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.verbose {
		fmt.Fprintf(os.Stderr, "pipeline: "+format+"\n", args...)
	}
}
