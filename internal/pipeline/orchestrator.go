// Package pipeline wires extraction, verification, and reporting into the
// end-to-end CV run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dchernyak/cvproof/internal/llm"
	"github.com/dchernyak/cvproof/internal/model"
	"github.com/dchernyak/cvproof/internal/section"
	"github.com/dchernyak/cvproof/internal/textex"
	"github.com/dchernyak/cvproof/internal/worker"
)

// Extraction is one candidate together with the collaborator's self-reported
// assessment, which only matters in LLM-only verification mode.
type Extraction struct {
	Candidate  model.PublicationCandidate
	SelfReport *llm.Verification
}

// Orchestrator drives the generative-text collaborator: one paced call per
// unit of CV text, recovery parsing of whatever comes back, and a
// simpler-shape retry when a response yields nothing.
type Orchestrator struct {
	provider llm.Provider
	parser   *llm.RecoveryParser
	pacer    *worker.Pacer
	cfg      model.LLMConfig
	maxChars int
	verbose  bool
}

// NewOrchestrator creates an orchestrator. maxChars bounds how many section
// units are batched into a single request.
func NewOrchestrator(provider llm.Provider, pacer *worker.Pacer, cfg model.LLMConfig, maxChars int, verbose bool) *Orchestrator {
	if maxChars <= 0 {
		maxChars = section.DefaultMaxChars
	}
	return &Orchestrator{
		provider: provider,
		parser:   llm.NewRecoveryParser(verbose),
		pacer:    pacer,
		cfg:      cfg,
		maxChars: maxChars,
		verbose:  verbose,
	}
}

// DetectName asks whose CV this is. Failure is not an error: a report without
// a candidate name is still useful, it just cannot distinguish
// verified-different-author from verified.
func (o *Orchestrator) DetectName(ctx context.Context, text string) string {
	raw, err := o.complete(ctx, llm.BuildNamePrompt(text))
	if err != nil {
		o.logf("name detection failed: %v", err)
		return ""
	}
	return llm.ParseNameResponse(raw)
}

// Groups turns a plan into batches of units, each batch destined for one
// request. Section units are packed greedily up to the size bound; whole and
// window units go one per request.
func (o *Orchestrator) Groups(plan section.Plan) [][]section.Unit {
	if plan.Mode == section.ModeSections {
		return batchUnits(plan.Units, o.maxChars)
	}
	groups := make([][]section.Unit, len(plan.Units))
	for i, u := range plan.Units {
		groups[i] = []section.Unit{u}
	}
	return groups
}

// ExtractGroup extracts candidates from one batch of units. Never returns an
// error: a failed call or unparseable response for one unit loses that unit's
// candidates, not the CV. A multi-unit batch whose response cannot be parsed
// is retried unit by unit before giving up.
func (o *Orchestrator) ExtractGroup(ctx context.Context, group []section.Unit, candidateName string) []Extraction {
	if len(group) == 0 {
		return nil
	}

	if len(group) > 1 {
		if extractions, ok := o.extractBatch(ctx, group, candidateName); ok {
			return extractions
		}
		o.logf("batch of %d sections unrecoverable, retrying per section", len(group))
	}

	var extractions []Extraction
	for _, unit := range group {
		ex, err := o.extractUnit(ctx, unit, candidateName)
		if err != nil {
			o.logf("unit %q skipped: %v", unit.Header, err)
			continue
		}
		extractions = append(extractions, ex...)
	}
	return extractions
}

// extractBatch sends several labeled sections in one request. Entries lose
// per-section attribution, which is the price of the saved calls. The bool
// reports whether the response parsed; a clean response with no publications
// is accepted as final rather than retried.
func (o *Orchestrator) extractBatch(ctx context.Context, group []section.Unit, candidateName string) ([]Extraction, bool) {
	headers := make([]string, len(group))
	contents := make([]string, len(group))
	for i, u := range group {
		headers[i] = u.Header
		contents[i] = u.Text
	}

	raw, err := o.complete(ctx, llm.BuildBatchPrompt(headers, contents, candidateName))
	if err != nil {
		o.logf("batch request failed: %v", err)
		return nil, false
	}

	entries, ok := o.parser.Parse(raw)
	if !ok {
		return nil, false
	}
	return toExtractions(entries, ""), true
}

// extractUnit runs the full extraction prompt for one unit, falling back to
// the simpler publications-only shape only when the response cannot be
// parsed. A well-formed empty publication list is a real answer — sections
// like "Education" often contain none — and costs no second call.
func (o *Orchestrator) extractUnit(ctx context.Context, unit section.Unit, candidateName string) ([]Extraction, error) {
	raw, err := o.complete(ctx, llm.BuildExtractionPrompt(unit.Text, candidateName))
	if err != nil {
		return nil, err
	}

	entries, ok := o.parser.Parse(raw)
	if !ok {
		raw, err = o.complete(ctx, llm.BuildPublicationsOnlyPrompt(unit.Text))
		if err != nil {
			return nil, err
		}
		entries, _ = o.parser.Parse(raw)
	}

	return toExtractions(entries, unit.Header), nil
}

func (o *Orchestrator) complete(ctx context.Context, prompt string) (string, error) {
	if err := o.pacer.Wait(ctx, worker.EstimateTokens(prompt)); err != nil {
		return "", err
	}
	return o.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})
}

// batchUnits packs consecutive units into groups whose combined text stays
// under maxChars. An oversized single unit becomes its own group.
func batchUnits(units []section.Unit, maxChars int) [][]section.Unit {
	var groups [][]section.Unit
	var current []section.Unit
	size := 0

	for _, u := range units {
		if len(current) > 0 && size+len(u.Text) > maxChars {
			groups = append(groups, current)
			current = nil
			size = 0
		}
		current = append(current, u)
		size += len(u.Text)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// toExtractions maps wire entries to candidates, scanning source text for a
// DOI when the collaborator did not report one.
func toExtractions(entries []llm.Entry, sectionHeader string) []Extraction {
	extractions := make([]Extraction, 0, len(entries))
	for _, e := range entries {
		cand := model.PublicationCandidate{
			Title:         strings.TrimSpace(e.Publication.Title),
			Authors:       e.Publication.Authors,
			Year:          int(e.Publication.Year),
			Venue:         e.Publication.Venue,
			Type:          e.Publication.Type,
			DOI:           e.Publication.DOI,
			FullText:      e.Publication.SourceText,
			SourceSection: sectionHeader,
		}
		if cand.DOI == "" && cand.FullText != "" {
			if dois := textex.FindDOIs(cand.FullText); len(dois) > 0 {
				cand.DOI = dois[0]
			}
		}
		extractions = append(extractions, Extraction{
			Candidate:  cand,
			SelfReport: e.Verification,
		})
	}
	return extractions
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.verbose {
		fmt.Fprintf(os.Stderr, "extract: "+format+"\n", args...)
	}
}
