package biblio

import (
	"context"
	"fmt"

	"github.com/dchernyak/cvproof/internal/model"
)

// Verifier checks publication candidates against a bibliographic search
// source. A nil search service is not supported here; LLM-only mode is
// handled by OutcomeFromSelfReport.
type Verifier struct {
	search     SearchService
	maxResults int
}

// NewVerifier creates a verifier over the given search service.
func NewVerifier(search SearchService, maxResults int) *Verifier {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Verifier{search: search, maxResults: maxResults}
}

// Verify resolves one candidate to a verification outcome. Search failures
// and non-matches both yield UnableToVerify; this method never returns an
// error because a single candidate must not abort the report.
func (v *Verifier) Verify(ctx context.Context, candidate model.PublicationCandidate, candidateName string) model.VerificationOutcome {
	records, err := v.search.Search(ctx, candidate.Title, v.maxResults)
	if err != nil {
		return model.VerificationOutcome{
			Status: model.StatusUnableToVerify,
			Note:   fmt.Sprintf("search failed: %v", err),
		}
	}

	for _, rec := range records {
		if !RecordMatches(candidate.Title, candidate.DOI, rec) {
			continue
		}
		return outcomeForMatch(rec, candidateName)
	}

	return model.VerificationOutcome{Status: model.StatusUnableToVerify}
}

// outcomeForMatch derives the three-way status from a matched record.
func outcomeForMatch(rec SourceRecord, candidateName string) model.VerificationOutcome {
	outcome := model.VerificationOutcome{
		MatchedDOI:    rec.DOI,
		Link:          rec.URL,
		CitationCount: rec.CitationCount,
	}
	if len(rec.Titles) > 0 {
		outcome.MatchedTitle = rec.Titles[0]
	}
	if outcome.Link == "" && rec.DOI != "" {
		outcome.Link = "https://doi.org/" + NormalizeDOI(rec.DOI)
	}

	authors := ExtractAuthors(rec)
	if matched, ok := MatchAuthor(candidateName, authors); ok {
		outcome.Status = model.StatusVerified
		outcome.HasAuthorMatch = true
		outcome.MatchedAuthor = matched
	} else {
		outcome.Status = model.StatusVerifiedDifferentAuthor
	}

	return outcome
}

// OutcomeFromSelfReport maps the collaborator's self-reported flags to an
// outcome for LLM-only verification mode, where no external search runs.
func OutcomeFromSelfReport(isOnline, hasAuthorMatch bool, link string, citationCount int) model.VerificationOutcome {
	outcome := model.VerificationOutcome{
		Link:          link,
		CitationCount: citationCount,
	}

	switch {
	case !isOnline:
		outcome.Status = model.StatusNotVerified
	case hasAuthorMatch:
		outcome.Status = model.StatusVerified
		outcome.HasAuthorMatch = true
	default:
		outcome.Status = model.StatusVerifiedDifferentAuthor
	}

	return outcome
}
