package model

import "time"

// Counts are the aggregate tallies over a report's entries.
type Counts struct {
	Total                   int `json:"total"`
	Verified                int `json:"verified"`
	VerifiedDifferentAuthor int `json:"verified_different_author"`
	NotVerified             int `json:"not_verified"`
	UnableToVerify          int `json:"unable_to_verify"`
}

// Report is the verification report for one CV. Entries are ordered and,
// after aggregation, no two entries share a normalized title. Built once per
// CV and not mutated after return.
type Report struct {
	ID            string        `json:"id"`
	SourceFile    string        `json:"source_file,omitempty"`
	CandidateName string        `json:"candidate_name,omitempty"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Entries       []ReportEntry `json:"entries"`
	Counts        Counts        `json:"counts"`
}

// AuthorProfile is author-level metrics looked up from an external source.
// Construction is handled by a sibling of the verifier and may be absent.
type AuthorProfile struct {
	Name          string `json:"name"`
	AuthorID      string `json:"author_id,omitempty"`
	Affiliation   string `json:"affiliation,omitempty"`
	HIndex        int    `json:"h_index,omitempty"`
	CitationCount int    `json:"citation_count,omitempty"`
	PaperCount    int    `json:"paper_count,omitempty"`
}

// Result is the caller-visible envelope around a report.
type Result struct {
	Success       bool           `json:"success"`
	CandidateName string         `json:"candidate_name,omitempty"`
	AuthorProfile *AuthorProfile `json:"author_profile,omitempty"`
	Report        *Report        `json:"report,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Tally recomputes aggregate counts from the entries.
func Tally(entries []ReportEntry) Counts {
	c := Counts{Total: len(entries)}
	for _, e := range entries {
		switch e.Outcome.Status {
		case StatusVerified:
			c.Verified++
		case StatusVerifiedDifferentAuthor:
			c.VerifiedDifferentAuthor++
		case StatusNotVerified:
			c.NotVerified++
		case StatusUnableToVerify:
			c.UnableToVerify++
		}
	}
	return c
}
