package model

// PublicationCandidate is an unverified publication claim extracted from a CV.
// Candidates are immutable after creation; verification results are attached
// alongside them in a ReportEntry, never merged back in.
type PublicationCandidate struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Year          int      `json:"year,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Type          string   `json:"type,omitempty"`            // journal, conference, chapter, preprint...
	DOI           string   `json:"doi,omitempty"`
	FullText      string   `json:"full_text,omitempty"`       // Original source text from the CV
	SourceSection string   `json:"source_section,omitempty"`  // Header of the section it came from
}

// VerificationStatus is the three-way (plus not-found) outcome of verifying
// one publication candidate.
type VerificationStatus string

const (
	// StatusVerified means a bibliographic match was found and the CV owner
	// appears in its author list.
	StatusVerified VerificationStatus = "verified"

	// StatusVerifiedDifferentAuthor means a bibliographic match was found but
	// the CV owner is not among the authors.
	StatusVerifiedDifferentAuthor VerificationStatus = "verified_different_author"

	// StatusNotVerified means the publication was reported as not existing
	// online (LLM-only verification mode).
	StatusNotVerified VerificationStatus = "not_verified"

	// StatusUnableToVerify means no search hit passed the DOI/similarity
	// tests, or the search itself failed.
	StatusUnableToVerify VerificationStatus = "unable_to_verify"
)

// VerificationOutcome holds the result of verifying a single candidate.
// Invariants: StatusVerified implies HasAuthorMatch; StatusVerifiedDifferentAuthor
// implies a match was found with HasAuthorMatch false.
type VerificationOutcome struct {
	Status         VerificationStatus `json:"status"`
	HasAuthorMatch bool               `json:"has_author_match"`
	MatchedAuthor  string             `json:"matched_author,omitempty"`
	MatchedTitle   string             `json:"matched_title,omitempty"`
	MatchedDOI     string             `json:"matched_doi,omitempty"`
	Link           string             `json:"link,omitempty"`
	CitationCount  int                `json:"citation_count"`
	Note           string             `json:"note,omitempty"` // e.g. search failure reason
}

// ReportEntry pairs a candidate with its verification outcome.
type ReportEntry struct {
	Candidate PublicationCandidate `json:"publication"`
	Outcome   VerificationOutcome  `json:"verification"`
}
