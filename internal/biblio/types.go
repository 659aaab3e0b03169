// Package biblio matches publication candidates against bibliographic search
// results and decides the verification outcome for each one.
package biblio

import "context"

// SourceAuthor is one author as reported by a bibliographic source.
type SourceAuthor struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
	Name   string `json:"name,omitempty"` // Full name when the source has no given/family split
	ORCID  string `json:"orcid,omitempty"`
}

// SourceRecord is one bibliographic search hit.
type SourceRecord struct {
	DOI           string         `json:"doi,omitempty"`
	Titles        []string       `json:"titles"`
	Authors       []SourceAuthor `json:"authors,omitempty"`
	URL           string         `json:"url,omitempty"`
	Year          int            `json:"year,omitempty"`
	CitationCount int            `json:"citation_count"`
}

// SearchService is the contract the verifier needs from a bibliographic
// search source.
type SearchService interface {
	Search(ctx context.Context, title string, maxResults int) ([]SourceRecord, error)
}
