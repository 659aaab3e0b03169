package pipeline

import "github.com/dchernyak/cvproof/internal/biblio"

// Dedupe removes candidates whose normalized titles collide, keeping the
// first occurrence. Chunked extraction sees publications twice whenever a
// section window overlaps a batch, and CVs themselves repeat entries across
// sections. First-wins keeps document order and makes the pass idempotent.
func Dedupe(extractions []Extraction) []Extraction {
	seen := make(map[string]bool, len(extractions))
	out := extractions[:0:0]

	for _, ex := range extractions {
		key := biblio.NormalizeTitle(ex.Candidate.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ex)
	}
	return out
}
