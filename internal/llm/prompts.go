package llm

import (
	"fmt"
	"strings"
)

// NameUnknown is the sentinel the candidate-name prompt asks for when no name
// can be determined.
const NameUnknown = "unknown"

// nameScanLimit bounds how much of the CV the name prompt sees; the owner's
// name is virtually always near the top.
const nameScanLimit = 2000

// BuildExtractionPrompt asks for the full publication+verification JSON shape
// for one unit of CV text. candidateName may be empty.
func BuildExtractionPrompt(text, candidateName string) string {
	who := "the CV owner"
	if candidateName != "" {
		who = candidateName
	}

	return fmt.Sprintf(`Extract every publication listed in the CV text below and assess each one.

Return ONLY a JSON object of this exact shape, with no commentary:
{
  "publications": [
    {
      "publication": {
        "title": "...",
        "authors": ["..."],
        "year": 2020,
        "venue": "...",
        "type": "journal|conference|chapter|book|preprint|report|other",
        "doi": "...",
        "source_text": "the original CV line(s) for this entry"
      },
      "verification": {
        "is_online": true,
        "has_author_match": true,
        "link": "...",
        "citation_count": 0
      }
    }
  ]
}

Rules:
- "is_online" is whether this publication demonstrably exists online.
- "has_author_match" is whether %s is listed among its authors.
- Use an empty string for unknown doi/link/venue, 0 for unknown year or citation_count.
- Do not invent publications that are not in the text.

CV text:
%s`, who, text)
}

// BuildPublicationsOnlyPrompt is the simpler fallback shape used when the
// full extraction response cannot be parsed.
func BuildPublicationsOnlyPrompt(text string) string {
	return fmt.Sprintf(`List every publication in the CV text below.

Return ONLY a JSON object of this exact shape, with no commentary:
{
  "publications": [
    {
      "publication": {
        "title": "...",
        "authors": ["..."],
        "year": 2020,
        "venue": "",
        "type": "other",
        "doi": "",
        "source_text": ""
      }
    }
  ]
}

CV text:
%s`, text)
}

// BuildNamePrompt asks for the CV owner's name as a single line of plain
// text, or the sentinel "unknown".
func BuildNamePrompt(text string) string {
	if len(text) > nameScanLimit {
		text = text[:nameScanLimit]
	}

	return fmt.Sprintf(`Whose CV is this? Answer with the person's full name only, on a single line, with no other text. If you cannot tell, answer exactly: %s

CV text:
%s`, NameUnknown, text)
}

// BuildBatchPrompt combines multiple labeled sections into one extraction
// request. Each section is delimited so the collaborator can keep entries
// attributed to their section.
func BuildBatchPrompt(headers, contents []string, candidateName string) string {
	var b strings.Builder
	for i := range contents {
		header := ""
		if i < len(headers) {
			header = headers[i]
		}
		fmt.Fprintf(&b, "=== Section: %s ===\n%s\n\n", header, contents[i])
	}
	return BuildExtractionPrompt(b.String(), candidateName)
}

// ParseNameResponse extracts the candidate name from a name-prompt response.
// Returns empty string when the collaborator could not tell.
func ParseNameResponse(raw string) string {
	line := strings.TrimSpace(raw)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	line = strings.Trim(line, `"'.`)

	if line == "" || strings.EqualFold(line, NameUnknown) {
		return ""
	}
	// A name should be a few words, not a sentence of hedging.
	if len(strings.Fields(line)) > 6 {
		return ""
	}
	return line
}
