package textex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/suffix. Suffix excludes characters that terminate a
// DOI in running text.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// PDFExtractor extracts plain text from PDF CVs page by page.
type PDFExtractor struct{}

// Extract pulls text from every page. Pages that fail to decode are skipped;
// a CV with one broken page is still mostly usable.
func (e *PDFExtractor) Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var builder strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	if builder.Len() == 0 {
		return "", fmt.Errorf("no extractable text in %s", path)
	}

	return builder.String(), nil
}

// FindDOIs harvests DOI strings from raw text, cleaned of trailing
// punctuation and deduplicated in order of first appearance.
func FindDOIs(text string) []string {
	matches := doiPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var dois []string
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:)")
		key := strings.ToLower(m)
		if m == "" || seen[key] {
			continue
		}
		seen[key] = true
		dois = append(dois, m)
	}
	return dois
}
