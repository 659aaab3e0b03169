package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dchernyak/cvproof/internal/model"
)

// Renderer serializes a result for output.
type Renderer interface {
	Render(result model.Result) ([]byte, error)
}

// RendererFor picks a renderer by format name.
func RendererFor(format string, includeFooter bool) (Renderer, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return &JSONRenderer{Indent: true}, nil
	case "markdown", "md":
		return &MarkdownRenderer{IncludeFooter: includeFooter}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// JSONRenderer emits the result envelope as JSON.
type JSONRenderer struct {
	Indent bool
}

// Render implements Renderer.
func (r *JSONRenderer) Render(result model.Result) ([]byte, error) {
	if r.Indent {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}

// MarkdownRenderer emits a human-readable report.
type MarkdownRenderer struct {
	IncludeFooter bool
}

// statusLabels maps machine statuses to report wording.
var statusLabels = map[model.VerificationStatus]string{
	model.StatusVerified:                "Verified",
	model.StatusVerifiedDifferentAuthor: "Verified (different author)",
	model.StatusNotVerified:             "Not verified",
	model.StatusUnableToVerify:          "Unable to verify",
}

// Render implements Renderer.
func (r *MarkdownRenderer) Render(result model.Result) ([]byte, error) {
	var b strings.Builder

	if !result.Success {
		fmt.Fprintf(&b, "# Verification failed\n\n%s\n", result.Error)
		return []byte(b.String()), nil
	}

	report := result.Report
	title := "Publication verification report"
	if report.CandidateName != "" {
		title = fmt.Sprintf("Publication verification report: %s", report.CandidateName)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if report.SourceFile != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", report.SourceFile)
	}

	c := report.Counts
	fmt.Fprintf(&b, "**%d** publication(s): %d verified, %d verified with a different author, %d not verified, %d unable to verify.\n\n",
		c.Total, c.Verified, c.VerifiedDifferentAuthor, c.NotVerified, c.UnableToVerify)

	if len(report.Entries) > 0 {
		b.WriteString("| # | Title | Year | Status | Link |\n")
		b.WriteString("|---|-------|------|--------|------|\n")
		for i, e := range report.Entries {
			link := e.Outcome.Link
			if link != "" {
				link = fmt.Sprintf("[link](%s)", link)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				i+1,
				escapeCell(e.Candidate.Title),
				yearCell(e.Candidate.Year),
				statusLabel(e.Outcome.Status),
				link)
		}
		b.WriteString("\n")

		for i, e := range report.Entries {
			if e.Outcome.Note == "" {
				continue
			}
			fmt.Fprintf(&b, "- Entry %d: %s\n", i+1, e.Outcome.Note)
		}
	}

	if r.IncludeFooter {
		fmt.Fprintf(&b, "\n---\nGenerated %s by cvproof.\n", report.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	}

	return []byte(b.String()), nil
}

func statusLabel(s model.VerificationStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func yearCell(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("%d", year)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "\\|")
}

// WriteSummary prints the one-glance outcome for interactive runs.
func WriteSummary(w io.Writer, result model.Result) {
	if !result.Success {
		fmt.Fprintf(w, "verification failed: %s\n", result.Error)
		return
	}

	report := result.Report
	who := report.CandidateName
	if who == "" {
		who = "(name not detected)"
	}
	c := report.Counts
	fmt.Fprintf(w, "%s: %d publication(s), %d verified, %d different author, %d not verified, %d unable to verify\n",
		who, c.Total, c.Verified, c.VerifiedDifferentAuthor, c.NotVerified, c.UnableToVerify)
}
