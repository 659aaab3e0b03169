package section

// DefaultMaxChars is the document size above which processing must be split
// into bounded units. The value is empirical: single requests beyond this
// routinely truncate the collaborator's output.
const DefaultMaxChars = 15000

// Mode describes how a plan's units were produced.
type Mode string

const (
	// ModeWhole processes the entire document as one unit.
	ModeWhole Mode = "whole"
	// ModeSections processes each detected section as its own unit; units may
	// be batched into a single request first.
	ModeSections Mode = "sections"
	// ModeWindows slices raw text into consecutive fixed-size windows.
	ModeWindows Mode = "windows"
)

// Unit is one bounded piece of work for the extraction collaborator.
type Unit struct {
	Header string // Section header, empty for whole-document and window units
	Text   string
}

// Plan is the partitioning decision for one document.
type Plan struct {
	Mode  Mode
	Units []Unit
}

// Planner decides how to partition a document.
type Planner struct {
	maxChars int
}

// NewPlanner creates a planner with the given unit size bound; zero or
// negative falls back to DefaultMaxChars.
func NewPlanner(maxChars int) *Planner {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Planner{maxChars: maxChars}
}

// Plan partitions the document. Small documents become a single unit.
// Oversized documents use the detected sections when available, since
// sections are naturally bounded and keep semantic boundaries; with no usable
// sections the raw text is sliced into consecutive non-overlapping windows.
func (p *Planner) Plan(text string, sections []Section) Plan {
	if len(text) <= p.maxChars {
		return Plan{
			Mode:  ModeWhole,
			Units: []Unit{{Text: text}},
		}
	}

	if len(sections) > 0 {
		units := make([]Unit, 0, len(sections))
		for _, s := range sections {
			units = append(units, Unit{Header: s.Header, Text: s.Content})
		}
		return Plan{Mode: ModeSections, Units: units}
	}

	var units []Unit
	for start := 0; start < len(text); start += p.maxChars {
		end := start + p.maxChars
		if end > len(text) {
			end = len(text)
		}
		units = append(units, Unit{Text: text[start:end]})
	}
	return Plan{Mode: ModeWindows, Units: units}
}
