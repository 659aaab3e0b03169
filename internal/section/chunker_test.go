package section

import (
	"strings"
	"testing"
)

func TestPlanner_SmallDocumentSingleUnit(t *testing.T) {
	planner := NewPlanner(1000)

	plan := planner.Plan("a short document", nil)

	if plan.Mode != ModeWhole {
		t.Errorf("mode = %s, want whole", plan.Mode)
	}
	if len(plan.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(plan.Units))
	}
	if plan.Units[0].Text != "a short document" {
		t.Error("whole-document unit must carry the full text")
	}
}

func TestPlanner_OversizedWithSections(t *testing.T) {
	planner := NewPlanner(100)

	text := strings.Repeat("x", 500)
	sections := []Section{
		{Header: "Journal Articles", Content: "citation one"},
		{Header: "Conference Papers", Content: "citation two"},
	}

	plan := planner.Plan(text, sections)

	if plan.Mode != ModeSections {
		t.Errorf("mode = %s, want sections", plan.Mode)
	}
	if len(plan.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(plan.Units))
	}
	if plan.Units[0].Header != "Journal Articles" || plan.Units[1].Header != "Conference Papers" {
		t.Error("section units must preserve header order")
	}
}

func TestPlanner_OversizedWithoutSectionsUsesWindows(t *testing.T) {
	planner := NewPlanner(100)

	text := strings.Repeat("a", 250)
	plan := planner.Plan(text, nil)

	if plan.Mode != ModeWindows {
		t.Errorf("mode = %s, want windows", plan.Mode)
	}
	if len(plan.Units) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(plan.Units))
	}

	// Windows are consecutive and non-overlapping: concatenation restores the
	// original text.
	var rebuilt strings.Builder
	for _, u := range plan.Units {
		rebuilt.WriteString(u.Text)
	}
	if rebuilt.String() != text {
		t.Error("windows must tile the document without gaps or overlap")
	}
	if len(plan.Units[0].Text) != 100 || len(plan.Units[2].Text) != 50 {
		t.Errorf("unexpected window sizes: %d, %d", len(plan.Units[0].Text), len(plan.Units[2].Text))
	}
}

func TestPlanner_DefaultThreshold(t *testing.T) {
	planner := NewPlanner(0)
	if planner.maxChars != DefaultMaxChars {
		t.Errorf("expected default %d, got %d", DefaultMaxChars, planner.maxChars)
	}
}
