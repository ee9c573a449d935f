package format

import (
	"strings"
	"testing"
)

func TestRenderSummaryTableGroupsBySection(t *testing.T) {
	t.Parallel()

	rows := []SummaryRow{
		{Section: "Contact", IntegrationID: "customer_name", Question: "What is your name", Answer: "Dana"},
		{Section: "Contact", IntegrationID: "channel", Question: "How should we reach you?", Answer: "Phone"},
		{Section: "Feedback", IntegrationID: "comments", Question: "Any comments", Answer: "Not provided"},
	}

	out := RenderSummaryTable(rows)

	contactAt := strings.Index(out, "## Contact")
	feedbackAt := strings.Index(out, "## Feedback")
	if contactAt < 0 || feedbackAt < 0 {
		t.Fatalf("missing section headings in output:\n%s", out)
	}
	if contactAt > feedbackAt {
		t.Error("sections must render in first-seen order")
	}
	for _, cell := range []string{"What is your name", "Dana", "Not provided"} {
		if !strings.Contains(out, cell) {
			t.Errorf("expected output to contain %q:\n%s", cell, out)
		}
	}
}

func TestRenderSummaryTableEmpty(t *testing.T) {
	t.Parallel()
	if out := RenderSummaryTable(nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestMarkdownTable(t *testing.T) {
	t.Parallel()
	out := MarkdownTable([]string{"Metric", "Value"}, [][]string{{"Total", "3"}})
	lower := strings.ToLower(out)
	if !strings.Contains(lower, "metric") || !strings.Contains(lower, "total") {
		t.Errorf("unexpected table output:\n%s", out)
	}
	if !strings.Contains(out, "|") {
		t.Errorf("expected markdown pipes in output:\n%s", out)
	}
}
