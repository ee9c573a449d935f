package format

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// SummaryRow is one question/answer pair of the completion summary, grouped
// for display by the section it was asked in.
type SummaryRow struct {
	Section       string `json:"section"`
	IntegrationID string `json:"integrationID"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

// RenderSummaryTable renders the completion summary as markdown, one table
// per section in first-seen order.
func RenderSummaryTable(rows []SummaryRow) string {
	if len(rows) == 0 {
		return ""
	}

	sectionOrder := make([]string, 0)
	grouped := make(map[string][]SummaryRow)
	for _, row := range rows {
		if _, seen := grouped[row.Section]; !seen {
			sectionOrder = append(sectionOrder, row.Section)
		}
		grouped[row.Section] = append(grouped[row.Section], row)
	}

	var buf strings.Builder
	for _, section := range sectionOrder {
		buf.WriteString("## ")
		buf.WriteString(section)
		buf.WriteString("\n")
		table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
		table.Header("Question", "Answer")
		for _, row := range grouped[section] {
			_ = table.Append(row.Question, row.Answer)
		}
		_ = table.Render()
		buf.WriteString("\n")
	}
	return buf.String()
}

// MarkdownTable renders an arbitrary header/rows pair as a markdown table.
func MarkdownTable(header []string, rows [][]string) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	table.Header(headerCells...)
	for _, row := range rows {
		_ = table.Append(row)
	}
	_ = table.Render()
	return buf.String()
}
