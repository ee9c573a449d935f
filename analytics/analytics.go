// Package analytics aggregates completed and abandoned sessions into the
// operator-facing usage statistics.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/doronro/call-vu-management-studio/format"
	"github.com/doronro/call-vu-management-studio/session"
)

// Report is the aggregate view over a set of sessions.
type Report struct {
	TotalSessions   int
	Completed       int
	CompletionRate  float64 // percent, 0-100
	AverageDuration time.Duration
	ModeBreakdown   map[session.Mode]int
	Ratings         RatingAverages
}

// RatingAverages averages the post-completion feedback over the sessions
// that submitted any.
type RatingAverages struct {
	Rated             int
	OverallExperience float64
	EaseOfUse         float64
	Accuracy          float64
}

// UsageRow counts sessions per process.
type UsageRow struct {
	ProcessID   string
	ProcessName string
	Sessions    int
	Completed   int
}

// Stats computes the aggregate report. Sessions without an end time
// contribute to counts but not to the duration average.
func Stats(sessions []session.Session) Report {
	report := Report{
		TotalSessions: len(sessions),
		ModeBreakdown: map[session.Mode]int{},
	}
	var totalDuration time.Duration
	var timed int
	var ratingSums [3]int

	for i := range sessions {
		s := &sessions[i]
		report.ModeBreakdown[s.Mode]++
		if s.Completed {
			report.Completed++
		}
		if d := s.Duration(); d > 0 {
			totalDuration += d
			timed++
		}
		if s.Ratings != nil {
			report.Ratings.Rated++
			ratingSums[0] += s.Ratings.OverallExperience
			ratingSums[1] += s.Ratings.EaseOfUse
			ratingSums[2] += s.Ratings.Accuracy
		}
	}

	if report.TotalSessions > 0 {
		report.CompletionRate = float64(report.Completed) / float64(report.TotalSessions) * 100
	}
	if timed > 0 {
		report.AverageDuration = totalDuration / time.Duration(timed)
	}
	if n := report.Ratings.Rated; n > 0 {
		report.Ratings.OverallExperience = float64(ratingSums[0]) / float64(n)
		report.Ratings.EaseOfUse = float64(ratingSums[1]) / float64(n)
		report.Ratings.Accuracy = float64(ratingSums[2]) / float64(n)
	}
	return report
}

// ProcessUsage joins sessions to the processes that produced them, most used
// first.
func ProcessUsage(processes []session.Process, sessions []session.Session) []UsageRow {
	byProcess := make(map[string]*UsageRow, len(processes))
	order := make([]string, 0, len(processes))
	for _, p := range processes {
		byProcess[p.ID] = &UsageRow{ProcessID: p.ID, ProcessName: p.Name}
		order = append(order, p.ID)
	}
	for i := range sessions {
		row, ok := byProcess[sessions[i].ProcessID]
		if !ok {
			continue
		}
		row.Sessions++
		if sessions[i].Completed {
			row.Completed++
		}
	}
	rows := make([]UsageRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byProcess[id])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Sessions > rows[j].Sessions
	})
	return rows
}

// RenderReport renders the aggregate report and per-process usage as
// markdown for operator dashboards and exports.
func RenderReport(report Report, usage []UsageRow) string {
	overview := [][]string{
		{"Total sessions", fmt.Sprintf("%d", report.TotalSessions)},
		{"Completed", fmt.Sprintf("%d", report.Completed)},
		{"Completion rate", fmt.Sprintf("%.1f%%", report.CompletionRate)},
		{"Average duration", fmt.Sprintf("%.1f min", report.AverageDuration.Minutes())},
	}
	for _, mode := range []session.Mode{session.ModeChat, session.ModeVoice, session.ModeAvatar} {
		if count, ok := report.ModeBreakdown[mode]; ok {
			overview = append(overview, []string{fmt.Sprintf("Sessions (%s)", mode), fmt.Sprintf("%d", count)})
		}
	}
	out := "# Session report\n" + format.MarkdownTable([]string{"Metric", "Value"}, overview)

	if len(usage) > 0 {
		rows := make([][]string, 0, len(usage))
		for _, row := range usage {
			rows = append(rows, []string{row.ProcessName, fmt.Sprintf("%d", row.Sessions), fmt.Sprintf("%d", row.Completed)})
		}
		out += "\n# Process usage\n" + format.MarkdownTable([]string{"Process", "Sessions", "Completed"}, rows)
	}

	if report.Ratings.Rated > 0 {
		rows := [][]string{
			{"Overall experience", fmt.Sprintf("%.2f", report.Ratings.OverallExperience)},
			{"Ease of use", fmt.Sprintf("%.2f", report.Ratings.EaseOfUse)},
			{"Accuracy", fmt.Sprintf("%.2f", report.Ratings.Accuracy)},
		}
		out += "\n# Ratings\n" + format.MarkdownTable([]string{"Rating", "Average"}, rows)
	}
	return out
}
