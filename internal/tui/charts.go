// ABOUTME: Terminal rendering for task chart aggregations.
// ABOUTME: Horizontal bars for category counts, a date table for the timeline.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/feedkit/internal/charts"
)

const maxBarWidth = 40

var (
	chartLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(24)
	chartBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	chartTotalStyle = lipgloss.NewStyle().Bold(true)
)

// RenderDistribution draws the per-category task counts as horizontal bars.
func RenderDistribution(dist charts.Distribution) string {
	var b strings.Builder
	b.WriteString(chartTotalStyle.Render(fmt.Sprintf("Tasks by category (total %d)", dist.Total)))
	b.WriteString("\n\n")

	max := 0
	for _, c := range dist.Counts {
		if c > max {
			max = c
		}
	}

	for i, label := range dist.Labels {
		count := dist.Counts[i]
		width := 0
		if max > 0 {
			width = count * maxBarWidth / max
		}
		if count > 0 && width == 0 {
			width = 1
		}
		bar := chartBarStyle.Render(strings.Repeat("█", width))
		b.WriteString(fmt.Sprintf("%s %s %d\n", chartLabelStyle.Render(label), bar, count))
	}
	return b.String()
}

// RenderTimeline draws the per-date closed-task counts as a table, one row
// per category, one column per date.
func RenderTimeline(ts charts.TimeSeries) string {
	if len(ts.Dates) == 0 {
		return "No closed tasks.\n"
	}

	var b strings.Builder
	b.WriteString(chartTotalStyle.Render("Closed tasks by date"))
	b.WriteString("\n\n")

	b.WriteString(chartLabelStyle.Render(""))
	for _, label := range ts.DateLabels() {
		b.WriteString(fmt.Sprintf(" %10s", label))
	}
	b.WriteString("\n")

	for _, label := range charts.Categories {
		b.WriteString(chartLabelStyle.Render(label))
		for _, count := range ts.Series[label] {
			b.WriteString(fmt.Sprintf(" %10d", count))
		}
		b.WriteString("\n")
	}
	return b.String()
}
