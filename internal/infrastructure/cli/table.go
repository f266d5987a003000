package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boardflow/pkg/application"
	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
)

func staticTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle() // Disable selection style for static view
	t.SetStyles(s)
	return t.View()
}

func columnWidth(title string) int {
	if len(title) < 6 {
		return 6
	}
	return len(title)
}

func cfdTable(snapshots []analytics.DailySnapshot, reporting []string) string {
	columns := []table.Column{{Title: "Date", Width: 10}}
	for _, name := range reporting {
		columns = append(columns, table.Column{Title: name, Width: columnWidth(name)})
	}

	rows := make([]table.Row, 0, len(snapshots))
	for _, s := range snapshots {
		row := table.Row{s.Date.String()}
		for _, name := range reporting {
			row = append(row, strconv.Itoa(s.Count(name)))
		}
		rows = append(rows, row)
	}
	return staticTable(columns, rows)
}

func throughputTable(periods []analytics.ThroughputPeriod, rolling, accumulated []float64) string {
	columns := []table.Column{
		{Title: "Week", Width: 10},
		{Title: "Done", Width: 6},
		{Title: "Rolling", Width: 8},
		{Title: "Average", Width: 8},
	}

	rows := make([]table.Row, 0, len(periods))
	for i, p := range periods {
		rows = append(rows, table.Row{
			p.WeekStart.String(),
			strconv.Itoa(p.Count),
			fmt.Sprintf("%.1f", rolling[i]),
			fmt.Sprintf("%.1f", accumulated[i]),
		})
	}
	return staticTable(columns, rows)
}

func statsTable(stats *application.Stats) string {
	lt, tp := stats.LeadTime, stats.Throughput
	columns := []table.Column{
		{Title: "Metric", Width: 22},
		{Title: "Value", Width: 14},
	}
	rows := []table.Row{
		{"Lead time items", strconv.Itoa(lt.Count)},
		{"Lead time P50 (days)", fmt.Sprintf("%.1f", lt.P50)},
		{"Lead time P90 (days)", fmt.Sprintf("%.1f", lt.P90)},
		{"Lead time mean (days)", fmt.Sprintf("%.1f", lt.Mean)},
		{"Lead time range (days)", fmt.Sprintf("%d-%d", lt.Min, lt.Max)},
		{"Throughput weeks", strconv.Itoa(tp.Weeks)},
		{"Throughput total", strconv.Itoa(tp.Total)},
		{"Throughput mean/week", fmt.Sprintf("%.1f", tp.Mean)},
		{"Throughput median", fmt.Sprintf("%.1f", tp.Median)},
		{"Throughput range", fmt.Sprintf("%d-%d", tp.Min, tp.Max)},
		{"Throughput CV", fmt.Sprintf("%.1f%%", tp.CV)},
		{"Predictability", string(stats.Predictability)},
	}
	return staticTable(columns, rows)
}

func ticketTypesTable(types []ticket.TypeCount) string {
	width := 10
	for _, tc := range types {
		if len(tc.Type) > width {
			width = len(tc.Type)
		}
	}
	columns := []table.Column{
		{Title: "Type", Width: width},
		{Title: "Tickets", Width: 7},
	}

	rows := make([]table.Row, 0, len(types))
	for _, tc := range types {
		rows = append(rows, table.Row{tc.Type, strconv.Itoa(tc.Count)})
	}
	return staticTable(columns, rows)
}
