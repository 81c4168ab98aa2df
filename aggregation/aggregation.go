// aggregation/aggregation.go

// Package aggregation computes the counters and box summaries shown on the dashboard.
package aggregation

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"picklist/filter"
	"picklist/model"
)

var printer = message.NewPrinter(language.English)

// Summarize counts rows, checked rows and the total ordered quantity.
func Summarize(items []model.InventoryItem) model.Stats {
	var s model.Stats
	for _, it := range items {
		s.Total++
		if it.Checked {
			s.Checked++
		}
		s.OrdersTotal += it.OrdersCount
	}
	s.Remaining = s.Total - s.Checked
	return s
}

// FormatCount groups thousands: 12345 -> "12,345".
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// CountNotes is the number of rows with a non-blank note.
func CountNotes(items []model.InventoryItem) int {
	n := 0
	for _, it := range items {
		if strings.TrimSpace(it.Notes) != "" {
			n++
		}
	}
	return n
}

// BuildDashboard assembles the home page summary.
func BuildDashboard(items []model.InventoryItem) model.Dashboard {
	stats := Summarize(items)
	return model.Dashboard{
		Stats:          stats,
		Groups:         filter.GroupCounts(items),
		OrdersTotalFmt: FormatCount(stats.OrdersTotal),
		NotesCount:     CountNotes(items),
	}
}
