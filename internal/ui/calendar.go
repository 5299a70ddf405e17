package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	calendarHeaderStyle = lipgloss.NewStyle().Bold(true)
	weekdayStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	todayStyle          = lipgloss.NewStyle().
				Background(lipgloss.Color("#E3F2FD")).
				Foreground(lipgloss.Color("#1976D2")).
				Bold(true)
	dueDayStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#C8E6C9")).
			Foreground(lipgloss.Color("#2E7D32"))
)

// calendarMonth is the month shown in the calendar pane.
type calendarMonth struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) calendarMonth {
	return calendarMonth{year: t.Year(), month: t.Month()}
}

// add moves by n months, wrapping across years.
func (c calendarMonth) add(n int) calendarMonth {
	t := time.Date(c.year, c.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return monthOf(t)
}

// renderCalendar draws a Monday-first month grid. Today is highlighted,
// and days in due are marked as having notes due.
func renderCalendar(c calendarMonth, today time.Time, due map[int]bool) string {
	first := time.Date(c.year, c.month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	var b strings.Builder
	b.WriteString(calendarHeaderStyle.Render(fmt.Sprintf("%s %d", c.month, c.year)))
	b.WriteString("\n")
	b.WriteString(weekdayStyle.Render("Mo Tu We Th Fr Sa Su"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("   ", offset))

	ty, tm, td := today.Date()
	for day := 1; day <= days; day++ {
		cell := fmt.Sprintf("%2d", day)
		switch {
		case ty == c.year && tm == c.month && td == day:
			cell = todayStyle.Render(cell)
		case due[day]:
			cell = dueDayStyle.Render(cell)
		}
		b.WriteString(cell)
		col := (offset + day - 1) % 7
		if col == 6 && day != days {
			b.WriteString("\n")
		} else if day != days {
			b.WriteString(" ")
		}
	}
	return b.String()
}
