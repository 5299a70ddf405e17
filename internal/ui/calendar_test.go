package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/nissyi-gh/stickies/internal/model"
)

func containsPlain(s, substr string) bool {
	return strings.Contains(ansi.Strip(s), substr)
}

func TestRenderCalendar(t *testing.T) {
	out := ansi.Strip(renderCalendar(calendarMonth{year: 2026, month: time.October}, testNow, map[int]bool{20: true}))
	lines := strings.Split(out, "\n")

	if lines[0] != "October 2026" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "Mo Tu We Th Fr Sa Su" {
		t.Errorf("unexpected weekday row %q", lines[1])
	}
	// October 1st 2026 is a Thursday.
	if lines[2] != "          1  2  3  4" {
		t.Errorf("unexpected first week %q", lines[2])
	}
	if last := lines[len(lines)-1]; last != "26 27 28 29 30 31" {
		t.Errorf("unexpected last week %q", last)
	}
	if len(lines) != 7 {
		t.Errorf("expected 7 lines, got %d", len(lines))
	}
}

func TestRenderCalendarMondayStart(t *testing.T) {
	// June 1st 2026 is a Monday.
	out := ansi.Strip(renderCalendar(calendarMonth{year: 2026, month: time.June}, testNow, nil))
	lines := strings.Split(out, "\n")
	if lines[2] != " 1  2  3  4  5  6  7" {
		t.Errorf("unexpected first week %q", lines[2])
	}
}

func TestCalendarMonthAdd(t *testing.T) {
	tests := []struct {
		from calendarMonth
		n    int
		want calendarMonth
	}{
		{calendarMonth{2026, time.January}, -1, calendarMonth{2025, time.December}},
		{calendarMonth{2026, time.December}, 1, calendarMonth{2027, time.January}},
		{calendarMonth{2026, time.March}, 0, calendarMonth{2026, time.March}},
	}
	for _, tt := range tests {
		if got := tt.from.add(tt.n); got != tt.want {
			t.Errorf("%+v.add(%d) = %+v, want %+v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestDateInputValue(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day string
		want             string
		wantNil, wantErr bool
	}{
		{name: "empty clears", wantNil: true},
		{name: "full date", year: "2026", month: "11", day: "3", want: "2026-11-03"},
		{name: "day only", day: "25", want: "2026-10-25"},
		{name: "missing day", year: "2026", month: "11", wantErr: true},
		{name: "invalid date", year: "2026", month: "02", day: "30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDateInput()
			d.fields[0].SetValue(tt.year)
			d.fields[1].SetValue(tt.month)
			d.fields[2].SetValue(tt.day)

			got, err := d.Value(testNow)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Value: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected nil, got %s", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}
}

func TestDateInputSetValue(t *testing.T) {
	d := newDateInput()
	date := "2026-10-20"
	d.SetValue(&date)
	if d.fields[0].Value() != "2026" || d.fields[1].Value() != "10" || d.fields[2].Value() != "20" {
		t.Errorf("unexpected fields %q %q %q", d.fields[0].Value(), d.fields[1].Value(), d.fields[2].Value())
	}
	d.SetValue(nil)
	if got, _ := d.Value(testNow); got != nil {
		t.Errorf("expected cleared input, got %s", *got)
	}
}

func TestDateInputNavigation(t *testing.T) {
	d := newDateInput()
	d.Focus()

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyShiftTab}, 0},
		{tea.KeyMsg{Type: tea.KeyTab}, 1},
		{tea.KeyMsg{Type: tea.KeyRight}, 2},
		{tea.KeyMsg{Type: tea.KeyTab}, 2},
		{tea.KeyMsg{Type: tea.KeyLeft}, 1},
	}
	for i, step := range steps {
		d, _ = d.Update(step.key)
		if d.active != step.want {
			t.Fatalf("step %d: expected field %d, got %d", i, step.want, d.active)
		}
		for j := range d.fields {
			if d.fields[j].Focused() != (j == step.want) {
				t.Errorf("step %d: field %d focus is %v", i, j, d.fields[j].Focused())
			}
		}
	}

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	if got := d.fields[1].Value(); got != "7" {
		t.Errorf("expected typed month, got %q", got)
	}
	if err := d.fields[1].Validate("1a"); err == nil {
		t.Error("expected non-digits to be rejected")
	}
	if got := d.View(); strings.Count(got, " - ") != 2 {
		t.Errorf("expected three fields in view, got %q", got)
	}
}

func TestNoteItem(t *testing.T) {
	note := model.NewNote(
		model.WithTitle("Groceries"),
		model.WithContent("weekly"),
		model.WithDueDate("2026-10-01"),
		model.WithTasks(model.NewTaskItem("milk"), model.NewTaskItem("eggs")),
	)
	note.Tasks[0].Checked = true
	item := newNoteItem(note, func() time.Time { return testNow })

	title := ansi.Strip(item.Title())
	for _, want := range []string{"[ ]", "⚠️", "Groceries", "(1/2)"} {
		if !strings.Contains(title, want) {
			t.Errorf("expected %q in %q", want, title)
		}
	}
	if item.Description() != "New" {
		t.Errorf("unexpected description %q", item.Description())
	}
	if item.FilterValue() != "Groceries weekly" {
		t.Errorf("unexpected filter value %q", item.FilterValue())
	}

	note.SetStatus(model.StatusCompleted)
	if title := ansi.Strip(item.Title()); !strings.Contains(title, "[x]") || strings.Contains(title, "⚠️") {
		t.Errorf("expected completed note without overdue mark, got %q", title)
	}
}
