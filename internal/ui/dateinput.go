package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nissyi-gh/stickies/internal/model"
)

// dateFields describes the year, month and day inputs in display order.
var dateFields = []struct {
	placeholder string
	digits      int
}{
	{"YYYY", 4},
	{"MM", 2},
	{"DD", 2},
}

var (
	nextFieldKey = key.NewBinding(key.WithKeys("tab", "right"))
	prevFieldKey = key.NewBinding(key.WithKeys("shift+tab", "left"))
)

var errDigitsOnly = errors.New("digits only")

// dateInput edits a note's due date. Leaving every field empty clears
// the date.
type dateInput struct {
	fields []textinput.Model
	active int
}

func newDateInput() dateInput {
	d := dateInput{fields: make([]textinput.Model, len(dateFields))}
	for i, f := range dateFields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = f.digits
		in.Width = f.digits + 2
		in.Validate = func(s string) error {
			if strings.Trim(s, "0123456789") != "" {
				return errDigitsOnly
			}
			return nil
		}
		d.fields[i] = in
	}
	return d
}

// Focus activates the year field.
func (d *dateInput) Focus() tea.Cmd {
	return d.activate(0)
}

// SetValue splits a YYYY-MM-DD date across the fields. nil empties them.
func (d *dateInput) SetValue(date *string) {
	var parts []string
	if date != nil {
		parts = strings.SplitN(*date, "-", len(d.fields))
	}
	for i := range d.fields {
		part := ""
		if i < len(parts) {
			part = parts[i]
		}
		d.fields[i].SetValue(part)
	}
}

// Value returns the date in model.DateLayout, or nil when nothing was
// entered. A blank year or month is taken from now.
func (d *dateInput) Value(now time.Time) (*string, error) {
	raw := make([]string, len(d.fields))
	blank := true
	for i := range d.fields {
		raw[i] = strings.TrimSpace(d.fields[i].Value())
		blank = blank && raw[i] == ""
	}
	if blank {
		return nil, nil
	}
	if raw[2] == "" {
		return nil, fmt.Errorf("day is required")
	}

	year, month := now.Year(), int(now.Month())
	day, _ := strconv.Atoi(raw[2])
	if raw[0] != "" {
		year, _ = strconv.Atoi(raw[0])
	}
	if raw[1] != "" {
		month, _ = strconv.Atoi(raw[1])
	}

	date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date: %s", date)
	}
	return &date, nil
}

func (d *dateInput) activate(idx int) tea.Cmd {
	d.active = idx
	var cmd tea.Cmd
	for i := range d.fields {
		if i == idx {
			cmd = d.fields[i].Focus()
			continue
		}
		d.fields[i].Blur()
	}
	return cmd
}

func (d dateInput) Update(msg tea.Msg) (dateInput, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		var cmd tea.Cmd
		switch {
		case key.Matches(keyMsg, nextFieldKey):
			cmd = d.activate(min(d.active+1, len(d.fields)-1))
			return d, cmd
		case key.Matches(keyMsg, prevFieldKey):
			cmd = d.activate(max(d.active-1, 0))
			return d, cmd
		}
	}

	var cmd tea.Cmd
	d.fields[d.active], cmd = d.fields[d.active].Update(msg)
	return d, cmd
}

func (d dateInput) View() string {
	views := make([]string, len(d.fields))
	for i := range d.fields {
		views[i] = d.fields[i].View()
	}
	return strings.Join(views, " - ")
}
