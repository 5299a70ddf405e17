package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nissyi-gh/stickies/internal/model"
)

// NoteItem wraps a note to satisfy the list.DefaultItem interface. It
// holds the live note, so in-place edits show without rebuilding the list.
type NoteItem struct {
	Note *model.Note
	now  func() time.Time
}

func newNoteItem(n *model.Note, now func() time.Time) NoteItem {
	return NoteItem{Note: n, now: now}
}

func (i NoteItem) Title() string {
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(i.Note.Color)).Render("■")
	check := "[ ]"
	if i.Note.Completed {
		check = "[x]"
	}
	dueMark := ""
	now := i.now()
	if i.Note.IsOverdue(now) {
		dueMark = "⚠️ "
	} else if i.Note.IsDueToday(now) {
		dueMark = "📅 "
	}
	tasks := ""
	if n := len(i.Note.Tasks); n > 0 {
		tasks = fmt.Sprintf(" (%d/%d)", checkedCount(i.Note), n)
	}
	return fmt.Sprintf("%s %s %s%s%s", swatch, check, dueMark, i.Note.Title, tasks)
}

func (i NoteItem) Description() string {
	return i.Note.Status.Label()
}

func (i NoteItem) FilterValue() string {
	return i.Note.Title + " " + i.Note.Content
}

func checkedCount(n *model.Note) int {
	count := 0
	for _, t := range n.Tasks {
		if t.Checked {
			count++
		}
	}
	return count
}
