package model

import (
	"bytes"
	"encoding/json"
	"slices"
)

const (
	// DefaultTitle is the title of a freshly created note.
	DefaultTitle = "New Note"
	// DefaultSize is the default card width and height.
	DefaultSize = 280

	welcomeTitle   = "Welcome!"
	welcomeContent = "Add more notes with the + button."
)

// Palette lists the note background colors in cycling order.
var Palette = []string{
	"#FFF9C4", // yellow
	"#F8BBD9", // pink
	"#BBDEFB", // blue
	"#C8E6C9", // green
	"#E1BEE7", // purple
}

// Status is the workflow state of a note.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDeferred   Status = "deferred"
)

// Statuses lists every known status in cycling order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusDeferred}

// Next returns the status after s. Unknown statuses advance to the first
// status after StatusNew.
func (s Status) Next() Status {
	idx := max(slices.Index(Statuses, s), 0)
	return Statuses[(idx+1)%len(Statuses)]
}

// Label returns a human readable name.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusDeferred:
		return "Deferred"
	default:
		return string(s)
	}
}

// Note is a single sticky note card.
type Note struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Color     string      `json:"color"`
	Tasks     []*TaskItem `json:"tasks"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	DueDate   *string     `json:"due_date"`
	Completed bool        `json:"completed"`
	Status    Status      `json:"status"`
}

// NoteOption configures a Note built by NewNote.
type NoteOption func(*Note)

// WithID sets the note ID instead of generating one.
func WithID(id string) NoteOption {
	return func(n *Note) { n.ID = id }
}

func WithTitle(title string) NoteOption {
	return func(n *Note) { n.Title = title }
}

func WithContent(content string) NoteOption {
	return func(n *Note) { n.Content = content }
}

func WithColor(color string) NoteOption {
	return func(n *Note) { n.Color = color }
}

func WithTasks(tasks ...*TaskItem) NoteOption {
	return func(n *Note) { n.Tasks = append(n.Tasks, tasks...) }
}

// WithSize sets the card dimensions. No square normalization is applied.
func WithSize(width, height int) NoteOption {
	return func(n *Note) { n.Width, n.Height = width, height }
}

func WithDueDate(date string) NoteOption {
	return func(n *Note) { n.DueDate = &date }
}

func WithStatus(s Status) NoteOption {
	return func(n *Note) { n.SetStatus(s) }
}

// NewNote returns a note with default values, adjusted by opts. Every
// field but the ID is deterministic; the ID is random unless WithID is
// given.
func NewNote(opts ...NoteOption) *Note {
	n := &Note{
		Title:  DefaultTitle,
		Color:  Palette[0],
		Tasks:  []*TaskItem{},
		Width:  DefaultSize,
		Height: DefaultSize,
		Status: StatusNew,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.ID == "" {
		n.ID = newID()
	}
	if n.Color == "" {
		n.Color = Palette[0]
	}
	return n
}

// NewWelcomeNote returns the note shown on first run.
func NewWelcomeNote() *Note {
	return NewNote(WithTitle(welcomeTitle), WithContent(welcomeContent))
}

// CycleColor advances the note to the next palette color and returns it.
// A color outside the palette is treated as the first entry.
func (n *Note) CycleColor() string {
	idx := max(slices.Index(Palette, n.Color), 0)
	n.Color = Palette[(idx+1)%len(Palette)]
	return n.Color
}

// SetStatus sets the status and keeps Completed in sync with it.
func (n *Note) SetStatus(s Status) {
	n.Status = s
	n.Completed = s == StatusCompleted
}

// Task returns the task with the given ID.
func (n *Note) Task(id string) (*TaskItem, bool) {
	for _, t := range n.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// ToggleTask flips the checked flag of the task with the given ID.
func (n *Note) ToggleTask(id string) bool {
	t, ok := n.Task(id)
	if !ok {
		return false
	}
	t.Checked = !t.Checked
	return true
}

// RemoveTask removes the task with the given ID, preserving order.
func (n *Note) RemoveTask(id string) bool {
	idx := slices.IndexFunc(n.Tasks, func(t *TaskItem) bool { return t.ID == id })
	if idx < 0 {
		return false
	}
	n.Tasks = slices.Delete(n.Tasks, idx, idx+1)
	return true
}

// MarshalJSON always emits tasks as a list, never null. Text is left
// unescaped so saved documents stay readable; encoders that escape HTML
// still do so when compacting this output.
func (n Note) MarshalJSON() ([]byte, error) {
	type plain Note
	if n.Tasks == nil {
		n.Tasks = []*TaskItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plain(n)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON tolerates partial and older documents: every missing
// field takes its default, a missing status is derived from completed,
// and the card size is normalized to a square.
func (n *Note) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*n = *r.Note()
	return nil
}
