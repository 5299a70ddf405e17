package model

// Record is the loosely typed form of a note as found in stored
// documents (JSON files, YAML imports, SQLite snapshots). A nil field
// was absent from the source and takes its default in Note.
type Record struct {
	ID        *string      `json:"id" yaml:"id"`
	Title     *string      `json:"title" yaml:"title"`
	Content   *string      `json:"content" yaml:"content"`
	Color     *string      `json:"color" yaml:"color"`
	Tasks     []TaskRecord `json:"tasks" yaml:"tasks"`
	Width     *int         `json:"width" yaml:"width"`
	Height    *int         `json:"height" yaml:"height"`
	DueDate   *string      `json:"due_date" yaml:"due_date"`
	Completed *bool        `json:"completed" yaml:"completed"`
	Status    *string      `json:"status" yaml:"status"`
}

// TaskRecord is the loosely typed form of a TaskItem.
type TaskRecord struct {
	ID      *string `json:"id" yaml:"id"`
	Text    *string `json:"text" yaml:"text"`
	Checked *bool   `json:"checked" yaml:"checked"`
}

// Note builds a Note from the record, defaulting every absent field.
// Width and height are both set to the larger of the two so that
// reloaded cards are always square.
func (r Record) Note() *Note {
	n := &Note{
		ID:      stringOr(r.ID, ""),
		Title:   stringOr(r.Title, DefaultTitle),
		Content: stringOr(r.Content, ""),
		Color:   stringOr(r.Color, ""),
		Tasks:   make([]*TaskItem, 0, len(r.Tasks)),
		DueDate: r.DueDate,
	}
	if n.ID == "" {
		n.ID = newID()
	}
	if n.Color == "" {
		n.Color = Palette[0]
	}
	for _, tr := range r.Tasks {
		n.Tasks = append(n.Tasks, tr.TaskItem())
	}

	size := max(sizeOr(r.Width), sizeOr(r.Height))
	n.Width, n.Height = size, size

	if r.Completed != nil {
		n.Completed = *r.Completed
	}
	switch {
	case r.Status != nil && *r.Status != "":
		n.Status = Status(*r.Status)
	case n.Completed:
		n.Status = StatusCompleted
	default:
		n.Status = StatusNew
	}
	return n
}

// TaskItem builds a TaskItem from the record.
func (r TaskRecord) TaskItem() *TaskItem {
	t := &TaskItem{
		ID:   stringOr(r.ID, ""),
		Text: stringOr(r.Text, ""),
	}
	if t.ID == "" {
		t.ID = newID()
	}
	if r.Checked != nil {
		t.Checked = *r.Checked
	}
	return t
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// sizeOr treats a missing or zero dimension as the default size.
func sizeOr(v *int) int {
	if v == nil || *v == 0 {
		return DefaultSize
	}
	return *v
}
