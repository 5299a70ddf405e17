package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// TaskItem is a single checklist line owned by a Note.
type TaskItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// NewTaskItem returns an unchecked task with a fresh ID.
func NewTaskItem(text string) *TaskItem {
	return &TaskItem{ID: newID(), Text: text}
}

// UnmarshalJSON fills missing fields with their defaults.
func (t *TaskItem) UnmarshalJSON(data []byte) error {
	var r TaskRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*t = *r.TaskItem()
	return nil
}

// newID returns an 8 character identifier taken from a random UUID.
func newID() string {
	return uuid.NewString()[:8]
}
