package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nissyi-gh/stickies/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrNoNotes is returned when a document parses but holds no notes.
var ErrNoNotes = errors.New("no notes found in YAML")

// ErrNoTasks is returned when a checklist document holds no tasks.
var ErrNoTasks = errors.New("no tasks found in YAML")

// YAMLInput represents the root structure of a notes document.
type YAMLInput struct {
	Notes []model.Record `yaml:"notes"`
}

// YAMLTasks represents the root structure of a checklist document.
type YAMLTasks struct {
	Tasks []model.TaskRecord `yaml:"tasks"`
}

// Notes parses a YAML notes document. Missing fields take the same
// defaults as the JSON loader.
func Notes(data []byte) ([]*model.Note, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(stripFence(data), &input); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(input.Notes) == 0 {
		return nil, ErrNoNotes
	}

	notes := make([]*model.Note, 0, len(input.Notes))
	for _, r := range input.Notes {
		notes = append(notes, r.Note())
	}
	return notes, nil
}

// Tasks parses checklist items, either under a "tasks" key or as a bare
// list. Every item needs non-empty text.
func Tasks(data []byte) ([]*model.TaskItem, error) {
	data = stripFence(data)

	var records []model.TaskRecord
	var input YAMLTasks
	if err := yaml.Unmarshal(data, &input); err == nil {
		records = input.Tasks
	} else if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoTasks
	}

	tasks := make([]*model.TaskItem, 0, len(records))
	for i, r := range records {
		if r.Text == nil || strings.TrimSpace(*r.Text) == "" {
			return nil, fmt.Errorf("task %d: text is required", i+1)
		}
		// Imported items are new checklist lines, never aliases of existing ones.
		r.ID = nil
		tasks = append(tasks, r.TaskItem())
	}
	return tasks, nil
}

// stripFence removes a surrounding markdown code fence, as produced by
// assistants answering the breakdown prompt.
func stripFence(data []byte) []byte {
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, "```") {
		return data
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return []byte(strings.Join(lines, "\n"))
}
