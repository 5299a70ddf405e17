package prompt

import (
	"fmt"
	"strings"

	"github.com/nissyi-gh/stickies/internal/model"
)

const yamlFormat = `Answer with a single YAML code block in the format below and nothing else.

` + "```yaml" + `
tasks:
  - text: "checklist item"
  - text: "another item"
` + "```" + `

Fields:
- text: (required) one short, concrete action
- checked: (optional) true if the item is already done`

// GenerateFromNote returns a prompt asking an assistant to break a note
// down into checklist items that the checklist importer accepts.
func GenerateFromNote(note *model.Note) string {
	var sb strings.Builder

	sb.WriteString("You are a planning assistant.\n")
	sb.WriteString("Break the following sticky note down into a short checklist of concrete steps.\n\n")

	sb.WriteString("## Note\n")
	sb.WriteString(fmt.Sprintf("- Title: %s\n", note.Title))
	if content := strings.TrimSpace(note.Content); content != "" {
		sb.WriteString(fmt.Sprintf("- Content: %s\n", content))
	}
	if note.DueDate != nil && *note.DueDate != "" {
		sb.WriteString(fmt.Sprintf("- Due: %s\n", *note.DueDate))
	}
	sb.WriteString(fmt.Sprintf("- Status: %s\n", note.Status.Label()))

	if len(note.Tasks) > 0 {
		sb.WriteString("\n## Existing checklist\n")
		for _, t := range note.Tasks {
			check := "[ ]"
			if t.Checked {
				check = "[x]"
			}
			sb.WriteString(fmt.Sprintf("- %s %s\n", check, t.Text))
		}
		sb.WriteString("\nOnly list items that are missing from the existing checklist.\n")
	}

	sb.WriteString("\n")
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")

	return sb.String()
}
