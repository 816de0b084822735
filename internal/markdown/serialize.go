package markdown

import (
	"strings"

	"github.com/flowboard/flowboard/internal/model"
)

// Serialize renders a document as canonical text. Identical input always yields
// identical output; identifiers are not written.
func Serialize(doc model.Document) string {
	var lines []string

	lines = append(lines, "# Board", "")
	for _, col := range doc.Board.Columns {
		lines = append(lines, "## "+col.Title)
		for _, task := range col.Tasks {
			lines = append(lines, checkbox(task.Completed, task.Title, task.Description))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "# Notes")
	for _, note := range doc.Notes {
		lines = append(lines, "- "+joinText(note.Title, note.Content))
	}
	lines = append(lines, "")

	lines = append(lines, "# Todo")
	for _, todo := range doc.Todos {
		lines = append(lines, checkbox(todo.Completed, todo.Title, todo.Description))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// Format parses text and renders it canonically.
func Format(text string) string {
	return Serialize(Parse(text))
}

func checkbox(completed bool, title, description string) string {
	box := "[ ]"
	if completed {
		box = "[x]"
	}
	return "- " + box + " " + joinText(title, description)
}

func joinText(title, rest string) string {
	if rest == "" {
		return title
	}
	return title + descriptionSeparator + rest
}
