// Package model defines the records stored in a flowboard file.
package model

import (
	"regexp"
	"strings"
)

// Task is a card on the board. Completed is independent of the column holding it.
type Task struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Completed   bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// Column is an ordered list of tasks. ID is derived from Title on every parse.
type Column struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Title string `json:"title" yaml:"title" toml:"title"`
	Tasks []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Board is the ordered set of columns.
type Board struct {
	Columns []Column `json:"columns" yaml:"columns" toml:"columns"`
}

// Note is a free-form note. Content is the text after the title separator.
type Note struct {
	ID      string `json:"id" yaml:"id" toml:"id"`
	Title   string `json:"title" yaml:"title" toml:"title"`
	Content string `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
}

// TodoItem is an entry of the flat todo list.
type TodoItem struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Completed   bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// Document is the full persisted aggregate exchanged with the UI.
type Document struct {
	Board Board      `json:"board" yaml:"board" toml:"board"`
	Notes []Note     `json:"notes" yaml:"notes" toml:"notes"`
	Todos []TodoItem `json:"todos" yaml:"todos" toml:"todos"`
}

// DoneColumnID is the column whose new tasks start completed.
const DoneColumnID = "done"

var whitespaceRun = regexp.MustCompile(`\s+`)

// ColumnID derives a column identifier from its title: lowercased, whitespace runs
// replaced by a single hyphen.
func ColumnID(title string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
}

// DefaultColumns returns fresh Backlog, In Progress and Done columns.
func DefaultColumns() []Column {
	titles := []string{"Backlog", "In Progress", "Done"}
	cols := make([]Column, 0, len(titles))
	for _, title := range titles {
		cols = append(cols, Column{ID: ColumnID(title), Title: title, Tasks: []Task{}})
	}
	return cols
}

// Default returns the document used when nothing can be read.
func Default() Document {
	return Document{
		Board: Board{Columns: DefaultColumns()},
		Notes: []Note{},
		Todos: []TodoItem{},
	}
}

// Normalize replaces a board without columns by the default board and nil slices by
// empty ones, so a normalized document is safe to hand to a consumer.
func (d *Document) Normalize() {
	if len(d.Board.Columns) == 0 {
		d.Board.Columns = DefaultColumns()
	}
	for i := range d.Board.Columns {
		if d.Board.Columns[i].Tasks == nil {
			d.Board.Columns[i].Tasks = []Task{}
		}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	if d.Todos == nil {
		d.Todos = []TodoItem{}
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{
		Board: Board{Columns: make([]Column, len(d.Board.Columns))},
		Notes: append([]Note{}, d.Notes...),
		Todos: append([]TodoItem{}, d.Todos...),
	}
	for i, col := range d.Board.Columns {
		col.Tasks = append([]Task{}, col.Tasks...)
		out.Board.Columns[i] = col
	}
	return out
}

// TaskCount returns the number of tasks across all columns.
func (d Document) TaskCount() int {
	n := 0
	for _, col := range d.Board.Columns {
		n += len(col.Tasks)
	}
	return n
}

// DuplicateIDs lists identifiers that appear more than once within the task, note or
// todo sequences. Task ids are checked across the whole board.
func (d Document) DuplicateIDs() []string {
	var dups []string
	check := func(seen map[string]bool, id string) {
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}

	tasks := make(map[string]bool)
	for _, col := range d.Board.Columns {
		for _, t := range col.Tasks {
			check(tasks, t.ID)
		}
	}
	notes := make(map[string]bool)
	for _, n := range d.Notes {
		check(notes, n.ID)
	}
	todos := make(map[string]bool)
	for _, t := range d.Todos {
		check(todos, t.ID)
	}
	return dups
}

// Equivalent reports whether a and b hold the same titles, descriptions, contents,
// completion flags and order. Identifiers are ignored.
func Equivalent(a, b Document) bool {
	if len(a.Board.Columns) != len(b.Board.Columns) ||
		len(a.Notes) != len(b.Notes) ||
		len(a.Todos) != len(b.Todos) {
		return false
	}
	for i, ca := range a.Board.Columns {
		cb := b.Board.Columns[i]
		if ca.Title != cb.Title || len(ca.Tasks) != len(cb.Tasks) {
			return false
		}
		for j, ta := range ca.Tasks {
			tb := cb.Tasks[j]
			if ta.Title != tb.Title || ta.Description != tb.Description || ta.Completed != tb.Completed {
				return false
			}
		}
	}
	for i, na := range a.Notes {
		nb := b.Notes[i]
		if na.Title != nb.Title || na.Content != nb.Content {
			return false
		}
	}
	for i, ta := range a.Todos {
		tb := b.Todos[i]
		if ta.Title != tb.Title || ta.Description != tb.Description || ta.Completed != tb.Completed {
			return false
		}
	}
	return true
}
