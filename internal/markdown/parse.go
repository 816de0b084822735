// Package markdown converts between the FLOWBOARD.md text format and model.Document.
//
// The format is a narrow, line-oriented grammar:
//
//	# Board
//
//	## Backlog
//	- [ ] Write docs - the README needs a usage section
//	- [x] Ship it
//
//	# Notes
//	- Idea - explore X
//
//	# Todo
//	- [ ] Buy milk
//
// Files without any top-level section header are read as a single implicit board
// (the legacy format). Identifiers are never stored in the text; every parse assigns
// fresh ones.
package markdown

import (
	"regexp"
	"strings"

	"github.com/flowboard/flowboard/internal/ids"
	"github.com/flowboard/flowboard/internal/model"
)

// section is the top-level grouping the parser is currently inside.
type section int

const (
	sectionNone section = iota
	sectionBoard
	sectionNotes
	sectionTodo
)

// String returns a human-readable representation of the section.
func (s section) String() string {
	switch s {
	case sectionNone:
		return "none"
	case sectionBoard:
		return "board"
	case sectionNotes:
		return "notes"
	case sectionTodo:
		return "todo"
	default:
		return "unknown"
	}
}

// descriptionSeparator splits a line's text into title and description.
const descriptionSeparator = " - "

var (
	sectionHeader = regexp.MustCompile(`(?i)^#\s+(board|notes|todo)\s*$`)
	columnHeader  = regexp.MustCompile(`^##\s+(.+)$`)
	checkboxLine  = regexp.MustCompile(`^-\s+\[([ xX])\]\s+(.+)$`)
	bulletLine    = regexp.MustCompile(`^-\s+(.+)$`)
)

// Parser turns text into documents. The zero value uses random identifiers.
type Parser struct {
	// IDs is the identifier source. A fresh uniqueness set is kept per parse.
	IDs ids.Generator
}

// Parse converts text into a document using random identifiers.
func Parse(text string) model.Document {
	return Parser{}.Parse(text)
}

// parseState is the explicit state machine behind Parse.
type parseState struct {
	ids     *ids.Unique
	section section
	legacy  bool
	column  *model.Column // current column slot, nil before any column header
	doc     model.Document
}

// Parse converts text into a document. It never fails: unrecognized lines are skipped
// and a document without columns gets the default board.
func (p Parser) Parse(text string) model.Document {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	st := &parseState{
		ids:     ids.NewUnique(p.IDs),
		section: sectionNone,
		legacy:  !hasSectionHeader(lines),
		doc: model.Document{
			Notes: []model.Note{},
			Todos: []model.TodoItem{},
		},
	}
	if st.legacy {
		st.section = sectionBoard
	}

	for _, line := range lines {
		st.consume(strings.TrimSpace(line))
	}
	st.closeColumn()

	st.doc.Normalize()
	return st.doc
}

func hasSectionHeader(lines []string) bool {
	for _, line := range lines {
		if sectionHeader.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func (st *parseState) consume(line string) {
	if m := sectionHeader.FindStringSubmatch(line); m != nil {
		st.closeColumn()
		switch strings.ToLower(m[1]) {
		case "board":
			st.section = sectionBoard
		case "notes":
			st.section = sectionNotes
		case "todo":
			st.section = sectionTodo
		}
		return
	}

	switch st.section {
	case sectionBoard:
		st.consumeBoard(line)
	case sectionNotes:
		st.consumeNote(line)
	case sectionTodo:
		st.consumeTodo(line)
	}
}

func (st *parseState) consumeBoard(line string) {
	if m := columnHeader.FindStringSubmatch(line); m != nil {
		st.closeColumn()
		title := strings.TrimSpace(m[1])
		st.column = &model.Column{ID: model.ColumnID(title), Title: title, Tasks: []model.Task{}}
		return
	}
	if st.column == nil {
		return
	}
	completed, text, ok := parseCheckbox(line)
	if !ok {
		return
	}
	title, desc := splitText(text)
	st.column.Tasks = append(st.column.Tasks, model.Task{
		ID:          st.ids.NewID(),
		Title:       title,
		Description: desc,
		Completed:   completed,
	})
}

func (st *parseState) consumeNote(line string) {
	m := bulletLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	title, content := splitText(strings.TrimSpace(m[1]))
	st.doc.Notes = append(st.doc.Notes, model.Note{
		ID:      st.ids.NewID(),
		Title:   title,
		Content: content,
	})
}

func (st *parseState) consumeTodo(line string) {
	completed, text, ok := parseCheckbox(line)
	if !ok {
		return
	}
	title, desc := splitText(text)
	st.doc.Todos = append(st.doc.Todos, model.TodoItem{
		ID:          st.ids.NewID(),
		Title:       title,
		Description: desc,
		Completed:   completed,
	})
}

// closeColumn moves the current column slot onto the board.
func (st *parseState) closeColumn() {
	if st.column == nil {
		return
	}
	st.doc.Board.Columns = append(st.doc.Board.Columns, *st.column)
	st.column = nil
}

func parseCheckbox(line string) (completed bool, text string, ok bool) {
	m := checkboxLine.FindStringSubmatch(line)
	if m == nil {
		return false, "", false
	}
	return strings.EqualFold(m[1], "x"), strings.TrimSpace(m[2]), true
}

// splitText splits at the first separator. Without one the whole text is the title.
func splitText(text string) (title, rest string) {
	idx := strings.Index(text, descriptionSeparator)
	if idx <= 0 {
		return text, ""
	}
	return text[:idx], text[idx+len(descriptionSeparator):]
}
