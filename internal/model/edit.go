package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an edit refers to a record that does not exist.
var ErrNotFound = errors.New("record not found")

// IDSource produces identifiers for new records.
type IDSource interface {
	NewID() string
}

func (d *Document) columnIndex(columnID string) int {
	for i, col := range d.Board.Columns {
		if col.ID == columnID {
			return i
		}
	}
	return -1
}

// FindTask returns the column and task index of taskID.
func (d *Document) FindTask(taskID string) (col, idx int, ok bool) {
	for ci, c := range d.Board.Columns {
		for ti, t := range c.Tasks {
			if t.ID == taskID {
				return ci, ti, true
			}
		}
	}
	return -1, -1, false
}

// AddTask appends a task to the column. Tasks added to the done column start completed.
func (d *Document) AddTask(ids IDSource, columnID, title, description string) (Task, error) {
	ci := d.columnIndex(columnID)
	if ci < 0 {
		return Task{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	task := Task{
		ID:          ids.NewID(),
		Title:       title,
		Description: description,
		Completed:   columnID == DoneColumnID,
	}
	d.Board.Columns[ci].Tasks = append(d.Board.Columns[ci].Tasks, task)
	return task, nil
}

// EditTask replaces the title and description of a task.
func (d *Document) EditTask(taskID, title, description string) error {
	ci, ti, ok := d.FindTask(taskID)
	if !ok {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	t := &d.Board.Columns[ci].Tasks[ti]
	t.Title = title
	t.Description = description
	return nil
}

// ToggleTask flips the completed flag of a task.
func (d *Document) ToggleTask(taskID string) error {
	ci, ti, ok := d.FindTask(taskID)
	if !ok {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	t := &d.Board.Columns[ci].Tasks[ti]
	t.Completed = !t.Completed
	return nil
}

// DeleteTask removes a task from whichever column holds it.
func (d *Document) DeleteTask(taskID string) error {
	ci, ti, ok := d.FindTask(taskID)
	if !ok {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	tasks := d.Board.Columns[ci].Tasks
	d.Board.Columns[ci].Tasks = append(tasks[:ti:ti], tasks[ti+1:]...)
	return nil
}

// MoveTask moves a task into the target column at index. An index outside the target
// column appends. The completed flag is left untouched.
func (d *Document) MoveTask(taskID, toColumnID string, index int) error {
	to := d.columnIndex(toColumnID)
	if to < 0 {
		return fmt.Errorf("column %q: %w", toColumnID, ErrNotFound)
	}
	ci, ti, ok := d.FindTask(taskID)
	if !ok {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	task := d.Board.Columns[ci].Tasks[ti]
	src := d.Board.Columns[ci].Tasks
	d.Board.Columns[ci].Tasks = append(src[:ti:ti], src[ti+1:]...)

	dst := d.Board.Columns[to].Tasks
	if index < 0 || index > len(dst) {
		index = len(dst)
	}
	out := make([]Task, 0, len(dst)+1)
	out = append(out, dst[:index]...)
	out = append(out, task)
	out = append(out, dst[index:]...)
	d.Board.Columns[to].Tasks = out
	return nil
}

// AddNote appends a note.
func (d *Document) AddNote(ids IDSource, title, content string) Note {
	note := Note{ID: ids.NewID(), Title: title, Content: content}
	d.Notes = append(d.Notes, note)
	return note
}

// EditNote replaces the title and content of a note.
func (d *Document) EditNote(noteID, title, content string) error {
	for i := range d.Notes {
		if d.Notes[i].ID == noteID {
			d.Notes[i].Title = title
			d.Notes[i].Content = content
			return nil
		}
	}
	return fmt.Errorf("note %q: %w", noteID, ErrNotFound)
}

// DeleteNote removes a note.
func (d *Document) DeleteNote(noteID string) error {
	for i := range d.Notes {
		if d.Notes[i].ID == noteID {
			d.Notes = append(d.Notes[:i:i], d.Notes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("note %q: %w", noteID, ErrNotFound)
}

// AddTodo appends a pending todo.
func (d *Document) AddTodo(ids IDSource, title, description string) TodoItem {
	todo := TodoItem{ID: ids.NewID(), Title: title, Description: description}
	d.Todos = append(d.Todos, todo)
	return todo
}

// ToggleTodo flips the completed flag of a todo.
func (d *Document) ToggleTodo(todoID string) error {
	for i := range d.Todos {
		if d.Todos[i].ID == todoID {
			d.Todos[i].Completed = !d.Todos[i].Completed
			return nil
		}
	}
	return fmt.Errorf("todo %q: %w", todoID, ErrNotFound)
}

// DeleteTodo removes a todo.
func (d *Document) DeleteTodo(todoID string) error {
	for i := range d.Todos {
		if d.Todos[i].ID == todoID {
			d.Todos = append(d.Todos[:i:i], d.Todos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("todo %q: %w", todoID, ErrNotFound)
}

// PendingTodos returns the todos not yet completed, in storage order.
func (d Document) PendingTodos() []TodoItem {
	var out []TodoItem
	for _, t := range d.Todos {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// CompletedTodos returns the completed todos, in storage order.
func (d Document) CompletedTodos() []TodoItem {
	var out []TodoItem
	for _, t := range d.Todos {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}
