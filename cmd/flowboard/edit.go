package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/ui"
)

var errAmbiguous = errors.New("ambiguous title")

type recordKind string

const (
	kindTask recordKind = "task"
	kindNote recordKind = "note"
	kindTodo recordKind = "todo"
)

// record is a task, note or todo located by title.
type record struct {
	kind   recordKind
	id     string
	title  string
	column string
}

func (r record) String() string {
	if r.column != "" {
		return fmt.Sprintf("%s %q in %s", r.kind, r.title, r.column)
	}
	return fmt.Sprintf("%s %q", r.kind, r.title)
}

func allRecords(doc model.Document) []record {
	var out []record
	for _, col := range doc.Board.Columns {
		for _, task := range col.Tasks {
			out = append(out, record{kind: kindTask, id: task.ID, title: task.Title, column: col.Title})
		}
	}
	for _, note := range doc.Notes {
		out = append(out, record{kind: kindNote, id: note.ID, title: note.Title})
	}
	for _, item := range doc.Todos {
		out = append(out, record{kind: kindTodo, id: item.ID, title: item.Title})
	}
	return out
}

// findRecord resolves query to one record: an exact title match (ignoring case) wins,
// otherwise a unique title prefix. kinds narrows the search when non-empty.
func findRecord(doc model.Document, query string, kinds ...recordKind) (record, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return record{}, errTitleRequired
	}

	var exact, prefix []record
	for _, r := range allRecords(doc) {
		if len(kinds) > 0 && !hasKind(kinds, r.kind) {
			continue
		}
		t := strings.ToLower(r.title)
		switch {
		case t == q:
			exact = append(exact, r)
		case strings.HasPrefix(t, q):
			prefix = append(prefix, r)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = prefix
	}
	switch len(matches) {
	case 0:
		return record{}, fmt.Errorf("%q: %w", query, model.ErrNotFound)
	case 1:
		return matches[0], nil
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.String()
	}
	return record{}, fmt.Errorf("%w %q matches %s", errAmbiguous, query, strings.Join(names, ", "))
}

func hasKind(kinds []recordKind, k recordKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

var doneCmd = &cobra.Command{
	Use:     "done <title>",
	GroupID: "board",
	Short:   "Toggle the completed flag of a task or todo",
	Long: `Toggle a task or todo between open and completed.

Records are matched by title, ignoring case. A unique prefix is enough:
  flowboard done "buy"      # toggles "Buy milk"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var found record
		var completed bool
		err := editBoard(cmd.Context(), func(doc *model.Document) error {
			r, err := findRecord(*doc, args[0], kindTask, kindTodo)
			if err != nil {
				return err
			}
			found = r
			if r.kind == kindTask {
				if err := doc.ToggleTask(r.id); err != nil {
					return err
				}
				ci, ti, _ := doc.FindTask(r.id)
				completed = doc.Board.Columns[ci].Tasks[ti].Completed
				return nil
			}
			if err := doc.ToggleTodo(r.id); err != nil {
				return err
			}
			for _, item := range doc.Todos {
				if item.ID == r.id {
					completed = item.Completed
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		state := "open"
		if completed {
			state = "completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Marked %s %s\n", ui.RenderPass("✓"), found, state)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <title>",
	GroupID: "board",
	Short:   "Delete a task, note or todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")

		var kinds []recordKind
		if kind != "" {
			k := recordKind(strings.ToLower(kind))
			if k != kindTask && k != kindNote && k != kindTodo {
				return fmt.Errorf("unknown kind %q (want task, note or todo)", kind)
			}
			kinds = append(kinds, k)
		}

		var removed record
		err := editBoard(cmd.Context(), func(doc *model.Document) error {
			r, err := findRecord(*doc, args[0], kinds...)
			if err != nil {
				return err
			}
			removed = r
			switch r.kind {
			case kindTask:
				return doc.DeleteTask(r.id)
			case kindNote:
				return doc.DeleteNote(r.id)
			default:
				return doc.DeleteTodo(r.id)
			}
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", ui.RenderPass("✓"), removed)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <title>",
	GroupID: "board",
	Short:   "Move a task to another column",
	Long: `Move a task to another column, at the end or at --position (0-based).

The completed flag is not changed by moving.

Example usage:
  flowboard move "write docs" --to "in progress"
  flowboard move "write docs" --to done --position 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		position, _ := cmd.Flags().GetInt("position")
		if to == "" {
			return errors.New("--to is required")
		}

		var moved record
		var target string
		err := editBoard(cmd.Context(), func(doc *model.Document) error {
			r, err := findRecord(*doc, args[0], kindTask)
			if err != nil {
				return err
			}
			col, err := findColumn(*doc, to)
			if err != nil {
				return err
			}
			moved, target = r, col.Title
			return doc.MoveTask(r.id, col.ID, position)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Moved %s to %s\n", ui.RenderPass("✓"), moved, target)
		return nil
	},
}

func init() {
	rmCmd.Flags().String("kind", "", "Only match records of this kind: task, note or todo")
	moveCmd.Flags().String("to", "", "Target column id or title")
	moveCmd.Flags().Int("position", -1, "Position in the target column (default: end)")

	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(moveCmd)
}
