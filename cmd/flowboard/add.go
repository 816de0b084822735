package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/ui"
)

var errTitleRequired = errors.New("a title is required")

var addCmd = &cobra.Command{
	Use:     "add",
	GroupID: "board",
	Short:   "Add a task, note or todo",
	Long: `Add a record to the board file.

Without a title argument an interactive prompt is shown when stdin is a terminal.

Example usage:
  flowboard add task "Write docs" -d "README and examples"
  flowboard add task "Ship it" --column done       # starts completed
  flowboard add note "Idea" -c "explore X"
  flowboard add todo "Buy milk"`,
}

var addTaskCmd = &cobra.Command{
	Use:   "task [title]",
	Short: "Add a task to a board column",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		column, _ := cmd.Flags().GetString("column")
		desc, _ := cmd.Flags().GetString("description")

		title, desc, err := titleAndDetail(args, "Task", "Description", desc)
		if err != nil {
			return err
		}

		var added model.Task
		var columnTitle string
		err = editBoard(cmd.Context(), func(doc *model.Document) error {
			col, err := findColumn(*doc, column)
			if err != nil {
				return err
			}
			columnTitle = col.Title
			added, err = doc.AddTask(newIDs(*doc), col.ID, title, desc)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Added task %q to %s\n", ui.RenderPass("✓"), added.Title, columnTitle)
		return nil
	},
}

var addNoteCmd = &cobra.Command{
	Use:   "note [title]",
	Short: "Add a note",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, _ := cmd.Flags().GetString("content")

		title, content, err := titleAndDetail(args, "Note", "Content", content)
		if err != nil {
			return err
		}

		err = editBoard(cmd.Context(), func(doc *model.Document) error {
			doc.AddNote(newIDs(*doc), title, content)
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Added note %q\n", ui.RenderPass("✓"), title)
		return nil
	},
}

var addTodoCmd = &cobra.Command{
	Use:   "todo [title]",
	Short: "Add a todo item",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")

		title, desc, err := titleAndDetail(args, "Todo", "Description", desc)
		if err != nil {
			return err
		}

		err = editBoard(cmd.Context(), func(doc *model.Document) error {
			doc.AddTodo(newIDs(*doc), title, desc)
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Added todo %q\n", ui.RenderPass("✓"), title)
		return nil
	},
}

// titleAndDetail takes the title from args, or prompts for both fields on a terminal.
func titleAndDetail(args []string, kind, detailLabel, detail string) (string, string, error) {
	if len(args) == 1 {
		title := strings.TrimSpace(args[0])
		if title == "" {
			return "", "", errTitleRequired
		}
		return title, strings.TrimSpace(detail), nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", "", errTitleRequired
	}

	var title string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(kind+" title").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errTitleRequired
					}
					return nil
				}),
			huh.NewInput().
				Title(detailLabel+" (optional)").
				Value(&detail),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(title), strings.TrimSpace(detail), nil
}

// findColumn matches a column by id or by title, ignoring case.
func findColumn(doc model.Document, name string) (model.Column, error) {
	id := model.ColumnID(name)
	for _, col := range doc.Board.Columns {
		if col.ID == id || strings.EqualFold(col.Title, name) {
			return col, nil
		}
	}
	return model.Column{}, fmt.Errorf("column %q: %w", name, model.ErrNotFound)
}

func init() {
	addTaskCmd.Flags().String("column", model.ColumnID("Backlog"), "Column id or title")
	addTaskCmd.Flags().StringP("description", "d", "", "Task description")
	addNoteCmd.Flags().StringP("content", "c", "", "Note content")
	addTodoCmd.Flags().StringP("description", "d", "", "Todo description")

	addCmd.AddCommand(addTaskCmd)
	addCmd.AddCommand(addNoteCmd)
	addCmd.AddCommand(addTodoCmd)
	rootCmd.AddCommand(addCmd)
}
