package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/store"
	"github.com/flowboard/flowboard/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show",
	GroupID: "board",
	Short:   "Print the board, notes and todos",
	Long: `Render the workspace board in the terminal.

Columns are shown side by side, followed by notes and the todo list with pending
items first. Use --section to print only part of the document.

Example usage:
  flowboard show
  flowboard show --section todo
  flowboard show --no-color | less`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		section, _ := cmd.Flags().GetString("section")
		width, _ := cmd.Flags().GetInt("width")

		if noColor {
			ui.DisableColor()
		}

		doc, err := newStore().Read(cmd.Context())
		if err != nil && !errors.Is(err, store.ErrNoWorkspace) {
			return fmt.Errorf("failed to read board: %w", err)
		}

		opts := ui.Options{ColumnWidth: width}
		if section != "" {
			opts.Sections = strings.Split(section, ",")
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderDocument(doc, opts))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("no-color", false, "Disable colors")
	showCmd.Flags().StringP("section", "s", "", "Comma-separated sections to show: board, notes, todo")
	showCmd.Flags().Int("width", 28, "Column width")

	rootCmd.AddCommand(showCmd)
}
