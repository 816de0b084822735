package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/markdown"
	"github.com/flowboard/flowboard/internal/ui"
)

// errNotFormatted is returned by fmt --check.
var errNotFormatted = errors.New("board file is not in canonical form")

var fmtCmd = &cobra.Command{
	Use:     "fmt",
	GroupID: "board",
	Short:   "Rewrite the board file in canonical form",
	Long: `Parse the board file and write it back the way flowboard serializes it.

Legacy files without section headers gain the # Board heading, stray lines are
dropped, and blank lines are normalized. With --check the file is left untouched
and the command fails if it would change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		out := cmd.OutOrStdout()

		st := newStore()
		path, _ := st.Path()

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "%s No %s to format\n", ui.RenderWarn("⚠"), st.FileName())
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read board: %w", err)
		}

		text := string(data)
		if markdown.Format(text) == text {
			fmt.Fprintf(out, "%s %s is formatted\n", ui.RenderPass("✓"), st.FileName())
			return nil
		}
		if check {
			return fmt.Errorf("%s: %w", path, errNotFormatted)
		}

		if err := st.Write(cmd.Context(), markdown.Parse(text)); err != nil {
			return fmt.Errorf("failed to save board: %w", err)
		}
		fmt.Fprintf(out, "%s Formatted %s\n", ui.RenderPass("✓"), st.FileName())
		return nil
	},
}

func init() {
	fmtCmd.Flags().Bool("check", false, "Fail if the file is not formatted instead of rewriting it")

	rootCmd.AddCommand(fmtCmd)
}
