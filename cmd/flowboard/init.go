package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/config"
	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .flowboard.yaml and an empty board in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		path := filepath.Join(cfg.Workspace, config.ProjectFileName)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(cfg.Workspace, 0755); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(out, "%s Wrote %s\n", ui.RenderPass("✓"), path)

		st := newStore()
		boardPath, _ := st.Path()
		if _, err := os.Stat(boardPath); os.IsNotExist(err) {
			if err := st.Write(cmd.Context(), model.Default()); err != nil {
				return fmt.Errorf("failed to create board: %w", err)
			}
			fmt.Fprintf(out, "%s Created %s\n", ui.RenderPass("✓"), boardPath)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
}
