package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/config"
	"github.com/flowboard/flowboard/internal/ids"
	"github.com/flowboard/flowboard/internal/logging"
	"github.com/flowboard/flowboard/internal/markdown"
	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/store"
)

var (
	workspaceFlag string
	configFlag    string
	logLevelFlag  string

	// Populated by PersistentPreRunE for every command
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flowboard",
	Short: "Kanban board, notes and todos kept in a markdown file",
	Long: `Flowboard keeps a kanban board, a notes list and a todo checklist in a single
FLOWBOARD.md file at the root of a workspace.

The file is plain markdown and stays hand-editable:

  # Board
  ## Backlog
  - [ ] Write docs - README and examples
  # Notes
  - Idea - explore X
  # Todo
  - [x] Buy milk

'flowboard serve' exposes the board to a UI over WebSocket and keeps it in sync with
edits made to the file on disk. The other commands read and edit the file directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logging.Close(logger)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Project config file (default: <workspace>/.flowboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddGroup(
		&cobra.Group{ID: "board", Title: "Board Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
	)
}

// setup loads configuration and the logger from the global flags.
func setup() error {
	workspace := workspaceFlag
	if workspace != "" {
		abs, err := filepath.Abs(workspace)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace: %w", err)
		}
		workspace = abs
	}

	c, err := config.Load(config.Options{Workspace: workspace, ProjectPath: configFlag})
	if err != nil {
		return err
	}
	if logLevelFlag != "" {
		c.Log.Level = logLevelFlag
	}

	l, err := logging.New(c.Log, c.Workspace)
	if err != nil {
		return err
	}

	cfg, logger = c, l
	return nil
}

func newStore() *store.Store {
	return store.New(store.Config{
		Root:     store.StaticRoot(cfg.Workspace),
		FileName: cfg.File,
		Parser:   markdown.Parser{IDs: cfg.IDGenerator()},
		Logger:   logger,
	})
}

// newIDs returns a generator that avoids every identifier already in doc.
func newIDs(doc model.Document) *ids.Unique {
	u := ids.NewUnique(cfg.IDGenerator())
	for _, col := range doc.Board.Columns {
		u.Reserve(col.ID)
		for _, task := range col.Tasks {
			u.Reserve(task.ID)
		}
	}
	for _, note := range doc.Notes {
		u.Reserve(note.ID)
	}
	for _, item := range doc.Todos {
		u.Reserve(item.ID)
	}
	return u
}

// editBoard reads the board, applies fn and writes the result back.
func editBoard(ctx context.Context, fn func(doc *model.Document) error) error {
	st := newStore()

	doc, err := st.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read board: %w", err)
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if err := st.Write(ctx, doc); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}
