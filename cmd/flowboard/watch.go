package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "sync",
	Short:   "Print a summary whenever the board file changes",
	Long: `Watch the board file and print one line per change with the record counts
after the change. Useful to check what a UI or editor is writing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		path, _ := st.Path()

		if err := os.MkdirAll(cfg.Workspace, 0755); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		w, err := watch.Watch(path)
		if err != nil {
			return err
		}
		defer w.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-w.Events():
				if !ok {
					return nil
				}
				doc, _ := st.Load(ctx)
				fmt.Fprintf(out, "%s %-6s %s\n", time.Now().Format("15:04:05"), event.Op, summarize(doc))
			case err, ok := <-w.Errors():
				if !ok {
					return nil
				}
				logger.WithError(err).Warn("watch error")
			}
		}
	},
}

func summarize(doc model.Document) string {
	return fmt.Sprintf("%d columns, %d tasks, %d notes, %d/%d todos done",
		len(doc.Board.Columns), doc.TaskCount(), len(doc.Notes), len(doc.CompletedTodos()), len(doc.Todos))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
