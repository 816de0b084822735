package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/internal/bridge"
	"github.com/flowboard/flowboard/internal/session"
	"github.com/flowboard/flowboard/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "sync",
	Short:   "Serve the board to UI clients over WebSocket",
	Long: `Start the UI bridge for the workspace board.

Every WebSocket connection is an independent UI session. A client sends
{"type":"ready"} once it can render and receives the board as
{"type":"loadData","data":{...}}. Edits come back as {"type":"updateData"} and are
written to the file once the client has been quiet for sync.quiet_period.

Changes made to the file by other programs are pushed to every connected client.

Example usage:
  flowboard serve                # Start on the configured port (default 7420)
  flowboard serve --port 9000    # Start on a custom port

Connect with a WebSocket client:
  ws://localhost:7420/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		st := newStore()
		hub := session.NewHub(st, &session.Config{
			QuietPeriod: cfg.Sync.QuietPeriod,
			Policy:      cfg.ReloadPolicy(),
			Logger:      logger,
		})
		if err := hub.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer hub.Stop()

		ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(port)))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}

		out := cmd.OutOrStdout()
		path, _ := st.Path()
		addr := ln.Addr().String()
		fmt.Fprintf(out, "%s Serving %s\n", ui.RenderAccent("▶"), path)
		fmt.Fprintf(out, "   WebSocket endpoint: ws://%s/ws\n", addr)
		fmt.Fprintf(out, "   Health check: http://%s/health\n", addr)
		fmt.Fprintln(out, "\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		server := bridge.New(hub, bridge.Config{File: cfg.File, Logger: logger})
		if err := server.Serve(ctx, ln); err != nil {
			return err
		}

		fmt.Fprintf(out, "%s Stopped\n", ui.RenderPass("✓"))
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default: server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
