package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/store"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "board",
	Short:   "Print the board as JSON, YAML or TOML",
	Long: `Print the parsed document in a structured format.

The JSON form is the same payload a UI receives in a loadData message.
Identifiers are generated fresh on every read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		doc, err := newStore().Read(cmd.Context())
		if err != nil && !errors.Is(err, store.ErrNoWorkspace) {
			return fmt.Errorf("failed to read board: %w", err)
		}
		return encodeDocument(cmd.OutOrStdout(), doc, format)
	},
}

func encodeDocument(w io.Writer, doc model.Document, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "toml":
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or toml)", format)
	}
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml or toml")

	rootCmd.AddCommand(exportCmd)
}
