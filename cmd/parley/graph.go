package main

import (
	"fmt"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the dialogue as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD). Choice edges show the option text; correct options are ticked.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		lang, _ := cmd.Flags().GetString("lang")
		if lang == "" {
			lang = cfg.Locale.Language
		}
		opts := graph.Options{Lang: lang, Fallback: cfg.Locale.Fallback}

		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			backend, err := cli.NewBackend(cfg.Sessions, logger)
			if err != nil {
				return err
			}
			defer backend.Close()
			state, err := backend.Store.Load(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			opts.Overlay = &graph.GraphOverlay{CurrentNode: state.CurrentNodeID}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc, opts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("lang", "", "Label language (default from config)")
	graphCmd.Flags().String("session", "", "Highlight the current node of a saved session")
}
