package main

import (
	"os"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <script.json>",
	Short: "Rebuild an editable document from a runtime script",
	Long: `Reads a runtime script (or an authoring document) and writes the authoring
format. Runtime scripts carry no positions, so nodes are laid out in a column
using the layout section of the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := compiler.Import(data, cli.CompilerOptions(cfg, logger)...)
		if err != nil {
			return err
		}

		asYAML, _ := cmd.Flags().GetBool("yaml")
		var out []byte
		if asYAML {
			out, err = compiler.MarshalDocumentYAML(doc)
		} else {
			out, err = compiler.MarshalDocument(doc)
		}
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd, output, out)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	importCmd.Flags().Bool("yaml", false, "Write YAML instead of JSON")
}
