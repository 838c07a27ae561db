package main

import (
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <document>",
	Short: "Compile an authoring document into a runtime script",
	Long: `Validates the document and writes the runtime JSON. Compilation is refused,
with every violation listed, when the document has any error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		out, err := compiler.CompileJSON(doc, cli.CompilerOptions(cfg, logger)...)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd, output, out)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}
