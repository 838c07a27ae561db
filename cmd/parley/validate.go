package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var errInvalidDocument = errors.New("document has errors")

var validateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Check a document for errors and warnings",
	Long: `Reports every violation: missing or duplicate start nodes, dangling edges,
empty choices, edges from end nodes, and unreachable nodes (a warning).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		out := termenv.NewOutput(cmd.OutOrStdout())
		vs := doc.Validate()
		for _, v := range vs {
			label := out.String("warning").Foreground(out.Color("#eab308"))
			if v.Severity == domain.SeverityError {
				label = out.String("error").Foreground(out.Color("#ef4444"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", label, v.Err)
		}

		if vs.HasErrors() {
			return errInvalidDocument
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String("Document is valid! ✅").Foreground(out.Color("#22c55e")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
