package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/spf13/cobra"
)

// readDocument loads an authoring document. YAML files are authoring only;
// JSON may be either schema.
func readDocument(path string) (*graph.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return compiler.UnmarshalDocumentYAML(data)
	default:
		return compiler.Import(data, cli.CompilerOptions(cfg, logger)...)
	}
}

// writeOutput writes data to path, or to the command output when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("written", "path", path, "bytes", len(data))
	return nil
}
