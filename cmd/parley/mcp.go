package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/pkg/adapters/mcp"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/session"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the compiler (validate, compile, import, mermaid) and, when a
scripts directory exists, session playback as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		compileOpts := cli.CompilerOptions(cfg, logger)

		var mgr *session.Manager
		if _, err := os.Stat(cfg.Scripts.Dir); err == nil {
			reg := registry.NewRegistry(registry.WithLogger(logger))
			if _, err := reg.LoadDir(cfg.Scripts.Dir, compileOpts...); err != nil {
				return err
			}
			backend, err := cli.NewBackend(cfg.Sessions, logger)
			if err != nil {
				return err
			}
			defer backend.Close()
			mgr = cli.NewManager(backend, reg, cfg.Sessions.LockTTL, logger)
		}

		srv := mcp.NewServer(mgr, mcp.WithLogger(logger), mcp.WithCompilerOptions(compileOpts...))

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting parley mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, cfg.Server.MCPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("mcp server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
}
