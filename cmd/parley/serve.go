package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/parley/internal/cli"
	httpAdapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/metrics"
	"github.com/aretw0/parley/pkg/engine"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Loads every dialogue file of the scripts directory and serves the
authoring and playback API over HTTP, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir, _ := cmd.Flags().GetString("scripts"); dir != "" {
			cfg.Scripts.Dir = dir
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		compileOpts := cli.CompilerOptions(cfg, logger)
		reg := registry.NewRegistry(registry.WithLogger(logger))
		n, err := reg.LoadDir(cfg.Scripts.Dir, compileOpts...)
		if err != nil {
			return err
		}
		logger.Info("scripts loaded", "dir", cfg.Scripts.Dir, "count", n)

		backend, err := cli.NewBackend(cfg.Sessions, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		promReg := prometheus.NewRegistry()
		collector, err := metrics.New(promReg)
		if err != nil {
			return err
		}
		recorders := memory.FanOut{collector}
		mgr := cli.NewManager(backend, reg, cfg.Sessions.LockTTL, logger,
			engine.WithRecorder(recorders),
			engine.WithLifecycleHooks(metrics.Chain(collector.Hooks(), observability.LogHooks(logger))),
		)

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithCompilerOptions(compileOpts...),
		}
		if cfg.Server.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(promReg))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(mgr, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("parley server listening", "addr", srv.Addr, "sessions", cfg.Sessions.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			logger.Info("parley server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config)")
	serveCmd.Flags().String("scripts", "", "Directory of dialogue files (default from config)")
}
