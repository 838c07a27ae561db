package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/engine"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <document>",
	Short: "Play a dialogue in the terminal",
	Long: `Compiles the document (or loads the runtime script) and plays it: press
Enter to continue a line, type a number or an option id to choose.
With --session the progress is saved in the configured store and resumed on
the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		s, err := registry.LoadFile(path, cli.CompilerOptions(cfg, logger)...)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		reg := registry.NewRegistry(registry.WithLogger(logger))
		reg.Register(name, s)

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		render, err := tui.NewRenderer(interactive)
		if err != nil {
			return err
		}
		display := tui.NewDisplay(cmd.OutOrStdout(), render,
			tui.WithLocale(memory.Locale(cfg.Locale.Language), cfg.Locale.Fallback),
			tui.WithFeedbackDelays(cfg.Feedback.Evaluated, cfg.Feedback.Neutral),
		)
		if interactive {
			tui.PrintBanner(cmd.OutOrStdout(), parley.Version)
		}

		sessionID, _ := cmd.Flags().GetString("session")
		backend := &cli.Backend{Store: memory.NewStore()}
		if sessionID != "" {
			if backend, err = cli.NewBackend(cfg.Sessions, logger); err != nil {
				return err
			}
			defer backend.Close()
		} else {
			sessionID = uuid.NewString()
		}

		rec := memory.NewRecorder()
		mgr := cli.NewManager(backend, reg, cfg.Sessions.LockTTL, logger,
			engine.WithDisplay(display),
			engine.WithRecorder(rec),
			engine.WithLifecycleHooks(observability.LogHooks(logger)),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fresh, _ := cmd.Flags().GetBool("fresh")
		_, err = cli.Play(ctx, mgr, cli.PlayOptions{
			Script:    name,
			SessionID: sessionID,
			Fresh:     fresh,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
			Display:   display,
		})
		if errors.Is(err, cli.ErrInterrupted) {
			fmt.Fprintf(cmd.OutOrStdout(), "\n>>> Paused. Session '%s' saved.\n", sessionID)
			return nil
		}
		if err != nil {
			return err
		}

		if correct, total := rec.Score(sessionID); total > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ">>> Score: %d/%d\n", correct, total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("session", "", "Session ID to save and resume progress under")
	playCmd.Flags().Bool("fresh", false, "Start the session over")
}
