package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
)

// ErrInterrupted reports that input ended before the session did.
// The session stays saved at its current unit.
var ErrInterrupted = errors.New("playback interrupted")

// PlayOptions configures an interactive playback.
type PlayOptions struct {
	Script    string // registry name
	SessionID string
	Fresh     bool // discard a saved session with the same ID
	In        io.Reader
	Out       io.Writer
	// Display must be the one the manager's engines render to; it is used
	// directly only to show the unit of a resumed session.
	Display ports.Display
}

// Play runs a session to its end, reading Enter to advance and a number or
// choice id to choose. A saved session with the same ID is resumed.
func Play(ctx context.Context, mgr *session.Manager, opts PlayOptions) (*domain.SessionState, error) {
	in := bufio.NewReader(opts.In)

	if opts.Fresh {
		if err := mgr.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to reset session: %w", err)
		}
	}

	state, unit, err := mgr.Current(ctx, opts.SessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		state, unit, err = mgr.Start(ctx, opts.SessionID, opts.Script)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if state.ScriptID != "" && state.ScriptID != opts.Script {
			return state, fmt.Errorf("session %s plays %q, not %q", opts.SessionID, state.ScriptID, opts.Script)
		}
		printSystemMessage(opts.Out, "Resuming session '%s' at '%s'.", opts.SessionID, state.CurrentNodeID)
		if opts.Display != nil {
			if err := opts.Display.Render(ctx, unit); err != nil {
				return state, err
			}
		}
	}

	for !unit.Ended() {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		switch unit.Kind {
		case domain.UnitDialogue:
			if err := waitForEnter(in, opts.Out); err != nil {
				return state, err
			}
			state, unit, err = mgr.Advance(ctx, opts.SessionID)
		case domain.UnitChoice:
			var choiceID string
			choiceID, err = tui.ReadChoice(in, opts.Out, unit)
			if errors.Is(err, tui.ErrNoChoice) {
				return state, ErrInterrupted
			}
			if err != nil {
				return state, err
			}
			state, _, unit, err = mgr.Choose(ctx, opts.SessionID, choiceID)
		default:
			return state, fmt.Errorf("session %s is not started", opts.SessionID)
		}
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func waitForEnter(in *bufio.Reader, out io.Writer) error {
	fmt.Fprint(out, "[enter] ")
	if _, err := in.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInterrupted
		}
		return err
	}
	return nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
