// Package tui renders playback units in a terminal.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/muesli/termenv"
)

// Display writes units as rendered markdown and colours choice feedback.
// It implements ports.Display.
type Display struct {
	out      *termenv.Output
	w        io.Writer
	render   func(string) (string, error)
	locale   ports.LocaleProvider
	fallback string

	evaluatedDelay time.Duration
	neutralDelay   time.Duration
}

// DisplayOption configures a Display.
type DisplayOption func(*Display)

// WithLocale selects the language texts are resolved in and the fallback language.
func WithLocale(locale ports.LocaleProvider, fallback string) DisplayOption {
	return func(d *Display) {
		d.locale = locale
		if fallback != "" {
			d.fallback = fallback
		}
	}
}

// WithFeedbackDelays sets how long feedback stays before the next unit.
func WithFeedbackDelays(evaluated, neutral time.Duration) DisplayOption {
	return func(d *Display) {
		d.evaluatedDelay = evaluated
		d.neutralDelay = neutral
	}
}

// WithProfile forces a colour profile (termenv.Ascii disables colours).
func WithProfile(p termenv.Profile) DisplayOption {
	return func(d *Display) {
		d.out = termenv.NewOutput(d.w, termenv.WithProfile(p))
	}
}

// NewDisplay creates a display writing to w. render turns markdown into
// terminal text; see NewRenderer.
func NewDisplay(w io.Writer, render func(string) (string, error), opts ...DisplayOption) *Display {
	d := &Display{
		out:      termenv.NewOutput(w),
		w:        w,
		render:   render,
		fallback: domain.LangEN,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Render shows a dialogue line, a choice with its context, or the end.
func (d *Display) Render(ctx context.Context, u domain.Unit) error {
	var md strings.Builder
	switch u.Kind {
	case domain.UnitDialogue:
		md.WriteString(d.line(u.Line))
		md.WriteString("\n")
	case domain.UnitChoice:
		if u.Context != nil {
			md.WriteString("> " + d.line(u.Context) + "\n\n")
		}
		if prompt := d.text(u.Prompt); prompt != "" {
			md.WriteString("### " + prompt + "\n\n")
		}
		for i, c := range u.Choices {
			fmt.Fprintf(&md, "%d. %s\n", i+1, d.text(c.Text))
		}
	case domain.UnitEnded:
		md.WriteString("*End of conversation.*\n")
	default:
		return nil
	}

	rendered, err := d.render(md.String())
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(d.w, rendered)
	return err
}

// Feedback acknowledges a choice, then waits for the configured delay.
// Evaluated choices are marked right or wrong; neutral ones get a quiet nod.
func (d *Display) Feedback(ctx context.Context, fb domain.Feedback) error {
	var msg termenv.Style
	delay := d.neutralDelay
	switch {
	case fb.Classification == domain.Neutral:
		msg = d.out.String("  ·  noted").Faint()
	case fb.ChosenIsCorrect:
		msg = d.out.String("  ✔ Correct").Foreground(d.out.Color("#22c55e")).Bold()
		delay = d.evaluatedDelay
	default:
		msg = d.out.String("  ✘ Not quite").Foreground(d.out.Color("#ef4444")).Bold()
		delay = d.evaluatedDelay
	}
	if _, err := fmt.Fprintln(d.w, msg); err != nil {
		return err
	}
	return sleep(ctx, delay)
}

func (d *Display) lang() string {
	if d.locale == nil {
		return d.fallback
	}
	return d.locale.Language()
}

func (d *Display) text(t domain.Text) string {
	return t.Resolve(d.lang(), d.fallback)
}

func (d *Display) line(l *domain.DialogueLine) string {
	if l == nil {
		return ""
	}
	text := d.text(l.Text)
	if speaker := d.text(l.Speaker); speaker != "" {
		return "**" + speaker + ":** " + text
	}
	return text
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrNoChoice is returned by ReadChoice when the input ends before a valid pick.
var ErrNoChoice = errors.New("no choice made")

// ReadChoice prompts until the user picks an option of u, by number or by id.
func ReadChoice(r *bufio.Reader, w io.Writer, u domain.Unit) (string, error) {
	for {
		fmt.Fprintf(w, "> ")
		input, err := r.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if n, convErr := strconv.Atoi(input); convErr == nil && n >= 1 && n <= len(u.Choices) {
				return u.Choices[n-1].ID, nil
			}
			for _, c := range u.Choices {
				if c.ID == input {
					return c.ID, nil
				}
			}
			fmt.Fprintf(w, "Pick a number between 1 and %d.\n", len(u.Choices))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrNoChoice
			}
			return "", err
		}
	}
}
