package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Option configures an Engine.
type Option func(*Engine)

// WithSessionID tags events and anomalies with a session ID.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithDisplay attaches the surface that renders units and choice feedback.
func WithDisplay(d ports.Display) Option {
	return func(e *Engine) {
		e.display = d
	}
}

// WithRecorder attaches the analytics sink for choice outcomes.
func WithRecorder(r ports.AnalyticsRecorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithAnomalyHandler registers a callback for runtime problems that did not stop playback.
// It is called in addition to hooks.OnAnomaly.
func WithAnomalyHandler(fn func(context.Context, *domain.Anomaly)) Option {
	return func(e *Engine) {
		e.onAnomaly = fn
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func defaults(e *Engine) {
	e.logger = logging.NewNop()
	e.now = time.Now
}
