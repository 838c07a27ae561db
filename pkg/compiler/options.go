// Package compiler converts between the authoring graph (graph.Document) and
// the runtime script (script.Script).
//
// Compile is strict: a document with any error-severity violation is refused
// with a *domain.ValidationError listing them all. Import is best-effort: it
// accepts either schema and rebuilds an authoring document, regenerating node
// positions when they are not available.
//
// Both directions are pure functions of their input.
package compiler

import (
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// Option configures Compile and Import.
type Option func(*config)

type config struct {
	logger *slog.Logger
	layout Layout
}

func newConfig(opts []Option) config {
	cfg := config{
		logger: logging.NewNop(),
		layout: DefaultLayout(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger used to report warnings (e.g. unreachable nodes).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLayout overrides the auto-layout used when importing runtime scripts.
func WithLayout(l Layout) Option {
	return func(c *config) {
		c.layout = l
	}
}

// Layout places imported nodes that carry no position.
// The start node is pinned to Anchor; every other node goes in a single
// column at ColumnX, one row per node in list order.
type Layout struct {
	Anchor  domain.Position `yaml:"anchor" mapstructure:"anchor"`
	ColumnX float64         `yaml:"column_x" mapstructure:"column_x"`
	OriginY float64         `yaml:"origin_y" mapstructure:"origin_y"`
	Spacing float64         `yaml:"spacing" mapstructure:"spacing"`
}

// DefaultLayout returns the layout used when none is configured.
func DefaultLayout() Layout {
	return Layout{
		Anchor:  domain.Position{X: 100, Y: 100},
		ColumnX: 400,
		OriginY: 100,
		Spacing: 150,
	}
}

// Place returns the position of a node. row counts the non-start nodes placed before it.
func (l Layout) Place(kind domain.NodeKind, row int) domain.Position {
	if kind == domain.KindStart {
		return l.Anchor
	}
	return domain.Position{X: l.ColumnX, Y: l.OriginY + float64(row)*l.Spacing}
}
