// Package metrics exports playback activity as Prometheus metrics.
//
// Collector is both a ports.AnalyticsRecorder (choice outcomes) and a source
// of engine lifecycle hooks (node visits, session ends, anomalies).
package metrics

import (
	"context"
	"strconv"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the parley metric families.
type Collector struct {
	choices   *prometheus.CounterVec
	visits    *prometheus.CounterVec
	ended     prometheus.Counter
	started   prometheus.Counter
	anomalies prometheus.Counter
}

// New creates the metric families and registers them on reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		choices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_choices_total",
				Help: "Total number of choices made, by node, correctness and classification",
			},
			[]string{"node_id", "correct", "classification"},
		),
		visits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"node_id", "node_type"},
		),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_sessions_started_total",
			Help: "Total number of sessions that entered their start node",
		}),
		ended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_sessions_ended_total",
			Help: "Total number of sessions that reached an end node",
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_anomalies_total",
			Help: "Total number of playback anomalies (broken references, invalid choices)",
		}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.choices, c.visits, c.started, c.ended, c.anomalies} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// RecordChoice implements ports.AnalyticsRecorder.
func (c *Collector) RecordChoice(ctx context.Context, e domain.ChoiceEvent) error {
	c.choices.WithLabelValues(e.NodeID, strconv.FormatBool(e.WasCorrect), string(e.Classification)).Inc()
	return nil
}

// Hooks returns lifecycle hooks feeding the collector. Combine them with
// other hooks via Chain.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			c.visits.WithLabelValues(e.NodeID, string(e.NodeType)).Inc()
			switch e.NodeType {
			case domain.KindStart:
				c.started.Inc()
			case domain.KindEnd:
				c.ended.Inc()
			}
		},
		OnAnomaly: func(ctx context.Context, a *domain.Anomaly) {
			c.anomalies.Inc()
		},
	}
}

// Chain merges several hook sets; each callback runs in argument order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnNodeEnter = chainNode(out.OnNodeEnter, h.OnNodeEnter)
		out.OnNodeLeave = chainNode(out.OnNodeLeave, h.OnNodeLeave)
		out.OnChoice = chainChoice(out.OnChoice, h.OnChoice)
		out.OnAnomaly = chainAnomaly(out.OnAnomaly, h.OnAnomaly)
	}
	return out
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainChoice(a, b func(context.Context, *domain.ChoiceEvent)) func(context.Context, *domain.ChoiceEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.ChoiceEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainAnomaly(a, b func(context.Context, *domain.Anomaly)) func(context.Context, *domain.Anomaly) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.Anomaly) {
		a(ctx, e)
		b(ctx, e)
	}
}
