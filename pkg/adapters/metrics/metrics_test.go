package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/metrics"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/engine"
	"github.com/aretw0/parley/pkg/script"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quiz = `{"startNodeId": "s", "nodes": [
  {"id": "s", "type": "start", "nextNodeId": "q"},
  {"id": "q", "type": "choice", "choices": [
    {"id": "right", "isCorrect": true, "nextNodeId": "e"},
    {"id": "wrong", "nextNodeId": "q"}
  ]},
  {"id": "e", "type": "end"}
]}`

func TestCollector_WithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	s, err := script.Unmarshal([]byte(quiz))
	require.NoError(t, err)

	ctx := context.Background()
	e := engine.New(s, engine.WithRecorder(c), engine.WithLifecycleHooks(c.Hooks()))
	_, err = e.Start(ctx)
	require.NoError(t, err)
	_, _, err = e.Choose(ctx, "wrong")
	require.NoError(t, err)
	_, _, err = e.Choose(ctx, "nope")
	require.Error(t, err)
	_, _, err = e.Choose(ctx, "right")
	require.NoError(t, err)

	expected := `
# HELP parley_choices_total Total number of choices made, by node, correctness and classification
# TYPE parley_choices_total counter
parley_choices_total{classification="evaluated",correct="false",node_id="q"} 1
parley_choices_total{classification="evaluated",correct="true",node_id="q"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "parley_choices_total"))

	expectedVisits := `
# HELP parley_node_visits_total Total number of node visits
# TYPE parley_node_visits_total counter
parley_node_visits_total{node_id="e",node_type="end"} 1
parley_node_visits_total{node_id="q",node_type="choice"} 2
parley_node_visits_total{node_id="s",node_type="start"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expectedVisits), "parley_node_visits_total"))

	count, err := testutil.GatherAndCount(reg, "parley_sessions_started_total", "parley_sessions_ended_total", "parley_anomalies_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnNodeEnter: func(context.Context, *domain.NodeEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { order = append(order, "b") },
		OnChoice:    func(context.Context, *domain.ChoiceEvent) { order = append(order, "choice") },
	}

	h := metrics.Chain(a, domain.LifecycleHooks{}, b)
	h.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	h.OnChoice(context.Background(), &domain.ChoiceEvent{})

	assert.Equal(t, []string{"a", "b", "choice"}, order)
	assert.Nil(t, h.OnNodeLeave)
}
