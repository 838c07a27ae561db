package graph_test

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_TwoStartNodes(t *testing.T) {
	doc := graph.NewWithDefaults()
	_, err := doc.AddNode(domain.KindStart, domain.Position{})
	require.NoError(t, err)

	vs := doc.Validate()

	var missing *domain.MissingStartNodeError
	require.True(t, vs.Has(&missing))
	assert.Equal(t, 2, missing.Count)
	assert.True(t, vs.HasErrors())
}

func TestValidate_NoStartNode(t *testing.T) {
	doc := graph.New()
	_, _ = doc.AddNode(domain.KindEnd, domain.Position{})

	var missing *domain.MissingStartNodeError
	require.True(t, doc.Validate().Has(&missing))
	assert.Equal(t, 0, missing.Count)
}

func TestValidate_DanglingEdgeAfterDeletion(t *testing.T) {
	doc := graph.New()
	require.NoError(t, doc.InsertNode(domain.Node{ID: "n1", Payload: domain.StartPayload{}}))
	doc.AppendEdge(domain.Edge{FromNodeID: "n1", FromPortName: domain.PortOutput, ToNodeID: "deleted", ToPortName: domain.PortInput})

	var dangling *domain.DanglingReferenceError
	require.True(t, doc.Validate().Has(&dangling))
	assert.Equal(t, "n1", dangling.NodeID)
	assert.Equal(t, "deleted", dangling.TargetID)
}

func TestValidate_EmptyAndDuplicateChoices(t *testing.T) {
	doc := graph.NewWithDefaults()
	require.NoError(t, doc.InsertNode(domain.Node{ID: "empty", Payload: domain.ChoicePayload{}}))
	require.NoError(t, doc.InsertNode(domain.Node{ID: "dup", Payload: domain.ChoicePayload{
		Choices: []domain.Choice{{ID: "a"}, {ID: "a"}},
	}}))

	vs := doc.Validate()

	var empty *domain.EmptyChoiceNodeError
	require.True(t, vs.Has(&empty))
	assert.Equal(t, "empty", empty.NodeID)

	var dup *domain.DuplicateChoiceError
	require.True(t, vs.Has(&dup))
	assert.Equal(t, "a", dup.ChoiceID)
}

func TestValidate_PortRules(t *testing.T) {
	doc := graph.New()
	require.NoError(t, doc.InsertNode(domain.Node{ID: "s", Payload: domain.StartPayload{}}))
	require.NoError(t, doc.InsertNode(domain.Node{ID: "e", Payload: domain.EndPayload{}}))
	doc.AppendEdge(domain.Edge{FromNodeID: "s", FromPortName: domain.PortOutput, ToNodeID: "e", ToPortName: domain.PortInput})
	doc.AppendEdge(domain.Edge{FromNodeID: "s", FromPortName: domain.PortOutput, ToNodeID: "e", ToPortName: domain.PortInput})
	doc.AppendEdge(domain.Edge{FromNodeID: "e", FromPortName: domain.PortOutput, ToNodeID: "s", ToPortName: domain.PortInput})

	vs := doc.Validate()

	var portErr *domain.InvalidPortError
	require.True(t, vs.Has(&portErr))
	assert.Contains(t, portErr.Reason, "more than one edge")

	var endErr *domain.EndNodeEdgeError
	assert.True(t, vs.Has(&endErr))
}

func TestValidate_UnreachableIsWarning(t *testing.T) {
	doc := graph.NewWithDefaults()
	orphan, _ := doc.AddNode(domain.KindDialogue, domain.Position{})

	vs := doc.Validate()

	assert.False(t, vs.HasErrors())
	require.Len(t, vs.Warnings(), 1)
	var unreachable *domain.UnreachableNodeError
	require.True(t, vs.Has(&unreachable))
	assert.Equal(t, orphan, unreachable.NodeID)
}

func TestValidate_CyclesAreAllowed(t *testing.T) {
	doc := graph.New()
	require.NoError(t, doc.InsertNode(domain.Node{ID: "n1", Payload: domain.StartPayload{}}))
	require.NoError(t, doc.InsertNode(domain.Node{ID: "n2", Payload: domain.DialoguePayload{}}))
	require.NoError(t, doc.InsertNode(domain.Node{ID: "n3", Payload: domain.ChoicePayload{
		Choices: []domain.Choice{{ID: "c1", IsCorrect: true}, {ID: "c2"}},
	}}))
	require.NoError(t, doc.InsertNode(domain.Node{ID: "n4", Payload: domain.EndPayload{}}))
	require.NoError(t, doc.AddEdge("n1", domain.PortOutput, "n2"))
	require.NoError(t, doc.AddEdge("n2", domain.PortOutput, "n3"))
	require.NoError(t, doc.AddEdge("n3", domain.ChoicePort("c1"), "n4"))
	require.NoError(t, doc.AddEdge("n3", domain.ChoicePort("c2"), "n2"))

	assert.Empty(t, doc.Validate())
}
