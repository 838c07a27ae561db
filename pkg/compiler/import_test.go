package compiler_test

import (
	"testing"

	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runtimeSample = `{
  "title": {"en": "Difficult customer", "fr": "Client difficile"},
  "startNodeId": "n1",
  "nodes": [
    {"id": "n1", "type": "start", "nextNodeId": "n2"},
    {"id": "n2", "type": "dialogue",
     "speaker": {"en": "Customer", "fr": "Client"},
     "text": {"en": "This is broken.", "fr": "C'est cassé."},
     "nextNodeId": "n3"},
    {"id": "n3", "type": "choice",
     "text": {"en": "How do you answer?", "fr": "Que répondez-vous ?"},
     "choices": [
       {"id": "c1", "text": {"en": "I'll help", "fr": "Je vais aider"}, "isCorrect": true, "nextNodeId": "n4"},
       {"id": "c2", "text": {"en": "Not my job", "fr": "Pas mon travail"}, "isCorrect": false, "nextNodeId": "n2"}
     ]},
    {"id": "n4", "type": "end"}
  ]
}`

func TestImport_RuntimeSchema(t *testing.T) {
	doc, err := compiler.Import([]byte(runtimeSample))
	require.NoError(t, err)

	require.Equal(t, 4, doc.Len())
	assert.Len(t, doc.Edges(), 4)
	assert.Equal(t, "Client difficile", doc.Title[domain.LangFR])

	choice, ok := doc.Node("n3")
	require.True(t, ok)
	p := choice.Payload.(domain.ChoicePayload)
	assert.Equal(t, "How do you answer?", p.Prompt[domain.LangEN])
	require.Len(t, p.Choices, 2)
	assert.True(t, p.Choices[0].IsCorrect)

	loop, ok := doc.EdgeFrom("n3", domain.ChoicePort("c2"))
	require.True(t, ok)
	assert.Equal(t, "n2", loop.ToNodeID)
	assert.Equal(t, domain.PortInput, loop.ToPortName)

	assert.Empty(t, doc.Validate())
}

func TestImport_AutoLayout(t *testing.T) {
	doc, err := compiler.Import([]byte(runtimeSample))
	require.NoError(t, err)

	pos := func(id string) domain.Position {
		n, ok := doc.Node(id)
		require.True(t, ok)
		return n.Position
	}

	assert.Equal(t, domain.Position{X: 100, Y: 100}, pos("n1"))
	assert.Equal(t, domain.Position{X: 400, Y: 100}, pos("n2"))
	assert.Equal(t, domain.Position{X: 400, Y: 250}, pos("n3"))
	assert.Equal(t, domain.Position{X: 400, Y: 400}, pos("n4"))
}

func TestImport_CustomLayout(t *testing.T) {
	layout := compiler.Layout{Anchor: domain.Position{X: 0, Y: 0}, ColumnX: 50, OriginY: 10, Spacing: 20}
	doc, err := compiler.Import([]byte(runtimeSample), compiler.WithLayout(layout))
	require.NoError(t, err)

	n4, _ := doc.Node("n4")
	assert.Equal(t, domain.Position{X: 50, Y: 50}, n4.Position)
}

func TestImport_AuthoringSchemaKeepsPositions(t *testing.T) {
	data := `{
	  "title": {"en": "Tiny"},
	  "nodes": [
	    {"id": "s", "type": "start", "position": {"x": 12, "y": 34}},
	    {"id": "e", "type": "end", "position": {"x": 56, "y": 78}}
	  ],
	  "edges": [
	    {"fromNodeId": "s", "fromPortName": "output", "toNodeId": "e", "toPortName": "input"}
	  ]
	}`

	doc, err := compiler.Import([]byte(data))
	require.NoError(t, err)

	s, _ := doc.Node("s")
	assert.Equal(t, domain.Position{X: 12, Y: 34}, s.Position)
	e, _ := doc.Node("e")
	assert.Equal(t, domain.Position{X: 56, Y: 78}, e.Position)
	assert.Len(t, doc.Edges(), 1)
}

func TestImport_AuthoringCustomOutputPort(t *testing.T) {
	data := `{
	  "nodes": [
	    {"id": "s", "type": "start"},
	    {"id": "q", "type": "choice", "text": {"en": "?"},
	     "choices": [{"id": "yes", "text": {"en": "Yes"}, "isCorrect": true, "outputPort": "opt-a"}]},
	    {"id": "e", "type": "end"}
	  ],
	  "edges": [
	    {"fromNodeId": "s", "fromPortName": "output", "toNodeId": "q"},
	    {"fromNodeId": "q", "fromPortName": "opt-a", "toNodeId": "e"}
	  ]
	}`

	doc, err := compiler.Import([]byte(data))
	require.NoError(t, err)

	edge, ok := doc.EdgeFrom("q", domain.ChoicePort("yes"))
	require.True(t, ok, "custom port is rewritten to the canonical one")
	assert.Equal(t, "e", edge.ToNodeID)
	assert.Equal(t, domain.PortInput, edge.ToPortName, "missing target port defaults to input")

	s, err := compiler.Compile(doc)
	require.NoError(t, err)
	q, _ := s.Node("q")
	assert.Equal(t, "e", q.Choices[0].NextNodeID)
}

func TestImport_EmptyNodesFallsBackToRuntime(t *testing.T) {
	doc, err := compiler.Import([]byte(`{"nodes": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
}

func TestImport_DanglingReferenceSurvives(t *testing.T) {
	data := `{"startNodeId": "a", "nodes": [{"id": "a", "type": "start", "nextNodeId": "missing"}]}`

	doc, err := compiler.Import([]byte(data))
	require.NoError(t, err)

	vs := doc.Validate()
	var dangling *domain.DanglingReferenceError
	assert.True(t, vs.Has(&dangling))
}

func TestImport_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		schema string
	}{
		{"not json", `{"nodes": [`, "json"},
		{"authoring unknown type", `{"nodes": [{"id": "x", "type": "narration"}]}`, "authoring"},
		{"authoring duplicate ids", `{"nodes": [{"id": "x", "type": "end"}, {"id": "x", "type": "end"}]}`, "authoring"},
		{"runtime unknown type", `{"startNodeId": "x", "nodes": [{"id": "x", "type": "narration"}]}`, "runtime"},
		{"runtime wrong shape", `{"startNodeId": "x", "nodes": "nope"}`, "runtime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := compiler.Import([]byte(tt.data))
			require.Error(t, err)

			var parseErr *domain.GraphParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.schema, parseErr.Schema)

			require.NotNil(t, doc, "a failed import still yields an empty document")
			assert.Equal(t, 0, doc.Len())
		})
	}
}

func TestImportScript(t *testing.T) {
	doc, err := compiler.ImportScript([]byte(runtimeSample))
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Len())

	_, err = compiler.ImportScript([]byte(`[]`))
	assert.Error(t, err)
}
