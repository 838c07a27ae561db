package script_test

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `{
  "title": { "en": "Difficult customer", "fr": "Client difficile" },
  "startNodeId": "n1",
  "nodes": [
    { "id": "n1", "type": "start", "nextNodeId": "n2" },
    { "id": "n2", "type": "dialogue",
      "speaker": {"en": "Customer", "fr": "Client"},
      "text": {"en": "This is broken.", "fr": "C'est cassé."},
      "nextNodeId": "n3" },
    { "id": "n3", "type": "choice",
      "text": {"en": "How do you answer?", "fr": "Que répondez-vous ?"},
      "choices": [
        {"id": "c1", "text": {"en":"I'll help","fr":"Je vais aider"}, "isCorrect": true,  "nextNodeId": "n4"},
        {"id": "c2", "text": {"en":"Not my job","fr":"Pas mon travail"}, "nextNodeId": "n2"}
      ] },
    { "id": "n4", "type": "end" }
  ]
}`

func TestUnmarshal_RuntimeSchema(t *testing.T) {
	s, err := script.Unmarshal([]byte(sampleScript))
	require.NoError(t, err)

	assert.Equal(t, "n1", s.StartNodeID())
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, s.NodeIDs())
	assert.Equal(t, "Client difficile", s.Title()[domain.LangFR])

	choice, ok := s.Node("n3")
	require.True(t, ok)
	assert.Equal(t, domain.KindChoice, choice.Type)

	c2, ok := choice.Choice("c2")
	require.True(t, ok)
	assert.False(t, c2.IsCorrect, "absent isCorrect defaults to false")
	assert.Equal(t, "n2", c2.NextNodeID)

	assert.Empty(t, s.Validate())
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"startNodeId": `},
		{"unknown type", `{"startNodeId":"a","nodes":[{"id":"a","type":"narration"}]}`},
		{"duplicate ids", `{"startNodeId":"a","nodes":[{"id":"a","type":"start"},{"id":"a","type":"end"}]}`},
		{"missing id", `{"startNodeId":"a","nodes":[{"type":"end"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := script.Unmarshal([]byte(tt.data))
			var parseErr *domain.GraphParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	s, err := script.Unmarshal([]byte(sampleScript))
	require.NoError(t, err)

	first, err := script.Marshal(s)
	require.NoError(t, err)
	second, err := script.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	again, err := script.Unmarshal(first)
	require.NoError(t, err)
	third, err := script.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))
}

func TestScript_IsImmutable(t *testing.T) {
	s, err := script.Unmarshal([]byte(sampleScript))
	require.NoError(t, err)

	n, _ := s.Node("n2")
	n.Text[domain.LangEN] = "mutated"
	n.NextNodeID = "n4"

	fresh, _ := s.Node("n2")
	assert.Equal(t, "This is broken.", fresh.Text[domain.LangEN])
	assert.Equal(t, "n3", fresh.NextNodeID)
}

func TestValidate_DanglingNextNode(t *testing.T) {
	s, err := script.New(nil, "s", []script.Node{
		{ID: "s", Type: domain.KindStart, NextNodeID: "gone"},
		{ID: "c", Type: domain.KindChoice, Choices: []script.Choice{{ID: "x", NextNodeID: "nowhere"}}},
	})
	require.NoError(t, err)

	vs := s.Validate()
	require.Len(t, vs, 2)
	var dangling *domain.DanglingReferenceError
	require.True(t, vs.Has(&dangling))
	assert.Equal(t, "gone", dangling.TargetID)
}
