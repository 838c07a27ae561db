package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	pgraph "github.com/aretw0/parley/pkg/graph"
	"github.com/stretchr/testify/assert"
)

func customerDocument() *pgraph.Document {
	b := dsl.New()
	b.Add("n1").Start().Go("n2")
	b.Add("n2").Dialogue(domain.Bilingual("Customer", "Client"), domain.Bilingual("This is broken.", "C'est cassé.")).Go("n3")
	b.Add("n3").Choice(domain.Bilingual("How do you answer?", "Que répondez-vous ?")).
		Correct("c1", domain.Bilingual("I'll help", "Je vais aider"), "n4").
		Wrong("c2", domain.Bilingual("Not my job", "Pas mon travail"), "n2")
	b.Add("n4").End()
	return b.MustBuild()
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		opts     graph.Options
		contains []string
	}{
		{
			name: "Node Shapes",
			contains: []string{
				`n1(("n1"))`,
				`n2["Customer: This is broken."]`,
				`n3{"How do you answer?"}`,
				`n4(["n4"])`,
			},
		},
		{
			name: "Choice Edges",
			contains: []string{
				"n1 --> n2",
				`n3 -- "✓ I'll help" --> n4`,
				`n3 -- "Not my job" --> n2`,
			},
		},
		{
			name: "Language",
			opts: graph.Options{Lang: domain.LangFR},
			contains: []string{
				`n2["Client: C'est cassé."]`,
				`n3 -- "✓ Je vais aider" --> n4`,
			},
		},
		{
			name: "Overlay",
			opts: graph.Options{Overlay: &graph.GraphOverlay{VisitedNodes: []string{"n1", "n2", "n2"}, CurrentNode: "n3"}},
			contains: []string{
				"class n1 visited;",
				"class n3 current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(customerDocument(), tt.opts)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestGenerateMermaid_OverlayDeduplicates(t *testing.T) {
	got := graph.GenerateMermaid(customerDocument(), graph.Options{
		Overlay: &graph.GraphOverlay{VisitedNodes: []string{"n2", "n2"}},
	})
	assert.Equal(t, 1, strings.Count(got, "class n2 visited;"))
}

func TestGenerateMermaid_DanglingAndEscaping(t *testing.T) {
	doc := pgraph.New()
	_ = doc.InsertNode(domain.Node{ID: "a.b", Payload: domain.DialoguePayload{Text: domain.Text{"en": `Say "hi"`}}})
	doc.AppendEdge(domain.Edge{FromNodeID: "a.b", FromPortName: domain.PortOutput, ToNodeID: "ghost", ToPortName: domain.PortInput})

	got := graph.GenerateMermaid(doc, graph.Options{})
	assert.Contains(t, got, `a_b["Say #quot;hi#quot;"]`)
	assert.Contains(t, got, `ghost["ghost ?"]:::missing`)
	assert.Contains(t, got, "a_b --> ghost")
	assert.Contains(t, got, "classDef missing")
}

func TestGenerateMermaid_TruncatesLongLabels(t *testing.T) {
	doc := pgraph.New()
	_ = doc.InsertNode(domain.Node{ID: "d", Payload: domain.DialoguePayload{Text: domain.Text{"en": strings.Repeat("x", 100)}}})

	got := graph.GenerateMermaid(doc, graph.Options{})
	assert.Contains(t, got, strings.Repeat("x", 39)+"…")
	assert.NotContains(t, got, strings.Repeat("x", 40))
}
