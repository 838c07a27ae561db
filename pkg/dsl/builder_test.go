package dsl

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_BranchingDialogue(t *testing.T) {
	b := New().Title(domain.Bilingual("Onboarding", "Accueil"))

	b.Add("start").Start().Go("greet")

	b.Add("greet").
		Dialogue(domain.Bilingual("Manager", "Gestionnaire"), domain.Bilingual("Welcome!", "Bienvenue !")).
		Go("ask")

	b.Add("ask").
		Choice(domain.Bilingual("What now?", "Et maintenant ?")).
		Correct("c1", domain.Bilingual("Read the handbook", "Lire le guide"), "end").
		Wrong("c2", domain.Bilingual("Leave", "Partir"), "greet")

	b.Add("end").End()

	doc, err := b.Build()
	require.NoError(t, err)

	nodes := doc.Nodes()
	require.Len(t, nodes, 4)
	assert.Equal(t, []string{"start", "greet", "ask", "end"}, []string{nodes[0].ID, nodes[1].ID, nodes[2].ID, nodes[3].ID})
	assert.Equal(t, "Accueil", doc.Title[domain.LangFR])

	ask := nodes[2].Payload.(domain.ChoicePayload)
	require.Len(t, ask.Choices, 2)
	assert.True(t, ask.Choices[0].IsCorrect)
	assert.False(t, ask.Choices[1].IsCorrect)

	loop, ok := doc.EdgeFrom("ask", domain.ChoicePort("c2"))
	require.True(t, ok)
	assert.Equal(t, "greet", loop.ToNodeID)

	assert.Empty(t, doc.Validate())
}

func TestBuilder_UnknownTarget(t *testing.T) {
	b := New()
	b.Add("start").Start().Go("nowhere")

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	first := b.Add("n1").Start()
	assert.Same(t, first, b.Add("n1"))
}

func TestBuilder_OptionWithoutTarget(t *testing.T) {
	b := New()
	b.Add("s").Start().Go("c")
	b.Add("c").Choice(nil).Option("c1", nil, false, "")

	doc, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, doc.Edges(), 1)
}
