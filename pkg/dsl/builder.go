package dsl

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
)

// Builder manages the document construction.
type Builder struct {
	title domain.Text
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new document builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Title sets the document title.
func (b *Builder) Title(title domain.Text) *Builder {
	b.title = title
	return b
}

// Add creates a new node in the document.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:      id,
			Payload: domain.EndPayload{},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build assembles the document. Nodes keep the order in which they were added.
// Edges are checked as they are added, so a transition to an unknown node is an error.
func (b *Builder) Build() (*graph.Document, error) {
	doc := graph.New()
	doc.SetTitle(b.title)

	for _, id := range b.order {
		if err := doc.InsertNode(b.nodes[id].node); err != nil {
			return nil, fmt.Errorf("failed to add node %s: %w", id, err)
		}
	}

	for _, id := range b.order {
		for _, l := range b.nodes[id].links {
			if err := doc.AddEdge(id, l.port, l.target); err != nil {
				return nil, fmt.Errorf("failed to connect %s:%s -> %s: %w", id, l.port, l.target, err)
			}
		}
	}

	return doc, nil
}

// MustBuild is like Build but panics on error. Intended for tests and fixtures.
func (b *Builder) MustBuild() *graph.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
