package dsl

import "github.com/aretw0/parley/pkg/domain"

type link struct {
	port   string
	target string
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	links   []link
	builder *Builder
}

// Start marks the node as the entry point.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node.Payload = domain.StartPayload{}
	return n
}

// Dialogue makes the node a line said by speaker.
func (n *NodeBuilder) Dialogue(speaker, text domain.Text) *NodeBuilder {
	n.node.Payload = domain.DialoguePayload{Speaker: speaker, Text: text}
	return n
}

// Choice makes the node a prompt. Add options with Option, Correct or Wrong.
func (n *NodeBuilder) Choice(prompt domain.Text) *NodeBuilder {
	p, _ := n.node.Payload.(domain.ChoicePayload)
	p.Prompt = prompt
	n.node.Payload = p
	return n
}

// Option appends a choice routed to target. An empty target leaves the port unconnected.
func (n *NodeBuilder) Option(id string, text domain.Text, correct bool, target string) *NodeBuilder {
	p, _ := n.node.Payload.(domain.ChoicePayload)
	choice := domain.Choice{ID: id, Text: text, IsCorrect: correct}
	p.Choices = append(p.Choices, choice)
	n.node.Payload = p
	if target != "" {
		n.links = append(n.links, link{port: choice.Port(), target: target})
	}
	return n
}

// Correct appends a choice marked as correct.
func (n *NodeBuilder) Correct(id string, text domain.Text, target string) *NodeBuilder {
	return n.Option(id, text, true, target)
}

// Wrong appends a choice marked as incorrect.
func (n *NodeBuilder) Wrong(id string, text domain.Text, target string) *NodeBuilder {
	return n.Option(id, text, false, target)
}

// End marks the node as terminal (the default).
func (n *NodeBuilder) End() *NodeBuilder {
	n.node.Payload = domain.EndPayload{}
	n.links = nil
	return n
}

// Go connects the output port of a start or dialogue node to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.links = append(n.links, link{port: domain.PortOutput, target: target})
	return n
}

// At sets the canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
