package domain

import (
	"fmt"
	"strings"
)

// NodeKind is the closed set of node types.
type NodeKind string

const (
	// KindStart marks the entry point. It is never displayed.
	KindStart NodeKind = "start"
	// KindDialogue shows a speaker line and waits for Advance.
	KindDialogue NodeKind = "dialogue"
	// KindChoice shows a prompt with options and waits for Choose.
	KindChoice NodeKind = "choice"
	// KindEnd terminates the session.
	KindEnd NodeKind = "end"
)

// ParseNodeKind converts a wire tag into a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	switch k := NodeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindStart, KindDialogue, KindChoice, KindEnd:
		return k, nil
	default:
		return "", fmt.Errorf("unknown node type %q", s)
	}
}

// Port names.
const (
	// PortOutput is the single output port of start and dialogue nodes.
	PortOutput = "output"
	// PortInput is the only input port of every node.
	PortInput = "input"
	// choicePortPrefix prefixes the per-choice output ports of choice nodes.
	choicePortPrefix = "choice_"
)

// ChoicePort returns the output port name owned by the given choice id.
func ChoicePort(choiceID string) string {
	return choicePortPrefix + choiceID
}

// ChoiceIDFromPort extracts the choice id from a choice port name.
func ChoiceIDFromPort(port string) (string, bool) {
	if !strings.HasPrefix(port, choicePortPrefix) || len(port) == len(choicePortPrefix) {
		return "", false
	}
	return port[len(choicePortPrefix):], true
}

// Position is the canvas location of a node. It has no runtime meaning.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Payload is the type-specific content of a node.
// The interface is sealed: only the four payloads in this package implement it.
type Payload interface {
	Kind() NodeKind
	clonePayload() Payload
}

// StartPayload is the (empty) payload of the entry node.
type StartPayload struct{}

// DialoguePayload is a line said by a speaker.
type DialoguePayload struct {
	Speaker Text
	Text    Text
}

// ChoicePayload is a prompt followed by ordered options.
type ChoicePayload struct {
	Prompt  Text
	Choices []Choice
}

// EndPayload is the (empty) payload of a terminal node.
type EndPayload struct{}

func (StartPayload) Kind() NodeKind    { return KindStart }
func (DialoguePayload) Kind() NodeKind { return KindDialogue }
func (ChoicePayload) Kind() NodeKind   { return KindChoice }
func (EndPayload) Kind() NodeKind      { return KindEnd }

func (p StartPayload) clonePayload() Payload { return p }
func (p EndPayload) clonePayload() Payload   { return p }

func (p DialoguePayload) clonePayload() Payload {
	return DialoguePayload{Speaker: p.Speaker.Clone(), Text: p.Text.Clone()}
}

func (p ChoicePayload) clonePayload() Payload {
	choices := make([]Choice, len(p.Choices))
	for i, c := range p.Choices {
		choices[i] = c.Clone()
	}
	return ChoicePayload{Prompt: p.Prompt.Clone(), Choices: choices}
}

// NewPayload returns the zero payload for a kind.
func NewPayload(kind NodeKind) (Payload, error) {
	switch kind {
	case KindStart:
		return StartPayload{}, nil
	case KindDialogue:
		return DialoguePayload{}, nil
	case KindChoice:
		return ChoicePayload{}, nil
	case KindEnd:
		return EndPayload{}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", kind)
	}
}

// Choice is one option of a choice node.
type Choice struct {
	ID        string
	Text      Text
	IsCorrect bool
}

// Port returns the output port this choice routes through.
func (c Choice) Port() string {
	return ChoicePort(c.ID)
}

// Clone returns an independent copy.
func (c Choice) Clone() Choice {
	c.Text = c.Text.Clone()
	return c
}

// Node is a single unit of the authoring graph.
type Node struct {
	ID       string
	Position Position
	Payload  Payload
}

// Kind returns the node type, or "" when the payload is missing.
func (n Node) Kind() NodeKind {
	if n.Payload == nil {
		return ""
	}
	return n.Payload.Kind()
}

// OutputPorts lists the ports a node may route from, in choice order.
func (n Node) OutputPorts() []string {
	switch p := n.Payload.(type) {
	case StartPayload, DialoguePayload:
		return []string{PortOutput}
	case ChoicePayload:
		ports := make([]string, len(p.Choices))
		for i, c := range p.Choices {
			ports[i] = c.Port()
		}
		return ports
	default:
		return nil
	}
}

// HasOutputPort reports whether port is owned by the node.
func (n Node) HasOutputPort(port string) bool {
	for _, p := range n.OutputPorts() {
		if p == port {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (n Node) Clone() Node {
	if n.Payload != nil {
		n.Payload = n.Payload.clonePayload()
	}
	return n
}

// Edge is an authoring-only connection from an output port to a node input.
type Edge struct {
	FromNodeID   string `json:"fromNodeId" yaml:"fromNodeId" mapstructure:"fromNodeId"`
	FromPortName string `json:"fromPortName" yaml:"fromPortName" mapstructure:"fromPortName"`
	ToNodeID     string `json:"toNodeId" yaml:"toNodeId" mapstructure:"toNodeId"`
	ToPortName   string `json:"toPortName" yaml:"toPortName" mapstructure:"toPortName"`
}

// PortKey identifies an output port across a document.
type PortKey struct {
	NodeID string
	Port   string
}

// Source returns the output port the edge leaves from.
func (e Edge) Source() PortKey {
	return PortKey{NodeID: e.FromNodeID, Port: e.FromPortName}
}
