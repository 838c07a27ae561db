// Package script defines the compiled, immutable runtime representation of a
// dialogue. Routing is inlined: dialogue and start nodes carry a nextNodeId,
// choice nodes carry one per choice. There are no edge objects at this layer.
//
// A Script is read-only once built and can be shared by any number of
// concurrent playback sessions.
package script

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// Node is a compiled node. Only the fields relevant to Type are set.
type Node struct {
	ID         string          `json:"id"`
	Type       domain.NodeKind `json:"type"`
	Speaker    domain.Text     `json:"speaker,omitempty"`
	Text       domain.Text     `json:"text,omitempty"`
	NextNodeID string          `json:"nextNodeId,omitempty"`
	Choices    []Choice        `json:"choices,omitempty"`
}

// Choice is a compiled option. An empty NextNodeID terminates the session.
type Choice struct {
	ID         string      `json:"id"`
	Text       domain.Text `json:"text,omitempty"`
	IsCorrect  bool        `json:"isCorrect"`
	NextNodeID string      `json:"nextNodeId,omitempty"`
}

// Choice returns the option with the given id.
func (n Node) Choice(id string) (Choice, bool) {
	for _, c := range n.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

func (n Node) clone() Node {
	n.Speaker = n.Speaker.Clone()
	n.Text = n.Text.Clone()
	if n.Choices != nil {
		choices := make([]Choice, len(n.Choices))
		for i, c := range n.Choices {
			c.Text = c.Text.Clone()
			choices[i] = c
		}
		n.Choices = choices
	}
	return n
}

// Script is an immutable compiled dialogue.
type Script struct {
	title       domain.Text
	startNodeID string
	nodes       []Node
	index       map[string]int
}

// New builds a script from compiled nodes. The nodes are copied.
func New(title domain.Text, startNodeID string, nodes []Node) (*Script, error) {
	s := &Script{
		title:       title.Clone(),
		startNodeID: startNodeID,
		nodes:       make([]Node, len(nodes)),
		index:       make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d missing ID", i)
		}
		if _, dup := s.index[n.ID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID)
		}
		kind, err := domain.ParseNodeKind(string(n.Type))
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		n.Type = kind
		s.nodes[i] = n.clone()
		s.index[n.ID] = i
	}
	return s, nil
}

// Title returns the localized title.
func (s *Script) Title() domain.Text {
	return s.title.Clone()
}

// StartNodeID returns the id of the entry node.
func (s *Script) StartNodeID() string {
	return s.startNodeID
}

// Node returns a copy of the node with the given id.
func (s *Script) Node(id string) (Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i].clone(), true
}

// Nodes returns copies of all nodes in compiled order.
func (s *Script) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

// NodeIDs returns all node ids in compiled order.
func (s *Script) NodeIDs() []string {
	ids := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Len returns the number of nodes.
func (s *Script) Len() int {
	return len(s.nodes)
}

// Validate reports references that do not resolve inside the script.
// Playback tolerates them (they end the session), so this is for tooling.
func (s *Script) Validate() domain.Violations {
	var vs domain.Violations
	fail := func(err error) {
		vs = append(vs, domain.Violation{Severity: domain.SeverityError, Err: err})
	}

	if start, ok := s.index[s.startNodeID]; !ok {
		fail(&domain.MissingStartNodeError{Count: 0})
	} else if s.nodes[start].Type != domain.KindStart {
		fail(&domain.MissingStartNodeError{Count: 0, NodeIDs: []string{s.startNodeID}})
	}

	for _, n := range s.nodes {
		if n.NextNodeID != "" {
			if _, ok := s.index[n.NextNodeID]; !ok {
				fail(&domain.DanglingReferenceError{NodeID: n.ID, Port: domain.PortOutput, TargetID: n.NextNodeID})
			}
		}
		if n.Type == domain.KindChoice && len(n.Choices) == 0 {
			fail(&domain.EmptyChoiceNodeError{NodeID: n.ID})
		}
		for _, c := range n.Choices {
			if c.NextNodeID == "" {
				continue
			}
			if _, ok := s.index[c.NextNodeID]; !ok {
				fail(&domain.DanglingReferenceError{NodeID: n.ID, Port: domain.ChoicePort(c.ID), TargetID: c.NextNodeID})
			}
		}
	}
	return vs
}
