package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/aretw0/parley/pkg/script"
)

// runtimeMarker is a top-level key only the runtime schema has.
const runtimeMarker = "startNodeId"

// Import reads either schema and returns an authoring document.
//
// The authoring schema is tried first. The runtime schema is used instead
// when the top-level object has a "startNodeId" key, or when the authoring
// attempt yields no nodes. On any parse failure Import returns an empty
// document together with a *domain.GraphParseError; it never returns a
// partially filled document.
func Import(data []byte, opts ...Option) (*graph.Document, error) {
	cfg := newConfig(opts)

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return graph.New(), &domain.GraphParseError{Schema: "json", Err: err}
	}

	if _, isRuntime := raw[runtimeMarker]; !isRuntime {
		doc, err := decodeAuthoring(raw)
		if err != nil {
			return graph.New(), err
		}
		if doc.Len() > 0 {
			cfg.logger.Debug("imported authoring document", "nodes", doc.Len())
			return doc, nil
		}
		cfg.logger.Debug("authoring schema yielded no nodes, trying runtime schema")
	}

	s, err := decodeRuntime(raw)
	if err != nil {
		return graph.New(), err
	}
	doc := FromScript(s, opts...)
	cfg.logger.Debug("imported runtime script", "nodes", doc.Len())
	return doc, nil
}

func decodeRuntime(raw map[string]any) (*script.Script, error) {
	var w struct {
		Title       domain.Text   `json:"title"`
		StartNodeID string        `json:"startNodeId"`
		Nodes       []script.Node `json:"nodes"`
	}
	if err := decode(raw, &w); err != nil {
		return nil, &domain.GraphParseError{Schema: "runtime", Err: err}
	}
	s, err := script.New(w.Title, w.StartNodeID, w.Nodes)
	if err != nil {
		return nil, &domain.GraphParseError{Schema: "runtime", Err: err}
	}
	return s, nil
}

// FromScript rebuilds an authoring document from a compiled script.
//
// One authoring node is created per runtime node and one edge per non-empty
// nextNodeId. Positions are regenerated with the configured Layout; the
// authored layout cannot be recovered. References that do not resolve are
// kept as edges so that Validate reports them.
func FromScript(s *script.Script, opts ...Option) *graph.Document {
	cfg := newConfig(opts)
	doc := graph.New()
	doc.SetTitle(s.Title())

	row := 0
	nodes := s.Nodes()
	for _, n := range nodes {
		node := domain.Node{ID: n.ID, Position: cfg.layout.Place(n.Type, row)}
		if n.Type != domain.KindStart {
			row++
		}

		switch n.Type {
		case domain.KindStart:
			node.Payload = domain.StartPayload{}
		case domain.KindDialogue:
			node.Payload = domain.DialoguePayload{Speaker: n.Speaker, Text: n.Text}
		case domain.KindChoice:
			choices := make([]domain.Choice, len(n.Choices))
			for i, c := range n.Choices {
				choices[i] = domain.Choice{ID: c.ID, Text: c.Text, IsCorrect: c.IsCorrect}
			}
			node.Payload = domain.ChoicePayload{Prompt: n.Text, Choices: choices}
		default:
			node.Payload = domain.EndPayload{}
		}

		// Script ids are unique, so this cannot fail.
		if err := doc.InsertNode(node); err != nil {
			cfg.logger.Warn("skipping node during import", "node_id", n.ID, "err", err)
		}
	}

	for _, n := range nodes {
		if n.NextNodeID != "" {
			doc.AppendEdge(edgeTo(n.ID, domain.PortOutput, n.NextNodeID))
		}
		for _, c := range n.Choices {
			if c.NextNodeID != "" {
				doc.AppendEdge(edgeTo(n.ID, domain.ChoicePort(c.ID), c.NextNodeID))
			}
		}
	}
	return doc
}

// ImportScript is a convenience wrapper that parses runtime JSON only.
func ImportScript(data []byte, opts ...Option) (*graph.Document, error) {
	s, err := script.Unmarshal(data)
	if err != nil {
		return graph.New(), fmt.Errorf("import script: %w", err)
	}
	return FromScript(s, opts...), nil
}

func edgeTo(from, port, to string) domain.Edge {
	return domain.Edge{FromNodeID: from, FromPortName: port, ToNodeID: to, ToPortName: domain.PortInput}
}
