package compiler

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/aretw0/parley/pkg/script"
)

// Compile turns an authoring document into a runtime script.
//
// The document is snapshotted first, so later edits cannot tear the output.
// If validation reports any error the compile is refused and the returned
// error is a *domain.ValidationError; warnings are only logged.
func Compile(doc *graph.Document, opts ...Option) (*script.Script, error) {
	cfg := newConfig(opts)
	snapshot := doc.Clone()

	violations := snapshot.Validate()
	for _, w := range violations.Warnings() {
		cfg.logger.Warn("compile warning", "err", w.Err)
	}
	if errs := violations.Errors(); len(errs) > 0 {
		cfg.logger.Debug("compile refused", "violations", len(errs))
		return nil, &domain.ValidationError{Violations: errs}
	}

	// Edge index keyed by output port, built once per compile.
	next := make(map[domain.PortKey]string, len(snapshot.Edges()))
	for _, e := range snapshot.Edges() {
		next[e.Source()] = e.ToNodeID
	}

	var startID string
	nodes := make([]script.Node, 0, snapshot.Len())
	for _, n := range snapshot.Nodes() {
		compiled, err := compileNode(n, next)
		if err != nil {
			return nil, err
		}
		if compiled.Type == domain.KindStart {
			startID = compiled.ID
		}
		nodes = append(nodes, compiled)
	}

	s, err := script.New(snapshot.Title, startID, nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to build script: %w", err)
	}
	cfg.logger.Debug("compiled document", "nodes", s.Len(), "start", startID)
	return s, nil
}

// CompileJSON compiles a document and renders the runtime JSON.
func CompileJSON(doc *graph.Document, opts ...Option) ([]byte, error) {
	s, err := Compile(doc, opts...)
	if err != nil {
		return nil, err
	}
	return script.Marshal(s)
}

func compileNode(n domain.Node, next map[domain.PortKey]string) (script.Node, error) {
	out := script.Node{ID: n.ID, Type: n.Kind()}

	switch p := n.Payload.(type) {
	case domain.StartPayload:
		out.NextNodeID = next[domain.PortKey{NodeID: n.ID, Port: domain.PortOutput}]
	case domain.DialoguePayload:
		out.Speaker = p.Speaker.Clone()
		out.Text = p.Text.Clone()
		out.NextNodeID = next[domain.PortKey{NodeID: n.ID, Port: domain.PortOutput}]
	case domain.ChoicePayload:
		out.Text = p.Prompt.Clone()
		out.Choices = make([]script.Choice, len(p.Choices))
		for i, c := range p.Choices {
			out.Choices[i] = script.Choice{
				ID:         c.ID,
				Text:       c.Text.Clone(),
				IsCorrect:  c.IsCorrect,
				NextNodeID: next[domain.PortKey{NodeID: n.ID, Port: c.Port()}],
			}
		}
	case domain.EndPayload:
	default:
		return script.Node{}, fmt.Errorf("node %s: unsupported payload %T", n.ID, n.Payload)
	}
	return out, nil
}
