package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// authoringDocument is the persisted authoring format: node payloads,
// canvas positions and the explicit edge list.
type authoringDocument struct {
	Title domain.Text     `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes []authoringNode `json:"nodes" yaml:"nodes"`
	Edges []domain.Edge   `json:"edges" yaml:"edges"`
}

type authoringNode struct {
	ID       string            `json:"id" yaml:"id"`
	Type     string            `json:"type" yaml:"type"`
	Position domain.Position   `json:"position" yaml:"position"`
	Speaker  domain.Text       `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Text     domain.Text       `json:"text,omitempty" yaml:"text,omitempty"`
	Choices  []authoringChoice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

type authoringChoice struct {
	ID         string      `json:"id" yaml:"id"`
	Text       domain.Text `json:"text,omitempty" yaml:"text,omitempty"`
	IsCorrect  bool        `json:"isCorrect" yaml:"isCorrect"`
	OutputPort string      `json:"outputPort,omitempty" yaml:"outputPort,omitempty"`
}

// MarshalDocument renders a document in the authoring format (indented JSON).
func MarshalDocument(doc *graph.Document) ([]byte, error) {
	data, err := json.MarshalIndent(toAuthoring(doc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// MarshalDocumentYAML renders a document in the authoring format as YAML.
func MarshalDocumentYAML(doc *graph.Document) ([]byte, error) {
	data, err := yaml.Marshal(toAuthoring(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument strictly parses the authoring format.
// Failures are reported as *domain.GraphParseError.
func UnmarshalDocument(data []byte) (*graph.Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.GraphParseError{Schema: "authoring", Err: err}
	}
	return decodeAuthoring(raw)
}

// UnmarshalDocumentYAML parses an authoring document written in YAML.
func UnmarshalDocumentYAML(data []byte) (*graph.Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &domain.GraphParseError{Schema: "authoring", Err: err}
	}
	return decodeAuthoring(raw)
}

func toAuthoring(doc *graph.Document) authoringDocument {
	out := authoringDocument{
		Title: doc.Title,
		Nodes: make([]authoringNode, 0, doc.Len()),
		Edges: doc.Edges(),
	}
	if out.Edges == nil {
		out.Edges = []domain.Edge{}
	}

	for _, n := range doc.Nodes() {
		an := authoringNode{ID: n.ID, Type: string(n.Kind()), Position: n.Position}
		switch p := n.Payload.(type) {
		case domain.DialoguePayload:
			an.Speaker = p.Speaker
			an.Text = p.Text
		case domain.ChoicePayload:
			an.Text = p.Prompt
			an.Choices = make([]authoringChoice, len(p.Choices))
			for i, c := range p.Choices {
				an.Choices[i] = authoringChoice{ID: c.ID, Text: c.Text, IsCorrect: c.IsCorrect, OutputPort: c.Port()}
			}
		}
		out.Nodes = append(out.Nodes, an)
	}
	return out
}

// decode maps a generic JSON/YAML tree onto a typed value using the json tag names.
func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func decodeAuthoring(raw map[string]any) (*graph.Document, error) {
	var ad authoringDocument
	if err := decode(raw, &ad); err != nil {
		return nil, &domain.GraphParseError{Schema: "authoring", Err: err}
	}

	doc := graph.New()
	doc.SetTitle(ad.Title)

	// Choices may declare a custom output port name; edges are rewritten to the canonical one.
	renamed := make(map[domain.PortKey]string)

	for _, an := range ad.Nodes {
		kind, err := domain.ParseNodeKind(an.Type)
		if err != nil {
			return nil, &domain.GraphParseError{Schema: "authoring", Err: fmt.Errorf("node %q: %w", an.ID, err)}
		}

		node := domain.Node{ID: an.ID, Position: an.Position}
		switch kind {
		case domain.KindStart:
			node.Payload = domain.StartPayload{}
		case domain.KindDialogue:
			node.Payload = domain.DialoguePayload{Speaker: an.Speaker, Text: an.Text}
		case domain.KindChoice:
			choices := make([]domain.Choice, len(an.Choices))
			for i, ac := range an.Choices {
				choices[i] = domain.Choice{ID: ac.ID, Text: ac.Text, IsCorrect: ac.IsCorrect}
				if ac.OutputPort != "" && ac.OutputPort != choices[i].Port() {
					renamed[domain.PortKey{NodeID: an.ID, Port: ac.OutputPort}] = choices[i].Port()
				}
			}
			node.Payload = domain.ChoicePayload{Prompt: an.Text, Choices: choices}
		case domain.KindEnd:
			node.Payload = domain.EndPayload{}
		}

		if err := doc.InsertNode(node); err != nil {
			return nil, &domain.GraphParseError{Schema: "authoring", Err: err}
		}
	}

	for _, e := range ad.Edges {
		if port, ok := renamed[e.Source()]; ok {
			e.FromPortName = port
		}
		if e.ToPortName == "" {
			e.ToPortName = domain.PortInput
		}
		doc.AppendEdge(e)
	}
	return doc, nil
}
