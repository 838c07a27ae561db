package script

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// wire is the JSON shape of a script. Field order here is the key order on the wire.
type wire struct {
	Title       domain.Text `json:"title,omitempty"`
	StartNodeID string      `json:"startNodeId"`
	Nodes       []Node      `json:"nodes"`
}

// MarshalJSON encodes the script in the runtime schema.
func (s *Script) MarshalJSON() ([]byte, error) {
	nodes := s.nodes
	if nodes == nil {
		nodes = []Node{}
	}
	return json.Marshal(wire{Title: s.title, StartNodeID: s.startNodeID, Nodes: nodes})
}

// UnmarshalJSON decodes the runtime schema and rebuilds the node index.
func (s *Script) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	built, err := New(w.Title, w.StartNodeID, w.Nodes)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}

// Marshal renders a script as indented JSON. The output is byte-for-byte
// stable for equal scripts: keys follow struct order and language maps are sorted.
func Marshal(s *Script) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script: %w", err)
	}
	return data, nil
}

// Unmarshal parses a runtime script. Failures are reported as *domain.GraphParseError.
func Unmarshal(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &domain.GraphParseError{Schema: "runtime", Err: err}
	}
	return &s, nil
}
