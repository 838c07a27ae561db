package graph

import (
	"github.com/aretw0/parley/pkg/domain"
)

// Validate checks the document invariants and returns every violation found.
// It never fails: an empty result means the document compiles cleanly.
// Unreachable nodes are reported as warnings; everything else is an error.
func (d *Document) Validate() domain.Violations {
	var vs domain.Violations
	fail := func(err error) {
		vs = append(vs, domain.Violation{Severity: domain.SeverityError, Err: err})
	}

	// 1. Exactly one start node
	var starts []string
	for _, id := range d.order {
		if d.nodes[id].Kind() == domain.KindStart {
			starts = append(starts, id)
		}
	}
	if len(starts) != 1 {
		fail(&domain.MissingStartNodeError{Count: len(starts), NodeIDs: starts})
	}

	// 2. Node payloads
	for _, id := range d.order {
		p, ok := d.nodes[id].Payload.(domain.ChoicePayload)
		if !ok {
			continue
		}
		if len(p.Choices) == 0 {
			fail(&domain.EmptyChoiceNodeError{NodeID: id})
			continue
		}
		seen := make(map[string]bool, len(p.Choices))
		for _, c := range p.Choices {
			if seen[c.ID] {
				fail(&domain.DuplicateChoiceError{NodeID: id, ChoiceID: c.ID})
			}
			seen[c.ID] = true
		}
	}

	// 3. Edges
	connected := make(map[domain.PortKey]bool, len(d.edges))
	for _, e := range d.edges {
		src, ok := d.nodes[e.FromNodeID]
		if !ok {
			fail(&domain.DanglingReferenceError{NodeID: e.FromNodeID, Port: e.FromPortName, TargetID: e.FromNodeID})
			continue
		}
		if src.Kind() == domain.KindEnd {
			fail(&domain.EndNodeEdgeError{NodeID: e.FromNodeID})
			continue
		}
		if !src.HasOutputPort(e.FromPortName) {
			fail(&domain.InvalidPortError{NodeID: e.FromNodeID, Port: e.FromPortName, Reason: "node has no such output port"})
			continue
		}
		if connected[e.Source()] {
			fail(&domain.InvalidPortError{NodeID: e.FromNodeID, Port: e.FromPortName, Reason: "port carries more than one edge"})
			continue
		}
		connected[e.Source()] = true

		if _, ok := d.nodes[e.ToNodeID]; !ok {
			fail(&domain.DanglingReferenceError{NodeID: e.FromNodeID, Port: e.FromPortName, TargetID: e.ToNodeID})
			continue
		}
		if e.ToPortName != domain.PortInput {
			fail(&domain.InvalidPortError{NodeID: e.ToNodeID, Port: e.ToPortName, Reason: "edges must enter the input port"})
		}
	}

	// 4. Reachability (only meaningful with a single start)
	if len(starts) == 1 {
		reached := d.reachableFrom(starts[0])
		for _, id := range d.order {
			if !reached[id] {
				vs = append(vs, domain.Violation{
					Severity: domain.SeverityWarning,
					Err:      &domain.UnreachableNodeError{NodeID: id},
				})
			}
		}
	}

	return vs
}

// reachableFrom crawls the edges breadth-first from the given node.
func (d *Document) reachableFrom(startID string) map[string]bool {
	adjacency := make(map[string][]string, len(d.nodes))
	for _, e := range d.edges {
		adjacency[e.FromNodeID] = append(adjacency[e.FromNodeID], e.ToNodeID)
	}

	visited := map[string]bool{startID: true}
	queue := []string{startID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if _, exists := d.nodes[next]; !exists || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}
