package graph

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// AddEdge connects an output port of from to the input of to.
// Any edge already leaving (from, port) is replaced: a port carries at most one edge.
func (d *Document) AddEdge(from, port, to string) error {
	src, ok := d.nodes[from]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, from)
	}
	if _, ok := d.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, to)
	}
	if src.Kind() == domain.KindEnd {
		return &domain.EndNodeEdgeError{NodeID: from}
	}
	if !src.HasOutputPort(port) {
		return &domain.InvalidPortError{NodeID: from, Port: port, Reason: "node has no such output port"}
	}

	edge := domain.Edge{
		FromNodeID:   from,
		FromPortName: port,
		ToNodeID:     to,
		ToPortName:   domain.PortInput,
	}
	if i, exists := d.index[edge.Source()]; exists {
		d.edges[i] = edge
		return nil
	}
	d.index[edge.Source()] = len(d.edges)
	d.edges = append(d.edges, edge)
	return nil
}

// AppendEdge stores an edge exactly as given, without any check.
// It is meant for importers reconstructing a document from external data;
// Validate reports whatever the edge breaks.
func (d *Document) AppendEdge(e domain.Edge) {
	if _, exists := d.index[e.Source()]; !exists {
		d.index[e.Source()] = len(d.edges)
	}
	d.edges = append(d.edges, e)
}

// RemoveEdge removes the edge leaving (from, port).
func (d *Document) RemoveEdge(from, port string) error {
	key := domain.PortKey{NodeID: from, Port: port}
	if _, ok := d.index[key]; !ok {
		return fmt.Errorf("%w: %s:%s", domain.ErrEdgeNotFound, from, port)
	}
	d.filterEdges(func(e domain.Edge) bool {
		return e.Source() != key
	})
	return nil
}

// EdgeFrom returns the edge leaving (nodeID, port).
func (d *Document) EdgeFrom(nodeID, port string) (domain.Edge, bool) {
	i, ok := d.index[domain.PortKey{NodeID: nodeID, Port: port}]
	if !ok {
		return domain.Edge{}, false
	}
	return d.edges[i], true
}

// Edges returns every edge in insertion order.
func (d *Document) Edges() []domain.Edge {
	return append([]domain.Edge(nil), d.edges...)
}

// filterEdges keeps the edges for which keep returns true and rebuilds the port index.
func (d *Document) filterEdges(keep func(domain.Edge) bool) {
	kept := d.edges[:0]
	for _, e := range d.edges {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	d.edges = kept
	d.index = make(map[domain.PortKey]int, len(kept))
	for i, e := range kept {
		if _, exists := d.index[e.Source()]; !exists {
			d.index[e.Source()] = i
		}
	}
}
