// Package graph implements the mutable authoring-side dialogue graph.
//
// A Document is an arena of nodes addressed by string id plus a side table of
// edges keyed by output port. Nothing points back from nodes to edges, so
// cycles in the dialogue never become reference cycles in memory.
//
// A Document is owned by one authoring session and is not safe for
// concurrent mutation. Use Clone to take a read snapshot.
package graph

import (
	"fmt"
	"strconv"

	"github.com/aretw0/parley/pkg/domain"
)

// IDGenerator returns a candidate id for a new node of the given kind.
// seq increases on every call; the document skips candidates already in use.
type IDGenerator func(kind domain.NodeKind, seq int) string

// DefaultIDGenerator produces ids like "dialogue_3".
func DefaultIDGenerator(kind domain.NodeKind, seq int) string {
	return string(kind) + "_" + strconv.Itoa(seq)
}

// Document is the authoring graph.
type Document struct {
	Title domain.Text

	nodes map[string]*domain.Node
	order []string

	edges []domain.Edge
	index map[domain.PortKey]int // position in edges

	nextID IDGenerator
	seq    int
}

// Option configures a Document.
type Option func(*Document)

// WithIDGenerator replaces the node id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(d *Document) {
		d.nextID = gen
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		nodes:  make(map[string]*domain.Node),
		index:  make(map[domain.PortKey]int),
		nextID: DefaultIDGenerator,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWithDefaults creates a document holding a Start node connected to an End node.
func NewWithDefaults(opts ...Option) *Document {
	d := New(opts...)
	start, _ := d.AddNode(domain.KindStart, domain.Position{X: 100, Y: 100})
	end, _ := d.AddNode(domain.KindEnd, domain.Position{X: 400, Y: 100})
	_ = d.AddEdge(start, domain.PortOutput, end)
	return d
}

// AddNode creates a node with the zero payload of kind and returns its id.
// A new choice node starts with one choice so it is valid immediately.
func (d *Document) AddNode(kind domain.NodeKind, pos domain.Position) (string, error) {
	payload, err := domain.NewPayload(kind)
	if err != nil {
		return "", err
	}
	if kind == domain.KindChoice {
		payload = domain.ChoicePayload{Choices: []domain.Choice{{ID: "c1"}}}
	}

	id := d.generateID(kind)
	d.insert(&domain.Node{ID: id, Position: pos, Payload: payload})
	return id, nil
}

// InsertNode adds a fully formed node with its own id.
func (d *Document) InsertNode(n domain.Node) error {
	if n.ID == "" {
		return fmt.Errorf("node missing ID")
	}
	if n.Payload == nil {
		return fmt.Errorf("node %q missing payload", n.ID)
	}
	if _, exists := d.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID)
	}
	clone := n.Clone()
	d.insert(&clone)
	return nil
}

func (d *Document) insert(n *domain.Node) {
	d.nodes[n.ID] = n
	d.order = append(d.order, n.ID)
}

func (d *Document) generateID(kind domain.NodeKind) string {
	for {
		d.seq++
		id := d.nextID(kind, d.seq)
		if _, taken := d.nodes[id]; !taken && id != "" {
			return id
		}
	}
}

// RemoveNode deletes a node and every edge touching it.
func (d *Document) RemoveNode(id string) error {
	if _, ok := d.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	delete(d.nodes, id)
	for i, oid := range d.order {
		if oid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.filterEdges(func(e domain.Edge) bool {
		return e.FromNodeID != id && e.ToNodeID != id
	})
	return nil
}

// Node returns a copy of the node with the given id.
func (d *Document) Node(id string) (domain.Node, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of every node, in insertion order.
func (d *Document) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.nodes[id].Clone())
	}
	return out
}

// Len returns the number of nodes.
func (d *Document) Len() int {
	return len(d.order)
}

// MoveNode updates a node's canvas position.
func (d *Document) MoveNode(id string, pos domain.Position) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	n.Position = pos
	return nil
}

// SetTitle sets the document title.
func (d *Document) SetTitle(title domain.Text) {
	d.Title = title.Clone()
}

// SetDialogue replaces the speaker and text of a dialogue node.
func (d *Document) SetDialogue(id string, speaker, text domain.Text) error {
	n, err := d.lookup(id, domain.KindDialogue)
	if err != nil {
		return err
	}
	n.Payload = domain.DialoguePayload{Speaker: speaker.Clone(), Text: text.Clone()}
	return nil
}

// SetPrompt replaces the prompt of a choice node.
func (d *Document) SetPrompt(id string, prompt domain.Text) error {
	n, err := d.lookup(id, domain.KindChoice)
	if err != nil {
		return err
	}
	p := n.Payload.(domain.ChoicePayload)
	p.Prompt = prompt.Clone()
	n.Payload = p
	return nil
}

func (d *Document) lookup(id string, kind domain.NodeKind) (*domain.Node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	if n.Kind() != kind {
		return nil, fmt.Errorf("%w: node %q is %s, not %s", domain.ErrWrongNodeKind, id, n.Kind(), kind)
	}
	return n, nil
}

// Clone returns an independent deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		Title:  d.Title.Clone(),
		nodes:  make(map[string]*domain.Node, len(d.nodes)),
		order:  append([]string(nil), d.order...),
		edges:  append([]domain.Edge(nil), d.edges...),
		index:  make(map[domain.PortKey]int, len(d.index)),
		nextID: d.nextID,
		seq:    d.seq,
	}
	for id, n := range d.nodes {
		clone := n.Clone()
		c.nodes[id] = &clone
	}
	for k, v := range d.index {
		c.index[k] = v
	}
	return c
}
