package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned when a node id is not part of a document or script.
	ErrNodeNotFound = errors.New("node not found")

	// ErrChoiceNotFound is returned when a choice id is not part of a choice node.
	ErrChoiceNotFound = errors.New("choice not found")

	// ErrEdgeNotFound is returned when no edge leaves the given output port.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrDuplicateNode is returned when inserting a node whose id already exists.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrLastChoice is returned when removing a choice would leave a choice node empty.
	ErrLastChoice = errors.New("cannot remove the last choice of a choice node")

	// ErrWrongNodeKind is returned when an operation targets a node of the wrong type.
	ErrWrongNodeKind = errors.New("wrong node type for operation")

	// ErrSessionEnded is returned when an action is sent to an ended session.
	ErrSessionEnded = errors.New("session has ended")

	// ErrNotAtDialogue is returned by Advance when the current unit is not a dialogue line.
	ErrNotAtDialogue = errors.New("current unit is not a dialogue line")

	// ErrNotAtChoice is returned by Choose when the current unit is not a choice.
	ErrNotAtChoice = errors.New("current unit is not a choice")

	// ErrNotStarted is returned when an action is sent before Start.
	ErrNotStarted = errors.New("session has not been started")

	// ErrAlreadyStarted is returned when Start is called twice on one engine.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrInvalidState is returned when restoring a snapshot that does not match the script.
	ErrInvalidState = errors.New("session state does not match script")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrScriptNotFound is returned when a script name is unknown to a registry.
	ErrScriptNotFound = errors.New("script not found")
)

// GraphParseError reports unparseable input in either the authoring or runtime schema.
type GraphParseError struct {
	Schema string // "authoring", "runtime" or "json"
	Err    error
}

func (e *GraphParseError) Error() string {
	return fmt.Sprintf("parse %s graph: %v", e.Schema, e.Err)
}

func (e *GraphParseError) Unwrap() error { return e.Err }

// MissingStartNodeError reports a document without exactly one start node.
type MissingStartNodeError struct {
	Count   int
	NodeIDs []string
}

func (e *MissingStartNodeError) Error() string {
	if e.Count == 0 {
		return "document has no start node"
	}
	return fmt.Sprintf("document has %d start nodes (%s), expected exactly one", e.Count, strings.Join(e.NodeIDs, ", "))
}

// DanglingReferenceError reports an edge or nextNodeId pointing at a missing node.
type DanglingReferenceError struct {
	NodeID   string // node owning the reference
	Port     string
	TargetID string
}

func (e *DanglingReferenceError) Error() string {
	if e.NodeID == e.TargetID {
		return fmt.Sprintf("edge leaves missing node %q", e.NodeID)
	}
	if e.Port == "" {
		return fmt.Sprintf("node %q references missing node %q", e.NodeID, e.TargetID)
	}
	return fmt.Sprintf("node %q port %q references missing node %q", e.NodeID, e.Port, e.TargetID)
}

// EmptyChoiceNodeError reports a choice node with no choices.
type EmptyChoiceNodeError struct {
	NodeID string
}

func (e *EmptyChoiceNodeError) Error() string {
	return fmt.Sprintf("choice node %q has no choices", e.NodeID)
}

// DuplicateChoiceError reports two choices sharing an id in the same node.
type DuplicateChoiceError struct {
	NodeID   string
	ChoiceID string
}

func (e *DuplicateChoiceError) Error() string {
	return fmt.Sprintf("choice node %q has duplicate choice id %q", e.NodeID, e.ChoiceID)
}

// InvalidPortError reports an edge using a port the node does not own,
// a second edge on an already connected port, or a target port other than "input".
type InvalidPortError struct {
	NodeID string
	Port   string
	Reason string
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("node %q port %q: %s", e.NodeID, e.Port, e.Reason)
}

// EndNodeEdgeError reports an outgoing edge from an end node.
type EndNodeEdgeError struct {
	NodeID string
}

func (e *EndNodeEdgeError) Error() string {
	return fmt.Sprintf("end node %q has an outgoing edge", e.NodeID)
}

// UnreachableNodeError reports a node that cannot be reached from the start node.
type UnreachableNodeError struct {
	NodeID string
}

func (e *UnreachableNodeError) Error() string {
	return fmt.Sprintf("node %q is unreachable from start", e.NodeID)
}

// InvalidChoiceSelectionError is returned when Choose receives an id not present on the current node.
type InvalidChoiceSelectionError struct {
	NodeID   string
	ChoiceID string
}

func (e *InvalidChoiceSelectionError) Error() string {
	return fmt.Sprintf("choice %q is not an option of node %q", e.ChoiceID, e.NodeID)
}

func (e *InvalidChoiceSelectionError) Unwrap() error { return ErrChoiceNotFound }
