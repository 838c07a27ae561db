package domain

import (
	"context"
	"time"
)

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	NodeID    string    `json:"nodeId"`
	NodeType  NodeKind  `json:"nodeType"`
}

// ChoiceEvent is the analytics record of one Choose call.
// Choices made on neutral nodes are recorded with Scored=false so they never
// contribute to a correctness score.
type ChoiceEvent struct {
	Timestamp      time.Time      `json:"timestamp"`
	SessionID      string         `json:"sessionId,omitempty"`
	NodeID         string         `json:"nodeId"`
	ChoiceID       string         `json:"choiceId"`
	WasCorrect     bool           `json:"wasCorrect"`
	Classification Classification `json:"classification"`
	Scored         bool           `json:"scored"`
}

// Anomaly is a runtime problem that did not stop playback
// (e.g. a nextNodeId that does not resolve).
type Anomaly struct {
	SessionID string
	NodeID    string
	Err       error
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnChoice    func(context.Context, *ChoiceEvent)
	OnAnomaly   func(context.Context, *Anomaly)
}
