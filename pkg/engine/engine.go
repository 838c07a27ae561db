// Package engine plays a compiled script for one session.
//
// The engine is a synchronous state machine with three live states: at a
// dialogue line (waiting for Advance), at a choice (waiting for Choose) and
// ended. It never moves on its own; every transition happens inside Start,
// Advance or Choose. Broken references never fail a session: they end it and
// are reported through the anomaly side channel.
//
// An Engine is not safe for concurrent use. Scripts are immutable and may be
// shared by any number of engines.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/script"
)

// Engine walks one script for one session.
type Engine struct {
	script    *script.Script
	sessionID string
	scriptID  string

	status  domain.Status
	current string
	last    *domain.DialogueLine

	display   ports.Display
	recorder  ports.AnalyticsRecorder
	hooks     domain.LifecycleHooks
	onAnomaly func(context.Context, *domain.Anomaly)
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an idle engine for s. Call Start to enter the script.
func New(s *script.Script, opts ...Option) *Engine {
	e := &Engine{script: s, status: domain.StatusIdle}
	defaults(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.sessionID != "" {
		e.logger = e.logger.With("session_id", e.sessionID)
	}
	return e
}

// Resume creates an engine positioned at a persisted snapshot.
func Resume(s *script.Script, state *domain.SessionState, opts ...Option) (*Engine, error) {
	e := New(s, opts...)
	if err := e.Restore(state); err != nil {
		return nil, err
	}
	return e, nil
}

// WithScriptID records the registry name of the script in snapshots.
func WithScriptID(id string) Option {
	return func(e *Engine) {
		e.scriptID = id
	}
}

// Script returns the script being played.
func (e *Engine) Script() *script.Script {
	return e.script
}

// SessionID returns the session ID given at construction or restored from a snapshot.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// State returns the current status.
func (e *Engine) State() domain.Status {
	return e.status
}

// Start follows the start node's transition and returns the first unit.
// A script whose start node is missing, or leads nowhere, ends immediately.
func (e *Engine) Start(ctx context.Context) (domain.Unit, error) {
	if e.status != domain.StatusIdle {
		return e.Current(), domain.ErrAlreadyStarted
	}

	startID := e.script.StartNodeID()
	start, ok := e.script.Node(startID)
	if !ok || start.Type != domain.KindStart {
		e.anomaly(ctx, startID, &domain.MissingStartNodeError{Count: 0})
		e.status = domain.StatusEnded
		return e.settle(ctx), nil
	}

	e.logger.Debug("session started", "node_id", start.ID)
	e.enter(ctx, start)
	e.leave(ctx, start)
	e.moveTo(ctx, start.ID, domain.PortOutput, start.NextNodeID)
	return e.settle(ctx), nil
}

// Advance leaves the current dialogue line. The line becomes the context
// shown with the next choice.
func (e *Engine) Advance(ctx context.Context) (domain.Unit, error) {
	if err := e.expect(domain.StatusAtDialogue, domain.ErrNotAtDialogue); err != nil {
		return e.Current(), err
	}

	n, _ := e.script.Node(e.current)
	e.last = &domain.DialogueLine{NodeID: n.ID, Speaker: n.Speaker.Clone(), Text: n.Text.Clone()}
	e.leave(ctx, n)
	e.moveTo(ctx, n.ID, domain.PortOutput, n.NextNodeID)
	return e.settle(ctx), nil
}

// Choose selects an option of the current choice node.
//
// An unknown choiceID returns *domain.InvalidChoiceSelectionError and leaves
// the session where it was. Otherwise the outcome is sent to the recorder,
// the feedback to the display, and the engine follows the option.
func (e *Engine) Choose(ctx context.Context, choiceID string) (domain.Feedback, domain.Unit, error) {
	if err := e.expect(domain.StatusAtChoice, domain.ErrNotAtChoice); err != nil {
		return domain.Feedback{}, e.Current(), err
	}

	n, _ := e.script.Node(e.current)
	choice, ok := n.Choice(choiceID)
	if !ok {
		err := &domain.InvalidChoiceSelectionError{NodeID: n.ID, ChoiceID: choiceID}
		e.anomaly(ctx, n.ID, err)
		return domain.Feedback{}, e.Current(), err
	}

	class := Classify(n.Choices)
	event := domain.ChoiceEvent{
		Timestamp:      e.now(),
		SessionID:      e.sessionID,
		NodeID:         n.ID,
		ChoiceID:       choice.ID,
		WasCorrect:     choice.IsCorrect,
		Classification: class,
		Scored:         class == domain.Evaluated,
	}
	if e.recorder != nil {
		if err := e.recorder.RecordChoice(ctx, event); err != nil {
			e.anomaly(ctx, n.ID, fmt.Errorf("record choice: %w", err))
		}
	}
	if e.hooks.OnChoice != nil {
		e.hooks.OnChoice(ctx, &event)
	}

	fb := domain.Feedback{
		NodeID:          n.ID,
		ChoiceID:        choice.ID,
		Classification:  class,
		ChosenIsCorrect: choice.IsCorrect,
	}
	if e.display != nil {
		if err := e.display.Feedback(ctx, fb); err != nil {
			e.anomaly(ctx, n.ID, fmt.Errorf("display feedback: %w", err))
		}
	}
	e.logger.Debug("choice made", "node_id", n.ID, "choice_id", choice.ID, "correct", choice.IsCorrect, "classification", class)

	e.leave(ctx, n)
	e.moveTo(ctx, n.ID, domain.ChoicePort(choice.ID), choice.NextNodeID)
	return fb, e.settle(ctx), nil
}

// Current returns the displayable unit for the current state.
// Before Start it returns the zero Unit.
func (e *Engine) Current() domain.Unit {
	switch e.status {
	case domain.StatusAtDialogue:
		n, _ := e.script.Node(e.current)
		return domain.Unit{
			Kind:   domain.UnitDialogue,
			NodeID: n.ID,
			Line:   &domain.DialogueLine{NodeID: n.ID, Speaker: n.Speaker, Text: n.Text},
		}
	case domain.StatusAtChoice:
		n, _ := e.script.Node(e.current)
		options := make([]domain.ChoiceOption, len(n.Choices))
		for i, c := range n.Choices {
			options[i] = domain.ChoiceOption{ID: c.ID, Text: c.Text}
		}
		return domain.Unit{
			Kind:           domain.UnitChoice,
			NodeID:         n.ID,
			Prompt:         n.Text,
			Context:        cloneLine(e.last),
			Choices:        options,
			Classification: Classify(n.Choices),
		}
	case domain.StatusEnded:
		return domain.Unit{Kind: domain.UnitEnded, NodeID: e.current}
	default:
		return domain.Unit{}
	}
}

// Snapshot captures the session for persistence.
func (e *Engine) Snapshot() *domain.SessionState {
	return &domain.SessionState{
		SessionID:     e.sessionID,
		ScriptID:      e.scriptID,
		Status:        e.status,
		CurrentNodeID: e.current,
		LastDialogue:  cloneLine(e.last),
	}
}

// Restore positions the engine at a snapshot taken from an engine playing
// the same script. No hooks fire and nothing is rendered.
func (e *Engine) Restore(state *domain.SessionState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", domain.ErrInvalidState)
	}

	switch state.Status {
	case domain.StatusIdle, domain.StatusEnded:
	case domain.StatusAtDialogue, domain.StatusAtChoice:
		n, ok := e.script.Node(state.CurrentNodeID)
		if !ok {
			return fmt.Errorf("%w: node %q: %w", domain.ErrInvalidState, state.CurrentNodeID, domain.ErrNodeNotFound)
		}
		want := domain.KindDialogue
		if state.Status == domain.StatusAtChoice {
			want = domain.KindChoice
		}
		if n.Type != want {
			return fmt.Errorf("%w: node %q is %s, status is %s", domain.ErrInvalidState, n.ID, n.Type, state.Status)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidState, state.Status)
	}

	e.status = state.Status
	e.current = state.CurrentNodeID
	e.last = cloneLine(state.LastDialogue)
	if e.sessionID == "" && state.SessionID != "" {
		e.sessionID = state.SessionID
		e.logger = e.logger.With("session_id", e.sessionID)
	}
	if e.scriptID == "" {
		e.scriptID = state.ScriptID
	}
	return nil
}

// moveTo resolves a transition. A start node reached as a target is passed
// through once; anything unresolvable ends the session.
func (e *Engine) moveTo(ctx context.Context, fromID, port, targetID string) {
	passedStart := false
	for {
		if targetID == "" {
			e.logger.Debug("port not connected, ending session", "node_id", fromID, "port", port)
			e.end("")
			return
		}

		n, ok := e.script.Node(targetID)
		if !ok {
			e.anomaly(ctx, fromID, &domain.DanglingReferenceError{NodeID: fromID, Port: port, TargetID: targetID})
			e.end("")
			return
		}

		e.enter(ctx, n)
		switch n.Type {
		case domain.KindDialogue:
			e.status, e.current = domain.StatusAtDialogue, n.ID
			return
		case domain.KindChoice:
			e.status, e.current = domain.StatusAtChoice, n.ID
			return
		case domain.KindStart:
			if passedStart {
				e.anomaly(ctx, n.ID, fmt.Errorf("start node %q reached twice in one transition", n.ID))
				e.end(n.ID)
				return
			}
			passedStart = true
			e.leave(ctx, n)
			fromID, port, targetID = n.ID, domain.PortOutput, n.NextNodeID
		default:
			e.end(n.ID)
			return
		}
	}
}

func (e *Engine) end(nodeID string) {
	e.status = domain.StatusEnded
	e.current = nodeID
	e.logger.Debug("session ended", "node_id", nodeID)
}

// expect checks that the engine is in want, mapping the other states to their sentinel errors.
func (e *Engine) expect(want domain.Status, wrong error) error {
	switch e.status {
	case want:
		return nil
	case domain.StatusIdle:
		return domain.ErrNotStarted
	case domain.StatusEnded:
		return domain.ErrSessionEnded
	default:
		return wrong
	}
}

// settle renders the current unit and returns it.
func (e *Engine) settle(ctx context.Context) domain.Unit {
	u := e.Current()
	if e.display != nil {
		if err := e.display.Render(ctx, u); err != nil {
			e.anomaly(ctx, u.NodeID, fmt.Errorf("display render: %w", err))
		}
	}
	return u
}

func (e *Engine) enter(ctx context.Context, n script.Node) {
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, e.nodeEvent(n))
	}
}

func (e *Engine) leave(ctx context.Context, n script.Node) {
	if e.hooks.OnNodeLeave != nil {
		e.hooks.OnNodeLeave(ctx, e.nodeEvent(n))
	}
}

func (e *Engine) nodeEvent(n script.Node) *domain.NodeEvent {
	return &domain.NodeEvent{
		Timestamp: e.now(),
		SessionID: e.sessionID,
		NodeID:    n.ID,
		NodeType:  n.Type,
	}
}

func (e *Engine) anomaly(ctx context.Context, nodeID string, err error) {
	e.logger.Warn("playback anomaly", "node_id", nodeID, "err", err)
	a := &domain.Anomaly{SessionID: e.sessionID, NodeID: nodeID, Err: err}
	if e.hooks.OnAnomaly != nil {
		e.hooks.OnAnomaly(ctx, a)
	}
	if e.onAnomaly != nil {
		e.onAnomaly(ctx, a)
	}
}

func cloneLine(l *domain.DialogueLine) *domain.DialogueLine {
	if l == nil {
		return nil
	}
	out := *l
	out.Speaker = l.Speaker.Clone()
	out.Text = l.Text.Clone()
	return &out
}
