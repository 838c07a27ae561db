package memory

import (
	"context"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// Recorder implements ports.AnalyticsRecorder by keeping events in memory.
// Safe for concurrent use.
type Recorder struct {
	mu     sync.RWMutex
	events []domain.ChoiceEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordChoice appends the event.
func (r *Recorder) RecordChoice(ctx context.Context, event domain.ChoiceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of all recorded events, oldest first.
func (r *Recorder) Events() []domain.ChoiceEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChoiceEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Score summarizes the scored events of one session (all sessions if sessionID is empty).
// Events from neutral nodes are ignored.
func (r *Recorder) Score(sessionID string) (correct, total int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.events {
		if !e.Scored || (sessionID != "" && e.SessionID != sessionID) {
			continue
		}
		total++
		if e.WasCorrect {
			correct++
		}
	}
	return correct, total
}

// Reset drops all events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
