package domain

// Status is the playback state of a session.
type Status string

const (
	StatusIdle       Status = "idle"        // not started yet
	StatusAtDialogue Status = "at_dialogue" // waiting for Advance
	StatusAtChoice   Status = "at_choice"   // waiting for Choose
	StatusEnded      Status = "ended"       // terminal
)

// DialogueLine is the speaker and text of a dialogue node.
// It is also the context quoted above the options of a following choice.
type DialogueLine struct {
	NodeID  string `json:"nodeId"`
	Speaker Text   `json:"speaker,omitempty"`
	Text    Text   `json:"text,omitempty"`
}

// SessionState is the persisted snapshot of a playback session.
// The engine state is entirely described by the current node and the last dialogue seen.
type SessionState struct {
	SessionID     string        `json:"sessionId"`
	ScriptID      string        `json:"scriptId,omitempty"`
	Status        Status        `json:"status"`
	CurrentNodeID string        `json:"currentNodeId,omitempty"`
	LastDialogue  *DialogueLine `json:"lastDialogue,omitempty"`
}

// NewSessionState creates an idle snapshot for a script.
func NewSessionState(sessionID, scriptID string) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		ScriptID:  scriptID,
		Status:    StatusIdle,
	}
}

// Clone returns a deep copy.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	if s.LastDialogue != nil {
		line := *s.LastDialogue
		line.Speaker = line.Speaker.Clone()
		line.Text = line.Text.Clone()
		out.LastDialogue = &line
	}
	return &out
}
