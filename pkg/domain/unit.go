package domain

// UnitKind tells the display what kind of unit is current.
type UnitKind string

const (
	UnitDialogue UnitKind = "dialogue"
	UnitChoice   UnitKind = "choice"
	UnitEnded    UnitKind = "ended"
)

// Classification tells how a choice node's outcome should be presented.
type Classification string

const (
	// Evaluated nodes have at least one correct option and get correctness feedback.
	Evaluated Classification = "evaluated"
	// Neutral nodes have no correct option and get a light acknowledgement.
	Neutral Classification = "neutral"
)

// ChoiceOption is an option as shown to the user.
type ChoiceOption struct {
	ID   string `json:"id"`
	Text Text   `json:"text"`
}

// Unit is the displayable state of a session.
//
// For UnitDialogue, Line is set. For UnitChoice, Prompt, Choices and
// Classification are set, and Context holds the last dialogue line seen in
// the session (nil if none). UnitEnded carries no payload.
type Unit struct {
	Kind           UnitKind       `json:"kind"`
	NodeID         string         `json:"nodeId,omitempty"`
	Line           *DialogueLine  `json:"line,omitempty"`
	Prompt         Text           `json:"prompt,omitempty"`
	Context        *DialogueLine  `json:"context,omitempty"`
	Choices        []ChoiceOption `json:"choices,omitempty"`
	Classification Classification `json:"classification,omitempty"`
}

// Ended reports whether the unit is terminal.
func (u Unit) Ended() bool {
	return u.Kind == UnitEnded
}

// Feedback tells the display how to acknowledge a choice before moving on.
type Feedback struct {
	NodeID          string         `json:"nodeId"`
	ChoiceID        string         `json:"choiceId"`
	Classification  Classification `json:"classification"`
	ChosenIsCorrect bool           `json:"chosenIsCorrect"`
}
