package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// Display is the surface that presents a session to the end user.
// Bilingual fields arrive untouched; resolving them is the display's job.
type Display interface {
	// Render shows the current unit (a line, a choice set, or the end).
	Render(ctx context.Context, unit domain.Unit) error

	// Feedback acknowledges a choice before the next unit is rendered.
	// Evaluated nodes expect correctness styling; neutral ones a light acknowledgement.
	Feedback(ctx context.Context, fb domain.Feedback) error
}

// LocaleProvider supplies the active language code (e.g. "en", "fr").
type LocaleProvider interface {
	Language() string
}

// AnalyticsRecorder receives choice outcomes.
// Events from neutral nodes arrive with Scored=false.
type AnalyticsRecorder interface {
	RecordChoice(ctx context.Context, event domain.ChoiceEvent) error
}
