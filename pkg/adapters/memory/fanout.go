package memory

import (
	"context"
	"errors"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// FanOut forwards every event to several recorders.
// All recorders are called even if one fails; the errors are joined.
type FanOut []ports.AnalyticsRecorder

// RecordChoice implements ports.AnalyticsRecorder.
func (f FanOut) RecordChoice(ctx context.Context, event domain.ChoiceEvent) error {
	var errs []error
	for _, r := range f {
		if r == nil {
			continue
		}
		if err := r.RecordChoice(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
