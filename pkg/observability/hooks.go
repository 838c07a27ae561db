package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// LogHooks returns lifecycle hooks that trace node transitions and choices at
// debug level and anomalies at warn level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = slog.Default()
	}
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "enter node", "session_id", e.SessionID, "node_id", e.NodeID, "type", e.NodeType)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "leave node", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.DebugContext(ctx, "choice",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"choice_id", e.ChoiceID,
				"classification", e.Classification,
				"correct", e.WasCorrect,
			)
		},
		OnAnomaly: func(ctx context.Context, a *domain.Anomaly) {
			logger.WarnContext(ctx, "anomaly", "session_id", a.SessionID, "node_id", a.NodeID, "err", a.Err)
		},
	}
}
