package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks logs every interpreter event to logger. Node events are
// logged at Debug, ticks at Info, configuration errors at Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"tick", e.Tick,
				"node_id", e.NodeID,
				"kind", e.Kind,
				"name", e.Name)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"tick", e.Tick,
				"node_id", e.NodeID,
				"kind", e.Kind,
				"status", e.Status)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			logger.InfoContext(ctx, "tick",
				"agent", e.AgentID,
				"tick", e.Tick,
				"status", e.Status,
				"duration", e.Duration)
		},
		OnConfigError: func(ctx context.Context, e *domain.ConfigErrorEvent) {
			logger.WarnContext(ctx, "config_error",
				"agent", e.AgentID,
				"node_id", e.NodeID,
				"name", e.Name,
				"err", e.Err)
		},
	}
}
