package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before shutting down OTel providers,
// so in-flight async emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// AccessEvent is one denied access decision, from the routing middleware or a guard.
type AccessEvent struct {
	Source   string
	Decision string
	OrgID    string
	UserID   string
	Path     string
	Reason   string
	At       time.Time
}

// EventEmitter emits access events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *AccessEvent) error
}

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// emitter and event may be nil; EmitAsync returns immediately without starting a goroutine.
// The goroutine detaches from request cancellation so a finished request does not abort the emit.
func EmitAsync(emitter EventEmitter, ctx context.Context, event *AccessEvent, logger *zap.Logger) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil && logger != nil {
			logger.Warn("telemetry: async emit failed", zap.Error(err))
		}
	}()
}
