package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/routing"
)

// Recorder turns routing and guard denials into access events. It satisfies
// routing.DecisionRecorder and rbac.DenialRecorder.
type Recorder struct {
	emitter EventEmitter
	logger  *zap.Logger
}

// NewRecorder returns a Recorder that emits through emitter. logger may be nil.
func NewRecorder(emitter EventEmitter, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{emitter: emitter, logger: logger}
}

// RecordDecision emits unauthenticated and cross-surface routing decisions.
func (r *Recorder) RecordDecision(ctx context.Context, ev routing.DecisionEvent) {
	if r == nil {
		return
	}
	switch ev.Decision {
	case routing.DecisionUnauthenticated, routing.DecisionCrossSurface:
	default:
		return
	}
	EmitAsync(r.emitter, ctx, &AccessEvent{
		Source:   "routing",
		Decision: string(ev.Decision),
		UserID:   ev.UserID,
		Path:     ev.Path,
		Reason:   ev.Reason,
		At:       time.Now().UTC(),
	}, r.logger)
}

// RecordDenial emits a guard denial. code is the guard error code (UNAUTHENTICATED, FORBIDDEN).
func (r *Recorder) RecordDenial(ctx context.Context, guard, orgID, userID, code, message string) {
	if r == nil {
		return
	}
	EmitAsync(r.emitter, ctx, &AccessEvent{
		Source:   guard,
		Decision: code,
		OrgID:    orgID,
		UserID:   userID,
		Reason:   message,
		At:       time.Now().UTC(),
	}, r.logger)
}
