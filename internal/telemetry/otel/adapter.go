package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/telemetry"
)

// recordEmitter is the part of otellog.Logger the emitter uses.
type recordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends access events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger("skyscraper.access"))
}

// NewEventEmitterWithLogger returns an EventEmitter writing to logger.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.AccessEvent) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the access event to an OTel log record and emits it. Empty fields are omitted.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.AccessEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	ts := event.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetEventName("access.denied")
	if event.Reason != "" {
		rec.SetBody(otellog.StringValue(event.Reason))
	}
	for _, kv := range []struct{ key, val string }{
		{"source", event.Source},
		{"decision", event.Decision},
		{"org_id", event.OrgID},
		{"user_id", event.UserID},
		{"path", event.Path},
	} {
		if kv.val != "" {
			rec.AddAttributes(otellog.String(kv.key, kv.val))
		}
	}
	e.logger.Emit(ctx, rec)
	return nil
}
