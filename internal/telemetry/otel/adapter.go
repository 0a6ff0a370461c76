package otel

import (
	"context"
	"log"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"ldap-identity-bridge/internal/telemetry"
)

// NewEventEmitter returns an EventEmitter that sends auth events as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op
// emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("ldapauth.audit")}
}

// NewEventEmitterWithLogger returns an emitter that writes records to the
// given logger directly. Intended for tests.
func NewEventEmitterWithLogger(logger otellog.Logger) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.AuthEvent) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the auth event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.AuthEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetBody(otellog.StringValue("directory authentication " + event.Outcome))
	rec.AddAttributes(
		otellog.String("login", event.Login),
		otellog.String("outcome", event.Outcome),
	)
	if event.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", event.UserID))
	}
	if event.Outcome == "accepted" {
		rec.AddAttributes(
			otellog.Bool("created", event.Created),
			otellog.String("target_index", strconv.Itoa(event.TargetIndex)),
		)
	}
	if event.OccurredAt.IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	} else {
		rec.SetTimestamp(event.OccurredAt)
	}
	e.logger.Emit(ctx, rec)
	return nil
}

// EmitAsync runs Emit in a goroutine with a short timeout so the login path
// is not blocked. Errors are logged.
func EmitAsync(emitter telemetry.EventEmitter, event *telemetry.AuthEvent) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}
