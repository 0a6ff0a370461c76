// Package telemetry defines the auth audit event and the emitter interface
// the engine publishes through.
package telemetry

import (
	"context"
	"time"
)

// AuthEvent records the outcome of one authentication attempt. Events are
// operator-facing; they never carry the secret or its digest.
type AuthEvent struct {
	Login       string
	Outcome     string // "accepted", "rejected", "unsupported", "no_targets"
	UserID      string // set when accepted
	Created     bool   // whether the attempt created the local identity
	TargetIndex int    // winning target index, -1 otherwise
	OccurredAt  time.Time
}

// EventEmitter publishes auth events to a telemetry backend.
type EventEmitter interface {
	Emit(ctx context.Context, event *AuthEvent) error
}
