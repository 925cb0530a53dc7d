package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/events"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Actor is the authenticated caller as supplied by the identity layer.
type Actor struct {
	UID       string
	Role      domain.Role
	CompanyID string
}

func (a Actor) event() events.Actor {
	return events.Actor{UserID: a.UID, Role: a.Role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	_ = dispatcher.Publish(ctx, event)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
