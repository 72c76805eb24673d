// Package events publishes usage events for the assistant onto the event bus.
package events

import (
	"context"
	"time"

	"jarvis-ai-be/internal/pkg/logger"
	pkgEvents "jarvis-ai-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for quota and provider activity.
// Implementations never fail the caller.
type Publisher interface {
	PublishQuotaExceeded(ctx context.Context, userId uuid.UUID, model string, limit, used int)
	PublishModelFallback(ctx context.Context, userId uuid.UUID, requested, used string)
	PublishUsageReset(ctx context.Context, rows int64, day time.Time)
	PublishProviderFailure(ctx context.Context, userId, sessionId uuid.UUID, model string, cause error)
}

// Bus is satisfied by *nats.Publisher.
type Bus interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

type NatsPublisher struct {
	bus    Bus
	logger logger.ILogger
}

// NewNatsPublisher returns a publisher that logs and drops events when bus is nil.
func NewNatsPublisher(bus Bus, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{bus: bus, logger: logger}
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.bus == nil {
		p.logger.Debug("USAGE", "Event bus disabled, dropping "+eventType, data)
		return
	}

	evt := pkgEvents.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("USAGE", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishQuotaExceeded(ctx context.Context, userId uuid.UUID, model string, limit, used int) {
	p.publish(ctx, pkgEvents.TypeQuotaExceeded, map[string]interface{}{
		"user_id":     userId.String(),
		"model":       model,
		"limit":       limit,
		"used":        used,
		"entity_type": "user",
		"entity_id":   userId.String(),
	})
}

func (p *NatsPublisher) PublishModelFallback(ctx context.Context, userId uuid.UUID, requested, used string) {
	p.publish(ctx, pkgEvents.TypeModelFallback, map[string]interface{}{
		"user_id":         userId.String(),
		"requested_model": requested,
		"model_used":      used,
	})
}

func (p *NatsPublisher) PublishUsageReset(ctx context.Context, rows int64, day time.Time) {
	p.publish(ctx, pkgEvents.TypeUsageReset, map[string]interface{}{
		"rows_reset": rows,
		"reset_date": day.Format("2006-01-02"),
	})
}

func (p *NatsPublisher) PublishProviderFailure(ctx context.Context, userId, sessionId uuid.UUID, model string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	p.publish(ctx, pkgEvents.TypeProviderFailure, map[string]interface{}{
		"user_id":         userId.String(),
		"chat_session_id": sessionId.String(),
		"model":           model,
		"error":           msg,
	})
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishQuotaExceeded(context.Context, uuid.UUID, string, int, int)           {}
func (Nop) PublishModelFallback(context.Context, uuid.UUID, string, string)             {}
func (Nop) PublishUsageReset(context.Context, int64, time.Time)                         {}
func (Nop) PublishProviderFailure(context.Context, uuid.UUID, uuid.UUID, string, error) {}
