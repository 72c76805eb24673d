package service

import (
	"context"
	"fmt"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/events"
	pktNats "jarvis-ai-be/pkg/nats"

	"github.com/google/uuid"
)

const (
	auditSubject = "ai.>"
	auditDurable = "usage-audit"
)

// EventSubscriber is satisfied by *pktNats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// UsageAuditService persists every usage bus event into ai_usage_events.
type UsageAuditService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewUsageAuditService(uowFactory unitofwork.RepositoryFactory, sub EventSubscriber, log logger.ILogger) *UsageAuditService {
	return &UsageAuditService{
		uowFactory: uowFactory,
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *UsageAuditService) Start(ctx context.Context) {
	if s.subscriber == nil {
		s.logger.Warn("AUDIT", "Event bus unavailable, usage audit disabled", nil)
		return
	}
	if err := s.subscriber.Subscribe(ctx, auditSubject, auditDurable, s.HandleEvent); err != nil {
		s.logger.Error("AUDIT", "Failed to start usage audit subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("AUDIT", "Usage audit started, listening to "+auditSubject, nil)
}

func (s *UsageAuditService) HandleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	record := &entity.AiUsageEvent{
		Id:         uuid.New(),
		Type:       event.EventType(),
		Payload:    payload,
		OccurredAt: event.Timestamp(),
	}
	if raw, ok := payload["user_id"].(string); ok {
		if uid, err := uuid.Parse(raw); err == nil {
			record.UserId = &uid
		}
	}

	if err := s.uowFactory.NewUnitOfWork(ctx).AiUsageEventRepository().Create(ctx, record); err != nil {
		return fmt.Errorf("persist usage event %s: %w", record.Type, err)
	}

	s.logger.Info("AUDIT", fmt.Sprintf("Usage event: %s", record.Type), payload)
	return nil
}
