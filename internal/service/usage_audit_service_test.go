package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/memory"
	"jarvis-ai-be/pkg/events"
	pktNats "jarvis-ai-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	subject, durable string
	handler          pktNats.EventHandler
	err              error
}

func (r *recordingSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error {
	r.subject, r.durable, r.handler = subject, durableName, handler
	return r.err
}

func TestUsageAuditPersistsEvents(t *testing.T) {
	f := memory.NewFactory()
	sub := &recordingSubscriber{}
	svc := NewUsageAuditService(f, sub, logger.NewNopLogger())
	svc.Start(context.Background())

	assert.Equal(t, "ai.>", sub.subject)
	assert.Equal(t, "usage-audit", sub.durable)
	require.NotNil(t, sub.handler)

	userId := uuid.New()
	at := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sub.handler(context.Background(), events.BaseEvent{
		Type:       events.TypeQuotaExceeded,
		Data:       map[string]interface{}{"user_id": userId.String(), "model": "gpt-4"},
		OccurredAt: at,
	}))
	require.NoError(t, sub.handler(context.Background(), events.BaseEvent{
		Type:       events.TypeUsageReset,
		Data:       map[string]interface{}{"rows": float64(3)},
		OccurredAt: at,
	}))

	stored := f.Store.Events()
	require.Len(t, stored, 2)
	assert.Equal(t, events.TypeQuotaExceeded, stored[0].Type)
	require.NotNil(t, stored[0].UserId)
	assert.Equal(t, userId, *stored[0].UserId)
	assert.Equal(t, at, stored[0].OccurredAt)
	assert.Equal(t, "gpt-4", stored[0].Payload["model"])
	assert.Nil(t, stored[1].UserId)
}

func TestUsageAuditStartWithoutBus(t *testing.T) {
	assert.NotPanics(t, func() {
		NewUsageAuditService(memory.NewFactory(), nil, logger.NewNopLogger()).Start(context.Background())
	})
	assert.NotPanics(t, func() {
		NewUsageAuditService(memory.NewFactory(), &recordingSubscriber{err: errors.New("no stream")}, logger.NewNopLogger()).Start(context.Background())
	})
}
