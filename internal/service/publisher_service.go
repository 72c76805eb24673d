package service

import (
	"context"
	"encoding/json"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/pkg/assistant/engine"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishExchange(ctx context.Context, ex engine.Exchange) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

// NewPublisherService publishes insight jobs onto the in-process bus.
func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}

func (ps *publisherService) PublishExchange(ctx context.Context, ex engine.Exchange) error {
	payload, err := json.Marshal(dto.ChatExchangedMessage{
		ChatSessionId: ex.SessionID,
		UserId:        ex.UserID,
		OccurredAt:    ex.OccurredAt,
	})
	if err != nil {
		return err
	}
	return ps.Publish(ctx, payload)
}
