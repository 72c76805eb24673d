package service

import (
	"context"
	"encoding/json"
	"strings"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/assistant/engine"
	"jarvis-ai-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	topicMaxMessages   = 6
	topicSourceCount   = 3
	topicMaxTokens     = 20
	summaryMinMessages = 5
	summarySourceCount = 10
	summaryMaxTokens   = 100

	topicPrompt   = "Please provide a very brief 2-4 word topic for this conversation."
	summaryPrompt = "Please provide a brief summary of this conversation in 1-2 sentences."
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService refreshes session topic and summary after each exchange.
// It always uses the baseline model and never touches the premium quota.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	configs    engine.ConfigSource
	providers  engine.ProviderFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	configs engine.ConfigSource,
	providers engine.ProviderFactory,
	logger logger.ILogger,
) IConsumerService {
	if providers == nil {
		providers = engine.DefaultProviderFactory
	}
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		configs:    configs,
		providers:  providers,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatExchangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("INSIGHT", "Failed to unmarshal insight job", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	if err := cs.Refresh(ctx, payload.ChatSessionId); err != nil {
		cs.logger.Error("INSIGHT", "Failed to refresh session insights", map[string]interface{}{
			"session_id": payload.ChatSessionId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

// Refresh regenerates the topic while the session is young and the summary
// once it has enough messages. Provider errors are logged, not returned.
func (cs *consumerService) Refresh(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.ExcludeRole{Role: entity.ChatRoleSystem},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return err
	}

	count := len(messages)
	if count == 0 {
		return nil
	}

	cfg, err := cs.configs.Get(ctx)
	if err != nil {
		return err
	}
	model := cfg.BaselineModel
	if model == "" {
		model = cfg.DefaultModel
	}
	provider, err := cs.providers(cfg, model)
	if err != nil {
		return err
	}

	var patch contract.SessionPatch
	if count <= topicMaxMessages {
		topic := defaultTopic
		if out, err := cs.ask(ctx, provider, model, topicPrompt, messages[:min(count, topicSourceCount)], topicMaxTokens); err != nil {
			cs.logger.Warn("INSIGHT", "Topic generation failed", map[string]interface{}{"session_id": sessionId.String(), "error": err.Error()})
		} else if out != "" {
			topic = out
		}
		patch.Topic = &topic
	}
	if count >= summaryMinMessages {
		from := 0
		if count > summarySourceCount {
			from = count - summarySourceCount
		}
		if out, err := cs.ask(ctx, provider, model, summaryPrompt, messages[from:], summaryMaxTokens); err != nil {
			cs.logger.Warn("INSIGHT", "Summary generation failed", map[string]interface{}{"session_id": sessionId.String(), "error": err.Error()})
		} else if out != "" {
			patch.Summary = &out
		}
	}

	if patch.Topic == nil && patch.Summary == nil {
		return nil
	}
	if err := uow.ChatSessionRepository().Patch(ctx, sessionId, patch); err != nil {
		return err
	}
	cs.logger.Debug("INSIGHT", "Session insights refreshed", map[string]interface{}{
		"session_id": sessionId.String(),
		"messages":   count,
	})
	return nil
}

func (cs *consumerService) ask(ctx context.Context, provider llm.LLMProvider, model, instruction string, messages []*entity.ChatMessage, maxTokens int) (string, error) {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Content)
	}
	res, err := provider.Chat(ctx, []llm.Message{
		{Role: entity.ChatRoleSystem, Content: instruction},
		{Role: entity.ChatRoleUser, Content: strings.Join(lines, "\n")},
	}, llm.WithModel(model), llm.WithMaxTokens(maxTokens))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Content), nil
}
