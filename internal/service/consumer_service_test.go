package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/memory"
	"jarvis-ai-be/pkg/aiconfig"
	"jarvis-ai-be/pkg/assistant/engine"
	"jarvis-ai-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	args := m.Called(history, llm.Apply("", options...))
	c, _ := args.Get(0).(*llm.Completion)
	return c, args.Error(1)
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return llm.Generate(ctx, m, prompt, options...)
}

type staticConfig struct {
	cfg aiconfig.ProviderConfig
}

func (s staticConfig) Get(ctx context.Context) (aiconfig.ProviderConfig, error) { return s.cfg, nil }

func maxTokens(n int) interface{} {
	return mock.MatchedBy(func(o *llm.Options) bool { return o.MaxTokens == n && o.Model == "gpt-3.5-turbo" })
}

func newConsumer(t *testing.T, provider llm.LLMProvider) (*consumerService, *memory.Factory, *gochannel.GoChannel) {
	t.Helper()
	f := memory.NewFactory()
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	cfg := aiconfig.ProviderConfig{Provider: "openai", APIKey: "sk-test", DefaultModel: "gpt-4", BaselineModel: "gpt-3.5-turbo"}
	providers := func(c aiconfig.ProviderConfig, model string) (llm.LLMProvider, error) {
		return provider, nil
	}
	cs := NewConsumerService(bus, "insights", f, staticConfig{cfg: cfg}, providers, logger.NewNopLogger()).(*consumerService)
	return cs, f, bus
}

func seedConversation(t *testing.T, f *memory.Factory, n int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	session := &entity.ChatSession{Id: uuid.New(), UserId: uuid.New(), Name: "s"}
	require.NoError(t, f.NewUnitOfWork(ctx).ChatSessionRepository().Create(ctx, session))
	for i := 0; i < n; i++ {
		role := entity.ChatRoleUser
		if i%2 == 1 {
			role = entity.ChatRoleAssistant
		}
		addMessage(t, f, session.Id, role, fmt.Sprintf("m%d", i), 0)
	}
	return session.Id
}

func TestRefreshTopicOnly(t *testing.T) {
	provider := &mockProvider{}
	cs, f, _ := newConsumer(t, provider)
	sessionId := seedConversation(t, f, 2)
	addMessage(t, f, sessionId, entity.ChatRoleSystem, "error note", 0)

	provider.On("Chat", mock.MatchedBy(func(h []llm.Message) bool {
		return len(h) == 2 && h[1].Content == "m0\nm1"
	}), maxTokens(20)).Return(&llm.Completion{Content: " Sales Review \n"}, nil).Once()

	require.NoError(t, cs.Refresh(context.Background(), sessionId))
	s := f.Store.Session(sessionId)
	assert.Equal(t, "Sales Review", s.Topic)
	assert.Empty(t, s.Summary)
	provider.AssertExpectations(t)
}

func TestRefreshTopicAndSummary(t *testing.T) {
	provider := &mockProvider{}
	cs, f, _ := newConsumer(t, provider)
	sessionId := seedConversation(t, f, 6)

	provider.On("Chat", mock.MatchedBy(func(h []llm.Message) bool {
		return h[1].Content == "m0\nm1\nm2"
	}), maxTokens(20)).Return(&llm.Completion{Content: "Inventory"}, nil).Once()
	provider.On("Chat", mock.Anything, maxTokens(100)).Return(&llm.Completion{Content: "User asked about stock."}, nil).Once()

	require.NoError(t, cs.Refresh(context.Background(), sessionId))
	s := f.Store.Session(sessionId)
	assert.Equal(t, "Inventory", s.Topic)
	assert.Equal(t, "User asked about stock.", s.Summary)
	provider.AssertExpectations(t)
}

func TestRefreshSummaryUsesLastTen(t *testing.T) {
	provider := &mockProvider{}
	cs, f, _ := newConsumer(t, provider)
	sessionId := seedConversation(t, f, 12)

	provider.On("Chat", mock.MatchedBy(func(h []llm.Message) bool {
		return h[1].Content == "m2\nm3\nm4\nm5\nm6\nm7\nm8\nm9\nm10\nm11"
	}), maxTokens(100)).Return(&llm.Completion{Content: "Long chat."}, nil).Once()

	require.NoError(t, cs.Refresh(context.Background(), sessionId))
	s := f.Store.Session(sessionId)
	assert.Empty(t, s.Topic)
	assert.Equal(t, "Long chat.", s.Summary)
	provider.AssertExpectations(t)
}

func TestRefreshProviderErrorFallsBack(t *testing.T) {
	provider := &mockProvider{}
	cs, f, _ := newConsumer(t, provider)
	sessionId := seedConversation(t, f, 5)

	provider.On("Chat", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	require.NoError(t, cs.Refresh(context.Background(), sessionId))
	s := f.Store.Session(sessionId)
	assert.Equal(t, "New Chat", s.Topic)
	assert.Empty(t, s.Summary)
}

func TestRefreshSkipsEmptyOrMissing(t *testing.T) {
	provider := &mockProvider{}
	cs, f, _ := newConsumer(t, provider)

	require.NoError(t, cs.Refresh(context.Background(), uuid.New()))
	require.NoError(t, cs.Refresh(context.Background(), seedConversation(t, f, 0)))
	provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestConsumeFromPublishedExchange(t *testing.T) {
	provider := &mockProvider{}
	cs, f, bus := newConsumer(t, provider)
	sessionId := seedConversation(t, f, 2)
	provider.On("Chat", mock.Anything, maxTokens(20)).Return(&llm.Completion{Content: "Greeting"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cs.Consume(ctx))

	publisher := NewPublisherService("insights", bus)
	require.NoError(t, publisher.Publish(ctx, []byte("not json")))
	require.NoError(t, publisher.PublishExchange(ctx, engine.Exchange{SessionID: sessionId, UserID: uuid.New(), OccurredAt: time.Now()}))

	assert.Eventually(t, func() bool {
		return f.Store.Session(sessionId).Topic == "Greeting"
	}, 2*time.Second, 10*time.Millisecond)
}
