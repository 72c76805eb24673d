package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/memory"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/pkg/aiconfig"
	"jarvis-ai-be/pkg/assistant/classifier"
	"jarvis-ai-be/pkg/assistant/usage"
	"jarvis-ai-be/pkg/llm"
	"jarvis-ai-be/pkg/report"
	"jarvis-ai-be/pkg/utils"

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

type fakeReports struct {
	mu         sync.Mutex
	data       string
	dispatched [][]string
	collected  [][]string
	last       report.Request
}

func (f *fakeReports) Dispatch(ctx context.Context, categories []string, req report.Request) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, categories)
	f.last = req
	return f.data
}

func (f *fakeReports) Collect(ctx context.Context, names []string, req report.Request) []report.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collected = append(f.collected, names)
	f.last = req
	return []report.Result{{Name: names[0], Section: &report.Section{Body: f.data}}}
}

type fakeCompanies struct{}

func (fakeCompanies) Company(ctx context.Context, companyID int64) (*report.Company, error) {
	return &report.Company{Name: "PITCAR Service", Email: "cs@pitcar.co.id"}, nil
}

type recordedEvents struct {
	mu        sync.Mutex
	exceeded  int
	fallbacks []string
	failures  []string
}

func (r *recordedEvents) PublishQuotaExceeded(ctx context.Context, userId uuid.UUID, model string, limit, used int) {
	r.mu.Lock()
	r.exceeded++
	r.mu.Unlock()
}

func (r *recordedEvents) PublishModelFallback(ctx context.Context, userId uuid.UUID, requested, used string) {
	r.mu.Lock()
	r.fallbacks = append(r.fallbacks, requested+"->"+used)
	r.mu.Unlock()
}

func (r *recordedEvents) PublishUsageReset(ctx context.Context, rows int64, day time.Time) {}

func (r *recordedEvents) PublishProviderFailure(ctx context.Context, userId, sessionId uuid.UUID, model string, cause error) {
	r.mu.Lock()
	r.failures = append(r.failures, model)
	r.mu.Unlock()
}

type recordedInsights struct {
	exchanges []Exchange
}

func (r *recordedInsights) PublishExchange(ctx context.Context, ex Exchange) error {
	r.exchanges = append(r.exchanges, ex)
	return nil
}

type fixture struct {
	engine   *Engine
	factory  *memory.Factory
	policy   *usage.Policy
	provider *mockProvider
	reports  *fakeReports
	events   *recordedEvents
	insights *recordedInsights
	userID   uuid.UUID
	session  *entity.ChatSession
}

var fixedNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

func defaultConfig() aiconfig.ProviderConfig {
	return aiconfig.ProviderConfig{
		Provider:        "openai",
		APIKey:          "sk-test",
		DefaultModel:    "gpt-3.5-turbo",
		BaselineModel:   "gpt-3.5-turbo",
		PremiumPrefixes: []string{"gpt-4"},
	}
}

func newFixture(t *testing.T, cfg aiconfig.ProviderConfig, premiumLimit int) *fixture {
	t.Helper()
	f := &fixture{
		factory:  memory.NewFactory(),
		provider: &mockProvider{},
		reports:  &fakeReports{data: "Sales Data (2025-06-01 to 2025-06-18):\n- Total Orders: 12"},
		events:   &recordedEvents{},
		insights: &recordedInsights{},
		userID:   uuid.New(),
	}
	clock := func() time.Time { return fixedNow }
	f.policy = usage.NewPolicy(f.factory, usage.Defaults{Model: "gpt-3.5-turbo", DailyPremiumLimit: premiumLimit}, time.UTC, logger.NewNopLogger()).WithClock(clock)

	f.engine = New(Deps{
		UOWFactory: f.factory,
		Configs:    staticConfig{cfg: cfg},
		Policy:     f.policy,
		Classifier: classifier.MustNew(),
		Reports:    f.reports,
		Companies:  fakeCompanies{},
		Providers: func(aiconfig.ProviderConfig, string) (llm.LLMProvider, error) {
			return f.provider, nil
		},
		Events:   f.events,
		Insights: f.insights,
		Logger:   logger.NewNopLogger(),
	}).WithClock(clock)

	f.session = &entity.ChatSession{Id: uuid.New(), UserId: f.userID, CompanyId: 1, Name: "New Chat", State: entity.ChatSessionStateActive, CreatedAt: fixedNow}
	require.NoError(t, f.factory.NewUnitOfWork(context.Background()).ChatSessionRepository().Create(context.Background(), f.session))
	return f
}

func (f *fixture) send(message, model string) (*SendResult, error) {
	return f.engine.Send(context.Background(), SendRequest{
		UserID:    f.userID,
		CompanyID: 1,
		SessionID: f.session.Id,
		Message:   message,
		Model:     model,
	})
}

func (f *fixture) settings(t *testing.T) *entity.UserAISettings {
	t.Helper()
	s, err := f.factory.NewUnitOfWork(context.Background()).UserAISettingsRepository().FindOne(context.Background(),
		specification.UserOwnedBy{UserID: f.userID})
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func reply(content string, tokens int) *llm.Completion {
	return &llm.Completion{Content: content, TotalTokens: tokens}
}

func TestSendRejectsBeforeSideEffects(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), 5)
		_, err := f.send("   ", "")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, f.factory.Store.Messages(f.session.Id))
	})

	t.Run("session owned by someone else", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), 5)
		_, err := f.engine.Send(context.Background(), SendRequest{UserID: uuid.New(), CompanyID: 1, SessionID: f.session.Id, Message: "hi"})
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Empty(t, f.factory.Store.Messages(f.session.Id))
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.APIKey = ""
		f := newFixture(t, cfg, 5)
		_, err := f.send("hello", "")
		assert.ErrorIs(t, err, ErrAPIKeyMissing)
		assert.Empty(t, f.factory.Store.Messages(f.session.Id))
		f.provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
	})

	t.Run("ollama runs without a key", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Provider = "ollama"
		cfg.APIKey = ""
		f := newFixture(t, cfg, 5)
		f.provider.On("Chat", mock.Anything, mock.Anything).Return(reply("ok", 3), nil)
		_, err := f.send("hello", "")
		assert.NoError(t, err)
	})
}

func TestSendGeneralConversation(t *testing.T) {
	f := newFixture(t, defaultConfig(), 5)
	first := strings.Repeat("Tolong jelaskan ", 5)

	f.provider.On("Chat", mock.Anything, mock.MatchedBy(func(o *llm.Options) bool {
		return o.Model == "gpt-3.5-turbo" && o.Temperature == 0.7 && o.MaxTokens == 2000
	})).Return(reply("Tentu.", 42), nil).Once()

	res, err := f.send(first, "")
	require.NoError(t, err)
	assert.Equal(t, "Tentu.", res.Content)
	assert.Equal(t, "gpt-3.5-turbo", res.ModelUsed)
	assert.Equal(t, 42, res.TokenCount)
	assert.True(t, strings.HasPrefix(res.MessageUID, "msg_"))
	assert.False(t, res.Fallback)

	msgs := f.factory.Store.Messages(f.session.Id)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.ChatRoleUser, msgs[0].Role)
	assert.Equal(t, strings.TrimSpace(first), msgs[0].Content)
	assert.Equal(t, entity.ChatRoleAssistant, msgs[1].Role)
	assert.Equal(t, res.MessageID, msgs[1].Id)
	assert.Equal(t, 42, msgs[1].TokenCount)
	assert.Nil(t, msgs[1].ContextData)

	sess := f.factory.Store.Session(f.session.Id)
	assert.Equal(t, utils.Truncate(first, SessionNameLimit), sess.Name)
	assert.True(t, strings.HasSuffix(sess.Name, "..."))
	assert.Equal(t, 2, sess.TotalMessages)
	assert.Equal(t, 42, sess.TotalTokens)
	assert.Equal(t, 1, sess.BaselineCount)
	assert.Equal(t, int64(42), f.settings(t).TotalTokensUsed)

	// The second exchange replays history and keeps the name.
	f.provider.On("Chat", mock.MatchedBy(func(h []llm.Message) bool {
		return len(h) == 4 && h[1].Content == strings.TrimSpace(first) && h[2].Content == "Tentu."
	}), mock.Anything).Return(reply("Lagi.", 10), nil).Once()

	_, err = f.send("Satu lagi", "")
	require.NoError(t, err)
	assert.Equal(t, sess.Name, f.factory.Store.Session(f.session.Id).Name)
	assert.Len(t, f.insights.exchanges, 2)
	assert.Empty(t, f.reports.dispatched)
	f.provider.AssertExpectations(t)
}

func TestSendBusinessQuestionAttachesERPData(t *testing.T) {
	f := newFixture(t, defaultConfig(), 5)

	var sent []llm.Message
	f.provider.On("Chat", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(0).([]llm.Message)
	}).Return(reply("Penjualan naik.", 80), nil)

	_, err := f.send("Berapa total penjualan bulan ini?", "")
	require.NoError(t, err)

	require.Len(t, f.reports.dispatched, 1)
	assert.Contains(t, f.reports.dispatched[0], "sales")
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), f.reports.last.Period.From)
	assert.Equal(t, int64(1), f.reports.last.CompanyID)

	require.NotEmpty(t, sent)
	assert.Contains(t, sent[0].Content, "PITCAR Service")
	user := sent[len(sent)-1].Content
	assert.Contains(t, user, "[SYSTEM: Here is relevant data from the ERP system to help answer this question]")
	assert.Contains(t, user, "- Total Orders: 12")

	msgs := f.factory.Store.Messages(f.session.Id)
	require.Len(t, msgs, 2)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[1].ContextData, &payload))
	assert.Equal(t, "2025-06-01", payload["period_from"])
	assert.Equal(t, "2025-06-18", payload["period_to"])
	assert.Equal(t, false, payload["comprehensive"])
}

func TestSendComprehensiveUsesCombinedReport(t *testing.T) {
	f := newFixture(t, defaultConfig(), 5)
	f.provider.On("Chat", mock.Anything, mock.Anything).Return(reply("Ringkasan.", 120), nil)

	_, err := f.send("Buatkan laporan komprehensif bulan ini", "")
	require.NoError(t, err)
	assert.Empty(t, f.reports.dispatched)
	require.Len(t, f.reports.collected, 1)
	assert.Equal(t, []string{report.NameComprehensive}, f.reports.collected[0])
}

func TestSendGeneralModeSkipsReports(t *testing.T) {
	f := newFixture(t, defaultConfig(), 5)
	f.provider.On("Chat", mock.Anything, mock.Anything).Return(reply("ok", 1), nil)

	_, err := f.engine.Send(context.Background(), SendRequest{
		UserID: f.userID, CompanyID: 1, SessionID: f.session.Id,
		Message: "Berapa total penjualan bulan ini?", QueryMode: "general",
	})
	require.NoError(t, err)
	assert.Empty(t, f.reports.dispatched)
}

func TestSendPremiumQuota(t *testing.T) {
	t.Run("premium call counts against the quota", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), 2)
		f.provider.On("Chat", mock.Anything, mock.Anything).Return(reply("ok", 5), nil)

		res, err := f.send("hello", "gpt-4")
		require.NoError(t, err)
		assert.Equal(t, "gpt-4", res.ModelUsed)
		assert.Equal(t, 1, f.settings(t).PremiumUsageCount)
		assert.Equal(t, 1, f.factory.Store.Session(f.session.Id).PremiumCount)
	})

	t.Run("exhausted quota falls back to baseline", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), 1)
		f.provider.On("Chat", mock.Anything, mock.MatchedBy(func(o *llm.Options) bool { return o.Model == "gpt-4" })).Return(reply("premium", 5), nil).Once()
		f.provider.On("Chat", mock.Anything, mock.MatchedBy(func(o *llm.Options) bool { return o.Model == "gpt-3.5-turbo" })).Return(reply("baseline", 5), nil).Once()

		_, err := f.send("one", "gpt-4")
		require.NoError(t, err)
		res, err := f.send("two", "gpt-4")
		require.NoError(t, err)

		assert.True(t, res.Fallback)
		assert.Equal(t, "gpt-3.5-turbo", res.ModelUsed)
		assert.Equal(t, []string{"gpt-4->gpt-3.5-turbo"}, f.events.fallbacks)
		assert.Equal(t, 1, f.settings(t).PremiumUsageCount)
		f.provider.AssertExpectations(t)
	})

	t.Run("exhausted quota without fallback is refused", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), 1)
		ctx := context.Background()

		settings, err := f.policy.GetOrCreate(ctx, f.userID, 1)
		require.NoError(t, err)
		settings.FallbackToBaseline = false
		require.NoError(t, f.factory.NewUnitOfWork(ctx).UserAISettingsRepository().Update(ctx, settings))
		require.NoError(t, f.policy.Increment(ctx, settings))

		_, err = f.send("hello", "gpt-4")
		var quota *dto.QuotaExceededError
		require.True(t, errors.As(err, &quota))
		assert.Equal(t, 1, quota.Limit)
		assert.Equal(t, 1, quota.Used)
		assert.Equal(t, "GPT-4", quota.Model)
		assert.Equal(t, time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), quota.ResetAfter)

		assert.Equal(t, 1, f.events.exceeded)
		assert.Empty(t, f.factory.Store.Messages(f.session.Id))
		f.provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
	})
}

func TestSendProviderFailure(t *testing.T) {
	f := newFixture(t, defaultConfig(), 3)
	f.provider.On("Chat", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	_, err := f.send("hello", "gpt-4")

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "gpt-4", perr.Model)
	assert.EqualError(t, perr.Err, "rate limited")

	msgs := f.factory.Store.Messages(f.session.Id)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.ChatRoleSystem, msgs[1].Role)
	assert.Equal(t, "Sorry, I encountered an error while processing your request: rate limited", msgs[1].Content)

	sess := f.factory.Store.Session(f.session.Id)
	assert.Equal(t, 2, sess.TotalMessages)
	assert.Equal(t, "New Chat", sess.Name)

	// The reserved premium slot is handed back.
	assert.Zero(t, f.settings(t).PremiumUsageCount)
	assert.Equal(t, []string{"gpt-4"}, f.events.failures)
	assert.Empty(t, f.insights.exchanges)
}

func TestQuotaLabel(t *testing.T) {
	assert.Equal(t, "GPT-4", QuotaLabel("gpt-4-turbo", []string{"gpt-4"}))
	assert.Equal(t, "claude-3", QuotaLabel("claude-3", []string{"gpt-4"}))
}
