// Package engine runs one chat exchange end to end: validation, quota,
// ERP context, the model call and persistence.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/aiconfig"
	"jarvis-ai-be/pkg/assistant/classifier"
	"jarvis-ai-be/pkg/assistant/events"
	"jarvis-ai-be/pkg/assistant/period"
	"jarvis-ai-be/pkg/assistant/prompt"
	"jarvis-ai-be/pkg/assistant/usage"
	"jarvis-ai-be/pkg/llm"
	"jarvis-ai-be/pkg/llm/factory"
	"jarvis-ai-be/pkg/report"
	"jarvis-ai-be/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// SessionNameLimit is the rune length of a session name derived from the first message.
	SessionNameLimit = 50

	defaultTimeout = 60 * time.Second
	tracerName     = "jarvis.engine"
)

type SendRequest struct {
	UserID    uuid.UUID
	CompanyID int64
	SessionID uuid.UUID
	Message   string
	Model     string
	QueryMode string
}

type SendResult struct {
	Content    string
	ModelUsed  string
	TokenCount int
	MessageID  uuid.UUID
	MessageUID string
	Fallback   bool
}

// ConfigSource hands out the provider snapshot for one request.
type ConfigSource interface {
	Get(ctx context.Context) (aiconfig.ProviderConfig, error)
}

// Reports is the generator registry as seen by the engine.
type Reports interface {
	Dispatch(ctx context.Context, categories []string, req report.Request) string
	Collect(ctx context.Context, names []string, req report.Request) []report.Result
}

// CompanyLookup feeds the company block of the business persona.
type CompanyLookup interface {
	Company(ctx context.Context, companyID int64) (*report.Company, error)
}

// ProviderFactory builds a provider client for a snapshot and model.
type ProviderFactory func(cfg aiconfig.ProviderConfig, model string) (llm.LLMProvider, error)

// DefaultProviderFactory dispatches on cfg.Provider.
func DefaultProviderFactory(cfg aiconfig.ProviderConfig, model string) (llm.LLMProvider, error) {
	return factory.NewLLMProvider(cfg.Provider, model, cfg.BaseURL, cfg.APIKey)
}

// Exchange describes a completed exchange for background insight jobs.
type Exchange struct {
	SessionID  uuid.UUID `json:"session_id"`
	UserID     uuid.UUID `json:"user_id"`
	CompanyID  int64     `json:"company_id"`
	ModelUsed  string    `json:"model_used"`
	OccurredAt time.Time `json:"occurred_at"`
}

type InsightPublisher interface {
	PublishExchange(ctx context.Context, ex Exchange) error
}

type Deps struct {
	UOWFactory unitofwork.RepositoryFactory
	Configs    ConfigSource
	Policy     *usage.Policy
	Classifier *classifier.Classifier
	Reports    Reports
	Companies  CompanyLookup
	Providers  ProviderFactory
	Events     events.Publisher
	Insights   InsightPublisher
	Logger     logger.ILogger
	Timeout    time.Duration
	Location   *time.Location
}

type Engine struct {
	uowFactory unitofwork.RepositoryFactory
	configs    ConfigSource
	policy     *usage.Policy
	classifier *classifier.Classifier
	reports    Reports
	companies  CompanyLookup
	providers  ProviderFactory
	events     events.Publisher
	insights   InsightPublisher
	logger     logger.ILogger
	timeout    time.Duration
	loc        *time.Location
	now        func() time.Time
}

func New(d Deps) *Engine {
	if d.Providers == nil {
		d.Providers = DefaultProviderFactory
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &Engine{
		uowFactory: d.UOWFactory,
		configs:    d.Configs,
		policy:     d.Policy,
		classifier: d.Classifier,
		reports:    d.Reports,
		companies:  d.Companies,
		providers:  d.Providers,
		events:     d.Events,
		insights:   d.Insights,
		logger:     d.Logger,
		timeout:    d.Timeout,
		loc:        d.Location,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// contextPayload is stored on the assistant message as context_data.
type contextPayload struct {
	Categories    []string `json:"categories"`
	PeriodFrom    string   `json:"period_from"`
	PeriodTo      string   `json:"period_to"`
	Comprehensive bool     `json:"comprehensive"`
	Data          string   `json:"data"`
}

// modelChoice is the outcome of the quota decision.
type modelChoice struct {
	model    string
	premium  bool
	reserved bool
	fallback bool
}

func (e *Engine) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	content := strings.TrimSpace(req.Message)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.SessionID},
		specification.UserOwnedBy{UserID: req.UserID},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	cfg, err := e.configs.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider config: %w", err)
	}
	if cfg.APIKey == "" && factory.RequiresAPIKey(cfg.Provider) {
		return nil, ErrAPIKeyMissing
	}

	settings, err := e.policy.GetOrCreate(ctx, req.UserID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	choice, err := e.chooseModel(ctx, req, cfg, settings)
	if err != nil {
		return nil, err
	}

	msgRepo := uow.ChatMessageRepository()
	existing, err := msgRepo.Count(ctx, specification.ByChatSessionID{ChatSessionID: session.Id})
	if err != nil {
		e.release(ctx, choice, settings)
		return nil, err
	}
	isFirst := existing == 0

	userMsg := newMessage(session.Id, entity.ChatRoleUser, content, e.now())
	if err := msgRepo.Create(ctx, userMsg); err != nil {
		e.release(ctx, choice, settings)
		return nil, fmt.Errorf("save user message: %w", err)
	}

	cls := e.classifier.Classify(content, classifier.ParseMode(req.QueryMode))
	payload := e.gatherContext(ctx, req.CompanyID, content, cls)

	history, err := msgRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.ExcludeRole{Role: entity.ChatRoleSystem},
		specification.ExcludeID{ID: userMsg.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		e.logger.Warn("ENGINE", "Failed to load history", map[string]interface{}{"session_id": session.Id.String(), "error": err.Error()})
		history = nil
	}

	builder := prompt.NewBuilder(cls.Business).
		WithCustomPrompt(settings.CustomSystemPrompt).
		WithHistory(prompt.History(history)).
		WithContent(content)
	if cls.Business {
		builder.WithCompany(e.company(ctx, req.CompanyID))
		if payload != nil {
			builder.WithData(payload.Data)
		}
	}

	start := time.Now()
	completion, callErr := e.callProvider(ctx, cfg, choice.model, settings, builder.Build())
	elapsed := time.Since(start)

	if callErr != nil {
		return nil, e.fail(ctx, req, session, choice, settings, callErr)
	}

	assistantMsg := newMessage(session.Id, entity.ChatRoleAssistant, completion.Content, e.now())
	assistantMsg.ModelUsed = choice.model
	if completion.Model != "" {
		assistantMsg.ModelUsed = completion.Model
	}
	assistantMsg.TokenCount = completion.TotalTokens
	assistantMsg.ResponseTime = elapsed.Seconds()
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			assistantMsg.ContextData = raw
		}
	}

	delta := contract.SessionDelta{
		Messages:      2,
		Tokens:        completion.TotalTokens,
		LastMessageAt: assistantMsg.CreatedAt,
	}
	if choice.premium {
		delta.Premium = 1
	} else {
		delta.Baseline = 1
	}
	if isFirst {
		delta.Rename = utils.Truncate(content, SessionNameLimit)
	}

	if err := e.commitExchange(ctx, settings, assistantMsg, session.Id, delta); err != nil {
		return nil, err
	}

	e.logger.Info("ENGINE", "Chat exchange completed", map[string]interface{}{
		"session_id":  session.Id.String(),
		"model":       assistantMsg.ModelUsed,
		"tokens":      completion.TotalTokens,
		"business":    cls.Business,
		"fallback":    choice.fallback,
		"duration_ms": elapsed.Milliseconds(),
	})

	if e.insights != nil {
		ex := Exchange{SessionID: session.Id, UserID: req.UserID, CompanyID: req.CompanyID, ModelUsed: assistantMsg.ModelUsed, OccurredAt: assistantMsg.CreatedAt}
		if err := e.insights.PublishExchange(ctx, ex); err != nil {
			e.logger.Warn("ENGINE", "Failed to publish insight job", map[string]interface{}{"session_id": session.Id.String(), "error": err.Error()})
		}
	}

	return &SendResult{
		Content:    completion.Content,
		ModelUsed:  assistantMsg.ModelUsed,
		TokenCount: completion.TotalTokens,
		MessageID:  assistantMsg.Id,
		MessageUID: assistantMsg.MessageUid,
		Fallback:   choice.fallback,
	}, nil
}

// chooseModel resolves the model and takes a premium slot when needed.
func (e *Engine) chooseModel(ctx context.Context, req SendRequest, cfg aiconfig.ProviderConfig, settings *entity.UserAISettings) (modelChoice, error) {
	model := firstNonEmpty(req.Model, settings.DefaultModel, cfg.DefaultModel)
	if !cfg.IsPremium(model) {
		return modelChoice{model: model}, nil
	}

	ok, err := e.policy.Reserve(ctx, settings)
	if err != nil {
		return modelChoice{}, err
	}
	if ok {
		return modelChoice{model: model, premium: true, reserved: true}, nil
	}

	baseline := cfg.BaselineModel
	if settings.FallbackToBaseline && baseline != "" && !cfg.IsPremium(baseline) {
		e.events.PublishModelFallback(ctx, req.UserID, model, baseline)
		e.logger.Info("USAGE", "Premium quota used up, falling back", map[string]interface{}{
			"user_id":   req.UserID.String(),
			"requested": model,
			"used":      baseline,
		})
		return modelChoice{model: baseline, fallback: true}, nil
	}

	e.events.PublishQuotaExceeded(ctx, req.UserID, model, settings.DailyPremiumLimit, settings.PremiumUsageCount)
	return modelChoice{}, &dto.QuotaExceededError{
		Limit:      settings.DailyPremiumLimit,
		Used:       settings.PremiumUsageCount,
		Model:      QuotaLabel(model, cfg.PremiumPrefixes),
		ResetAfter: e.policy.ResetAfter(),
	}
}

// QuotaLabel names the premium tier a model belongs to, e.g. "GPT-4".
func QuotaLabel(model string, prefixes []string) string {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(model, p) {
			return strings.ToUpper(p)
		}
	}
	return model
}

func (e *Engine) release(ctx context.Context, choice modelChoice, settings *entity.UserAISettings) {
	if !choice.reserved {
		return
	}
	if err := e.policy.Release(ctx, settings); err != nil {
		e.logger.Error("USAGE", "Failed to release premium slot", map[string]interface{}{"settings_id": settings.Id.String(), "error": err.Error()})
	}
}

// gatherContext returns nil for non-business messages.
func (e *Engine) gatherContext(ctx context.Context, companyID int64, content string, cls classifier.Classification) *contextPayload {
	if !cls.Business {
		return nil
	}

	p := period.Extract(content, e.now().In(e.loc))
	rreq := report.Request{Message: content, CompanyID: companyID, Period: p}

	var data string
	categories := cls.Categories
	if cls.Comprehensive {
		categories = []string{report.NameComprehensive}
		for _, res := range e.reports.Collect(ctx, categories, rreq) {
			data = res.Section.String()
		}
	} else {
		if len(categories) == 0 {
			categories = []string{classifier.CategoryBasic}
		}
		data = e.reports.Dispatch(ctx, categories, rreq)
	}
	if p.Note != "" {
		data = p.Note + "\n\n" + data
	}

	return &contextPayload{
		Categories:    categories,
		PeriodFrom:    p.FromString(),
		PeriodTo:      p.ToString(),
		Comprehensive: cls.Comprehensive,
		Data:          data,
	}
}

func (e *Engine) company(ctx context.Context, companyID int64) *prompt.Company {
	if e.companies == nil {
		return nil
	}
	c, err := e.companies.Company(ctx, companyID)
	if err != nil {
		e.logger.Warn("ENGINE", "Failed to load company profile", map[string]interface{}{"company_id": companyID, "error": err.Error()})
		return nil
	}
	if c == nil {
		return nil
	}
	return &prompt.Company{Name: c.Name, Website: c.Website, Email: c.Email, Phone: c.Phone}
}

func (e *Engine) callProvider(ctx context.Context, cfg aiconfig.ProviderConfig, model string, settings *entity.UserAISettings, messages []llm.Message) (*llm.Completion, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", cfg.Provider),
		attribute.String("llm.model", model),
		attribute.Int("llm.messages", len(messages)),
	)

	provider, err := e.providers(cfg, model)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	completion, err := provider.Chat(ctx, messages,
		llm.WithModel(model),
		llm.WithTemperature(settings.Temperature),
		llm.WithMaxTokens(settings.MaxTokens),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("llm.total_tokens", completion.TotalTokens))
	return completion, nil
}

// fail records a provider failure: the slot goes back, a system note is stored
// and the session counters move by the two stored messages.
func (e *Engine) fail(ctx context.Context, req SendRequest, session *entity.ChatSession, choice modelChoice, settings *entity.UserAISettings, cause error) error {
	e.release(ctx, choice, settings)

	e.logger.Error("ENGINE", "Provider call failed", map[string]interface{}{
		"session_id": session.Id.String(),
		"model":      choice.model,
		"error":      cause.Error(),
	})

	uow := e.uowFactory.NewUnitOfWork(ctx)
	note := newMessage(session.Id, entity.ChatRoleSystem,
		fmt.Sprintf("Sorry, I encountered an error while processing your request: %v", cause), e.now())
	note.ModelUsed = choice.model
	if err := uow.ChatMessageRepository().Create(ctx, note); err != nil {
		e.logger.Error("ENGINE", "Failed to save error note", map[string]interface{}{"session_id": session.Id.String(), "error": err.Error()})
	} else if err := uow.ChatSessionRepository().Touch(ctx, session.Id, contract.SessionDelta{Messages: 2, LastMessageAt: note.CreatedAt}); err != nil {
		e.logger.Error("ENGINE", "Failed to update session counters", map[string]interface{}{"session_id": session.Id.String(), "error": err.Error()})
	}

	e.events.PublishProviderFailure(ctx, req.UserID, session.Id, choice.model, cause)
	return &ProviderError{Model: choice.model, Err: cause}
}

func (e *Engine) commitExchange(ctx context.Context, settings *entity.UserAISettings, msg *entity.ChatMessage, sessionID uuid.UUID, delta contract.SessionDelta) error {
	uow := e.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return fmt.Errorf("save assistant message: %w", err)
	}
	if err := uow.ChatSessionRepository().Touch(ctx, sessionID, delta); err != nil {
		return fmt.Errorf("update session counters: %w", err)
	}
	if err := uow.UserAISettingsRepository().AddTokens(ctx, settings.Id, delta.Tokens); err != nil {
		return fmt.Errorf("update token usage: %w", err)
	}
	return uow.Commit()
}

func newMessage(sessionID uuid.UUID, role, content string, at time.Time) *entity.ChatMessage {
	id := uuid.New()
	return &entity.ChatMessage{
		Id:            id,
		ChatSessionId: sessionID,
		MessageUid:    "msg_" + id.String(),
		Role:          role,
		Content:       content,
		CreatedAt:     at,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
