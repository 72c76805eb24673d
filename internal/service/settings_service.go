package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/aiconfig"
	"jarvis-ai-be/pkg/assistant/engine"
	"jarvis-ai-be/pkg/assistant/usage"
	"jarvis-ai-be/pkg/llm/factory"

	"github.com/google/uuid"
)

const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minMaxTokens   = 100
	maxMaxTokens   = 4000
)

// AvailableModels are the models a user may pick as their default.
var AvailableModels = []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo", "gpt-4o-mini", "gpt-4o"}

type ISettingsService interface {
	GetSettings(ctx context.Context, userId uuid.UUID, companyId int64) (*dto.SettingsResponse, error)
	UpdateSettings(ctx context.Context, userId uuid.UUID, companyId int64, request *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	ListConfigurations(ctx context.Context) ([]*dto.AiConfigurationResponse, error)
	UpdateConfiguration(ctx context.Context, key string, request dto.UpdateAiConfigurationRequest) (*dto.AiConfigurationResponse, error)
	ReloadConfig(ctx context.Context) (*dto.ProviderConfigResponse, error)
}

type settingsService struct {
	uowFactory unitofwork.RepositoryFactory
	policy     *usage.Policy
	configs    engine.ConfigSource
	manager    *aiconfig.Manager
	logger     logger.ILogger
	loc        *time.Location
	now        func() time.Time
}

func NewSettingsService(uowFactory unitofwork.RepositoryFactory, policy *usage.Policy, configs engine.ConfigSource, manager *aiconfig.Manager, loc *time.Location, logger logger.ILogger) ISettingsService {
	if loc == nil {
		loc = time.UTC
	}
	return &settingsService{
		uowFactory: uowFactory,
		policy:     policy,
		configs:    configs,
		manager:    manager,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *settingsService) GetSettings(ctx context.Context, userId uuid.UUID, companyId int64) (*dto.SettingsResponse, error) {
	settings, err := s.policy.GetOrCreate(ctx, userId, companyId)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, settings)
}

func (s *settingsService) toResponse(ctx context.Context, settings *entity.UserAISettings) (*dto.SettingsResponse, error) {
	now := s.now().In(s.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	monthTokens, err := s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().SumTokensByUserSince(ctx, settings.UserId, monthStart)
	if err != nil {
		return nil, err
	}

	keyConfigured := false
	if cfg, err := s.configs.Get(ctx); err == nil {
		keyConfigured = cfg.APIKey != "" || !factory.RequiresAPIKey(cfg.Provider)
	} else {
		s.logger.Warn("CONFIG", "Failed to load provider config", map[string]interface{}{"error": err.Error()})
	}

	return &dto.SettingsResponse{
		DefaultModel:        settings.DefaultModel,
		AvailableModels:     AvailableModels,
		DailyPremiumLimit:   settings.DailyPremiumLimit,
		PremiumUsageCount:   settings.PremiumUsageCount,
		RemainingPremium:    settings.RemainingPremium(),
		FallbackToBaseline:  settings.FallbackToBaseline,
		TokenUsageThisMonth: monthTokens,
		TotalTokensUsed:     settings.TotalTokensUsed,
		APIKeyConfigured:    keyConfigured,
		Temperature:         settings.Temperature,
		MaxTokens:           settings.MaxTokens,
		HasCustomPrompt:     strings.TrimSpace(settings.CustomSystemPrompt) != "",
		CustomSystemPrompt:  settings.CustomSystemPrompt,
	}, nil
}

// UpdateSettings clamps temperature and max_tokens instead of rejecting them.
// An unknown default model is a client error.
func (s *settingsService) UpdateSettings(ctx context.Context, userId uuid.UUID, companyId int64, request *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	settings, err := s.policy.GetOrCreate(ctx, userId, companyId)
	if err != nil {
		return nil, err
	}

	if request.DefaultModel != nil {
		model := strings.TrimSpace(*request.DefaultModel)
		if !isAvailableModel(model) {
			return nil, &dto.BadRequestError{Message: fmt.Sprintf("model %q is not available", model)}
		}
		settings.DefaultModel = model
	}
	if request.Temperature != nil {
		settings.Temperature = ClampTemperature(*request.Temperature)
	}
	if request.MaxTokens != nil {
		settings.MaxTokens = ClampMaxTokens(*request.MaxTokens)
	}
	if request.CustomSystemPrompt != nil {
		settings.CustomSystemPrompt = strings.TrimSpace(*request.CustomSystemPrompt)
	}
	if request.FallbackToBaseline != nil {
		settings.FallbackToBaseline = *request.FallbackToBaseline
	}

	if err := s.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository().Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("update ai settings: %w", err)
	}

	s.logger.Info("USAGE", "AI settings updated", map[string]interface{}{
		"user_id":     userId.String(),
		"model":       settings.DefaultModel,
		"temperature": settings.Temperature,
		"max_tokens":  settings.MaxTokens,
	})
	return s.toResponse(ctx, settings)
}

func (s *settingsService) ListConfigurations(ctx context.Context) ([]*dto.AiConfigurationResponse, error) {
	return s.manager.GetAllConfigurations(ctx, s.uowFactory.NewUnitOfWork(ctx))
}

func (s *settingsService) UpdateConfiguration(ctx context.Context, key string, request dto.UpdateAiConfigurationRequest) (*dto.AiConfigurationResponse, error) {
	res, err := s.manager.UpdateConfiguration(ctx, s.uowFactory.NewUnitOfWork(ctx), key, request)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CONFIG", "Configuration updated", map[string]interface{}{"key": key})
	return res, nil
}

func (s *settingsService) ReloadConfig(ctx context.Context) (*dto.ProviderConfigResponse, error) {
	return s.manager.Reload(ctx)
}

func ClampTemperature(v float64) float64 {
	if v < minTemperature {
		return minTemperature
	}
	if v > maxTemperature {
		return maxTemperature
	}
	return v
}

func ClampMaxTokens(v int) int {
	if v < minMaxTokens {
		return minMaxTokens
	}
	if v > maxMaxTokens {
		return maxMaxTokens
	}
	return v
}

func isAvailableModel(model string) bool {
	for _, m := range AvailableModels {
		if m == model {
			return true
		}
	}
	return false
}
