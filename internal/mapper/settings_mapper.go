package mapper

import (
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/model"
)

type SettingsMapper struct{}

func NewSettingsMapper() *SettingsMapper {
	return &SettingsMapper{}
}

func (m *SettingsMapper) ToEntity(s *model.UserAISettings) *entity.UserAISettings {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.UserAISettings{
		Id:                 s.Id,
		UserId:             s.UserId,
		CompanyId:          s.CompanyId,
		DefaultModel:       s.DefaultModel,
		Temperature:        s.Temperature,
		MaxTokens:          s.MaxTokens,
		CustomSystemPrompt: s.CustomSystemPrompt,
		DailyPremiumLimit:  s.DailyPremiumLimit,
		PremiumUsageCount:  s.PremiumUsageCount,
		LastResetDate:      s.LastResetDate,
		FallbackToBaseline: s.FallbackToBaseline,
		TotalTokensUsed:    s.TotalTokensUsed,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *SettingsMapper) ToModel(s *entity.UserAISettings) *model.UserAISettings {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.UserAISettings{
		Id:                 s.Id,
		UserId:             s.UserId,
		CompanyId:          s.CompanyId,
		DefaultModel:       s.DefaultModel,
		Temperature:        s.Temperature,
		MaxTokens:          s.MaxTokens,
		CustomSystemPrompt: s.CustomSystemPrompt,
		DailyPremiumLimit:  s.DailyPremiumLimit,
		PremiumUsageCount:  s.PremiumUsageCount,
		LastResetDate:      s.LastResetDate,
		FallbackToBaseline: s.FallbackToBaseline,
		TotalTokensUsed:    s.TotalTokensUsed,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}
