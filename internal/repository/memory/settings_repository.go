package memory

import (
	"context"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type settingsRepository struct {
	store *Store
}

func (r *settingsRepository) Create(ctx context.Context, settings *entity.UserAISettings) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.settings {
		if s.UserId == settings.UserId && s.CompanyId == settings.CompanyId {
			return ErrDuplicate
		}
	}
	if settings.Id == uuid.Nil {
		settings.Id = uuid.New()
	}
	settings.CreatedAt = time.Now()
	c := *settings
	r.store.settings[settings.Id] = &c
	return nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *entity.UserAISettings) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.settings[settings.Id]
	if !ok {
		return nil
	}
	s.DefaultModel = settings.DefaultModel
	s.Temperature = settings.Temperature
	s.MaxTokens = settings.MaxTokens
	s.CustomSystemPrompt = settings.CustomSystemPrompt
	s.DailyPremiumLimit = settings.DailyPremiumLimit
	s.FallbackToBaseline = settings.FallbackToBaseline
	return nil
}

func (r *settingsRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserAISettings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.settings {
		if matchSettings(s, specs) {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func matchSettings(s *entity.UserAISettings, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		case specification.ByCompany:
			if s.CompanyId != v.CompanyID {
				return false
			}
		}
	}
	return true
}

func (r *settingsRepository) ResetIfStale(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.settings[id]
	if !ok || dayOf(s.LastResetDate) >= dayOf(today) {
		return false, nil
	}
	s.PremiumUsageCount = 0
	s.LastResetDate = today
	return true, nil
}

func (r *settingsRepository) ReservePremium(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.settings[id]
	if !ok || s.DailyPremiumLimit <= 0 {
		return false, nil
	}
	stale := dayOf(s.LastResetDate) < dayOf(today)
	if !stale && s.PremiumUsageCount >= s.DailyPremiumLimit {
		return false, nil
	}
	if stale {
		s.PremiumUsageCount = 1
	} else {
		s.PremiumUsageCount++
	}
	s.LastResetDate = today
	return true, nil
}

func (r *settingsRepository) IncrementPremium(ctx context.Context, id uuid.UUID, today time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.settings[id]
	if !ok {
		return nil
	}
	if dayOf(s.LastResetDate) < dayOf(today) {
		s.PremiumUsageCount = 1
	} else {
		s.PremiumUsageCount++
	}
	s.LastResetDate = today
	return nil
}

func (r *settingsRepository) ReleasePremium(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.settings[id]; ok && s.PremiumUsageCount > 0 {
		s.PremiumUsageCount--
	}
	return nil
}

func (r *settingsRepository) ResetAllStale(ctx context.Context, today time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, s := range r.store.settings {
		if dayOf(s.LastResetDate) < dayOf(today) {
			s.PremiumUsageCount = 0
			s.LastResetDate = today
			n++
		}
	}
	return n, nil
}

func (r *settingsRepository) AddTokens(ctx context.Context, id uuid.UUID, tokens int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.settings[id]; ok {
		s.TotalTokensUsed += int64(tokens)
	}
	return nil
}
