// Package usage enforces the daily premium-model quota.
package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IsPremium reports whether model starts with one of the premium prefixes.
func IsPremium(model string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// Defaults seed a settings row the first time a user chats.
type Defaults struct {
	Model             string
	DailyPremiumLimit int
}

type Policy struct {
	uowFactory unitofwork.RepositoryFactory
	defaults   Defaults
	loc        *time.Location
	now        func() time.Time
	logger     logger.ILogger
}

func NewPolicy(uowFactory unitofwork.RepositoryFactory, defaults Defaults, loc *time.Location, logger logger.ILogger) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	if defaults.DailyPremiumLimit <= 0 {
		defaults.DailyPremiumLimit = entity.DefaultDailyPremiumLimit
	}
	return &Policy{
		uowFactory: uowFactory,
		defaults:   defaults,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source; used by tests.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// Today is the current calendar date in the configured timezone.
func (p *Policy) Today() time.Time {
	t := p.now().In(p.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

// ResetAfter is the next day boundary, reported in quota errors.
func (p *Policy) ResetAfter() time.Time {
	return p.Today().AddDate(0, 0, 1)
}

func (p *Policy) GetOrCreate(ctx context.Context, userId uuid.UUID, companyId int64) (*entity.UserAISettings, error) {
	repo := p.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository()
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByCompany{CompanyID: companyId},
	}

	settings, err := repo.FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = &entity.UserAISettings{
			Id:                 uuid.New(),
			UserId:             userId,
			CompanyId:          companyId,
			DefaultModel:       p.defaults.Model,
			Temperature:        entity.DefaultTemperature,
			MaxTokens:          entity.DefaultMaxTokens,
			DailyPremiumLimit:  p.defaults.DailyPremiumLimit,
			LastResetDate:      p.Today(),
			FallbackToBaseline: true,
		}
		if createErr := repo.Create(ctx, settings); createErr != nil {
			// Lost a race against a concurrent first request; the other row wins.
			existing, err := repo.FindOne(ctx, specs...)
			if err != nil || existing == nil {
				return nil, fmt.Errorf("create ai settings: %w", createErr)
			}
			settings = existing
		} else {
			p.logger.Info("USAGE", "Created AI settings", map[string]interface{}{
				"user_id":    userId.String(),
				"company_id": companyId,
			})
			return settings, nil
		}
	}

	if err := p.resetIfStale(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (p *Policy) resetIfStale(ctx context.Context, s *entity.UserAISettings) error {
	today := p.Today()
	reset, err := p.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository().ResetIfStale(ctx, s.Id, today)
	if err != nil {
		return fmt.Errorf("reset premium counter: %w", err)
	}
	if reset {
		s.PremiumUsageCount = 0
		s.LastResetDate = today
	}
	return nil
}

// CheckQuota applies the lazy reset and reports whether a premium call is still allowed.
func (p *Policy) CheckQuota(ctx context.Context, s *entity.UserAISettings) (bool, error) {
	if err := p.resetIfStale(ctx, s); err != nil {
		return false, err
	}
	return s.PremiumUsageCount < s.DailyPremiumLimit, nil
}

// Increment counts one premium call unconditionally.
func (p *Policy) Increment(ctx context.Context, s *entity.UserAISettings) error {
	today := p.Today()
	if err := p.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository().IncrementPremium(ctx, s.Id, today); err != nil {
		return fmt.Errorf("increment premium counter: %w", err)
	}
	if s.LastResetDate.Before(today) {
		s.PremiumUsageCount = 0
	}
	s.PremiumUsageCount++
	s.LastResetDate = today
	return nil
}

// Reserve takes one premium slot in a single conditional update. It returns
// false when the day's limit is already used up.
func (p *Policy) Reserve(ctx context.Context, s *entity.UserAISettings) (bool, error) {
	today := p.Today()
	ok, err := p.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository().ReservePremium(ctx, s.Id, today)
	if err != nil {
		return false, fmt.Errorf("reserve premium slot: %w", err)
	}
	if !ok {
		if s.LastResetDate.Before(today) {
			s.PremiumUsageCount = 0
			s.LastResetDate = today
		}
		return false, nil
	}
	if s.LastResetDate.Before(today) {
		s.PremiumUsageCount = 0
	}
	s.PremiumUsageCount++
	s.LastResetDate = today
	return true, nil
}

// Release returns a slot taken by Reserve when the provider call failed.
func (p *Policy) Release(ctx context.Context, s *entity.UserAISettings) error {
	if err := p.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository().ReleasePremium(ctx, s.Id); err != nil {
		return fmt.Errorf("release premium slot: %w", err)
	}
	if s.PremiumUsageCount > 0 {
		s.PremiumUsageCount--
	}
	return nil
}

// ResetStale zeroes every counter whose last reset is before today.
func (p *Policy) ResetStale(ctx context.Context) (int64, error) {
	return p.uowFactory.NewUnitOfWork(ctx).UserAISettingsRepository().ResetAllStale(ctx, p.Today())
}
