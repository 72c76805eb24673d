package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTemperature       = 0.7
	DefaultMaxTokens         = 2000
	DefaultDailyPremiumLimit = 5
)

// UserAISettings holds per-user model preferences and the premium quota counter.
type UserAISettings struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	CompanyId          int64
	DefaultModel       string
	Temperature        float64
	MaxTokens          int
	CustomSystemPrompt string
	DailyPremiumLimit  int
	PremiumUsageCount  int
	LastResetDate      time.Time // calendar date, time part is zero
	FallbackToBaseline bool
	TotalTokensUsed    int64
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

func (s *UserAISettings) RemainingPremium() int {
	if s.PremiumUsageCount >= s.DailyPremiumLimit {
		return 0
	}
	return s.DailyPremiumLimit - s.PremiumUsageCount
}
