package model

import (
	"time"

	"github.com/google/uuid"
)

type UserAISettings struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ai_settings_user_company"`
	CompanyId          int64     `gorm:"not null;default:1;uniqueIndex:idx_ai_settings_user_company"`
	DefaultModel       string    `gorm:"type:varchar(100);not null;default:'gpt-3.5-turbo'"`
	Temperature        float64   `gorm:"not null;default:0.7"`
	MaxTokens          int       `gorm:"not null;default:2000"`
	CustomSystemPrompt string    `gorm:"type:text"`
	DailyPremiumLimit  int       `gorm:"not null;default:5"`
	PremiumUsageCount  int       `gorm:"not null;default:0"`
	LastResetDate      time.Time `gorm:"type:date;not null;index"`
	FallbackToBaseline bool      `gorm:"not null;default:true"`
	TotalTokensUsed    int64     `gorm:"not null;default:0"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (UserAISettings) TableName() string {
	return "ai_user_settings"
}
