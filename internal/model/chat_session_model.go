package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	CompanyId     int64          `gorm:"not null;default:1;index"`
	Name          string         `gorm:"type:text;not null"`
	State         string         `gorm:"type:varchar(20);not null;default:'active';index"`
	LastMessageAt *time.Time     `gorm:"index"`
	Topic         string         `gorm:"type:text"`
	Summary       string         `gorm:"type:text"`
	TotalMessages int            `gorm:"not null;default:0"`
	TotalTokens   int            `gorm:"not null;default:0"`
	PremiumCount  int            `gorm:"not null;default:0"`
	BaselineCount int            `gorm:"not null;default:0"`
	Messages      []ChatMessage  `gorm:"foreignKey:ChatSessionId;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
