package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	MessageUid    string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Role          string         `gorm:"type:varchar(20);not null"`
	Content       string         `gorm:"type:text;not null"`
	ContextData   datatypes.JSON `gorm:"type:jsonb"`
	ModelUsed     string         `gorm:"type:varchar(100)"`
	TokenCount    int            `gorm:"not null;default:0"`
	ResponseTime  float64        `gorm:"not null;default:0"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
