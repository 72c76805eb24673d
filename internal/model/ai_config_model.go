package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AiConfiguration stores global assistant parameters (key-value pairs)
type AiConfiguration struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Key         string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	Value       string         `gorm:"type:text;not null"`
	ValueType   string         `gorm:"type:varchar(20);not null;default:'string'"`
	Description string         `gorm:"type:text"`
	Category    string         `gorm:"type:varchar(50);not null;default:'ai';index"`
	IsSecret    bool           `gorm:"default:false"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (AiConfiguration) TableName() string {
	return "ai_configurations"
}

// AiUsageEvent is the audit trail of the usage event bus
type AiUsageEvent struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type       string         `gorm:"type:varchar(50);not null;index"`
	UserId     *uuid.UUID     `gorm:"type:uuid;index"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	OccurredAt time.Time      `gorm:"not null;index"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (AiUsageEvent) TableName() string {
	return "ai_usage_events"
}
