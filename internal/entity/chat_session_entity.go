package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatSessionStateActive   = "active"
	ChatSessionStateArchived = "archived"
)

type ChatSession struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	CompanyId     int64
	Name          string
	State         string
	LastMessageAt *time.Time
	Topic         string
	Summary       string
	TotalMessages int
	TotalTokens   int
	PremiumCount  int
	BaselineCount int
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}

func (s *ChatSession) IsArchived() bool {
	return s.State == ChatSessionStateArchived
}
