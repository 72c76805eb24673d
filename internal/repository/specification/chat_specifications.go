package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// SessionState filters sessions by lifecycle state ("active" / "archived")
type SessionState struct {
	State string
}

func (s SessionState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state = ?", s.State)
}

// ExcludeRole drops messages of the given role, e.g. system error notes from history
type ExcludeRole struct {
	Role string
}

func (s ExcludeRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role <> ?", s.Role)
}

type ExcludeID struct {
	ID uuid.UUID
}

func (s ExcludeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id <> ?", s.ID)
}

// ByLastActivity orders sessions by their most recent message, falling back to creation time.
type ByLastActivity struct{}

func (s ByLastActivity) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("COALESCE(last_message_at, created_at) DESC")
}
