package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatMessage is immutable once written.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	MessageUid    string // public "msg_<uuid>" identifier
	Role          string
	Content       string
	ContextData   json.RawMessage
	ModelUsed     string
	TokenCount    int
	ResponseTime  float64 // seconds
	CreatedAt     time.Time
}
