package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Name string `json:"name" validate:"max=200"`
}

type SessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionListItem struct {
	Id              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	State           string     `json:"state"`
	CreatedAt       time.Time  `json:"created_at"`
	LastMessageDate *time.Time `json:"last_message_date"`
	LastMessage     *string    `json:"last_message"`
	TotalMessages   int        `json:"total_messages"`
	TotalTokens     int        `json:"total_tokens"`
	Topic           string     `json:"topic"`
	Summary         *string    `json:"summary"`
}

type SendMessageRequest struct {
	Message   string `json:"message"`
	Model     string `json:"model,omitempty" validate:"omitempty,max=100"`
	QueryMode string `json:"query_mode,omitempty" validate:"omitempty,oneof=auto general business"`
}

type MessageReply struct {
	Content    string    `json:"content"`
	ModelUsed  string    `json:"model_used"`
	TokenCount int       `json:"token_count"`
	Id         uuid.UUID `json:"id"`
	MessageId  string    `json:"message_id"`
	Fallback   bool      `json:"fallback,omitempty"`
}

// SendMessageResponse keeps the {success, response} contract the chat widget expects.
type SendMessageResponse struct {
	Success  bool          `json:"success"`
	Response *MessageReply `json:"response,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type MessageResponse struct {
	Id           uuid.UUID `json:"id"`
	MessageId    string    `json:"message_id"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	ModelUsed    *string   `json:"model_used"`
	TokenCount   int       `json:"token_count"`
	ResponseTime float64   `json:"response_time"`
	Timestamp    time.Time `json:"timestamp"`
}

type SessionMessagesResponse struct {
	Chat     SessionHeader     `json:"chat"`
	Messages []MessageResponse `json:"messages"`
}

type SessionHeader struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	UserId      uuid.UUID  `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	LastMessage *time.Time `json:"last_message"`
}

// ChatExchangedMessage is published after every successful exchange for
// the background topic / summary refresh.
type ChatExchangedMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	UserId        uuid.UUID `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
