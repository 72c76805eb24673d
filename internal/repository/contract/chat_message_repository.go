package contract

import (
	"context"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error // Hard delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SumTokensByUserSince totals token_count over every session the user owns.
	SumTokensByUserSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error)
}
