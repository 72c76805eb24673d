package contract

import (
	"context"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SessionDelta is applied atomically to the session counters after an exchange.
type SessionDelta struct {
	Messages      int
	Tokens        int
	Premium       int
	Baseline      int
	LastMessageAt time.Time
	Rename        string // empty keeps the current name
}

// SessionPatch sets only the non-nil columns.
type SessionPatch struct {
	State   *string
	Topic   *string
	Summary *string
}

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Touch(ctx context.Context, id uuid.UUID, delta SessionDelta) error
	Patch(ctx context.Context, id uuid.UUID, patch SessionPatch) error
	ResetCounters(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
