package contract

import (
	"context"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
)

// UserAISettingsRepository exposes the quota counter as single-statement updates
// keyed by (settings row, calendar day) so concurrent requests cannot overspend.
type UserAISettingsRepository interface {
	Create(ctx context.Context, settings *entity.UserAISettings) error
	Update(ctx context.Context, settings *entity.UserAISettings) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserAISettings, error)

	// ResetIfStale zeroes the counter when last_reset_date < today.
	ResetIfStale(ctx context.Context, id uuid.UUID, today time.Time) (bool, error)
	// ReservePremium increments the counter only while it is under the limit, resetting a stale day in the same statement.
	ReservePremium(ctx context.Context, id uuid.UUID, today time.Time) (bool, error)
	IncrementPremium(ctx context.Context, id uuid.UUID, today time.Time) error
	ReleasePremium(ctx context.Context, id uuid.UUID) error
	ResetAllStale(ctx context.Context, today time.Time) (int64, error)
	AddTokens(ctx context.Context, id uuid.UUID, tokens int) error
}
