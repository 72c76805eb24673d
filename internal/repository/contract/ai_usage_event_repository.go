package contract

import (
	"context"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/specification"
)

type AiUsageEventRepository interface {
	Create(ctx context.Context, event *entity.AiUsageEvent) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
