package unitofwork

import (
	"context"

	"jarvis-ai-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	UserAISettingsRepository() contract.UserAISettingsRepository
	AiConfigRepository() contract.IAiConfigRepository
	AiUsageEventRepository() contract.AiUsageEventRepository
}
