package service

import (
	"context"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/assistant/export"

	"github.com/google/uuid"
)

type IExportService interface {
	ExportSession(ctx context.Context, userId, sessionId uuid.UUID, format string) (*dto.ExportFile, error)
}

type exportService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	loc        *time.Location
	now        func() time.Time
}

func NewExportService(uowFactory unitofwork.RepositoryFactory, loc *time.Location, logger logger.ILogger) IExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{
		uowFactory: uowFactory,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *exportService) ExportSession(ctx context.Context, userId, sessionId uuid.UUID, format string) (*dto.ExportFile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &dto.NotFoundError{Resource: "chat session"}
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	file, err := export.Render(session, messages, format, s.now().In(s.loc))
	if err != nil {
		s.logger.Error("EXPORT", "Failed to render export", map[string]interface{}{
			"session_id": sessionId.String(),
			"format":     format,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("EXPORT", "Session exported", map[string]interface{}{
		"session_id": sessionId.String(),
		"format":     file.Format,
		"messages":   len(messages),
	})

	return &dto.ExportFile{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Body:        file.Body,
	}, nil
}
