package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/pkg/logger"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"
	"jarvis-ai-be/internal/repository/unitofwork"
	"jarvis-ai-be/pkg/assistant/engine"
	"jarvis-ai-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	lastMessagePreview = 100
	defaultTopic       = "New Chat"
)

// Sender is the part of the engine the chat service drives.
type Sender interface {
	Send(ctx context.Context, req engine.SendRequest) (*engine.SendResult, error)
}

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, companyId int64, request *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID, state string) ([]*dto.SessionListItem, error)
	ArchiveSession(ctx context.Context, userId, sessionId uuid.UUID) error
	RestoreSession(ctx context.Context, userId, sessionId uuid.UUID) error
	ClearSession(ctx context.Context, userId, sessionId uuid.UUID) error
	GetMessages(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionMessagesResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, companyId int64, sessionId uuid.UUID, request *dto.SendMessageRequest) (*dto.MessageReply, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	sender     Sender
	logger     logger.ILogger
	loc        *time.Location
	now        func() time.Time
}

// NewChatService names untitled sessions in loc, the workshop timezone.
func NewChatService(uowFactory unitofwork.RepositoryFactory, sender Sender, loc *time.Location, logger logger.ILogger) IChatService {
	if loc == nil {
		loc = time.UTC
	}
	return &chatService{
		uowFactory: uowFactory,
		sender:     sender,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, companyId int64, request *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	name := ""
	if request != nil {
		name = strings.TrimSpace(request.Name)
	}
	if name == "" {
		name = "Chat " + s.now().In(s.loc).Format("02/01/2006 15:04")
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		CompanyId: companyId,
		Name:      name,
		State:     entity.ChatSessionStateActive,
		CreatedAt: s.now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}

	s.logger.Info("CHAT", "Session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"user_id":    userId.String(),
	})

	return &dto.SessionResponse{
		Id:        session.Id,
		Name:      session.Name,
		State:     session.State,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID, state string) ([]*dto.SessionListItem, error) {
	if state != entity.ChatSessionStateArchived {
		state = entity.ChatSessionStateActive
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.SessionState{State: state},
		specification.ByLastActivity{},
	)
	if err != nil {
		return nil, err
	}

	msgRepo := uow.ChatMessageRepository()
	items := make([]*dto.SessionListItem, 0, len(sessions))
	for _, session := range sessions {
		last, err := msgRepo.FindOne(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "created_at", Desc: true},
		)
		if err != nil {
			return nil, err
		}
		items = append(items, toListItem(session, last))
	}
	return items, nil
}

func toListItem(session *entity.ChatSession, last *entity.ChatMessage) *dto.SessionListItem {
	item := &dto.SessionListItem{
		Id:              session.Id,
		Name:            session.Name,
		State:           session.State,
		CreatedAt:       session.CreatedAt,
		LastMessageDate: session.LastMessageAt,
		TotalMessages:   session.TotalMessages,
		TotalTokens:     session.TotalTokens,
		Topic:           session.Topic,
	}
	if item.Topic == "" {
		item.Topic = defaultTopic
	}
	if session.Summary != "" {
		summary := session.Summary
		item.Summary = &summary
	}
	if last != nil && last.Content != "" {
		preview := utils.Truncate(last.Content, lastMessagePreview)
		item.LastMessage = &preview
	}
	return item
}

// ownedSession returns a NotFoundError for sessions the user does not own.
func (s *chatService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
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
	return session, nil
}

func (s *chatService) setState(ctx context.Context, userId, sessionId uuid.UUID, state string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}
	if session.State == state {
		return nil
	}
	if err := uow.ChatSessionRepository().Patch(ctx, sessionId, contract.SessionPatch{State: &state}); err != nil {
		return err
	}

	s.logger.Info("CHAT", "Session state changed", map[string]interface{}{
		"session_id": sessionId.String(),
		"state":      state,
	})
	return nil
}

func (s *chatService) ArchiveSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	return s.setState(ctx, userId, sessionId, entity.ChatSessionStateArchived)
}

func (s *chatService) RestoreSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	return s.setState(ctx, userId, sessionId, entity.ChatSessionStateActive)
}

// ClearSession hard-deletes the messages and zeros the counters; the session row stays.
func (s *chatService) ClearSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := uow.ChatSessionRepository().ResetCounters(ctx, sessionId); err != nil {
		return fmt.Errorf("reset session counters: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("CHAT", "Session cleared", map[string]interface{}{"session_id": sessionId.String()})
	return nil
}

func (s *chatService) GetMessages(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionMessagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionMessagesResponse{
		Chat: dto.SessionHeader{
			Id:          session.Id,
			Name:        session.Name,
			UserId:      session.UserId,
			CreatedAt:   session.CreatedAt,
			LastMessage: session.LastMessageAt,
		},
		Messages: make([]dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageResponse(m))
	}
	return res, nil
}

func toMessageResponse(m *entity.ChatMessage) dto.MessageResponse {
	out := dto.MessageResponse{
		Id:           m.Id,
		MessageId:    m.MessageUid,
		Content:      m.Content,
		Type:         m.Role,
		TokenCount:   m.TokenCount,
		ResponseTime: m.ResponseTime,
		Timestamp:    m.CreatedAt,
	}
	if m.ModelUsed != "" {
		model := m.ModelUsed
		out.ModelUsed = &model
	}
	return out
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, companyId int64, sessionId uuid.UUID, request *dto.SendMessageRequest) (*dto.MessageReply, error) {
	res, err := s.sender.Send(ctx, engine.SendRequest{
		UserID:    userId,
		CompanyID: companyId,
		SessionID: sessionId,
		Message:   request.Message,
		Model:     request.Model,
		QueryMode: request.QueryMode,
	})
	if err != nil {
		return nil, err
	}

	return &dto.MessageReply{
		Content:    res.Content,
		ModelUsed:  res.ModelUsed,
		TokenCount: res.TokenCount,
		Id:         res.MessageID,
		MessageId:  res.MessageUID,
		Fallback:   res.Fallback,
	}, nil
}
