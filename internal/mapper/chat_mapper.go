package mapper

import (
	"encoding/json"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:            s.Id,
		UserId:        s.UserId,
		CompanyId:     s.CompanyId,
		Name:          s.Name,
		State:         s.State,
		LastMessageAt: s.LastMessageAt,
		Topic:         s.Topic,
		Summary:       s.Summary,
		TotalMessages: s.TotalMessages,
		TotalTokens:   s.TotalTokens,
		PremiumCount:  s.PremiumCount,
		BaselineCount: s.BaselineCount,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	state := s.State
	if state == "" {
		state = entity.ChatSessionStateActive
	}

	return &model.ChatSession{
		Id:            s.Id,
		UserId:        s.UserId,
		CompanyId:     s.CompanyId,
		Name:          s.Name,
		State:         state,
		LastMessageAt: s.LastMessageAt,
		Topic:         s.Topic,
		Summary:       s.Summary,
		TotalMessages: s.TotalMessages,
		TotalTokens:   s.TotalTokens,
		PremiumCount:  s.PremiumCount,
		BaselineCount: s.BaselineCount,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var contextData json.RawMessage
	if len(msg.ContextData) > 0 {
		contextData = json.RawMessage(msg.ContextData)
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		MessageUid:    msg.MessageUid,
		Role:          msg.Role,
		Content:       msg.Content,
		ContextData:   contextData,
		ModelUsed:     msg.ModelUsed,
		TokenCount:    msg.TokenCount,
		ResponseTime:  msg.ResponseTime,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var contextData datatypes.JSON
	if len(msg.ContextData) > 0 {
		contextData = datatypes.JSON(msg.ContextData)
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		MessageUid:    msg.MessageUid,
		Role:          msg.Role,
		Content:       msg.Content,
		ContextData:   contextData,
		ModelUsed:     msg.ModelUsed,
		TokenCount:    msg.TokenCount,
		ResponseTime:  msg.ResponseTime,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
