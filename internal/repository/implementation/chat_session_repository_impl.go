package implementation

import (
	"context"
	"errors"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/mapper"
	"jarvis-ai-be/internal/model"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) Update(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Omit("Messages").Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, delta contract.SessionDelta) error {
	updates := map[string]interface{}{
		"total_messages":  gorm.Expr("total_messages + ?", delta.Messages),
		"total_tokens":    gorm.Expr("total_tokens + ?", delta.Tokens),
		"premium_count":   gorm.Expr("premium_count + ?", delta.Premium),
		"baseline_count":  gorm.Expr("baseline_count + ?", delta.Baseline),
		"last_message_at": delta.LastMessageAt,
	}
	if delta.Rename != "" {
		updates["name"] = delta.Rename
	}
	return r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ChatSessionRepositoryImpl) Patch(ctx context.Context, id uuid.UUID, patch contract.SessionPatch) error {
	updates := map[string]interface{}{}
	if patch.State != nil {
		updates["state"] = *patch.State
	}
	if patch.Topic != nil {
		updates["topic"] = *patch.Topic
	}
	if patch.Summary != nil {
		updates["summary"] = *patch.Summary
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ChatSessionRepositoryImpl) ResetCounters(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_messages":  0,
		"total_tokens":    0,
		"premium_count":   0,
		"baseline_count":  0,
		"last_message_at": nil,
		"summary":         "",
	}).Error
}

func (r *ChatSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatSessionToEntity(m)
	}
	return entities, nil
}

func (r *ChatSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
