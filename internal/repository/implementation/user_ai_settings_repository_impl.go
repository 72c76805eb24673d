package implementation

import (
	"context"
	"errors"
	"time"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/mapper"
	"jarvis-ai-be/internal/model"
	"jarvis-ai-be/internal/repository/contract"
	"jarvis-ai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type UserAISettingsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SettingsMapper
}

func NewUserAISettingsRepository(db *gorm.DB) contract.UserAISettingsRepository {
	return &UserAISettingsRepositoryImpl{
		db:     db,
		mapper: mapper.NewSettingsMapper(),
	}
}

func (r *UserAISettingsRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserAISettingsRepositoryImpl) Create(ctx context.Context, settings *entity.UserAISettings) error {
	m := r.mapper.ToModel(settings)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*settings = *r.mapper.ToEntity(m)
	return nil
}

// Update saves preference fields only. Counters are owned by the atomic methods below.
func (r *UserAISettingsRepositoryImpl) Update(ctx context.Context, settings *entity.UserAISettings) error {
	return r.db.WithContext(ctx).Model(&model.UserAISettings{}).Where("id = ?", settings.Id).Updates(map[string]interface{}{
		"default_model":        settings.DefaultModel,
		"temperature":          settings.Temperature,
		"max_tokens":           settings.MaxTokens,
		"custom_system_prompt": settings.CustomSystemPrompt,
		"daily_premium_limit":  settings.DailyPremiumLimit,
		"fallback_to_baseline": settings.FallbackToBaseline,
	}).Error
}

func (r *UserAISettingsRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserAISettings, error) {
	var m model.UserAISettings
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserAISettingsRepositoryImpl) ResetIfStale(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	day := today.Format(dateLayout)
	res := r.db.WithContext(ctx).Model(&model.UserAISettings{}).
		Where("id = ? AND last_reset_date < ?", id, day).
		Updates(map[string]interface{}{
			"premium_usage_count": 0,
			"last_reset_date":     day,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *UserAISettingsRepositoryImpl) ReservePremium(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	day := today.Format(dateLayout)
	res := r.db.WithContext(ctx).Model(&model.UserAISettings{}).
		Where("id = ? AND daily_premium_limit > 0 AND (last_reset_date < ? OR premium_usage_count < daily_premium_limit)", id, day).
		Updates(map[string]interface{}{
			"premium_usage_count": gorm.Expr("CASE WHEN last_reset_date < ? THEN 1 ELSE premium_usage_count + 1 END", day),
			"last_reset_date":     day,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *UserAISettingsRepositoryImpl) IncrementPremium(ctx context.Context, id uuid.UUID, today time.Time) error {
	day := today.Format(dateLayout)
	return r.db.WithContext(ctx).Model(&model.UserAISettings{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"premium_usage_count": gorm.Expr("CASE WHEN last_reset_date < ? THEN 1 ELSE premium_usage_count + 1 END", day),
			"last_reset_date":     day,
		}).Error
}

func (r *UserAISettingsRepositoryImpl) ReleasePremium(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.UserAISettings{}).
		Where("id = ? AND premium_usage_count > 0", id).
		Update("premium_usage_count", gorm.Expr("premium_usage_count - 1")).Error
}

func (r *UserAISettingsRepositoryImpl) ResetAllStale(ctx context.Context, today time.Time) (int64, error) {
	day := today.Format(dateLayout)
	res := r.db.WithContext(ctx).Model(&model.UserAISettings{}).
		Where("last_reset_date < ?", day).
		Updates(map[string]interface{}{
			"premium_usage_count": 0,
			"last_reset_date":     day,
		})
	return res.RowsAffected, res.Error
}

func (r *UserAISettingsRepositoryImpl) AddTokens(ctx context.Context, id uuid.UUID, tokens int) error {
	return r.db.WithContext(ctx).Model(&model.UserAISettings{}).
		Where("id = ?", id).
		Update("total_tokens_used", gorm.Expr("total_tokens_used + ?", tokens)).Error
}
