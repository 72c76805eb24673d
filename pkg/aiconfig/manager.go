package aiconfig

import (
	"context"
	"fmt"

	"jarvis-ai-be/internal/dto"
	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/internal/repository/unitofwork"
)

// Manager handles AI configuration operations
type Manager struct {
	store *Store
}

// NewManager creates a new AI config manager bound to the snapshot store it refreshes.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// GetAllConfigurations retrieves all AI configurations with secrets masked
func (m *Manager) GetAllConfigurations(ctx context.Context, uow unitofwork.UnitOfWork) ([]*dto.AiConfigurationResponse, error) {
	configs, err := uow.AiConfigRepository().FindAllConfigurations(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AiConfigurationResponse, 0, len(configs))
	for _, c := range configs {
		responses = append(responses, configToResponse(c))
	}

	return responses, nil
}

// UpdateConfiguration updates a configuration value and reloads the snapshot
func (m *Manager) UpdateConfiguration(ctx context.Context, uow unitofwork.UnitOfWork, key string, req dto.UpdateAiConfigurationRequest) (*dto.AiConfigurationResponse, error) {
	config, err := uow.AiConfigRepository().FindConfigurationByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, &dto.NotFoundError{Resource: fmt.Sprintf("configuration '%s'", key)}
	}

	config.Value = req.Value

	if err := uow.AiConfigRepository().UpdateConfiguration(ctx, config); err != nil {
		return nil, err
	}

	if _, err := m.store.Reload(ctx); err != nil {
		return nil, err
	}

	return configToResponse(config), nil
}

// Reload forces a fresh snapshot
func (m *Manager) Reload(ctx context.Context) (*dto.ProviderConfigResponse, error) {
	cfg, err := m.store.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProviderConfigResponse{
		Provider:         cfg.Provider,
		DefaultModel:     cfg.DefaultModel,
		BaselineModel:    cfg.BaselineModel,
		PremiumPrefixes:  cfg.PremiumPrefixes,
		APIKeyConfigured: cfg.APIKey != "",
		LoadedAt:         cfg.LoadedAt,
	}, nil
}

func configToResponse(c *entity.AiConfiguration) *dto.AiConfigurationResponse {
	value := c.Value
	if c.IsSecret && value != "" {
		value = mask(value)
	}
	return &dto.AiConfigurationResponse{
		Id:          c.Id,
		Key:         c.Key,
		Value:       value,
		ValueType:   c.ValueType,
		Description: c.Description,
		Category:    c.Category,
		IsSecret:    c.IsSecret,
		UpdatedAt:   c.UpdatedAt,
	}
}

func mask(v string) string {
	if len(v) <= 8 {
		return "********"
	}
	return v[:4] + "********" + v[len(v)-4:]
}
