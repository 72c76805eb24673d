package dto

import (
	"time"

	"github.com/google/uuid"
)

// AiConfigurationResponse represents an AI configuration entry
type AiConfigurationResponse struct {
	Id          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	ValueType   string    `json:"value_type"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsSecret    bool      `json:"is_secret"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateAiConfigurationRequest for updating a configuration value
type UpdateAiConfigurationRequest struct {
	Value string `json:"value" validate:"required"`
}

// ProviderConfigResponse describes the active snapshot without exposing the key
type ProviderConfigResponse struct {
	Provider         string    `json:"provider"`
	DefaultModel     string    `json:"default_model"`
	BaselineModel    string    `json:"baseline_model"`
	PremiumPrefixes  []string  `json:"premium_prefixes"`
	APIKeyConfigured bool      `json:"api_key_configured"`
	LoadedAt         time.Time `json:"loaded_at"`
}
