package entity

import (
	"time"

	"github.com/google/uuid"
)

// AiConfiguration stores global assistant parameters as key-value pairs
type AiConfiguration struct {
	Id          uuid.UUID
	Key         string // e.g. "openai.api_key", "ai.baseline_model"
	Value       string
	ValueType   string // "string", "number", "boolean", "list"
	Description string
	Category    string // "openai", "anthropic", "ollama", "ai"
	IsSecret    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category constants for AiConfiguration
const (
	AiConfigCategoryOpenAI    = "openai"
	AiConfigCategoryAnthropic = "anthropic"
	AiConfigCategoryOllama    = "ollama"
	AiConfigCategoryGeneral   = "ai"
)

// ValueType constants for AiConfiguration
const (
	AiConfigValueTypeString  = "string"
	AiConfigValueTypeNumber  = "number"
	AiConfigValueTypeBoolean = "boolean"
	AiConfigValueTypeList    = "list"
)

// Configuration keys
const (
	AiConfigKeyProvider        = "ai.provider"
	AiConfigKeyBaselineModel   = "ai.baseline_model"
	AiConfigKeyPremiumPrefixes = "ai.premium_prefixes"
	AiConfigKeyOpenAIAPIKey    = "openai.api_key"
	AiConfigKeyOpenAIModel     = "openai.model"
	AiConfigKeyOpenAIBaseURL   = "openai.base_url"
	AiConfigKeyAnthropicAPIKey = "anthropic.api_key"
	AiConfigKeyOllamaBaseURL   = "ollama.base_url"
)

// AiUsageEvent is one persisted entry of the usage audit trail.
type AiUsageEvent struct {
	Id         uuid.UUID
	Type       string
	UserId     *uuid.UUID
	Payload    map[string]interface{}
	OccurredAt time.Time
	CreatedAt  time.Time
}
