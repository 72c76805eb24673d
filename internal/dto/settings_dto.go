package dto

type SettingsResponse struct {
	DefaultModel        string   `json:"default_model"`
	AvailableModels     []string `json:"available_models"`
	DailyPremiumLimit   int      `json:"daily_gpt4_limit"`
	PremiumUsageCount   int      `json:"gpt4_usage_count"`
	RemainingPremium    int      `json:"remaining_gpt4"`
	FallbackToBaseline  bool     `json:"fallback_to_gpt35"`
	TokenUsageThisMonth int64    `json:"token_usage_this_month"`
	TotalTokensUsed     int64    `json:"total_tokens_used"`
	APIKeyConfigured    bool     `json:"api_key_configured"`
	Temperature         float64  `json:"temperature"`
	MaxTokens           int      `json:"max_tokens"`
	HasCustomPrompt     bool     `json:"has_custom_prompt"`
	CustomSystemPrompt  string   `json:"custom_system_prompt"`
}

// UpdateSettingsRequest uses pointers so absent fields are left untouched.
type UpdateSettingsRequest struct {
	DefaultModel       *string  `json:"default_model" validate:"omitempty,max=100"`
	Temperature        *float64 `json:"temperature"`
	MaxTokens          *int     `json:"max_tokens"`
	CustomSystemPrompt *string  `json:"custom_system_prompt" validate:"omitempty,max=4000"`
	FallbackToBaseline *bool    `json:"fallback_to_gpt35"`
}
