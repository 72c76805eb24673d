package factory

import (
	"fmt"

	"jarvis-ai-be/pkg/llm"
	"jarvis-ai-be/pkg/llm/anthropic"
	"jarvis-ai-be/pkg/llm/ollama"
	"jarvis-ai-be/pkg/llm/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOpenAI, "":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case ProviderAnthropic:
		return anthropic.NewAnthropicProvider(apiKey, baseURL, modelName), nil
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// RequiresAPIKey reports whether the provider refuses to run without credentials.
func RequiresAPIKey(providerType string) bool {
	return providerType != ProviderOllama
}
