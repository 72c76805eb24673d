package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"jarvis-ai-be/pkg/llm"
	"jarvis-ai-be/pkg/llm/factory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama when OLLAMA_INTEGRATION=true.
func TestOllamaProviderChat(t *testing.T) {
	if os.Getenv("OLLAMA_INTEGRATION") != "true" {
		t.Skip("Skipping: set OLLAMA_INTEGRATION=true with a running Ollama")
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "gemma:2b"
	}

	provider, err := factory.NewLLMProvider(factory.ProviderOllama, model, os.Getenv("OLLAMA_BASE_URL"), "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "Answer with a single word."},
		{Role: "user", Content: "What color is the sky on a clear day?"},
	}, llm.WithMaxTokens(20), llm.WithTemperature(0))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Content)
	t.Logf("ollama replied %q (%d tokens)", res.Content, res.TotalTokens)
}
