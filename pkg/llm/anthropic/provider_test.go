package anthropic

import (
	"testing"

	"jarvis-ai-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestToMessageParams_MergesConsecutiveRoles(t *testing.T) {
	params := toMessageParams([]llm.Message{
		{Role: "assistant", Content: "orphan"},
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "assistant", Content: "c"},
	})

	assert.Len(t, params, 2)
	assert.Equal(t, "user", string(params[0].Role))
	assert.Equal(t, "assistant", string(params[1].Role))
}

func TestClampTemperature(t *testing.T) {
	assert.Equal(t, 1.0, clampTemperature(1.7))
	assert.Equal(t, 0.0, clampTemperature(-1))
	assert.Equal(t, 0.4, clampTemperature(0.4))
}
