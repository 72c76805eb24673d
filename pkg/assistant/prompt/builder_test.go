package prompt

import (
	"fmt"
	"strings"
	"testing"

	"jarvis-ai-be/internal/entity"
	"jarvis-ai-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	tests := []struct {
		name       string
		builder    *Builder
		contains   []string
		notContain []string
	}{
		{
			name:     "business persona with company",
			builder:  NewBuilder(true).WithCompany(&Company{Name: "PITCAR", Phone: "021-123"}),
			contains: []string{"integrated with the company ERP", "7. If you don't have the data", "Company Information:", "- Name: PITCAR", "- Website: Not set", "- Phone: 021-123"},
		},
		{
			name:       "general persona ignores company",
			builder:    NewBuilder(false).WithCompany(&Company{Name: "PITCAR"}),
			contains:   []string{"AI Business Assistant", "5. If appropriate"},
			notContain: []string{"Company Information:", "PITCAR"},
		},
		{
			name:     "custom suffix on both personas",
			builder:  NewBuilder(false).WithCustomPrompt("  Jawab dalam Bahasa Indonesia  "),
			contains: []string{"\n\nAdditional Guidelines:\nJawab dalam Bahasa Indonesia"},
		},
		{
			name:       "no suffix when empty",
			builder:    NewBuilder(true).WithCustomPrompt("   "),
			notContain: []string{"Additional Guidelines"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.builder.SystemPrompt()
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestBuildAppendsDataBlockForBusinessOnly(t *testing.T) {
	history := []llm.Message{
		{Role: entity.ChatRoleUser, Content: "hi"},
		{Role: entity.ChatRoleAssistant, Content: "hello"},
	}

	msgs := NewBuilder(true).
		WithHistory(history).
		WithContent("berapa penjualan?").
		WithData("Total Sales: 10").
		Build()

	require.Len(t, msgs, 4)
	assert.Equal(t, entity.ChatRoleSystem, msgs[0].Role)
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, "berapa penjualan?\n\n[SYSTEM: Here is relevant data from the ERP system to help answer this question]\nTotal Sales: 10", msgs[3].Content)

	general := NewBuilder(false).WithContent("hi").WithData("ignored").Build()
	assert.Equal(t, "hi", general[len(general)-1].Content)

	empty := NewBuilder(true).WithContent("hi").WithData("  ").Build()
	assert.Equal(t, "hi", empty[len(empty)-1].Content)
}

func TestHistory(t *testing.T) {
	var stored []*entity.ChatMessage
	for i := 0; i < 12; i++ {
		role := entity.ChatRoleUser
		if i%2 == 1 {
			role = entity.ChatRoleAssistant
		}
		stored = append(stored, &entity.ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i)})
	}
	stored = append(stored, &entity.ChatMessage{Role: entity.ChatRoleSystem, Content: "Sorry, I encountered an error"})

	got := History(stored)

	require.Len(t, got, MaxHistory)
	assert.Equal(t, "m2", got[0].Content)
	assert.Equal(t, "m11", got[len(got)-1].Content)
	for _, m := range got {
		assert.False(t, strings.HasPrefix(m.Content, "Sorry"))
	}
}
