package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://api.openai.com", "https://api.openai.com/v1"},
		{"https://proxy.local/v1/", "https://proxy.local/v1"},
		{"https://router.example.com/openai", "https://router.example.com/openai/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBaseURL(tt.in))
		})
	}
}
