package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Completion is a provider reply with its accounting data.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Apply resolves options over provider defaults.
func Apply(defaultModel string, opts ...Option) *Options {
	o := &Options{
		Temperature: 0.7,
		MaxTokens:   2000,
		Model:       defaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Completion, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Generate is the shared single-prompt path used by every provider.
func Generate(ctx context.Context, p LLMProvider, prompt string, options ...Option) (string, error) {
	res, err := p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}
