package anthropic

import (
	"context"
	"fmt"
	"strings"

	"jarvis-ai-be/pkg/llm"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client    anthropicclient.Client
	modelName string
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, baseURL, modelName string) *AnthropicProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	return &AnthropicProvider{
		client:    anthropicclient.NewClient(opts...),
		modelName: modelName,
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.Apply(p.modelName, opts...)

	var system []anthropicclient.TextBlockParam
	var turns []llm.Message
	for _, msg := range history {
		if msg.Role == "system" {
			system = append(system, anthropicclient.TextBlockParam{Text: msg.Content})
			continue
		}
		turns = append(turns, msg)
	}

	params := anthropicclient.MessageNewParams{
		Model:       anthropicclient.Model(options.Model),
		MaxTokens:   int64(options.MaxTokens),
		System:      system,
		Messages:    toMessageParams(turns),
		Temperature: anthropicclient.Float(clampTemperature(options.Temperature)),
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &llm.Completion{
		Content:          sb.String(),
		Model:            string(msg.Model),
		PromptTokens:     in,
		CompletionTokens: out,
		TotalTokens:      in + out,
	}, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return llm.Generate(ctx, p, prompt, opts...)
}

// toMessageParams merges consecutive turns of the same role; the Messages API
// rejects two user turns in a row.
func toMessageParams(turns []llm.Message) []anthropicclient.MessageParam {
	var merged []llm.Message
	for _, t := range turns {
		role := t.Role
		if role != "assistant" {
			role = "user"
		}
		if n := len(merged); n > 0 && merged[n-1].Role == role {
			merged[n-1].Content += "\n\n" + t.Content
			continue
		}
		merged = append(merged, llm.Message{Role: role, Content: t.Content})
	}
	// The first turn must come from the user.
	if len(merged) > 0 && merged[0].Role == "assistant" {
		merged = merged[1:]
	}

	params := make([]anthropicclient.MessageParam, 0, len(merged))
	for _, m := range merged {
		block := anthropicclient.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			params = append(params, anthropicclient.NewAssistantMessage(block))
		} else {
			params = append(params, anthropicclient.NewUserMessage(block))
		}
	}
	return params
}

// Anthropic accepts temperature in [0,1].
func clampTemperature(t float64) float64 {
	if t > 1 {
		return 1
	}
	if t < 0 {
		return 0
	}
	return t
}
