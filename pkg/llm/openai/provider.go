package openai

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	"jarvis-ai-be/pkg/llm"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

type OpenAIProvider struct {
	client    openaiclient.Client
	modelName string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, modelName string) *OpenAIProvider {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeBaseURL(baseURL); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	return &OpenAIProvider{
		client:    openaiclient.NewClient(opts...),
		modelName: modelName,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.Apply(p.modelName, opts...)

	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "system":
			messages = append(messages, openaiclient.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openaiclient.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openaiclient.UserMessage(msg.Content))
		}
	}

	params := openaiclient.ChatCompletionNewParams{
		Model:       openaiclient.ChatModel(options.Model),
		Messages:    messages,
		Temperature: openaiclient.Float(options.Temperature),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openaiclient.Int(int64(options.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	model := resp.Model
	if model == "" {
		model = options.Model
	}

	return &llm.Completion{
		Content:          resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return llm.Generate(ctx, p, prompt, opts...)
}

// normalizeBaseURL makes sure OpenAI-compatible endpoints end in /v1.
func normalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
