package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
)

const anthropicDefaultMaxTokens = 1024

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	client anthropic.Client
}

var _ Generator = &AnthropicClient{}

func NewAnthropicClient(apiKey, baseURL string, extra ...option.RequestOption) *AnthropicClient {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)

	return &AnthropicClient{client: anthropic.NewClient(opts...)}
}

func newAnthropicFromConfig(cfg config.LLMConfig) (Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == config.DefaultConfig().LLM.BaseURL {
		baseURL = ""
	}
	return NewAnthropicClient(cfg.APIKey, baseURL), nil
}

// Run returns {"output": <content blocks>} so text blocks are read as output parts.
func (c *AnthropicClient) Run(ctx context.Context, modelID string, req Request, _ Options) (any, error) {
	messages, system := convertAnthropicMessages(req.Messages)

	maxTokens := int64(anthropicDefaultMaxTokens)
	if req.MaxOutputTokens > 0 {
		maxTokens = int64(req.MaxOutputTokens)
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelID),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var decoded struct {
		Content []any `json:"content"`
	}
	if err := json.Unmarshal([]byte(message.RawJSON()), &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	return map[string]any{"output": decoded.Content}, nil
}

// convertAnthropicMessages splits system turns into the system prompt.
func convertAnthropicMessages(msgs []Message) ([]anthropic.MessageParam, string) {
	var system []string
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, strings.Join(system, "\n\n")
}
