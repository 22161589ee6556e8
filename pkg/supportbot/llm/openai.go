package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openai.Client
}

var _ Generator = &OpenAIClient{}

// NewOpenAIClient creates a new OpenAI client. baseURL may point at any
// OpenAI-compatible server.
func NewOpenAIClient(apiKey, baseURL string, extra ...option.RequestOption) *OpenAIClient {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)

	return &OpenAIClient{client: openai.NewClient(opts...)}
}

func newOpenAIFromConfig(cfg config.LLMConfig) (Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == config.DefaultConfig().LLM.BaseURL {
		baseURL = ""
	}
	return NewOpenAIClient(cfg.APIKey, baseURL), nil
}

// Run returns the decoded chat completion, whose "choices" carry the reply.
func (c *OpenAIClient) Run(ctx context.Context, modelID string, req Request, _ Options) (any, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(modelID),
		Messages:    convertOpenAIMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	var raw any
	if err := json.Unmarshal([]byte(completion.RawJSON()), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode openai response: %w", err)
	}
	return raw, nil
}

func convertOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
