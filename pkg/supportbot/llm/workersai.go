package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

const defaultGatewayURL = "https://gateway.ai.cloudflare.com/v1"

// WorkersAIClient calls the Cloudflare Workers AI REST API.
type WorkersAIClient struct {
	apiToken   string
	accountID  string
	baseURL    string
	gatewayURL string
	httpClient *http.Client
}

var _ Generator = &WorkersAIClient{}

// NewWorkersAIClient creates a Workers AI client. An empty baseURL uses the
// public Cloudflare API.
func NewWorkersAIClient(apiToken, accountID, baseURL string) *WorkersAIClient {
	if baseURL == "" {
		baseURL = config.DefaultConfig().LLM.BaseURL
	}
	return &WorkersAIClient{
		apiToken:   apiToken,
		accountID:  accountID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		gatewayURL: defaultGatewayURL,
		httpClient: &http.Client{},
	}
}

func newWorkersAIFromConfig(cfg config.LLMConfig) (Generator, error) {
	if cfg.AccountID == "" {
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "workersai provider requires an account id", nil)
	}
	return NewWorkersAIClient(cfg.APIKey, cfg.AccountID, cfg.BaseURL), nil
}

type workersAIRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type workersAIEnvelope struct {
	Result  json.RawMessage `json:"result"`
	Success *bool           `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *WorkersAIClient) endpoint(modelID string, opts Options) string {
	if opts.Gateway != "" {
		return fmt.Sprintf("%s/%s/%s/workers-ai/%s", c.gatewayURL, c.accountID, opts.Gateway, modelID)
	}
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, modelID)
}

func (c *WorkersAIClient) Run(ctx context.Context, modelID string, req Request, opts Options) (any, error) {
	payload, err := json.Marshal(workersAIRequest{
		Messages:    req.Messages,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workers ai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(modelID, opts), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create workers ai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("workers ai request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading workers ai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("workers ai non-success status=%d body=%s", resp.StatusCode, truncate(string(body), 400))
	}

	var env workersAIEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Not an envelope; hand the raw body to the caller for normalization.
		return decodeRaw(body), nil
	}
	if env.Success != nil && !*env.Success {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, fmt.Sprintf("%d: %s", e.Code, e.Message))
		}
		return nil, fmt.Errorf("workers ai reported failure: %s", strings.Join(msgs, "; "))
	}
	if env.Success == nil || len(env.Result) == 0 {
		return decodeRaw(body), nil
	}
	return decodeRaw(env.Result), nil
}

// decodeRaw returns body as decoded JSON, or as a string when it is not JSON.
func decodeRaw(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
