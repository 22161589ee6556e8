// Package client talks to a running support bot over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apiv1 "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/api/v1"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

// Client implements the support bot API over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Chat sends one message and returns the bot's reply.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*apiv1.ChatResponse, error) {
	var out apiv1.ChatResponse
	body := apiv1.ChatRequest{SessionID: sessionID, Message: message}
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the stored turns of a session.
func (c *Client) History(ctx context.Context, sessionID string) (*apiv1.HistoryResponse, error) {
	var out apiv1.HistoryResponse
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "history"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clear resets a session's history.
func (c *Client) Clear(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(sessionID, "history"), nil, nil)
}

func sessionPath(sessionID, suffix string) string {
	return fmt.Sprintf("/api/sessions/%s/%s", url.PathEscape(sessionID), suffix)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeRequestFailed, "failed to marshal request", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRequestFailed, "failed to create request", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRequestFailed, "failed to send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.New(apperrors.ErrCodeRequestFailed, "failed to decode response", err)
	}
	return nil
}

// statusError maps a non-200 response to a coded error carrying the server's message.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	var e apiv1.ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}

	code := apperrors.ErrCodeRequestFailed
	if resp.StatusCode == http.StatusBadRequest {
		code = apperrors.ErrCodeInvalidRequest
	}
	return apperrors.New(code, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, msg), nil)
}
