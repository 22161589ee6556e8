// Package v1 holds the JSON bodies of the support bot HTTP API.
package v1

import "time"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatResponse is the 200 body of POST /api/chat.
type ChatResponse struct {
	Reply string   `json:"reply"`
	Meta  ChatMeta `json:"meta"`
}

type ChatMeta struct {
	ModelID string `json:"modelId"`
}

// Turn is one stored conversation turn.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// HistoryResponse is the body of GET /api/sessions/{id}/history.
type HistoryResponse struct {
	SessionID string `json:"sessionId"`
	History   []Turn `json:"history"`
}

// OKResponse acknowledges a mutation.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}
