// Package llm adapts text-generation providers to a single Run call and
// normalizes their loosely shaped results into reply text.
package llm

import "context"

// Message is one prompt turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the prompt and the fixed generation parameters.
type Request struct {
	Messages        []Message
	MaxOutputTokens int
	Temperature     float64
}

// Options are per-call routing settings.
type Options struct {
	// Gateway names an AI gateway to route through, when the provider supports one.
	Gateway string
}

// Generator runs a model. The returned value is the provider's decoded JSON
// result (map, slice, string or nil); its shape is not guaranteed and must be
// passed through Parse.
type Generator interface {
	Run(ctx context.Context, modelID string, req Request, opts Options) (any, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, modelID string, req Request, opts Options) (any, error)

func (f GeneratorFunc) Run(ctx context.Context, modelID string, req Request, opts Options) (any, error) {
	return f(ctx, modelID, req, opts)
}
