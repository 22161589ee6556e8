package llm

import (
	"context"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
)

const defaultStaticReply = "SupportBot is running with the static provider. Configure a model provider to get real answers."

// StaticGenerator returns a fixed reply in the Workers AI response shape.
type StaticGenerator struct {
	Reply string
}

var _ Generator = &StaticGenerator{}

func (g *StaticGenerator) Run(ctx context.Context, _ string, _ Request, _ Options) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := g.Reply
	if reply == "" {
		reply = defaultStaticReply
	}
	return map[string]any{"response": reply}, nil
}

func newStaticFromConfig(cfg config.LLMConfig) (Generator, error) {
	return &StaticGenerator{Reply: cfg.StaticReply}, nil
}
