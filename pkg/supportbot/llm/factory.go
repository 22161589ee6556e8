package llm

import (
	"fmt"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

// NewGenerator creates the generator named by cfg.Provider from the built-in providers.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	return DefaultRegistry().New(cfg)
}

// New creates the generator named by cfg.Provider.
func (r *Registry) New(cfg config.LLMConfig) (Generator, error) {
	f, err := r.Get(cfg.Provider)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unsupported provider: %s", cfg.Provider), err)
	}
	return f(cfg)
}
