package chat

import (
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/llm"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/session"
)

// SystemPrompt sets the bot's persona and guardrails. It leads every prompt.
const SystemPrompt = "You are SupportBot, an expert support assistant for developers. " +
	"Answer concisely, include step-by-step troubleshooting where helpful, " +
	"provide commands and small code snippets when relevant, and ask follow-up " +
	"diagnostic questions when needed. If the user asks to perform destructive or " +
	"account-specific actions, refuse and suggest safe commands the user can run themselves."

// BuildPrompt prepends the system turn to history, keeping only role and
// content of each turn. window > 0 keeps only the most recent window turns.
func BuildPrompt(history []session.Turn, window int) []llm.Message {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: string(session.RoleSystem), Content: SystemPrompt})
	for _, t := range history {
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	return msgs
}
