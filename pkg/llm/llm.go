package llm

import "context"

// ChatModel answers a single-turn prompt. Providers live in subpackages.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
