package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatOptions tunes a single completion call. Zero values mean provider defaults.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// AIServiceAdapter is the port for LLM completions.
type AIServiceAdapter interface {
	// Chat returns only the assistant text
	Chat(ctx context.Context, model string, messages []Message, opts ChatOptions) (string, error)
}

// TokenCounter estimates prompt size for a model.
type TokenCounter interface {
	Count(model, text string) int
}
