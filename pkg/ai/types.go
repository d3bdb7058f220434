package ai

import "context"

// CompletionRequest carries one prompt exchange to a completion provider.
type CompletionRequest struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float32
}

// Completer describes an AI model that answers a single blocking completion
// request and returns the raw assistant text. Callers own timeouts and
// retries through ctx.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
