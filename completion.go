package structex

import "context"

// CompletionRequest is one rendered request against the completion backend.
type CompletionRequest struct {
	// Model identifier understood by the backend.
	Model string

	// System carries the task instructions.
	System string

	// Prompt carries the schema shape description and the content excerpt.
	Prompt string

	// MaxTokens bounds the completion length. Zero means backend default.
	MaxTokens int
}

// CompletionResponse is the backend's answer together with its billed token
// counts. Token counts must be populated even when the response text later
// fails validation, so that cost tracking stays accurate.
type CompletionResponse struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer sends completion requests to an LLM backend. Implementations
// must map backend failures onto coded errors: ERATELIMITED for rate limits,
// ETIMEOUT for deadline expiry, ECONTEXT when the prompt exceeds the model's
// context window, and EUNAVAILABLE for server errors. Implementations take
// credentials explicitly at construction, never from ambient globals.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
