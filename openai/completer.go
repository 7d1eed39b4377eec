// Package openai provides a structex.Completer backed by the OpenAI chat
// completions API, or any OpenAI-compatible endpoint.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fwojciec/structex"
)

// Ensure Completer implements structex.Completer at compile time.
var _ structex.Completer = (*Completer)(nil)

// Client is the minimal surface needed from the go-openai client. Mirroring
// the CreateChatCompletion method lets tests substitute a stub backend.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Completer sends completion requests to an OpenAI-compatible backend.
// Extraction wants reproducible output, so requests are sent with
// temperature zero.
type Completer struct {
	client Client
}

// Config holds explicit credentials and endpoint configuration. The API key
// is injected here; the package never reads ambient environment state.
type Config struct {
	APIKey string

	// BaseURL overrides the API endpoint for OpenAI-compatible backends
	// (Azure, local runtimes, proxies). Empty means api.openai.com.
	BaseURL string
}

// NewCompleter creates a Completer for the configured backend.
func NewCompleter(cfg Config) (*Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, structex.Errorf(structex.EINVALID, "API key required")
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &Completer{client: openai.NewClientWithConfig(c)}, nil
}

// NewCompleterWithClient creates a Completer around an existing client.
// Used by tests to substitute a deterministic backend.
func NewCompleterWithClient(client Client) *Completer {
	return &Completer{client: client}
}

// Complete implements structex.Completer.
func (c *Completer) Complete(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
	r := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: 0,
		N:           1,
	}
	if req.MaxTokens > 0 {
		r.MaxTokens = req.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, structex.Errorf(structex.EBADRESPONSE, "backend returned no choices")
	}

	return &structex.CompletionResponse{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// mapError translates backend failures into coded structex errors so the
// invoker can decide between retry, model fallback, and giving up.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return structex.Errorf(structex.ETIMEOUT, "completion timed out: %v", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isContextLength(apiErr) {
			return structex.Errorf(structex.ECONTEXT, "prompt exceeds model context window: %s", apiErr.Message)
		}
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return structex.Errorf(structex.ERATELIMITED, "backend rate limited: %s", apiErr.Message)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return structex.Errorf(structex.ETIMEOUT, "backend timeout: %s", apiErr.Message)
		}
		if apiErr.HTTPStatusCode >= 500 {
			return structex.Errorf(structex.EUNAVAILABLE, "backend error: %s", apiErr.Message)
		}
		return structex.Errorf(structex.EINTERNAL, "backend error: %s", apiErr.Message)
	}

	return structex.Errorf(structex.EUNAVAILABLE, "completion failed: %v", err)
}

func isContextLength(apiErr *openai.APIError) bool {
	if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "context length")
}
