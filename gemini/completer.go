// Package gemini provides a structex.Completer and an exact
// structex.TokenCounter backed by Google Gemini.
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/fwojciec/structex"
)

// Ensure Completer implements structex.Completer at compile time.
var _ structex.Completer = (*Completer)(nil)

// Completer sends completion requests to the Gemini API.
type Completer struct {
	client *genai.Client
}

// NewCompleter creates a Completer with an explicitly injected API key.
func NewCompleter(ctx context.Context, apiKey string) (*Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, structex.Errorf(structex.EINVALID, "API key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Completer{client: client}, nil
}

// Complete implements structex.Completer.
func (c *Completer) Complete(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
		Temperature: &temp,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: req.Prompt}},
		}},
		config,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if result == nil {
		return nil, structex.Errorf(structex.EBADRESPONSE, "gemini returned nil result")
	}

	resp := &structex.CompletionResponse{Text: result.Text()}
	if result.UsageMetadata != nil {
		resp.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

// mapError translates Gemini API failures into coded structex errors.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return structex.Errorf(structex.ERATELIMITED, "backend rate limited: %s", apiErr.Message)
		case 504:
			return structex.Errorf(structex.ETIMEOUT, "backend timeout: %s", apiErr.Message)
		}
		if strings.Contains(strings.ToLower(apiErr.Message), "token count") ||
			strings.Contains(strings.ToLower(apiErr.Message), "context") {
			return structex.Errorf(structex.ECONTEXT, "prompt exceeds model context window: %s", apiErr.Message)
		}
		if apiErr.Code >= 500 {
			return structex.Errorf(structex.EUNAVAILABLE, "backend error: %s", apiErr.Message)
		}
		return structex.Errorf(structex.EINTERNAL, "backend error: %s", apiErr.Message)
	}
	return structex.Errorf(structex.EUNAVAILABLE, "completion failed: %v", err)
}
