package gemini

import (
	"context"

	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"

	"github.com/fwojciec/structex"
)

var _ structex.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens exactly using the Gemini local tokenizer.
// Exact counts matter when the heuristic estimate sits close to a model's
// window and an under-count would mean a billed rejection.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for the given model family.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text. The model
// argument is ignored; the tokenizer is bound to a model at construction.
func (tc *TokenCounter) CountTokens(ctx context.Context, model string, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, "user"),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
