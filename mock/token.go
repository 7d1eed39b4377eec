package mock

import (
	"context"

	"github.com/fwojciec/structex"
)

var _ structex.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of structex.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, model string, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, model string, text string) (int, error) {
	return tc.CountTokensFn(ctx, model, text)
}
