// Package mock provides function-field mock implementations of structex
// interfaces for tests.
package mock

import (
	"context"

	"github.com/fwojciec/structex"
)

var _ structex.Completer = (*Completer)(nil)

// Completer is a mock implementation of structex.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error)
}

func (c *Completer) Complete(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
	return c.CompleteFn(ctx, req)
}
