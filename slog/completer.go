// Package slog provides logging decorators for structex collaborators.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/structex"
)

// Ensure LoggingCompleter implements structex.Completer.
var _ structex.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with structured logging of model,
// token usage, and call duration.
type LoggingCompleter struct {
	next   structex.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next structex.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped Completer and logs the outcome.
func (c *LoggingCompleter) Complete(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
	begin := time.Now()
	resp, err := c.next.Complete(ctx, req)
	if err != nil {
		c.logger.Warn("completion failed",
			"model", req.Model,
			"code", structex.ErrorCode(err),
			"duration", time.Since(begin),
		)
		return nil, err
	}
	c.logger.Info("completion",
		"model", req.Model,
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"cost", structex.ModelCost(req.Model, resp.PromptTokens, resp.CompletionTokens),
		"duration", time.Since(begin),
	)
	return resp, nil
}
