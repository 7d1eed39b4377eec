package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/structex"
)

// Ensure LoggingFetcher implements structex.Fetcher.
var _ structex.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with structured logging of URL, payload
// size, and fetch duration.
type LoggingFetcher struct {
	next   structex.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next structex.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped Fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Warn("fetch failed",
			"url", url,
			"code", structex.ErrorCode(err),
			"duration", time.Since(begin),
		)
		return "", err
	}
	f.logger.Info("fetch",
		"url", url,
		"bytes", len(html),
		"duration", time.Since(begin),
	)
	return html, nil
}

// Close delegates to the wrapped Fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
