package structex

import "context"

// Fetcher retrieves raw HTML from URLs. Fetching is a collaborator at the
// edge of the pipeline; the core accepts already-fetched markup just as
// happily. Implementations may use plain HTTP or browser automation for
// JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}
