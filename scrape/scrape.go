// Package scrape provides the token-budgeted extraction pipeline: reducing
// a page to content that fits a model's context window, choosing between
// single-shot and chunked list-mode extraction, invoking the completion
// backend with retry and model fallback, validating and repairing the
// returned JSON, and tracking cumulative cost.
package scrape

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/structex"
)

// Config holds everything accepted at construction time. Every option and
// its effect is documented here; nothing is inferred from the environment.
type Config struct {
	// Policy is the ordered candidate model list plus retry budget and
	// backoff schedule consumed by the invoker. Zero value means
	// DefaultPolicy.
	Policy Policy

	// Selector optionally scopes reduction to a CSS sub-tree. A selector
	// matching nothing fails the whole extraction with ENOTFOUND before any
	// billed call.
	Selector string

	// ListMode asks each completion for an array of schema-shaped items
	// instead of a single object. Required for chunked extraction to make
	// aggregation meaningful.
	ListMode bool

	// SplitLength, when positive, is the maximum estimated token size of
	// one chunk. Content is then split at structural boundaries and each
	// chunk extracted independently in list mode. Zero disables splitting:
	// content that exceeds the budget fails with ETOOLARGE instead.
	SplitLength int

	// MaxInputTokens, when positive, overrides the usable content budget.
	// Zero derives the budget from the first candidate model's context
	// window minus the prompt overhead and the output reservation.
	MaxInputTokens int

	// MaxOutputTokens reserves room for the completion. Zero means
	// DefaultMaxOutputTokens.
	MaxOutputTokens int

	// Markdown converts reduced HTML to Markdown before prompting, which
	// usually lowers the token count. Requires a Converter.
	Markdown bool

	// Concurrency bounds parallel chunk workers. Values below 2 process
	// chunks sequentially. Aggregation order is by chunk index either way,
	// and one chunk's failure never cancels its siblings.
	Concurrency int
}

// DefaultMaxOutputTokens reserves a conservative slice of the context
// window for the completion itself.
const DefaultMaxOutputTokens = 1024

// Scraper is the public entry point of the pipeline. Collaborators are
// exported fields so callers wire exactly what they need; only Completer is
// required. One Scraper owns one ledger; never share a Scraper's ledger
// across instances.
type Scraper struct {
	// Reducer strips non-content markup. Nil passes content through
	// unreduced, for callers that pre-clean their input.
	Reducer structex.Reducer

	// Converter optionally thins reduced HTML to Markdown (Config.Markdown).
	Converter structex.Converter

	// Counter optionally replaces the chars/4 heuristic with an exact
	// tokenizer for pre-flight sizing.
	Counter structex.TokenCounter

	// Fetcher retrieves pages for ExtractURL. Optional.
	Fetcher structex.Fetcher

	config  Config
	invoker *Invoker
	ledger  *structex.CostLedger
}

// Result is the outcome of one extraction. In single mode Data is one
// structured object; in list mode it is the ordered concatenation of all
// successful per-chunk results.
type Result struct {
	// Data is a map[string]any (single mode) or []any (list mode).
	Data any

	// Chunks is how many chunks the content was split into (1 when no
	// splitting happened).
	Chunks int

	// Failed lists chunk-level failures in list mode, by chunk index.
	Failed []structex.ChunkFailure
}

// NewScraper creates a Scraper around a completion backend. The zero parts
// of cfg fall back to defaults documented on Config.
func NewScraper(completer structex.Completer, cfg Config) *Scraper {
	if len(cfg.Policy.Models) == 0 {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	ledger := &structex.CostLedger{}
	return &Scraper{
		config: cfg,
		ledger: ledger,
		invoker: &Invoker{
			Completer: completer,
			Ledger:    ledger,
			Policy:    cfg.Policy,
		},
	}
}

// TotalCost returns the cumulative tokens and dollars spent by this scraper
// instance across its lifetime, including billed failures.
func (s *Scraper) TotalCost() (tokens int, dollars float64) {
	return s.ledger.Totals()
}

// Calls returns the recorded completion call history.
func (s *Scraper) Calls() []structex.CompletionCall {
	return s.ledger.Calls()
}

// ResetCost clears the ledger. The pipeline never does this on its own.
func (s *Scraper) ResetCost() {
	s.ledger.Reset()
}

// ExtractURL fetches a page and extracts it. Requires a Fetcher.
func (s *Scraper) ExtractURL(ctx context.Context, url string, schema *structex.Schema) (*Result, error) {
	if s.Fetcher == nil {
		return nil, structex.Errorf(structex.EINVALID, "no fetcher configured")
	}
	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.Extract(ctx, html, schema)
}

// Extract runs the pipeline over already-fetched content: reduce, estimate,
// then either a single completion call or chunked list-mode calls whose
// results are aggregated in chunk order. Pre-flight failures (selector not
// found, content too large without splitting) abort before any billed call.
// In list mode, chunk failures are recorded and surfaced as a PartialError
// alongside the successful results; they never abort sibling chunks.
func (s *Scraper) Extract(ctx context.Context, content string, schema *structex.Schema) (*Result, error) {
	if schema == nil {
		return nil, structex.Errorf(structex.EINVALID, "schema required")
	}

	reduced, err := s.reduce(content)
	if err != nil {
		return nil, err
	}

	listMode := s.config.ListMode || schema.IsList()
	estimate := s.estimate(ctx, reduced)
	budget := s.contentBudget(schema, listMode)

	if s.config.SplitLength > 0 || listMode {
		splitLen := s.config.SplitLength
		if splitLen <= 0 {
			// List mode without an explicit split length chunks at the
			// content budget, which degenerates to one chunk when the
			// content fits.
			splitLen = budget
		}
		return s.extractChunked(ctx, reduced, schema, splitLen)
	}

	if estimate > budget {
		return nil, &structex.TokenLimitError{Estimate: estimate, Limit: budget}
	}
	return s.extractSingle(ctx, reduced, schema, listMode, estimate)
}

// reduce applies the configured Reducer and optional Markdown conversion.
func (s *Scraper) reduce(content string) (string, error) {
	reduced := content
	if s.Reducer != nil {
		r, err := s.Reducer.Reduce(content, s.config.Selector)
		if err != nil {
			return "", err
		}
		reduced = r
	}
	if s.config.Markdown {
		if s.Converter == nil {
			return "", structex.Errorf(structex.EINVALID, "markdown output requires a converter")
		}
		md, err := s.Converter.Convert(reduced)
		if err != nil {
			return "", err
		}
		reduced = md
	}
	return reduced, nil
}

// estimate sizes text with the exact counter when one is wired, falling
// back to the heuristic when it is not or when it errors.
func (s *Scraper) estimate(ctx context.Context, text string) int {
	if s.Counter != nil {
		if n, err := s.Counter.CountTokens(ctx, s.config.Policy.Models[0], text); err == nil {
			return n
		}
	}
	return structex.EstimateTokens(text)
}

// contentBudget is the usable token budget for content, measured against
// the default (first) candidate model.
func (s *Scraper) contentBudget(schema *structex.Schema, listMode bool) int {
	if s.config.MaxInputTokens > 0 {
		return s.config.MaxInputTokens
	}
	window := structex.ModelWindow(s.config.Policy.Models[0])
	budget := window - promptOverhead(schema, listMode) - s.config.MaxOutputTokens
	if budget < 1 {
		budget = 1
	}
	return budget
}

func (s *Scraper) extractSingle(ctx context.Context, content string, schema *structex.Schema, listMode bool, estimate int) (*Result, error) {
	system, user := BuildPrompt(schema, content, listMode)
	req := structex.CompletionRequest{
		System:    system,
		Prompt:    user,
		MaxTokens: s.config.MaxOutputTokens,
	}

	resp, err := s.invoker.Invoke(ctx, req, estimate+promptOverhead(schema, listMode))
	if err != nil {
		return nil, err
	}

	data, err := ParseResponse(resp.Text, listMode)
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, Chunks: 1}, nil
}

// extractChunked splits reduced content and extracts each chunk
// independently in list mode, aggregating successes in chunk order.
func (s *Scraper) extractChunked(ctx context.Context, content string, schema *structex.Schema, splitLen int) (*Result, error) {
	chunks := structex.SplitContent(content, splitLen, func(t string) int {
		return s.estimate(ctx, t)
	})

	type chunkResult struct {
		items []any
		err   error
	}
	results := make([]chunkResult, len(chunks))

	process := func(c structex.Chunk) chunkResult {
		system, user := BuildPrompt(schema, c.Content, true)
		req := structex.CompletionRequest{
			System:    system,
			Prompt:    user,
			MaxTokens: s.config.MaxOutputTokens,
		}
		resp, err := s.invoker.Invoke(ctx, req, c.Tokens+promptOverhead(schema, true))
		if err != nil {
			return chunkResult{err: err}
		}
		data, err := ParseResponse(resp.Text, true)
		if err != nil {
			return chunkResult{err: err}
		}
		items, _ := data.([]any)
		return chunkResult{items: items}
	}

	if s.config.Concurrency > 1 {
		// Bounded worker pool. Workers never cancel each other: a chunk
		// failure is recorded, not propagated, and only caller-initiated
		// cancellation of ctx stops the group early.
		g := new(errgroup.Group)
		g.SetLimit(s.config.Concurrency)
		var mu sync.Mutex
		for _, c := range chunks {
			g.Go(func() error {
				r := process(c)
				mu.Lock()
				results[c.Index] = r
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, c := range chunks {
			results[c.Index] = process(c)
		}
	}

	items := make([]any, 0, len(chunks))
	var failed []structex.ChunkFailure
	for i, r := range results {
		if r.err != nil {
			failed = append(failed, structex.ChunkFailure{Index: i, Err: r.err})
			continue
		}
		items = append(items, r.items...)
	}

	result := &Result{Data: items, Chunks: len(chunks), Failed: failed}
	if len(failed) > 0 {
		return result, &structex.PartialError{Failed: failed}
	}
	return result, nil
}
