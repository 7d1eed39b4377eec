package structex

import (
	"sync"
	"time"
)

// CallOutcome classifies one completion round trip.
type CallOutcome int

const (
	// CallSucceeded means the backend returned a usable response.
	CallSucceeded CallOutcome = iota

	// CallRetried means the attempt failed transiently and was retried.
	CallRetried

	// CallFailed means the attempt failed and was not retried.
	CallFailed
)

// String returns a human-readable outcome label.
func (o CallOutcome) String() string {
	switch o {
	case CallSucceeded:
		return "succeeded"
	case CallRetried:
		return "retried"
	case CallFailed:
		return "failed"
	}
	return "unknown"
}

// CompletionCall records one request/response round trip against the
// backend. Immutable after creation; every attempt that reaches the backend
// is recorded, including failed-but-billed ones.
type CompletionCall struct {
	ID               string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Cost             float64
	Response         string
	Outcome          CallOutcome
	Err              error
	StartedAt        time.Time
}

// TotalTokens returns prompt plus completion tokens for the call.
func (c *CompletionCall) TotalTokens() int {
	return c.PromptTokens + c.CompletionTokens
}

// CostLedger is the running accounting of tokens and money spent by one
// scraper instance across its lifetime. Totals increase monotonically; only
// an explicit Reset clears them. The ledger is owned by a single scraper
// instance and never shared between instances.
//
// All methods are safe for concurrent use so chunk processing may be
// parallelized without lost updates.
type CostLedger struct {
	mu      sync.Mutex
	tokens  int
	dollars float64
	calls   []CompletionCall
}

// Record appends a completion call and adds its tokens and cost to the
// running totals. The update is atomic per call.
func (l *CostLedger) Record(call CompletionCall) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
	l.tokens += call.TotalTokens()
	l.dollars += call.Cost
}

// Totals returns the cumulative token count and dollar cost.
func (l *CostLedger) Totals() (tokens int, dollars float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tokens, l.dollars
}

// Calls returns a copy of the recorded call history in record order.
func (l *CostLedger) Calls() []CompletionCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CompletionCall, len(l.calls))
	copy(out, l.calls)
	return out
}

// Reset clears totals and history. The pipeline never calls this itself.
func (l *CostLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = 0
	l.dollars = 0
	l.calls = nil
}
