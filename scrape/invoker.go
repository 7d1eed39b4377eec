package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fwojciec/structex"
)

// Policy is the explicit retry/fallback configuration consumed by the
// Invoker as data. Tests substitute deterministic policies (zero delays, one
// model) instead of relying on hardcoded control flow.
type Policy struct {
	// Models are the candidate model identifiers in attempt order, most
	// capable or most preferred first.
	Models []string

	// RetryDelays are the backoff waits between transient-failure retries
	// on the same model. len(RetryDelays)+1 is the per-model attempt count.
	RetryDelays []time.Duration

	// Timeout bounds each individual backend call. Zero means no per-call
	// timeout beyond the caller's context.
	Timeout time.Duration

	// RateLimit paces backend calls per model in requests per second.
	// Zero means unpaced.
	RateLimit float64
}

// DefaultPolicy mirrors the backend's own pricing ladder: try the cheap
// model first and fall back to the larger-context one.
func DefaultPolicy() Policy {
	return Policy{
		Models:      []string{"gpt-3.5-turbo", "gpt-4"},
		RetryDelays: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		Timeout:     60 * time.Second,
	}
}

// Invoker sends rendered requests to the completion backend, applying the
// policy's retry and model-fallback rules and recording every attempt that
// reaches the backend in the ledger, billed failures included.
type Invoker struct {
	Completer structex.Completer
	Ledger    *structex.CostLedger
	Policy    Policy

	// Sleep is replaceable for tests. Nil uses time.Sleep via the context.
	Sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Invoke attempts the request against the policy's candidate models in
// order. estimate is the pre-flight token estimate of the full prompt and is
// used to skip fallback candidates whose context window cannot fit the
// request. On success the response text is returned; on exhaustion the last
// failure is.
func (in *Invoker) Invoke(ctx context.Context, req structex.CompletionRequest, estimate int) (*structex.CompletionResponse, error) {
	if in.Completer == nil || len(in.Policy.Models) == 0 {
		return nil, structex.Errorf(structex.EINVALID, "invoker not configured")
	}

	var lastErr error
	sawContext := false
	attempted := false

	for _, model := range in.Policy.Models {
		if structex.ModelWindow(model) < estimate {
			// This candidate would reject the request outright; skipping it
			// avoids a billed failure.
			continue
		}

		resp, err := in.invokeModel(ctx, model, req)
		if err == nil {
			return resp, nil
		}
		attempted = true
		lastErr = err
		if code := structex.ErrorCode(err); code == structex.ECONTEXT {
			// The estimate under-counted; try the next, larger candidate.
			sawContext = true
			continue
		} else if !transient(code) {
			return nil, err
		}
	}

	if sawContext {
		// Context overflow with no larger candidate left is a sizing
		// failure, not a backend one.
		return nil, &structex.TokenLimitError{Estimate: estimate, Limit: largestWindow(in.Policy.Models)}
	}
	if !attempted {
		return nil, &structex.TokenLimitError{Estimate: estimate, Limit: largestWindow(in.Policy.Models)}
	}
	return nil, lastErr
}

// invokeModel runs the per-model attempt loop: transient failures back off
// and retry on the same model until the retry budget is spent.
func (in *Invoker) invokeModel(ctx context.Context, model string, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
	req.Model = model
	attempts := len(in.Policy.RetryDelays) + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := in.wait(ctx, model); err != nil {
			return nil, err
		}

		resp, err := in.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		code := structex.ErrorCode(err)
		if !transient(code) || attempt >= attempts-1 {
			break
		}
		if err := in.sleep(ctx, in.Policy.RetryDelays[attempt]); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// attempt performs one backend call and records it in the ledger whether it
// succeeded or failed; a failed call may still have been billed.
func (in *Invoker) attempt(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
	if in.Policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Policy.Timeout)
		defer cancel()
	}

	call := structex.CompletionCall{
		ID:        uuid.NewString(),
		Model:     req.Model,
		StartedAt: time.Now(),
	}

	resp, err := in.Completer.Complete(ctx, req)
	if err != nil {
		call.Outcome = structex.CallFailed
		if transient(structex.ErrorCode(err)) {
			call.Outcome = structex.CallRetried
		}
		call.Err = err
		if in.Ledger != nil {
			in.Ledger.Record(call)
		}
		return nil, err
	}

	call.Outcome = structex.CallSucceeded
	call.PromptTokens = resp.PromptTokens
	call.CompletionTokens = resp.CompletionTokens
	call.Cost = structex.ModelCost(req.Model, resp.PromptTokens, resp.CompletionTokens)
	call.Response = resp.Text
	if in.Ledger != nil {
		in.Ledger.Record(call)
	}
	return resp, nil
}

func (in *Invoker) wait(ctx context.Context, model string) error {
	if in.Policy.RateLimit <= 0 {
		return nil
	}
	in.mu.Lock()
	if in.limiters == nil {
		in.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := in.limiters[model]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(in.Policy.RateLimit), 1)
		in.limiters[model] = limiter
	}
	in.mu.Unlock()
	return limiter.Wait(ctx)
}

func (in *Invoker) sleep(ctx context.Context, d time.Duration) error {
	if in.Sleep != nil {
		return in.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// transient reports whether a failure code is worth retrying or falling
// back on. Everything else fails the call immediately.
func transient(code string) bool {
	switch code {
	case structex.ERATELIMITED, structex.ETIMEOUT, structex.EUNAVAILABLE:
		return true
	}
	return false
}

func largestWindow(models []string) int {
	max := 0
	for _, m := range models {
		if w := structex.ModelWindow(m); w > max {
			max = w
		}
	}
	return max
}
