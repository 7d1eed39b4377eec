package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/structex"
	"github.com/fwojciec/structex/mock"
	"github.com/fwojciec/structex/scrape"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestInvoker_Invoke(t *testing.T) {
	t.Parallel()

	t.Run("first attempt succeeds and is recorded", func(t *testing.T) {
		t.Parallel()

		ledger := &structex.CostLedger{}
		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					assert.Equal(t, "gpt-3.5-turbo", req.Model)
					return &structex.CompletionResponse{Text: `{"ok": true}`, PromptTokens: 100, CompletionTokens: 20}, nil
				},
			},
			Ledger: ledger,
			Policy: scrape.Policy{Models: []string{"gpt-3.5-turbo"}},
			Sleep:  noSleep,
		}

		resp, err := in.Invoke(context.Background(), structex.CompletionRequest{Prompt: "p"}, 100)
		require.NoError(t, err)
		assert.Equal(t, `{"ok": true}`, resp.Text)

		calls := ledger.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, structex.CallSucceeded, calls[0].Outcome)
		assert.Equal(t, "gpt-3.5-turbo", calls[0].Model)
		assert.Equal(t, 120, calls[0].TotalTokens())
		assert.InDelta(t, structex.ModelCost("gpt-3.5-turbo", 100, 20), calls[0].Cost, 1e-12)
		assert.NotEmpty(t, calls[0].ID)
	})

	t.Run("transient failures retry with the policy backoff", func(t *testing.T) {
		t.Parallel()

		var slept []time.Duration
		var attempts int
		ledger := &structex.CostLedger{}
		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					attempts++
					if attempts < 3 {
						return nil, structex.Errorf(structex.ERATELIMITED, "slow down")
					}
					return &structex.CompletionResponse{Text: "{}"}, nil
				},
			},
			Ledger: ledger,
			Policy: scrape.Policy{
				Models:      []string{"gpt-3.5-turbo"},
				RetryDelays: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
			},
			Sleep: func(ctx context.Context, d time.Duration) error {
				slept = append(slept, d)
				return nil
			},
		}

		_, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 100)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)

		calls := ledger.Calls()
		require.Len(t, calls, 3)
		assert.Equal(t, structex.CallRetried, calls[0].Outcome)
		assert.Equal(t, structex.CallRetried, calls[1].Outcome)
		assert.Equal(t, structex.CallSucceeded, calls[2].Outcome)
	})

	t.Run("retries exhausted returns the last failure", func(t *testing.T) {
		t.Parallel()

		var attempts int
		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					attempts++
					return nil, structex.Errorf(structex.EUNAVAILABLE, "backend down")
				},
			},
			Ledger: &structex.CostLedger{},
			Policy: scrape.Policy{
				Models:      []string{"gpt-3.5-turbo"},
				RetryDelays: []time.Duration{time.Second, time.Second},
			},
			Sleep: noSleep,
		}

		_, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 100)
		require.Error(t, err)
		assert.Equal(t, structex.EUNAVAILABLE, structex.ErrorCode(err))
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-transient failure does not retry", func(t *testing.T) {
		t.Parallel()

		var attempts int
		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					attempts++
					return nil, structex.Errorf(structex.EINVALID, "bad request")
				},
			},
			Ledger: &structex.CostLedger{},
			Policy: scrape.Policy{
				Models:      []string{"gpt-3.5-turbo", "gpt-4"},
				RetryDelays: []time.Duration{time.Second},
			},
			Sleep: noSleep,
		}

		_, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 100)
		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("context overflow falls back to the next model", func(t *testing.T) {
		t.Parallel()

		ledger := &structex.CostLedger{}
		var models []string
		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					models = append(models, req.Model)
					if req.Model == "gpt-3.5-turbo" {
						return nil, structex.Errorf(structex.ECONTEXT, "maximum context length exceeded")
					}
					return &structex.CompletionResponse{Text: "{}", PromptTokens: 3000}, nil
				},
			},
			Ledger: ledger,
			Policy: scrape.Policy{Models: []string{"gpt-3.5-turbo", "gpt-4"}},
			Sleep:  noSleep,
		}

		resp, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 3000)
		require.NoError(t, err)
		assert.Equal(t, "{}", resp.Text)
		assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-4"}, models)

		calls := ledger.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, structex.CallFailed, calls[0].Outcome)
		assert.Equal(t, structex.CallSucceeded, calls[1].Outcome)
	})

	t.Run("skips models whose window cannot fit the estimate", func(t *testing.T) {
		t.Parallel()

		var attempts int
		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					attempts++
					return &structex.CompletionResponse{Text: "{}"}, nil
				},
			},
			Ledger: &structex.CostLedger{},
			Policy: scrape.Policy{Models: []string{"gpt-3.5-turbo", "gpt-4"}},
			Sleep:  noSleep,
		}

		_, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 10000)
		require.Error(t, err)
		assert.Zero(t, attempts)

		var limitErr *structex.TokenLimitError
		require.True(t, errors.As(err, &limitErr))
		assert.Equal(t, 10000, limitErr.Estimate)
		assert.Equal(t, 8192, limitErr.Limit)
	})

	t.Run("context overflow with no larger candidate is a sizing failure", func(t *testing.T) {
		t.Parallel()

		in := &scrape.Invoker{
			Completer: &mock.Completer{
				CompleteFn: func(ctx context.Context, req structex.CompletionRequest) (*structex.CompletionResponse, error) {
					return nil, structex.Errorf(structex.ECONTEXT, "maximum context length exceeded")
				},
			},
			Ledger: &structex.CostLedger{},
			Policy: scrape.Policy{Models: []string{"gpt-3.5-turbo"}},
			Sleep:  noSleep,
		}

		_, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 2000)
		require.Error(t, err)

		var limitErr *structex.TokenLimitError
		require.True(t, errors.As(err, &limitErr))
		assert.Equal(t, 2000, limitErr.Estimate)
		assert.Equal(t, 4096, limitErr.Limit)
	})

	t.Run("unconfigured invoker is invalid", func(t *testing.T) {
		t.Parallel()

		in := &scrape.Invoker{}
		_, err := in.Invoke(context.Background(), structex.CompletionRequest{}, 1)
		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
	})
}
