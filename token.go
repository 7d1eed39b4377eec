package structex

import (
	"context"
	"math"
	"strings"
)

// TokenCounter counts tokens in text for a specific model. Implementations
// may call a real tokenizer; EstimateTokens is the heuristic fallback.
type TokenCounter interface {
	CountTokens(ctx context.Context, model string, text string) (int, error)
}

// EstimateTokens approximates the token cost of a string using a
// conservative heuristic (~4 chars per token in English, rounded up).
// Pure function; it deliberately over-counts rather than under-counts,
// since under-counting causes backend-side rejection instead of a local,
// recoverable failure.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / 4.0))
}

// ModelWindow returns the context window, in tokens, for a model identifier.
// Unknown models fall back to a conservative default.
func ModelWindow(model string) int {
	name := strings.ToLower(strings.TrimSpace(model))
	if v, ok := modelWindows[name]; ok {
		return v
	}
	switch {
	case strings.HasSuffix(name, "-128k"):
		return 128_000
	case strings.HasSuffix(name, "-32k"):
		return 32_768
	case strings.HasSuffix(name, "-16k"):
		return 16_384
	}
	return 4_096
}

// ModelCost computes the dollar cost of one completion call given per-model
// prompt and completion token counts. Unknown models cost zero.
func ModelCost(model string, promptTokens, completionTokens int) float64 {
	name := strings.ToLower(strings.TrimSpace(model))
	p, ok := modelPricing[name]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1e6*p.promptPerMtok +
		float64(completionTokens)/1e6*p.completionPerMtok
}

// KnownModel reports whether the model has window and pricing entries.
func KnownModel(model string) bool {
	name := strings.ToLower(strings.TrimSpace(model))
	_, ok := modelWindows[name]
	return ok
}

// KnownModels returns the identifiers with registered windows, unordered.
func KnownModels() []string {
	out := make([]string, 0, len(modelWindows))
	for name := range modelWindows {
		out = append(out, name)
	}
	return out
}

// modelWindows holds context sizes for common model identifiers. Best effort;
// callers can always pass models not listed here.
var modelWindows = map[string]int{
	"gpt-3.5-turbo":     4_096,
	"gpt-3.5-turbo-16k": 16_384,
	"gpt-4":             8_192,
	"gpt-4-32k":         32_768,
	"gpt-4-turbo":       128_000,
	"gpt-4o":            128_000,
	"gpt-4o-mini":       128_000,

	"gemini-2.5-flash": 1_048_576,
	"gemini-2.5-pro":   1_048_576,
}

type pricing struct {
	promptPerMtok     float64
	completionPerMtok float64
}

// modelPricing holds per-million-token rates in USD.
var modelPricing = map[string]pricing{
	"gpt-3.5-turbo":     {promptPerMtok: 0.50, completionPerMtok: 1.50},
	"gpt-3.5-turbo-16k": {promptPerMtok: 3.00, completionPerMtok: 4.00},
	"gpt-4":             {promptPerMtok: 30.00, completionPerMtok: 60.00},
	"gpt-4-32k":         {promptPerMtok: 60.00, completionPerMtok: 120.00},
	"gpt-4-turbo":       {promptPerMtok: 10.00, completionPerMtok: 30.00},
	"gpt-4o":            {promptPerMtok: 2.50, completionPerMtok: 10.00},
	"gpt-4o-mini":       {promptPerMtok: 0.15, completionPerMtok: 0.60},

	"gemini-2.5-flash": {promptPerMtok: 0.30, completionPerMtok: 2.50},
	"gemini-2.5-pro":   {promptPerMtok: 1.25, completionPerMtok: 10.00},
}
