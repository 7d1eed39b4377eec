package main

import (
	"fmt"
	"sort"

	"github.com/fwojciec/structex"
)

// Run executes the estimate command. It reduces the page and reports the
// token estimate against each candidate model's window; no billed calls.
func (c *EstimateCmd) Run(deps *Dependencies) error {
	content, err := readSource(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", structex.ErrorMessage(err))
		return err
	}

	reduced, err := deps.Reducer.Reduce(content, c.Selector)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", structex.ErrorMessage(err))
		return err
	}

	estimate := structex.EstimateTokens(reduced)
	fmt.Fprintf(deps.Stdout, "raw bytes: %d\nreduced bytes: %d\nestimated tokens: %d\n",
		len(content), len(reduced), estimate)

	models := c.Model
	if len(models) == 0 {
		models = structex.KnownModels()
		sort.Strings(models)
	}
	for _, model := range models {
		window := structex.ModelWindow(model)
		verdict := "fits"
		if estimate > window {
			verdict = "exceeds window"
		}
		fmt.Fprintf(deps.Stdout, "%-24s window %8d  %s\n", model, window, verdict)
	}
	return nil
}
