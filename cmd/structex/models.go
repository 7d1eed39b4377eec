package main

import (
	"fmt"
	"sort"

	"github.com/fwojciec/structex"
)

// Run executes the models command.
func (c *ModelsCmd) Run(deps *Dependencies) error {
	models := structex.KnownModels()
	sort.Strings(models)

	fmt.Fprintf(deps.Stdout, "%-24s %10s %14s %14s\n", "model", "window", "$/1M prompt", "$/1M compl")
	for _, model := range models {
		promptCost := structex.ModelCost(model, 1_000_000, 0)
		complCost := structex.ModelCost(model, 0, 1_000_000)
		fmt.Fprintf(deps.Stdout, "%-24s %10d %14.2f %14.2f\n",
			model, structex.ModelWindow(model), promptCost, complCost)
	}
	return nil
}
