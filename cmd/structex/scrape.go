package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fwojciec/structex"
	"github.com/fwojciec/structex/htmltomarkdown"
	"github.com/fwojciec/structex/openai"
	"github.com/fwojciec/structex/scrape"
	structexslog "github.com/fwojciec/structex/slog"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	schema, err := readSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", structex.ErrorMessage(err))
		return err
	}

	content, err := readSource(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", structex.ErrorMessage(err))
		return err
	}

	completer, err := openai.NewCompleter(openai.Config{APIKey: c.APIKey, BaseURL: c.BaseURL})
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: set OPENAI_API_KEY or pass --api-key")
		return err
	}

	var backend structex.Completer = completer
	if c.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		backend = structexslog.NewLoggingCompleter(completer, logger)
	}

	policy := scrape.DefaultPolicy()
	if len(c.Model) > 0 {
		policy.Models = c.Model
	}

	scraper := scrape.NewScraper(backend, scrape.Config{
		Policy:      policy,
		Selector:    c.Selector,
		ListMode:    c.List,
		SplitLength: c.Split,
		Markdown:    c.Markdown,
		Concurrency: c.Concurrency,
	})
	scraper.Reducer = deps.Reducer
	if c.Markdown {
		scraper.Converter = htmltomarkdown.NewConverter()
	}

	result, err := scraper.Extract(deps.Ctx, content, schema)
	if err != nil && structex.ErrorCode(err) != structex.EPARTIAL {
		fmt.Fprintf(deps.Stderr, "error: %s\n", structex.ErrorMessage(err))
		return err
	}

	out, merr := json.MarshalIndent(result.Data, "", "  ")
	if merr != nil {
		return merr
	}
	fmt.Fprintln(deps.Stdout, string(out))

	tokens, dollars := scraper.TotalCost()
	fmt.Fprintf(deps.Stderr, "tokens: %d  cost: $%.6f\n", tokens, dollars)

	if err != nil { // partial: report what failed, keep the results
		var perr *structex.PartialError
		if errors.As(err, &perr) {
			fmt.Fprintf(deps.Stderr, "warning: %d of %d chunks failed: %v\n",
				len(perr.Failed), result.Chunks, perr.Indices())
		}
		return err
	}
	return nil
}

// readSchema accepts either a path to a JSON file or inline JSON.
func readSchema(arg string) (*structex.Schema, error) {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return structex.ParseSchema([]byte(trimmed))
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, structex.Errorf(structex.ENOTFOUND, "reading schema %q: %v", arg, err)
	}
	return structex.ParseSchema(data)
}
