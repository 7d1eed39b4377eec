package main

import (
	"context"
	"io"

	"github.com/fwojciec/structex"
)

// Dependencies holds the services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Fetcher structex.Fetcher
	Reducer structex.Reducer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape   ScrapeCmd   `cmd:"" help:"Extract schema-shaped JSON from a page"`
	Estimate EstimateCmd `cmd:"" help:"Reduce a page and report token estimates without any billed call"`
	Models   ModelsCmd   `cmd:"" help:"List known models with context windows and pricing"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Source      string   `arg:"" help:"URL or local HTML file"`
	Schema      string   `short:"s" required:"" help:"Schema JSON file, or inline JSON"`
	Selector    string   `short:"c" name:"selector" help:"CSS selector scoping extraction to a sub-tree"`
	List        bool     `short:"l" help:"List mode: extract an array of schema-shaped items"`
	Split       int      `help:"Max tokens per chunk; enables chunked list-mode extraction"`
	Model       []string `short:"m" help:"Candidate models in fallback order (repeatable)"`
	Markdown    bool     `help:"Convert reduced HTML to Markdown before prompting"`
	Browser     bool     `short:"b" help:"Fetch with a headless browser for JS-rendered pages"`
	Concurrency int      `default:"1" help:"Parallel chunk workers"`
	APIKey      string   `env:"OPENAI_API_KEY" help:"OpenAI API key"`
	BaseURL     string   `env:"OPENAI_BASE_URL" help:"OpenAI-compatible API base URL"`
	Verbose     bool     `short:"v" help:"Log completion calls to stderr"`
}

// EstimateCmd is the "estimate" subcommand.
type EstimateCmd struct {
	Source   string   `arg:"" help:"URL or local HTML file"`
	Selector string   `short:"c" name:"selector" help:"CSS selector scoping reduction to a sub-tree"`
	Model    []string `short:"m" help:"Models to size against (repeatable)"`
	Browser  bool     `short:"b" help:"Fetch with a headless browser for JS-rendered pages"`
}

// ModelsCmd is the "models" subcommand.
type ModelsCmd struct{}
