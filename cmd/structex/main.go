// Command structex extracts structured data from web pages by asking an LLM
// to fill in a caller-supplied schema.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/fwojciec/structex"
	"github.com/fwojciec/structex/goquery"
	structexhttp "github.com/fwojciec/structex/http"
	"github.com/fwojciec/structex/rod"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Reducer: goquery.NewReducer(),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("structex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'structex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Wire the fetcher based on the command's browser flag.
	browser := (cmd == "scrape" && cli.Scrape.Browser) || (cmd == "estimate" && cli.Estimate.Browser)
	if browser {
		fetcher, err := rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer fetcher.Close()
		deps.Fetcher = fetcher
	} else {
		fetcher := structexhttp.NewFetcher()
		defer fetcher.Close()
		deps.Fetcher = fetcher
	}

	return kongCtx.Run(deps)
}

// readSource returns page content for a URL or local file argument.
func readSource(deps *Dependencies, source string) (string, error) {
	if isURL(source) {
		return deps.Fetcher.Fetch(deps.Ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", structex.Errorf(structex.ENOTFOUND, "reading %q: %v", source, err)
	}
	return string(data), nil
}

func isURL(s string) bool {
	return len(s) > 8 && (s[:7] == "http://" || s[:8] == "https://")
}
