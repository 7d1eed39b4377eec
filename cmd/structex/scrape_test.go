package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/structex"
	main "github.com/fwojciec/structex/cmd/structex"
	"github.com/fwojciec/structex/mock"
)

func TestScrapeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("rejects malformed inline schema", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.ScrapeCmd{Source: "page.html", Schema: `{"name": `}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
	})

	t.Run("rejects missing schema file", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		cmd := &main.ScrapeCmd{Source: "page.html", Schema: filepath.Join(t.TempDir(), "missing.json")}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, structex.ENOTFOUND, structex.ErrorCode(err))
	})

	t.Run("missing API key fails with a hint", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		require.NoError(t, os.WriteFile(path, []byte("<h1>Widget</h1>"), 0o644))

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Reducer: &mock.Reducer{
				ReduceFn: func(html, selector string) (string, error) { return html, nil },
			},
		}

		cmd := &main.ScrapeCmd{Source: path, Schema: `{"name": "str"}`}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, structex.EINVALID, structex.ErrorCode(err))
		assert.Contains(t, stderr.String(), "OPENAI_API_KEY")
	})
}
