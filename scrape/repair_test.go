package scrape_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/structex"
	"github.com/fwojciec/structex/scrape"
)

func TestParseResponse(t *testing.T) {
	t.Parallel()

	t.Run("valid object", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`{"name": "Widget", "price": 9.99}`, false)
		require.NoError(t, err)
		obj, ok := data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Widget", obj["name"])
		assert.Equal(t, 9.99, obj["price"])
	})

	t.Run("valid array in list mode", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`[{"n": 1}, {"n": 2}]`, true)
		require.NoError(t, err)
		items, ok := data.([]any)
		require.True(t, ok)
		assert.Len(t, items, 2)
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		t.Parallel()

		raw := "```json\n{\"name\": \"Widget\"}\n```"
		data, err := scrape.ParseResponse(raw, false)
		require.NoError(t, err)
		obj, ok := data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Widget", obj["name"])
	})

	t.Run("trims prose around the value", func(t *testing.T) {
		t.Parallel()

		raw := `Here is the extracted data: {"name": "Widget"} Hope this helps!`
		data, err := scrape.ParseResponse(raw, false)
		require.NoError(t, err)
		obj, ok := data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Widget", obj["name"])
	})

	t.Run("wraps a bare object in list mode", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`{"n": 1}`, true)
		require.NoError(t, err)
		items, ok := data.([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
	})

	t.Run("unwraps a single-element array in single mode", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`[{"name": "Widget"}]`, false)
		require.NoError(t, err)
		obj, ok := data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Widget", obj["name"])
	})

	t.Run("rejects a multi-element array in single mode", func(t *testing.T) {
		t.Parallel()

		_, err := scrape.ParseResponse(`[{"n": 1}, {"n": 2}]`, false)
		require.Error(t, err)
		assert.Equal(t, structex.EBADRESPONSE, structex.ErrorCode(err))
	})

	t.Run("repairs an unterminated string", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`{"name": "Wid`, false)
		require.NoError(t, err)
		obj, ok := data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Wid", obj["name"])
	})

	t.Run("repairs a truncated array with a trailing comma", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`[{"n": 1}, {"n": 2},`, true)
		require.NoError(t, err)
		items, ok := data.([]any)
		require.True(t, ok)
		assert.Len(t, items, 2)
	})

	t.Run("repairs unclosed nesting", func(t *testing.T) {
		t.Parallel()

		data, err := scrape.ParseResponse(`[{"name": "a", "tags": ["x", "y"`, true)
		require.NoError(t, err)
		items, ok := data.([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
	})

	t.Run("gives up beyond the repair depth", func(t *testing.T) {
		t.Parallel()

		_, err := scrape.ParseResponse(strings.Repeat("[", 20), true)
		require.Error(t, err)
		assert.Equal(t, structex.EBADRESPONSE, structex.ErrorCode(err))
	})

	t.Run("rejects scalars", func(t *testing.T) {
		t.Parallel()

		_, err := scrape.ParseResponse(`42`, false)
		require.Error(t, err)
		assert.Equal(t, structex.EBADRESPONSE, structex.ErrorCode(err))
	})

	t.Run("carries the raw text on failure", func(t *testing.T) {
		t.Parallel()

		_, err := scrape.ParseResponse("I'm sorry, I can't do that.", false)
		require.Error(t, err)
		var respErr *structex.ResponseError
		require.True(t, errors.As(err, &respErr))
		assert.Equal(t, "I'm sorry, I can't do that.", respErr.Raw)
	})
}
