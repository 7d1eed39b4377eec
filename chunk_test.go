package structex_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/structex"
)

// normalize collapses all whitespace so round-trip comparisons ignore the
// joining newlines the splitter introduces or drops.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestSplitContent(t *testing.T) {
	t.Parallel()

	t.Run("content under the limit yields one chunk", func(t *testing.T) {
		t.Parallel()

		content := "<li>one</li>\n<li>two</li>"

		chunks := structex.SplitContent(content, 1000, nil)

		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, normalize(content), normalize(chunks[0].Content))
	})

	t.Run("splits at line boundaries under the limit", func(t *testing.T) {
		t.Parallel()

		lines := make([]string, 20)
		for i := range lines {
			lines[i] = "<li>item item item item</li>" // 28 chars, 7 tokens
		}
		content := strings.Join(lines, "\n")

		chunks := structex.SplitContent(content, 20, nil)

		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, c.Tokens, 20, "chunk %d over limit", c.Index)
		}
	})

	t.Run("round trip reconstructs input modulo whitespace", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"<li>a</li>\n<li>b</li>\n<li>c</li>",
			"<div><p>one long paragraph of content</p><p>another paragraph</p></div>",
			strings.Repeat("<span>word</span>", 50),
			"plain text with no markup at all but quite a few words in it",
		}

		for _, input := range inputs {
			for _, max := range []int{1, 5, 25, 1000} {
				chunks := structex.SplitContent(input, max, nil)
				require.NotEmpty(t, chunks)

				var parts []string
				for i, c := range chunks {
					assert.Equal(t, i, c.Index)
					parts = append(parts, c.Content)
				}
				assert.Equal(t, normalize(input), normalize(strings.Join(parts, "\n")),
					"input %q max %d", input, max)
			}
		}
	})

	t.Run("splits long single line between tags", func(t *testing.T) {
		t.Parallel()

		content := strings.Repeat("<li>item</li>", 30) // one line, no newlines

		chunks := structex.SplitContent(content, 10, nil)

		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			// Units are cut at tag boundaries, never inside an element.
			assert.True(t, strings.HasPrefix(c.Content, "<li>"), "chunk %d starts mid-element", c.Index)
		}
	})

	t.Run("oversized atomic unit becomes its own chunk", func(t *testing.T) {
		t.Parallel()

		big := "<pre>" + strings.Repeat("x", 400) + "</pre>" // ~103 tokens, unsplittable
		content := "<p>small</p>\n" + big + "\n<p>tail</p>"

		chunks := structex.SplitContent(content, 20, nil)

		require.Len(t, chunks, 3)
		assert.Greater(t, chunks[1].Tokens, 20)
		assert.Equal(t, normalize(big), normalize(chunks[1].Content))
	})

	t.Run("splitting is deterministic", func(t *testing.T) {
		t.Parallel()

		content := strings.Repeat("<li>item one two three</li>\n", 40)

		first := structex.SplitContent(content, 30, nil)
		second := structex.SplitContent(content, 30, nil)

		assert.Equal(t, first, second)
	})

	t.Run("chunks carry provenance hashes", func(t *testing.T) {
		t.Parallel()

		chunks := structex.SplitContent("<li>a</li>\n<li>b</li>", 3, nil)

		require.Len(t, chunks, 2)
		assert.NotEmpty(t, chunks[0].Hash)
		assert.NotEqual(t, chunks[0].Hash, chunks[1].Hash)
	})

	t.Run("custom estimate function is honored", func(t *testing.T) {
		t.Parallel()

		// Count every unit as one token: everything packs into one chunk.
		chunks := structex.SplitContent(strings.Repeat("<li>x</li>\n", 10), 10, func(string) int { return 1 })

		assert.Len(t, chunks, 1)
	})
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, structex.EstimateTokens(""))
	assert.Equal(t, 1, structex.EstimateTokens("abc"))
	assert.Equal(t, 1, structex.EstimateTokens("abcd"))
	assert.Equal(t, 2, structex.EstimateTokens("abcde"))
	assert.Equal(t, 1000, structex.EstimateTokens(strings.Repeat("x", 4000)))
}

func TestModelWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4_096, structex.ModelWindow("gpt-3.5-turbo"))
	assert.Equal(t, 16_384, structex.ModelWindow("gpt-3.5-turbo-16k"))
	assert.Equal(t, 8_192, structex.ModelWindow("gpt-4"))
	assert.Equal(t, 4_096, structex.ModelWindow("some-unknown-model"))
	assert.Equal(t, 32_768, structex.ModelWindow("custom-model-32k"))
}

func TestModelCost(t *testing.T) {
	t.Parallel()

	t.Run("charges prompt and completion at separate rates", func(t *testing.T) {
		t.Parallel()

		cost := structex.ModelCost("gpt-4", 1_000_000, 1_000_000)
		assert.InDelta(t, 90.0, cost, 1e-9)
	})

	t.Run("unknown model costs zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, structex.ModelCost("mystery-model", 1000, 1000))
	})
}
