package structex

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Chunk is one bounded-size slice of reduced content submitted as an
// independent completion request. Chunks are ordered and zero-indexed;
// they share nothing beyond the schema and the aggregation target.
type Chunk struct {
	// Index is the chunk's position in the original content.
	Index int

	// Content is the slice of reduced markup.
	Content string

	// Tokens is the estimated token count of Content.
	Tokens int

	// Hash fingerprints Content for provenance when debugging aggregated
	// results.
	Hash string
}

// EstimateFunc estimates the token count of a string.
type EstimateFunc func(string) int

// SplitContent partitions reduced content into an ordered, non-empty
// sequence of chunks, each estimated at or under maxTokens. Splits happen at
// line boundaries first, then between adjacent tags, never inside an atomic
// unit. A single unit that alone exceeds maxTokens is emitted as its own
// oversized chunk; downstream failure for that chunk is the caller's
// concern. Concatenating the chunks reconstructs the input modulo
// whitespace. Splitting is deterministic.
//
// A nil estimate falls back to EstimateTokens.
func SplitContent(content string, maxTokens int, estimate EstimateFunc) []Chunk {
	if estimate == nil {
		estimate = EstimateTokens
	}
	if maxTokens <= 0 {
		maxTokens = 1
	}

	units := splitUnits(content, maxTokens, estimate)

	var chunks []Chunk
	var cur string

	flush := func() {
		if cur == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Content: cur,
			Tokens:  estimate(cur),
			Hash:    hashContent(cur),
		})
		cur = ""
	}

	for _, unit := range units {
		if cur == "" {
			cur = unit
			continue
		}
		// Size the joined text rather than summing per-unit estimates, so
		// the chunk's own estimate never exceeds the limit.
		joined := cur + "\n" + unit
		if estimate(joined) > maxTokens {
			flush()
			cur = unit
			continue
		}
		cur = joined
	}
	flush()

	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{Index: 0, Content: content, Tokens: estimate(content), Hash: hashContent(content)})
	}
	return chunks
}

// splitUnits breaks content into atomic units: lines, and for lines that
// alone exceed maxTokens, segments cut between adjacent tags.
func splitUnits(content string, maxTokens int, estimate EstimateFunc) []string {
	var units []string
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		if estimate(line) <= maxTokens {
			units = append(units, line)
			continue
		}
		units = append(units, splitBetweenTags(line)...)
	}
	return units
}

// splitBetweenTags cuts a string at every "><" boundary. The cut inserts no
// characters and drops none, so units concatenate back to the input.
func splitBetweenTags(s string) []string {
	var units []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '>' && s[i+1] == '<' {
			units = append(units, s[start:i+1])
			start = i + 1
		}
	}
	units = append(units, s[start:])
	return units
}

func hashContent(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}
