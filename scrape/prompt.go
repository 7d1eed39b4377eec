package scrape

import (
	"strings"

	"github.com/fwojciec/structex"
)

const systemPromptSingle = `You are a data extraction assistant. You convert webpage content into structured JSON.

Rules:
1. Return a single JSON object matching the exact shape description
2. The shape's values are type hints (e.g. "str", "int", "YYYY-MM-DD"), not literal values
3. If a field cannot be found in the content, use null
4. Respond with valid JSON only, no commentary or markdown fences
5. Never truncate the JSON or elide fields with an ellipsis`

const systemPromptList = `You are a data extraction assistant. You convert webpage content into structured JSON.

Rules:
1. Return a JSON array in which every item matches the exact shape description
2. The shape's values are type hints (e.g. "str", "int", "YYYY-MM-DD"), not literal values
3. Extract every item present in the content; if none are present, return []
4. If a field cannot be found for an item, use null
5. Respond with valid JSON only, no commentary or markdown fences
6. Never truncate the JSON or elide items with an ellipsis`

// BuildPrompt renders a schema and a content excerpt into the system and
// user halves of a completion request. In list mode the backend is asked for
// an array of schema-shaped items; otherwise for a single object. Content is
// formatted as given, never truncated.
func BuildPrompt(schema *structex.Schema, content string, listMode bool) (system, user string) {
	system = systemPromptSingle
	shape := schema.Describe()
	if listMode {
		system = systemPromptList
		// A list-mode schema may describe either the item or the list; the
		// per-item shape is what each array element must match.
		shape = schema.Item().Describe()
	}

	var sb strings.Builder
	sb.WriteString("Shape description:\n")
	sb.WriteString(shape)
	sb.WriteString("\n\nContent:\n")
	sb.WriteString(content)
	return system, sb.String()
}

// promptOverhead estimates the token cost of everything in the request
// except the content, so content budgeting can subtract it.
func promptOverhead(schema *structex.Schema, listMode bool) int {
	system, user := BuildPrompt(schema, "", listMode)
	return structex.EstimateTokens(system) + structex.EstimateTokens(user)
}
