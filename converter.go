package structex

// Converter converts HTML to Markdown. Used as an optional thinning step
// between reduction and prompting: markdown usually costs fewer tokens than
// the equivalent markup while keeping the extractable structure.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be reduced HTML (e.g., from a Reducer).
	Convert(html string) (string, error)
}
