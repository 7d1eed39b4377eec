package structex

// Reducer strips non-content markup from a page before token estimation, to
// minimize cost and fit within model limits.
type Reducer interface {
	// Reduce removes elements with no extractable semantic value (scripts,
	// styles, comments, hidden elements, presentation attributes) and, when
	// selector is non-empty, discards everything outside the matching
	// sub-tree(s). A selector that matches nothing is ENOTFOUND, never an
	// empty result. Reduction is deterministic for identical input.
	Reduce(html string, selector string) (string, error)
}
