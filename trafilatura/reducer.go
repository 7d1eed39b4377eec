// Package trafilatura provides a structex.Reducer that auto-detects the
// main content of a page, for callers that have no CSS scope to give.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/fwojciec/structex"
)

// Ensure Reducer implements structex.Reducer at compile time.
var _ structex.Reducer = (*Reducer)(nil)

// Reducer wraps go-trafilatura to reduce a page to its main content.
// It ignores the selector argument: scoped reduction belongs to the
// goquery implementation. Use this one when the page layout is unknown.
type Reducer struct{}

// NewReducer creates a new Reducer.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Reduce implements structex.Reducer.
func (r *Reducer) Reduce(rawHTML string, selector string) (string, error) {
	if selector != "" {
		return "", structex.Errorf(structex.EINVALID, "trafilatura reducer does not support selector scoping")
	}
	if strings.TrimSpace(rawHTML) == "" {
		return "", structex.Errorf(structex.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", err
	}
	if result.ContentNode == nil {
		return "", structex.Errorf(structex.ENOTFOUND, "no main content detected")
	}

	content, err := renderNode(result.ContentNode)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
