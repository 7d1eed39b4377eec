// Package readability provides a structex.Reducer built on go-readability,
// as a lighter alternative to the trafilatura implementation.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/fwojciec/structex"
)

// Ensure Reducer implements structex.Reducer at compile time.
var _ structex.Reducer = (*Reducer)(nil)

// Reducer wraps go-readability to reduce a page to its article content.
// Like the trafilatura implementation it does not support selector scoping.
type Reducer struct{}

// NewReducer creates a new Reducer.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Reduce implements structex.Reducer.
func (r *Reducer) Reduce(rawHTML string, selector string) (string, error) {
	if selector != "" {
		return "", structex.Errorf(structex.EINVALID, "readability reducer does not support selector scoping")
	}
	if strings.TrimSpace(rawHTML) == "" {
		return "", structex.Errorf(structex.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", structex.Errorf(structex.ENOTFOUND, "no article content detected")
	}
	return strings.TrimSpace(article.Content), nil
}
