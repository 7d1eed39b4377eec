// Package goquery provides a CSS-selector based implementation of
// structex.Reducer for stripping non-content markup from HTML pages.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fwojciec/structex"
)

// Ensure Reducer implements structex.Reducer at compile time.
var _ structex.Reducer = (*Reducer)(nil)

// noiseSelector matches elements with no extractable semantic value.
const noiseSelector = "script, style, noscript, template, iframe, svg, link, meta, [hidden]"

// keepAttrs are the only attributes preserved during reduction. Everything
// else (classes, inline styles, event handlers, data-* payloads) exists for
// presentation or behavior and only inflates the token count.
var keepAttrs = map[string]bool{
	"href":    true,
	"src":     true,
	"alt":     true,
	"colspan": true,
	"rowspan": true,
}

// Reducer strips boilerplate markup and optionally narrows to a CSS-scoped
// sub-tree.
type Reducer struct {
	// KeepAttrs optionally extends the preserved attribute set.
	KeepAttrs []string
}

// NewReducer creates a new Reducer.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Reduce implements structex.Reducer.
func (r *Reducer) Reduce(rawHTML string, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", structex.Errorf(structex.EINVALID, "failed to parse HTML: %v", err)
	}

	scope := doc.Selection
	if selector != "" {
		scope = doc.Find(selector)
		if scope.Length() == 0 {
			return "", structex.Errorf(structex.ENOTFOUND, "selector %q matched no elements", selector)
		}
	}

	scope.Find(noiseSelector).Remove()
	scope = scope.Not(noiseSelector)
	if scope.Length() == 0 {
		return "", structex.Errorf(structex.ENOTFOUND, "selector %q matched only non-content elements", selector)
	}

	keep := r.attrSet()
	var sb strings.Builder
	scope.Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			cleanNode(node, keep)
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			if selector == "" && node.Type == html.DocumentNode {
				// Unscoped reduction renders the body contents only, so the
				// html/head wrapper doesn't cost tokens.
				renderBody(&sb, node)
				continue
			}
			_ = html.Render(&sb, node)
		}
	})

	return strings.TrimSpace(sb.String()), nil
}

func (r *Reducer) attrSet() map[string]bool {
	if len(r.KeepAttrs) == 0 {
		return keepAttrs
	}
	set := make(map[string]bool, len(keepAttrs)+len(r.KeepAttrs))
	for k := range keepAttrs {
		set[k] = true
	}
	for _, k := range r.KeepAttrs {
		set[strings.ToLower(k)] = true
	}
	return set
}

// cleanNode removes comment nodes and presentation attributes in place.
func cleanNode(n *html.Node, keep map[string]bool) {
	if n.Type == html.ElementNode && len(n.Attr) > 0 {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if keep[strings.ToLower(a.Key)] {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			cleanNode(c, keep)
		}
		c = next
	}
}

// renderBody renders the children of the document's body element.
func renderBody(sb *strings.Builder, doc *html.Node) {
	body := findElement(doc, "body")
	if body == nil {
		_ = html.Render(sb, doc)
		return
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(sb, c)
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
