package dom

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is a read-only view of one element node.
type Element struct {
	sel *goquery.Selection
	doc *Document
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.sel.Get(0)
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return strings.ToLower(goquery.NodeName(e.sel))
}

// Attr returns the attribute value and whether it is present at all.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// HasAttr reports presence, even with an empty value.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.sel.Attr(name)
	return ok
}

// AttrSet reports whether the attribute is present with a non-blank value.
func (e *Element) AttrSet(name string) bool {
	v, ok := e.sel.Attr(name)
	return ok && strings.TrimSpace(v) != ""
}

// Role returns the lower-case role attribute, "" when absent.
func (e *Element) Role() string {
	v, _ := e.sel.Attr("role")
	return strings.ToLower(strings.TrimSpace(v))
}

// HasRole reports whether role is one of the element's space-separated roles.
func (e *Element) HasRole(role string) bool {
	for _, r := range strings.Fields(e.Role()) {
		if r == role {
			return true
		}
	}
	return false
}

// Text returns the trimmed text content of the subtree.
func (e *Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// WordCount counts whitespace-separated words in Text.
func (e *Element) WordCount() int {
	return len(strings.Fields(e.sel.Text()))
}

// ChildCount counts direct element children.
func (e *Element) ChildCount() int {
	return e.sel.Children().Length()
}

// Children returns direct element children.
func (e *Element) Children() []*Element {
	return e.doc.wrap(e.sel.Children())
}

// Parent returns the parent element, or nil at the document root.
func (e *Element) Parent() *Element {
	p := e.sel.Parent()
	if p.Length() == 0 || p.Get(0).Type != html.ElementNode {
		return nil
	}
	return e.doc.element(p)
}

// Find returns descendants matching selector in document order.
func (e *Element) Find(selector string) []*Element {
	return e.doc.wrap(e.sel.Find(selector))
}

// Has reports whether any descendant matches selector.
func (e *Element) Has(selector string) bool {
	return e.sel.Find(selector).Length() > 0
}

// Is reports whether the element itself matches selector.
func (e *Element) Is(selector string) bool {
	return e.sel.Is(selector)
}

// Ancestor returns the nearest proper ancestor matching keep, or nil.
func (e *Element) Ancestor(keep func(*Element) bool) *Element {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if keep(p) {
			return p
		}
	}
	return nil
}

// Same reports whether both values wrap the same node.
func (e *Element) Same(o *Element) bool {
	return o != nil && e.Node() == o.Node()
}

// Line returns the 1-based source line of the start tag, 0 when unknown.
func (e *Element) Line() int {
	if e.doc.lines == nil {
		return 0
	}
	return e.doc.lines[e.Node()]
}

// Snippet returns the element's outer HTML, truncated for reports.
func (e *Element) Snippet() string {
	s, err := goquery.OuterHtml(e.sel)
	if err != nil {
		return "<" + e.Tag() + ">"
	}
	if utf8.RuneCountInString(s) <= e.doc.snippetLen {
		return s
	}
	r := []rune(s)
	return string(r[:e.doc.snippetLen]) + "..."
}
