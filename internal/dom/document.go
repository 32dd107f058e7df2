// Package dom adapts goquery to the read-only tree view the markup checks use:
// tag names, attributes, trimmed text, structural queries and best-effort
// source line numbers.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultSnippetLen is the number of runes kept from an element's outer HTML.
const DefaultSnippetLen = 300

// Options tune how a document is parsed.
type Options struct {
	// SnippetLen caps Element.Snippet; <= 0 means DefaultSnippetLen.
	SnippetLen int
	// SkipLines disables the tokenizer pass that maps elements to source lines.
	SkipLines bool
}

// Document is a parsed HTML document. It is never mutated after Parse returns,
// so it can be shared by concurrent readers.
type Document struct {
	doc        *goquery.Document
	lines      map[*html.Node]int
	snippetLen int
}

// Parse reads a full HTML document from r.
func Parse(r io.Reader, opts Options) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dom: read document: %w", err)
	}
	return ParseBytes(raw, opts)
}

// ParseBytes parses raw HTML bytes.
func ParseBytes(raw []byte, opts Options) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	d := &Document{doc: gq, snippetLen: opts.SnippetLen}
	if d.snippetLen <= 0 {
		d.snippetLen = DefaultSnippetLen
	}
	if !opts.SkipLines {
		d.lines = mapLines(gq.Nodes, raw)
	}
	return d, nil
}

// ParseString is ParseBytes for string input.
func ParseString(s string) (*Document, error) {
	return ParseBytes([]byte(s), Options{})
}

// Selection exposes the underlying goquery document.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Find returns every element matching a CSS selector in document order.
func (d *Document) Find(selector string) []*Element {
	return d.wrap(d.doc.Find(selector))
}

// FindFunc returns every element satisfying keep, in document order.
func (d *Document) FindFunc(keep func(*Element) bool) []*Element {
	var out []*Element
	d.doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if e := d.element(s); keep(e) {
			out = append(out, e)
		}
	})
	return out
}

// Has reports whether any element matches selector.
func (d *Document) Has(selector string) bool {
	return d.doc.Find(selector).Length() > 0
}

// HasRole reports whether any element carries role among its role tokens.
func (d *Document) HasRole(role string) bool {
	found := false
	d.doc.Find("[role]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = d.element(s).HasRole(role)
		return !found
	})
	return found
}

func (d *Document) wrap(s *goquery.Selection) []*Element {
	out := make([]*Element, 0, s.Length())
	s.Each(func(_ int, one *goquery.Selection) {
		out = append(out, d.element(one))
	})
	return out
}

func (d *Document) element(s *goquery.Selection) *Element {
	return &Element{sel: s, doc: d}
}

// mapLines pairs each element with the line of its start tag. The tokenizer
// sees tags in source order; the k-th element named T in tree pre-order gets
// the k-th start tag named T. Tags whose counts differ (implied <tbody>,
// foster-parented content, ...) are left unmapped.
func mapLines(roots []*html.Node, raw []byte) map[*html.Node]int {
	tokLines := make(map[string][]int)
	z := html.NewTokenizer(bytes.NewReader(raw))
	line := 1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := line
		line += bytes.Count(z.Raw(), []byte{'\n'})
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			key := strings.ToLower(string(name))
			tokLines[key] = append(tokLines[key], start)
		}
	}

	treeNodes := make(map[string][]*html.Node)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			key := strings.ToLower(n.Data)
			treeNodes[key] = append(treeNodes[key], n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}

	out := make(map[*html.Node]int)
	for tag, nodes := range treeNodes {
		ls := tokLines[tag]
		if len(ls) != len(nodes) {
			continue
		}
		for i, n := range nodes {
			out[n] = ls[i]
		}
	}
	return out
}
