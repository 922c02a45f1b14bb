// Package markup binds the schedule and speaker pages to golang.org/x/net/html
// and provides the small set of child/sibling/attribute helpers the extractor
// and linker navigate with.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Parse decodes body using the charset declared in the document (falling back
// to UTF-8) and returns the document root.
func Parse(body []byte) (*html.Node, error) {
	r, err := charset.NewReader(bytes.NewReader(body), "text/html")
	if err != nil {
		return nil, fmt.Errorf("markup: charset: %w", err)
	}
	return ParseReader(r)
}

// ParseReader parses already-decoded UTF-8 markup.
func ParseReader(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("markup: parse: %w", err)
	}
	return doc, nil
}

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Attr returns the value of attribute key, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether class appears in n's class list.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Children returns the element children of n in document order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first element child of n with the given tag.
func FirstChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tag) {
			return c
		}
	}
	return nil
}

// NextElement returns the next element sibling of n.
func NextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// NextSibling returns the next element sibling of n with the given tag,
// skipping siblings with other tags.
func NextSibling(n *html.Node, tag string) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if IsElement(s, tag) {
			return s
		}
	}
	return nil
}

// FindAll returns every element under root (inclusive) matching match, in
// document order.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// RawText concatenates every text node under n.
func RawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Text returns n's text content with runs of whitespace collapsed to a single
// space and the ends trimmed.
func Text(n *html.Node) string {
	return strings.Join(strings.Fields(RawText(n)), " ")
}
