// Package dom is a thin layer over golang.org/x/net/html trees: parsing with
// charset detection, rendering of email documents, selector queries and
// helpers for node, attribute and class manipulation.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// Doctype is written at the top of every rendered document.
const Doctype = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">`

// Outlook conditional comment bodies.
const (
	ExcludeMsoStart = "[if !mso]><!"
	ExcludeMsoEnd   = "<![endif]"
)

// Parse reads complete HTML document. Input is converted to UTF-8 using
// encoding detection from contentType, byte order marks and meta tags,
// when enc is not nil it is used unconditionally instead.
func Parse(r io.Reader, contentType string, enc encoding.Encoding) (*html.Node, error) {
	var (
		in  io.Reader
		err error
	)
	if enc != nil {
		in = enc.NewDecoder().Reader(r)
	} else if in, err = charset.NewReader(r, contentType); err != nil {
		return nil, fmt.Errorf("unable to detect input encoding: %w", err)
	}
	doc, err := html.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}
	return doc, nil
}

// ParseString is Parse for UTF-8 string input.
func ParseString(s string) (*html.Node, error) {
	return Parse(strings.NewReader(s), "text/html; charset=utf-8", nil)
}

// ParseFragment parses markup in the context of <body> element.
func ParseFragment(s string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to parse html fragment: %w", err)
	}
	return nodes, nil
}

// IsConditional reports whether n is Outlook conditional comment (opening or
// closing part).
func IsConditional(n *html.Node) bool {
	if n == nil || n.Type != html.CommentNode {
		return false
	}
	return strings.HasPrefix(n.Data, "[if") || strings.HasPrefix(n.Data, "<![endif]")
}

// Render writes document with DOCTYPE, any doctype present in the tree is
// replaced. Conditional comments are written verbatim, the renderer would
// otherwise escape entities inside them.
func Render(w io.Writer, doc *html.Node) error {
	if _, err := io.WriteString(w, Doctype+"\n"); err != nil {
		return err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			continue
		}
		if err := renderNode(w, c); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(w io.Writer, n *html.Node) error {
	restore := rawConditionals(n)
	defer restore()
	return html.Render(w, n)
}

// rawConditionals temporarily turns conditional comments under n into raw
// nodes and returns function to undo that.
func rawConditionals(n *html.Node) func() {
	type saved struct {
		node *html.Node
		data string
	}
	var changed []saved
	Walk(n, func(c *html.Node) bool {
		if IsConditional(c) {
			changed = append(changed, saved{c, c.Data})
			c.Type, c.Data = html.RawNode, "<!--"+c.Data+"-->"
		}
		return true
	})
	return func() {
		for _, s := range changed {
			s.node.Type, s.node.Data = html.CommentNode, s.data
		}
	}
}

// RenderString renders document into string.
func RenderString(doc *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OuterHTML returns markup of n including n itself.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := renderNode(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns markup of n children.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := renderNode(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// Text returns concatenated text content of n.
func Text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
