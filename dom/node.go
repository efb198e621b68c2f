package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements with no content, they cannot hold children. Obsolete ones are
// still found in email templates.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"menuitem": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true, "basefont": true, "bgsound": true,
	"frame": true, "isindex": true,
}

// Elements laid out as blocks when no display is given.
var blockElements = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "ol": true, "ul": true, "pre": true, "address": true,
	"blockquote": true, "dl": true, "div": true, "fieldset": true,
	"form": true, "hr": true, "noscript": true, "table": true,
}

// IsVoid reports whether element cannot have children.
func IsVoid(n *html.Node) bool {
	return n.Type == html.ElementNode && voidElements[n.Data]
}

// IsBlock reports whether element is block level by default.
func IsBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[n.Data]
}

// NewElement creates detached element, attrs are key value pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func NewComment(s string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: s}
}

// Retag changes element name in place.
func Retag(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) *html.Node {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

// Append moves nodes to the end of parent children list.
func Append(parent *html.Node, nodes ...*html.Node) {
	for _, n := range nodes {
		parent.AppendChild(Detach(n))
	}
}

// InsertBefore moves nodes in front of ref, preserving their order.
func InsertBefore(ref *html.Node, nodes ...*html.Node) {
	for _, n := range nodes {
		if n == ref {
			continue
		}
		ref.Parent.InsertBefore(Detach(n), ref)
	}
}

// ReplaceWith puts nodes in place of old and detaches old.
func ReplaceWith(old *html.Node, nodes ...*html.Node) {
	if old.Parent == nil {
		return
	}
	InsertBefore(old, nodes...)
	Detach(old)
}

// Children returns snapshot of n children, safe to use while moving them.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildElements returns snapshot of n element children.
func ChildElements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// TakeChildren detaches and returns all children of n.
func TakeChildren(n *html.Node) []*html.Node {
	out := Children(n)
	for _, c := range out {
		n.RemoveChild(c)
	}
	return out
}

// Clone makes deep copy of n, result is detached.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips children of the visited node. Nodes may be moved by fn, next
// sibling is captured before descending.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// HasContent reports whether n holds any elements or non-blank text.
func HasContent(n *html.Node) bool {
	found := false
	Walk(n, func(c *html.Node) bool {
		if found {
			return false
		}
		switch {
		case c == n:
		case c.Type == html.ElementNode:
			found = true
		case c.Type == html.TextNode && !isBlank(c.Data):
			found = true
		}
		return !found
	})
	return found
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}

// FindElement returns first element with given tag under n (n included).
func FindElement(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	Walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c.Type == html.ElementNode && c.DataAtom == a {
			found = c
			return false
		}
		return true
	})
	return found
}

// Head returns <head> element of the document, creating one when missing.
func Head(doc *html.Node) *html.Node {
	if h := FindElement(doc, atom.Head); h != nil {
		return h
	}
	root := FindElement(doc, atom.Html)
	if root == nil {
		return nil
	}
	h := NewElement("head")
	root.InsertBefore(h, root.FirstChild)
	return h
}

// Body returns <body> element of the document.
func Body(doc *html.Node) *html.Node {
	return FindElement(doc, atom.Body)
}
