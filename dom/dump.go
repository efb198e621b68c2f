package dom

import (
	"golang.org/x/net/html"

	"bte/utils/debug"
)

// Dump returns indented human readable representation of the tree, used in
// debug reports.
func Dump(n *html.Node) string {
	tw := debug.NewTreeWriter()
	dump(tw, n, 0)
	return tw.String()
}

func dump(tw *debug.TreeWriter, n *html.Node, depth int) {
	switch n.Type {
	case html.DocumentNode:
		tw.Line(depth, "#document")
	case html.DoctypeNode:
		tw.Line(depth, "#doctype %s", n.Data)
	case html.ElementNode:
		attrs := make([]string, 0, 2*len(n.Attr))
		for _, a := range n.Attr {
			attrs = append(attrs, a.Key, a.Val)
		}
		tw.Element(depth, n.Data, attrs...)
	case html.TextNode:
		if isBlank(n.Data) {
			return
		}
		tw.TextBlock(depth, "#text", n.Data)
	case html.CommentNode:
		if IsConditional(n) {
			tw.TextBlock(depth, "#conditional", n.Data)
		} else {
			tw.TextBlock(depth, "#comment", n.Data)
		}
	default:
		tw.TextBlock(depth, "#raw", n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dump(tw, c, depth+1)
	}
}
