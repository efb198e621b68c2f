package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// GetAttr returns attribute value and whether it is present.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns attribute value or empty string.
func Attr(n *html.Node, key string) string {
	v, _ := GetAttr(n, key)
	return v
}

// SetAttr sets attribute keeping its position when it already exists.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

// Classes returns class tokens of n in order.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

func HasClass(n *html.Node, token string) bool {
	return n.Type == html.ElementNode && slices.Contains(Classes(n), token)
}

// SetClasses replaces class list, empty list removes the attribute.
func SetClasses(n *html.Node, tokens []string) {
	if len(tokens) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(tokens, " "))
}

// MergeStyle appends declarations to existing style attribute.
func MergeStyle(n *html.Node, style string) {
	style = strings.TrimSpace(style)
	if style == "" {
		return
	}
	old := strings.TrimSpace(Attr(n, "style"))
	if old == "" {
		SetAttr(n, "style", style)
		return
	}
	if !strings.HasSuffix(old, ";") {
		old += ";"
	}
	SetAttr(n, "style", old+" "+style)
}
