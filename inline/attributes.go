package inline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bte/css"
	"bte/dom"
)

// properties mirrored into attributes of table elements
var tableAttributes = [][2]string{
	{"background-color", "bgcolor"},
	{"background-image", "background"},
	{"text-align", "align"},
	{"vertical-align", "valign"},
}

func isTableElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Table, atom.Th, atom.Tr, atom.Td, atom.Caption, atom.Colgroup, atom.Col, atom.Thead, atom.Tbody, atom.Tfoot:
		return true
	}
	return false
}

func hasDimensions(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Table, atom.Td, atom.Th, atom.Img:
		return true
	}
	return false
}

// applyAttributes copies resulting styles into presentational attributes.
// Attributes already present are never overwritten.
func applyAttributes(n *html.Node, decls []css.Declaration) {
	if isTableElement(n) {
		for _, pair := range tableAttributes {
			prop, attr := pair[0], pair[1]
			v, ok := css.Lookup(decls, prop)
			if !ok {
				continue
			}
			val := v.Raw
			if prop == "background-image" {
				if val = urlTarget(val); val == "" {
					continue
				}
			}
			setMissing(n, attr, val)
		}
	}

	if hasDimensions(n) {
		for _, prop := range []string{"width", "height"} {
			v, ok := css.Lookup(decls, prop)
			if !ok {
				continue
			}
			if val, ok := v.Attribute(); ok {
				setMissing(n, prop, val)
			}
		}
	}
}

func setMissing(n *html.Node, key, val string) {
	if _, ok := dom.GetAttr(n, key); !ok {
		dom.SetAttr(n, key, val)
	}
}

// urlTarget extracts address from url() function, empty for anything else.
func urlTarget(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), "url(") || !strings.HasSuffix(s, ")") {
		return ""
	}
	return strings.Trim(strings.TrimSpace(s[4:len(s)-1]), `"'`)
}
