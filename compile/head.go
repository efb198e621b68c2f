package compile

import (
	"strings"

	"golang.org/x/net/html"

	"bte/dom"
)

// injectHead appends content type and viewport declarations and style
// elements to document head. Charset declarations of the source are
// dropped, output is always UTF-8.
func injectHead(doc *html.Node, headStyle, extracted string) {
	head := dom.Head(doc)
	if head == nil {
		return
	}

	for _, meta := range dom.QueryAll(head, "meta") {
		if _, ok := dom.GetAttr(meta, "charset"); ok || strings.EqualFold(dom.Attr(meta, "http-equiv"), "content-type") {
			dom.Detach(meta)
		}
	}

	dom.Append(head,
		dom.NewElement("meta", "http-equiv", "Content-Type", "content", "text/html; charset=utf-8"),
		dom.NewElement("meta", "name", "viewport", "content", "width=device-width, initial-scale=1"),
		styleElement(headStyle),
	)
	if extracted != "" {
		dom.Append(head, styleElement(extracted))
	}
}

func styleElement(text string) *html.Node {
	style := dom.NewElement("style", "type", "text/css")
	if text != "" {
		dom.Append(style, dom.NewText(text))
	}
	return style
}
