package compiler

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"bte/css"
	"bte/dom"
	"bte/helper"
)

// Display contexts of elements, resolved from style, classes and tag.
const (
	displayBlock       = "block"
	displayInline      = "inline"
	displayInlineBlock = "inline-block"
)

// Padding moves padding classes into spacer table placed inside the
// element, void elements get spacer around them instead. Elements are
// selected one by one as every rewrite changes the tree.
func (c *Compiler) Padding() error {
	for {
		el, utils := c.nextSpacing(KindPadding, nil)
		if el == nil {
			return nil
		}

		classes := neutral(utils)
		if display(el) == displayBlock {
			classes = append(classes, "w-100")
		}
		c.helper.RemoveClass(el, tokens(utils)...)

		opts := helper.Options{Classes: classes}
		var (
			wrapper *html.Node
			err     error
		)
		if dom.IsVoid(el) {
			wrapper, err = c.helper.Wrap(el, "spacing", opts, false)
		} else {
			wrapper, err = c.helper.WrapContent(el, "spacing", opts)
		}
		if err != nil {
			return err
		}
		c.helper.Mark(wrapper, KindPadding.String())
	}
}

// Margin puts element into full width spacer table carrying margin classes.
// Inline elements cannot have margins expressed by tables, they are left
// alone with a warning.
func (c *Compiler) Margin() error {
	skip := make(map[*html.Node]bool)
	for {
		el, utils := c.nextSpacing(KindMargin, skip)
		if el == nil {
			return nil
		}

		if display(el) == displayInline {
			skip[el] = true
			c.warn(WarningKindInlineMargin, el, strings.Join(tokens(utils), " "), "inline elements do not support margins, ignored")
			continue
		}

		c.helper.RemoveClass(el, tokens(utils)...)
		wrapper, err := c.helper.Wrap(el, "spacing", helper.Options{
			Classes: append(neutral(utils), "w-100"),
		}, false)
		if err != nil {
			return err
		}
		c.helper.Mark(wrapper, KindMargin.String())
	}
}

// nextSpacing returns first element in document order carrying spacing
// classes of kind.
func (c *Compiler) nextSpacing(kind Kind, skip map[*html.Node]bool) (*html.Node, []Utility) {
	var utils []Utility
	el := dom.QueryFirstFunc(c.doc, func(n *html.Node) bool {
		if skip[n] {
			return false
		}
		utils = spacingUtilities(dom.Classes(n), kind)
		return len(utils) > 0
	})
	if el != nil {
		c.log.Debug("Spacing", zap.Stringer("kind", kind), zap.String("tag", el.Data), zap.Strings("tokens", tokens(utils)))
	}
	return el, utils
}

// display resolves element display context: explicit inline style wins,
// then display utility classes, then default for the tag.
func display(el *html.Node) string {
	if style := dom.Attr(el, "style"); style != "" {
		if v, ok := css.Lookup(css.ParseDeclarations(style), "display"); ok && v.Keyword != "" {
			return v.Keyword
		}
	}
	for _, class := range dom.Classes(el) {
		switch class {
		case "d-block", "btn-block":
			return displayBlock
		case "d-inline":
			return displayInline
		case "d-inline-block":
			return displayInlineBlock
		}
	}
	if dom.IsBlock(el) {
		return displayBlock
	}
	return displayInline
}
