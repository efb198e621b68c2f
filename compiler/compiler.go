// Package compiler rewrites one parsed document from Bootstrap utility
// classes into table based markup. Passes run in fixed order, each of them
// relies on results of the previous ones.
package compiler

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bte/dom"
	"bte/helper"
)

const (
	DefaultColumns        = 12
	DefaultContainerWidth = 600

	previewLength = 100
	nbsp          = "\u00a0"
)

// DefaultComponents lists classes of design components which are wrapped
// into tables.
var DefaultComponents = []string{"card", "card-body", "btn", "alert"}


// Options of a single compilation.
type Options struct {
	Columns                int
	ContainerWidth         int
	ContainerWidthFallback bool
	Components             []string
}

// Compiler holds state of one document compilation. It is not safe for
// concurrent use.
type Compiler struct {
	doc      *html.Node
	helper   *helper.Helper
	opts     Options
	log      *zap.Logger
	warnings []Warning
	quiet    bool // suppresses warnings
}

// New returns compiler for doc. Zero options are replaced with defaults.
func New(doc *html.Node, h *helper.Helper, opts Options, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Columns <= 0 {
		opts.Columns = DefaultColumns
	}
	if opts.ContainerWidth <= 0 {
		opts.ContainerWidth = DefaultContainerWidth
	}
	if opts.Components == nil {
		opts.Components = DefaultComponents
	}
	return &Compiler{
		doc:    doc,
		helper: h,
		opts:   opts,
		log:    log.Named("compiler"),
	}
}

// Warnings returns recoverable problems found so far.
func (c *Compiler) Warnings() []Warning {
	return slices.Clone(c.warnings)
}

type pass struct {
	name string
	run  func() error
}

// Run executes all passes in order and flushes provenance log.
func (c *Compiler) Run() error {
	passes := []pass{
		{"preview", func() error { c.Preview(); return nil }},
		{"body", c.Body},
		{"padding", c.Padding},
		{"margin", c.Margin},
		{"container", c.Container},
		{"grid", c.Grid},
		{"hr", c.Hr},
		{"align-left", func() error { return c.Align(AlignmentLeft) }},
		{"align-right", func() error { return c.Align(AlignmentRight) }},
		{"align-center", func() error { return c.Align(AlignmentCenter) }},
		{"div", c.Div},
	}
	for _, name := range c.opts.Components {
		passes = append(passes, pass{"component-" + name, func() error { return c.Component(name) }})
	}
	passes = append(passes, pass{"table", func() error { c.Table(); return nil }})

	for _, p := range passes {
		if err := p.run(); err != nil {
			return fmt.Errorf("%s pass: %w", p.name, err)
		}
		c.log.Debug("Pass done", zap.String("pass", p.name))
	}
	c.helper.Flush()
	return nil
}

// Preview turns first <preview> into hidden block and pads its text with
// non-breaking spaces to fixed length, longer text is kept as is.
func (c *Compiler) Preview() {
	el := dom.Query(c.doc, "preview")
	if el == nil {
		return
	}
	if n := utf8.RuneCountInString(dom.Text(el)); n < previewLength {
		dom.Append(el, dom.NewText(strings.Repeat(nbsp, previewLength-n)))
	}
	c.helper.AddClass(el, "preview")
	dom.Retag(el, "div")
}

// Body wraps content of <body> into full width table.
func (c *Compiler) Body() error {
	body := dom.Body(c.doc)
	if body == nil {
		return nil
	}
	_, err := c.helper.WrapContent(body, "body", helper.Options{})
	return err
}

// Container wraps every container into centered table and replaces the
// element itself with inner table limiting content width. Outlook fallback
// markup is rendered for fixed width containers only.
func (c *Compiler) Container() error {
	for _, el := range dom.QueryAll(c.doc, ".container, .container-fluid") {
		fluid := dom.HasClass(el, "container-fluid")

		_, err := c.helper.Wrap(el, "container", helper.Options{
			Variables: map[string]any{
				"containerWidthFallback": !fluid && c.opts.ContainerWidthFallback,
				"width":                  c.opts.ContainerWidth,
			},
		}, true)
		if err != nil {
			return err
		}
		if _, err := c.helper.Replace(el, "container-inner", map[string]any{
			"fluid": fluid,
			"width": c.opts.ContainerWidth,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Hr replaces horizontal rules with table based separator.
func (c *Compiler) Hr() error {
	for _, el := range dom.QueryAll(c.doc, "hr") {
		if _, err := c.helper.Replace(el, "hr", nil); err != nil {
			return err
		}
	}
	return nil
}

// Align handles floats and horizontally centered elements.
func (c *Compiler) Align(a Alignment) error {
	for _, el := range dom.QueryAll(c.doc, "."+a.class()) {
		marker := "align-" + a.String()
		switch {
		case a == AlignmentCenter:
			wrapper, err := c.helper.Wrap(el, "center", helper.Options{}, true)
			if err != nil {
				return err
			}
			c.helper.Mark(wrapper, marker)
		case el.DataAtom == atom.Table:
			dom.SetAttr(el, "align", a.String())
			c.helper.Mark(el, marker)
		default:
			wrapper, err := c.helper.Wrap(el, "table", helper.Options{
				Attributes: map[string]string{"align": a.String()},
			}, false)
			if err != nil {
				return err
			}
			c.helper.Mark(wrapper, marker)
		}
	}
	return nil
}

// Div replaces remaining divs with single cell tables, divs without class
// and style are unwrapped.
func (c *Compiler) Div() error {
	for _, el := range dom.QueryAll(c.doc, "div") {
		if len(dom.Classes(el)) == 0 && strings.TrimSpace(dom.Attr(el, "style")) == "" {
			c.helper.Unwrap(el)
			continue
		}
		table, err := c.helper.Replace(el, "table", nil)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(dom.Classes(table), func(s string) bool { return strings.HasPrefix(s, "w-") }) {
			c.helper.AddClass(table, "w-100")
		}
	}
	return nil
}

// Component wraps elements with design class into table, unless they are
// tables already.
func (c *Compiler) Component(class string) error {
	found := dom.QueryFunc(c.doc, func(n *html.Node) bool {
		return n.DataAtom != atom.Table && dom.HasClass(n, class)
	})
	for _, el := range found {
		if _, err := c.helper.Wrap(el, "table", helper.Options{}, true); err != nil {
			return err
		}
	}
	return nil
}

// Table resets spacing attributes of every table.
func (c *Compiler) Table() {
	for _, el := range dom.QueryAll(c.doc, "table") {
		dom.SetAttr(el, "border", "0")
		dom.SetAttr(el, "cellpadding", "0")
		dom.SetAttr(el, "cellspacing", "0")
	}
}
