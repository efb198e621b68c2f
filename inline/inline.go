// Package inline applies stylesheet rules to elements as style attributes
// and mirrors some of the properties into legacy presentational attributes
// still honored by email clients.
package inline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bte/css"
	"bte/dom"
)

// rule is a single selector of stylesheet rule group.
type rule struct {
	sel   cascadia.Sel
	spec  cascadia.Specificity
	order int
	decls []css.Declaration
}

// Inliner keeps compiled rules of one stylesheet. It is never modified
// after creation and could be shared by concurrent compilations.
type Inliner struct {
	rules []rule
	log   *zap.Logger
}

// New compiles top level rules of sheet. At-rules and selectors which cannot
// be expressed inline are skipped, sheet is expected to be split already.
// Selectors cascadia does not understand are logged and ignored.
func New(sheet *css.Stylesheet, log *zap.Logger) *Inliner {
	if log == nil {
		log = zap.NewNop()
	}
	in := &Inliner{log: log.Named("inline")}

	for _, r := range sheet.Rules() {
		decls := slices.DeleteFunc(slices.Clone(r.Declarations), func(d css.Declaration) bool {
			return strings.HasPrefix(d.Property, "--")
		})
		if len(decls) == 0 {
			continue
		}
		for _, text := range r.Selectors() {
			if !css.Inlineable(text) {
				continue
			}
			group, err := cascadia.ParseGroup(text)
			if err != nil {
				in.log.Warn("Unable to compile selector, rule ignored", zap.String("selector", text), zap.Error(err))
				continue
			}
			for _, sel := range group {
				in.rules = append(in.rules, rule{
					sel:   sel,
					spec:  sel.Specificity(),
					order: len(in.rules),
					decls: decls,
				})
			}
		}
	}
	in.log.Debug("Inliner ready", zap.Int("selectors", len(in.rules)))
	return in
}

// Apply writes resulting styles of every element in document body.
func (in *Inliner) Apply(doc *html.Node) {
	root := dom.Body(doc)
	if root == nil {
		root = doc
	}

	var styled int
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.DataAtom == atom.Style || n.DataAtom == atom.Script {
			return false
		}
		if in.apply(n) {
			styled++
		}
		return true
	})
	in.log.Debug("Styles inlined", zap.Int("elements", styled))
}

// apply computes style of a single element. Matching rules are applied in
// order of specificity, then source order; existing inline style comes last.
// Important declarations could only be overridden by important ones.
func (in *Inliner) apply(n *html.Node) bool {
	var matched []rule
	for _, r := range in.rules {
		if r.sel.Match(n) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return false
	}
	slices.SortStableFunc(matched, func(a, b rule) int {
		switch {
		case a.spec.Less(b.spec):
			return -1
		case b.spec.Less(a.spec):
			return 1
		}
		return cmp.Compare(a.order, b.order)
	})

	var res cascade
	for _, r := range matched {
		for _, d := range r.decls {
			res.set(d)
		}
	}
	for _, d := range css.ParseDeclarations(dom.Attr(n, "style")) {
		res.set(d)
	}

	dom.SetAttr(n, "style", res.String())
	applyAttributes(n, res.decls)
	return true
}

// cascade accumulates declarations keeping position of first appearance of
// every property.
type cascade struct {
	decls []css.Declaration
}

func (c *cascade) set(d css.Declaration) {
	i := slices.IndexFunc(c.decls, func(e css.Declaration) bool { return e.Property == d.Property })
	switch {
	case i < 0:
		c.decls = append(c.decls, d)
	case c.decls[i].Important && !d.Important:
	default:
		c.decls[i] = d
	}
}

func (c *cascade) String() string {
	out := make([]css.Declaration, len(c.decls))
	for i, d := range c.decls {
		d.Important = false
		out[i] = d
	}
	return css.FormatDeclarations(out)
}
