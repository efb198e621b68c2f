// Package helper implements structural rewrite primitives used by compiler
// passes: replacing an element with a template, wrapping element or its
// content into a template and unwrapping. All primitives move existing
// nodes, element identity survives every rewrite. Class changes go through
// the provenance log.
package helper

import (
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"bte/dom"
	"bte/templates"
)

var ErrDetached = errors.New("element is not attached to the document")

// Options customize rendered template root.
type Options struct {
	Classes    []string
	Attributes map[string]string
	Variables  map[string]any
}

// Helper binds template registry and provenance log of a single document.
type Helper struct {
	reg         *templates.Registry
	prov        *Provenance
	diagnostics bool
	log         *zap.Logger
}

// New returns helper for one document. When diagnostics is set Flush writes
// provenance attributes into the tree.
func New(reg *templates.Registry, diagnostics bool, log *zap.Logger) *Helper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Helper{
		reg:         reg,
		prov:        NewProvenance(),
		diagnostics: diagnostics,
		log:         log.Named("helper"),
	}
}

func (h *Helper) Provenance() *Provenance {
	return h.prov
}

// Replace substitutes el with rendered template. Children of el become
// template content, el attributes are copied to the template root with class
// and style merged. Returns new root.
func (h *Helper) Replace(el *html.Node, tpl string, vars map[string]any) (*html.Node, error) {
	if el.Parent == nil {
		return nil, ErrDetached
	}
	f, err := h.reg.Render(tpl, vars)
	if err != nil {
		return nil, err
	}

	parent, ref := el.Parent, el.NextSibling
	dom.Detach(el)
	f.Fill(dom.TakeChildren(el)...)
	copyAttrs(f.Root, el)
	h.prov.carry(el, f.Root)
	insertAt(parent, ref, f.Nodes)

	h.log.Debug("Replaced", zap.String("tag", el.Data), zap.String("template", tpl))
	return f.Root, nil
}

// WrapContent puts children of el into rendered template which becomes the
// only content of el. Element itself is left untouched. Returns template
// root.
func (h *Helper) WrapContent(el *html.Node, tpl string, opts Options) (*html.Node, error) {
	f, err := h.reg.Render(tpl, opts.Variables)
	if err != nil {
		return nil, err
	}

	f.Fill(dom.TakeChildren(el)...)
	classes, attrs := splitClassAttr(opts)
	setAttrs(f.Root, attrs)
	h.AddClass(f.Root, classes...)
	dom.Append(el, f.Nodes...)

	h.log.Debug("Wrapped content", zap.String("tag", el.Data), zap.String("template", tpl))
	return f.Root, nil
}

// Wrap puts el into rendered template in place of el. With transcludeClasses
// class tokens of el are moved to the template root. Returns template root.
func (h *Helper) Wrap(el *html.Node, tpl string, opts Options, transcludeClasses bool) (*html.Node, error) {
	if el.Parent == nil {
		return nil, ErrDetached
	}
	f, err := h.reg.Render(tpl, opts.Variables)
	if err != nil {
		return nil, err
	}

	classes, attrs := splitClassAttr(opts)
	if transcludeClasses {
		src := dom.Classes(el)
		classes = append(classes, src...)
		h.RemoveClass(el, src...)
	}

	parent, ref := el.Parent, el.NextSibling
	f.Fill(el)
	setAttrs(f.Root, attrs)
	h.AddClass(f.Root, classes...)
	insertAt(parent, ref, f.Nodes)

	h.log.Debug("Wrapped", zap.String("tag", el.Data), zap.String("template", tpl))
	return f.Root, nil
}

// Unwrap replaces el with its children.
func (h *Helper) Unwrap(el *html.Node) {
	if el.Parent == nil {
		return
	}
	dom.ReplaceWith(el, dom.TakeChildren(el)...)
}

// AddClass adds tokens missing from el class list and logs every token.
func (h *Helper) AddClass(el *html.Node, tokens ...string) {
	tokens = slices.DeleteFunc(slices.Clone(tokens), func(s string) bool { return strings.TrimSpace(s) == "" })
	if len(tokens) == 0 {
		return
	}
	current := dom.Classes(el)
	for _, t := range tokens {
		if !slices.Contains(current, t) {
			current = append(current, t)
		}
	}
	dom.SetClasses(el, current)
	h.prov.added(el, tokens...)
}

// RemoveClass removes all occurrences of tokens and logs every token.
func (h *Helper) RemoveClass(el *html.Node, tokens ...string) {
	if len(tokens) == 0 {
		return
	}
	current := slices.DeleteFunc(dom.Classes(el), func(s string) bool { return slices.Contains(tokens, s) })
	dom.SetClasses(el, current)
	h.prov.removed(el, tokens...)
}

// Mark records free form marker for el.
func (h *Helper) Mark(el *html.Node, marker string) {
	h.prov.marked(el, marker)
}

// Clone returns detached deep copy of n with provenance logs copied.
func (h *Helper) Clone(n *html.Node) *html.Node {
	c := dom.Clone(n)
	h.prov.carryTree(n, c)
	return c
}

// Flush writes provenance into the tree when diagnostics are enabled.
func (h *Helper) Flush() {
	if !h.diagnostics {
		return
	}
	h.prov.flush()
}

func insertAt(parent, ref *html.Node, nodes []*html.Node) {
	for _, n := range nodes {
		parent.InsertBefore(dom.Detach(n), ref)
	}
}

// splitClassAttr merges explicit class attribute into class list.
func splitClassAttr(opts Options) ([]string, map[string]string) {
	classes := slices.Clone(opts.Classes)
	attrs := make(map[string]string, len(opts.Attributes))
	for k, v := range opts.Attributes {
		if k == "class" {
			classes = append(classes, strings.Fields(v)...)
			continue
		}
		attrs[k] = v
	}
	return classes, attrs
}

func setAttrs(n *html.Node, attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		dom.SetAttr(n, k, attrs[k])
	}
}

// copyAttrs copies attributes of src to dst: class lists are merged, styles
// concatenated, others overwritten.
func copyAttrs(dst, src *html.Node) {
	for _, a := range src.Attr {
		switch a.Key {
		case "class":
			classes := dom.Classes(dst)
			for _, t := range strings.Fields(a.Val) {
				if !slices.Contains(classes, t) {
					classes = append(classes, t)
				}
			}
			dom.SetClasses(dst, classes)
		case "style":
			dom.MergeStyle(dst, a.Val)
		default:
			dom.SetAttr(dst, a.Key, a.Val)
		}
	}
}
