// Package templates keeps named HTML fragments used to build email safe
// markup. Fragments are text/template files, the only place element content
// goes is the {{ content }} slot, which is filled with existing nodes after
// the fragment is parsed, so content is never re-serialized.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"golang.org/x/net/html"

	"bte/dom"
)

// Extension of fragment files.
const Extension = ".tmpl"

// slotTag is emitted by {{ content }} and replaced when fragment is filled.
const slotTag = "bte-content"

var (
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNoRoot          = errors.New("template has no root element")
)

//go:embed fragments/*.tmpl
var fragments embed.FS

// Registry is immutable set of named templates, safe for concurrent use.
type Registry struct {
	templates map[string]*template.Template
}

// Data is passed to every template execution.
type Data struct {
	Variables map[string]any
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return Load(fragments, "fragments")
})

// Default returns registry built from embedded fragments.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// Load reads every fragment file in dir, template name is file name without
// extension.
func Load(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read templates: %w", err)
	}

	funcs := sprig.HermeticTxtFuncMap()
	funcs["content"] = func() string { return "<" + slotTag + "></" + slotTag + ">" }

	r := &Registry{templates: make(map[string]*template.Template)}
	for _, e := range entries {
		if !e.Type().IsRegular() || path.Ext(e.Name()) != Extension {
			continue
		}
		name := strings.TrimSuffix(e.Name(), Extension)
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("unable to read template %s: %w", name, err)
		}
		t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("unable to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Names returns sorted template names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render executes named template and parses the result. Variables could be
// nil, templates referencing missing variables fail.
func (r *Registry) Render(name string, variables map[string]any) (*Fragment, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if variables == nil {
		variables = map[string]any{}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, Data{Variables: variables}); err != nil {
		return nil, fmt.Errorf("unable to execute template %s: %w", name, err)
	}
	nodes, err := dom.ParseFragment(buf.String())
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	nodes = slices.DeleteFunc(nodes, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.Trim(n.Data, " \t\r\n\f") == ""
	})

	f := &Fragment{Nodes: nodes}
	for _, n := range nodes {
		if f.Root == nil && n.Type == html.ElementNode {
			f.Root = n
		}
		if f.slot == nil {
			f.slot = dom.QueryFirstFunc(n, func(c *html.Node) bool { return c.Data == slotTag })
		}
	}
	if f.Root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRoot, name)
	}
	return f, nil
}

// Fragment is rendered template: detached top level nodes, conditional
// comments included.
type Fragment struct {
	Nodes []*html.Node
	// Root is first top level element, callers put attributes and classes
	// there.
	Root *html.Node
	slot *html.Node
}

// HasSlot reports whether fragment accepts content.
func (f *Fragment) HasSlot() bool {
	return f.slot != nil
}

// Fill moves nodes into the content slot. Without the slot nodes are
// detached and dropped. Fill could be called once.
func (f *Fragment) Fill(content ...*html.Node) {
	if f.slot == nil {
		for _, n := range content {
			dom.Detach(n)
		}
		return
	}
	if f.slot.Parent == nil {
		// slot is top level node
		i := slices.Index(f.Nodes, f.slot)
		detached := make([]*html.Node, 0, len(content))
		for _, n := range content {
			detached = append(detached, dom.Detach(n))
		}
		f.Nodes = slices.Replace(f.Nodes, i, i+1, detached...)
	} else {
		dom.ReplaceWith(f.slot, content...)
	}
	f.slot = nil
}
