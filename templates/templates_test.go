package templates

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/net/html"

	"bte/dom"
)

func mustDefaultRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	return r
}

func TestDefault_Names(t *testing.T) {
	r := mustDefaultRegistry(t)
	for _, name := range []string{"body", "center", "container", "container-inner", "hr", "spacing", "table"} {
		if !r.Has(name) {
			t.Errorf("default registry has no %q template, names: %v", name, r.Names())
		}
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := mustDefaultRegistry(t)
	_, err := r.Render("row", nil)
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("Render(row) error = %v, want ErrUnknownTemplate", err)
	}
}

func TestRender_MissingVariable(t *testing.T) {
	r := mustDefaultRegistry(t)
	if _, err := r.Render("container", nil); err == nil {
		t.Error("Render(container) without variables should fail")
	}
}

func TestRender_Fill(t *testing.T) {
	r := mustDefaultRegistry(t)
	f, err := r.Render("table", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !f.HasSlot() {
		t.Fatal("table template must have content slot")
	}

	p := dom.NewElement("p")
	p.AppendChild(dom.NewText("hello"))
	f.Fill(p)

	if len(f.Nodes) != 1 || f.Root != f.Nodes[0] {
		t.Fatalf("unexpected fragment nodes: %d", len(f.Nodes))
	}
	want := `<table role="presentation"><tbody><tr><td><p>hello</p></td></tr></tbody></table>`
	if got := dom.OuterHTML(f.Root); got != want {
		t.Errorf("filled fragment =\n%s\nwant\n%s", got, want)
	}
	if p.Parent == nil || p.Parent.Data != "td" {
		t.Error("content node must be moved, not copied")
	}
}

func TestRender_ContainerFallback(t *testing.T) {
	r := mustDefaultRegistry(t)

	tests := []struct {
		name      string
		fallback  bool
		wantNodes int
	}{
		{"with fallback", true, 3},
		{"without fallback", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := r.Render("container", map[string]any{"containerWidthFallback": tt.fallback, "width": 600})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(f.Nodes) != tt.wantNodes {
				t.Fatalf("got %d top level nodes, want %d", len(f.Nodes), tt.wantNodes)
			}
			if f.Root.Data != "table" {
				t.Errorf("root = %s, want table", f.Root.Data)
			}
			if tt.fallback {
				if !dom.IsConditional(f.Nodes[0]) || !dom.IsConditional(f.Nodes[2]) {
					t.Error("fallback table must be bracketed by conditional comments")
				}
				if !strings.Contains(f.Nodes[0].Data, `width="600"`) {
					t.Errorf("fallback width not rendered: %s", f.Nodes[0].Data)
				}
			}
		})
	}
}

func TestRender_ContainerInnerWidth(t *testing.T) {
	r := mustDefaultRegistry(t)
	f, err := r.Render("container-inner", map[string]any{"fluid": false, "width": 640})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := dom.Attr(f.Root, "style"); !strings.Contains(got, "max-width: 640px") {
		t.Errorf("style = %q, want max-width", got)
	}
}

func TestRender_NoSlot(t *testing.T) {
	r := mustDefaultRegistry(t)
	f, err := r.Render("hr", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if f.HasSlot() {
		t.Fatal("hr template has no content slot")
	}

	parent := dom.NewElement("div")
	child := dom.NewText("dropped")
	parent.AppendChild(child)
	f.Fill(child)
	if child.Parent != nil || parent.FirstChild != nil {
		t.Error("content must be detached when there is no slot")
	}
}

func TestLoad_Custom(t *testing.T) {
	fsys := fstest.MapFS{
		"tpl/box.tmpl":   {Data: []byte(`<div class="box {{ .Variables.kind | lower }}">{{ content }}</div>`)},
		"tpl/readme.txt": {Data: []byte("not a template")},
		"tpl/bare.tmpl":  {Data: []byte(`just text`)},
	}
	r, err := Load(fsys, "tpl")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := r.Names(); len(got) != 2 || got[0] != "bare" || got[1] != "box" {
		t.Errorf("Names() = %v", got)
	}

	f, err := r.Render("box", map[string]any{"kind": "WIDE"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := dom.Attr(f.Root, "class"); got != "box wide" {
		t.Errorf("class = %q", got)
	}

	if _, err := r.Render("bare", nil); !errors.Is(err, ErrNoRoot) {
		t.Errorf("Render(bare) error = %v, want ErrNoRoot", err)
	}
}

func TestLoad_BadTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"tpl/bad.tmpl": {Data: []byte(`<div>{{ .Variables.x </div>`)},
	}
	if _, err := Load(fsys, "tpl"); err == nil {
		t.Error("Load() should fail on malformed template")
	}
}

func TestRender_Concurrent(t *testing.T) {
	r := mustDefaultRegistry(t)
	done := make(chan *html.Node)
	for range 8 {
		go func() {
			f, err := r.Render("center", nil)
			if err != nil {
				t.Error(err)
				done <- nil
				return
			}
			done <- f.Root
		}()
	}
	seen := map[*html.Node]bool{}
	for range 8 {
		if n := <-done; n != nil {
			if seen[n] {
				t.Error("fragments must not share nodes")
			}
			seen[n] = true
		}
	}
}
