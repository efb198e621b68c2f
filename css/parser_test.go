package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"bte/css"
)

func TestParser_ElementSelector(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`p { text-indent: 1em; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector != "p" {
		t.Errorf("expected selector 'p', got '%s'", rules[0].Selector)
	}

	val, ok := css.Lookup(rules[0].Declarations, "text-indent")
	if !ok {
		t.Fatal("expected text-indent property")
	}
	if val.Value != 1 || val.Unit != "em" {
		t.Errorf("expected 1em, got %v%s", val.Value, val.Unit)
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`h2, h3 , .a p { font-size: 120%; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule for grouped selector, got %d", len(rules))
	}

	got := rules[0].Selectors()
	expected := []string{"h2", "h3", ".a p"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("selector %d: expected '%s', got '%s'", i, expected[i], got[i])
		}
	}
}

func TestParser_Important(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`.btn { color: red !important; margin: 0 auto }`))

	decls := sheet.Rules()[0].Declarations
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if !decls[0].Important || decls[0].Value.Keyword != "red" {
		t.Errorf("expected important red, got %+v", decls[0])
	}
	if decls[1].Important || decls[1].Value.Raw != "0 auto" {
		t.Errorf("expected plain '0 auto', got %+v", decls[1])
	}
	if s := decls[0].String(); s != "color: red !important" {
		t.Errorf("unexpected declaration text %q", s)
	}
}

func TestParser_RootVariables(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	sheet := p.Parse([]byte(`:root { --grid-columns: 16; --container-max-width: 640px; color: black }
.a { --ignored: 1; }`))

	if n, ok := sheet.IntVariable("--grid-columns"); !ok || n != 16 {
		t.Errorf("expected --grid-columns 16, got %d (%v)", n, ok)
	}
	if n, ok := sheet.IntVariable("--container-max-width"); !ok || n != 640 {
		t.Errorf("expected --container-max-width 640, got %d (%v)", n, ok)
	}
	if _, ok := sheet.Variables()["--ignored"]; ok {
		t.Error("custom properties outside :root must not become variables")
	}
	if _, ok := sheet.IntVariable("--missing"); ok {
		t.Error("unexpected variable")
	}
}

func TestParser_AtRules(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	input := `@import "x.css";
@media (max-width:600px) { .a { color: red } .b { color: blue } }
@font-face { font-family: "X"; src: url(x.woff) }
@-webkit-keyframes spin { from { opacity: 0 } to { opacity: 1 } }`
	sheet := p.Parse([]byte(input))

	if len(sheet.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(sheet.Items))
	}
	for i, item := range sheet.Items {
		if item.AtRule == nil {
			t.Fatalf("item %d: expected at-rule", i)
		}
	}

	imp := sheet.Items[0].AtRule
	if imp.Name != "@import" || imp.Block || imp.Prelude != `"x.css"` {
		t.Errorf("unexpected import %+v", imp)
	}

	media := sheet.Items[1].AtRule
	if media.Prelude != "(max-width:600px)" {
		t.Errorf("unexpected media prelude %q", media.Prelude)
	}
	if len(media.Items) != 2 {
		t.Errorf("expected 2 rules in media block, got %d", len(media.Items))
	}

	ff := sheet.Items[2].AtRule
	if len(ff.Declarations) != 2 {
		t.Errorf("expected 2 font-face declarations, got %d", len(ff.Declarations))
	}

	kf := sheet.Items[3].AtRule
	if len(kf.Items) != 2 {
		t.Errorf("expected 2 keyframes, got %d", len(kf.Items))
	}

	out := sheet.String()
	for _, want := range []string{
		`@import "x.css";`,
		"@media (max-width:600px) {\n  .a {\n    color: red;\n  }\n",
		"@font-face {\n",
		"@-webkit-keyframes spin {\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized stylesheet misses %q:\n%s", want, out)
		}
	}
}

func TestParser_RecoversFromErrors(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	sheet := p.Parse([]byte(`.a { color } .b { color: blue }`))

	rules := sheet.RulesBySelector(".b")
	if len(rules) != 1 {
		t.Fatalf("expected rule after broken one, got %d", len(rules))
	}
	if v, _ := css.Lookup(rules[0].Declarations, "color"); v.Keyword != "blue" {
		t.Errorf("expected blue, got %q", v.Raw)
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected parse warning")
	}
}

func TestParser_Empty(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse(nil)
	if !sheet.IsEmpty() {
		t.Errorf("expected empty stylesheet, got %d items", len(sheet.Items))
	}
	if sheet.String() != "" {
		t.Errorf("expected empty output, got %q", sheet.String())
	}
}

func TestParseDeclarations(t *testing.T) {
	decls := css.ParseDeclarations("display: block; width: 50%; height:20px; display: none !important; display: inline")

	if len(decls) != 5 {
		t.Fatalf("expected 5 declarations, got %d", len(decls))
	}

	display, ok := css.Lookup(decls, "display")
	if !ok || display.Keyword != "none" {
		t.Errorf("expected important display none to win, got %q", display.Raw)
	}

	width, _ := css.Lookup(decls, "width")
	if a, ok := width.Attribute(); !ok || a != "50%" {
		t.Errorf("expected width attribute 50%%, got %q", a)
	}

	height, _ := css.Lookup(decls, "height")
	if a, ok := height.Attribute(); !ok || a != "20" {
		t.Errorf("expected height attribute 20, got %q", a)
	}

	if got := css.ParseDeclarations("  "); len(got) != 0 {
		t.Errorf("expected no declarations, got %v", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		integer int
		ok      bool
	}{
		{"12", 12, true},
		{" 600px ", 600, true},
		{"2em", 0, false},
		{"auto", 0, false},
		{"0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := css.ParseValue(tt.in).Int()
			if ok != tt.ok || n != tt.integer {
				t.Errorf("ParseValue(%q).Int() = %d, %v; want %d, %v", tt.in, n, ok, tt.integer, tt.ok)
			}
		})
	}
}

func TestFormatDeclarations(t *testing.T) {
	decls := css.ParseDeclarations("color:red;font-weight : bold")
	if got := css.FormatDeclarations(decls); got != "color: red; font-weight: bold" {
		t.Errorf("unexpected style %q", got)
	}
}
