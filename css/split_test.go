package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"bte/css"
)

func TestInlineable(t *testing.T) {
	tests := []struct {
		selector string
		want     bool
	}{
		{".btn", true},
		{"table td.bte-col-6", true},
		{"a:first-child", true},
		{"li:nth-child(2n)", true},
		{"a:hover", false},
		{"a:HOVER", false},
		{".btn:focus-visible", false},
		{"p::before", false},
		{"p::first-letter", false},
		{"input:disabled", false},
	}

	for _, tt := range tests {
		if got := css.Inlineable(tt.selector); got != tt.want {
			t.Errorf("Inlineable(%q) = %v, want %v", tt.selector, got, tt.want)
		}
	}
}

func TestStylesheet_Split(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
:root { --grid-columns: 16; }
.btn { color: red; }
a:hover { color: blue; }
.empty { }
@media (max-width: 600px) { .bte-grid--desktop { display: none; } }
`))

	inline, head := sheet.Split()

	rules := inline.Rules()
	if len(rules) != 1 || rules[0].Selector != ".btn" {
		t.Fatalf("inline rules = %+v", rules)
	}
	if n, ok := inline.IntVariable("--grid-columns"); !ok || n != 16 {
		t.Errorf("inline variables lost: %d, %v", n, ok)
	}

	if len(head.Items) != 2 {
		t.Fatalf("expected 2 head items, got %d", len(head.Items))
	}
	if head.Items[0].Rule == nil || head.Items[0].Rule.Selector != "a:hover" {
		t.Errorf("first head item = %+v", head.Items[0])
	}
	if head.Items[1].AtRule == nil || head.Items[1].AtRule.Name != "@media" {
		t.Errorf("second head item = %+v", head.Items[1])
	}

	out := head.String()
	if !strings.Contains(out, "@media") || strings.Contains(out, ".btn") {
		t.Errorf("unexpected head stylesheet:\n%s", out)
	}
}

func TestStylesheet_SplitMixedGroup(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`a, a:visited, .link { color: #0d6efd; }`))
	inline, head := sheet.Split()

	in := inline.Rules()
	if len(in) != 1 || in[0].Selector != "a, .link" {
		t.Fatalf("inline rules = %+v", in)
	}
	out := head.Rules()
	if len(out) != 1 || out[0].Selector != "a:visited" {
		t.Fatalf("head rules = %+v", out)
	}
	if v, _ := css.Lookup(out[0].Declarations, "color"); v.Keyword != "#0d6efd" {
		t.Errorf("declarations not shared, got %q", v.Raw)
	}
}
