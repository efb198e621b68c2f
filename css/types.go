package css

import (
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", "pt", etc.
	Keyword string  // Keyword if applicable: "bold", "block", "center", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	// handles "0"
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Int returns value as integer when it is a unitless or px number.
func (v Value) Int() (int, bool) {
	if !v.IsNumeric() || (v.Unit != "" && v.Unit != "px") {
		return 0, false
	}
	return int(v.Value), true
}

// Attribute returns value usable as HTML width or height attribute: pixels
// without unit, percentages as is.
func (v Value) Attribute() (string, bool) {
	if !v.IsNumeric() {
		return "", false
	}
	switch v.Unit {
	case "", "px":
		return strconv.FormatFloat(v.Value, 'f', -1, 64), true
	case "%":
		return strconv.FormatFloat(v.Value, 'f', -1, 64) + "%", true
	}
	return "", false
}

// Declaration is a single property: value pair.
type Declaration struct {
	Property  string
	Value     Value
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value.Raw + " !important"
	}
	return d.Property + ": " + d.Value.Raw
}

// FormatDeclarations joins declarations into inline style attribute text.
func FormatDeclarations(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "; ")
}

// Rule is a qualified rule: selector group and its declarations in source
// order.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// Selectors returns individual selectors of the rule group.
func (r Rule) Selectors() []string {
	return splitSelectorGroup(r.Selector)
}

// AtRule keeps an at-rule. Rule list at-rules (@media, @supports,
// @keyframes) have Items, declaration list at-rules (@font-face, @page) have
// Declarations, anything else keeps its block text in Raw.
type AtRule struct {
	Name         string // with leading @
	Prelude      string
	Block        bool
	Items        []Item
	Declarations []Declaration
	Raw          string
}

// Item is a single stylesheet item, exactly one of Rule or AtRule is set.
type Item struct {
	Rule   *Rule
	AtRule *AtRule
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items     []Item           // All top-level items in source order
	Warnings  []string         // Parse problems, never fatal
	variables map[string]Value // Custom properties declared on :root
}

// Rules returns top-level rules in source order.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules with the given selector text.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// Variables returns copy of custom properties declared on :root, names
// include leading dashes.
func (s *Stylesheet) Variables() map[string]Value {
	return maps.Clone(s.variables)
}

// IntVariable returns custom property as integer.
func (s *Stylesheet) IntVariable(name string) (int, bool) {
	v, ok := s.variables[name]
	if !ok {
		return 0, false
	}
	return v.Int()
}

// IsEmpty reports whether stylesheet has nothing to output.
func (s *Stylesheet) IsEmpty() bool {
	return len(s.Items) == 0
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	writeItems(cw, s.Items, "")
	return cw.n, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) printf(format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, format, args...)
	cw.n += int64(n)
	cw.err = err
}

func writeItems(cw *countingWriter, items []Item, indent string) {
	for _, item := range items {
		switch {
		case item.Rule != nil:
			if len(item.Rule.Declarations) == 0 {
				continue
			}
			cw.printf("%s%s {\n", indent, item.Rule.Selector)
			writeDeclarations(cw, item.Rule.Declarations, indent+"  ")
			cw.printf("%s}\n", indent)
		case item.AtRule != nil:
			writeAtRule(cw, item.AtRule, indent)
		}
	}
}

func writeAtRule(cw *countingWriter, ar *AtRule, indent string) {
	head := ar.Name
	if ar.Prelude != "" {
		head += " " + ar.Prelude
	}
	if !ar.Block {
		cw.printf("%s%s;\n", indent, head)
		return
	}
	cw.printf("%s%s {\n", indent, head)
	switch {
	case len(ar.Items) > 0:
		writeItems(cw, ar.Items, indent+"  ")
	case len(ar.Declarations) > 0:
		writeDeclarations(cw, ar.Declarations, indent+"  ")
	case ar.Raw != "":
		cw.printf("%s  %s\n", indent, ar.Raw)
	}
	cw.printf("%s}\n", indent)
}

func writeDeclarations(cw *countingWriter, decls []Declaration, indent string) {
	for _, d := range decls {
		cw.printf("%s%s;\n", indent, d.String())
	}
}

// splitSelectorGroup splits selector list on top level commas.
func splitSelectorGroup(group string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range group {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(group[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(group[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
