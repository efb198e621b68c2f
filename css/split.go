package css

import (
	"maps"
	"regexp"
	"strings"
)

// Pseudo classes and elements which have no inline style equivalent.
var notInlineable = regexp.MustCompile(`(?i):(?:` + strings.Join([]string{
	"active", "any-link", "blank", "checked", "current", "default", "dir",
	"disabled", "focus", "focus-visible", "focus-within", "hover",
	"indeterminate", "in-range", "invalid", "lang", "left", "link",
	"local-link", "is", "optional", "placeholder-shown", "playing",
	"paused", "read-only", "read-write", "required", "right", "scope",
	"valid", "target", "visited", "before", "after", "first-line",
	"first-letter", "grammar-error", "selection", "spelling-error",
}, "|") + `)\b`)

// Inlineable reports whether rules with selector can be applied through
// style attributes.
func Inlineable(selector string) bool {
	return !notInlineable.MatchString(selector)
}

// Split separates stylesheet into rules applied as inline styles and rules
// which have to be kept in document head: all at-rules and selectors using
// dynamic pseudo classes or pseudo elements. Selector groups mixing both
// kinds are divided between the two.
func (s *Stylesheet) Split() (inline, head *Stylesheet) {
	inline = &Stylesheet{Warnings: s.Warnings, variables: maps.Clone(s.variables)}
	head = &Stylesheet{variables: maps.Clone(s.variables)}

	for _, item := range s.Items {
		if item.AtRule != nil {
			head.Items = append(head.Items, item)
			continue
		}
		if len(item.Rule.Declarations) == 0 {
			continue
		}

		var in, out []string
		for _, sel := range item.Rule.Selectors() {
			if Inlineable(sel) {
				in = append(in, sel)
			} else {
				out = append(out, sel)
			}
		}

		switch {
		case len(out) == 0:
			inline.Items = append(inline.Items, item)
		case len(in) == 0:
			head.Items = append(head.Items, item)
		default:
			inline.Items = append(inline.Items, Item{Rule: &Rule{
				Selector:     strings.Join(in, ", "),
				Declarations: item.Rule.Declarations,
			}})
			head.Items = append(head.Items, Item{Rule: &Rule{
				Selector:     strings.Join(out, ", "),
				Declarations: item.Rule.Declarations,
			}})
		}
	}
	return inline, head
}
