package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Breakpoint recognized by the grid and spacing utilities.
const BreakpointLarge = "lg"

var (
	ErrNotUtility = errors.New("not a utility class")
	ErrMalformed  = errors.New("malformed utility class")
)

// Utility is parsed utility class token, for example "my-lg-3" or
// "col-lg-6".
type Utility struct {
	Kind       Kind
	Direction  byte // one of "tblrxy" or 0 for all sides
	Breakpoint string
	Size       int // 0 for a column without size
	Token      string
}

// Neutral returns spacing class consumed by the stylesheet: leading m or p
// replaced with s.
func (u Utility) Neutral() string {
	return "s" + u.Token[1:]
}

// ParseUtility tokenizes single class token. Tokens which are not spacing or
// column classes return ErrNotUtility, column tokens with unusable size
// return ErrMalformed.
func ParseUtility(token string) (Utility, error) {
	if token == "col" || strings.HasPrefix(token, "col-") {
		return parseColumn(token)
	}
	return parseSpacing(token)
}

// parseSpacing accepts [mp][tblrxy]?-(lg-)?\d+
func parseSpacing(token string) (Utility, error) {
	u := Utility{Token: token}
	if len(token) < 3 {
		return u, ErrNotUtility
	}

	switch token[0] {
	case 'm':
		u.Kind = KindMargin
	case 'p':
		u.Kind = KindPadding
	default:
		return u, ErrNotUtility
	}

	rest := token[1:]
	if strings.IndexByte("tblrxy", rest[0]) >= 0 {
		u.Direction, rest = rest[0], rest[1:]
	}
	rest, ok := strings.CutPrefix(rest, "-")
	if !ok {
		return u, ErrNotUtility
	}
	if after, ok := strings.CutPrefix(rest, BreakpointLarge+"-"); ok {
		u.Breakpoint, rest = BreakpointLarge, after
	}
	if rest == "" || strings.Trim(rest, "0123456789") != "" {
		return u, ErrNotUtility
	}
	u.Size, _ = strconv.Atoi(rest)
	return u, nil
}

func parseColumn(token string) (Utility, error) {
	u := Utility{Kind: KindColumn, Token: token}
	if token == "col" {
		return u, nil
	}

	rest := strings.TrimPrefix(token, "col-")
	if bp, size, found := strings.Cut(rest, "-"); found {
		if bp != BreakpointLarge {
			return u, fmt.Errorf("%w: unsupported breakpoint in %q", ErrMalformed, token)
		}
		u.Breakpoint, rest = bp, size
	} else if rest == BreakpointLarge {
		u.Breakpoint = BreakpointLarge
		return u, nil
	}

	n, err := strconv.Atoi(rest)
	switch {
	case err != nil || n < 0:
		return u, fmt.Errorf("%w: non-numeric size in %q", ErrMalformed, token)
	case n == 0:
		return u, fmt.Errorf("%w: zero size in %q", ErrMalformed, token)
	}
	u.Size = n
	return u, nil
}

// spacingUtilities returns all spacing tokens of kind found in classes.
func spacingUtilities(classes []string, kind Kind) []Utility {
	var out []Utility
	for _, c := range classes {
		if u, err := parseSpacing(c); err == nil && u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

func tokens(utils []Utility) []string {
	out := make([]string, len(utils))
	for i, u := range utils {
		out[i] = u.Token
	}
	return out
}

func neutral(utils []Utility) []string {
	out := make([]string, len(utils))
	for i, u := range utils {
		out[i] = u.Neutral()
	}
	return out
}
