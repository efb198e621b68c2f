package dom

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// compiled selectors are shared by all documents
var selectors sync.Map

// Compile returns compiled selector group, results are cached.
func Compile(sel string) (cascadia.SelectorGroup, error) {
	if s, ok := selectors.Load(sel); ok {
		return s.(cascadia.SelectorGroup), nil
	}
	s, err := cascadia.ParseGroup(sel)
	if err != nil {
		return nil, fmt.Errorf("bad selector %q: %w", sel, err)
	}
	selectors.Store(sel, s)
	return s, nil
}

func mustCompile(sel string) cascadia.SelectorGroup {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

// QueryAll returns all elements under root matching selector, in document
// order. Selectors used by the program are constants, so malformed selector
// is programming error and panics.
func QueryAll(root *html.Node, sel string) []*html.Node {
	return cascadia.QueryAll(root, mustCompile(sel))
}

// Query returns first element under root matching selector or nil.
func Query(root *html.Node, sel string) *html.Node {
	return cascadia.Query(root, mustCompile(sel))
}

// Matches reports whether n matches selector.
func Matches(n *html.Node, sel string) bool {
	return n.Type == html.ElementNode && mustCompile(sel).Match(n)
}

// QueryFunc returns all elements under root for which fn returns true.
func QueryFunc(root *html.Node, fn func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && fn(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// QueryFirstFunc returns first element under root for which fn returns true.
func QueryFirstFunc(root *html.Node, fn func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && fn(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
