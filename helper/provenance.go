package helper

import (
	"strings"

	"golang.org/x/net/html"

	"bte/dom"
)

// Attributes provenance is written to when diagnostics are enabled.
const (
	AttrAddedClass   = "data-bte-added-class"
	AttrRemovedClass = "data-bte-removed-class"
	AttrMarker       = "data-bte-marker"
)

type record struct {
	added   []string
	removed []string
	markers []string
}

// Provenance is per document audit log of class mutations. Logs are append
// only and could contain repeats. Not safe for concurrent use, every
// document has its own.
type Provenance struct {
	records map[*html.Node]*record
}

func NewProvenance() *Provenance {
	return &Provenance{records: make(map[*html.Node]*record)}
}

func (p *Provenance) get(n *html.Node) *record {
	r, ok := p.records[n]
	if !ok {
		r = &record{}
		p.records[n] = r
	}
	return r
}

func (p *Provenance) added(n *html.Node, tokens ...string) {
	r := p.get(n)
	r.added = append(r.added, tokens...)
}

func (p *Provenance) removed(n *html.Node, tokens ...string) {
	r := p.get(n)
	r.removed = append(r.removed, tokens...)
}

func (p *Provenance) marked(n *html.Node, marker string) {
	r := p.get(n)
	r.markers = append(r.markers, marker)
}

// Added returns logged class additions of n.
func (p *Provenance) Added(n *html.Node) []string {
	if r, ok := p.records[n]; ok {
		return r.added
	}
	return nil
}

// Removed returns logged class removals of n.
func (p *Provenance) Removed(n *html.Node) []string {
	if r, ok := p.records[n]; ok {
		return r.removed
	}
	return nil
}

// Markers returns markers set on n.
func (p *Provenance) Markers(n *html.Node) []string {
	if r, ok := p.records[n]; ok {
		return r.markers
	}
	return nil
}

// carry appends log of from to the log of to.
func (p *Provenance) carry(from, to *html.Node) {
	src, ok := p.records[from]
	if !ok || from == to {
		return
	}
	dst := p.get(to)
	dst.added = append(dst.added, src.added...)
	dst.removed = append(dst.removed, src.removed...)
	dst.markers = append(dst.markers, src.markers...)
}

// carryTree copies logs of subtree orig to its structural copy.
func (p *Provenance) carryTree(orig, copied *html.Node) {
	p.carry(orig, copied)
	for o, c := orig.FirstChild, copied.FirstChild; o != nil && c != nil; o, c = o.NextSibling, c.NextSibling {
		p.carryTree(o, c)
	}
}

// flush writes logs as attributes of element nodes, appending to values
// already present.
func (p *Provenance) flush() {
	for n, r := range p.records {
		if n.Type != html.ElementNode {
			continue
		}
		appendAttr(n, AttrAddedClass, r.added)
		appendAttr(n, AttrRemovedClass, r.removed)
		appendAttr(n, AttrMarker, r.markers)
	}
}

func appendAttr(n *html.Node, key string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	val := strings.TrimSpace(dom.Attr(n, key) + " " + strings.Join(tokens, " "))
	dom.SetAttr(n, key, val)
}
