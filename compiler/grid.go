package compiler

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"bte/dom"
)

const (
	gridDesktop = "desktop"
	gridMobile  = "mobile"
)

// column is a grid column with sizes resolved for both layouts.
type column struct {
	el      *html.Node
	desktop int
	mobile  int
	sizes   []string // size tokens to strip
}

// Grid rewrites rows into two table grids: desktop one for Outlook and wide
// screens, mobile one hidden from Outlook. Rows are picked one by one so
// rows nested in columns are processed as well.
func (c *Compiler) Grid() error {
	seen := make(map[*html.Node]bool)
	for {
		row := dom.QueryFirstFunc(c.doc, func(n *html.Node) bool {
			return !seen[n] && (dom.HasClass(n, "row") || dom.HasClass(n, "row-fluid"))
		})
		if row == nil {
			return nil
		}
		seen[row] = true
		c.gridRow(row)
	}
}

func (c *Compiler) gridRow(row *html.Node) {
	children := dom.ChildElements(row)
	if !slices.ContainsFunc(children, isColumn) {
		c.log.Debug("Row without columns left as is", zap.String("tag", row.Data))
		return
	}

	// rows in desktop grids are clones of rows in mobile grids, problems
	// are reported once from the mobile copy
	c.quiet = inDesktopGrid(row)
	defer func() { c.quiet = false }()

	var cols []column
	for _, ch := range dom.Children(row) {
		switch {
		case ch.Type == html.TextNode:
			if strings.Trim(ch.Data, " \t\r\n\f") != "" {
				c.warn(WarningKindDroppedContent, row, "", "row text is not in a column, dropped")
			}
		case ch.Type != html.ElementNode:
		case !isColumn(ch):
			if dom.HasContent(ch) {
				c.warn(WarningKindDroppedContent, ch, strings.Join(dom.Classes(ch), " "), "row child is not a column, dropped")
			}
		default:
			cols = append(cols, c.resolveColumn(ch))
		}
	}

	noGutters := dom.HasClass(row, "no-gutters")

	desktop := make([]column, len(cols))
	for i, col := range cols {
		desktop[i] = col
		desktop[i].el = c.helper.Clone(col.el)
	}

	dom.TakeChildren(row)
	dom.Append(row,
		c.buildGrid(desktop, gridDesktop, noGutters),
		dom.NewComment(dom.ExcludeMsoStart),
		c.buildGrid(cols, gridMobile, noGutters),
		dom.NewComment(dom.ExcludeMsoEnd),
	)

	for _, class := range []string{"row", "row-fluid"} {
		if dom.HasClass(row, class) {
			c.helper.RemoveClass(row, class)
		}
	}
	c.log.Debug("Grid built", zap.Int("columns", len(cols)), zap.Bool("gutters", !noGutters))
}

func inDesktopGrid(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && dom.HasClass(p, "bte-grid--"+gridDesktop) {
			return true
		}
	}
	return false
}

// resolveColumn reads column sizes from class tokens. First token of a scope
// wins, sizes above number of columns are clamped.
func (c *Compiler) resolveColumn(el *html.Node) column {
	var plain, large int
	col := column{el: el}

	for _, token := range dom.Classes(el) {
		if token != "col" && !strings.HasPrefix(token, "col-") {
			continue
		}
		u, err := ParseUtility(token)
		if err != nil {
			if errors.Is(err, ErrMalformed) {
				c.warn(WarningKindMalformedSize, el, token, err.Error())
			}
			continue
		}
		if u.Size == 0 {
			continue
		}
		col.sizes = append(col.sizes, token)

		size := u.Size
		if size > c.opts.Columns {
			c.warn(WarningKindOversizedColumn, el, token, "column is wider than the grid, clamped to "+strconv.Itoa(c.opts.Columns))
			size = c.opts.Columns
		}

		target := &plain
		if u.Breakpoint == BreakpointLarge {
			target = &large
		}
		if *target != 0 {
			c.warn(WarningKindDuplicateSize, el, token, "column size is already set, ignored")
			continue
		}
		*target = size
	}

	col.mobile = plain
	if col.mobile == 0 {
		col.mobile = c.opts.Columns
	}
	col.desktop = large
	if col.desktop == 0 {
		col.desktop = col.mobile
	}
	return col
}

// buildGrid lays columns out into lines, a line breaks before column which
// would overflow it. Short lines are completed with filler cell.
func (c *Compiler) buildGrid(cols []column, variant string, noGutters bool) *html.Node {
	tbody := dom.NewElement("tbody")
	grid := dom.NewElement("table", "class", "bte-grid bte-grid--"+variant, "role", "presentation")
	dom.Append(grid, tbody)

	var (
		line *html.Node
		sum  int
	)
	closeLine := func() {
		if line != nil && sum < c.opts.Columns {
			dom.Append(line, dom.NewElement("td", "class", "bte-col-offset "+sizeClass(c.opts.Columns-sum)))
		}
	}

	for _, col := range cols {
		size := col.desktop
		if variant == gridMobile {
			size = col.mobile
		}

		if line == nil || sum+size > c.opts.Columns {
			closeLine()
			line, sum = newLine(tbody), 0
		}
		if sum > 0 && !noGutters {
			sep := dom.NewElement("td", "class", "bte-col-separator")
			dom.Append(sep, dom.NewText(nbsp))
			dom.Append(line, sep)
		}

		c.helper.RemoveClass(col.el, col.sizes...)
		cell := dom.NewElement("td", "class", sizeClass(size), "valign", "top")
		dom.Append(cell, col.el)
		dom.Append(line, cell)
		sum += size
	}
	closeLine()
	return grid
}

// newLine appends single row inner table to grid body and returns its row.
func newLine(tbody *html.Node) *html.Node {
	tr := dom.NewElement("tr", "class", "bte-grid__line")
	inner := dom.NewElement("table", "class", "bte-grid__inner", "role", "presentation")
	innerBody := dom.NewElement("tbody")
	td := dom.NewElement("td")
	outer := dom.NewElement("tr")

	dom.Append(innerBody, tr)
	dom.Append(inner, innerBody)
	dom.Append(td, inner)
	dom.Append(outer, td)
	dom.Append(tbody, outer)
	return tr
}

func sizeClass(n int) string {
	return "bte-col-" + strconv.Itoa(n)
}

func isColumn(n *html.Node) bool {
	for _, class := range dom.Classes(n) {
		if class == "col" || strings.HasPrefix(class, "col-") {
			return true
		}
	}
	return false
}
