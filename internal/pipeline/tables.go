package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// simpleInlineTags are the wrappers a cell paragraph may contain and still
// be inlined into its entry instead of kept as a nested block.
var simpleInlineTags = map[string]bool{
	"b": true, "i": true, "u": true, "strong": true, "em": true,
	"span": true, "a": true, "sub": true, "sup": true, "br": true,
}

// TableTransformer converts native tables into a CALS-like model: a tgroup
// with per-column colspec entries, header and body row groups, and
// morerows/namest/nameend span attributes resolved through an occupancy
// matrix. The row groups are named headrows and bodyrows rather than
// thead and tbody: an HTML parser drops bare table-section tags outside a
// table, which would lose the grouping when formatted output is fed back
// through the pipeline.
type TableTransformer struct{}

// Transform converts every table, deepest-nested first, so inner tables are
// already in CALS form when their containing cell is emitted.
func (t *TableTransformer) Transform(ctx context.Context, doc *markup.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := doc.Body()
	if body == nil {
		return nil
	}
	tables := markup.Collect(body, func(n *html.Node) bool {
		return markup.IsElement(n, "table")
	})
	sort.SliceStable(tables, func(i, j int) bool {
		return markup.Depth(tables[i]) > markup.Depth(tables[j])
	})
	for _, tbl := range tables {
		convertTable(tbl)
	}
	return nil
}

// sourceRow pairs a native row with its header/body classification.
type sourceRow struct {
	node   *html.Node
	header bool
}

func convertTable(table *html.Node) {
	rows := tableRows(table)
	if len(rows) == 0 {
		return
	}
	colCount := tableColumnCount(rows)
	if colCount < 1 {
		return
	}
	widths := resolveColumnWidths(table, rows, colCount)

	informal := markup.NewElement("informaltable")
	tgroup := markup.NewElement("tgroup", html.Attribute{Key: "cols", Val: strconv.Itoa(colCount)})
	informal.AppendChild(tgroup)
	for i, w := range widths {
		tgroup.AppendChild(markup.NewElement("colspec",
			html.Attribute{Key: "colname", Val: colName(i)},
			html.Attribute{Key: "colwidth", Val: w},
		))
	}

	grid := newOccupancy(len(rows), colCount)
	var headRows, bodyRows []*html.Node
	for ri, r := range rows {
		out := emitRow(grid, ri, r.node, colCount)
		if r.header {
			headRows = append(headRows, out)
		} else {
			bodyRows = append(bodyRows, out)
		}
	}

	if len(headRows) > 0 {
		head := markup.NewElement("headrows")
		for _, r := range headRows {
			head.AppendChild(r)
		}
		tgroup.AppendChild(head)
	}
	bodyGroup := markup.NewElement("bodyrows")
	for _, r := range bodyRows {
		bodyGroup.AppendChild(r)
	}
	tgroup.AppendChild(bodyGroup)

	markup.ReplaceWith(table, informal)
}

// tableRows collects rows in document order. Only rows inside a thead
// section count as header rows.
func tableRows(table *html.Node) []sourceRow {
	var rows []sourceRow
	for _, c := range markup.ElementChildren(table) {
		switch c.Data {
		case "tr":
			rows = append(rows, sourceRow{node: c})
		case "thead":
			for _, r := range markup.ElementChildren(c) {
				if r.Data == "tr" {
					rows = append(rows, sourceRow{node: r, header: true})
				}
			}
		case "tbody", "tfoot":
			for _, r := range markup.ElementChildren(c) {
				if r.Data == "tr" {
					rows = append(rows, sourceRow{node: r})
				}
			}
		}
	}
	return rows
}

// tableColumnCount is the maximum per-row sum of column spans.
func tableColumnCount(rows []sourceRow) int {
	maxCols := 0
	for _, r := range rows {
		sum := 0
		for _, cell := range rowCells(r.node) {
			sum += spanAttr(cell, "colspan")
		}
		if sum > maxCols {
			maxCols = sum
		}
	}
	return maxCols
}

func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for _, c := range markup.ElementChildren(row) {
		if c.Data == "td" || c.Data == "th" {
			cells = append(cells, c)
		}
	}
	return cells
}

// spanAttr reads a span attribute, defaulting invalid or absent values to 1.
func spanAttr(cell *html.Node, key string) int {
	v := strings.TrimSpace(markup.Attr(cell, key))
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// resolveColumnWidths resolves one width per column in priority order:
// col descriptors expanded across their span, then first-row cells with
// column-span exactly 1, then the proportional default.
func resolveColumnWidths(table *html.Node, rows []sourceRow, colCount int) []string {
	widths := make([]string, colCount)

	col := 0
	for _, descriptor := range markup.Collect(table, func(n *html.Node) bool {
		return markup.IsElement(n, "col")
	}) {
		span := spanAttr(descriptor, "span")
		w := declaredWidth(descriptor)
		for i := 0; i < span && col < colCount; i++ {
			if w != "" {
				widths[col] = normalizeWidth(w)
			}
			col++
		}
	}

	c := 0
	for _, cell := range rowCells(rows[0].node) {
		if c >= colCount {
			break
		}
		span := spanAttr(cell, "colspan")
		if span == 1 && widths[c] == "" {
			if w := declaredWidth(cell); w != "" {
				widths[c] = normalizeWidth(w)
			}
		}
		c += span
	}

	for i := range widths {
		if widths[i] == "" {
			widths[i] = "1*"
		}
	}
	return widths
}

// declaredWidth reads a width from the attribute or the inline style.
func declaredWidth(n *html.Node) string {
	if w := strings.TrimSpace(markup.Attr(n, "width")); w != "" {
		return w
	}
	if w, ok := markup.NodeStyle(n).Get("width"); ok {
		return strings.TrimSpace(w)
	}
	return ""
}

// normalizeWidth maps a declared width to CALS form: percentages become
// proportional weights with the numeric value retained, absolute lengths
// become a pixel-equivalent integer, plain numbers pass through unchanged.
// Anything unparseable falls back to the proportional default.
func normalizeWidth(w string) string {
	if strings.HasSuffix(w, "%") {
		num := strings.TrimSpace(strings.TrimSuffix(w, "%"))
		if _, err := strconv.ParseFloat(num, 64); err == nil {
			return num + "*"
		}
		return "1*"
	}
	if _, unit, ok := markup.ParseLength(w); ok {
		if unit == "" {
			return w
		}
		if px, valid := markup.Pixels(w); valid {
			return strconv.Itoa(px)
		}
	}
	return "1*"
}

func colName(i int) string {
	return fmt.Sprintf("c%d", i+1)
}

// occupancy tracks grid positions consumed by preceding merged cells.
type occupancy [][]bool

func newOccupancy(rows, cols int) occupancy {
	g := make(occupancy, rows)
	for i := range g {
		g[i] = make([]bool, cols)
	}
	return g
}

func (g occupancy) covered(row, col int) bool {
	return g[row][col]
}

func (g occupancy) mark(row, col, rowspan, colspan int) {
	for r := row; r < row+rowspan && r < len(g); r++ {
		for c := col; c < col+colspan && c < len(g[r]); c++ {
			g[r][c] = true
		}
	}
}

// emitRow places each source cell at the first unoccupied column, marks the
// positions its spans cover, and pads the row with empty entries once the
// source cells run out. Cells that no longer fit are dropped.
func emitRow(grid occupancy, ri int, src *html.Node, colCount int) *html.Node {
	row := markup.NewElement("row")
	cells := rowCells(src)
	next := 0

	for col := 0; col < colCount; {
		if grid.covered(ri, col) {
			col++
			continue
		}
		if next >= len(cells) {
			grid.mark(ri, col, 1, 1)
			row.AppendChild(markup.NewElement("entry"))
			col++
			continue
		}

		cell := cells[next]
		next++
		colspan := spanAttr(cell, "colspan")
		if colspan > colCount-col {
			colspan = colCount - col
		}
		rowspan := spanAttr(cell, "rowspan")
		if rowspan > len(grid)-ri {
			rowspan = len(grid) - ri
		}

		entry := markup.NewElement("entry")
		if rowspan > 1 {
			markup.SetAttr(entry, "morerows", strconv.Itoa(rowspan-1))
		}
		if colspan > 1 {
			markup.SetAttr(entry, "namest", colName(col))
			markup.SetAttr(entry, "nameend", colName(col+colspan-1))
		}
		grid.mark(ri, col, rowspan, colspan)
		fillEntry(entry, cell)
		row.AppendChild(entry)
		col += colspan
	}
	return row
}

// fillEntry moves cell content into the entry. Empty paragraph wrappers are
// dropped; paragraphs holding only simple inline content are inlined with a
// space between consecutive ones; anything else stays a nested block.
func fillEntry(entry, cell *html.Node) {
	for _, c := range markup.Children(cell) {
		switch {
		case markup.IsWhitespaceText(c):

		case markup.IsElement(c, "p", "div"):
			if isEmptyParagraph(c) {
				continue
			}
			if paragraphInlinable(c) {
				if entry.FirstChild != nil {
					entry.AppendChild(markup.NewText(" "))
				}
				markup.Reparent(c, entry)
			} else {
				markup.Detach(c)
				entry.AppendChild(c)
			}

		default:
			markup.Detach(c)
			entry.AppendChild(c)
		}
	}
	trimInlineEntry(entry)
}

// paragraphInlinable reports whether p holds only text and simple inline
// wrappers. A paragraph with no children qualifies.
func paragraphInlinable(p *html.Node) bool {
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case markup.IsText(c):
		case c.Type == html.ElementNode && simpleInlineTags[c.Data]:
		default:
			return false
		}
	}
	return true
}

// isEmptyParagraph reports whether p has no text and no media descendant.
func isEmptyParagraph(p *html.Node) bool {
	return strings.TrimSpace(markup.Text(p)) == "" && !containsMedia(p)
}

// containsMedia reports whether n carries an image or line-break descendant.
func containsMedia(n *html.Node) bool {
	return markup.FindFirst(n, func(c *html.Node) bool {
		return markup.IsElement(c, "img", "br")
	}) != nil
}

// trimInlineEntry trims the leading and trailing whitespace of an entry that
// holds only inline content.
func trimInlineEntry(entry *html.Node) {
	for c := entry.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !simpleInlineTags[c.Data] {
			return
		}
	}
	if first := entry.FirstChild; first != nil && markup.IsText(first) {
		first.Data = strings.TrimLeft(first.Data, " \t\r\n ")
		if first.Data == "" {
			markup.Detach(first)
		}
	}
	if last := entry.LastChild; last != nil && markup.IsText(last) {
		last.Data = strings.TrimRight(last.Data, " \t\r\n ")
		if last.Data == "" {
			markup.Detach(last)
		}
	}
}
