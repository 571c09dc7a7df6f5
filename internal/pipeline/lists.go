package pipeline

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// List container kinds.
const (
	listKindOrdered   = "ol"
	listKindUnordered = "ul"
)

// marginTolerance collapses floating-point noise when ranking margin
// magnitudes: margins closer than this count as one nesting rank.
const marginTolerance = 1e-4

var (
	// Explicit nesting level inside a list identity declaration, as in
	// "l3 level2 lfo5".
	listLevelPattern = regexp.MustCompile(`\blevel(\d+)\b`)

	// Ordered markers: digit, roman numeral, single letter, or CJK numeral
	// followed by a delimiter, optionally parenthesized.
	orderedMarkerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\(?[0-9]+[.)\]]`),
		regexp.MustCompile(`^\(?[ivxlcdm]+[.)\]]`),
		regexp.MustCompile(`^\(?[IVXLCDM]+[.)\]]`),
		regexp.MustCompile(`^\(?[a-zA-Z][.)\]]`),
		regexp.MustCompile(`^[一二三四五六七八九十百千〇]+[、．。.)]`),
	}

	// Marker fallback for paragraphs without a vendor ignore span: a short
	// leading token followed by whitespace.
	leadingMarkerPattern = regexp.MustCompile(`^[\s\x{00A0}]*([^\s\x{00A0}]{1,8})[\s\x{00A0}]+`)
)

// bulletGlyphs are the marker characters classified as unordered: bullets,
// middle dots, section signs, circles, squares, dashes. Word renders bullet
// levels with symbol-font characters that survive as these glyphs.
const bulletGlyphs = "•·§○◦▪■□‣–—-*"

// listItem is one list-marker paragraph awaiting tree placement.
type listItem struct {
	para     *html.Node
	marker   string
	kind     string
	level    int
	margin   float64
	explicit int
}

// ListReconstructor rebuilds nested lists from the flat run of list-marker
// paragraphs a word processor pastes. Nesting level comes from left margins
// when they vary, else from the explicit level embedded in the marker style.
type ListReconstructor struct{}

// Transform rebuilds lists everywhere in the document, innermost containers
// first so list paragraphs inside table cells are handled too.
func (r *ListReconstructor) Transform(ctx context.Context, doc *markup.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := doc.Body()
	if body == nil {
		return nil
	}
	rebuildBelow(body)
	return nil
}

func rebuildBelow(n *html.Node) {
	for _, c := range markup.ElementChildren(n) {
		rebuildBelow(c)
	}
	rebuildRuns(n)
}

// rebuildRuns buffers consecutive list-marker paragraphs among parent's
// children (whitespace-only text between them is tolerated) and flushes each
// buffer through the tree builder. Any other content ends the run.
func rebuildRuns(parent *html.Node) {
	var run []*html.Node
	flush := func() {
		flushRun(parent, run)
		run = nil
	}
	for _, c := range markup.Children(parent) {
		switch {
		case isListParagraph(c):
			run = append(run, c)
		case markup.IsWhitespaceText(c) && len(run) > 0:
			run = append(run, c)
		default:
			flush()
		}
	}
	flush()
}

// isListParagraph reports whether n is a paragraph-like element carrying a
// list identity declaration (the marker-glyph spans carry "Ignore" instead).
func isListParagraph(n *html.Node) bool {
	if !markup.IsElement(n, "p", "div") {
		return false
	}
	v, ok := markup.NodeStyle(n).Get("mso-list")
	return ok && !strings.EqualFold(v, "ignore")
}

func flushRun(parent *html.Node, run []*html.Node) {
	var paras []*html.Node
	for _, n := range run {
		if isListParagraph(n) {
			paras = append(paras, n)
		}
	}
	if len(paras) == 0 {
		return
	}

	items := analyzeItems(paras)
	assignLevels(items)
	lists := buildListTree(items)

	anchor := run[0]
	for _, l := range lists {
		markup.InsertBefore(parent, l, anchor)
	}
	for _, n := range run {
		markup.Detach(n)
	}
}

// analyzeItems extracts marker text, kind, margin magnitude, and explicit
// level for every paragraph. Marker text is consumed here: the vendor span
// (or matching leading token) is stripped from the item body.
func analyzeItems(paras []*html.Node) []*listItem {
	items := make([]*listItem, 0, len(paras))
	for _, p := range paras {
		it := &listItem{para: p}
		style := markup.NodeStyle(p)
		if v, ok := style.Get("mso-list"); ok {
			if m := listLevelPattern.FindStringSubmatch(v); m != nil {
				it.explicit, _ = strconv.Atoi(m[1])
			}
		}
		if v, ok := style.Get("margin-left"); ok {
			if pts, valid := markup.Points(v); valid {
				it.margin = pts
			}
		}
		it.marker = extractMarker(p)
		it.kind = classifyMarker(it.marker)
		items = append(items, it)
	}
	return items
}

// extractMarker returns the paragraph's marker text and removes it from the
// tree. Preference: the vendor ignore span; fallback: a short leading token
// that classifies as a marker. Returns "" when neither is present.
func extractMarker(p *html.Node) string {
	if span := ignoreSpan(p); span != nil {
		text := strings.TrimSpace(markup.Text(span))
		markup.Detach(span)
		trimItemLead(p)
		return text
	}

	first := markup.FindFirst(p, markup.IsText)
	if first == nil {
		return ""
	}
	m := leadingMarkerPattern.FindStringSubmatch(first.Data)
	if m == nil {
		return ""
	}
	if _, recognized := classifyToken(m[1]); !recognized {
		return ""
	}
	first.Data = first.Data[len(m[0]):]
	if first.Data == "" {
		markup.Detach(first)
	}
	return m[1]
}

// ignoreSpan finds the vendor span wrapping the visible marker glyph.
func ignoreSpan(p *html.Node) *html.Node {
	return markup.FindFirst(p, func(n *html.Node) bool {
		if n == p || n.Type != html.ElementNode {
			return false
		}
		v, ok := markup.NodeStyle(n).Get("mso-list")
		return ok && strings.EqualFold(v, "ignore")
	})
}

// trimItemLead drops the whitespace and emptied wrapper spans left at the
// front of an item body after marker removal.
func trimItemLead(p *html.Node) {
	for {
		c := p.FirstChild
		if c == nil {
			return
		}
		if markup.IsText(c) {
			c.Data = strings.TrimLeft(c.Data, " \t\r\n ")
			if c.Data == "" {
				markup.Detach(c)
				continue
			}
			return
		}
		if markup.IsElement(c, "span") && c.FirstChild == nil {
			markup.Detach(c)
			continue
		}
		return
	}
}

func classifyToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	for _, p := range orderedMarkerPatterns {
		if p.MatchString(token) {
			return listKindOrdered, true
		}
	}
	r, _ := utf8.DecodeRuneInString(token)
	if strings.ContainsRune(bulletGlyphs, r) {
		return listKindUnordered, true
	}
	return "", false
}

// classifyMarker maps marker text to a list kind, defaulting to unordered
// when classification is impossible.
func classifyMarker(marker string) string {
	if kind, ok := classifyToken(marker); ok {
		return kind
	}
	return listKindUnordered
}

// assignLevels implements two-pass level inference. Margins are the primary
// signal: when more than one distinct magnitude exists, ascending rank gives
// the level, since margins reflect visual nesting even when the explicit
// numbering is flat. Otherwise the explicit level applies, default 1.
func assignLevels(items []*listItem) {
	var magnitudes []float64
	for _, it := range items {
		magnitudes = addMagnitude(magnitudes, it.margin)
	}
	if len(magnitudes) > 1 {
		sort.Float64s(magnitudes)
		for _, it := range items {
			it.level = magnitudeRank(magnitudes, it.margin)
		}
		return
	}
	for _, it := range items {
		if it.explicit > 0 {
			it.level = it.explicit
		} else {
			it.level = 1
		}
	}
}

func addMagnitude(set []float64, v float64) []float64 {
	for _, m := range set {
		if math.Abs(m-v) <= marginTolerance {
			return set
		}
	}
	return append(set, v)
}

func magnitudeRank(sorted []float64, v float64) int {
	for i, m := range sorted {
		if math.Abs(m-v) <= marginTolerance {
			return i + 1
		}
	}
	return 1
}

// buildListTree turns the leveled items into nested list containers. It
// tracks the current list and the previously seen level: level 1 attaches to
// the top-level container (starting a sibling container on kind switch),
// deeper items open a child list inside the last item, shallower items
// ascend one container per level. May return several top-level containers.
func buildListTree(items []*listItem) []*html.Node {
	var tops []*html.Node
	var current *html.Node
	prev := 0

	for _, it := range items {
		switch {
		case it.level <= 1:
			if len(tops) == 0 {
				tops = append(tops, markup.NewElement(it.kind))
			}
			current = tops[len(tops)-1]
			if current.Data != it.kind {
				current = markup.NewElement(it.kind)
				tops = append(tops, current)
			}

		case current == nil:
			// Run starts deeper than level 1: seed the root with it.
			current = markup.NewElement(it.kind)
			tops = append(tops, current)

		case it.level > prev:
			child := markup.NewElement(it.kind)
			lastItem(current).AppendChild(child)
			current = child

		case it.level < prev:
			for i := 0; i < prev-it.level; i++ {
				item := current.Parent
				if item == nil || item.Parent == nil {
					break
				}
				current = item.Parent
			}

		default:
			if current.Data != it.kind {
				current = startSiblingList(&tops, current, it.kind)
			}
		}

		li := markup.NewElement("li")
		markup.Reparent(it.para, li)
		current.AppendChild(li)
		prev = it.level
	}
	return tops
}

// lastItem returns the last item of list, creating one when the list is
// still empty so a deeper level always has an item to nest under.
func lastItem(list *html.Node) *html.Node {
	if last := list.LastChild; last != nil && markup.IsElement(last, "li") {
		return last
	}
	li := markup.NewElement("li")
	list.AppendChild(li)
	return li
}

// startSiblingList opens a new container of the given kind at the same
// nesting point as current.
func startSiblingList(tops *[]*html.Node, current *html.Node, kind string) *html.Node {
	sibling := markup.NewElement(kind)
	if current.Parent == nil {
		*tops = append(*tops, sibling)
	} else {
		markup.InsertBefore(current.Parent, sibling, current.NextSibling)
	}
	return sibling
}
