package pipeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"golang.org/x/net/html"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// emphasisProperties are the style declarations converted into emphasis
// wrappers and consumed in the process.
var emphasisProperties = map[string]bool{
	"font-weight":     true,
	"font-style":      true,
	"text-decoration": true,
}

// canonicalEmphasis maps alternate emphasis spellings onto the output
// vocabulary so later merge passes compare one kind.
var canonicalEmphasis = map[string]string{
	"strong": "b",
	"em":     "i",
}

var emphasisTags = map[string]bool{"b": true, "i": true, "u": true}

// preserveEmpty lists the structural containers kept even when empty: table
// and list machinery (both native and converted), media, and the
// title/section wrapper.
var preserveEmpty = map[string]bool{
	"informaltable": true, "tgroup": true, "colspec": true,
	"headrows": true, "bodyrows": true, "row": true, "entry": true,
	"table": true, "colgroup": true, "col": true,
	"thead": true, "tbody": true, "tfoot": true,
	"tr": true, "td": true, "th": true,
	"ul": true, "ol": true, "li": true,
	"img": true, "br": true, "hr": true,
	"section": true, "title": true,
}

// languageClassPattern extracts the language token Markdown converters put
// on fenced code blocks.
var languageClassPattern = regexp.MustCompile(`\blanguage-([A-Za-z0-9_+-]+)\b`)

// StructuralNormalizer maps the sanitized, list- and table-converted tree
// onto the output structure: paragraphs for generic containers, one
// title inside one section, cross-reference links, canonical emphasis, and
// no empty leftovers.
type StructuralNormalizer struct {
	detectLanguage bool
}

// NewStructuralNormalizer creates the normalizer. When detectLanguage is
// set, code blocks without a declared language get one via lexer analysis.
func NewStructuralNormalizer(detectLanguage bool) *StructuralNormalizer {
	return &StructuralNormalizer{detectLanguage: detectLanguage}
}

// Transform normalizes the document in place.
func (s *StructuralNormalizer) Transform(ctx context.Context, doc *markup.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := doc.Body()
	if body == nil {
		return nil
	}

	convertContainers(body)
	s.convertPreBlocks(body)
	applyEmphasisStyles(body)
	stripPresentation(body)
	unwrapBareSpans(body)
	canonicalizeEmphasis(body)
	convertLinks(body)
	removeEmptyElements(body)
	restructureHeadings(body)
	unwrapNestedEmphasis(body)
	mergeAdjacentEmphasis(body)
	return nil
}

// convertContainers turns generic containers into paragraphs. A container
// with block-level children is unwrapped instead: word processors wrap whole
// documents in one section div, and a paragraph may not nest blocks.
func convertContainers(body *html.Node) {
	containers := markup.Collect(body, func(n *html.Node) bool {
		return markup.IsElement(n, "div", "center")
	})
	// Reverse order handles nested containers innermost first.
	for i := len(containers) - 1; i >= 0; i-- {
		n := containers[i]
		if hasBlockChild(n) {
			markup.Unwrap(n)
		} else {
			markup.Retag(n, "p")
		}
	}
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			return true
		}
	}
	return false
}

// convertPreBlocks rewrites pre blocks as verbatim program listings. A lone
// code child is unwrapped; its language class (as emitted for fenced code
// blocks) wins over detection.
func (s *StructuralNormalizer) convertPreBlocks(body *html.Node) {
	for _, pre := range markup.Collect(body, func(n *html.Node) bool {
		return markup.IsElement(n, "pre")
	}) {
		lang := ""
		if code := pre.FirstChild; code != nil && code.NextSibling == nil && markup.IsElement(code, "code") {
			if m := languageClassPattern.FindStringSubmatch(markup.Attr(code, "class")); m != nil {
				lang = strings.ToLower(m[1])
			}
			markup.Unwrap(code)
		}
		markup.Retag(pre, "programlisting")
		markup.RemoveAttr(pre, "class")
		if lang == "" && s.detectLanguage {
			lang = detectLanguage(markup.Text(pre))
		}
		if lang != "" {
			markup.SetAttr(pre, "language", lang)
		}
	}
}

// detectLanguage names the language of a code fragment, lower-cased, or ""
// when analysis finds nothing.
func detectLanguage(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	return strings.ToLower(lexer.Config().Name)
}

// applyEmphasisStyles converts bold/italic/underline style declarations to
// b/i/u wrappers, consuming the declarations. Styled spans are replaced by
// the wrappers; other elements keep their tag and get wrapped children.
func applyEmphasisStyles(body *html.Node) {
	for _, n := range markup.Collect(body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && markup.HasAttr(n, "style")
	}) {
		style := markup.NodeStyle(n)
		wrappers := emphasisWrappers(style)
		markup.SetNodeStyle(n, style.Filter(func(d markup.Declaration) bool {
			return !emphasisProperties[d.Property]
		}))
		if len(wrappers) == 0 {
			continue
		}

		outer, inner := buildWrappers(wrappers)
		markup.Reparent(n, inner)
		if markup.IsElement(n, "span") {
			markup.ReplaceWith(n, outer)
		} else {
			n.AppendChild(outer)
		}
	}
}

// emphasisWrappers returns the wrapper kinds a style calls for, outermost
// first: bold, then italic, then underline.
func emphasisWrappers(style markup.Style) []string {
	var w []string
	if v, ok := style.Get("font-weight"); ok && isBoldValue(v) {
		w = append(w, "b")
	}
	if v, ok := style.Get("font-style"); ok && strings.Contains(strings.ToLower(v), "italic") {
		w = append(w, "i")
	}
	if v, ok := style.Get("text-decoration"); ok && strings.Contains(strings.ToLower(v), "underline") {
		w = append(w, "u")
	}
	return w
}

func isBoldValue(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "bold" || v == "bolder" {
		return true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n >= 600
	}
	return false
}

func buildWrappers(kinds []string) (outer, inner *html.Node) {
	outer = markup.NewElement(kinds[0])
	inner = outer
	for _, k := range kinds[1:] {
		next := markup.NewElement(k)
		inner.AppendChild(next)
		inner = next
	}
	return outer, inner
}

// stripPresentation drops the style and class attributes everywhere; every
// declaration that matters has been consumed by now.
func stripPresentation(body *html.Node) {
	markup.Walk(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			markup.RemoveAttr(n, "style")
			markup.RemoveAttr(n, "class")
		}
		return true
	})
}

// unwrapBareSpans lifts content out of spans left with no attributes.
func unwrapBareSpans(body *html.Node) {
	for _, span := range markup.Collect(body, func(n *html.Node) bool {
		return markup.IsElement(n, "span") && len(n.Attr) == 0
	}) {
		markup.Unwrap(span)
	}
}

func canonicalizeEmphasis(body *html.Node) {
	for _, n := range markup.Collect(body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && canonicalEmphasis[n.Data] != ""
	}) {
		markup.Retag(n, canonicalEmphasis[n.Data])
	}
}

// convertLinks turns hyperlinks into external cross-references carrying the
// original target. Anchors and fragment links have no external target and
// are unwrapped.
func convertLinks(body *html.Node) {
	for _, a := range markup.Collect(body, func(n *html.Node) bool {
		return markup.IsElement(n, "a")
	}) {
		href := strings.TrimSpace(markup.Attr(a, "href"))
		if href == "" || strings.HasPrefix(href, "#") {
			markup.Unwrap(a)
			continue
		}
		ulink := markup.NewElement("ulink", html.Attribute{Key: "url", Val: href})
		markup.Reparent(a, ulink)
		markup.ReplaceWith(a, ulink)
	}
}

// removeEmptyElements removes elements with no text and no media descendant,
// keeping the structural preserve-list. Removal iterates to a fixed point
// since emptying a wrapper can empty its parent.
func removeEmptyElements(body *html.Node) {
	for {
		removed := false
		for _, n := range markup.Collect(body, isRemovableEmpty) {
			markup.Detach(n)
			removed = true
		}
		if !removed {
			return
		}
	}
}

func isRemovableEmpty(n *html.Node) bool {
	if n.Type != html.ElementNode || preserveEmpty[n.Data] {
		return false
	}
	if strings.TrimSpace(markup.Text(n)) != "" {
		return false
	}
	return !containsMedia(n)
}

// restructureHeadings demotes every heading except the first top-level one,
// which becomes the document title; the title and all content after it are
// wrapped in one section container. The title holds plain text only: an
// HTML parser reads title content as raw text, so inline markup inside it
// would not survive a reparse of the formatted output.
func restructureHeadings(body *html.Node) {
	var title *html.Node
	for _, h := range markup.Collect(body, func(n *html.Node) bool {
		return markup.IsElement(n, "h1", "h2", "h3", "h4", "h5", "h6")
	}) {
		if title == nil && h.Data == "h1" && h.Parent == body {
			title = h
			continue
		}
		demoteHeading(h)
	}
	if title == nil {
		return
	}

	section := markup.NewElement("section")
	markup.InsertBefore(body, section, title)
	titleEl := markup.NewElement("title")
	if text := strings.TrimSpace(whitespaceRun.ReplaceAllString(markup.Text(title), " ")); text != "" {
		titleEl.AppendChild(markup.NewText(text))
	}
	markup.Detach(title)
	section.AppendChild(titleEl)
	for section.NextSibling != nil {
		sib := section.NextSibling
		markup.Detach(sib)
		section.AppendChild(sib)
	}
}

// demoteHeading rewrites a heading as a paragraph of bold inline text.
func demoteHeading(h *html.Node) {
	b := markup.NewElement("b")
	markup.Reparent(h, b)
	p := markup.NewElement("p")
	p.AppendChild(b)
	markup.ReplaceWith(h, p)
}

// unwrapNestedEmphasis removes emphasis elements sitting directly inside
// an identical kind, iterating since unwrapping can expose new nesting.
// An identical ancestor further up does not count: the inner b in
// <b><i><b>x</b></i></b> stays.
func unwrapNestedEmphasis(body *html.Node) {
	for {
		changed := false
		for _, n := range markup.Collect(body, func(n *html.Node) bool {
			return n.Type == html.ElementNode && emphasisTags[n.Data] && markup.IsElement(n.Parent, n.Data)
		}) {
			markup.Unwrap(n)
			changed = true
		}
		if !changed {
			return
		}
	}
}

// mergeAdjacentEmphasis joins sibling emphasis elements of the same kind
// separated only by whitespace text, keeping the whitespace inside the
// merged element so words stay separated.
func mergeAdjacentEmphasis(parent *html.Node) {
	for _, c := range markup.ElementChildren(parent) {
		mergeAdjacentEmphasis(c)
	}

	c := parent.FirstChild
	for c != nil {
		if c.Type == html.ElementNode && emphasisTags[c.Data] {
			if next, ws := nextMergeable(c); next != nil {
				for _, w := range ws {
					markup.Detach(w)
					c.AppendChild(w)
				}
				markup.Reparent(next, c)
				markup.Detach(next)
				continue
			}
		}
		c = c.NextSibling
	}
}

// nextMergeable returns the next sibling of c when it is an emphasis element
// of the same kind separated only by whitespace text, along with the
// whitespace nodes in between.
func nextMergeable(c *html.Node) (*html.Node, []*html.Node) {
	var ws []*html.Node
	sib := c.NextSibling
	for sib != nil && markup.IsWhitespaceText(sib) {
		ws = append(ws, sib)
		sib = sib.NextSibling
	}
	if sib != nil && sib.Type == html.ElementNode && sib.Data == c.Data {
		return sib, ws
	}
	return nil, nil
}
