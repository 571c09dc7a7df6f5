package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// nonContentSelector matches elements removed wholesale: scripting, styling,
// and embedding machinery that never carries document content. Word exports
// additionally embed raw <xml> islands.
const nonContentSelector = "script, style, noscript, template, iframe, object, embed, applet, link, meta, base, xml"

// whitespaceRun matches whitespace runs including non-breaking spaces, which
// word processors scatter around list markers and empty paragraphs.
var whitespaceRun = regexp.MustCompile(`[\s\x{00A0}]+`)

// styleAllowList holds the style properties the sanitizer keeps. margin-left
// is conditional and handled separately: it survives only next to a
// list-marker declaration, where it encodes visual nesting depth.
var styleAllowList = map[string]bool{
	"mso-list":        true,
	"font-weight":     true,
	"font-style":      true,
	"text-decoration": true,
	"width":           true,
}

// Attribute allow-lists. Anything not listed globally or for the specific
// element is dropped; vendor-namespace and event-handler attributes are
// dropped unconditionally before the lists apply.
var (
	globalAttrAllowList = map[string]bool{
		"style": true,
		"class": true,
	}
	elementAttrAllowList = map[string]map[string]bool{
		"a":        {"href": true, "name": true, "title": true},
		"img":      {"src": true, "alt": true, "width": true, "height": true},
		"td":       {"colspan": true, "rowspan": true, "width": true, "align": true, "valign": true},
		"th":       {"colspan": true, "rowspan": true, "width": true, "align": true, "valign": true},
		"col":      {"span": true, "width": true},
		"colgroup": {"span": true, "width": true},
		"table":    {"width": true, "border": true},
		"ol":       {"start": true, "type": true},

		// Output vocabulary, so re-running the pipeline on formatted
		// output keeps the converted structure intact.
		"ulink":          {"url": true},
		"tgroup":         {"cols": true},
		"colspec":        {"colname": true, "colwidth": true},
		"entry":          {"morerows": true, "namest": true, "nameend": true},
		"programlisting": {"language": true},
	}
)

// containerTags are elements whose direct whitespace-only text is formatting
// artifact rather than content. The set includes the structured-output
// containers so re-running the pipeline on formatted output drops the
// indentation whitespace again.
var containerTags = map[string]bool{
	"html": true, "body": true, "div": true, "blockquote": true,
	"table": true, "colgroup": true, "thead": true, "tbody": true,
	"tfoot": true, "tr": true, "ul": true, "ol": true, "li": true,
	"section": true, "informaltable": true, "tgroup": true,
	"headrows": true, "bodyrows": true, "row": true, "entry": true,
}

// Sanitizer strips the non-content markup word processors attach to a paste:
// comments, scripting and style blocks, vendor namespaces and classes, and
// every inline style declaration outside a small allow-list.
type Sanitizer struct{}

// Transform sanitizes the document in place.
func (s *Sanitizer) Transform(ctx context.Context, doc *markup.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removeComments(doc.Root)
	removeNonContent(doc.Root)
	removeVendorBlocks(doc.Root)
	unwrapVendorElements(doc.Root)
	filterAttributes(doc.Root)
	normalizeWhitespace(doc.Root)
	return nil
}

// removeComments drops comment nodes. Word's conditional blocks
// (<!--[if ...]> ... <![endif]-->) parse as comments, so their payload goes
// with them; the dash-less revealed form parses as two bogus comments around
// live content, leaving the content in the tree.
func removeComments(root *html.Node) {
	for _, n := range markup.Collect(root, func(n *html.Node) bool {
		return n.Type == html.CommentNode
	}) {
		markup.Detach(n)
	}
}

// removeNonContent drops script/style/embedding elements via one selector
// pass.
func removeNonContent(root *html.Node) {
	goquery.NewDocumentFromNode(root).Find(nonContentSelector).Remove()
}

// removeVendorBlocks drops elements marked as non-content by the vendor:
// footnote lists, comment lists, and similar blocks carry an mso-element
// marker as a style declaration or attribute.
func removeVendorBlocks(root *html.Node) {
	for _, n := range markup.Collect(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		return markup.HasAttr(n, "mso-element") || markup.NodeStyle(n).Has("mso-element")
	}) {
		markup.Detach(n)
	}
}

// unwrapVendorElements lifts the children out of vendor-namespace elements
// (o:p, w:sdt, v:shape and friends) and removes the elements themselves.
func unwrapVendorElements(root *html.Node) {
	for _, n := range markup.Collect(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.Contains(n.Data, ":")
	}) {
		markup.Unwrap(n)
	}
}

// filterAttributes applies the attribute, class, and style allow-lists to
// every element.
func filterAttributes(root *html.Node) {
	markup.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		n.Attr = filterAttrList(n.Data, n.Attr)
		filterClass(n)
		filterStyle(n)
		return true
	})
}

func filterAttrList(tag string, attrs []html.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return attrs
	}
	out := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.Contains(key, ":") || strings.HasPrefix(key, "xmlns") || strings.HasPrefix(key, "on") {
			continue
		}
		if globalAttrAllowList[key] || elementAttrAllowList[tag][key] {
			out = append(out, a)
		}
	}
	return out
}

// filterClass strips vendor class tokens (Mso and WordSection prefixes).
// The attribute is removed when no token survives.
func filterClass(n *html.Node) {
	if !markup.HasAttr(n, "class") {
		return
	}
	var kept []string
	for _, tok := range strings.Fields(markup.Attr(n, "class")) {
		if strings.HasPrefix(tok, "Mso") || strings.HasPrefix(tok, "mso") || strings.HasPrefix(tok, "WordSection") {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		markup.RemoveAttr(n, "class")
	} else {
		markup.SetAttr(n, "class", strings.Join(kept, " "))
	}
}

// filterStyle keeps only allow-listed declarations, preserving their order.
// margin-left survives only on elements that also carry a list marker.
func filterStyle(n *html.Node) {
	if !markup.HasAttr(n, "style") {
		return
	}
	style := markup.NodeStyle(n)
	isListMarked := style.Has("mso-list")
	kept := style.Filter(func(d markup.Declaration) bool {
		if d.Property == "margin-left" {
			return isListMarked
		}
		return styleAllowList[d.Property]
	})
	markup.SetNodeStyle(n, kept)
}

// normalizeWhitespace collapses whitespace runs in text nodes to single
// spaces and drops whitespace-only text sitting directly inside structural
// containers. Verbatim content is left untouched.
func normalizeWhitespace(root *html.Node) {
	for _, n := range markup.Collect(root, markup.IsText) {
		if markup.HasAncestor(n, "pre") || markup.HasAncestor(n, "programlisting") {
			continue
		}
		if markup.IsWhitespaceText(n) && n.Parent != nil && containerTags[n.Parent.Data] {
			markup.Detach(n)
			continue
		}
		n.Data = whitespaceRun.ReplaceAllString(n.Data, " ")
	}
}
