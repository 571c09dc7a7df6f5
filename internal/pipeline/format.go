package pipeline

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// DefaultIndent is the indent unit used when none is configured.
const DefaultIndent = "  "

// blockTags distinguishes block containers from inline content. Both the
// output vocabulary and the native forms are listed so degraded documents
// still format sanely.
var blockTags = map[string]bool{
	"section": true, "title": true, "p": true,
	"ul": true, "ol": true, "li": true,
	"informaltable": true, "tgroup": true, "colspec": true,
	"headrows": true, "bodyrows": true, "row": true, "entry": true,
	"programlisting": true, "blockquote": true, "hr": true,
	"table": true, "caption": true, "colgroup": true, "col": true,
	"thead": true, "tbody": true, "tfoot": true,
	"tr": true, "td": true, "th": true,
	"div": true, "center": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// simpleBlockTags are leaf containers eligible for single-line emission
// when they hold only inline content.
var simpleBlockTags = map[string]bool{
	"p": true, "li": true, "entry": true, "title": true,
	"td": true, "th": true,
}

// verbatimTags keep their text byte-for-byte.
var verbatimTags = map[string]bool{
	"programlisting": true,
	"pre":            true,
}

// selfCloseTags emit as self-closing elements when empty.
var selfCloseTags = map[string]bool{
	"colspec": true,
}

type fragKind int

const (
	fragOpen fragKind = iota
	fragClose
	fragSelfClose
	fragText
)

// fragment is one tag or text run of the serialized markup.
type fragment struct {
	kind fragKind
	tag  string
	raw  string
}

// Formatter re-serializes the document body as indented, human-readable
// markup: one serialization pass, then a token walk that tracks block depth
// and emits simple blocks on a single line.
type Formatter struct {
	indent string
}

// NewFormatter creates a formatter with the given indent unit; an empty
// unit selects the default.
func NewFormatter(indent string) *Formatter {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Formatter{indent: indent}
}

// Format renders the document body content.
func (f *Formatter) Format(doc *markup.Document) string {
	body := doc.Body()
	if body == nil {
		return ""
	}
	return f.emit(fragments(markup.RenderChildren(body)))
}

// fragments tokenizes serialized markup into tag and text fragments.
func fragments(raw string) []fragment {
	var frags []fragment
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		rawTok := string(z.Raw())
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			frags = append(frags, fragment{kind: fragOpen, tag: string(name), raw: rawTok})
		case html.EndTagToken:
			name, _ := z.TagName()
			frags = append(frags, fragment{kind: fragClose, tag: string(name), raw: rawTok})
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			frags = append(frags, fragment{kind: fragSelfClose, tag: string(name), raw: rawTok})
		case html.TextToken:
			frags = append(frags, fragment{kind: fragText, raw: rawTok})
		}
	}
	return mergeSelfClosing(frags)
}

// mergeSelfClosing folds an immediately closed self-close-eligible element
// into one self-closing fragment.
func mergeSelfClosing(frags []fragment) []fragment {
	out := frags[:0]
	for i := 0; i < len(frags); i++ {
		f := frags[i]
		if f.kind == fragOpen && selfCloseTags[f.tag] && i+1 < len(frags) &&
			frags[i+1].kind == fragClose && frags[i+1].tag == f.tag {
			out = append(out, fragment{
				kind: fragSelfClose,
				tag:  f.tag,
				raw:  strings.TrimSuffix(f.raw, ">") + "/>",
			})
			i++
			continue
		}
		out = append(out, f)
	}
	return out
}

func (f *Formatter) emit(frags []fragment) string {
	var out strings.Builder
	var line strings.Builder
	depth := 0

	writeLine := func(s string) {
		out.WriteString(strings.Repeat(f.indent, depth))
		out.WriteString(s)
		out.WriteByte('\n')
	}
	flushLine := func() {
		s := strings.TrimSpace(line.String())
		line.Reset()
		if s != "" {
			writeLine(s)
		}
	}

	for i := 0; i < len(frags); i++ {
		frag := frags[i]
		switch frag.kind {
		case fragText:
			line.WriteString(collapseText(frag.raw))

		case fragSelfClose:
			if blockTags[frag.tag] {
				flushLine()
				writeLine(frag.raw)
			} else {
				line.WriteString(frag.raw)
			}

		case fragOpen:
			if !blockTags[frag.tag] {
				line.WriteString(frag.raw)
				continue
			}
			flushLine()
			if verbatimTags[frag.tag] {
				i = f.emitVerbatim(&out, frags, i, depth)
				continue
			}
			if simpleBlockTags[frag.tag] {
				if end := simpleBlockEnd(frags, i); end >= 0 {
					writeLine(renderSimpleBlock(frags[i : end+1]))
					i = end
					continue
				}
			}
			writeLine(frag.raw)
			depth++

		case fragClose:
			if !blockTags[frag.tag] {
				line.WriteString(frag.raw)
				continue
			}
			flushLine()
			if depth > 0 {
				depth--
			}
			writeLine(frag.raw)
		}
	}
	flushLine()
	return out.String()
}

// emitVerbatim copies a verbatim container through unchanged, text included,
// and returns the index of its closing fragment.
func (f *Formatter) emitVerbatim(out *strings.Builder, frags []fragment, open, depth int) int {
	out.WriteString(strings.Repeat(f.indent, depth))
	out.WriteString(frags[open].raw)
	nested := 1
	for i := open + 1; i < len(frags); i++ {
		frag := frags[i]
		switch {
		case frag.kind == fragOpen && frag.tag == frags[open].tag:
			nested++
		case frag.kind == fragClose && frag.tag == frags[open].tag:
			nested--
			if nested == 0 {
				out.WriteString(frag.raw)
				out.WriteByte('\n')
				return i
			}
		}
		out.WriteString(frag.raw)
	}
	out.WriteByte('\n')
	return len(frags) - 1
}

// simpleBlockEnd looks ahead from an opening simple-block tag and returns
// the index of its matching close when only inline content lies between, or
// -1 when the container holds block content and must indent normally.
func simpleBlockEnd(frags []fragment, open int) int {
	for i := open + 1; i < len(frags); i++ {
		frag := frags[i]
		switch frag.kind {
		case fragOpen, fragSelfClose:
			if blockTags[frag.tag] {
				return -1
			}
		case fragClose:
			if frag.tag == frags[open].tag {
				return i
			}
			if blockTags[frag.tag] {
				return -1
			}
		}
	}
	return -1
}

// renderSimpleBlock joins a simple block into one line: open tag, trimmed
// inline content, close tag.
func renderSimpleBlock(frags []fragment) string {
	var inner strings.Builder
	for _, frag := range frags[1 : len(frags)-1] {
		if frag.kind == fragText {
			inner.WriteString(collapseText(frag.raw))
		} else {
			inner.WriteString(frag.raw)
		}
	}
	return frags[0].raw + strings.TrimSpace(inner.String()) + frags[len(frags)-1].raw
}

// collapseText collapses whitespace runs in a text fragment to single
// spaces.
func collapseText(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}
