// Package markup provides the shared node-tree model for the conversion
// pipeline: parsing, construction, traversal, cloning, and serialization
// helpers over golang.org/x/net/html nodes. Stages operate on one tree
// parsed at pipeline entry; the formatter serializes it once at exit.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps a parsed markup tree.
type Document struct {
	Root *html.Node
}

// voidVocabulary lists vocabulary elements serialized self-closing. The
// parser keeps an unknown self-closing element open, so without repair a
// reparse of formatted output would nest following siblings inside it.
var voidVocabulary = map[string]bool{
	"colspec": true,
}

// Parse parses a markup string into a Document. The underlying parser is
// error-tolerant and builds a tree for any input; an error is only possible
// on reader failure, which cannot happen with a string reader.
func Parse(content string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	liftVoidElements(root)
	return &Document{Root: root}, nil
}

// liftVoidElements moves the parse-time children of void vocabulary
// elements back out as following siblings, restoring the intended flat
// structure. Document order processing unfolds chains of nested voids.
func liftVoidElements(root *html.Node) {
	for _, n := range Collect(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && voidVocabulary[n.Data] && n.FirstChild != nil
	}) {
		for n.LastChild != nil {
			c := n.LastChild
			n.RemoveChild(c)
			n.Parent.InsertBefore(c, n.NextSibling)
		}
	}
}

// Body returns the document's body element, or nil if the tree has none.
func (d *Document) Body() *html.Node {
	return FindFirst(d.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
}

// Clone returns a deep copy of the document. Stage barriers snapshot the
// tree before running a stage so a failed stage can be rolled back.
func (d *Document) Clone() *Document {
	return &Document{Root: CloneNode(d.Root)}
}

// CloneNode returns a deep copy of n and its descendants. The copy has no
// parent or siblings.
func CloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(CloneNode(c))
	}
	return clone
}

// NewElement creates an element node with the given tag and attributes.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// NewText creates a text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Retag renames an element in place, keeping attributes and children.
func Retag(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// IsElement reports whether n is an element node with one of the given tags.
// With no tags it reports whether n is any element node.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsWhitespaceText reports whether n is a text node containing only
// whitespace. Non-breaking spaces count as whitespace.
func IsWhitespaceText(n *html.Node) bool {
	return IsText(n) && strings.TrimSpace(n.Data) == ""
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets the named attribute, replacing an existing value in place so
// attribute order is preserved.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Detach removes n from its parent. Detaching a parentless node is a no-op.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertBefore inserts newChild into parent before ref. A nil ref appends.
func InsertBefore(parent, newChild, ref *html.Node) {
	Detach(newChild)
	parent.InsertBefore(newChild, ref)
}

// ReplaceWith replaces old with the given nodes, preserving position.
func ReplaceWith(old *html.Node, nodes ...*html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	for _, n := range nodes {
		Detach(n)
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)
}

// Unwrap replaces n with its own children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// Reparent moves all children of src to the end of dst.
func Reparent(src, dst *html.Node) {
	for src.FirstChild != nil {
		c := src.FirstChild
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Children returns a snapshot slice of n's children, safe to range over
// while mutating the tree.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns a snapshot of n's element children.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants in document order. Returning false from
// visit skips the node's children.
func Walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// Collect returns a snapshot of all descendants of root (root excluded)
// matching pred, in document order. Mutating the tree afterwards does not
// invalidate the slice.
func Collect(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n != root && pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirst returns the first node in document order (root included)
// matching pred, or nil.
func FindFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// HasAncestor reports whether n has an ancestor element with the given tag.
func HasAncestor(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsElement(p, tag) {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of n.
func Depth(n *html.Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Text returns the concatenated text content of n and its descendants.
func Text(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// Render serializes n and its descendants to markup.
func Render(n *html.Node) string {
	var b strings.Builder
	// Render only fails on writer errors; strings.Builder never errors.
	_ = html.Render(&b, n)
	return b.String()
}

// RenderChildren serializes the children of n to markup.
func RenderChildren(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}
