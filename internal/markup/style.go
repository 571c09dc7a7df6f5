package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Declaration is one property/value pair from an inline style attribute.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered list of declarations. Order and duplicates are
// preserved: filtering must keep the relative order the word processor
// emitted, and later duplicates override earlier ones on lookup.
type Style []Declaration

// ParseStyle parses the value of a style attribute. Properties are
// lower-cased; values keep their original case. Empty segments are skipped.
func ParseStyle(s string) Style {
	var style Style
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, val, _ := strings.Cut(part, ":")
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		style = append(style, Declaration{Property: prop, Value: strings.TrimSpace(val)})
	}
	return style
}

// Get returns the value of the last declaration of the given property.
func (s Style) Get(property string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Property == property {
			return s[i].Value, true
		}
	}
	return "", false
}

// Has reports whether the property is declared at least once.
func (s Style) Has(property string) bool {
	_, ok := s.Get(property)
	return ok
}

// Filter returns the declarations satisfying keep, preserving order.
func (s Style) Filter(keep func(Declaration) bool) Style {
	var out Style
	for _, d := range s {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// String serializes the declarations back to attribute form.
func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.Property+":"+d.Value)
	}
	return strings.Join(parts, ";")
}

// NodeStyle parses n's style attribute.
func NodeStyle(n *html.Node) Style {
	return ParseStyle(Attr(n, "style"))
}

// SetNodeStyle writes the style back to n, removing the attribute entirely
// when no declarations remain.
func SetNodeStyle(n *html.Node, s Style) {
	if len(s) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", s.String())
}
