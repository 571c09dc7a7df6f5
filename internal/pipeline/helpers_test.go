package pipeline

import (
	"context"
	"testing"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// parseDoc parses test markup, failing the test on error.
func parseDoc(t *testing.T, content string) *markup.Document {
	t.Helper()

	doc, err := markup.Parse(content)
	if err != nil {
		t.Fatalf("Parse(%q) unexpected error: %v", content, err)
	}
	return doc
}

// runStage applies a stage to the document, failing the test on error.
func runStage(t *testing.T, s Stage, doc *markup.Document) {
	t.Helper()

	if err := s.Transform(context.Background(), doc); err != nil {
		t.Fatalf("Transform() unexpected error: %v", err)
	}
}

// bodyMarkup renders the document body content back to markup.
func bodyMarkup(t *testing.T, doc *markup.Document) string {
	t.Helper()

	body := doc.Body()
	if body == nil {
		t.Fatal("document has no body")
	}
	return markup.RenderChildren(body)
}

// transform parses, applies the stage, and renders the result in one step.
func transform(t *testing.T, s Stage, content string) string {
	t.Helper()

	doc := parseDoc(t, content)
	runStage(t, s, doc)
	return bodyMarkup(t, doc)
}
