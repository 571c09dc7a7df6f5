package pipeline

import (
	"context"

	"github.com/avrile/go-html2docbook/internal/markup"
)

// Stage is a single pass over the parsed document tree. Implementations
// mutate the tree in place and report failures through the returned error;
// callers decide whether a failed stage degrades to its input.
type Stage interface {
	Transform(ctx context.Context, doc *markup.Document) error
}
