package html2docbook

import (
	"context"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// markdownExporter is the seam for rendering cleaned HTML as markdown.
type markdownExporter interface {
	ToMarkdown(ctx context.Context, content string) (string, error)
}

// htmlToMarkdownExporter is the production exporter, backed by the
// html-to-markdown library with its commonmark defaults.
type htmlToMarkdownExporter struct{}

// ToMarkdown renders cleaned HTML as markdown, honoring ctx. On
// cancellation the context error comes back and the render result is
// discarded.
func (e *htmlToMarkdownExporter) ToMarkdown(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rendered string
	done := make(chan error, 1)
	go func() {
		md, err := htmltomarkdown.ConvertString(content)
		if err != nil {
			done <- fmt.Errorf("%w: %v", ErrMarkdownExport, err)
			return
		}
		rendered = md
		done <- nil
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", err
		}
		return rendered, nil
	}
}
