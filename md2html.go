package html2docbook

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownShell wraps the rendered fragment in a full document. The
// cleanup stages expect a complete tree with a body, so markdown input
// has to arrive shaped like a paste.
const markdownShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
</head>
<body>
%s
</body>
</html>`

// markdownRenderer is the seam for turning markdown input into HTML.
type markdownRenderer interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// goldmarkRenderer renders markdown with goldmark. GFM covers the
// table and strikethrough syntax that survives word-processor round
// trips; raw HTML stays disabled so pasted script fragments never
// reach the pipeline.
type goldmarkRenderer struct {
	engine goldmark.Markdown
}

func newGoldmarkRenderer() *goldmarkRenderer {
	return &goldmarkRenderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
	}
}

// ToHTML renders markdown into a standalone document. goldmark has no
// context support, so the render runs in a goroutine and the select
// observes cancellation.
func (r *goldmarkRenderer) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rendered string
	done := make(chan error, 1)
	go func() {
		var buf bytes.Buffer
		if err := r.engine.Convert([]byte(content), &buf); err != nil {
			done <- fmt.Errorf("%w: %v", ErrMarkdownConvert, err)
			return
		}
		rendered = fmt.Sprintf(markdownShell, buf.String())
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
