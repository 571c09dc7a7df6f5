// Package html2docbook converts word-processor HTML into clean, structured
// DocBook-style markup.
//
// Pasted or exported HTML from office suites carries vendor styling, fake
// lists built from indented paragraphs, and tables that lean on visual
// spanning. This package strips the noise and rebuilds the document's real
// structure: nested lists from indentation, CALS table models from cell
// spans, emphasis elements from inline styles.
//
// # Quick Start
//
// Create a service and convert content:
//
//	svc := html2docbook.New()
//
//	out, err := svc.Convert(ctx, html2docbook.Input{
//	    HTML: clipboardHTML,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(out)
//
// # Cleanup Pipeline
//
// Conversion runs a fixed sequence of passes over the parsed tree:
//
//  1. Sanitization (scripts, vendor markup, and junk attributes removed)
//  2. List reconstruction (indented list paragraphs rebuilt as ul/ol trees)
//  3. Table transformation (HTML tables rewritten as CALS table models)
//  4. Structural normalization (headings, emphasis, links, code blocks)
//  5. Formatting (indented serialization of the final tree)
//
// A pass that cannot handle its input leaves the document unchanged rather
// than failing the conversion.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := html2docbook.New(
//	    html2docbook.WithIndent("    "),
//	    html2docbook.WithLanguageDetection(false),
//	)
//
// # Markdown
//
// Input.Markdown feeds markdown through goldmark before the pipeline, so
// markdown sources produce the same structured output as HTML ones.
// ConvertToMarkdown goes the other way: it repairs the paste and renders
// it back as markdown instead of structured markup.
//
// # Parallel Processing
//
// A Service holds no mutable state between conversions, but the underlying
// markdown renderer is not safe for concurrent use. For batch work, give
// each worker its own Service instance.
package html2docbook
