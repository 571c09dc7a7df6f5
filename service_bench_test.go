//go:build bench

package html2docbook

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkService_Convert measures the full cleanup pipeline across
// representative paste shapes.
func BenchmarkService_Convert(b *testing.B) {
	service := New()
	ctx := context.Background()

	shapes := []struct {
		name  string
		input Input
	}{
		{"minimal", Input{HTML: "<h1>Hello</h1><p>World</p>"}},
		{"word_paragraphs", Input{HTML: wordPaste(10)}},
		{"fake_lists", Input{HTML: `<h1>List Heavy</h1>` +
			strings.Repeat(`<p class="MsoListParagraph" style="mso-list:l0 level1 lfo1"><span style="mso-list:Ignore">·<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;</span></span>Bullet item text</p>`, 30)}},
		{"layout_tables", Input{HTML: `<h1>Table Heavy</h1>` +
			strings.Repeat(`<table border="0"><tr><td><p class="MsoNormal">Cell content only</p></td></tr></table>`, 20)}},
		{"markdown_input", Input{Markdown: markdownFixture(10)}},
		{"full_document", Input{HTML: wordPaste(25)}},
	}

	for _, shape := range shapes {
		b.Run(shape.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := service.Convert(ctx, shape.input); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkService_ConvertBySize measures how conversion scales with
// document size.
func BenchmarkService_ConvertBySize(b *testing.B) {
	service := New()
	ctx := context.Background()

	for _, sections := range []int{5, 10, 25, 50, 100} {
		input := Input{HTML: wordPaste(sections)}

		b.Run(fmt.Sprintf("sections=%d", sections), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := service.Convert(ctx, input); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkService_ConvertParallel runs concurrent conversions on one
// service. HTML input keeps it off the markdown renderer, which is not
// safe for concurrent use.
func BenchmarkService_ConvertParallel(b *testing.B) {
	service := New()
	ctx := context.Background()
	input := Input{HTML: wordPaste(20)}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := service.Convert(ctx, input); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkService_ConvertToMarkdown measures the markdown export path.
func BenchmarkService_ConvertToMarkdown(b *testing.B) {
	service := New()
	ctx := context.Background()

	for _, sections := range []int{5, 25} {
		input := Input{HTML: wordPaste(sections)}

		b.Run(fmt.Sprintf("sections=%d", sections), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := service.ConvertToMarkdown(ctx, input); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkService_ValidateInput(b *testing.B) {
	service := New()

	for _, shape := range []struct {
		name  string
		input Input
	}{
		{"html_small", Input{HTML: "<p>Test</p>"}},
		{"html_large", Input{HTML: wordPaste(100)}},
		{"markdown", Input{Markdown: "# Test\n\nBody."}},
	} {
		b.Run(shape.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = service.validateInput(shape.input)
			}
		})
	}
}

// wordPaste fabricates a Word-style paste with the artifacts the
// pipeline exists to clean: mso classes, o:p tags, manual list bullets,
// and single-cell layout tables.
func wordPaste(sections int) string {
	var sb strings.Builder
	sb.WriteString(`<html xmlns:o="urn:schemas-microsoft-com:office:office"><body>`)
	sb.WriteString(`<h1><span style="mso-fareast-font-family:Calibri">Document Title</span></h1>`)
	sb.WriteString(`<p class="MsoNormal">Introduction paragraph with <b>bold</b> and <i>italic</i> text.<o:p></o:p></p>`)

	for i := range sections {
		level := (i % 3) + 1
		fmt.Fprintf(&sb, `<h%d>Section %c</h%d>`, level, 'A'+rune(i%26), level)
		sb.WriteString(`<p class="MsoNormal"><span style="font-family:&quot;Calibri&quot;,sans-serif">Paragraph with inherited formatting and a <a href="https://example.com">link</a>.</span><o:p></o:p></p>`)

		sb.WriteString(`<p class="MsoListParagraph" style="mso-list:l0 level1 lfo1"><span style="mso-list:Ignore">·<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;</span></span>Item one</p>`)
		sb.WriteString(`<p class="MsoListParagraph" style="mso-list:l0 level1 lfo1"><span style="mso-list:Ignore">·<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;</span></span>Item two</p>`)

		if i%3 == 0 {
			sb.WriteString(`<table border="0" cellpadding="0"><tr><td><p class="MsoNormal">Layout table content</p></td></tr></table>`)
		}
		if i%5 == 0 {
			sb.WriteString(`<table border="1"><tr><td><p class="MsoNormal"><b>Name</b></p></td><td><p class="MsoNormal"><b>Value</b></p></td></tr>` +
				`<tr><td><p class="MsoNormal">alpha</p></td><td><p class="MsoNormal">1</p></td></tr></table>`)
		}

		sb.WriteString(`<p class="MsoNormal"><o:p>&nbsp;</o:p></p>`)
	}

	sb.WriteString(`</body></html>`)
	return sb.String()
}

// markdownFixture builds markdown input for the rendering path.
func markdownFixture(sections int) string {
	var sb strings.Builder
	sb.WriteString("# Conversion Notes\n\n")
	sb.WriteString("Opening paragraph covering the **scope** and *intent* of the document.\n\n")

	for i := range sections {
		fmt.Fprintf(&sb, "%s Part %d\n\n", strings.Repeat("#", (i%3)+2), i+1)
		sb.WriteString("Body text referencing [the tracker](https://example.com/issues) and the `convert` command.\n\n")
		sb.WriteString("- first point\n- second point\n\n")

		if i%4 == 0 {
			sb.WriteString("```sh\nhtml2docbook convert notes.html\n```\n\n")
		}
		if i%6 == 0 {
			sb.WriteString("| Stage | Output |\n|-------|--------|\n| lists | itemizedlist |\n\n")
		}
	}

	return sb.String()
}
