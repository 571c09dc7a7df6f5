package pipeline

import (
	"strings"
	"testing"
)

// Notes:
// - Language auto-detection is asserted through its contract (explicit
//   class wins, empty input yields nothing) rather than pinning lexer
//   scores, which vary across chroma releases.

func normalizer() *StructuralNormalizer {
	return NewStructuralNormalizer(false)
}

func TestStructuralNormalizer_ContainerConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "inline container becomes paragraph",
			input: "<div>text</div>",
			want:  "<p>text</p>",
		},
		{
			name:  "container with block children unwrapped",
			input: "<div><p>a</p><p>b</p></div>",
			want:  "<p>a</p><p>b</p>",
		},
		{
			name:  "nested wrappers handled innermost first",
			input: "<div><div>inner</div></div>",
			want:  "<p>inner</p>",
		},
		{
			name:  "center treated like div",
			input: "<center>x</center>",
			want:  "<p>x</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuralNormalizer_Headings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "first heading becomes section title",
			input: "<h1>A</h1><p>x</p><h2>B</h2><p>y</p>",
			want:  "<section><title>A</title><p>x</p><p><b>B</b></p><p>y</p></section>",
		},
		{
			name:  "no top-level h1 means no section",
			input: "<h2>B</h2><p>x</p>",
			want:  "<p><b>B</b></p><p>x</p>",
		},
		{
			name:  "second h1 demoted",
			input: "<h1>A</h1><h1>B</h1>",
			want:  "<section><title>A</title><p><b>B</b></p></section>",
		},
		{
			name:  "nested h1 demoted in place",
			input: "<blockquote><h1>T</h1></blockquote>",
			want:  "<blockquote><p><b>T</b></p></blockquote>",
		},
		{
			name:  "content before the title stays outside the section",
			input: "<p>pre</p><h1>T</h1><p>post</p>",
			want:  "<p>pre</p><section><title>T</title><p>post</p></section>",
		},
		{
			name:  "title flattens inline markup to text",
			input: "<h1>The <i>Big</i> Plan</h1><p>x</p>",
			want:  "<section><title>The Big Plan</title><p>x</p></section>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuralNormalizer_EmphasisStyles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold span",
			input: `<p><span style="font-weight:bold">x</span></p>`,
			want:  "<p><b>x</b></p>",
		},
		{
			name:  "bold italic span nests outermost bold",
			input: `<p><span style="font-style:italic;font-weight:bold">x</span></p>`,
			want:  "<p><b><i>x</i></b></p>",
		},
		{
			name:  "underline span",
			input: `<p><span style="text-decoration:underline">x</span></p>`,
			want:  "<p><u>x</u></p>",
		},
		{
			name:  "numeric weight bold",
			input: `<p><span style="font-weight:700">x</span></p>`,
			want:  "<p><b>x</b></p>",
		},
		{
			name:  "normal numeric weight unwrapped",
			input: `<p><span style="font-weight:400">x</span></p>`,
			want:  "<p>x</p>",
		},
		{
			name:  "styled paragraph keeps its tag",
			input: `<p style="font-weight:bold">x</p>`,
			want:  "<p><b>x</b></p>",
		},
		{
			name:  "alternate spellings canonicalized",
			input: "<p><strong>a</strong> and <em>b</em></p>",
			want:  "<p><b>a</b> and <i>b</i></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuralNormalizer_EmphasisCleanup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "nested identical emphasis unwrapped",
			input: "<p><b>a<b>b</b></b></p>",
			want:  "<p><b>ab</b></p>",
		},
		{
			name:  "deep same-kind chain collapses",
			input: "<p><b><b><b>x</b></b></b></p>",
			want:  "<p><b>x</b></p>",
		},
		{
			name:  "identical ancestor across another kind kept",
			input: "<p><b><i><b>x</b></i></b></p>",
			want:  "<p><b><i><b>x</b></i></b></p>",
		},
		{
			name:  "adjacent same-kind merged across whitespace",
			input: "<p><b>one</b> <b>two</b></p>",
			want:  "<p><b>one two</b></p>",
		},
		{
			name:  "chain merges into one wrapper",
			input: "<p><b>a</b><b>b</b><b>c</b></p>",
			want:  "<p><b>abc</b></p>",
		},
		{
			name:  "different kinds stay separate",
			input: "<p><b>a</b><i>b</i></p>",
			want:  "<p><b>a</b><i>b</i></p>",
		},
		{
			name:  "non-whitespace text blocks the merge",
			input: "<p><b>a</b>, <b>b</b></p>",
			want:  "<p><b>a</b>, <b>b</b></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuralNormalizer_Links(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "external link becomes ulink",
			input: `<p><a href="https://example.com/doc">docs</a></p>`,
			want:  `<p><ulink url="https://example.com/doc">docs</ulink></p>`,
		},
		{
			name:  "fragment link unwrapped",
			input: `<p><a href="#sec1">see below</a></p>`,
			want:  "<p>see below</p>",
		},
		{
			name:  "named anchor unwrapped",
			input: `<p><a name="mark">label</a></p>`,
			want:  "<p>label</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuralNormalizer_EmptyElements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty paragraph removed",
			input: "<p></p><p>keep</p>",
			want:  "<p>keep</p>",
		},
		{
			name:  "cascading removal empties the wrapper too",
			input: "<p><span> </span></p><p>keep</p>",
			want:  "<p>keep</p>",
		},
		{
			name:  "image keeps its paragraph",
			input: `<p><img src="x.png"/></p>`,
			want:  `<p><img src="x.png"/></p>`,
		},
		{
			name:  "structural containers survive empty",
			input: "<ul></ul><p>keep</p>",
			want:  "<ul></ul><p>keep</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructuralNormalizer_CodeBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "pre becomes programlisting",
			input: "<pre>x := 1\ny := 2</pre>",
			want:  "<programlisting>x := 1\ny := 2</programlisting>",
		},
		{
			name:  "fenced code class declares the language",
			input: `<pre><code class="language-go">func main() {}</code></pre>`,
			want:  `<programlisting language="go">func main() {}</programlisting>`,
		},
		{
			name:  "lone code child unwrapped without class",
			input: "<pre><code>plain</code></pre>",
			want:  "<programlisting>plain</programlisting>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transform(t, normalizer(), tt.input); got != tt.want {
				t.Errorf("normalized = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	if got := detectLanguage(""); got != "" {
		t.Errorf("detectLanguage(empty) = %q, want empty", got)
	}
	if got := detectLanguage("   \n\t"); got != "" {
		t.Errorf("detectLanguage(whitespace) = %q, want empty", got)
	}
	// Analysis output is advisory: whatever it names must be lower-case.
	if got := detectLanguage("package main\n\nfunc main() {}\n"); got != strings.ToLower(got) {
		t.Errorf("detectLanguage() = %q, want lower-case", got)
	}
}

func TestStructuralNormalizer_DetectionFillsLanguage(t *testing.T) {
	t.Parallel()

	code := "def greet(name):\n    return 'hi ' + name\n"
	doc := parseDoc(t, "<pre>"+code+"</pre>")
	runStage(t, NewStructuralNormalizer(true), doc)

	got := bodyMarkup(t, doc)
	want := detectLanguage(code)
	if want == "" {
		if strings.Contains(got, "language=") {
			t.Errorf("language attribute set despite no detection:\n%s", got)
		}
		return
	}
	if !strings.Contains(got, `language="`+want+`"`) {
		t.Errorf("detected language %q not applied:\n%s", want, got)
	}
}
