package pipeline

import (
	"testing"
)

// formatted parses the input and renders it through a formatter with the
// given indent unit.
func formatted(t *testing.T, indent, input string) string {
	t.Helper()

	doc := parseDoc(t, input)
	return NewFormatter(indent).Format(doc)
}

func TestFormatter_SimpleBlocksOnOneLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraph with inline markup",
			input: "<p>Hello <b>World</b></p>",
			want:  "<p>Hello <b>World</b></p>\n",
		},
		{
			name:  "whitespace collapsed and trimmed",
			input: "<p>  a\n   b  </p>",
			want:  "<p>a b</p>\n",
		},
		{
			name:  "entities kept escaped",
			input: "<p>a &amp; b &lt; c</p>",
			want:  "<p>a &amp; b &lt; c</p>\n",
		},
		{
			name:  "inline content without a block wrapper",
			input: "text <b>x</b>",
			want:  "text <b>x</b>\n",
		},
		{
			name:  "empty document",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatted(t, "", tt.input); got != tt.want {
				t.Errorf("formatted = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatter_SectionIndentation(t *testing.T) {
	t.Parallel()

	input := "<section><title>T</title><p>x</p></section>"
	want := "<section>\n" +
		"  <title>T</title>\n" +
		"  <p>x</p>\n" +
		"</section>\n"

	if got := formatted(t, "", input); got != want {
		t.Errorf("formatted =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatter_NestedLists(t *testing.T) {
	t.Parallel()

	input := "<ul><li>a<ul><li>b</li></ul></li></ul>"
	want := "<ul>\n" +
		"  <li>\n" +
		"    a\n" +
		"    <ul>\n" +
		"      <li>b</li>\n" +
		"    </ul>\n" +
		"  </li>\n" +
		"</ul>\n"

	if got := formatted(t, "", input); got != want {
		t.Errorf("formatted =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatter_TableModel(t *testing.T) {
	t.Parallel()

	input := `<informaltable><tgroup cols="1">` +
		`<colspec colname="c1" colwidth="1*"></colspec>` +
		`<bodyrows><row><entry>a</entry></row></bodyrows>` +
		`</tgroup></informaltable>`

	want := "<informaltable>\n" +
		"  <tgroup cols=\"1\">\n" +
		"    <colspec colname=\"c1\" colwidth=\"1*\"/>\n" +
		"    <bodyrows>\n" +
		"      <row>\n" +
		"        <entry>a</entry>\n" +
		"      </row>\n" +
		"    </bodyrows>\n" +
		"  </tgroup>\n" +
		"</informaltable>\n"

	if got := formatted(t, "", input); got != want {
		t.Errorf("formatted =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatter_VerbatimContent(t *testing.T) {
	t.Parallel()

	t.Run("text kept byte for byte", func(t *testing.T) {
		t.Parallel()

		input := "<programlisting>for {\n  spin()\n}</programlisting>"
		want := "<programlisting>for {\n  spin()\n}</programlisting>\n"
		if got := formatted(t, "", input); got != want {
			t.Errorf("formatted = %q, want %q", got, want)
		}
	})

	t.Run("nested in a section", func(t *testing.T) {
		t.Parallel()

		input := "<section><title>T</title><programlisting>a\n b</programlisting></section>"
		want := "<section>\n" +
			"  <title>T</title>\n" +
			"  <programlisting>a\n b</programlisting>\n" +
			"</section>\n"
		if got := formatted(t, "", input); got != want {
			t.Errorf("formatted = %q, want %q", got, want)
		}
	})
}

func TestFormatter_VoidBlocksOnOwnLine(t *testing.T) {
	t.Parallel()

	input := "<p>a</p><hr/><p>b</p>"
	want := "<p>a</p>\n<hr/>\n<p>b</p>\n"

	if got := formatted(t, "", input); got != want {
		t.Errorf("formatted = %q, want %q", got, want)
	}
}

func TestFormatter_CustomIndent(t *testing.T) {
	t.Parallel()

	input := "<section><title>T</title></section>"
	want := "<section>\n\t<title>T</title>\n</section>\n"

	if got := formatted(t, "\t", input); got != want {
		t.Errorf("formatted = %q, want %q", got, want)
	}
}
