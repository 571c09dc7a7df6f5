package html2docbook

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// Notes:
// - The pipeline runs fully in-process, so whole-document coverage needs
//   no build tag: these tests feed complete word-processor exports
//   through every stage and both export formats.
// - The fixture reproduces the "filtered web page" shape Word saves:
//   conditional comments, vendor namespaces, marker spans, and layout
//   noise wrapped around the actual content.

// wordExportFixture is a complete Word web-page export: title with a TOC
// anchor, styled emphasis, a two-level fake bullet list, a fake numbered
// list, a spanned data table, an image, and a vendor footnote block.
const wordExportFixture = `<html xmlns:v="urn:schemas-microsoft-com:vml"
xmlns:o="urn:schemas-microsoft-com:office:office"
xmlns:w="urn:schemas-microsoft-com:office:word"
xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta http-equiv="Content-Type" content="text/html; charset=windows-1252">
<meta name="Generator" content="Microsoft Word 15 (filtered)">
<!--[if gte mso 9]><xml>
<o:OfficeDocumentSettings><o:AllowPNG/></o:OfficeDocumentSettings>
</xml><![endif]-->
<style>
<!--
p.MsoNormal, li.MsoNormal {margin:0in; font-size:11.0pt; font-family:"Calibri",sans-serif;}
p.MsoListParagraph {margin-left:.5in;}
-->
</style>
</head>
<body lang="EN-US" style="word-wrap:break-word">
<div class="WordSection1">
<h1><a name="_Toc42718"></a>Annual Review</h1>
<p class="MsoNormal">The year closed with <span style="font-weight:bold;mso-bidi-font-weight:normal">strong results</span> across every region.<o:p></o:p></p>
<p class="MsoNormal"><o:p>&nbsp;</o:p></p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l0 level1 lfo1"><![if !supportLists]><span style="mso-list:Ignore">&#183;<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;&nbsp; </span></span><![endif]>Revenue grew in <i>every</i> quarter</p>
<p class="MsoListParagraph" style="margin-left:1.0in;mso-list:l0 level2 lfo1"><![if !supportLists]><span style="mso-list:Ignore">o<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;&nbsp; </span></span><![endif]>Strongest in the north</p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l0 level1 lfo1"><![if !supportLists]><span style="mso-list:Ignore">&#183;<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;&nbsp; </span></span><![endif]>Costs held flat</p>
<h2>Methodology</h2>
<p class="MsoNormal">Figures follow the <a href="https://example.com/reporting-standard">reporting standard</a>; see <a href="#_Toc42718">above</a> for context.</p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l1 level1 lfo2"><![if !supportLists]><span style="mso-list:Ignore">1.<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;&nbsp; </span></span><![endif]>Collect the raw figures</p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l1 level1 lfo2"><![if !supportLists]><span style="mso-list:Ignore">2.<span style="font:7.0pt &quot;Times New Roman&quot;">&nbsp;&nbsp;&nbsp; </span></span><![endif]>Normalize per region</p>
<table class="MsoTableGrid" border="1" width="100%" style="border-collapse:collapse;mso-table-layout-alt:fixed">
 <thead>
  <tr><th width="50%">Metric</th><th>Q1</th><th>Q2</th></tr>
 </thead>
 <tbody>
  <tr><td><p class="MsoNormal">Revenue</p></td><td><p class="MsoNormal">10</p></td><td><p class="MsoNormal">12</p></td></tr>
  <tr><td rowspan="2"><p class="MsoNormal">Costs</p></td><td>7</td><td>6</td></tr>
  <tr><td colspan="2">R&amp;D combined</td></tr>
 </tbody>
</table>
<p class="MsoNormal"><img width="240" height="120" src="review_files/image001.png" alt="Trend chart"></p>
<div style="mso-element:footnote-list"><hr><p class="MsoFootnoteText">Internal draft only.</p></div>
</div>
</body>
</html>`

// ---------------------------------------------------------------------------
// Full document conversion
// ---------------------------------------------------------------------------

func TestService_Convert_WordExport(t *testing.T) {
	t.Parallel()

	out, err := New().Convert(context.Background(), Input{HTML: wordExportFixture})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	wantBlocks := []string{
		"<section>\n  <title>Annual Review</title>",

		"  <p>The year closed with <b>strong results</b> across every region.</p>",

		"  <ul>\n" +
			"    <li>\n" +
			"      Revenue grew in <i>every</i> quarter\n" +
			"      <ul>\n" +
			"        <li>Strongest in the north</li>\n" +
			"      </ul>\n" +
			"    </li>\n" +
			"    <li>Costs held flat</li>\n" +
			"  </ul>",

		"  <p><b>Methodology</b></p>",

		"  <p>Figures follow the <ulink url=\"https://example.com/reporting-standard\">reporting standard</ulink>; see above for context.</p>",

		"  <ol>\n" +
			"    <li>Collect the raw figures</li>\n" +
			"    <li>Normalize per region</li>\n" +
			"  </ol>",

		"  <informaltable>\n" +
			"    <tgroup cols=\"3\">\n" +
			"      <colspec colname=\"c1\" colwidth=\"50*\"/>\n" +
			"      <colspec colname=\"c2\" colwidth=\"1*\"/>\n" +
			"      <colspec colname=\"c3\" colwidth=\"1*\"/>\n" +
			"      <headrows>\n" +
			"        <row>\n" +
			"          <entry>Metric</entry>\n" +
			"          <entry>Q1</entry>\n" +
			"          <entry>Q2</entry>\n" +
			"        </row>\n" +
			"      </headrows>\n" +
			"      <bodyrows>\n" +
			"        <row>\n" +
			"          <entry>Revenue</entry>\n" +
			"          <entry>10</entry>\n" +
			"          <entry>12</entry>\n" +
			"        </row>\n" +
			"        <row>\n" +
			"          <entry morerows=\"1\">Costs</entry>\n" +
			"          <entry>7</entry>\n" +
			"          <entry>6</entry>\n" +
			"        </row>\n" +
			"        <row>\n" +
			"          <entry namest=\"c2\" nameend=\"c3\">R&amp;D combined</entry>\n" +
			"        </row>\n" +
			"      </bodyrows>\n" +
			"    </tgroup>\n" +
			"  </informaltable>",

		"  <p><img width=\"240\" height=\"120\" src=\"review_files/image001.png\" alt=\"Trend chart\"/></p>",
	}
	for _, want := range wantBlocks {
		if !strings.Contains(out, want) {
			t.Errorf("output missing block:\n%s\ngot:\n%s", want, out)
		}
	}

	wantNot := []string{
		"mso", "Mso", "WordSection", "supportLists",
		"class=", "style=", "<div", "<h2", "<table", "<thead", "<td",
		"_Toc42718", "Internal draft only",
	}
	for _, not := range wantNot {
		if strings.Contains(out, not) {
			t.Errorf("output still contains %q:\n%s", not, out)
		}
	}
}

func TestService_Convert_CodeBlockLayout(t *testing.T) {
	t.Parallel()

	input := `<div class="WordSection1"><h1>Notes</h1>
<p class="MsoNormal">Plain text.</p>
<pre><code class="language-go">x := 1</code></pre>
</div>`

	out, err := New().Convert(context.Background(), Input{HTML: input})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	want := "<section>\n" +
		"  <title>Notes</title>\n" +
		"  <p>Plain text.</p>\n" +
		"  <programlisting language=\"go\">x := 1</programlisting>\n" +
		"</section>\n"
	if out != want {
		t.Errorf("Convert() =\n%s\nwant:\n%s", out, want)
	}
}

func TestService_Convert_CombinedOptions(t *testing.T) {
	t.Parallel()

	var stages []string
	svc := New(
		WithIndent("\t"),
		WithLanguageDetection(false),
		WithStageObserver(func(stage, _ string) { stages = append(stages, stage) }),
	)

	out, err := svc.Convert(context.Background(), Input{
		HTML: "<h1>Build Log</h1><pre><code>make all</code></pre>",
	})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	want := "<section>\n" +
		"\t<title>Build Log</title>\n" +
		"\t<programlisting>make all</programlisting>\n" +
		"</section>\n"
	if out != want {
		t.Errorf("Convert() =\n%s\nwant:\n%s", out, want)
	}
	if len(stages) != 4 {
		t.Errorf("observer saw %d stages, want 4: %v", len(stages), stages)
	}
}

// ---------------------------------------------------------------------------
// Stage progression
// ---------------------------------------------------------------------------

func TestService_Convert_StageProgression(t *testing.T) {
	t.Parallel()

	dumps := map[string]string{}
	svc := New(WithStageObserver(func(stage, content string) {
		dumps[stage] = content
	}))

	if _, err := svc.Convert(context.Background(), Input{HTML: wordExportFixture}); err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	sanitized := dumps[StageSanitize]
	for _, want := range []string{"<h1>", "mso-list:l0", "<table"} {
		if !strings.Contains(sanitized, want) {
			t.Errorf("sanitize dump missing %q:\n%s", want, sanitized)
		}
	}
	for _, not := range []string{"mso-bidi", "class=", "supportLists", "<meta"} {
		if strings.Contains(sanitized, not) {
			t.Errorf("sanitize dump still contains %q:\n%s", not, sanitized)
		}
	}

	listed := dumps[StageLists]
	for _, want := range []string{"<ul>", "<li>Costs held flat</li>", "<ol>", "<table"} {
		if !strings.Contains(listed, want) {
			t.Errorf("lists dump missing %q:\n%s", want, listed)
		}
	}
	if strings.Contains(listed, "\u00b7") {
		t.Errorf("lists dump still contains a marker glyph:\n%s", listed)
	}

	tabled := dumps[StageTables]
	for _, want := range []string{"<informaltable>", "<entry>Metric</entry>", "<h1>"} {
		if !strings.Contains(tabled, want) {
			t.Errorf("tables dump missing %q:\n%s", want, tabled)
		}
	}
	if strings.Contains(tabled, "<table") {
		t.Errorf("tables dump still contains a native table:\n%s", tabled)
	}

	normalized := dumps[StageNormalize]
	for _, want := range []string{"<section>", "<title>Annual Review</title>"} {
		if !strings.Contains(normalized, want) {
			t.Errorf("normalize dump missing %q:\n%s", want, normalized)
		}
	}
	if strings.Contains(normalized, "<div") {
		t.Errorf("normalize dump still contains a container div:\n%s", normalized)
	}
}

// ---------------------------------------------------------------------------
// Markdown export
// ---------------------------------------------------------------------------

func TestService_ConvertToMarkdown_WordExport(t *testing.T) {
	t.Parallel()

	input := `<html xmlns:o="urn:schemas-microsoft-com:office:office"><head>
<!--[if gte mso 9]><xml><o:shapedefaults/></xml><![endif]-->
</head><body><div class="WordSection1">
<h1>Annual Review</h1>
<p class="MsoNormal">The year closed with <b>strong results</b>.<o:p></o:p></p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l0 level1 lfo1"><span style="mso-list:Ignore">&#183;<span>&nbsp;</span></span>Revenue grew</p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l0 level1 lfo1"><span style="mso-list:Ignore">&#183;<span>&nbsp;</span></span>Costs held flat</p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l1 level1 lfo2"><span style="mso-list:Ignore">1.<span>&nbsp;</span></span>Collect the figures</p>
<p class="MsoListParagraph" style="margin-left:.5in;mso-list:l1 level1 lfo2"><span style="mso-list:Ignore">2.<span>&nbsp;</span></span>Publish the report</p>
<p class="MsoNormal">Details in the <a href="https://example.com/archive">archive</a>.</p>
</div></body></html>`

	out, err := New().ConvertToMarkdown(context.Background(), Input{HTML: input})
	if err != nil {
		t.Fatalf("ConvertToMarkdown() unexpected error: %v", err)
	}

	wantContains := []string{
		"# Annual Review",
		"**strong results**",
		"- Revenue grew",
		"- Costs held flat",
		"1. Collect the figures",
		"2. Publish the report",
		"[archive](https://example.com/archive)",
	}
	for _, want := range wantContains {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}

	for _, not := range []string{"mso", "Mso", "<p", "<ul", "\u00b7"} {
		if strings.Contains(out, not) {
			t.Errorf("markdown still contains %q:\n%s", not, out)
		}
	}
}

// ---------------------------------------------------------------------------
// Concurrent use
// ---------------------------------------------------------------------------

// HTML-only conversions never touch the markdown renderer, so one Service
// can serve several goroutines at once. Markdown input needs a Service per
// worker; the pool tests cover that arrangement.
func TestService_Convert_ConcurrentHTML(t *testing.T) {
	t.Parallel()

	svc := New()
	want, err := svc.Convert(context.Background(), Input{HTML: wordExportFixture})
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	const goroutines = 8
	outputs := make([]string, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = svc.Convert(context.Background(), Input{HTML: wordExportFixture})
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Errorf("goroutine %d: Convert() unexpected error: %v", i, errs[i])
			continue
		}
		if outputs[i] != want {
			t.Errorf("goroutine %d: output differs from sequential conversion", i)
		}
	}
}
