package extract

import (
	"strings"
	"testing"

	"github.com/pdiddy/deck-engine/internal/decktest"
)

// --- slide enumeration ---

func TestSlidePartsOrder(t *testing.T) {
	pkg := decktest.New(
		decktest.TitleShape("One"),
		decktest.TitleShape("Two"),
		decktest.TitleShape("Three"),
	)

	parts, err := SlideParts(pkg)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml", "ppt/slides/slide3.xml"}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(parts), len(want))
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("parts[%d] = %q, want %q", i, parts[i], want[i])
		}
	}
}

func TestSlidePartsMissingPresentation(t *testing.T) {
	pkg := decktest.New()
	pkg.RemovePart("ppt/presentation.xml")

	if _, err := SlideParts(pkg); err == nil {
		t.Fatal("expected error for missing presentation part")
	}
}

func TestSlidePartsUnknownRelationship(t *testing.T) {
	pkg := decktest.New(decktest.TitleShape("One"))
	// Drop the rels part: the sldIdLst still references rId1.
	pkg.RemovePart("ppt/_rels/presentation.xml.rels")

	_, err := SlideParts(pkg)
	if err == nil {
		t.Fatal("expected error for unresolvable slide reference")
	}
	if !strings.Contains(err.Error(), "rId1") {
		t.Errorf("error = %q, should name the relationship", err)
	}
}

// --- extraction ---

func TestExtractContinuesPastBadSlide(t *testing.T) {
	pkg := decktest.New(
		decktest.TitleShape("Good"),
		decktest.TitleShape("Broken"),
		decktest.TitleShape("Also good"),
	)
	pkg.SetPart("ppt/slides/slide2.xml", []byte("<p:sld><unclosed>"))

	m, err := Extract(pkg)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Slides) != 3 {
		t.Fatalf("got %d slides, want 3", len(m.Slides))
	}
	if m.Slides[1].Err == nil {
		t.Error("slide 1 should carry a parse error")
	}
	if m.Slides[0].Err != nil || m.Slides[2].Err != nil {
		t.Error("healthy slides should not carry errors")
	}
	if len(m.Slides[0].Shapes) == 0 || len(m.Slides[2].Shapes) == 0 {
		t.Error("healthy slides should carry shapes")
	}

	if !strings.Contains(m.Slides[1].Err.Error(), "ppt/slides/slide2.xml") {
		t.Errorf("error = %q, should name the slide part", m.Slides[1].Err)
	}
}

// --- shape parsing ---

func TestParseSlideShapeIndexing(t *testing.T) {
	// A picture between two text shapes must consume an index so shape
	// identifiers stay aligned with the slide XML.
	data := []byte(decktest.Slide(
		decktest.TitleShape("First") + decktest.Pic() + decktest.BodyShape("Third"),
	))

	shapes, err := ParseSlide(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(shapes) != 3 {
		t.Fatalf("got %d shapes, want 3", len(shapes))
	}
	if !shapes[0].HasText || shapes[1].HasText || !shapes[2].HasText {
		t.Errorf("HasText = %v,%v,%v, want true,false,true",
			shapes[0].HasText, shapes[1].HasText, shapes[2].HasText)
	}
	for i, sh := range shapes {
		if sh.Index != i {
			t.Errorf("shapes[%d].Index = %d", i, sh.Index)
		}
	}
}

func TestParseSlideGeometryAndPlaceholder(t *testing.T) {
	data := []byte(decktest.Slide(decktest.TitleShape("Hello")))

	shapes, err := ParseSlide(data)
	if err != nil {
		t.Fatal(err)
	}
	sh := shapes[0].Record

	// 838200 EMU / 12700 = 66pt, 10515600 / 12700 = 828pt.
	if sh.Left != 66 {
		t.Errorf("Left = %v, want 66", sh.Left)
	}
	if sh.Width != 828 {
		t.Errorf("Width = %v, want 828", sh.Width)
	}
	if sh.PlaceholderType == nil || *sh.PlaceholderType != "TITLE" {
		t.Errorf("PlaceholderType = %v, want TITLE", sh.PlaceholderType)
	}
}

func TestParseSlideRunFormatting(t *testing.T) {
	tests := []struct {
		name string
		rPr  string
		check func(t *testing.T, p paraCheck)
	}{
		{
			name: "bold and size",
			rPr:  `<a:rPr lang="en-US" b="1" sz="4400"/>`,
			check: func(t *testing.T, p paraCheck) {
				if p.bold == nil || !*p.bold {
					t.Error("Bold should be true")
				}
				if p.size == nil || *p.size != 44 {
					t.Errorf("FontSize = %v, want 44", p.size)
				}
			},
		},
		{
			name: "italic off",
			rPr:  `<a:rPr i="0"/>`,
			check: func(t *testing.T, p paraCheck) {
				if p.italic == nil || *p.italic {
					t.Error("Italic should be explicit false")
				}
				if p.bold != nil {
					t.Error("Bold should stay nil when unspecified")
				}
			},
		},
		{
			name: "srgb color",
			rPr:  `<a:rPr><a:solidFill><a:srgbClr val="ff0000"/></a:solidFill></a:rPr>`,
			check: func(t *testing.T, p paraCheck) {
				if p.color == nil || *p.color != "FF0000" {
					t.Errorf("Color = %v, want FF0000", p.color)
				}
			},
		},
		{
			name: "scheme color",
			rPr:  `<a:rPr><a:solidFill><a:schemeClr val="accent1"/></a:solidFill></a:rPr>`,
			check: func(t *testing.T, p paraCheck) {
				if p.color == nil || *p.color != "theme:accent1" {
					t.Errorf("Color = %v, want theme:accent1", p.color)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(decktest.Slide(
				`<p:sp><p:nvSpPr><p:cNvPr id="2" name="S"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
					`<p:txBody><a:bodyPr/><a:p><a:r>` + tt.rPr + `<a:t>x</a:t></a:r></a:p></p:txBody></p:sp>`))
			shapes, err := ParseSlide(data)
			if err != nil {
				t.Fatal(err)
			}
			p := shapes[0].Record.Paragraphs[0]
			tt.check(t, paraCheck{bold: p.Bold, italic: p.Italic, size: p.FontSize, color: p.Color})
		})
	}
}

type paraCheck struct {
	bold   *bool
	italic *bool
	size   *float64
	color  *string
}

func TestParseSlideParagraphProperties(t *testing.T) {
	data := []byte(decktest.Slide(
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="S"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
			`<p:txBody><a:bodyPr/>` +
			`<a:p><a:pPr algn="ctr" lvl="1"><a:buChar char="-"/></a:pPr><a:r><a:t>bulleted</a:t></a:r></a:p>` +
			`<a:p><a:pPr algn="r"><a:buNone/></a:pPr><a:r><a:t>plain</a:t></a:r></a:p>` +
			`</p:txBody></p:sp>`))

	shapes, err := ParseSlide(data)
	if err != nil {
		t.Fatal(err)
	}
	paras := shapes[0].Record.Paragraphs
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}

	p0 := paras[0]
	if p0.Alignment == nil || *p0.Alignment != "CENTER" {
		t.Errorf("Alignment = %v, want CENTER", p0.Alignment)
	}
	if p0.Level == nil || *p0.Level != 1 {
		t.Errorf("Level = %v, want 1", p0.Level)
	}
	if p0.Bullet == nil || !*p0.Bullet {
		t.Error("Bullet should be true for buChar")
	}

	p1 := paras[1]
	if p1.Alignment == nil || *p1.Alignment != "RIGHT" {
		t.Errorf("Alignment = %v, want RIGHT", p1.Alignment)
	}
	if p1.Bullet == nil || *p1.Bullet {
		t.Error("Bullet should be explicit false for buNone")
	}
	if p1.Level != nil {
		t.Error("Level should stay nil when unspecified")
	}
}

func TestParseSlideRunNormalization(t *testing.T) {
	// Several runs collapse into one paragraph record: text
	// concatenated, formatting from the first run. Line breaks become
	// newlines.
	data := []byte(decktest.Slide(
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="S"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
			`<p:txBody><a:bodyPr/><a:p>` +
			`<a:r><a:rPr b="1"/><a:t>Hello, </a:t></a:r>` +
			`<a:r><a:rPr i="1"/><a:t>world</a:t></a:r>` +
			`<a:br/>` +
			`<a:r><a:t>again</a:t></a:r>` +
			`</a:p></p:txBody></p:sp>`))

	shapes, err := ParseSlide(data)
	if err != nil {
		t.Fatal(err)
	}
	p := shapes[0].Record.Paragraphs[0]
	if p.Text != "Hello, world\nagain" {
		t.Errorf("Text = %q", p.Text)
	}
	if p.Bold == nil || !*p.Bold {
		t.Error("Bold should come from the first run")
	}
	if p.Italic != nil {
		t.Error("Italic from a later run should not leak in")
	}
}

func TestParseSlideListStyleInheritance(t *testing.T) {
	// Formatting absent at run and paragraph level falls back to the
	// shape's lstStyle entry for the paragraph's indent level.
	data := []byte(decktest.Slide(
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="S"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
			`<p:txBody><a:bodyPr/>` +
			`<a:lstStyle>` +
			`<a:lvl1pPr algn="l"><a:defRPr sz="2000" b="1"/></a:lvl1pPr>` +
			`<a:lvl2pPr algn="ctr"><a:defRPr sz="1600"/></a:lvl2pPr>` +
			`</a:lstStyle>` +
			`<a:p><a:r><a:t>level zero</a:t></a:r></a:p>` +
			`<a:p><a:pPr lvl="1"/><a:r><a:rPr sz="1200"/><a:t>level one</a:t></a:r></a:p>` +
			`</p:txBody></p:sp>`))

	shapes, err := ParseSlide(data)
	if err != nil {
		t.Fatal(err)
	}
	paras := shapes[0].Record.Paragraphs

	p0 := paras[0]
	if p0.FontSize == nil || *p0.FontSize != 20 {
		t.Errorf("level 0 FontSize = %v, want 20 (inherited)", p0.FontSize)
	}
	if p0.Bold == nil || !*p0.Bold {
		t.Error("level 0 Bold should inherit from lvl1pPr")
	}
	if p0.Alignment == nil || *p0.Alignment != "LEFT" {
		t.Errorf("level 0 Alignment = %v, want LEFT (inherited)", p0.Alignment)
	}

	p1 := paras[1]
	if p1.FontSize == nil || *p1.FontSize != 12 {
		t.Errorf("level 1 FontSize = %v, want 12 (run beats lstStyle)", p1.FontSize)
	}
	if p1.Alignment == nil || *p1.Alignment != "CENTER" {
		t.Errorf("level 1 Alignment = %v, want CENTER (from lvl2pPr)", p1.Alignment)
	}
}

func TestParseSlideParaSpanCoversParagraphs(t *testing.T) {
	slide := decktest.Slide(decktest.BodyShape("one", "two"))
	data := []byte(slide)

	shapes, err := ParseSlide(data)
	if err != nil {
		t.Fatal(err)
	}
	sh := shapes[0]
	if sh.ParaSpan.End <= sh.ParaSpan.Start {
		t.Fatalf("empty paragraph span: %+v", sh.ParaSpan)
	}
	covered := string(data[sh.ParaSpan.Start:sh.ParaSpan.End])
	if !strings.HasPrefix(covered, "<a:p>") || !strings.HasSuffix(covered, "</a:p>") {
		t.Errorf("span covers %q, want paragraph elements only", covered)
	}
	if strings.Contains(covered, "bodyPr") || strings.Contains(covered, "lstStyle") {
		t.Errorf("span must not cover body properties: %q", covered)
	}
}

// --- fingerprint ---

func TestFingerprintStableAndStructureSensitive(t *testing.T) {
	build := func(shapes ...string) *Model {
		m, err := Extract(decktest.New(shapes...))
		if err != nil {
			t.Fatal(err)
		}
		return m
	}

	a := build(decktest.TitleShape("Hello"), decktest.BodyShape("x"))
	b := build(decktest.TitleShape("Completely different text"), decktest.BodyShape("y"))
	c := build(decktest.TitleShape("Hello"))

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint should ignore text content")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint should change with slide count")
	}
	if len(a.Fingerprint()) != 16 {
		t.Errorf("fingerprint length = %d, want 16 hex chars", len(a.Fingerprint()))
	}

	// Both of a's slides carry one shape, so a reorder leaves every
	// count unchanged; the part name sequence must still distinguish it.
	swapped := &Model{Slides: []Slide{
		{Index: 0, PartName: a.Slides[1].PartName, Shapes: a.Slides[1].Shapes},
		{Index: 1, PartName: a.Slides[0].PartName, Shapes: a.Slides[0].Shapes},
	}}
	if a.Fingerprint() == swapped.Fingerprint() {
		t.Error("fingerprint should change when identically-shaped slides are reordered")
	}
}
