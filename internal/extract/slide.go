// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// XML namespaces used in PresentationML and DrawingML.
const (
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// emuPerPoint is the EMU-to-point divisor (914400 EMU per inch, 72
// points per inch).
const emuPerPoint = 12700

// Span is a half-open byte range [Start, End) within a slide part.
type Span struct {
	Start int64
	End   int64
}

// Shape is one top-level element of the slide's shape tree. Index
// counts every top-level shape element (sp, pic, graphicFrame, grpSp,
// cxnSp) in document order, so shape identifiers stay aligned with the
// slide XML even when non-text shapes sit between text boxes. Only
// shapes with a text body carry paragraphs and a paragraph span.
type Shape struct {
	Index  int
	Record types.Shape

	// HasText reports whether the shape element contains a text body.
	HasText bool

	// ParaSpan covers the contiguous run of paragraph elements inside
	// the text body, so an edit can be spliced in without
	// re-serializing the rest of the slide.
	ParaSpan Span
}

// ParseSlide walks one slide part and returns its top-level shapes in
// document order.
func ParseSlide(data []byte) ([]Shape, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var shapes []Shape
	inTree := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed slide XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inTree {
				if t.Name.Local == "spTree" {
					inTree = true
				}
				continue
			}
			switch t.Name.Local {
			case "sp":
				sh, err := parseSp(dec)
				if err != nil {
					return nil, err
				}
				sh.Index = len(shapes)
				shapes = append(shapes, *sh)
			case "pic", "graphicFrame", "grpSp", "cxnSp":
				if err := skipElement(dec); err != nil {
					return nil, err
				}
				shapes = append(shapes, Shape{Index: len(shapes)})
			default:
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if inTree && t.Name.Local == "spTree" {
				inTree = false
			}
		}
	}

	return shapes, nil
}

// TextShapes filters a slide's shapes down to the text-bearing ones.
func TextShapes(shapes []Shape) []Shape {
	var out []Shape
	for _, s := range shapes {
		if s.HasText {
			out = append(out, s)
		}
	}
	return out
}

// slideRelIDs reads the ordered slide relationship ids from the
// sldIdLst of presentation.xml. Each sldId carries both a numeric id
// attribute and an r:id; they are told apart by namespace.
func slideRelIDs(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var ids []string
	inList := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed presentation XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "sldIdLst":
				inList = true
			case inList && t.Name.Local == "sldId":
				for _, a := range t.Attr {
					if a.Name.Local == "id" && a.Name.Space == nsR {
						ids = append(ids, a.Value)
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "sldIdLst" {
				inList = false
			}
		}
	}
	return ids, nil
}

// runProps holds run-level formatting at one inheritance level.
type runProps struct {
	bold     *bool
	italic   *bool
	fontSize *float64
	color    *string
}

// paraProps holds paragraph-level formatting at one inheritance level.
type paraProps struct {
	align  *string
	level  *int
	bullet *bool
	def    runProps
}

// lstStyle maps indent level to the shape's list-style defaults.
type lstStyle map[int]paraProps

// parseSp consumes one sp element and builds its shape record.
func parseSp(dec *xml.Decoder) (*Shape, error) {
	sh := &Shape{}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("shape element truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "xfrm":
				if err := parseXfrm(dec, &sh.Record); err != nil {
					return nil, err
				}
				depth--
			case "ph":
				for _, a := range t.Attr {
					if a.Name.Local == "type" {
						sh.Record.PlaceholderType = placeholderTag(a.Value)
					}
				}
			case "txBody":
				if err := parseTxBody(dec, sh); err != nil {
					return nil, err
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return sh, nil
}

// parseTxBody consumes a txBody element, filling the shape's paragraphs
// and paragraph span.
func parseTxBody(dec *xml.Decoder, sh *Shape) error {
	sh.HasText = true

	var styles lstStyle
	type rawPara struct {
		text string
		pp   paraProps
		run  *runProps
	}
	var raws []rawPara

	depth := 1
	first := true
	for depth > 0 {
		pos := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("text body truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "lstStyle":
				ls, err := parseLstStyle(dec)
				if err != nil {
					return err
				}
				styles = ls
				depth--
			case "p":
				text, pp, run, err := parseParagraph(dec)
				if err != nil {
					return err
				}
				if first {
					sh.ParaSpan.Start = pos
					first = false
				}
				sh.ParaSpan.End = dec.InputOffset()
				raws = append(raws, rawPara{text: text, pp: pp, run: run})
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	sh.Record.Paragraphs = make([]types.Paragraph, len(raws))
	for i, r := range raws {
		sh.Record.Paragraphs[i] = resolveParagraph(r.text, r.pp, r.run, styles)
	}
	return nil
}

// parseParagraph consumes one a:p element. Runs are normalized into a
// single record: text concatenated, formatting taken from the first run.
func parseParagraph(dec *xml.Decoder) (string, paraProps, *runProps, error) {
	var pp paraProps
	var firstRun *runProps
	var text strings.Builder

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", pp, nil, fmt.Errorf("paragraph truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "pPr":
				p, err := parsePPr(dec, t)
				if err != nil {
					return "", pp, nil, err
				}
				pp = p
				depth--
			case "r", "fld":
				rp, runText, err := parseRun(dec)
				if err != nil {
					return "", pp, nil, err
				}
				if firstRun == nil {
					firstRun = &rp
				}
				text.WriteString(runText)
				depth--
			case "br":
				text.WriteString("\n")
			}
		case xml.EndElement:
			depth--
		}
	}

	return text.String(), pp, firstRun, nil
}

// parsePPr consumes a pPr (or lvlNpPr) element.
func parsePPr(dec *xml.Decoder, start xml.StartElement) (paraProps, error) {
	var pp paraProps
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "algn":
			if al := alignmentTag(a.Value); al != nil {
				pp.align = al
			}
		case "lvl":
			if lvl, err := strconv.Atoi(a.Value); err == nil && lvl >= 0 {
				pp.level = &lvl
			}
		}
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return pp, fmt.Errorf("paragraph properties truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "buNone":
				off := false
				pp.bullet = &off
			case "buChar", "buAutoNum":
				on := true
				pp.bullet = &on
			case "defRPr":
				rp, err := parseRPr(dec, t)
				if err != nil {
					return pp, err
				}
				pp.def = rp
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return pp, nil
}

// parseRun consumes an a:r or a:fld element.
func parseRun(dec *xml.Decoder) (runProps, string, error) {
	var rp runProps
	var text strings.Builder

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return rp, "", fmt.Errorf("text run truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "rPr":
				p, err := parseRPr(dec, t)
				if err != nil {
					return rp, "", err
				}
				rp = p
				depth--
			case "t":
				txt, err := readElementText(dec)
				if err != nil {
					return rp, "", err
				}
				text.WriteString(txt)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return rp, text.String(), nil
}

// parseRPr consumes an rPr or defRPr element.
func parseRPr(dec *xml.Decoder, start xml.StartElement) (runProps, error) {
	var rp runProps
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "b":
			v := xmlBool(a.Value)
			rp.bold = &v
		case "i":
			v := xmlBool(a.Value)
			rp.italic = &v
		case "sz":
			if hundredths, err := strconv.Atoi(a.Value); err == nil {
				pts := float64(hundredths) / 100
				rp.fontSize = &pts
			}
		}
	}

	depth := 1
	inFill := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return rp, fmt.Errorf("run properties truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "solidFill":
				inFill = true
			case "srgbClr":
				if inFill && rp.color == nil {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							c := strings.ToUpper(a.Value)
							rp.color = &c
						}
					}
				}
			case "schemeClr":
				if inFill && rp.color == nil {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							c := "theme:" + a.Value
							rp.color = &c
						}
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "solidFill" {
				inFill = false
			}
			depth--
		}
	}
	return rp, nil
}

// parseLstStyle consumes a lstStyle element into per-level defaults.
func parseLstStyle(dec *xml.Decoder) (lstStyle, error) {
	styles := make(lstStyle)
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("list style truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if lvl, ok := listLevel(t.Name.Local); ok {
				pp, err := parsePPr(dec, t)
				if err != nil {
					return nil, err
				}
				styles[lvl] = pp
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return styles, nil
}

// listLevel maps "lvl1pPr".."lvl9pPr" to a 0-based indent level.
func listLevel(local string) (int, bool) {
	if !strings.HasPrefix(local, "lvl") || !strings.HasSuffix(local, "pPr") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(local, "lvl"), "pPr"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// parseXfrm consumes an xfrm element, converting EMU to points.
func parseXfrm(dec *xml.Decoder, rec *types.Shape) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("transform element truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "off":
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "x":
						rec.Left = emuAttrToPoints(a.Value)
					case "y":
						rec.Top = emuAttrToPoints(a.Value)
					}
				}
			case "ext":
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "cx":
						rec.Width = emuAttrToPoints(a.Value)
					case "cy":
						rec.Height = emuAttrToPoints(a.Value)
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// resolveParagraph merges formatting levels, first non-null winning:
// run, then paragraph defaults, then the shape's list style for the
// paragraph's indent level.
func resolveParagraph(text string, pp paraProps, run *runProps, styles lstStyle) types.Paragraph {
	level := 0
	if pp.level != nil {
		level = *pp.level
	}
	ls := styles[level]

	var r runProps
	if run != nil {
		r = *run
	}

	return types.Paragraph{
		Text:      text,
		Bold:      firstBool(r.bold, pp.def.bold, ls.def.bold),
		Italic:    firstBool(r.italic, pp.def.italic, ls.def.italic),
		FontSize:  firstFloat(r.fontSize, pp.def.fontSize, ls.def.fontSize),
		Color:     firstString(r.color, pp.def.color, ls.def.color),
		Bullet:    firstBool(pp.bullet, ls.bullet),
		Level:     pp.level,
		Alignment: firstString(pp.align, ls.align),
	}
}

func firstBool(vals ...*bool) *bool {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// placeholderTag maps an OOXML ph type attribute to a placeholder tag.
// Types outside the inventory vocabulary (date, footer, slide number)
// map to nil, same as manually placed shapes.
func placeholderTag(phType string) *string {
	var tag string
	switch phType {
	case "title", "ctrTitle":
		tag = types.PlaceholderTitle
	case "body", "subTitle":
		tag = types.PlaceholderBody
	case "pic", "clipArt":
		tag = types.PlaceholderImage
	default:
		return nil
	}
	return &tag
}

// alignmentTag maps an OOXML algn attribute to an alignment value.
func alignmentTag(algn string) *string {
	var tag string
	switch algn {
	case "l":
		tag = types.AlignLeft
	case "ctr":
		tag = types.AlignCenter
	case "r":
		tag = types.AlignRight
	case "just":
		tag = types.AlignJustify
	default:
		return nil
	}
	return &tag
}

func xmlBool(v string) bool {
	return v == "1" || v == "true"
}

func emuAttrToPoints(v string) float64 {
	emu, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return float64(emu) / emuPerPoint
}

// readElementText collects the character data of the current element.
func readElementText(dec *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("text element truncated: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// skipElement consumes tokens through the end of the current element.
func skipElement(dec *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("element truncated: %w", err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}
