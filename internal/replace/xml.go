// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// emptyParagraph is spliced in place of a cleared shape's paragraphs.
// The text body and its bodyPr survive, so position and placeholder
// wiring are preserved.
const emptyParagraph = `<a:p/>`

// defaultBulletChar matches the PowerPoint default bullet glyph.
const defaultBulletChar = "•"

// mergeParagraphs resolves the replacement paragraphs against the
// shape's prior formatting. Fields the instruction leaves unset fall
// back to the same-index prior paragraph when there is one, else the
// shape's first paragraph.
func mergeParagraphs(newParas, prior []types.Paragraph) []types.Paragraph {
	merged := make([]types.Paragraph, len(newParas))
	for i, p := range newParas {
		merged[i] = mergeParagraph(p, baseline(prior, i))
	}
	return merged
}

// paragraphsXML renders merged paragraphs as DrawingML.
func paragraphsXML(paras []types.Paragraph) []byte {
	var buf bytes.Buffer
	for _, p := range paras {
		writeParagraph(&buf, p)
	}
	if len(paras) == 0 {
		buf.WriteString(emptyParagraph)
	}
	return buf.Bytes()
}

func baseline(prior []types.Paragraph, i int) types.Paragraph {
	if i < len(prior) {
		return prior[i]
	}
	if len(prior) > 0 {
		return prior[0]
	}
	return types.Paragraph{}
}

// mergeParagraph fills unspecified fields from the baseline. A bullet
// paragraph whose alignment was explicitly requested is forced to LEFT
// (long-standing contract of the replacement format).
func mergeParagraph(p, base types.Paragraph) types.Paragraph {
	merged := types.Paragraph{
		Text:      p.Text,
		Bold:      coalesceBool(p.Bold, base.Bold),
		Italic:    coalesceBool(p.Italic, base.Italic),
		FontSize:  coalesceFloat(p.FontSize, base.FontSize),
		Color:     coalesceString(p.Color, base.Color),
		Bullet:    coalesceBool(p.Bullet, base.Bullet),
		Level:     coalesceInt(p.Level, base.Level),
		Alignment: coalesceString(p.Alignment, base.Alignment),
	}
	if p.Alignment != nil && merged.Bullet != nil && *merged.Bullet {
		left := types.AlignLeft
		merged.Alignment = &left
	}
	return merged
}

// writeParagraph emits one <a:p> element. Text containing "\n" becomes
// runs separated by <a:br/>.
func writeParagraph(buf *bytes.Buffer, p types.Paragraph) {
	if p.Text == "" && !hasParaProps(p) && !hasRunProps(p) {
		buf.WriteString(emptyParagraph)
		return
	}

	buf.WriteString("<a:p>")
	writePPr(buf, p)

	lines := strings.Split(p.Text, "\n")
	for i, line := range lines {
		if i > 0 {
			buf.WriteString("<a:br/>")
		}
		if line == "" {
			continue
		}
		buf.WriteString("<a:r>")
		writeRPr(buf, p)
		buf.WriteString("<a:t>")
		xml.EscapeText(buf, []byte(line))
		buf.WriteString("</a:t></a:r>")
	}

	buf.WriteString("</a:p>")
}

func hasParaProps(p types.Paragraph) bool {
	return p.Alignment != nil || p.Level != nil || p.Bullet != nil
}

func hasRunProps(p types.Paragraph) bool {
	return p.Bold != nil || p.Italic != nil || p.FontSize != nil || p.Color != nil
}

func writePPr(buf *bytes.Buffer, p types.Paragraph) {
	if !hasParaProps(p) {
		return
	}
	buf.WriteString("<a:pPr")
	if p.Level != nil && *p.Level > 0 {
		fmt.Fprintf(buf, ` lvl="%d"`, *p.Level)
	}
	if p.Alignment != nil {
		if a := alignmentAttr(*p.Alignment); a != "" {
			fmt.Fprintf(buf, ` algn="%s"`, a)
		}
	}
	if p.Bullet == nil {
		buf.WriteString("/>")
		return
	}
	buf.WriteString(">")
	if *p.Bullet {
		fmt.Fprintf(buf, `<a:buChar char="%s"/>`, defaultBulletChar)
	} else {
		buf.WriteString("<a:buNone/>")
	}
	buf.WriteString("</a:pPr>")
}

// writeRPr emits only the properties the instruction carries; no
// editor bookkeeping attributes are invented.
func writeRPr(buf *bytes.Buffer, p types.Paragraph) {
	if !hasRunProps(p) {
		return
	}
	buf.WriteString(`<a:rPr`)
	if p.Bold != nil {
		fmt.Fprintf(buf, ` b="%s"`, xmlBoolAttr(*p.Bold))
	}
	if p.Italic != nil {
		fmt.Fprintf(buf, ` i="%s"`, xmlBoolAttr(*p.Italic))
	}
	if p.FontSize != nil && *p.FontSize > 0 {
		fmt.Fprintf(buf, ` sz="%d"`, int(*p.FontSize*100))
	}
	if p.Color == nil {
		buf.WriteString("/>")
		return
	}
	buf.WriteString(">")
	writeColor(buf, *p.Color)
	buf.WriteString("</a:rPr>")
}

func writeColor(buf *bytes.Buffer, color string) {
	buf.WriteString("<a:solidFill>")
	if theme, ok := strings.CutPrefix(color, "theme:"); ok {
		fmt.Fprintf(buf, `<a:schemeClr val="%s"/>`, theme)
	} else {
		fmt.Fprintf(buf, `<a:srgbClr val="%s"/>`, strings.ToUpper(color))
	}
	buf.WriteString("</a:solidFill>")
}

func alignmentAttr(alignment string) string {
	switch alignment {
	case types.AlignLeft:
		return "l"
	case types.AlignCenter:
		return "ctr"
	case types.AlignRight:
		return "r"
	case types.AlignJustify:
		return "just"
	}
	return ""
}

func xmlBoolAttr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func coalesceBool(vals ...*bool) *bool {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func coalesceInt(vals ...*int) *int {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func coalesceFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func coalesceString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
