// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decktest builds minimal in-memory presentation packages for
// tests. The fixtures carry just enough OOXML plumbing (content types,
// relationships, a sldIdLst) to satisfy the extraction and validation
// paths.
package decktest

import (
	"bytes"
	"fmt"

	"github.com/pdiddy/deck-engine/internal/opc"
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	presentationType = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	slideType        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	officeDocRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	slideRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

// New builds a presentation package with one slide per argument; each
// string is the inner XML of that slide's shape tree.
func New(slideShapes ...string) *opc.Package {
	pkg := opc.New()

	var ct bytes.Buffer
	ct.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	ct.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	ct.WriteString(fmt.Sprintf(`<Override PartName="/ppt/presentation.xml" ContentType="%s"/>`, presentationType))
	for i := range slideShapes {
		ct.WriteString(fmt.Sprintf(`<Override PartName="/ppt/slides/slide%d.xml" ContentType="%s"/>`, i+1, slideType))
	}
	ct.WriteString(`</Types>`)
	pkg.SetPart(opc.ContentTypesPart, ct.Bytes())

	pkg.SetPart("_rels/.rels", []byte(fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="%s" Target="ppt/presentation.xml"/></Relationships>`,
		officeDocRelType)))

	var sldIDs, rels bytes.Buffer
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	rels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i, shapes := range slideShapes {
		rID := fmt.Sprintf("rId%d", i+1)
		sldIDs.WriteString(fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, 256+i, rID))
		rels.WriteString(fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="slides/slide%d.xml"/>`, rID, slideRelType, i+1))
		pkg.SetPart(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), []byte(Slide(shapes)))
	}
	rels.WriteString(`</Relationships>`)

	pkg.SetPart("ppt/presentation.xml", []byte(fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:sldIdLst>%s</p:sldIdLst></p:presentation>`,
		nsA, nsR, nsP, sldIDs.String())))
	pkg.SetPart("ppt/_rels/presentation.xml.rels", rels.Bytes())

	return pkg
}

// Slide wraps shape-tree XML in a complete slide part.
func Slide(shapes string) string {
	return fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>%s</p:spTree></p:cSld></p:sld>`,
		nsA, nsR, nsP, shapes)
}

// TitleShape is a title placeholder with one bold 44pt paragraph.
func TitleShape(text string) string {
	return fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:spPr><a:xfrm><a:off x="838200" y="365125"/><a:ext cx="10515600" cy="1325563"/></a:xfrm></p:spPr><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:rPr lang="en-US" b="1" sz="4400"/><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
		text)
}

// BodyShape is a body placeholder with one bulleted paragraph per
// argument.
func BodyShape(paras ...string) string {
	var body bytes.Buffer
	for _, p := range paras {
		body.WriteString(fmt.Sprintf(
			`<a:p><a:pPr><a:buChar char="&#8226;"/></a:pPr><a:r><a:rPr lang="en-US" sz="1800"/><a:t>%s</a:t></a:r></a:p>`, p))
	}
	return fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Content 2"/><p:cNvSpPr/><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr><p:spPr><a:xfrm><a:off x="838200" y="1825625"/><a:ext cx="10515600" cy="4351338"/></a:xfrm></p:spPr><p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp>`,
		body.String())
}

// Pic is a top-level picture element: a shape slot with no text body.
func Pic() string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture 3"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill><a:blip/></p:blipFill><p:spPr/></p:pic>`
}
