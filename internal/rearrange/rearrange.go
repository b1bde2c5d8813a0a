// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rearrange reorders, duplicates, and drops slides. The new
// deck is described by an order spec listing source slide indices:
// "3,0,4" keeps three slides in that order, "0,0,1" duplicates the
// first slide, and any index not listed is removed. Parts reachable
// only through removed slides (their notes, exclusive media) are
// garbage collected so the relationship graph stays closed.
package rearrange

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/opc"
)

const slideContentType = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"

// firstSlideNumericID is the smallest slide id PowerPoint accepts in
// the sldIdLst.
const firstSlideNumericID = 256

// ParseOrder parses an order spec like "3,0,4,1" against the given
// slide count.
func ParseOrder(spec string, slideCount int) ([]int, error) {
	fields := strings.Split(spec, ",")
	order := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("order spec %q has an empty entry", spec)
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("order spec entry %q is not a slide index", f)
		}
		if n < 0 || n >= slideCount {
			return nil, fmt.Errorf("slide index %d out of range: document has %d slide(s)", n, slideCount)
		}
		order = append(order, n)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("order spec %q selects no slides", spec)
	}
	return order, nil
}

// Rearrange rewrites the package so its slides follow order. Source
// indices refer to the current presentation order.
func Rearrange(pkg *opc.Package, order []int) error {
	slideParts, err := extract.SlideParts(pkg)
	if err != nil {
		return err
	}
	for _, src := range order {
		if src < 0 || src >= len(slideParts) {
			return fmt.Errorf("slide index %d out of range: document has %d slide(s)", src, len(slideParts))
		}
	}

	ct, err := pkg.ContentTypes()
	if err != nil {
		return err
	}
	presRels, err := pkg.Relationships(extract.PresentationPart)
	if err != nil {
		return err
	}

	relIDByPart := make(map[string]string)
	for _, rel := range presRels {
		if rel.Type == extract.SlideRelType {
			relIDByPart[opc.ResolveTarget(extract.PresentationPart, rel.Target)] = rel.ID
		}
	}

	nextRID := maxNumericSuffix(presRels) + 1
	nextSlideNum := maxSlideNumber(pkg) + 1

	type slideRef struct {
		part string
		rID  string
	}

	used := make(map[int]bool)
	kept := make(map[string]bool)
	refs := make([]slideRef, 0, len(order))
	var added []opc.Relationship

	for _, src := range order {
		part := slideParts[src]
		if !used[src] {
			used[src] = true
			kept[part] = true
			refs = append(refs, slideRef{part: part, rID: relIDByPart[part]})
			continue
		}

		// Duplicate: fresh part name, copied bytes and rels, new
		// relationship and content-type override.
		newName := fmt.Sprintf("ppt/slides/slide%d.xml", nextSlideNum)
		nextSlideNum++

		data, ok := pkg.Part(part)
		if !ok {
			return fmt.Errorf("slide part %s missing from container", part)
		}
		pkg.SetPart(newName, append([]byte{}, data...))
		if relsData, ok := pkg.Part(opc.RelsPartName(part)); ok {
			pkg.SetPart(opc.RelsPartName(newName), append([]byte{}, relsData...))
		}

		contentType := ct.OverrideFor(part)
		if contentType == "" {
			contentType = slideContentType
		}
		ct.AddOverride(newName, contentType)

		rID := fmt.Sprintf("rId%d", nextRID)
		nextRID++
		added = append(added, opc.Relationship{
			ID:     rID,
			Type:   extract.SlideRelType,
			Target: "slides/" + path.Base(newName),
		})
		kept[newName] = true
		refs = append(refs, slideRef{part: newName, rID: rID})
	}

	// Presentation relationships: non-slide rels survive as-is, kept
	// slides keep their ids, dropped slides disappear, duplicates are
	// appended.
	newRels := make([]opc.Relationship, 0, len(presRels)+len(added))
	for _, rel := range presRels {
		if rel.Type == extract.SlideRelType {
			target := opc.ResolveTarget(extract.PresentationPart, rel.Target)
			if !kept[target] {
				continue
			}
		}
		newRels = append(newRels, rel)
	}
	newRels = append(newRels, added...)

	relsData, err := opc.MarshalRelationships(newRels)
	if err != nil {
		return err
	}
	pkg.SetPart(opc.RelsPartName(extract.PresentationPart), relsData)

	// Splice the regenerated sldIdLst into presentation.xml.
	var list bytes.Buffer
	list.WriteString("<p:sldIdLst>")
	for i, ref := range refs {
		fmt.Fprintf(&list, `<p:sldId id="%d" r:id="%s"/>`, firstSlideNumericID+i, ref.rID)
	}
	list.WriteString("</p:sldIdLst>")

	presData, _ := pkg.Part(extract.PresentationPart)
	span, err := elementSpan(presData, "sldIdLst")
	if err != nil {
		return fmt.Errorf("locating sldIdLst: %w", err)
	}
	var out bytes.Buffer
	out.Write(presData[:span.Start])
	out.Write(list.Bytes())
	out.Write(presData[span.End:])
	pkg.SetPart(extract.PresentationPart, out.Bytes())

	collectGarbage(pkg, ct)

	ctData, err := ct.Marshal()
	if err != nil {
		return err
	}
	pkg.SetPart(opc.ContentTypesPart, ctData)
	return nil
}

// collectGarbage removes parts no longer reachable from the package
// root, along with their rels and content-type overrides.
func collectGarbage(pkg *opc.Package, ct *opc.ContentTypes) {
	reachable := map[string]bool{}
	var visit func(part string)
	visit = func(part string) {
		rels, err := pkg.Relationships(part)
		if err != nil {
			return
		}
		for _, rel := range rels {
			if rel.External() {
				continue
			}
			target := opc.ResolveTarget(part, rel.Target)
			if reachable[target] || !pkg.HasPart(target) {
				continue
			}
			reachable[target] = true
			visit(target)
		}
	}
	visit("")

	for _, name := range pkg.PartNames() {
		if name == opc.ContentTypesPart || isRelsPart(name) {
			continue
		}
		if reachable[name] {
			continue
		}
		pkg.RemovePart(name)
		pkg.RemovePart(opc.RelsPartName(name))
		ct.RemoveOverride(name)
	}

	// Rels parts whose owner vanished.
	for _, name := range pkg.PartNames() {
		if !isRelsPart(name) || name == "_rels/.rels" {
			continue
		}
		if owner, ok := relsOwner(name); ok && !pkg.HasPart(owner) {
			pkg.RemovePart(name)
		}
	}
}

func isRelsPart(name string) bool {
	return name == "_rels/.rels" || strings.Contains(name, "/_rels/")
}

// relsOwner inverts opc.RelsPartName: "ppt/_rels/presentation.xml.rels"
// -> "ppt/presentation.xml".
func relsOwner(relsPart string) (string, bool) {
	dir, base := path.Split(relsPart)
	if !strings.HasSuffix(dir, "_rels/") || !strings.HasSuffix(base, ".rels") {
		return "", false
	}
	return path.Dir(path.Dir(dir)) + "/" + strings.TrimSuffix(base, ".rels"), true
}

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// maxSlideNumber scans existing slide part names for the highest
// numeric suffix, so duplicated slides get fresh names.
func maxSlideNumber(pkg *opc.Package) int {
	maxN := 0
	for _, name := range pkg.PartNames() {
		m := slidePartPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxN {
			maxN = n
		}
	}
	return maxN
}

func maxNumericSuffix(rels []opc.Relationship) int {
	maxN := 0
	for _, rel := range rels {
		n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId"))
		if err == nil && n > maxN {
			maxN = n
		}
	}
	return maxN
}

// elementSpan finds the byte range of the first element with the given
// local name, start tag through end tag.
func elementSpan(data []byte, local string) (extract.Span, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		pos := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return extract.Span{}, fmt.Errorf("element %s not found", local)
		}
		if err != nil {
			return extract.Span{}, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return extract.Span{}, err
			}
			switch tok.(type) {
			case xml.StartElement:
				depth++
			case xml.EndElement:
				depth--
			}
		}
		return extract.Span{Start: pos, End: dec.InputOffset()}, nil
	}
}
