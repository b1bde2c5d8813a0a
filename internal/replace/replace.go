// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package replace applies a sparse replacement instruction to a
// presentation package. Edits are spliced into the affected slide
// parts at the byte level; every other part, and every untouched
// slide, is left byte-for-byte as it was.
package replace

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/inventory"
	"github.com/pdiddy/deck-engine/internal/opc"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// ReferenceError reports an instruction that does not match the
// current document: a stale snapshot, or a slide/shape identifier that
// does not exist. It signals the caller extracted the inventory from a
// different structure than the one being edited.
type ReferenceError struct {
	SlideID string
	ShapeID string
	Reason  string
}

func (e *ReferenceError) Error() string {
	loc := e.SlideID
	if e.ShapeID != "" {
		loc += "/" + e.ShapeID
	}
	if loc == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", loc, e.Reason)
}

// edit is one byte-range replacement within a slide part.
type edit struct {
	span extract.Span
	xml  []byte
}

// Apply rewrites the text of the shapes named in the instruction. In
// full mode, text shapes absent from the instruction are cleared (one
// empty paragraph; the shape element survives). In selective mode they
// are not touched at all.
func Apply(pkg *opc.Package, instr *types.Inventory, mode types.ReplaceMode) error {
	switch mode {
	case types.ModeFull, types.ModeSelective:
	default:
		return fmt.Errorf("unknown replace mode %q", mode)
	}

	m, err := extract.Extract(pkg)
	if err != nil {
		return err
	}

	if instr.Snapshot != "" && instr.Snapshot != m.Fingerprint() {
		return &ReferenceError{
			Reason: fmt.Sprintf("snapshot %s does not match document structure %s; re-extract the inventory and retry",
				instr.Snapshot, m.Fingerprint()),
		}
	}

	if err := checkReferences(m, instr); err != nil {
		return err
	}

	for i := range m.Slides {
		slide := &m.Slides[i]
		slideID := inventory.SlideID(slide.Index)
		named := instr.Slides[slideID]
		if named == nil && mode == types.ModeSelective {
			continue
		}
		if slide.Err != nil {
			// Unparseable slide: nothing can be located in it. The
			// reference check already rejected instructions naming it.
			continue
		}

		edits := slideEdits(slide, named, mode)
		if len(edits) == 0 {
			continue
		}

		data, ok := pkg.Part(slide.PartName)
		if !ok {
			return fmt.Errorf("slide part %s missing from container", slide.PartName)
		}
		pkg.SetPart(slide.PartName, splice(data, edits))
	}
	return nil
}

// checkReferences rejects instructions naming slides or shapes absent
// from the model before anything is modified.
func checkReferences(m *extract.Model, instr *types.Inventory) error {
	for slideID, shapes := range instr.Slides {
		idx, err := inventory.ParseSlideID(slideID)
		if err != nil {
			return err
		}
		if idx >= len(m.Slides) {
			return &ReferenceError{SlideID: slideID, Reason: fmt.Sprintf("document has %d slide(s)", len(m.Slides))}
		}
		slide := m.Slides[idx]
		if slide.Err != nil {
			return &ReferenceError{SlideID: slideID, Reason: fmt.Sprintf("slide failed to parse: %v", slide.Err)}
		}
		for shapeID := range shapes {
			sIdx, err := inventory.ParseShapeID(shapeID)
			if err != nil {
				return fmt.Errorf("in %s: %w", slideID, err)
			}
			if !hasTextShape(slide, sIdx) {
				return &ReferenceError{SlideID: slideID, ShapeID: shapeID, Reason: "no such text shape"}
			}
		}
	}
	return nil
}

func hasTextShape(slide extract.Slide, index int) bool {
	for _, sh := range slide.Shapes {
		if sh.Index == index {
			return sh.HasText && sh.ParaSpan.End > sh.ParaSpan.Start
		}
	}
	return false
}

// slideEdits builds the byte edits for one slide. named may be nil in
// full mode, in which case every text shape is cleared.
func slideEdits(slide *extract.Slide, named map[string]types.Shape, mode types.ReplaceMode) []edit {
	var edits []edit
	for _, sh := range slide.Shapes {
		if !sh.HasText || sh.ParaSpan.End <= sh.ParaSpan.Start {
			continue
		}
		repl, ok := named[inventory.ShapeID(sh.Index)]
		switch {
		case ok:
			merged := mergeParagraphs(repl.Paragraphs, sh.Record.Paragraphs)
			if reflect.DeepEqual(merged, sh.Record.Paragraphs) {
				// Identity replacement: keep the original bytes so an
				// unmodified inventory round-trips without churn.
				continue
			}
			edits = append(edits, edit{span: sh.ParaSpan, xml: paragraphsXML(merged)})
		case mode == types.ModeFull:
			edits = append(edits, edit{span: sh.ParaSpan, xml: []byte(emptyParagraph)})
		}
	}
	return edits
}

// splice applies edits back to front so earlier spans stay valid.
func splice(data []byte, edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].span.Start > edits[j].span.Start
	})
	out := make([]byte, len(data))
	copy(out, data)
	for _, e := range edits {
		tail := append([]byte{}, out[e.span.End:]...)
		out = append(out[:e.span.Start], e.xml...)
		out = append(out, tail...)
	}
	return out
}
