// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract walks the slide parts of a presentation package and
// builds the normalized document model: slides, text-bearing shapes,
// and paragraph formatting. Formatting attributes are read with
// inheritance fallback (run level, then paragraph defaults, then the
// shape's list style); values inherited from layouts or masters stay
// nil rather than being guessed.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pdiddy/deck-engine/internal/opc"
)

const (
	PresentationPart = "ppt/presentation.xml"
	SlideRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

// ParseError reports a slide part whose XML could not be read. It is
// fatal for that slide only; extraction continues with the rest of the
// deck.
type ParseError struct {
	Part string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Part, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Model is the extracted document model, slides in presentation order.
type Model struct {
	Slides []Slide
}

// Slide is one slide part. Err is set when the part failed to parse;
// such slides carry no shapes.
type Slide struct {
	Index    int
	PartName string
	Shapes   []Shape
	Err      error
}

// Extract builds the document model for the whole package.
func Extract(pkg *opc.Package) (*Model, error) {
	partNames, err := SlideParts(pkg)
	if err != nil {
		return nil, err
	}

	m := &Model{Slides: make([]Slide, len(partNames))}
	for i, name := range partNames {
		m.Slides[i] = Slide{Index: i, PartName: name}
		data, ok := pkg.Part(name)
		if !ok {
			m.Slides[i].Err = &ParseError{Part: name, Err: fmt.Errorf("part missing from container")}
			continue
		}
		shapes, err := ParseSlide(data)
		if err != nil {
			m.Slides[i].Err = &ParseError{Part: name, Err: err}
			continue
		}
		m.Slides[i].Shapes = shapes
	}
	return m, nil
}

// SlideParts returns the slide part names in presentation order, read
// from the sldIdLst of presentation.xml and the presentation
// relationships.
func SlideParts(pkg *opc.Package) ([]string, error) {
	data, ok := pkg.Part(PresentationPart)
	if !ok {
		return nil, fmt.Errorf("package has no %s", PresentationPart)
	}

	rIDs, err := slideRelIDs(data)
	if err != nil {
		return nil, &ParseError{Part: PresentationPart, Err: err}
	}

	rels, err := pkg.Relationships(PresentationPart)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]opc.Relationship, len(rels))
	for _, rel := range rels {
		byID[rel.ID] = rel
	}

	parts := make([]string, 0, len(rIDs))
	for _, rID := range rIDs {
		rel, ok := byID[rID]
		if !ok {
			return nil, fmt.Errorf("presentation references unknown relationship %s", rID)
		}
		if rel.Type != SlideRelType {
			return nil, fmt.Errorf("relationship %s is not a slide (%s)", rID, rel.Type)
		}
		parts = append(parts, opc.ResolveTarget(PresentationPart, rel.Target))
	}
	return parts, nil
}

// Fingerprint derives the structural snapshot fingerprint of a model:
// slide count plus, per slide, the part name and shape count. Part
// names survive text edits but any reorder, drop, or duplication
// changes the sequence, so an inventory carrying this fingerprint is
// rejected when the deck structure has changed underneath it.
func (m *Model) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "slides=%d", len(m.Slides))
	for _, s := range m.Slides {
		fmt.Fprintf(&b, ";%d:%s:%d", s.Index, s.PartName, len(s.Shapes))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
