// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the domain types shared across deck-engine stages.
package types

// Placeholder type tags for shapes that fill a template role. Shapes
// placed manually carry no tag.
const (
	PlaceholderTitle = "TITLE"
	PlaceholderBody  = "BODY"
	PlaceholderImage = "IMAGE"
)

// Alignment values for Paragraph.Alignment.
const (
	AlignLeft    = "LEFT"
	AlignCenter  = "CENTER"
	AlignRight   = "RIGHT"
	AlignJustify = "JUSTIFY"
)

// Paragraph is the normalized record of one paragraph in a text shape.
// Formatting fields are pointers: nil means the value is inherited from
// the surrounding style and was not set explicitly at this level.
type Paragraph struct {
	// Text is the concatenated run text. Line breaks within the
	// paragraph appear as "\n".
	Text string `json:"text" yaml:"text"`

	// Bold and Italic are the run-level emphasis flags.
	Bold   *bool `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic *bool `json:"italic,omitempty" yaml:"italic,omitempty"`

	// FontSize is the font size in points.
	FontSize *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`

	// Color is either a hex RGB value ("FF0000") or a theme color
	// reference ("theme:accent1").
	Color *string `json:"color,omitempty" yaml:"color,omitempty"`

	// Bullet reports whether the paragraph carries a bullet marker.
	Bullet *bool `json:"bullet,omitempty" yaml:"bullet,omitempty"`

	// Level is the indent level, 0-based.
	Level *int `json:"level,omitempty" yaml:"level,omitempty"`

	// Alignment is one of LEFT, CENTER, RIGHT, JUSTIFY.
	Alignment *string `json:"alignment,omitempty" yaml:"alignment,omitempty"`
}

// Shape is the normalized record of one text-bearing shape on a slide.
// Position and size are in points.
type Shape struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// PlaceholderType is TITLE, BODY, or IMAGE for template
	// placeholders; nil for manually placed shapes.
	PlaceholderType *string `json:"placeholder_type,omitempty" yaml:"placeholder_type,omitempty"`

	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`
}

// Inventory is the serialized snapshot of a presentation's text-bearing
// shapes. Slide and shape identifiers ("slide-0", "shape-2") are
// positional indices assigned at extraction time; they are not stable
// across structural edits. The Snapshot fingerprint ties an inventory
// to the structure it was extracted from so a stale inventory can be
// rejected instead of silently misapplied.
type Inventory struct {
	// Snapshot is a fingerprint of the document structure (slide and
	// shape counts) at extraction time.
	Snapshot string

	// Slides maps slide id -> shape id -> shape record.
	Slides map[string]map[string]Shape

	// Errors maps slide id -> parse error message for slides whose XML
	// could not be read. Such slides have no entry in Slides.
	Errors map[string]string
}

// SlideCount returns the number of slides present in the inventory,
// including slides that failed to parse.
func (inv *Inventory) SlideCount() int {
	return len(inv.Slides) + len(inv.Errors)
}
