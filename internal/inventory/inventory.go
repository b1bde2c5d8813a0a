// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inventory serializes the extracted document model to the
// textual inventory interchange format and reads it (and sparse
// replacement instructions of the same shape) back. Serialization is
// pure and deterministic: the same model always yields the same bytes.
//
// The format is a two-level mapping ("slide-N" -> "shape-M" -> shape
// record) plus a top-level "snapshot" fingerprint and an "errors" map
// for slides whose XML failed to parse. Identifiers are positional and
// only valid against the structure captured by the snapshot; callers
// must re-extract after any structural edit.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/pkg/types"
)

const (
	slidePrefix = "slide-"
	shapePrefix = "shape-"

	snapshotKey = "snapshot"
	errorsKey   = "errors"
)

// SlideID formats a positional slide identifier.
func SlideID(index int) string {
	return slidePrefix + strconv.Itoa(index)
}

// ShapeID formats a positional shape identifier.
func ShapeID(index int) string {
	return shapePrefix + strconv.Itoa(index)
}

// ParseSlideID returns the index of a "slide-N" identifier.
func ParseSlideID(id string) (int, error) {
	return parseID(id, slidePrefix)
}

// ParseShapeID returns the index of a "shape-M" identifier.
func ParseShapeID(id string) (int, error) {
	return parseID(id, shapePrefix)
}

func parseID(id, prefix string) (int, error) {
	if !strings.HasPrefix(id, prefix) {
		return 0, fmt.Errorf("identifier %q does not start with %q", id, prefix)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("identifier %q has no valid index", id)
	}
	return n, nil
}

// Build converts an extracted model into an inventory. Shapes without
// a text body are excluded; their indices are skipped, keeping shape
// identifiers aligned with the slide XML.
func Build(m *extract.Model) *types.Inventory {
	inv := &types.Inventory{
		Snapshot: m.Fingerprint(),
		Slides:   make(map[string]map[string]types.Shape),
		Errors:   make(map[string]string),
	}
	for _, slide := range m.Slides {
		id := SlideID(slide.Index)
		if slide.Err != nil {
			inv.Errors[id] = slide.Err.Error()
			continue
		}
		shapes := make(map[string]types.Shape)
		for _, sh := range slide.Shapes {
			if !sh.HasText {
				continue
			}
			shapes[ShapeID(sh.Index)] = sh.Record
		}
		inv.Slides[id] = shapes
	}
	return inv
}

// Marshal serializes an inventory. Map keys are emitted in sorted
// order by both encoders, so output is deterministic.
func Marshal(inv *types.Inventory, format types.InventoryFormat) ([]byte, error) {
	doc := make(map[string]any, len(inv.Slides)+2)
	if inv.Snapshot != "" {
		doc[snapshotKey] = inv.Snapshot
	}
	if len(inv.Errors) > 0 {
		doc[errorsKey] = inv.Errors
	}
	for slideID, shapes := range inv.Slides {
		doc[slideID] = shapes
	}

	switch format {
	case types.FormatYAML:
		return yaml.Marshal(doc)
	case types.FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("serializing inventory: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown inventory format %q", format)
	}
}

// Unmarshal parses an inventory or a sparse replacement instruction.
// Keys other than "snapshot", "errors", and "slide-N" are rejected so
// a typo in a slide identifier cannot silently drop an edit.
func Unmarshal(data []byte, format types.InventoryFormat) (*types.Inventory, error) {
	switch format {
	case types.FormatYAML:
		return unmarshalYAML(data)
	case types.FormatJSON, "":
		return unmarshalJSON(data)
	default:
		return nil, fmt.Errorf("unknown inventory format %q", format)
	}
}

func unmarshalJSON(data []byte) (*types.Inventory, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}

	inv := &types.Inventory{Slides: make(map[string]map[string]types.Shape)}
	for key, raw := range doc {
		switch {
		case key == snapshotKey:
			if err := json.Unmarshal(raw, &inv.Snapshot); err != nil {
				return nil, fmt.Errorf("parsing inventory snapshot: %w", err)
			}
		case key == errorsKey:
			if err := json.Unmarshal(raw, &inv.Errors); err != nil {
				return nil, fmt.Errorf("parsing inventory errors: %w", err)
			}
		case strings.HasPrefix(key, slidePrefix):
			if _, err := ParseSlideID(key); err != nil {
				return nil, err
			}
			shapes := make(map[string]types.Shape)
			if err := json.Unmarshal(raw, &shapes); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
			if err := checkShapeIDs(key, shapes); err != nil {
				return nil, err
			}
			inv.Slides[key] = shapes
		default:
			return nil, fmt.Errorf("unknown inventory key %q", key)
		}
	}
	return inv, nil
}

func unmarshalYAML(data []byte) (*types.Inventory, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}

	inv := &types.Inventory{Slides: make(map[string]map[string]types.Shape)}
	for key, node := range doc {
		switch {
		case key == snapshotKey:
			if err := node.Decode(&inv.Snapshot); err != nil {
				return nil, fmt.Errorf("parsing inventory snapshot: %w", err)
			}
		case key == errorsKey:
			if err := node.Decode(&inv.Errors); err != nil {
				return nil, fmt.Errorf("parsing inventory errors: %w", err)
			}
		case strings.HasPrefix(key, slidePrefix):
			if _, err := ParseSlideID(key); err != nil {
				return nil, err
			}
			shapes := make(map[string]types.Shape)
			if err := node.Decode(&shapes); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
			if err := checkShapeIDs(key, shapes); err != nil {
				return nil, err
			}
			inv.Slides[key] = shapes
		default:
			return nil, fmt.Errorf("unknown inventory key %q", key)
		}
	}
	return inv, nil
}

func checkShapeIDs(slideID string, shapes map[string]types.Shape) error {
	for id := range shapes {
		if _, err := ParseShapeID(id); err != nil {
			return fmt.Errorf("in %s: %w", slideID, err)
		}
	}
	return nil
}

// WriteFile serializes an inventory to path.
func WriteFile(inv *types.Inventory, path string, format types.InventoryFormat) error {
	data, err := Marshal(inv, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing inventory %s: %w", path, err)
	}
	return nil
}

// ReadFile reads an inventory or replacement instruction from path.
// The format is inferred from the extension; anything that is not
// .yaml/.yml is treated as JSON.
func ReadFile(path string) (*types.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	format := types.FormatJSON
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		format = types.FormatYAML
	}
	return Unmarshal(data, format)
}
