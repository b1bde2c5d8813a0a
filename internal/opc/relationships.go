// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opc

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

const relationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship is one entry in a _rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// External reports whether the relationship points outside the package
// (hyperlinks and the like).
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

type relationshipsXML struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Rels    []Relationship `xml:"Relationship"`
}

// RelsPartName returns the _rels part holding relationships for the
// named part. The package root is addressed by the empty string.
func RelsPartName(partName string) string {
	if partName == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// Relationships parses the relationships of the named part. A part
// with no _rels entry has no relationships; that is not an error.
func (p *Package) Relationships(partName string) ([]Relationship, error) {
	data, ok := p.Part(RelsPartName(partName))
	if !ok {
		return nil, nil
	}
	return ParseRelationships(data)
}

// ParseRelationships parses the XML of a _rels part.
func ParseRelationships(data []byte) ([]Relationship, error) {
	var doc relationshipsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	return doc.Rels, nil
}

// MarshalRelationships serializes relationships as a _rels part.
func MarshalRelationships(rels []Relationship) ([]byte, error) {
	doc := relationshipsXML{Xmlns: relationshipsNS, Rels: rels}
	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing relationships: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// ResolveTarget resolves a relationship target relative to its source
// part. Targets beginning with "/" are package-absolute.
func ResolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(sourcePart), target))
}
