// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opc

import (
	"encoding/xml"
	"fmt"
)

// ContentTypesPart is the fixed name of the content types stream.
const ContentTypesPart = "[Content_Types].xml"

const contentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

// CTDefault maps a file extension to a content type.
type CTDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// CTOverride maps one part (named with a leading slash) to a content type.
type CTOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypes is the parsed [Content_Types].xml stream.
type ContentTypes struct {
	XMLName   xml.Name     `xml:"Types"`
	Xmlns     string       `xml:"xmlns,attr"`
	Defaults  []CTDefault  `xml:"Default"`
	Overrides []CTOverride `xml:"Override"`
}

// ContentTypes parses the package's content types stream.
func (p *Package) ContentTypes() (*ContentTypes, error) {
	data, ok := p.Part(ContentTypesPart)
	if !ok {
		return nil, fmt.Errorf("package has no %s", ContentTypesPart)
	}
	var ct ContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ContentTypesPart, err)
	}
	return &ct, nil
}

// OverrideFor returns the override content type of the named part
// ("ppt/slides/slide1.xml", no leading slash), or "" if none is declared.
func (ct *ContentTypes) OverrideFor(partName string) string {
	want := "/" + partName
	for _, o := range ct.Overrides {
		if o.PartName == want {
			return o.ContentType
		}
	}
	return ""
}

// AddOverride declares a content type for the named part.
func (ct *ContentTypes) AddOverride(partName, contentType string) {
	ct.Overrides = append(ct.Overrides, CTOverride{
		PartName:    "/" + partName,
		ContentType: contentType,
	})
}

// RemoveOverride drops the override for the named part, if present.
func (ct *ContentTypes) RemoveOverride(partName string) {
	want := "/" + partName
	for i, o := range ct.Overrides {
		if o.PartName == want {
			ct.Overrides = append(ct.Overrides[:i], ct.Overrides[i+1:]...)
			return
		}
	}
}

// Marshal serializes the content types stream.
func (ct *ContentTypes) Marshal() ([]byte, error) {
	ct.Xmlns = contentTypesNS
	body, err := xml.Marshal(ct)
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", ContentTypesPart, err)
	}
	return append([]byte(xml.Header), body...), nil
}
