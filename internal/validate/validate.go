// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks a presentation package for structural
// integrity: per-part XML well-formedness, a closed relationship
// graph, and, when an original is supplied, a structural diff against
// it. Findings are returned as data, never raised; callers inspect
// the list and decide whether to proceed. Validation never mutates
// either package.
package validate

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/opc"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding kinds.
const (
	KindXML          = "xml"
	KindRelationship = "relationship"
	KindOrphan       = "orphan"
	KindStructure    = "structure"
)

// Finding is one validation result. Location names the part (or
// relationship) the finding applies to.
type Finding struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Severity Severity `json:"severity" yaml:"severity"`
	Location string   `json:"location" yaml:"location"`
	Message  string   `json:"message" yaml:"message"`
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate runs all checks on the candidate package. original may be
// nil, in which case the structural diff is skipped. An empty result
// signals a pass.
func Validate(candidate, original *opc.Package) []Finding {
	var findings []Finding
	findings = append(findings, checkCriticalParts(candidate)...)
	findings = append(findings, checkWellFormed(candidate)...)
	findings = append(findings, checkRelationships(candidate)...)
	if original != nil {
		findings = append(findings, checkAgainstOriginal(candidate, original)...)
	}
	return findings
}

// criticalParts must exist in any presentation package.
var criticalParts = []string{
	opc.ContentTypesPart,
	"_rels/.rels",
	extract.PresentationPart,
}

func checkCriticalParts(pkg *opc.Package) []Finding {
	var findings []Finding
	for _, name := range criticalParts {
		if !pkg.HasPart(name) {
			findings = append(findings, Finding{
				Kind:     KindStructure,
				Severity: SeverityError,
				Location: name,
				Message:  "critical part missing",
			})
		}
	}
	return findings
}

// checkWellFormed parses every XML part to completion.
func checkWellFormed(pkg *opc.Package) []Finding {
	var findings []Finding
	for _, name := range pkg.PartNames() {
		if !isXMLPart(name) {
			continue
		}
		data, _ := pkg.Part(name)
		if err := wellFormed(data); err != nil {
			findings = append(findings, Finding{
				Kind:     KindXML,
				Severity: SeverityError,
				Location: name,
				Message:  fmt.Sprintf("not well-formed: %v", err),
			})
		}
	}
	return findings
}

func isXMLPart(name string) bool {
	return strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels")
}

func wellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// checkRelationships verifies the relationship graph: every internal
// target must exist (dangling targets are errors), and every part
// should be reachable from the package root (orphans are warnings;
// they bloat the file but do not corrupt it).
func checkRelationships(pkg *opc.Package) []Finding {
	var findings []Finding
	reachable := map[string]bool{}

	var visit func(part string)
	visit = func(part string) {
		rels, err := pkg.Relationships(part)
		if err != nil {
			findings = append(findings, Finding{
				Kind:     KindRelationship,
				Severity: SeverityError,
				Location: opc.RelsPartName(part),
				Message:  err.Error(),
			})
			return
		}
		for _, rel := range rels {
			if rel.External() {
				continue
			}
			target := opc.ResolveTarget(part, rel.Target)
			if !pkg.HasPart(target) {
				findings = append(findings, Finding{
					Kind:     KindRelationship,
					Severity: SeverityError,
					Location: opc.RelsPartName(part),
					Message:  fmt.Sprintf("relationship %s targets missing part %s", rel.ID, target),
				})
				continue
			}
			if reachable[target] {
				continue
			}
			reachable[target] = true
			visit(target)
		}
	}
	visit("")

	for _, name := range pkg.PartNames() {
		if name == opc.ContentTypesPart || isRelsPart(name) || reachable[name] {
			continue
		}
		findings = append(findings, Finding{
			Kind:     KindOrphan,
			Severity: SeverityWarning,
			Location: name,
			Message:  "part has no inbound relationship",
		})
	}
	return findings
}

func isRelsPart(name string) bool {
	return name == "_rels/.rels" || strings.Contains(name, "/_rels/")
}

// checkAgainstOriginal diffs coarse structure against the original
// package: part count and slide count.
func checkAgainstOriginal(candidate, original *opc.Package) []Finding {
	var findings []Finding

	if c, o := candidate.PartCount(), original.PartCount(); c != o {
		findings = append(findings, Finding{
			Kind:     KindStructure,
			Severity: SeverityWarning,
			Location: "",
			Message:  fmt.Sprintf("part count changed: %d -> %d", o, c),
		})
	}

	cSlides, cErr := extract.SlideParts(candidate)
	oSlides, oErr := extract.SlideParts(original)
	if cErr == nil && oErr == nil && len(cSlides) != len(oSlides) {
		findings = append(findings, Finding{
			Kind:     KindStructure,
			Severity: SeverityWarning,
			Location: extract.PresentationPart,
			Message:  fmt.Sprintf("slide count changed: %d -> %d", len(oSlides), len(cSlides)),
		})
	}
	if cErr != nil {
		findings = append(findings, Finding{
			Kind:     KindStructure,
			Severity: SeverityError,
			Location: extract.PresentationPart,
			Message:  fmt.Sprintf("cannot enumerate slides: %v", cErr),
		})
	}
	return findings
}
