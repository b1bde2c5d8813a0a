// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opc reads and writes Office Open XML containers (the zip
// packaging shared by pptx, docx, and xlsx). A Package is an in-memory
// mapping from part name to bytes; parts not touched by an edit are
// written back byte-for-byte, so a text-only edit never perturbs
// media, layouts, or other slides.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
)

// Package is an ordered collection of named parts. Part names are zip
// member paths without a leading slash ("ppt/slides/slide1.xml").
type Package struct {
	parts map[string][]byte
	order []string
}

// New returns an empty package.
func New() *Package {
	return &Package{parts: make(map[string][]byte)}
}

// ReadFile opens the OOXML container at path and loads every part into
// memory. The archive handle is released before returning, on all exit
// paths.
func ReadFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package %s: %w", path, err)
	}
	pkg, err := ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("reading package %s: %w", path, err)
	}
	return pkg, nil
}

// ReadBytes parses an OOXML container from memory.
func ReadBytes(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip container: %w", err)
	}

	pkg := New()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := pkg.parts[f.Name]; dup {
			return nil, fmt.Errorf("duplicate part %s in container", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading part %s: %w", f.Name, err)
		}
		pkg.parts[f.Name] = content
		pkg.order = append(pkg.order, f.Name)
	}
	return pkg, nil
}

// Part returns the bytes of the named part and whether it exists.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// HasPart reports whether the named part exists.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart replaces the named part's bytes, or appends a new part.
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// RemovePart deletes the named part. Removing a missing part is a no-op.
func (p *Package) RemovePart(name string) {
	if _, ok := p.parts[name]; !ok {
		return
	}
	delete(p.parts, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// PartNames returns the part names in their original container order.
func (p *Package) PartNames() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// PartCount returns the number of parts.
func (p *Package) PartCount() int {
	return len(p.order)
}

// WriteTo serializes the package as a zip container, parts in their
// original order.
func (p *Package) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range p.order {
		fw, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("creating zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			zw.Close()
			return fmt.Errorf("writing zip entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing zip container: %w", err)
	}
	return nil
}

// WriteFile serializes the package to a new container file at path.
func (p *Package) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating package %s: %w", path, err)
	}
	if err := p.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing package %s: %w", path, err)
	}
	return nil
}
