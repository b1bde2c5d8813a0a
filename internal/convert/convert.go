// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert wraps the external document converters: LibreOffice
// for pdf and plain-text output, Poppler's pdftoppm for raster slide
// previews. Converter internals are out of scope here; each backend is
// "input path in, output paths out, or error".
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/deck-engine/internal/tools"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// Target selects the conversion output format.
type Target string

const (
	TargetPDF Target = "pdf"
	TargetPNG Target = "png"
	TargetTXT Target = "txt"
)

const (
	defaultSoffice  = "soffice"
	defaultPdftoppm = "pdftoppm"
)

// Converter transforms a presentation file into one or more output
// files under outDir and returns their paths.
type Converter interface {
	Convert(ctx context.Context, inputPath, outDir string) ([]string, error)
}

// For builds the converter for a target, verifying the required
// binaries resolve before any work starts.
func For(target Target, cfg types.ToolsConfig, runner tools.Runner) (Converter, error) {
	switch target {
	case TargetPDF, TargetTXT:
		return newSoffice(cfg, runner, string(target))
	case TargetPNG:
		soffice, err := newSoffice(cfg, runner, "pdf")
		if err != nil {
			return nil, err
		}
		bin := cfg.PdftoppmPath
		if bin == "" {
			bin = defaultPdftoppm
		}
		if _, err := runner.LookPath(bin); err != nil {
			return nil, fmt.Errorf("pdftoppm not available: %w", err)
		}
		return &pngConverter{pdf: soffice, runner: runner, bin: bin}, nil
	default:
		return nil, fmt.Errorf("unknown conversion target %q", target)
	}
}

// sofficeConverter drives LibreOffice headless conversion.
type sofficeConverter struct {
	runner tools.Runner
	bin    string
	to     string
}

func newSoffice(cfg types.ToolsConfig, runner tools.Runner, to string) (*sofficeConverter, error) {
	bin := cfg.SofficePath
	if bin == "" {
		bin = defaultSoffice
	}
	if _, err := runner.LookPath(bin); err != nil {
		return nil, fmt.Errorf("LibreOffice not available: %w", err)
	}
	return &sofficeConverter{runner: runner, bin: bin, to: to}, nil
}

func (c *sofficeConverter) Convert(ctx context.Context, inputPath, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	err := c.runner.Run(ctx, c.bin, "--headless", "--convert-to", c.to, "--outdir", outDir, inputPath)
	if err != nil {
		return nil, fmt.Errorf("converting %s to %s: %w", inputPath, c.to, err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	out := filepath.Join(outDir, base+"."+c.to)
	if _, err := os.Stat(out); err != nil {
		return nil, fmt.Errorf("converter produced no output at %s: %w", out, err)
	}
	return []string{out}, nil
}

// pngConverter renders slide previews: LibreOffice to pdf, then
// pdftoppm to one png per page.
type pngConverter struct {
	pdf    *sofficeConverter
	runner tools.Runner
	bin    string
}

func (c *pngConverter) Convert(ctx context.Context, inputPath, outDir string) ([]string, error) {
	pdfs, err := c.pdf.Convert(ctx, inputPath, outDir)
	if err != nil {
		return nil, err
	}
	pdfPath := pdfs[0]
	defer os.Remove(pdfPath)

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	prefix := filepath.Join(outDir, base)
	if err := c.runner.Run(ctx, c.bin, "-png", pdfPath, prefix); err != nil {
		return nil, fmt.Errorf("rendering %s previews: %w", inputPath, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("listing output directory: %w", err)
	}
	var outputs []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, base+"-") && strings.HasSuffix(name, ".png") {
			outputs = append(outputs, filepath.Join(outDir, name))
		}
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", inputPath)
	}
	return outputs, nil
}
