// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools abstracts the external converter binaries (LibreOffice,
// Poppler) behind a Runner so the convert stage can be tested without
// spawning processes. Collaborators are opaque: file path in, file
// path out, or an error.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes external binaries.
type Runner interface {
	// LookPath resolves a binary on PATH.
	LookPath(name string) (string, error)

	// Run executes the binary and waits for it. Stderr is folded into
	// the returned error.
	Run(ctx context.Context, name string, args ...string) error
}

// osRunner is the production Runner backed by os/exec.
type osRunner struct{}

// NewRunner returns the os/exec-backed Runner.
func NewRunner() Runner {
	return &osRunner{}
}

func (o *osRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (o *osRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
