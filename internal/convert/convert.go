// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns source files into page text runs for the topic
// pipeline. Backends read PDFs natively, run a dumper image under a
// container runtime, or load runs that were converted earlier.
package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/topic-engine/internal/container"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Provider produces the text runs of one source file.
type Provider interface {
	Pages(ctx context.Context, path string) (types.Document, error)
}

// ByExtension routes .pdf files to PDF and run files (.json, .yaml, .yml)
// to Runs.
type ByExtension struct {
	PDF  Provider
	Runs Provider
}

// Pages implements Provider.
func (b ByExtension) Pages(ctx context.Context, path string) (types.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if b.PDF == nil {
			return types.Document{}, fmt.Errorf("no PDF backend configured for %s", path)
		}
		return b.PDF.Pages(ctx, path)
	case ".json", ".yaml", ".yml":
		if b.Runs == nil {
			return types.Document{}, fmt.Errorf("no runs backend configured for %s", path)
		}
		return b.Runs.Pages(ctx, path)
	}
	return types.Document{}, fmt.Errorf("unsupported file type %q: %s", filepath.Ext(path), path)
}

// detectRuntime is overridden in tests.
var detectRuntime = container.DetectRuntime

// NewProvider builds the provider selected by cfg.Backend. Run files are
// accepted by every backend.
func NewProvider(ctx context.Context, cfg types.ConversionConfig) (Provider, error) {
	runs := NewRunsProvider()
	switch cfg.Backend {
	case "", types.BackendPDF:
		return ByExtension{PDF: NewPDFProvider(), Runs: runs}, nil
	case types.BackendRuns:
		return ByExtension{Runs: runs}, nil
	case types.BackendContainer:
		rt, err := detectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		cp, err := NewContainerProvider(ctx, rt, cfg.Image)
		if err != nil {
			return nil, err
		}
		return ByExtension{PDF: cp, Runs: runs}, nil
	}
	return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
}

// BatchResult holds the outcome of loading several files.
type BatchResult struct {
	Loaded int
	Empty  int
	Failed int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Loaded + r.Empty + r.Failed
}

// HasFailures reports whether any file failed to load.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// LoadAll runs the provider over paths in order, printing per-file status
// to w. Files that fail are reported and skipped; documents without text
// are kept so their pages still count. A cancelled context stops the batch.
func LoadAll(ctx context.Context, p Provider, paths []string, w io.Writer) ([]types.Document, BatchResult, error) {
	var (
		docs   []types.Document
		result BatchResult
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}
		name := filepath.Base(path)

		doc, err := p.Pages(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, result, ctxErr
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			result.Failed++
			continue
		}

		runs := 0
		for _, page := range doc.Pages {
			runs += len(page.Runs)
		}
		if runs == 0 {
			fmt.Fprintf(w, "empty:   %s (%d pages, no text)\n", name, doc.PageCount)
			result.Empty++
		} else {
			fmt.Fprintf(w, "loaded:  %s (%d pages, %d runs)\n", name, doc.PageCount, runs)
			result.Loaded++
		}
		docs = append(docs, doc)
	}
	fmt.Fprintf(w, "\nBatch summary: %d loaded, %d empty, %d failed (total: %d)\n",
		result.Loaded, result.Empty, result.Failed, result.Total())
	return docs, result, nil
}
