// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// RunsProvider reads documents that were already converted to text runs,
// stored as JSON or YAML in the types.Document layout.
type RunsProvider struct{}

// NewRunsProvider returns a provider for .json, .yaml and .yml run files.
func NewRunsProvider() *RunsProvider {
	return &RunsProvider{}
}

// Pages implements Provider. A missing ID defaults to the file name and a
// zero page count is inferred from the highest page index.
func (r *RunsProvider) Pages(ctx context.Context, path string) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return types.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("reading runs %s: %w", path, err)
	}
	doc, err := decodeDocument(data, filepath.Ext(path))
	if err != nil {
		return types.Document{}, fmt.Errorf("decoding runs %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = filepath.Base(path)
	}
	return doc, nil
}

func decodeDocument(data []byte, ext string) (types.Document, error) {
	var doc types.Document
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return types.Document{}, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return types.Document{}, err
		}
	default:
		return types.Document{}, fmt.Errorf("unsupported runs format %q", ext)
	}
	if doc.PageCount == 0 {
		for _, p := range doc.Pages {
			if p.Index+1 > doc.PageCount {
				doc.PageCount = p.Index + 1
			}
		}
	}
	return doc, nil
}

// WriteRuns stores a document as JSON or YAML, chosen by the path's extension.
func WriteRuns(path string, doc types.Document) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("unsupported runs format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("marshaling runs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating runs directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
