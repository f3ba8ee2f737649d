// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/topic-engine/internal/container"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// DefaultImage is the text run dumper image used by the container backend.
const DefaultImage = "pdfruns:latest"

// ContainerProvider pipes a document through a dumper image that prints
// the document's text runs as JSON (the RunsProvider format) on stdout.
type ContainerProvider struct {
	runtime container.Runtime
	image   string
}

// NewContainerProvider verifies that image exists in the runtime.
func NewContainerProvider(ctx context.Context, rt container.Runtime, image string) (*ContainerProvider, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("dumper image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerProvider{runtime: rt, image: image}, nil
}

// Pages implements Provider.
func (c *ContainerProvider) Pages(ctx context.Context, path string) (types.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, []string{"--format", "json"}, f, &out); err != nil {
		return types.Document{}, fmt.Errorf("dumping runs for %s: %w", path, err)
	}
	if out.Len() == 0 {
		return types.Document{}, fmt.Errorf("%s produced empty output for %s", c.image, path)
	}

	doc, err := decodeDocument(out.Bytes(), ".json")
	if err != nil {
		return types.Document{}, fmt.Errorf("decoding runs for %s: %w", path, err)
	}
	doc.ID = filepath.Base(path)
	return doc, nil
}
