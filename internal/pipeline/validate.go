// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// ErrInvalidDocument is returned when provider output breaks the page
// contract. Empty documents and pages without text are not errors.
var ErrInvalidDocument = errors.New("invalid document")

// Validate checks a document's page structure: a non-negative page count,
// page indices inside [0, PageCount) and unique, runs belonging to their
// page, and a positive height on every page that carries runs.
func Validate(doc types.Document) error {
	if doc.PageCount < 0 {
		return fmt.Errorf("%w: %s: negative page count %d", ErrInvalidDocument, doc.ID, doc.PageCount)
	}
	seen := make(map[int]bool, len(doc.Pages))
	for _, page := range doc.Pages {
		if page.Index < 0 || page.Index >= doc.PageCount {
			return fmt.Errorf("%w: %s: page index %d outside [0, %d)", ErrInvalidDocument, doc.ID, page.Index, doc.PageCount)
		}
		if seen[page.Index] {
			return fmt.Errorf("%w: %s: duplicate page index %d", ErrInvalidDocument, doc.ID, page.Index)
		}
		seen[page.Index] = true

		if len(page.Runs) > 0 && page.Height <= 0 {
			return fmt.Errorf("%w: %s: page %d has runs but height %g", ErrInvalidDocument, doc.ID, page.Index, page.Height)
		}
		for i, run := range page.Runs {
			if run.Page != page.Index {
				return fmt.Errorf("%w: %s: run %d on page %d claims page %d", ErrInvalidDocument, doc.ID, i, page.Index, run.Page)
			}
		}
	}
	return nil
}
