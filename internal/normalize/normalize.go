// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize produces the comparison keys used throughout the
// pipeline. Two lines are the same candidate exactly when their keys match.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Key folds text to its comparison form: NFKC-normalized, lowercased, with
// punctuation and symbols removed and whitespace collapsed to single spaces.
// Letters, digits and underscores survive.
func Key(text string) string {
	folded := strings.ToLower(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Display trims surrounding whitespace and collapses internal runs of
// whitespace, leaving case and punctuation intact.
func Display(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
