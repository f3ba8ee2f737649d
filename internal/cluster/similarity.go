// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import "github.com/xrash/smetrics"

// SimilarityFunc scores two normalized keys from 0 (unrelated) to 100
// (identical). Implementations must be symmetric and return 100 for equal
// inputs.
type SimilarityFunc func(a, b string) float64

// IndelRatio is the normalized insertion/deletion similarity:
// 100 * (1 - d / (len(a)+len(b))), where d is the edit distance with
// substitutions costing two. Lengths and edits count characters, so an
// umlaut weighs the same as an ASCII letter.
func IndelRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	ea, eb, ok := narrow(ra, rb)
	total := len(ra) + len(rb)
	if !ok {
		ea, eb, total = a, b, len(a)+len(b)
	}
	d := smetrics.WagnerFischer(ea, eb, 1, 1, 2)
	return 100 * (1 - float64(d)/float64(total))
}

// narrow re-encodes a and b over their shared alphabet with one byte per
// character, so byte-wise edit distance equals character-wise distance.
// It fails when the pair uses more than 256 distinct characters.
func narrow(a, b []rune) (string, string, bool) {
	alphabet := make(map[rune]byte)
	encode := func(rs []rune) ([]byte, bool) {
		out := make([]byte, len(rs))
		for i, r := range rs {
			c, ok := alphabet[r]
			if !ok {
				if len(alphabet) == 256 {
					return nil, false
				}
				c = byte(len(alphabet))
				alphabet[r] = c
			}
			out[i] = c
		}
		return out, true
	}
	ea, ok := encode(a)
	if !ok {
		return "", "", false
	}
	eb, ok := encode(b)
	if !ok {
		return "", "", false
	}
	return string(ea), string(eb), true
}
