// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter removes candidates by page coverage: lines repeated on too
// many pages are running headers, lines seen too rarely are noise.
package filter

import (
	"math"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// ratioEpsilon absorbs float error in ratio*pages before rounding up, so
// 0.03*100 yields 3 rather than 4.
const ratioEpsilon = 1e-9

// Headers drops candidates whose page coverage exceeds threshold, i.e.
// occurrences/totalPages > threshold. With no pages nothing is dropped.
// The input order is preserved.
func Headers(cands []*types.Candidate, totalPages int, threshold float64) []*types.Candidate {
	if totalPages <= 0 {
		return cands
	}
	out := make([]*types.Candidate, 0, len(cands))
	for _, c := range cands {
		if float64(c.Occurrences())/float64(totalPages) > threshold {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MinOccurrences returns the frequency floor for a corpus of totalPages:
// max(minimum, ceil(ratio * totalPages)).
func MinOccurrences(totalPages int, ratio float64, minimum int) int {
	scaled := int(math.Ceil(ratio*float64(totalPages) - ratioEpsilon))
	if scaled > minimum {
		return scaled
	}
	return minimum
}

// Frequency drops candidates that occur on fewer pages than
// MinOccurrences. The input order is preserved.
func Frequency(cands []*types.Candidate, totalPages int, ratio float64, minimum int) []*types.Candidate {
	floor := MinOccurrences(totalPages, ratio, minimum)
	out := make([]*types.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Occurrences() >= floor {
			out = append(out, c)
		}
	}
	return out
}
