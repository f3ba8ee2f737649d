// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders topics by importance and caps the list at a size
// that grows with the square root of the corpus page count.
package rank

import (
	"math"
	"sort"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// AdaptiveCap returns clamp(round(sqrt(totalPages) * multiplier), min, max).
// An empty corpus has a cap of zero.
func AdaptiveCap(totalPages int, multiplier float64, min, max int) int {
	if totalPages <= 0 {
		return 0
	}
	c := int(math.Round(math.Sqrt(float64(totalPages)) * multiplier))
	if c < min {
		return min
	}
	if c > max {
		return max
	}
	return c
}

// CapFor applies AdaptiveCap with cfg's multiplier and bounds.
func CapFor(totalPages int, cfg types.PipelineConfig) int {
	cfg = cfg.WithDefaults()
	return AdaptiveCap(totalPages, cfg.CapMultiplier, cfg.CapMin, cfg.CapMax)
}

// Sort orders topics in place: more pages first, then larger average font,
// then key, then name.
func Sort(topics []types.Topic) {
	sort.SliceStable(topics, func(i, j int) bool {
		a, b := topics[i], topics[j]
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.AvgFontSize != b.AvgFontSize {
			return a.AvgFontSize > b.AvgFontSize
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Name < b.Name
	})
}

// Rank returns a sorted copy of topics truncated to limit. The list is
// never padded.
func Rank(topics []types.Topic, limit int) []types.Topic {
	out := append([]types.Topic(nil), topics...)
	Sort(out)
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
