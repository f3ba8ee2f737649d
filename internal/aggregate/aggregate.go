// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate folds per-page headline seeds into corpus-wide
// candidates keyed by normalized text.
package aggregate

import (
	"sort"

	"github.com/pdiddy/topic-engine/internal/extract"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Corpus accumulates candidates. The result of any sequence of Add and
// Merge calls depends only on the multiset of seeds, not their order.
// A Corpus is not safe for concurrent use.
type Corpus struct {
	byKey        map[string]*types.Candidate
	observations int
}

// New returns an empty corpus.
func New() *Corpus {
	return &Corpus{byKey: make(map[string]*types.Candidate)}
}

// Add folds one seed into the corpus. Seed.Page must already be a global
// page index.
func (c *Corpus) Add(seed extract.Seed) {
	c.observations++
	cand, ok := c.byKey[seed.Key]
	if !ok {
		c.byKey[seed.Key] = &types.Candidate{
			Key:         seed.Key,
			Text:        seed.Text,
			Pages:       []int{seed.Page},
			FontSizes:   []float64{seed.FontSize},
			MaxFontSize: seed.FontSize,
			FirstPage:   seed.Page,
		}
		return
	}
	preferText(cand, seed.Text, seed.Page)
	cand.Absorb(&types.Candidate{
		Pages:       []int{seed.Page},
		FontSizes:   []float64{seed.FontSize},
		MaxFontSize: seed.FontSize,
	})
}

// AddAll folds a slice of seeds.
func (c *Corpus) AddAll(seeds []extract.Seed) {
	for _, s := range seeds {
		c.Add(s)
	}
}

// Merge folds every candidate of other into c. other is left unchanged.
func (c *Corpus) Merge(other *Corpus) {
	c.observations += other.observations
	for key, oc := range other.byKey {
		cand, ok := c.byKey[key]
		if !ok {
			c.byKey[key] = oc.Clone()
			continue
		}
		preferText(cand, oc.Text, oc.FirstPage)
		cand.Absorb(oc)
	}
}

// preferText must run before the page sets are unioned, while cand.FirstPage
// still describes the page cand.Text was taken from.
func preferText(cand *types.Candidate, text string, page int) {
	if page < cand.FirstPage || (page == cand.FirstPage && text < cand.Text) {
		cand.Text = text
	}
}

// Len returns the number of distinct candidates.
func (c *Corpus) Len() int {
	return len(c.byKey)
}

// Observations returns the number of seeds folded in.
func (c *Corpus) Observations() int {
	return c.observations
}

// Candidates returns copies of all candidates sorted by key.
func (c *Corpus) Candidates() []*types.Candidate {
	out := make([]*types.Candidate, 0, len(c.byKey))
	for _, cand := range c.byKey {
		out = append(out, cand.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CountObservations sums the observations of a candidate list.
func CountObservations(cands []*types.Candidate) int {
	n := 0
	for _, c := range cands {
		n += c.Observations()
	}
	return n
}
