// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster merges near-duplicate candidates. Every pair scoring at or
// above the similarity threshold is joined in a disjoint set, so clustering
// is transitive: A~B and B~C put A, B and C in one cluster even when A and
// C differ more.
package cluster

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// Group is one cluster: the representative after absorbing its members,
// and the keys of the members it absorbed.
type Group struct {
	Representative *types.Candidate
	Members        []string
}

// Clusterer groups candidates by similarity.
type Clusterer struct {
	similarity SimilarityFunc
	threshold  float64
	maxLength  int
}

// New returns a clusterer using cfg's similarity threshold and
// representative length cap. A nil similarity uses IndelRatio.
func New(cfg types.PipelineConfig, similarity SimilarityFunc) *Clusterer {
	cfg = cfg.WithDefaults()
	if similarity == nil {
		similarity = IndelRatio
	}
	return &Clusterer{
		similarity: similarity,
		threshold:  cfg.SimilarityThreshold,
		maxLength:  cfg.RepresentativeMaxLength,
	}
}

// Cluster returns one candidate per cluster, then drops any survivor whose
// key is a strict substring of another survivor's key. The result is sorted
// by key. Inputs are not modified.
func (c *Clusterer) Cluster(cands []*types.Candidate) []*types.Candidate {
	groups := c.Groups(cands)
	reps := make([]*types.Candidate, len(groups))
	for i, g := range groups {
		reps[i] = g.Representative
	}
	return RemoveSubstrings(reps)
}

// Groups partitions the candidates into clusters, ordered by the
// representative's key.
func (c *Clusterer) Groups(cands []*types.Candidate) []Group {
	sorted := append([]*types.Candidate(nil), cands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	ds := newDisjointSet(len(sorted))
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if c.similarity(sorted[i].Key, sorted[j].Key) >= c.threshold {
				ds.union(i, j)
			}
		}
	}

	members := make(map[int][]int)
	var roots []int
	for i := range sorted {
		r := ds.find(i)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], i)
	}

	groups := make([]Group, 0, len(roots))
	for _, r := range roots {
		idx := members[r]
		best := idx[0]
		for _, i := range idx[1:] {
			if c.better(sorted[i], sorted[best]) {
				best = i
			}
		}
		rep := sorted[best].Clone()
		g := Group{Representative: rep}
		for _, i := range idx {
			if i == best {
				continue
			}
			rep.Absorb(sorted[i])
			g.Members = append(g.Members, sorted[i].Key)
		}
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Representative.Key < groups[j].Representative.Key
	})
	return groups
}

// better reports whether a should represent a cluster over b: more pages,
// then longer text up to the length cap, then larger font, then smaller key.
func (c *Clusterer) better(a, b *types.Candidate) bool {
	if a.Occurrences() != b.Occurrences() {
		return a.Occurrences() > b.Occurrences()
	}
	la, lb := c.lengthCredit(a.Key), c.lengthCredit(b.Key)
	if la != lb {
		return la > lb
	}
	if a.MaxFontSize != b.MaxFontSize {
		return a.MaxFontSize > b.MaxFontSize
	}
	return a.Key < b.Key
}

func (c *Clusterer) lengthCredit(key string) int {
	n := utf8.RuneCountInString(key)
	if n > c.maxLength {
		return c.maxLength
	}
	return n
}

// RemoveSubstrings drops every candidate whose key is a strict substring of
// another candidate's key. The remaining candidates keep their order.
func RemoveSubstrings(cands []*types.Candidate) []*types.Candidate {
	out := make([]*types.Candidate, 0, len(cands))
	for i, c := range cands {
		contained := false
		for j, other := range cands {
			if i != j && other.Key != c.Key && strings.Contains(other.Key, c.Key) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, c)
		}
	}
	return out
}

// disjointSet is a union-find over indices with path compression and
// union by rank.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	switch {
	case ds.rank[ra] < ds.rank[rb]:
		ds.parent[ra] = rb
	case ds.rank[ra] > ds.rank[rb]:
		ds.parent[rb] = ra
	default:
		ds.parent[rb] = ra
		ds.rank[ra]++
	}
}
