// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-engine/pkg/types"
)

func cand(key, text string, font float64, pages ...int) *types.Candidate {
	fonts := make([]float64, len(pages))
	for i := range fonts {
		fonts[i] = font
	}
	first := 0
	if len(pages) > 0 {
		first = pages[0]
	}
	return &types.Candidate{Key: key, Text: text, Pages: pages, FontSizes: fonts, MaxFontSize: font, FirstPage: first}
}

func keys(cands []*types.Candidate) []string {
	var out []string
	for _, c := range cands {
		out = append(out, c.Key)
	}
	return out
}

// pairSimilarity scores listed pairs at 100 and everything else at 0.
func pairSimilarity(pairs ...[2]string) SimilarityFunc {
	return func(a, b string) float64 {
		if a == b {
			return 100
		}
		for _, p := range pairs {
			if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
				return 100
			}
		}
		return 0
	}
}

func TestIndelRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"market equilibrium", "market equilibrium", 100},
		{"market equilibrium", "market equilibria", 100 * (1 - 3.0/35.0)},
		{"abc", "xyz", 0},
		{"", "", 100},
		{"oligopoly", "oligopoly models", 100 * (1 - 7.0/25.0)},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, IndelRatio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, IndelRatio(tt.a, tt.b), IndelRatio(tt.b, tt.a), 1e-9)
		})
	}
	assert.GreaterOrEqual(t, IndelRatio("market equilibrium", "market equilibria"), 90.0)
}

func TestIndelRatioCountsCharacters(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"übung", "ubung", 100 * (1 - 2.0/10.0)},
		{"ökonomie", "okonomie", 100 * (1 - 2.0/16.0)},
		{"größe", "grösse", 100 * (1 - 3.0/11.0)},
		{"märkte und preise", "märkte und preis", 100 * (1 - 1.0/33.0)},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, IndelRatio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, IndelRatio(tt.a, tt.b), IndelRatio(tt.b, tt.a), 1e-9)
		})
	}
}

func TestIndelRatioWideAlphabet(t *testing.T) {
	var a, b []rune
	for r := rune(0x4E00); r < 0x4E00+200; r++ {
		a = append(a, r)
		b = append(b, r+200)
	}
	got := IndelRatio(string(a), string(b))
	assert.GreaterOrEqual(t, got, 0.0)
	assert.Less(t, got, 100.0)
	assert.InDelta(t, got, IndelRatio(string(b), string(a)), 1e-9)
	assert.InDelta(t, 100, IndelRatio(string(a), string(a)), 1e-9)
}

func TestClusterMergesNearDuplicates(t *testing.T) {
	c := New(types.DefaultPipelineConfig(), nil)
	out := c.Cluster([]*types.Candidate{
		cand("market equilibrium", "Market Equilibrium", 30, 1, 2, 3, 4),
		cand("market equilibria", "Market Equilibria", 30, 4),
		cand("game theory", "Game Theory", 30, 8, 9),
	})

	require.Len(t, out, 2)
	assert.Equal(t, "game theory", out[0].Key)

	me := out[1]
	assert.Equal(t, "Market Equilibrium", me.Text)
	assert.Equal(t, []int{1, 2, 3, 4}, me.Pages)
	assert.Equal(t, 4, me.Occurrences(), "shared page counted once")
	assert.Equal(t, 5, me.Observations())

	me2 := c.Cluster([]*types.Candidate{
		cand("market equilibrium", "Market Equilibrium", 30, 1, 2, 3, 4),
		cand("market equilibria", "Market Equilibria", 30, 5),
	})
	require.Len(t, me2, 1)
	assert.Equal(t, 5, me2[0].Occurrences())
	assert.Equal(t, "Market Equilibrium", me2[0].Text)
}

func TestClusterIsTransitive(t *testing.T) {
	sim := pairSimilarity([2]string{"alpha", "beta"}, [2]string{"beta", "gamma"})
	c := New(types.DefaultPipelineConfig(), sim)

	groups := c.Groups([]*types.Candidate{
		cand("alpha", "Alpha", 30, 1),
		cand("beta", "Beta", 30, 2, 3),
		cand("gamma", "Gamma", 30, 4),
		cand("delta", "Delta", 30, 5),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "beta", groups[0].Representative.Key)
	assert.Equal(t, []string{"alpha", "gamma"}, groups[0].Members)
	assert.Equal(t, []int{1, 2, 3, 4}, groups[0].Representative.Pages)
	assert.Equal(t, "delta", groups[1].Representative.Key)
	assert.Empty(t, groups[1].Members)
}

func TestRepresentativeTieBreaks(t *testing.T) {
	tests := []struct {
		name  string
		cands []*types.Candidate
		want  string
	}{
		{
			name: "more pages wins",
			cands: []*types.Candidate{
				cand("aaaa long text", "", 30, 1),
				cand("aaaa", "", 20, 2, 3),
			},
			want: "aaaa",
		},
		{
			name: "longer text wins on equal pages",
			cands: []*types.Candidate{
				cand("aaaa", "", 30, 1),
				cand("aaaa long text", "", 20, 2),
			},
			want: "aaaa long text",
		},
		{
			name: "larger font wins on equal length",
			cands: []*types.Candidate{
				cand("abcd", "", 20, 1),
				cand("wxyz", "", 30, 2),
			},
			want: "wxyz",
		},
		{
			name: "smaller key wins on a full tie",
			cands: []*types.Candidate{
				cand("wxyz", "", 30, 1),
				cand("abcd", "", 30, 2),
			},
			want: "abcd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := pairSimilarity([2]string{tt.cands[0].Key, tt.cands[1].Key})
			groups := New(types.DefaultPipelineConfig(), sim).Groups(tt.cands)
			require.Len(t, groups, 1)
			assert.Equal(t, tt.want, groups[0].Representative.Key)
		})
	}
}

func TestRepresentativeLengthCap(t *testing.T) {
	cfg := types.DefaultPipelineConfig()
	cfg.RepresentativeMaxLength = 5
	a := cand("abcdefgh", "", 20, 1)
	b := cand("abcdefghij", "", 30, 2)

	groups := New(cfg, pairSimilarity([2]string{a.Key, b.Key})).Groups([]*types.Candidate{a, b})
	require.Len(t, groups, 1)
	assert.Equal(t, "abcdefghij", groups[0].Representative.Key, "capped lengths tie, font decides")
}

func TestClusterRemovesSubstrings(t *testing.T) {
	c := New(types.DefaultPipelineConfig(), nil)
	out := c.Cluster([]*types.Candidate{
		cand("oligopoly", "Oligopoly", 30, 1, 2, 3),
		cand("oligopoly models", "Oligopoly Models", 30, 4, 5),
		cand("monopoly", "Monopoly", 30, 6, 7),
	})
	assert.Equal(t, []string{"monopoly", "oligopoly models"}, keys(out))

	for i, a := range out {
		for j, b := range out {
			if i != j {
				assert.NotContains(t, b.Key, a.Key)
			}
		}
	}
}

func TestClusterIsIdempotent(t *testing.T) {
	c := New(types.DefaultPipelineConfig(), nil)
	in := []*types.Candidate{
		cand("market equilibrium", "Market Equilibrium", 30, 1, 2, 3, 4),
		cand("market equilibria", "Market Equilibria", 28, 5),
		cand("price elasticity", "Price Elasticity", 30, 6, 7),
		cand("price elasticities", "Price Elasticities", 30, 8),
		cand("consumer surplus", "Consumer Surplus", 30, 9, 10),
		cand("surplus", "Surplus", 30, 11, 12),
	}

	once := c.Cluster(in)
	twice := c.Cluster(once)
	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(in))
}

func TestClusterDoesNotModifyInput(t *testing.T) {
	a := cand("market equilibrium", "Market Equilibrium", 30, 1, 2)
	b := cand("market equilibria", "Market Equilibria", 30, 3)

	New(types.DefaultPipelineConfig(), nil).Cluster([]*types.Candidate{b, a})

	assert.Equal(t, []int{1, 2}, a.Pages)
	assert.Equal(t, []int{3}, b.Pages)
}

func TestClusterEmpty(t *testing.T) {
	assert.Empty(t, New(types.DefaultPipelineConfig(), nil).Cluster(nil))
}
