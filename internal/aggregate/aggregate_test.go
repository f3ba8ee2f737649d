// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-engine/internal/extract"
)

func seed(key, text string, page int, font float64) extract.Seed {
	return extract.Seed{Key: key, Text: text, Page: page, FontSize: font}
}

func TestAdd(t *testing.T) {
	c := New()
	c.AddAll([]extract.Seed{
		seed("market equilibrium", "Market Equilibrium", 4, 30),
		seed("market equilibrium", "MARKET EQUILIBRIUM", 2, 28),
		seed("market equilibrium", "Market Equilibrium", 4, 32),
		seed("game theory", "Game Theory", 9, 30),
	})

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.Observations())

	cands := c.Candidates()
	require.Len(t, cands, 2)

	gt, me := cands[0], cands[1]
	assert.Equal(t, "game theory", gt.Key)
	assert.Equal(t, "market equilibrium", me.Key)

	assert.Equal(t, "MARKET EQUILIBRIUM", me.Text, "display text comes from the lowest page")
	assert.Equal(t, []int{2, 4}, me.Pages)
	assert.Equal(t, 2, me.Occurrences())
	assert.Equal(t, 3, me.Observations())
	assert.Equal(t, []float64{28, 30, 32}, me.FontSizes)
	assert.Equal(t, 32.0, me.MaxFontSize)
	assert.Equal(t, 2, me.FirstPage)
	assert.InDelta(t, 30.0, me.AvgFontSize(), 1e-9)
}

func TestDisplayTextTieBreak(t *testing.T) {
	a := New()
	a.Add(seed("price", "Price", 3, 30))
	a.Add(seed("price", "PRICE", 3, 30))

	b := New()
	b.Add(seed("price", "PRICE", 3, 30))
	b.Add(seed("price", "Price", 3, 30))

	assert.Equal(t, "PRICE", a.Candidates()[0].Text)
	assert.Equal(t, a.Candidates(), b.Candidates())
}

func TestOrderIndependence(t *testing.T) {
	seeds := []extract.Seed{
		seed("oligopoly i cournot", "Oligopoly I: Cournot", 10, 30),
		seed("oligopoly i cournot", "Oligopoly I - Cournot", 3, 30),
		seed("oligopoly ii bertrand", "Oligopoly II: Bertrand", 11, 31),
		seed("market power", "Market Power", 40, 29),
		seed("market power", "Market power", 40, 29.5),
		seed("market power", "Market Power", 1, 28),
		seed("welfare", "Welfare", 7, 30),
	}

	want := New()
	want.AddAll(seeds)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]extract.Seed(nil), seeds...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := New()
		got.AddAll(shuffled)
		assert.Equal(t, want.Candidates(), got.Candidates())
	}
}

func TestMerge(t *testing.T) {
	seeds := []extract.Seed{
		seed("market power", "Market Power", 5, 30),
		seed("market power", "Market power", 2, 28),
		seed("welfare loss", "Welfare Loss", 6, 30),
		seed("market power", "Market Power", 9, 30),
	}

	all := New()
	all.AddAll(seeds)

	left, right := New(), New()
	left.AddAll(seeds[:2])
	right.AddAll(seeds[2:])

	merged := New()
	merged.Merge(right)
	merged.Merge(left)

	assert.Equal(t, all.Candidates(), merged.Candidates())
	assert.Equal(t, all.Observations(), merged.Observations())
	assert.Equal(t, "Market power", merged.Candidates()[0].Text)

	// Merging must not alias the source corpus.
	merged.Add(seed("welfare loss", "Welfare Loss", 1, 30))
	assert.Equal(t, []int{6}, right.Candidates()[1].Pages)
}

func TestCountObservations(t *testing.T) {
	c := New()
	c.AddAll([]extract.Seed{
		seed("a topic", "A Topic", 1, 30),
		seed("a topic", "A Topic", 1, 30),
		seed("b topic", "B Topic", 2, 30),
	})
	assert.Equal(t, 3, CountObservations(c.Candidates()))
	assert.Zero(t, CountObservations(nil))
}
