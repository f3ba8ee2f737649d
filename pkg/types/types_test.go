// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionPages(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want []int
	}{
		{"both empty", nil, nil, []int{}},
		{"left only", []int{1, 3}, nil, []int{1, 3}},
		{"right only", nil, []int{2}, []int{2}},
		{"interleaved", []int{1, 4, 9}, []int{2, 4, 10}, []int{1, 2, 4, 9, 10}},
		{"identical", []int{5, 6}, []int{5, 6}, []int{5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnionPages(tt.a, tt.b))
		})
	}
}

func TestCandidateAbsorb(t *testing.T) {
	c := &Candidate{Key: "oligopoly", Text: "Oligopoly", Pages: []int{4, 7}, FontSizes: []float64{28, 28}, MaxFontSize: 28, FirstPage: 4}
	other := &Candidate{Key: "oligopolies", Text: "Oligopolies", Pages: []int{2, 7}, FontSizes: []float64{24, 30}, MaxFontSize: 30, FirstPage: 2}

	c.Absorb(other)

	assert.Equal(t, "oligopoly", c.Key)
	assert.Equal(t, "Oligopoly", c.Text)
	assert.Equal(t, []int{2, 4, 7}, c.Pages)
	assert.Equal(t, 3, c.Occurrences())
	assert.Equal(t, 4, c.Observations())
	assert.Equal(t, []float64{24, 28, 28, 30}, c.FontSizes)
	assert.Equal(t, 30.0, c.MaxFontSize)
	assert.Equal(t, 2, c.FirstPage)
	assert.InDelta(t, 27.5, c.AvgFontSize(), 1e-9)

	// The absorbed candidate is untouched.
	assert.Equal(t, []int{2, 7}, other.Pages)
}

func TestCandidateClone(t *testing.T) {
	c := &Candidate{Key: "a", Pages: []int{1}, FontSizes: []float64{12}}
	clone := c.Clone()
	clone.Pages[0] = 9
	clone.FontSizes[0] = 99
	assert.Equal(t, []int{1}, c.Pages)
	assert.Equal(t, []float64{12}, c.FontSizes)
	assert.Zero(t, (&Candidate{}).AvgFontSize())
}

func TestTopicFromCandidate(t *testing.T) {
	c := &Candidate{Key: "game theory", Text: "Game Theory", Pages: []int{3, 5}, FontSizes: []float64{20, 24}, MaxFontSize: 24, FirstPage: 3}
	topic := TopicFromCandidate(c)
	assert.Equal(t, Topic{Name: "Game Theory", Key: "game theory", Occurrences: 2, AvgFontSize: 22, FirstPage: 3, Pages: []int{3, 5}}, topic)
	assert.False(t, topic.HasSubtopics())

	c.Pages[0] = 0
	assert.Equal(t, []int{3, 5}, topic.Pages)
}

func TestPipelineStats(t *testing.T) {
	s := NewPipelineStats()
	assert.Len(t, s.Stages, len(StageOrder))
	for i, sc := range s.Stages {
		assert.Equal(t, StageOrder[i], sc.Stage)
		assert.Zero(t, sc.Count)
	}
	assert.Zero(t, s.ReductionPercent())

	s.Set(StageRaw, 188)
	s.Set(StageFinal, 14)
	s.Set("custom", 1)

	raw, ok := s.Get(StageRaw)
	assert.True(t, ok)
	assert.Equal(t, 188, raw)
	_, ok = s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "custom", s.Stages[len(s.Stages)-1].Stage)
	assert.Equal(t, 92.6, s.ReductionPercent())
}

func TestPipelineConfigWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultPipelineConfig(), DefaultPipelineConfig().WithDefaults())

	cfg := PipelineConfig{HeaderThreshold: 0.2, Workers: 16, CapMax: -1}.WithDefaults()
	assert.Equal(t, 0.2, cfg.HeaderThreshold)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, 25, cfg.CapMax)
	assert.Equal(t, 0.95, cfg.FontTolerance)
}

func TestPipelineConfigWithDefaultsKeepsZeroRatios(t *testing.T) {
	tests := []struct {
		name string
		in   PipelineConfig
		want func(PipelineConfig) float64
		exp  float64
	}{
		{name: "top margin zero", in: PipelineConfig{TopMargin: 0}, want: func(c PipelineConfig) float64 { return c.TopMargin }, exp: 0},
		{name: "bottom margin zero", in: PipelineConfig{BottomMargin: 0}, want: func(c PipelineConfig) float64 { return c.BottomMargin }, exp: 0},
		{name: "frequency ratio zero", in: PipelineConfig{FrequencyRatio: 0}, want: func(c PipelineConfig) float64 { return c.FrequencyRatio }, exp: 0},
		{name: "alnum ratio zero", in: PipelineConfig{MinAlnumRatio: 0}, want: func(c PipelineConfig) float64 { return c.MinAlnumRatio }, exp: 0},
		{name: "negative top margin", in: PipelineConfig{TopMargin: -1}, want: func(c PipelineConfig) float64 { return c.TopMargin }, exp: 0.05},
		{name: "negative bottom margin", in: PipelineConfig{BottomMargin: -1}, want: func(c PipelineConfig) float64 { return c.BottomMargin }, exp: 0.10},
		{name: "negative frequency ratio", in: PipelineConfig{FrequencyRatio: -1}, want: func(c PipelineConfig) float64 { return c.FrequencyRatio }, exp: 0.03},
		{name: "zero font tolerance", in: PipelineConfig{FontTolerance: 0}, want: func(c PipelineConfig) float64 { return c.FontTolerance }, exp: 0.95},
		{name: "zero header threshold", in: PipelineConfig{HeaderThreshold: 0}, want: func(c PipelineConfig) float64 { return c.HeaderThreshold }, exp: 0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, tt.want(tt.in.WithDefaults()))
		})
	}
}
