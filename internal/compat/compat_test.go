// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-engine/internal/pipeline"
	"github.com/pdiddy/topic-engine/pkg/types"
)

func sampleResult() *pipeline.Result {
	stats := types.NewPipelineStats()
	stats.Set(types.StageRaw, 188)
	stats.Set(types.StageHeaderFilter, 88)
	stats.Set(types.StageFrequencyFilter, 16)
	stats.Set(types.StageClustering, 16)
	stats.Set(types.StageHierarchical, 14)
	stats.Set(types.StageSubtopics, 3)
	stats.Set(types.StageFinal, 3)
	stats.Documents = 2
	stats.TotalPages = 100
	stats.AdaptiveCap = 25

	return &pipeline.Result{
		Topics: []types.Topic{
			{Name: "Oligopoly", Key: "oligopoly", Occurrences: 9, AvgFontSize: 28.333,
				Subtopics: []string{"Oligopoly I: Cournot", "Oligopoly II: Bertrand"}, SourceDocument: "micro.pdf"},
			{Name: "Supply and Demand", Key: "supply and demand", Occurrences: 8, AvgFontSize: 28, SourceDocument: "micro.pdf"},
			{Name: "Game Theory", Key: "game theory", Occurrences: 3, AvgFontSize: 24, SourceDocument: "extra.pdf"},
		},
		Subtopics: []types.Subtopic{
			{Name: "Oligopoly I: Cournot", Parent: "Oligopoly", Occurrences: 5},
			{Name: "Oligopoly II: Bertrand", Parent: "Oligopoly", Occurrences: 4},
		},
		Stats:       stats,
		AdaptiveCap: 25,
	}
}

func TestFlatten(t *testing.T) {
	records := Flatten(sampleResult())
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		TopicName:       "Oligopoly",
		Confidence:      1,
		OccurrenceCount: 9,
		AvgFontSize:     28.33,
		SourceFile:      "micro.pdf",
		HasSubtopics:    true,
		NumSubtopics:    2,
	}, records[0])

	assert.Equal(t, 0.89, records[1].Confidence)
	assert.False(t, records[1].HasSubtopics)
	assert.Equal(t, 0, records[1].NumSubtopics)
	assert.Equal(t, 0.33, records[2].Confidence)
	assert.Equal(t, "extra.pdf", records[2].SourceFile)
}

func TestFlattenEmpty(t *testing.T) {
	assert.Nil(t, Flatten(nil))
	assert.Empty(t, Flatten(&pipeline.Result{Topics: []types.Topic{}}))
}

func TestSubtopics(t *testing.T) {
	rows := Subtopics(sampleResult())
	assert.Equal(t, []SubtopicRow{
		{TopicName: "Oligopoly I: Cournot", ParentTopic: "Oligopoly", OccurrenceCount: 5, IsSubtopic: true},
		{TopicName: "Oligopoly II: Bertrand", ParentTopic: "Oligopoly", OccurrenceCount: 4, IsSubtopic: true},
	}, rows)
	assert.Nil(t, Subtopics(nil))
}

func TestStatsOf(t *testing.T) {
	s := StatsOf(sampleResult())
	assert.Equal(t, 2, s.FilesProcessed)
	assert.Equal(t, 100, s.TotalPages)
	assert.Equal(t, 188, s.RawCandidates)
	assert.Equal(t, 88, s.AfterHeaderFilter)
	assert.Equal(t, 16, s.AfterFrequencyFilter)
	assert.Equal(t, 16, s.AfterClustering)
	assert.Equal(t, 14, s.AfterHierarchicalMerge)
	assert.Equal(t, 3, s.FinalTopics)
	assert.Equal(t, 25, s.AdaptiveCap)
	assert.Len(t, s.Subtopics, 2)

	empty := StatsOf(nil)
	assert.Zero(t, empty.RawCandidates)
	assert.NotNil(t, empty.Subtopics)
}

func TestRecordJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Flatten(sampleResult())[0])
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, name := range []string{"topic_name", "confidence", "occurrence_count", "source_file", "has_subtopics", "num_subtopics"} {
		assert.Contains(t, fields, name)
	}
}
