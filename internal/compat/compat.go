// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compat renders pipeline results in the flat record layout used by
// the topic import screen and older exports: one row per topic with
// topic_name, confidence, occurrence_count and source_file columns.
package compat

import (
	"math"

	"github.com/pdiddy/topic-engine/internal/pipeline"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Record is one topic row.
type Record struct {
	TopicName       string  `json:"topic_name" yaml:"topic_name"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	OccurrenceCount int     `json:"occurrence_count" yaml:"occurrence_count"`
	AvgFontSize     float64 `json:"avg_font_size" yaml:"avg_font_size"`
	SourceFile      string  `json:"source_file" yaml:"source_file"`
	HasSubtopics    bool    `json:"has_subtopics" yaml:"has_subtopics"`
	NumSubtopics    int     `json:"num_subtopics" yaml:"num_subtopics"`
}

// SubtopicRow links a merged member to its parent topic.
type SubtopicRow struct {
	TopicName       string `json:"topic_name" yaml:"topic_name"`
	ParentTopic     string `json:"parent_topic" yaml:"parent_topic"`
	OccurrenceCount int    `json:"occurrence_count" yaml:"occurrence_count"`
	IsSubtopic      bool   `json:"is_subtopic" yaml:"is_subtopic"`
}

// Stats is the flat statistics block.
type Stats struct {
	FilesProcessed         int           `json:"files_processed" yaml:"files_processed"`
	TotalPages             int           `json:"total_pages" yaml:"total_pages"`
	RawCandidates          int           `json:"raw_candidates" yaml:"raw_candidates"`
	AfterHeaderFilter      int           `json:"after_header_filter" yaml:"after_header_filter"`
	AfterFrequencyFilter   int           `json:"after_frequency_filter" yaml:"after_frequency_filter"`
	AfterClustering        int           `json:"after_clustering" yaml:"after_clustering"`
	AfterHierarchicalMerge int           `json:"after_hierarchical_merge" yaml:"after_hierarchical_merge"`
	FinalTopics            int           `json:"final_topics" yaml:"final_topics"`
	AdaptiveCap            int           `json:"adaptive_cap" yaml:"adaptive_cap"`
	Subtopics              []SubtopicRow `json:"subtopics" yaml:"subtopics"`
}

// Flatten converts the ranked topics to records in rank order. Confidence
// is the topic's occurrence count relative to the most frequent topic,
// rounded to two decimals.
func Flatten(res *pipeline.Result) []Record {
	if res == nil {
		return nil
	}
	maxOcc := 0
	for _, t := range res.Topics {
		if t.Occurrences > maxOcc {
			maxOcc = t.Occurrences
		}
	}
	records := make([]Record, 0, len(res.Topics))
	for _, t := range res.Topics {
		records = append(records, Record{
			TopicName:       t.Name,
			Confidence:      confidence(t.Occurrences, maxOcc),
			OccurrenceCount: t.Occurrences,
			AvgFontSize:     round2(t.AvgFontSize),
			SourceFile:      t.SourceDocument,
			HasSubtopics:    t.HasSubtopics(),
			NumSubtopics:    len(t.Subtopics),
		})
	}
	return records
}

// Subtopics returns one row per subtopic of the surviving parents.
func Subtopics(res *pipeline.Result) []SubtopicRow {
	if res == nil {
		return nil
	}
	rows := make([]SubtopicRow, 0, len(res.Subtopics))
	for _, s := range res.Subtopics {
		rows = append(rows, SubtopicRow{
			TopicName:       s.Name,
			ParentTopic:     s.Parent,
			OccurrenceCount: s.Occurrences,
			IsSubtopic:      true,
		})
	}
	return rows
}

// StatsOf flattens the stage counts.
func StatsOf(res *pipeline.Result) Stats {
	if res == nil {
		return Stats{Subtopics: []SubtopicRow{}}
	}
	get := func(stage string) int {
		n, _ := res.Stats.Get(stage)
		return n
	}
	return Stats{
		FilesProcessed:         res.Stats.Documents,
		TotalPages:             res.Stats.TotalPages,
		RawCandidates:          get(types.StageRaw),
		AfterHeaderFilter:      get(types.StageHeaderFilter),
		AfterFrequencyFilter:   get(types.StageFrequencyFilter),
		AfterClustering:        get(types.StageClustering),
		AfterHierarchicalMerge: get(types.StageHierarchical),
		FinalTopics:            get(types.StageFinal),
		AdaptiveCap:            res.AdaptiveCap,
		Subtopics:              Subtopics(res),
	}
}

func confidence(occ, maxOcc int) float64 {
	if maxOcc == 0 {
		return 0
	}
	return round2(float64(occ) / float64(maxOcc))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
