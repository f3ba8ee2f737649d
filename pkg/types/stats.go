// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "math"

// Stage names recorded in PipelineStats, in pipeline order.
const (
	StageRaw             = "raw_candidates"
	StageHeaderFilter    = "after_header_filter"
	StageFrequencyFilter = "after_frequency_filter"
	StageClustering      = "after_clustering"
	StageHierarchical    = "after_hierarchical_merge"
	StageSubtopics       = "subtopics"
	StageFinal           = "final_topics"
)

// StageOrder lists every stage name in the order the pipeline records them.
var StageOrder = []string{
	StageRaw,
	StageHeaderFilter,
	StageFrequencyFilter,
	StageClustering,
	StageHierarchical,
	StageSubtopics,
	StageFinal,
}

// StageCount is the candidate or topic count after one stage.
type StageCount struct {
	Stage string `json:"stage" yaml:"stage"`
	Count int    `json:"count" yaml:"count"`
}

// PipelineStats records how many entries survived each stage of a run.
// The raw and header-filter stages count page observations; later stages
// count unique entries.
type PipelineStats struct {
	// Stages holds one count per stage in StageOrder.
	Stages []StageCount `json:"stages" yaml:"stages"`

	// AdaptiveCap is the page-count-derived maximum number of topics.
	AdaptiveCap int `json:"adaptive_cap" yaml:"adaptive_cap"`

	// Documents is the number of documents processed.
	Documents int `json:"documents" yaml:"documents"`

	// TotalPages is the number of pages scanned across all documents.
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// NewPipelineStats returns stats with every stage present and zeroed.
func NewPipelineStats() PipelineStats {
	stages := make([]StageCount, len(StageOrder))
	for i, name := range StageOrder {
		stages[i] = StageCount{Stage: name}
	}
	return PipelineStats{Stages: stages}
}

// Set records the count for a stage, appending it if it is not present.
func (s *PipelineStats) Set(stage string, count int) {
	for i := range s.Stages {
		if s.Stages[i].Stage == stage {
			s.Stages[i].Count = count
			return
		}
	}
	s.Stages = append(s.Stages, StageCount{Stage: stage, Count: count})
}

// Get returns the count recorded for a stage and whether it was present.
func (s PipelineStats) Get(stage string) (int, bool) {
	for _, sc := range s.Stages {
		if sc.Stage == stage {
			return sc.Count, true
		}
	}
	return 0, false
}

// ReductionPercent returns how much smaller the final topic list is than the
// raw candidate count, rounded to one decimal. Zero when nothing was extracted.
func (s PipelineStats) ReductionPercent() float64 {
	raw, _ := s.Get(StageRaw)
	final, _ := s.Get(StageFinal)
	if raw == 0 {
		return 0
	}
	pct := (1 - float64(final)/float64(raw)) * 100
	return math.Round(pct*10) / 10
}
