// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// Candidate is a normalized line of text observed on one or more pages,
// considered for promotion to a Topic.
type Candidate struct {
	// Key is the normalized text. It is the only field used for equality
	// and similarity comparisons.
	Key string `json:"key" yaml:"key"`

	// Text is the display form, taken from the earliest page it was seen on.
	Text string `json:"text" yaml:"text"`

	// Pages is the sorted set of global page indices the candidate occurs on.
	Pages []int `json:"pages" yaml:"pages"`

	// FontSizes holds one font size per observation, sorted ascending.
	FontSizes []float64 `json:"font_sizes" yaml:"font_sizes"`

	// MaxFontSize is the largest observed font size.
	MaxFontSize float64 `json:"max_font_size" yaml:"max_font_size"`

	// FirstPage is the lowest global page index the candidate occurs on.
	FirstPage int `json:"first_page" yaml:"first_page"`
}

// Occurrences returns the number of distinct pages the candidate occurs on.
func (c *Candidate) Occurrences() int {
	return len(c.Pages)
}

// Observations returns the number of extracted lines folded into the
// candidate. A title repeated twice on one page counts twice.
func (c *Candidate) Observations() int {
	return len(c.FontSizes)
}

// AvgFontSize returns the mean observed font size, or zero when nothing was observed.
func (c *Candidate) AvgFontSize() float64 {
	if len(c.FontSizes) == 0 {
		return 0
	}
	var sum float64
	for _, f := range c.FontSizes {
		sum += f
	}
	return sum / float64(len(c.FontSizes))
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() *Candidate {
	out := *c
	out.Pages = append([]int(nil), c.Pages...)
	out.FontSizes = append([]float64(nil), c.FontSizes...)
	return &out
}

// Absorb folds other into c: page sets are unioned, font observations are
// merged, and the maximum font size and first page are updated. Key and Text
// are left unchanged.
func (c *Candidate) Absorb(other *Candidate) {
	c.Pages = UnionPages(c.Pages, other.Pages)
	c.FontSizes = append(c.FontSizes, other.FontSizes...)
	sort.Float64s(c.FontSizes)
	if other.MaxFontSize > c.MaxFontSize {
		c.MaxFontSize = other.MaxFontSize
	}
	if len(c.Pages) > 0 {
		c.FirstPage = c.Pages[0]
	}
}

// UnionPages merges two sorted page sets into a new sorted set without duplicates.
func UnionPages(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var next int
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			next = a[i]
			i++
		case i >= len(a) || b[j] < a[i]:
			next = b[j]
			j++
		default:
			next = a[i]
			i++
			j++
		}
		if n := len(out); n == 0 || out[n-1] != next {
			out = append(out, next)
		}
	}
	return out
}

// Topic is a course-level topic emitted by the pipeline.
type Topic struct {
	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Key is the normalized name.
	Key string `json:"key" yaml:"key"`

	// Occurrences is the number of distinct pages the topic covers.
	Occurrences int `json:"occurrence_count" yaml:"occurrence_count"`

	// AvgFontSize is the mean font size of the topic's observations. For a
	// merged parent it is the largest mean among its members.
	AvgFontSize float64 `json:"avg_font_size" yaml:"avg_font_size"`

	// Subtopics lists member names folded into this topic, ordered by the
	// page they first appeared on.
	Subtopics []string `json:"subtopics,omitempty" yaml:"subtopics,omitempty"`

	// FirstPage is the lowest global page index the topic occurs on.
	FirstPage int `json:"first_page" yaml:"first_page"`

	// SourceDocument is the ID of the document containing FirstPage.
	SourceDocument string `json:"source_document,omitempty" yaml:"source_document,omitempty"`

	// Pages is the sorted set of global page indices the topic covers.
	Pages []int `json:"pages" yaml:"pages"`
}

// HasSubtopics reports whether the topic was produced by a hierarchical merge.
func (t Topic) HasSubtopics() bool {
	return len(t.Subtopics) > 0
}

// TopicFromCandidate builds a Topic without subtopics from a candidate.
func TopicFromCandidate(c *Candidate) Topic {
	return Topic{
		Name:        c.Text,
		Key:         c.Key,
		Occurrences: c.Occurrences(),
		AvgFontSize: c.AvgFontSize(),
		FirstPage:   c.FirstPage,
		Pages:       append([]int(nil), c.Pages...),
	}
}

// Subtopic is a member folded into a parent topic by the hierarchical merge.
type Subtopic struct {
	// Name is the member's display text, e.g. "Oligopoly I: Cournot".
	Name string `json:"topic_name" yaml:"topic_name"`

	// Key is the normalized name.
	Key string `json:"key" yaml:"key"`

	// Parent is the display name of the parent topic.
	Parent string `json:"parent_topic" yaml:"parent_topic"`

	// Occurrences is the number of distinct pages the member covered.
	Occurrences int `json:"occurrence_count" yaml:"occurrence_count"`

	// FirstPage is the lowest global page index the member occurs on.
	FirstPage int `json:"first_page" yaml:"first_page"`
}
