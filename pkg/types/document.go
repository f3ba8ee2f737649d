// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the topic-engine pipeline:
// the page text runs supplied by document providers, the candidates and topics
// produced by the consolidation stages, and the per-stage statistics.
package types

// TextRun is one line of text as laid out on a page by a document provider.
type TextRun struct {
	// Text is the run's content as drawn on the page.
	Text string `json:"text" yaml:"text"`

	// FontSize is the largest font size used in the run, in points.
	FontSize float64 `json:"font_size" yaml:"font_size"`

	// Y is the distance of the run's top edge from the top edge of the page,
	// in points. Zero is the top of the page.
	Y float64 `json:"y" yaml:"y"`

	// Page is the zero-based index of the page within its document.
	Page int `json:"page" yaml:"page"`

	// PageHeight is the height of the page the run belongs to, in points.
	PageHeight float64 `json:"page_height" yaml:"page_height"`
}

// Page holds the text runs of a single page.
type Page struct {
	// Index is the zero-based page index within the document.
	Index int `json:"index" yaml:"index"`

	// Height is the page height in points.
	Height float64 `json:"height" yaml:"height"`

	// Runs lists the page's text runs in reading order.
	Runs []TextRun `json:"runs" yaml:"runs"`
}

// Document is the provider output for one source file. Pages without any
// text may be omitted; PageCount still counts them.
type Document struct {
	// ID identifies the source document (usually its file name).
	ID string `json:"id" yaml:"id"`

	// PageCount is the number of pages the provider declared for the document.
	PageCount int `json:"page_count" yaml:"page_count"`

	// Pages holds the pages that carry text.
	Pages []Page `json:"pages" yaml:"pages"`
}
