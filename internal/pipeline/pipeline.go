// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the topic consolidation stages over a set of
// documents: extraction, aggregation, header and frequency filtering,
// similarity clustering, hierarchical merging and ranking.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/topic-engine/internal/aggregate"
	"github.com/pdiddy/topic-engine/internal/boilerplate"
	"github.com/pdiddy/topic-engine/internal/cluster"
	"github.com/pdiddy/topic-engine/internal/extract"
	"github.com/pdiddy/topic-engine/internal/filter"
	"github.com/pdiddy/topic-engine/internal/hierarchy"
	"github.com/pdiddy/topic-engine/internal/rank"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// detectionSample bounds how much of a document is fed to language detection.
const detectionSample = 4096

// Options supplies the pluggable collaborators. Zero values select the
// builtin rules, the Indel similarity, no language detection and no logging.
type Options struct {
	Classifier *boilerplate.Classifier
	Similarity cluster.SimilarityFunc
	Detector   boilerplate.LanguageDetector
	Logger     *slog.Logger
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Topics is the ranked, capped topic list.
	Topics []types.Topic `json:"topics" yaml:"topics"`

	// Subtopics lists the members of the parents present in Topics.
	Subtopics []types.Subtopic `json:"subtopics,omitempty" yaml:"subtopics,omitempty"`

	Stats       types.PipelineStats `json:"stats" yaml:"stats"`
	AdaptiveCap int                 `json:"adaptive_cap" yaml:"adaptive_cap"`
}

// Pipeline holds the configured stages. It is safe for concurrent use;
// every Run works on its own data.
type Pipeline struct {
	cfg        types.PipelineConfig
	classifier *boilerplate.Classifier
	extractor  *extract.Extractor
	clusterer  *cluster.Clusterer
	detector   boilerplate.LanguageDetector
	logger     *slog.Logger
}

// New builds a pipeline. Zero config fields take their defaults.
func New(cfg types.PipelineConfig, opts Options) *Pipeline {
	cfg = cfg.WithDefaults()
	if opts.Classifier == nil {
		opts.Classifier = boilerplate.DefaultClassifier()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:        cfg,
		classifier: opts.Classifier,
		extractor:  extract.New(cfg, opts.Classifier),
		clusterer:  cluster.New(cfg, opts.Similarity),
		detector:   opts.Detector,
		logger:     opts.Logger,
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() types.PipelineConfig {
	return p.cfg
}

// Run consolidates the documents into topics. Documents are numbered in
// the order given: the first page of each document follows the last page
// of the previous one. A cancelled context yields ctx.Err() and no result.
func (p *Pipeline) Run(ctx context.Context, docs []types.Document) (*Result, error) {
	for i, doc := range docs {
		if err := Validate(doc); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}

	offsets := make([]int, len(docs))
	totalPages := 0
	for i, doc := range docs {
		offsets[i] = totalPages
		totalPages += doc.PageCount
	}

	stats := types.NewPipelineStats()
	stats.Documents = len(docs)
	stats.TotalPages = totalPages

	corpus, err := p.extractAll(ctx, docs, offsets)
	if err != nil {
		return nil, err
	}

	raw := corpus.Candidates()
	stats.Set(types.StageRaw, corpus.Observations())

	afterHeaders := filter.Headers(raw, totalPages, p.cfg.HeaderThreshold)
	stats.Set(types.StageHeaderFilter, aggregate.CountObservations(afterHeaders))

	afterFrequency := filter.Frequency(afterHeaders, totalPages, p.cfg.FrequencyRatio, p.cfg.MinFrequency)
	stats.Set(types.StageFrequencyFilter, len(afterFrequency))

	clustered := p.clusterer.Cluster(afterFrequency)
	stats.Set(types.StageClustering, len(clustered))

	merged := hierarchy.Merge(clustered)
	stats.Set(types.StageHierarchical, len(merged.Topics))
	stats.Set(types.StageSubtopics, len(merged.Subtopics))

	limit := rank.CapFor(totalPages, p.cfg)
	final := rank.Rank(merged.Topics, limit)
	stats.Set(types.StageFinal, len(final))
	stats.AdaptiveCap = limit

	for i := range final {
		final[i].SourceDocument = sourceDocument(docs, offsets, final[i].FirstPage)
	}

	res := &Result{
		Topics:      final,
		Subtopics:   keptSubtopics(final, merged.Subtopics),
		Stats:       stats,
		AdaptiveCap: limit,
	}
	if res.Topics == nil {
		res.Topics = []types.Topic{}
	}

	for _, sc := range stats.Stages {
		p.logger.Debug("stage complete", "stage", sc.Stage, "count", sc.Count)
	}
	p.logger.Info("pipeline complete",
		"documents", stats.Documents,
		"pages", totalPages,
		"raw", corpus.Observations(),
		"topics", len(final),
		"cap", limit)
	return res, nil
}

type pageJob struct {
	page      types.Page
	offset    int
	extractor *extract.Extractor
}

// extractAll runs the extractor over every page on a bounded worker pool.
// Each page writes its own slot and slots are folded in order, so the
// corpus does not depend on scheduling.
func (p *Pipeline) extractAll(ctx context.Context, docs []types.Document, offsets []int) (*aggregate.Corpus, error) {
	var jobs []pageJob
	for i, doc := range docs {
		ex := p.extractorFor(doc)
		for _, page := range doc.Pages {
			jobs = append(jobs, pageJob{page: page, offset: offsets[i], extractor: ex})
		}
	}

	slots := make([][]extract.Seed, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seeds := job.extractor.Page(job.page)
			for k := range seeds {
				seeds[k].Page += job.offset
			}
			slots[i] = seeds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus := aggregate.New()
	for _, seeds := range slots {
		corpus.AddAll(seeds)
	}
	p.logger.Debug("extraction complete", "pages", len(jobs), "candidates", corpus.Len())
	return corpus, nil
}

// extractorFor narrows the boilerplate rules to the document's language
// when a detector is configured.
func (p *Pipeline) extractorFor(doc types.Document) *extract.Extractor {
	if p.detector == nil {
		return p.extractor
	}
	lang, ok := p.detector.Detect(sampleText(doc))
	if !ok {
		p.logger.Debug("language undetermined", "document", doc.ID)
		return p.extractor
	}
	c := p.classifier.ForLanguage(lang)
	p.logger.Debug("language detected", "document", doc.ID, "language", lang, "rules", c.Version())
	if c == p.classifier {
		return p.extractor
	}
	return p.extractor.WithClassifier(c)
}

// sampleText joins run texts in page order up to detectionSample bytes.
func sampleText(doc types.Document) string {
	pages := append([]types.Page(nil), doc.Pages...)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var b strings.Builder
	for _, page := range pages {
		for _, run := range page.Runs {
			if b.Len() >= detectionSample {
				return b.String()
			}
			b.WriteString(run.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// sourceDocument returns the ID of the document whose page range holds the
// global page index.
func sourceDocument(docs []types.Document, offsets []int, page int) string {
	for i, doc := range docs {
		if page >= offsets[i] && page < offsets[i]+doc.PageCount {
			return doc.ID
		}
	}
	return ""
}

// keptSubtopics returns the subtopics of the parents that survived the
// cap, in topic order.
func keptSubtopics(topics []types.Topic, subs []types.Subtopic) []types.Subtopic {
	byParent := make(map[string][]types.Subtopic)
	for _, s := range subs {
		byParent[s.Parent] = append(byParent[s.Parent], s)
	}
	var out []types.Subtopic
	for _, t := range topics {
		if t.HasSubtopics() {
			out = append(out, byParent[t.Name]...)
		}
	}
	return out
}
