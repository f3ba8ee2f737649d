// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/topic-engine/pkg/types"
)

const height = 540.0

// titleCount is a slide title and the number of pages it heads.
type titleCount struct {
	title string
	pages int
}

// buildDeck lays titles out one per page starting at page 0, adds a
// repeated course banner to every page when banner is set, and pads with
// body text, page numbers and footers that the extractor must ignore.
func buildDeck(id string, pageCount int, banner string, titles []titleCount) types.Document {
	var sequence []string
	for _, tc := range titles {
		for i := 0; i < tc.pages; i++ {
			sequence = append(sequence, tc.title)
		}
	}

	doc := types.Document{ID: id, PageCount: pageCount}
	for i := 0; i < pageCount; i++ {
		page := types.Page{Index: i, Height: height}
		add := func(text string, font, y float64) {
			page.Runs = append(page.Runs, types.TextRun{Text: text, FontSize: font, Y: y, Page: i, PageHeight: height})
		}
		if banner != "" {
			add(banner, 30, 60)
		}
		if i < len(sequence) {
			add(sequence[i], 30, 100)
		}
		add("Supporting bullet text for this slide", 14, 200)
		add("Some further explanation in smaller type", 12, 260)
		add("Frankfurt School of Finance", 30, 520)
		add("17", 10, 530)
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func scenarioDeck() types.Document {
	return buildDeck("micro.pdf", 100, "Introductory Microeconomics", []titleCount{
		{"Supply and Demand", 8},
		{"Oligopoly I: Cournot", 3},
		{"Price Elasticity", 7},
		{"Consumer Choice", 6},
		{"Oligopoly II: Bertrand", 3},
		{"Production Costs", 6},
		{"Perfect Competition", 5},
		{"Monopoly Pricing", 5},
		{"Oligopoly III: Stackelberg", 3},
		{"Game Theory Basics", 5},
		{"Labor Markets", 4},
		{"Public Goods", 4},
		{"Externalities", 4},
		{"Welfare Economics", 3},
		{"Market Failure", 3},
		{"Income Distribution", 3},
		{"Worked Example", 2},
		{"Class Exercise", 2},
		{"Numerical Illustration", 2},
		{"Policy Debate", 2},
		{"Historical Note", 2},
		{"Data Exercise", 2},
		{"Graph Reading", 2},
		{"Discussion Prompt", 2},
	})
}

func stageCounts(stats types.PipelineStats) map[string]int {
	out := make(map[string]int)
	for _, sc := range stats.Stages {
		out[sc.Stage] = sc.Count
	}
	return out
}

func TestRunLectureDeck(t *testing.T) {
	p := New(types.DefaultPipelineConfig(), Options{})
	res, err := p.Run(context.Background(), []types.Document{scenarioDeck()})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		types.StageRaw:             188,
		types.StageHeaderFilter:    88,
		types.StageFrequencyFilter: 16,
		types.StageClustering:      16,
		types.StageHierarchical:    14,
		types.StageSubtopics:       3,
		types.StageFinal:           14,
	}, stageCounts(res.Stats))

	var order []string
	for _, sc := range res.Stats.Stages {
		order = append(order, sc.Stage)
	}
	assert.Equal(t, types.StageOrder, order)

	assert.Equal(t, 25, res.AdaptiveCap)
	assert.Equal(t, 25, res.Stats.AdaptiveCap)
	assert.Equal(t, 1, res.Stats.Documents)
	assert.Equal(t, 100, res.Stats.TotalPages)

	require.Len(t, res.Topics, 14)
	lead := res.Topics[0]
	assert.Equal(t, "Oligopoly", lead.Name)
	assert.Equal(t, 9, lead.Occurrences)
	assert.Equal(t, []string{"Oligopoly I: Cournot", "Oligopoly II: Bertrand", "Oligopoly III: Stackelberg"}, lead.Subtopics)
	assert.Equal(t, "micro.pdf", lead.SourceDocument)

	assert.Equal(t, "Supply and Demand", res.Topics[1].Name)
	assert.Equal(t, 8, res.Topics[1].Occurrences)

	require.Len(t, res.Subtopics, 3)
	assert.Equal(t, "Oligopoly", res.Subtopics[0].Parent)

	for i := 1; i < len(res.Topics); i++ {
		assert.GreaterOrEqual(t, res.Topics[i-1].Occurrences, res.Topics[i].Occurrences)
	}
	for _, tp := range res.Topics {
		assert.Equal(t, len(tp.Pages), tp.Occurrences)
		assert.NotEqual(t, "Introductory Microeconomics", tp.Name)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	doc := scenarioDeck()
	want, err := New(types.DefaultPipelineConfig(), Options{}).Run(context.Background(), []types.Document{doc})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for _, workers := range []int{1, 3, 16} {
		shuffled := doc
		shuffled.Pages = append([]types.Page(nil), doc.Pages...)
		rng.Shuffle(len(shuffled.Pages), func(a, b int) {
			shuffled.Pages[a], shuffled.Pages[b] = shuffled.Pages[b], shuffled.Pages[a]
		})

		cfg := types.DefaultPipelineConfig()
		cfg.Workers = workers
		got, err := New(cfg, Options{}).Run(context.Background(), []types.Document{shuffled})
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestRunMultipleDocuments(t *testing.T) {
	first := buildDeck("week1.pdf", 20, "", []titleCount{
		{"Market Equilibrium", 3},
		{"Consumer Surplus", 2},
	})
	second := buildDeck("week2.pdf", 20, "", []titleCount{
		{"Market Equilibrium", 1},
		{"Game Theory Basics", 4},
	})

	res, err := New(types.DefaultPipelineConfig(), Options{}).Run(context.Background(), []types.Document{first, second})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Documents)
	assert.Equal(t, 40, res.Stats.TotalPages)
	assert.Equal(t, 19, res.AdaptiveCap)

	byName := make(map[string]types.Topic)
	for _, tp := range res.Topics {
		byName[tp.Name] = tp
	}
	require.Contains(t, byName, "Market Equilibrium")
	assert.Equal(t, []int{0, 1, 2, 20}, byName["Market Equilibrium"].Pages)
	assert.Equal(t, "week1.pdf", byName["Market Equilibrium"].SourceDocument)
	assert.Equal(t, "week2.pdf", byName["Game Theory Basics"].SourceDocument)
	assert.Equal(t, 21, byName["Game Theory Basics"].FirstPage)
}

func TestRunEmptyInput(t *testing.T) {
	res, err := New(types.DefaultPipelineConfig(), Options{}).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Topics)
	assert.NotNil(t, res.Topics)
	assert.Zero(t, res.AdaptiveCap)
	for _, sc := range res.Stats.Stages {
		assert.Zero(t, sc.Count, sc.Stage)
	}
	assert.Len(t, res.Stats.Stages, len(types.StageOrder))
}

func TestRunDocumentWithoutText(t *testing.T) {
	res, err := New(types.DefaultPipelineConfig(), Options{}).Run(context.Background(), []types.Document{
		{ID: "scanned.pdf", PageCount: 5},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Topics)
	assert.Equal(t, 5, res.Stats.TotalPages)
	assert.Equal(t, 8, res.AdaptiveCap)
}

func TestRunRejectsInvalidDocuments(t *testing.T) {
	_, err := New(types.DefaultPipelineConfig(), Options{}).Run(context.Background(), []types.Document{
		{ID: "bad.pdf", PageCount: 2, Pages: []types.Page{{Index: 2, Height: height}}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidate(t *testing.T) {
	run := func(page int) types.TextRun {
		return types.TextRun{Text: "Market Power", FontSize: 30, Y: 100, Page: page, PageHeight: height}
	}
	tests := []struct {
		name    string
		doc     types.Document
		wantErr bool
	}{
		{name: "empty document", doc: types.Document{ID: "a"}},
		{name: "pages without text", doc: types.Document{ID: "a", PageCount: 3, Pages: []types.Page{{Index: 1}}}},
		{name: "valid", doc: types.Document{ID: "a", PageCount: 2, Pages: []types.Page{
			{Index: 1, Height: height, Runs: []types.TextRun{run(1)}},
			{Index: 0, Height: height, Runs: []types.TextRun{run(0)}},
		}}},
		{name: "negative page count", doc: types.Document{ID: "a", PageCount: -1}, wantErr: true},
		{name: "negative index", doc: types.Document{ID: "a", PageCount: 2, Pages: []types.Page{{Index: -1}}}, wantErr: true},
		{name: "index past end", doc: types.Document{ID: "a", PageCount: 2, Pages: []types.Page{{Index: 2}}}, wantErr: true},
		{name: "duplicate index", doc: types.Document{ID: "a", PageCount: 2, Pages: []types.Page{{Index: 1}, {Index: 1}}}, wantErr: true},
		{name: "run on wrong page", doc: types.Document{ID: "a", PageCount: 2, Pages: []types.Page{
			{Index: 0, Height: height, Runs: []types.TextRun{run(1)}},
		}}, wantErr: true},
		{name: "runs without height", doc: types.Document{ID: "a", PageCount: 1, Pages: []types.Page{
			{Index: 0, Runs: []types.TextRun{run(0)}},
		}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(types.DefaultPipelineConfig(), Options{}).Run(ctx, []types.Document{scenarioDeck()})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

type fixedDetector struct {
	lang  string
	calls int
}

func (d *fixedDetector) Detect(string) (string, bool) {
	d.calls++
	return d.lang, d.lang != ""
}

func TestRunLanguageSelectsRules(t *testing.T) {
	doc := buildDeck("deck.pdf", 40, "", []titleCount{
		{"Questions", 3},
		{"Market Structure", 3},
	})

	topicNames := func(det *fixedDetector) []string {
		res, err := New(types.DefaultPipelineConfig(), Options{Detector: det}).Run(context.Background(), []types.Document{doc})
		require.NoError(t, err)
		var out []string
		for _, tp := range res.Topics {
			out = append(out, tp.Name)
		}
		return out
	}

	en := &fixedDetector{lang: "en"}
	assert.Equal(t, []string{"Market Structure"}, topicNames(en))
	assert.Equal(t, 1, en.calls)

	de := &fixedDetector{lang: "de"}
	assert.ElementsMatch(t, []string{"Market Structure", "Questions"}, topicNames(de))

	unknown := &fixedDetector{}
	assert.Equal(t, []string{"Market Structure"}, topicNames(unknown))
}

func TestRunLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(types.DefaultPipelineConfig(), Options{Logger: logger}).Run(context.Background(), []types.Document{scenarioDeck()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "pipeline complete")
	assert.Contains(t, out, "stage=after_clustering count=16")
}
