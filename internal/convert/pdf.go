// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/topic-engine/internal/normalize"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// letterHeight is used when a page's media box cannot be read.
const letterHeight = 792.0

// Glyph grouping thresholds. Gaps are measured in multiples of the font
// size.
const (
	baselineTolerance = 1.0
	wordGap           = 0.2
	columnGap         = 3.0
	fallbackAdvance   = 0.5
	maxParentDepth    = 32
)

// PDFProvider reads positioned glyphs from PDF pages and groups them into
// text runs. Glyph positions include the current transformation matrix
// and text is decoded through each font's encoding or ToUnicode map.
// Files the reader rejects are rewritten once with pdfcpu and retried.
type PDFProvider struct{}

// NewPDFProvider returns the native PDF provider.
func NewPDFProvider() *PDFProvider {
	return &PDFProvider{}
}

// Pages implements Provider.
func (p *PDFProvider) Pages(ctx context.Context, path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("opening PDF %s: %w", path, err)
	}

	r, err := openPDF(data)
	if err != nil {
		repaired, rerr := repairPDF(data)
		if rerr != nil {
			return types.Document{}, fmt.Errorf("reading PDF %s: %w", path, err)
		}
		if r, err = openPDF(repaired); err != nil {
			return types.Document{}, fmt.Errorf("reading PDF %s: %w", path, err)
		}
	}
	return readDocument(ctx, r, filepath.Base(path))
}

// openPDF parses data, turning reader panics on malformed input into
// errors.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("no pages")
	}
	return r, nil
}

// repairPDF rewrites data with pdfcpu using a classic cross-reference
// table.
func repairPDF(data []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readDocument(ctx context.Context, r *pdf.Reader, id string) (types.Document, error) {
	count := r.NumPage()
	doc := types.Document{ID: id, PageCount: count}
	for nr := 1; nr <= count; nr++ {
		if err := ctx.Err(); err != nil {
			return types.Document{}, err
		}
		texts, top, height, ok := pageText(r, nr)
		if !ok {
			continue
		}
		index := nr - 1
		runs := groupRuns(texts, index, top, height)
		if len(runs) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, types.Page{Index: index, Height: height, Runs: runs})
	}
	return doc, nil
}

// pageText returns the glyphs of page nr together with the top edge and
// height of its media box. Pages the reader cannot interpret report
// ok=false.
func pageText(r *pdf.Reader, nr int) (texts []pdf.Text, top, height float64, ok bool) {
	defer func() {
		if recover() != nil {
			texts, ok = nil, false
		}
	}()
	page := r.Page(nr)
	if page.V.IsNull() {
		return nil, 0, 0, false
	}
	top, height = mediaBox(page.V)
	return page.Content().Text, top, height, true
}

// mediaBox walks up the page tree to the nearest MediaBox.
func mediaBox(v pdf.Value) (top, height float64) {
	for depth := 0; depth < maxParentDepth && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			y0, y1 := box.Index(1).Float64(), box.Index(3).Float64()
			if h := math.Abs(y1 - y0); h > 0 {
				return math.Max(y0, y1), h
			}
		}
		v = v.Key("Parent")
	}
	return letterHeight, letterHeight
}

// groupRuns assembles glyphs into runs. Glyphs sharing a baseline form a
// line; a line splits into several runs where the horizontal gap exceeds
// columnGap font sizes.
func groupRuns(texts []pdf.Text, page int, top, height float64) []types.TextRun {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || strings.IndexFunc(t.S, unprintable) >= 0 {
			continue
		}
		t.FontSize = math.Abs(t.FontSize)
		glyphs = append(glyphs, t)
	}
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].Y != glyphs[j].Y {
			return glyphs[i].Y > glyphs[j].Y
		}
		return glyphs[i].X < glyphs[j].X
	})

	var lines [][]pdf.Text
	for _, g := range glyphs {
		if n := len(lines); n > 0 && math.Abs(lines[n-1][0].Y-g.Y) <= baselineTolerance {
			lines[n-1] = append(lines[n-1], g)
			continue
		}
		lines = append(lines, []pdf.Text{g})
	}

	var runs []types.TextRun
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		runs = append(runs, splitLine(line, page, top, height)...)
	}
	return runs
}

func splitLine(line []pdf.Text, page int, top, height float64) []types.TextRun {
	var (
		runs     []types.TextRun
		b        strings.Builder
		size     float64
		baseline float64
		end      float64
	)
	flush := func() {
		if text := normalize.Display(b.String()); text != "" {
			runs = append(runs, types.TextRun{
				Text:       text,
				FontSize:   round2(size),
				Y:          round2(top - baseline - size),
				Page:       page,
				PageHeight: height,
			})
		}
		b.Reset()
		size = 0
	}

	for i, g := range line {
		if i > 0 {
			gap := g.X - end
			em := math.Max(size, g.FontSize)
			switch {
			case gap > columnGap*em:
				flush()
			case gap > wordGap*em:
				b.WriteByte(' ')
			}
		}
		if b.Len() == 0 {
			baseline = g.Y
		}
		b.WriteString(g.S)
		size = math.Max(size, g.FontSize)
		end = g.X + advance(g)
	}
	flush()
	return runs
}

// advance estimates a glyph's width when its font carries no metrics.
func advance(g pdf.Text) float64 {
	if g.W > 0 {
		return g.W
	}
	return fallbackAdvance * g.FontSize * float64(len([]rune(g.S)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func unprintable(r rune) bool {
	return unicode.IsControl(r) || r == unicode.ReplacementChar
}
