// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract selects the headline lines of a page: the runs set in the
// page's largest font, outside the header and footer bands, that look like
// a title rather than a page number or institutional boilerplate.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/topic-engine/internal/boilerplate"
	"github.com/pdiddy/topic-engine/internal/normalize"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// minRunLength is the trimmed length a run must exceed to be considered at
// all, including for the page's maximum font size.
const minRunLength = 2

// Reason explains why a run was not extracted.
type Reason string

const (
	Accepted       Reason = ""
	TooShort       Reason = "too_short"
	SmallFont      Reason = "small_font"
	HeaderBand     Reason = "header_band"
	FooterBand     Reason = "footer_band"
	BadLength      Reason = "length"
	LowAlnum       Reason = "low_alnum"
	PageNumberLike Reason = "page_number"
	EmptyKey       Reason = "empty_key"
	Boilerplate    Reason = "boilerplate"
)

var (
	pageNumberPattern = regexp.MustCompile(`^[\d\s\-/]+$`)
	romanPattern      = regexp.MustCompile(`(?i)^[ivxlcdm]+\.?$`)
)

// Seed is one extracted headline observation.
type Seed struct {
	Key      string
	Text     string
	Page     int
	FontSize float64
}

// Verdict is the outcome for a single run, used for tracing.
type Verdict struct {
	Run    types.TextRun
	Reason Reason
	Rule   string
}

// Extractor turns pages into seeds. It holds no mutable state and may be
// shared across goroutines.
type Extractor struct {
	cfg        types.PipelineConfig
	classifier *boilerplate.Classifier
}

// New returns an extractor using cfg's thresholds. A nil classifier uses
// the builtin boilerplate rules.
func New(cfg types.PipelineConfig, classifier *boilerplate.Classifier) *Extractor {
	if classifier == nil {
		classifier = boilerplate.DefaultClassifier()
	}
	return &Extractor{cfg: cfg.WithDefaults(), classifier: classifier}
}

// WithClassifier returns a copy of the extractor using a different classifier.
func (e *Extractor) WithClassifier(c *boilerplate.Classifier) *Extractor {
	out := *e
	out.classifier = c
	return &out
}

// Page returns the seeds of one page in run order. Seed.Page is the page's
// own index; callers add document offsets.
func (e *Extractor) Page(page types.Page) []Seed {
	var seeds []Seed
	e.walk(page, func(v Verdict, seed Seed) {
		if v.Reason == Accepted {
			seeds = append(seeds, seed)
		}
	})
	return seeds
}

// Trace returns a verdict for every run on the page, in run order.
func (e *Extractor) Trace(page types.Page) []Verdict {
	verdicts := make([]Verdict, 0, len(page.Runs))
	e.walk(page, func(v Verdict, _ Seed) {
		verdicts = append(verdicts, v)
	})
	return verdicts
}

func (e *Extractor) walk(page types.Page, visit func(Verdict, Seed)) {
	maxFont := 0.0
	for _, r := range page.Runs {
		if runeLen(strings.TrimSpace(r.Text)) > minRunLength && r.FontSize > maxFont {
			maxFont = r.FontSize
		}
	}

	height := page.Height
	top := e.cfg.TopMargin * height
	bottom := (1 - e.cfg.BottomMargin) * height

	for _, r := range page.Runs {
		v := Verdict{Run: r}
		var seed Seed
		switch {
		case runeLen(strings.TrimSpace(r.Text)) <= minRunLength:
			v.Reason = TooShort
		case maxFont <= 0 || r.FontSize < e.cfg.FontTolerance*maxFont:
			v.Reason = SmallFont
		case e.cfg.TopMargin > 0 && r.Y <= top:
			v.Reason = HeaderBand
		case e.cfg.BottomMargin > 0 && r.Y >= bottom:
			v.Reason = FooterBand
		default:
			text := normalize.Display(r.Text)
			v.Reason = e.validate(text)
			if v.Reason != Accepted {
				break
			}
			key := normalize.Key(text)
			if key == "" {
				v.Reason = EmptyKey
				break
			}
			if m, ok := e.classifier.MatchKey(key); ok {
				v.Reason = Boilerplate
				v.Rule = m.RuleSet + "/" + m.RuleID
				break
			}
			seed = Seed{Key: key, Text: text, Page: page.Index, FontSize: r.FontSize}
		}
		visit(v, seed)
	}
}

// validate applies the shape checks to a display-normalized line.
func (e *Extractor) validate(text string) Reason {
	n := runeLen(text)
	if n < e.cfg.MinLength || n > e.cfg.MaxLength {
		return BadLength
	}
	alnum := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if float64(alnum)/float64(n) < e.cfg.MinAlnumRatio {
		return LowAlnum
	}
	if IsPageNumberLike(text) {
		return PageNumberLike
	}
	return Accepted
}

// IsPageNumberLike reports whether text consists only of digits and
// separators ("12", "3 / 40", "1-2") or is a lone roman numeral.
func IsPageNumberLike(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return pageNumberPattern.MatchString(text) || romanPattern.MatchString(text)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
