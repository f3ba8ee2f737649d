// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package boilerplate

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector guesses the language of a block of text. Detect returns a
// lowercase ISO 639-1 code, or false when the language cannot be decided.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// linguaLanguages maps rule-set language codes to lingua languages.
var linguaLanguages = map[string]lingua.Language{
	"de": lingua.German,
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"it": lingua.Italian,
	"nl": lingua.Dutch,
}

// LinguaDetector detects languages with lingua-go, restricted to a fixed set
// of candidate languages so results are stable and fast.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector for the given ISO 639-1 codes. Unknown
// codes are ignored; English and German are used when fewer than two known
// codes remain.
func NewLinguaDetector(codes ...string) *LinguaDetector {
	var langs []lingua.Language
	seen := make(map[lingua.Language]bool)
	for _, code := range codes {
		if l, ok := linguaLanguages[strings.ToLower(code)]; ok && !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}
	if len(langs) < 2 {
		langs = []lingua.Language{lingua.English, lingua.German}
	}
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			WithMinimumRelativeDistance(0.1).
			Build(),
	}
}

// Detect implements LanguageDetector.
func (d *LinguaDetector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
