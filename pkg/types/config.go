// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PipelineConfig holds every threshold used by the consolidation pipeline.
// Start from DefaultPipelineConfig when building one by hand: the margins
// and the ratios MinAlnumRatio and FrequencyRatio accept zero as a real
// setting, so WithDefaults only replaces them when negative.
type PipelineConfig struct {
	// FontTolerance is the fraction of a page's largest font size a run must
	// reach to be treated as title text (default 0.95).
	FontTolerance float64 `json:"font_tolerance" yaml:"font_tolerance" mapstructure:"font_tolerance"`

	// TopMargin is the fraction of page height at the top treated as running
	// header space (default 0.05). Zero disables the header band.
	TopMargin float64 `json:"top_margin" yaml:"top_margin" mapstructure:"top_margin"`

	// BottomMargin is the fraction of page height at the bottom treated as
	// footer space (default 0.10). Zero disables the footer band.
	BottomMargin float64 `json:"bottom_margin" yaml:"bottom_margin" mapstructure:"bottom_margin"`

	// MinLength and MaxLength bound a candidate line's length in characters
	// (defaults 6 and 80).
	MinLength int `json:"min_length" yaml:"min_length" mapstructure:"min_length"`
	MaxLength int `json:"max_length" yaml:"max_length" mapstructure:"max_length"`

	// MinAlnumRatio is the minimum share of letters and digits in a line
	// (default 0.5). Zero accepts any mix.
	MinAlnumRatio float64 `json:"min_alnum_ratio" yaml:"min_alnum_ratio" mapstructure:"min_alnum_ratio"`

	// HeaderThreshold is the page-coverage ratio above which a candidate is
	// dropped as a repeated header (default 0.10).
	HeaderThreshold float64 `json:"header_threshold" yaml:"header_threshold" mapstructure:"header_threshold"`

	// FrequencyRatio scales the minimum occurrence count with page count
	// (default 0.03). Zero leaves MinFrequency as the only floor.
	FrequencyRatio float64 `json:"frequency_ratio" yaml:"frequency_ratio" mapstructure:"frequency_ratio"`

	// MinFrequency is the floor of the minimum occurrence count (default 2).
	MinFrequency int `json:"min_frequency" yaml:"min_frequency" mapstructure:"min_frequency"`

	// SimilarityThreshold is the 0-100 score at which two candidates are
	// clustered together (default 90).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	// RepresentativeMaxLength caps the length credit a cluster representative
	// gets for longer text (default 80).
	RepresentativeMaxLength int `json:"representative_max_length" yaml:"representative_max_length" mapstructure:"representative_max_length"`

	// CapMultiplier, CapMin and CapMax define the adaptive output cap
	// clamp(round(sqrt(pages) * CapMultiplier), CapMin, CapMax) (defaults 3, 8, 25).
	CapMultiplier float64 `json:"cap_multiplier" yaml:"cap_multiplier" mapstructure:"cap_multiplier"`
	CapMin        int     `json:"cap_min" yaml:"cap_min" mapstructure:"cap_min"`
	CapMax        int     `json:"cap_max" yaml:"cap_max" mapstructure:"cap_max"`

	// Workers bounds concurrent page extraction (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// DetectLanguage enables per-document language detection to select
	// language-specific boilerplate rules.
	DetectLanguage bool `json:"detect_language" yaml:"detect_language" mapstructure:"detect_language"`
}

// DefaultPipelineConfig returns the standard thresholds.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		FontTolerance:           0.95,
		TopMargin:               0.05,
		BottomMargin:            0.10,
		MinLength:               6,
		MaxLength:               80,
		MinAlnumRatio:           0.5,
		HeaderThreshold:         0.10,
		FrequencyRatio:          0.03,
		MinFrequency:            2,
		SimilarityThreshold:     90,
		RepresentativeMaxLength: 80,
		CapMultiplier:           3,
		CapMin:                  8,
		CapMax:                  25,
		Workers:                 4,
	}
}

// WithDefaults returns a copy of c with unset fields replaced by their
// defaults. Margins, MinAlnumRatio and FrequencyRatio are unset only when
// negative; every other field is unset when zero or negative.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	d := DefaultPipelineConfig()
	if c.FontTolerance <= 0 {
		c.FontTolerance = d.FontTolerance
	}
	if c.TopMargin < 0 {
		c.TopMargin = d.TopMargin
	}
	if c.BottomMargin < 0 {
		c.BottomMargin = d.BottomMargin
	}
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.MaxLength <= 0 {
		c.MaxLength = d.MaxLength
	}
	if c.MinAlnumRatio < 0 {
		c.MinAlnumRatio = d.MinAlnumRatio
	}
	if c.HeaderThreshold <= 0 {
		c.HeaderThreshold = d.HeaderThreshold
	}
	if c.FrequencyRatio < 0 {
		c.FrequencyRatio = d.FrequencyRatio
	}
	if c.MinFrequency <= 0 {
		c.MinFrequency = d.MinFrequency
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.RepresentativeMaxLength <= 0 {
		c.RepresentativeMaxLength = d.RepresentativeMaxLength
	}
	if c.CapMultiplier <= 0 {
		c.CapMultiplier = d.CapMultiplier
	}
	if c.CapMin <= 0 {
		c.CapMin = d.CapMin
	}
	if c.CapMax <= 0 {
		c.CapMax = d.CapMax
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// ConversionBackend identifies the page text provider.
type ConversionBackend string

const (
	BackendPDF       ConversionBackend = "pdf"
	BackendRuns      ConversionBackend = "runs"
	BackendContainer ConversionBackend = "container"
)

// ConversionConfig holds settings for turning source files into page text runs.
type ConversionConfig struct {
	// Backend selects the provider: pdf, runs, or container.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image used by the container backend.
	Image string `json:"image,omitempty" yaml:"image,omitempty" mapstructure:"image"`
}

// CatalogConfig holds settings for the topic catalog store.
type CatalogConfig struct {
	// Dir is the directory holding the catalog database and exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of topics listed (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups all settings read from the configuration file.
type Config struct {
	Pipeline   PipelineConfig   `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}
