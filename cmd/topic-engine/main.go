// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the topic-engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the topic-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "topic-engine",
	Short: "Distill lecture decks into course-level study topics",
	Long: `topic-engine reads paginated course material (lecture slides, outlines)
and consolidates the per-slide headlines into a short, ranked list of
course topics.

Use extract to run the pipeline over files, rules to inspect or validate
boilerplate rule sets, and catalog to seed the results into a course
topic catalog.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./topic-engine.yaml or ~/.config/topic-engine/topic-engine.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline stages to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("topic-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "topic-engine"))
		}
	}

	configure(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configure binds TOPIC_ENGINE_* environment variables and registers a
// default for every configuration key. Unmarshal only consults the
// environment for keys viper already knows, and registered defaults let an
// explicit zero in the config file stand.
func configure(v *viper.Viper) {
	v.SetEnvPrefix("TOPIC_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := types.DefaultPipelineConfig()
	for key, value := range map[string]any{
		"pipeline.font_tolerance":            d.FontTolerance,
		"pipeline.top_margin":                d.TopMargin,
		"pipeline.bottom_margin":             d.BottomMargin,
		"pipeline.min_length":                d.MinLength,
		"pipeline.max_length":                d.MaxLength,
		"pipeline.min_alnum_ratio":           d.MinAlnumRatio,
		"pipeline.header_threshold":          d.HeaderThreshold,
		"pipeline.frequency_ratio":           d.FrequencyRatio,
		"pipeline.min_frequency":             d.MinFrequency,
		"pipeline.similarity_threshold":      d.SimilarityThreshold,
		"pipeline.representative_max_length": d.RepresentativeMaxLength,
		"pipeline.cap_multiplier":            d.CapMultiplier,
		"pipeline.cap_min":                   d.CapMin,
		"pipeline.cap_max":                   d.CapMax,
		"pipeline.workers":                   d.Workers,
		"pipeline.detect_language":           d.DetectLanguage,
		"conversion.backend":                 string(types.BackendPDF),
		"conversion.image":                   "",
		"catalog.dir":                        "catalog",
		"catalog.max_results":                100,
	} {
		v.SetDefault(key, value)
	}
}

// loadConfig decodes the configuration file and environment into a Config.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a stderr logger at debug level when --verbose is set,
// and nil otherwise so the pipeline stays silent.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
