// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/topic-engine/internal/boilerplate"
	"github.com/pdiddy/topic-engine/internal/compat"
	"github.com/pdiddy/topic-engine/internal/convert"
	"github.com/pdiddy/topic-engine/internal/pipeline"
	"github.com/pdiddy/topic-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract course topics from lecture decks",
	Long: `Extract reads PDF decks (or JSON/YAML text-run files) and runs the topic
pipeline over all of them together: headline extraction, boilerplate and
repeated-header removal, frequency gating, fuzzy clustering, merging of
numbered series ("Oligopoly I", "Oligopoly II") and ranking.

The result is written as YAML (default) or JSON. --legacy writes the flat
topic_name/confidence/occurrence_count records used by older importers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

// legacyOutput is the flat layout written by --legacy.
type legacyOutput struct {
	Topics []compat.Record `json:"topics" yaml:"topics"`
	Stats  compat.Stats    `json:"stats" yaml:"stats"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := runPipeline(ctx, cmd, args)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	legacy, _ := cmd.Flags().GetBool("legacy")

	var v any = res
	if legacy {
		v = legacyOutput{Topics: compat.Flatten(res), Stats: compat.StatsOf(res)}
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeFormatted(out, v, format); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d topics from %d pages (cap %d, %.1f%% reduction)\n",
		len(res.Topics), res.Stats.TotalPages, res.AdaptiveCap, res.Stats.ReductionPercent())
	return nil
}

// runPipeline loads the files named in args and runs the pipeline over
// them. Files that fail to load are reported on stderr and skipped; the
// run fails only when no file could be loaded.
func runPipeline(ctx context.Context, cmd *cobra.Command, args []string) (*pipeline.Result, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyPipelineFlags(cmd, &cfg)

	provider, err := convert.NewProvider(ctx, cfg.Conversion)
	if err != nil {
		return nil, err
	}

	docs, batch, err := convert.LoadAll(ctx, provider, args, os.Stderr)
	if err != nil {
		return nil, err
	}
	if batch.HasFailures() && len(docs) == 0 {
		return nil, fmt.Errorf("%d file(s) failed to load", batch.Failed)
	}

	if dumpDir, _ := cmd.Flags().GetString("dump-runs"); dumpDir != "" {
		if err := dumpRuns(dumpDir, docs); err != nil {
			return nil, err
		}
	}

	classifier, err := buildClassifier(cmd)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Classifier: classifier,
		Logger:     newLogger(cmd),
	}
	if cfg.Pipeline.DetectLanguage {
		opts.Detector = boilerplate.NewLinguaDetector(classifier.Languages()...)
	}

	return pipeline.New(cfg.Pipeline, opts).Run(ctx, docs)
}

// applyPipelineFlags lets command-line flags override the config file.
func applyPipelineFlags(cmd *cobra.Command, cfg *types.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Pipeline.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("detect-language") {
		cfg.Pipeline.DetectLanguage, _ = flags.GetBool("detect-language")
	}
	if flags.Changed("backend") {
		backend, _ := flags.GetString("backend")
		cfg.Conversion.Backend = types.ConversionBackend(backend)
	}
	if flags.Changed("image") {
		cfg.Conversion.Image, _ = flags.GetString("image")
	}
}

// buildClassifier combines the builtin rule sets with any --rules files.
func buildClassifier(cmd *cobra.Command) (*boilerplate.Classifier, error) {
	sets, err := boilerplate.Builtin()
	if err != nil {
		return nil, err
	}
	extra, _ := cmd.Flags().GetStringSlice("rules")
	for _, path := range extra {
		set, err := boilerplate.LoadRuleSet(path)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return boilerplate.NewClassifier(sets...), nil
}

// dumpRuns writes each loaded document's text runs to dir as <id>.runs.yaml
// so a run can be replayed with the runs backend.
func dumpRuns(dir string, docs []types.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dump directory: %w", err)
	}
	for _, doc := range docs {
		name := strings.TrimSuffix(filepath.Base(doc.ID), filepath.Ext(doc.ID)) + ".runs.yaml"
		if err := convert.WriteRuns(filepath.Join(dir, name), doc); err != nil {
			return err
		}
	}
	return nil
}

func writeFormatted(w io.Writer, v any, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported format %q: use yaml or json", format)
}

// addPipelineFlags registers the flags shared by commands that run the pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "concurrent page extraction workers (0 = config or default)")
	cmd.Flags().Bool("detect-language", false, "detect each document's language to select boilerplate rules")
	cmd.Flags().StringSlice("rules", nil, "additional boilerplate rule-set files (YAML)")
	cmd.Flags().String("backend", "", "conversion backend: pdf, runs, or container")
	cmd.Flags().String("image", "", "container image for the container backend")
	cmd.Flags().String("dump-runs", "", "write the loaded text runs of each file to this directory")
}

func init() {
	addPipelineFlags(extractCmd)
	extractCmd.Flags().String("format", "yaml", "output format: yaml or json")
	extractCmd.Flags().StringP("output", "o", "", "write the result to a file instead of stdout")
	extractCmd.Flags().Bool("legacy", false, "write flat legacy topic records")

	rootCmd.AddCommand(extractCmd)
}
