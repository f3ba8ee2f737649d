// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the course topic catalog (seed, list, export)",
	Long: `Catalog keeps course topics in a local SQLite database. Seed runs the
pipeline and adds the resulting topics to a course, skipping names the
course already has.`,
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed [files...]",
	Short: "Extract topics from files and add them to a course",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogSeed,
}

func runCatalogSeed(cmd *cobra.Command, args []string) error {
	course, _ := cmd.Flags().GetString("course")
	if course == "" {
		return fmt.Errorf("--course is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := runPipeline(ctx, cmd, args)
	if err != nil {
		return err
	}

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Seed(ctx, course, res, os.Stdout)
	return err
}

var catalogListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List catalog topics",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	topics, err := store.List(context.Background(), catalogQuery(cmd, args))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(topics)
	}

	if len(topics) == 0 {
		fmt.Println("No topics found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-20s  %-40s  %-6s  %-5s  %s\n",
		"ID", "Course", "Topic", "Weight", "Occ", "Subtopics")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))
	for _, t := range topics {
		subs := ""
		if len(t.Subtopics) > 0 {
			subs = fmt.Sprintf("✓ (%d)", len(t.Subtopics))
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-20s  %-40s  %-6d  %-5d  %s\n",
			t.ID, truncate(t.Course, 20), truncate(t.Name, 40), t.Weight, t.OccurrenceCount, subs)
	}
	fmt.Fprintf(os.Stdout, "\n%d topics\n", len(topics))
	return nil
}

var catalogRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the seeding runs of a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		course, _ := cmd.Flags().GetString("course")
		if course == "" {
			return fmt.Errorf("--course is required")
		}
		store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(context.Background(), course)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %d docs, %d pages  created %d, skipped %d\n",
				r.ID, r.CreatedAt, r.Documents, r.TotalPages, r.Created, r.Skipped)
		}
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalog topics to YAML or JSON",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := catalogQuery(cmd, args)
	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("catalog-dir"); cmd.Flags().Changed("catalog-dir") {
		cfg.Catalog.Dir = dir
	}
	return catalog.NewStore(cfg.Catalog)
}

func catalogQuery(cmd *cobra.Command, args []string) catalog.QueryOptions {
	course, _ := cmd.Flags().GetString("course")
	limit, _ := cmd.Flags().GetInt("limit")
	return catalog.QueryOptions{
		Course:     course,
		Query:      strings.Join(args, " "),
		MaxResults: limit,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "directory holding the catalog database")
	catalogCmd.PersistentFlags().String("course", "", "course name")

	addPipelineFlags(catalogSeedCmd)

	catalogListCmd.Flags().Int("limit", 0, "maximum topics (0 = use default)")
	catalogListCmd.Flags().Bool("json", false, "output topics as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogSeedCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRunsCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
