// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/pdiddy/topic-engine/internal/compat"
	"github.com/pdiddy/topic-engine/internal/normalize"
	"github.com/pdiddy/topic-engine/internal/pipeline"
)

// SeedSummary holds counts from one seeding run.
type SeedSummary struct {
	RunID   string
	Created int
	Skipped int
}

// Total returns the number of topics considered.
func (s SeedSummary) Total() int {
	return s.Created + s.Skipped
}

// Seed inserts the result's topics into course, creating the course if
// needed. A topic whose normalized name already exists in the course is
// skipped. Seeded topics start with zero weight and a note naming their
// source file; each merged parent carries its subtopics. The whole seed is
// one transaction and is recorded as a run.
func (s *Store) Seed(ctx context.Context, course string, res *pipeline.Result, w io.Writer) (SeedSummary, error) {
	if _, err := s.EnsureCourse(ctx, course); err != nil {
		return SeedSummary{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	courseID, err := s.courseID(ctx, tx, course)
	if err != nil {
		return SeedSummary{}, err
	}

	existing, err := existingKeys(ctx, tx, courseID)
	if err != nil {
		return SeedSummary{}, err
	}

	now, created := s.timestamp()
	summary := SeedSummary{RunID: s.newRunID(now)}

	var documents, totalPages int
	if res != nil {
		documents, totalPages = res.Stats.Documents, res.Stats.TotalPages
	}
	// The run row goes in first so topics can reference it; counts are
	// filled in once seeding is done.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, course_id, created_at, documents, total_pages, created, skipped)
		 VALUES (?, ?, ?, ?, ?, 0, 0)`,
		summary.RunID, courseID, created, documents, totalPages,
	); err != nil {
		return SeedSummary{}, fmt.Errorf("inserting run: %w", err)
	}

	subtopics := subtopicsByParent(res)

	for _, rec := range compat.Flatten(res) {
		select {
		case <-ctx.Done():
			return SeedSummary{}, ctx.Err()
		default:
		}

		key := normalize.Key(rec.TopicName)
		if existing[key] {
			fmt.Fprintf(w, "skipped %s (already in %s)\n", rec.TopicName, course)
			summary.Skipped++
			continue
		}

		notes := ""
		if rec.SourceFile != "" {
			notes = "Imported from: " + rec.SourceFile
		}
		r, err := tx.ExecContext(ctx,
			`INSERT INTO topics (course_id, topic_name, topic_key, weight_points,
				occurrence_count, confidence, source_file, notes, run_id)
			 VALUES (?, ?, ?, 0, ?, ?, ?, ?, ?)`,
			courseID, rec.TopicName, key, rec.OccurrenceCount, rec.Confidence,
			rec.SourceFile, notes, summary.RunID,
		)
		if err != nil {
			return SeedSummary{}, fmt.Errorf("inserting topic %q: %w", rec.TopicName, err)
		}
		topicID, err := r.LastInsertId()
		if err != nil {
			return SeedSummary{}, fmt.Errorf("reading topic id: %w", err)
		}

		for i, sub := range subtopics[rec.TopicName] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subtopics (topic_id, name, occurrence_count, position) VALUES (?, ?, ?, ?)`,
				topicID, sub.TopicName, sub.OccurrenceCount, i,
			); err != nil {
				return SeedSummary{}, fmt.Errorf("inserting subtopic %q: %w", sub.TopicName, err)
			}
		}

		existing[key] = true
		fmt.Fprintf(w, "created %s\n", rec.TopicName)
		summary.Created++
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET created = ?, skipped = ? WHERE id = ?`,
		summary.Created, summary.Skipped, summary.RunID,
	); err != nil {
		return SeedSummary{}, fmt.Errorf("updating run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SeedSummary{}, fmt.Errorf("committing seed: %w", err)
	}

	fmt.Fprintf(w, "\nrun %s: created: %d, skipped: %d\n", summary.RunID, summary.Created, summary.Skipped)
	return summary, nil
}

// existingKeys returns the normalized names already tracked by a course.
// Keys are recomputed from topic_name so topics renamed by hand are matched
// by their current name.
func existingKeys(ctx context.Context, tx *sql.Tx, courseID int64) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT topic_name FROM topics WHERE course_id = ?`, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing existing topics: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		keys[normalize.Key(name)] = true
	}
	return keys, rows.Err()
}

func subtopicsByParent(res *pipeline.Result) map[string][]compat.SubtopicRow {
	byParent := make(map[string][]compat.SubtopicRow)
	for _, row := range compat.Subtopics(res) {
		byParent[row.ParentTopic] = append(byParent[row.ParentTopic], row)
	}
	return byParent
}

// Run is one recorded seeding run.
type Run struct {
	ID         string `json:"id" yaml:"id"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	Documents  int    `json:"documents" yaml:"documents"`
	TotalPages int    `json:"total_pages" yaml:"total_pages"`
	Created    int    `json:"created" yaml:"created"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
}

// Runs returns the seeding runs of a course, oldest first.
func (s *Store) Runs(ctx context.Context, course string) ([]Run, error) {
	courseID, err := s.courseID(ctx, s.db, course)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, documents, total_pages, created, skipped
		 FROM runs WHERE course_id = ? ORDER BY id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Documents, &r.TotalPages, &r.Created, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
