// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/topic-engine/internal/normalize"
)

// Topic is a stored topic with its subtopics.
type Topic struct {
	ID              int64    `json:"id" yaml:"id"`
	Course          string   `json:"course" yaml:"course"`
	Name            string   `json:"topic_name" yaml:"topic_name"`
	Weight          int      `json:"weight_points" yaml:"weight_points"`
	OccurrenceCount int      `json:"occurrence_count" yaml:"occurrence_count"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	SourceFile      string   `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Notes           string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	RunID           string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Subtopics       []string `json:"subtopics,omitempty" yaml:"subtopics,omitempty"`
}

// QueryOptions holds parameters for topic listing.
type QueryOptions struct {
	// Course restricts results to one course. Empty lists every course.
	Course string

	// Query matches topic names containing the text, case-insensitively.
	Query string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns topics ordered by course and insertion order.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Topic, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT t.id, c.name, t.topic_name, t.weight_points, t.occurrence_count,
			t.confidence, t.source_file, t.notes, t.run_id
		FROM topics t
		JOIN courses c ON c.id = t.course_id
		WHERE 1=1`)

	if opts.Course != "" {
		qb.WriteString(` AND c.name = ?`)
		args = append(args, opts.Course)
	}
	if opts.Query != "" {
		qb.WriteString(` AND lower(t.topic_name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(opts.Query))+"%")
	}

	qb.WriteString(` ORDER BY c.id, t.id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range topics {
		subs, err := s.subtopics(ctx, topics[i].ID)
		if err != nil {
			return nil, err
		}
		topics[i].Subtopics = subs
	}
	return topics, nil
}

// Get returns one topic by ID.
func (s *Store) Get(ctx context.Context, id int64) (Topic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT t.id, c.name, t.topic_name, t.weight_points, t.occurrence_count,
			t.confidence, t.source_file, t.notes, t.run_id
		FROM topics t
		JOIN courses c ON c.id = t.course_id
		WHERE t.id = ?`, id)
	t, err := scanTopic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, fmt.Errorf("topic %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Topic{}, err
	}
	t.Subtopics, err = s.subtopics(ctx, id)
	if err != nil {
		return Topic{}, err
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTopic(sc scanner) (Topic, error) {
	var (
		t     Topic
		runID sql.NullString
	)
	if err := sc.Scan(&t.ID, &t.Course, &t.Name, &t.Weight, &t.OccurrenceCount,
		&t.Confidence, &t.SourceFile, &t.Notes, &runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Topic{}, err
		}
		return Topic{}, fmt.Errorf("scanning topic: %w", err)
	}
	t.RunID = runID.String
	return t, nil
}

func (s *Store) subtopics(ctx context.Context, topicID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM subtopics WHERE topic_id = ? ORDER BY position`, topicID)
	if err != nil {
		return nil, fmt.Errorf("querying subtopics: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning subtopic: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateTopic adds a topic to a course by hand. A non-positive weight
// takes DefaultWeight.
func (s *Store) CreateTopic(ctx context.Context, course, name string, weight int) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("topic name is empty")
	}
	if weight <= 0 {
		weight = DefaultWeight
	}
	courseID, err := s.EnsureCourse(ctx, course)
	if err != nil {
		return 0, err
	}
	r, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (course_id, topic_name, topic_key, weight_points) VALUES (?, ?, ?, ?)`,
		courseID, name, normalize.Key(name), weight,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting topic: %w", err)
	}
	return r.LastInsertId()
}

// TopicUpdate lists the fields to change; nil fields are left alone.
type TopicUpdate struct {
	Name   *string
	Weight *int
	Notes  *string
}

// UpdateTopic applies the non-nil fields of u to topic id.
func (s *Store) UpdateTopic(ctx context.Context, id int64, u TopicUpdate) error {
	var (
		sets []string
		args []any
	)
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return errors.New("topic name is empty")
		}
		sets = append(sets, "topic_name = ?", "topic_key = ?")
		args = append(args, name, normalize.Key(name))
	}
	if u.Weight != nil {
		sets = append(sets, "weight_points = ?")
		args = append(args, *u.Weight)
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}
	if len(sets) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}

	args = append(args, id)
	r, err := s.db.ExecContext(ctx,
		`UPDATE topics SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating topic: %w", err)
	}
	return requireAffected(r, id)
}

// DeleteTopic removes a topic and its subtopics.
func (s *Store) DeleteTopic(ctx context.Context, id int64) error {
	r, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting topic: %w", err)
	}
	return requireAffected(r, id)
}

func requireAffected(r sql.Result, id int64) error {
	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("topic %d: %w", id, ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
