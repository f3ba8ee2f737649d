// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists course topics in SQLite. Pipeline results are
// seeded into a course as plain topics with their subtopics; seeding skips
// names the course already tracks, so repeated imports are safe.
package catalog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/topic-engine/pkg/types"
)

const (
	dbFile = "topics.db"

	// DefaultWeight is the weight given to topics created by hand.
	DefaultWeight = 10

	defaultMaxResults = 100
)

// ErrNotFound is returned when a course or topic does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewStore opens or creates the catalog database at dir/topics.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("catalog directory is not set")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
		entropy:    ulid.Monotonic(rand.Reader, 0),
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL,
			documents INTEGER NOT NULL,
			total_pages INTEGER NOT NULL,
			created INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			topic_name TEXT NOT NULL,
			topic_key TEXT NOT NULL,
			weight_points INTEGER NOT NULL DEFAULT 10,
			occurrence_count INTEGER NOT NULL DEFAULT 0,
			confidence REAL NOT NULL DEFAULT 0,
			source_file TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			run_id TEXT REFERENCES runs(id) ON DELETE SET NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_course_key ON topics(course_id, topic_key)`,
		`CREATE TABLE IF NOT EXISTS subtopics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic_id INTEGER NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			occurrence_count INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subtopics_topic_id ON subtopics(topic_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// newRunID returns a monotonic ULID for the current time.
func (s *Store) newRunID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

func (s *Store) timestamp() (time.Time, string) {
	now := s.now().UTC()
	return now, now.Format(time.RFC3339Nano)
}

// EnsureCourse returns the ID of the named course, creating it if needed.
func (s *Store) EnsureCourse(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("course name is empty")
	}
	_, created := s.timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO courses (name, created_at) VALUES (?, ?)`, name, created,
	); err != nil {
		return 0, fmt.Errorf("inserting course: %w", err)
	}
	return s.courseID(ctx, s.db, name)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) courseID(ctx context.Context, q queryer, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM courses WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("course %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up course: %w", err)
	}
	return id, nil
}

// Courses returns every course name in creation order.
func (s *Store) Courses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
