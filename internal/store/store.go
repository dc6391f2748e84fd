// Package store keeps the log of asked questions in sqlite and answers the
// popularity queries the inspiration feed is built from.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/csheth/whatif/internal/api"
)

const DefaultUserID = "1"

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT,
	prompt TEXT,
	created_at DATETIME,
	response TEXT,
	additional_info TEXT
);
CREATE INDEX IF NOT EXISTS idx_questions_prompt ON questions(prompt);
`

// Entry is one asked question and the narrative returned for it.
type Entry struct {
	ID             int64
	UserID         string
	Prompt         string
	CreatedAt      time.Time
	Response       string
	AdditionalInfo string
}

// Store is a sqlite-backed question log.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path. ":memory:" keeps everything in
// process.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Record appends e to the log and returns its id. A zero CreatedAt is
// stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.UserID == "" {
		e.UserID = DefaultUserID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	var info sql.NullString
	if e.AdditionalInfo != "" {
		info = sql.NullString{String: e.AdditionalInfo, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (user_id, prompt, created_at, response, additional_info) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Prompt, e.CreatedAt, e.Response, info)
	if err != nil {
		return 0, fmt.Errorf("record question: %w", err)
	}
	return res.LastInsertId()
}

// Inspiration returns up to limit prompts ordered by how often they were
// asked. Ties keep the order in which prompts first appeared.
func (s *Store) Inspiration(ctx context.Context, limit int) ([]api.Inspiration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt, COUNT(*) AS n, MIN(id) AS first
		 FROM questions
		 GROUP BY prompt
		 ORDER BY n DESC, first ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query inspiration: %w", err)
	}
	defer rows.Close()

	items := []api.Inspiration{}
	for rows.Next() {
		var (
			item  api.Inspiration
			first int64
		)
		if err := rows.Scan(&item.Text, &item.Count, &first); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Background returns up to limit prompts sampled at random.
func (s *Store) Background(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prompt FROM questions ORDER BY RANDOM() LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query background: %w", err)
	}
	defer rows.Close()

	prompts := []string{}
	for rows.Next() {
		var prompt string
		if err := rows.Scan(&prompt); err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}
	return prompts, rows.Err()
}
