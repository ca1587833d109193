// Package duckdb exports evaluation results to a DuckDB database.
// Every invocation appends one run; nothing is read back to influence
// later evaluations.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for exporting evaluation results.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for ad hoc queries, such as reading
// eval_runs in tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS eval_runs (
			run_id VARCHAR PRIMARY KEY,
			started_at TIMESTAMP,
			caller VARCHAR,
			coverage VARCHAR,
			tolerance BIGINT,
			truth_path VARCHAR,
			truth_size BIGINT,
			truth_modtime TIMESTAMP,
			calls_path VARCHAR,
			calls_size BIGINT,
			calls_modtime TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS eval_summary (
			run_id VARCHAR,
			caller VARCHAR,
			coverage VARCHAR,
			vartype VARCHAR,
			length_range VARCHAR,
			correct BIGINT,
			false_calls BIGINT,
			missing BIGINT,
			collisions BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS eval_intervals (
			run_id VARCHAR,
			side VARCHAR,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			outcome VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
