package buildcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get for unknown keys
var ErrNotFound = errors.New("cache entry not found")

// Function is one inferred definition of a cached unit
type Function struct {
	Name       string `json:"name"`
	ReturnType string `json:"return_type"`
}

// Entry is a successfully compiled source unit
type Entry struct {
	Key       string          `json:"key"`
	File      string          `json:"file"`
	Tree      json.RawMessage `json:"tree"`
	Functions []Function      `json:"functions"`
	CreatedAt time.Time       `json:"created_at"`
}

// Run records one compilation attempt, cached or not
type Run struct {
	ID        string        `json:"id"`
	File      string        `json:"file"`
	Key       string        `json:"key"`
	Success   bool          `json:"success"`
	Cached    bool          `json:"cached"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store defines the interface for build cache persistence
type Store interface {
	// Entry operations
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error

	// Run log
	RecordRun(ctx context.Context, run *Run) error
	Runs(ctx context.Context, limit int) ([]*Run, error)

	// Statistics
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Maintenance
	Ping(ctx context.Context) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db         *sql.DB
	mu         sync.RWMutex
	maxEntries int
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
	// MaxEntries caps the entries table; 0 disables the cap
	MaxEntries int
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:       "./data/fxcache.db",
		MaxEntries: 256,
	}
}

// NewSQLiteStore creates a new SQLite-based build cache
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, maxEntries: cfg.MaxEntries}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Compiled units keyed by SHA-256 of file name and source
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		tree_json TEXT NOT NULL,
		functions_json TEXT NOT NULL,
		function_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	-- One row per compilation attempt
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		key TEXT,
		success INTEGER NOT NULL,
		cached INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		duration_ms REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get returns the entry for key or ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry Entry
	var tree, functions string
	err := s.db.QueryRowContext(ctx, `
		SELECT key, file, tree_json, functions_json, created_at FROM entries WHERE key = ?
	`, key).Scan(&entry.Key, &entry.File, &tree, &functions, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entry: %w", err)
	}

	entry.Tree = json.RawMessage(tree)
	if err := json.Unmarshal([]byte(functions), &entry.Functions); err != nil {
		return nil, fmt.Errorf("corrupt functions for %s: %w", key, err)
	}
	return &entry, nil
}

// Put inserts or replaces an entry and trims the table to MaxEntries
func (s *SQLiteStore) Put(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Key == "" {
		return errors.New("cache entry without key")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Functions == nil {
		entry.Functions = []Function{}
	}

	functionsJSON, err := json.Marshal(entry.Functions)
	if err != nil {
		return fmt.Errorf("failed to encode functions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries (key, file, tree_json, functions_json, function_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Key, entry.File, string(entry.Tree), string(functionsJSON), len(entry.Functions), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if s.maxEntries > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM entries WHERE key NOT IN (
				SELECT key FROM entries ORDER BY created_at DESC LIMIT ?
			)
		`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("failed to trim entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecordRun appends a run to the log
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, file, key, success, cached, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.File, run.Key, run.Success, run.Cached, run.Error,
		float64(run.Duration.Nanoseconds())/1e6, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs first
func (s *SQLiteStore) Runs(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, file, key, success, cached, error, duration_ms, created_at FROM runs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var key, errText sql.NullString
		var durationMS float64

		if err := rows.Scan(&run.ID, &run.File, &key, &run.Success, &run.Cached,
			&errText, &durationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Key = key.String
		run.Error = errText.String
		run.Duration = time.Duration(durationMS * float64(time.Millisecond))
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// Stats returns cache statistics
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var entries, functions int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(function_count), 0) FROM entries`).Scan(&entries, &functions); err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	stats["total_entries"] = entries
	stats["total_functions"] = functions

	var runs, failed, cached int64
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(cached), 0),
		       AVG(duration_ms)
		FROM runs
	`).Scan(&runs, &failed, &cached, &avg); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	stats["total_runs"] = runs
	stats["failed_runs"] = failed
	stats["cached_runs"] = cached
	if avg.Valid {
		stats["avg_duration_ms"] = avg.Float64
	}

	return stats, nil
}

// Ping checks that the database answers
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Prune removes entries and runs older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	result1, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune entries: %w", err)
	}
	entriesDeleted, _ := result1.RowsAffected()

	result2, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return entriesDeleted, fmt.Errorf("failed to prune runs: %w", err)
	}
	runsDeleted, _ := result2.RowsAffected()

	return entriesDeleted + runsDeleted, nil
}

// Vacuum optimizes the database
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `VACUUM`)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
