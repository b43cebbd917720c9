// Package store is the optional SQLite audit journal. Runs write to it; no
// run reads from it, so every invocation still starts from fresh feeds.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Analysis is one journaled item analysis.
type Analysis struct {
	ID        int64
	RunID     string
	Topic     string
	Engine    string
	Link      string
	Title     string
	Source    string
	Score     int
	TitleCN   string
	Summary   string
	Tags      []string
	Status    string
	Reason    string
	CreatedAt time.Time
}

// Fusion is one journaled fusion query.
type Fusion struct {
	ID        int64
	RunID     string
	Query     string
	Merged    string
	RawA      string
	RawB      string
	TookMs    int64
	CreatedAt time.Time
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based DBs.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so all connections in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		engine TEXT NOT NULL,
		link TEXT NOT NULL,
		title TEXT NOT NULL,
		source TEXT,
		score INTEGER NOT NULL,
		title_cn TEXT NOT NULL,
		summary TEXT NOT NULL,
		tags TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_run ON analyses(run_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);

	CREATE TABLE IF NOT EXISTS fusions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		query TEXT NOT NULL,
		merged TEXT NOT NULL,
		raw_a TEXT NOT NULL,
		raw_b TEXT NOT NULL,
		took_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fusions_created ON fusions(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveAnalyses journals the analyses of one scan in a single transaction.
// Thread-safe: acquires write lock.
func (s *Store) SaveAnalyses(records []Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO analyses (
			run_id, topic, engine, link, title, source, score,
			title_cn, summary, tags, status, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		created := r.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := stmt.Exec(
			r.RunID, r.Topic, r.Engine, r.Link, r.Title, r.Source, r.Score,
			r.TitleCN, r.Summary, string(tags), r.Status, r.Reason, created,
		); err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
	}

	return tx.Commit()
}

// SaveFusion journals one fusion query.
// Thread-safe: acquires write lock.
func (s *Store) SaveFusion(f Fusion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO fusions (run_id, query, merged, raw_a, raw_b, took_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.RunID, f.Query, f.Merged, f.RawA, f.RawB, f.TookMs, created)
	if err != nil {
		return fmt.Errorf("insert fusion: %w", err)
	}
	return nil
}

// RecentAnalyses returns the newest analyses first.
// Thread-safe: acquires read lock.
func (s *Store) RecentAnalyses(limit int) ([]Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, run_id, topic, engine, link, title, source, score,
			title_cn, summary, tags, status, reason, created_at
		FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var source, reason sql.NullString
		var tags string
		if err := rows.Scan(
			&a.ID, &a.RunID, &a.Topic, &a.Engine, &a.Link, &a.Title, &source, &a.Score,
			&a.TitleCN, &a.Summary, &tags, &a.Status, &reason, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Source = source.String
		a.Reason = reason.String
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for analysis %d: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecentFusions returns the newest fusion queries first.
// Thread-safe: acquires read lock.
func (s *Store) RecentFusions(limit int) ([]Fusion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, run_id, query, merged, raw_a, raw_b, took_ms, created_at
		FROM fusions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fusion
	for rows.Next() {
		var f Fusion
		if err := rows.Scan(&f.ID, &f.RunID, &f.Query, &f.Merged, &f.RawA, &f.RawB, &f.TookMs, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
