// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists fetched publication records in a local SQLite
// database with an FTS5 index over the searchable fields. The store is an
// explicit candidate source owned by the CLI: ranking never reaches into
// it, it only receives the candidate slices the caller pulls out.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/mountlex/bibman/pkg/types"
)

const dbFile = "bibman.db"

// Store manages the record cache database.
type Store struct {
	db            *sql.DB
	maxCandidates int
}

// NewStore opens or creates the cache database at cfg.Dir/bibman.db,
// creating the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".bibman"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 100
	}

	s := &Store{db: db, maxCandidates: maxCandidates}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT,
			venue TEXT,
			year INTEGER,
			kind TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(title, authors, venue, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, title, authors, venue) VALUES (new.rowid, new.title, new.authors, new.venue);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, authors, venue) VALUES('delete', old.rowid, old.title, old.authors, old.venue);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, authors, venue) VALUES('delete', old.rowid, old.title, old.authors, old.venue);
				INSERT INTO records_fts(rowid, title, authors, venue) VALUES (new.rowid, new.title, new.authors, new.venue);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put upserts records by key. Records without a key cannot be cached and
// are counted in skipped.
func (s *Store) Put(ctx context.Context, records []types.Record) (stored, skipped int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (key, title, authors, venue, year, kind)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, venue=excluded.venue,
			year=excluded.year, kind=excluded.kind`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.Key == "" {
			skipped++
			continue
		}
		authorsJSON, _ := json.Marshal(r.Authors)
		if _, err := stmt.ExecContext(ctx,
			r.Key, r.Title, string(authorsJSON), r.Venue, r.Year, string(r.Kind),
		); err != nil {
			return stored, skipped, fmt.Errorf("inserting record %s: %w", r.Key, err)
		}
		stored++
	}

	return stored, skipped, tx.Commit()
}

// Candidates returns cached records for the ranking pass. A non-empty
// query narrows the set via the FTS index; an empty query returns every
// cached record (up to limit). Zero limit uses the store default.
func (s *Store) Candidates(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if limit <= 0 {
		limit = s.maxCandidates
	}

	var (
		rows *sql.Rows
		err  error
	)
	if query != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT r.key, r.title, r.authors, r.venue, r.year, r.kind
			 FROM records_fts
			 JOIN records r ON r.rowid = records_fts.rowid
			 WHERE records_fts MATCH ?
			 ORDER BY records_fts.rank
			 LIMIT ?`, ftsQuery(query), limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT key, title, authors, venue, year, kind
			 FROM records ORDER BY key LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var (
			r           types.Record
			authorsJSON sql.NullString
			kind        string
		)
		if err := rows.Scan(&r.Key, &r.Title, &authorsJSON, &r.Venue, &r.Year, &kind); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if authorsJSON.Valid && authorsJSON.String != "" {
			if err := json.Unmarshal([]byte(authorsJSON.String), &r.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors for %s: %w", r.Key, err)
			}
		}
		r.Kind = types.Kind(kind)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of cached records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// ExportYAML writes every cached record to path as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	records, err := s.Candidates(ctx, "", 1<<30)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ftsQuery turns free text into an FTS5 OR query over quoted tokens, so
// user input cannot break the MATCH syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}
