// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchdb keeps a SQLite copy of the published search documents
// with a full-text index over their text fields.
package searchdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/pkg/types"
)

const defaultMaxResults = 20

// Store manages the search database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
	fts        bool
	log        zerolog.Logger
}

// Open opens or creates the database at path and ensures the schema. When
// the SQLite build lacks FTS5 the store still works and matches text with
// LIKE instead.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path, maxResults: defaultMaxResults, log: log}
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

// FullText reports whether queries use the FTS5 index.
func (s *Store) FullText() bool {
	return s.fts
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			date TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			summary_en TEXT,
			summary_zh TEXT,
			upvotes INTEGER NOT NULL DEFAULT 0,
			UNIQUE(id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_date ON papers(date)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	const cols = `title, authors, abstract, summary_en, summary_zh`
	if _, err := s.db.Exec(`CREATE VIRTUAL TABLE papers_fts USING fts5(` + cols + `, content=papers, content_rowid=rowid)`); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			s.log.Warn().Msg("sqlite built without fts5, search falls back to LIKE matching")
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
			INSERT INTO papers_fts(rowid, ` + cols + `)
			VALUES (new.rowid, new.title, new.authors, new.abstract, new.summary_en, new.summary_zh);
		END`,
		`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, ` + cols + `)
			VALUES ('delete', old.rowid, old.title, old.authors, old.abstract, old.summary_en, old.summary_zh);
		END`,
		`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, ` + cols + `)
			VALUES ('delete', old.rowid, old.title, old.authors, old.abstract, old.summary_en, old.summary_zh);
			INSERT INTO papers_fts(rowid, ` + cols + `)
			VALUES (new.rowid, new.title, new.authors, new.abstract, new.summary_en, new.summary_zh);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// Rebuild replaces the stored documents with docs in one transaction.
func (s *Store) Rebuild(ctx context.Context, docs []types.SearchDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers`); err != nil {
		return fmt.Errorf("clearing papers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, date, title, authors, abstract, summary_en, summary_zh, upvotes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id, date) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			summary_en=excluded.summary_en, summary_zh=excluded.summary_zh, upvotes=excluded.upvotes`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			d.ID, d.Date, d.Title, d.Authors, d.Abstract, d.SummaryEN, d.SummaryZH, d.Upvotes,
		); err != nil {
			return fmt.Errorf("inserting %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	s.log.Info().Int("documents", len(docs)).Str("path", s.path).Msg("search database rebuilt")
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}
