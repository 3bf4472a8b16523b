// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/papers-archive/pkg/types"
)

// QueryOptions holds parameters for search queries.
type QueryOptions struct {
	// Query is the full-text search string. With FTS5 it uses MATCH syntax.
	Query string

	// Date restricts results to one listing date.
	Date string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

const selectColumns = `p.id, p.date, p.title, p.authors, p.abstract, p.summary_en, p.summary_zh, p.upvotes`

// Query searches stored documents. Text queries are ranked by relevance
// when FTS5 is available; otherwise results are ordered by date, then
// upvotes, then id, all descending.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.SearchDocument, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
		text = strings.TrimSpace(opts.Query)
		fts  = text != "" && s.fts
	)

	switch {
	case fts:
		qb.WriteString(`SELECT ` + selectColumns + `
			FROM papers_fts
			JOIN papers p ON p.rowid = papers_fts.rowid
			WHERE papers_fts MATCH ?`)
		args = append(args, text)
	case text != "":
		qb.WriteString(`SELECT ` + selectColumns + `
			FROM papers p
			WHERE (p.title LIKE ? OR p.authors LIKE ? OR p.abstract LIKE ? OR p.summary_en LIKE ? OR p.summary_zh LIKE ?)`)
		like := "%" + text + "%"
		args = append(args, like, like, like, like, like)
	default:
		qb.WriteString(`SELECT ` + selectColumns + ` FROM papers p WHERE 1=1`)
	}

	if opts.Date != "" {
		qb.WriteString(` AND p.date = ?`)
		args = append(args, opts.Date)
	}

	if fts {
		qb.WriteString(` ORDER BY papers_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.date DESC, p.upvotes DESC, p.id DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying search database: %w", err)
	}
	defer rows.Close()

	var results []types.SearchDocument
	for rows.Next() {
		var d types.SearchDocument
		if err := rows.Scan(&d.ID, &d.Date, &d.Title, &d.Authors, &d.Abstract, &d.SummaryEN, &d.SummaryZH, &d.Upvotes); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
