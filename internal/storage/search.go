/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SearchQuery searches committed text objects. Text uses SQLite FTS5 syntax
// (terms, quoted phrases, AND/OR/NOT); an empty Text lists every text.
type SearchQuery struct {
	Text   string
	Limit  int
	Offset int
}

// SearchResult is one matching text object. Index is its position in the
// document's text list; Snippet marks matches with [ ].
type SearchResult struct {
	DocID   int64
	Index   int
	Text    string
	Snippet string
}

// Search runs q against the project's embedded index.
func Search(ctx context.Context, projectRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT d.doc_id, d.path, d.text, snippet(fts_documents, 0, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ? AND d.type = 'text'\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.path, d.text, ''\nFROM documents d\nWHERE d.type = 'text'\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY d.doc_id\nLIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var path string
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &path, &r.Text, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Index, _ = strconv.Atoi(strings.TrimPrefix(path, "text:"))
		r.Snippet = sn.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
