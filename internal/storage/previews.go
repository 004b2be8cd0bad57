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
	"os"
	"strconv"
	"strings"
	"time"
)

// accessLayout has a fixed width so last_access sorts as text.
const accessLayout = "2006-01-02T15:04:05.000000000Z"

// GetPreview returns the PNG thumbnail stored under key and w x h, or nil if
// none is cached, and touches its access time.
func GetPreview(ctx context.Context, projectRoot, key string, w, h int) ([]byte, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT thumb_blob FROM previews WHERE key=? AND w=? AND h=?`, key, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(accessLayout)
	_, _ = db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE key=? AND w=? AND h=?`, now, key, w, h)
	return blob, nil
}

// PutPreview upserts a thumbnail and enforces the cache size cap via LRU eviction.
func PutPreview(ctx context.Context, projectRoot, key string, w, h int, blob []byte) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return putPreview(ctx, db, key, w, h, blob)
}

func putPreview(ctx context.Context, db *sql.DB, key string, w, h int, blob []byte) error {
	if strings.TrimSpace(key) == "" || len(blob) == 0 {
		return errors.New("preview key and blob are required")
	}
	now := time.Now().UTC().Format(accessLayout)
	_, err := db.ExecContext(ctx, `INSERT INTO previews(key,w,h,thumb_blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(key,w,h) DO UPDATE SET thumb_blob=excluded.thumb_blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key, w, h, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		return EvictPreviewsToFit(ctx, db, capBytes)
	}
	return nil
}

// GetOrCreatePreview fetches a preview or generates and stores it using gen.
func GetOrCreatePreview(ctx context.Context, projectRoot, key string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := GetPreview(ctx, projectRoot, key, w, h); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	if err := PutPreview(ctx, projectRoot, key, w, h, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func EvictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 8)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the cursor must be closed before writing with a single connection
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + placeholders(len(victims)) + `)`
	if _, err := db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size
func TotalPreviewBytes(ctx context.Context, projectRoot string) (int64, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads ADLI_PREVIEWS_MAX_BYTES, defaulting to 64MB.
func MaxPreviewsBytesFromEnv() int64 {
	const def = 64 << 20
	v := os.Getenv("ADLI_PREVIEWS_MAX_BYTES")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
