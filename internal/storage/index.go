/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adlicanvas/internal/codec"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds per-project derived data under the project root.
	IndexDirName  = ".adlicanvas"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	schemaVersion = 1

	// CanvasPreviewKey names the whole-canvas thumbnail in the previews table.
	CanvasPreviewKey = "canvas"
	// ThumbnailEdge is the longest side of the stored canvas thumbnail.
	ThumbnailEdge = 256
)

// IndexPath returns the full path to the project's embedded index database file.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-project SQLite index exists at
// .adlicanvas/index.sqlite, opens it in WAL mode and ensures the schema.
// Callers close the returned *sql.DB.
func InitOrOpenIndex(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, IndexDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}

	path := IndexPath(projectRoot)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates the index tables and FTS structures if missing.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per committed text object.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id  INTEGER PRIMARY KEY,
			type    TEXT    NOT NULL,
			path    TEXT    NOT NULL,
			text    TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,
		// Raster resources referenced by the manifest.
		`CREATE TABLE IF NOT EXISTS assets (
			hash   TEXT PRIMARY KEY,
			path   TEXT NOT NULL,
			role   TEXT NOT NULL,
			w      INTEGER NOT NULL DEFAULT 0,
			h      INTEGER NOT NULL DEFAULT 0,
			bytes  INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assets_path ON assets(path);`,
		`CREATE TABLE IF NOT EXISTS previews (
			id          INTEGER PRIMARY KEY,
			key         TEXT    NOT NULL,
			w           INTEGER NOT NULL DEFAULT 0,
			h           INTEGER NOT NULL DEFAULT 0,
			thumb_blob  BLOB    NOT NULL,
			size        INTEGER NOT NULL DEFAULT 0,
			updated_at  TEXT    NOT NULL,
			last_access TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(key, w, h);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// UpdateIndex replaces the derived index content from the manifest and stores
// a thumbnail of flat, the flattened canvas, when it is non-nil.
func UpdateIndex(ctx context.Context, projectRoot string, m *Manifest, flat image.Image) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := rebuildFromManifest(ctx, db, projectRoot, m); err != nil {
		return err
	}
	if flat == nil {
		return nil
	}
	var buf bytes.Buffer
	thumb := raster.Thumbnail(flat, ThumbnailEdge)
	if err := codec.EncodePNG(&buf, thumb); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return putPreview(ctx, db, CanvasPreviewKey, 0, 0, buf.Bytes())
}

// DetectAndRebuildIndex checks for corruption or a missing schema and rebuilds
// the index from the manifest if needed. It returns true when a rebuild was
// performed.
func DetectAndRebuildIndex(ctx context.Context, projectRoot string, m *Manifest) (bool, error) {
	path := IndexPath(projectRoot)
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		backupIndexFile(path)
		removeIndexFiles(path)
		if rbErr := RebuildIndex(ctx, projectRoot, m); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
			needs = true
		}
	}
	_ = db.Close()
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	removeIndexFiles(path)
	if err := RebuildIndex(ctx, projectRoot, m); err != nil {
		return false, err
	}
	return true, nil
}

// RebuildIndex drops and recreates the derived tables and repopulates them.
// meta and version are kept.
func RebuildIndex(ctx context.Context, projectRoot string, m *Manifest) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS assets;",
		"DROP TABLE IF EXISTS previews;",
		"DROP TRIGGER IF EXISTS documents_ai;",
		"DROP TRIGGER IF EXISTS documents_ad;",
		"DROP TRIGGER IF EXISTS documents_au;",
		"DROP TABLE IF EXISTS documents;",
		"DROP TABLE IF EXISTS fts_documents;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildFromManifest(ctx, db, projectRoot, m)
}

func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

func removeIndexFiles(indexPath string) {
	for _, p := range []string{indexPath, indexPath + "-wal", indexPath + "-shm"} {
		_ = os.Remove(p)
	}
}

// rebuildFromManifest replaces documents and assets in one transaction.
func rebuildFromManifest(ctx context.Context, db *sql.DB, projectRoot string, m *Manifest) error {
	if m == nil {
		return errors.New("nil manifest")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	rollback := func(err error) error {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents;"); err != nil {
		return rollback(fmt.Errorf("clear documents: %w", err))
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM assets;"); err != nil {
		return rollback(fmt.Errorf("clear assets: %w", err))
	}
	for i, t := range m.Texts {
		s := strings.TrimSpace(t.Text)
		if s == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO documents(type, path, text) VALUES(?,?,?);",
			"text", fmt.Sprintf("text:%d", i), s); err != nil {
			return rollback(fmt.Errorf("insert document: %w", err))
		}
	}
	type asset struct {
		rel, role string
		size      image.Point
	}
	assets := []asset{{m.Background, "background", image.Pt(m.Canvas.Width, m.Canvas.Height)}}
	for i, e := range m.Images {
		assets = append(assets,
			asset{e.Pixels, fmt.Sprintf("image:%d", i), image.Pt(e.Rect.W, e.Rect.H)},
			asset{e.Original, fmt.Sprintf("original:%d", i), image.Point{}},
		)
	}
	for _, a := range assets {
		hash := strings.TrimSuffix(filepath.Base(a.rel), ".png")
		var n int64
		if st, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(a.rel))); err == nil {
			n = st.Size()
		}
		// Identical rasters share one resource; the first role wins.
		if _, err := tx.ExecContext(ctx, `INSERT INTO assets(hash, path, role, w, h, bytes) VALUES(?,?,?,?,?,?)
			ON CONFLICT(hash) DO NOTHING`, hash, a.rel, a.role, a.size.X, a.size.Y, n); err != nil {
			return rollback(fmt.Errorf("insert asset: %w", err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Asset is one indexed raster resource.
type Asset struct {
	Hash  string
	Path  string
	Role  string
	W, H  int
	Bytes int64
}

// ListAssets returns the indexed resources ordered by path.
func ListAssets(ctx context.Context, projectRoot string) ([]Asset, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, `SELECT hash, path, role, w, h, bytes FROM assets ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.Hash, &a.Path, &a.Role, &a.W, &a.H, &a.Bytes); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
