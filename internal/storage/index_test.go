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
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adlicanvas/internal/domain"

	_ "modernc.org/sqlite"
)

func indexedProject(t *testing.T) (string, *Manifest, *domain.Document) {
	t.Helper()
	root := t.TempDir()
	doc := sampleDocument()
	doc.AddText(domain.TextObject{Pos: image.Pt(1, 20), Text: "second note", Font: domain.DefaultFont, Color: domain.Black, Opacity: 1})
	_, m, err := InitProject(root, doc)
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := UpdateIndex(ctx, root, m, doc.Background); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	return root, m, doc
}

func TestIndexInitCreatesWALAndSchema(t *testing.T) {
	root, _, _ := indexedProject(t)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(IndexPath(root)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','documents','fts_documents','assets','previews')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 6 {
		t.Fatalf("expected 6 tables, got %d", cnt)
	}
}

func TestUpdateIndexCatalogsAssetsAndThumbnail(t *testing.T) {
	root, m, _ := indexedProject(t)
	ctx := context.Background()

	assets, err := ListAssets(ctx, root)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	// background plus one image whose pixels and original share a resource
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %+v", assets)
	}
	byPath := map[string]Asset{}
	for _, a := range assets {
		byPath[a.Path] = a
	}
	bg, ok := byPath[m.Background]
	if !ok || bg.Role != "background" || bg.W != 100 || bg.H != 80 || bg.Bytes == 0 {
		t.Fatalf("background asset mismatch: %+v", bg)
	}

	blob, err := GetPreview(ctx, root, CanvasPreviewKey, 0, 0)
	if err != nil || blob == nil {
		t.Fatalf("canvas thumbnail missing: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("thumbnail not PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() > ThumbnailEdge || b.Dy() > ThumbnailEdge {
		t.Fatalf("thumbnail too large: %v", b)
	}
}

func TestSearchTexts(t *testing.T) {
	root, _, _ := indexedProject(t)
	ctx := context.Background()

	res, err := Search(ctx, root, SearchQuery{Text: "canvas"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Index != 0 || res[0].Text != "hello canvas" {
		t.Fatalf("unexpected results: %+v", res)
	}
	if res[0].Snippet == "" {
		t.Fatalf("expected snippet")
	}

	all, err := Search(ctx, root, SearchQuery{})
	if err != nil || len(all) != 2 || all[1].Index != 1 {
		t.Fatalf("list all: %+v, %v", all, err)
	}
	none, err := Search(ctx, root, SearchQuery{Text: "missing"})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no results: %+v, %v", none, err)
	}
}

func TestDetectAndRebuildIndexOnCorruption(t *testing.T) {
	root, m, _ := indexedProject(t)
	idx := IndexPath(root)
	for _, p := range []string{idx + "-wal", idx + "-shm"} {
		_ = os.Remove(p)
	}
	if err := os.WriteFile(idx, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rebuilt, err := DetectAndRebuildIndex(ctx, root, m)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	res, err := Search(ctx, root, SearchQuery{Text: "note"})
	if err != nil || len(res) != 1 {
		t.Fatalf("rebuilt index not searchable: %+v, %v", res, err)
	}
	entries, _ := os.ReadDir(filepath.Join(root, IndexDirName, "backups"))
	if len(entries) == 0 {
		t.Fatalf("expected a backup of the corrupt index")
	}

	again, err := DetectAndRebuildIndex(ctx, root, m)
	if err != nil || again {
		t.Fatalf("healthy index should not rebuild: %v, %v", again, err)
	}
}
