/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"adlicanvas/internal/codec"
	"adlicanvas/internal/domain"
	"adlicanvas/internal/export"
	"adlicanvas/internal/geom"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/storage"
)

// Project returns the open project handle, or nil for an unsaved canvas.
func (e *Editor) Project() *storage.ProjectHandle { return e.project }

// NewProject creates a project directory at root holding the current canvas.
func (e *Editor) NewProject(ctx context.Context, root string) error {
	ph, m, err := storage.InitProject(root, e.doc)
	if err != nil {
		return err
	}
	e.project = ph
	e.reindex(ctx, m)
	return nil
}

// Save writes the canvas to the open project.
func (e *Editor) Save(ctx context.Context) error {
	if e.project == nil {
		return &domain.PersistenceError{Op: "save", Err: fmt.Errorf("no project open")}
	}
	m, err := storage.Save(e.project, e.doc)
	if err != nil {
		return err
	}
	e.reindex(ctx, m)
	e.log.Info("project saved", slog.String("root", e.project.Root))
	return nil
}

// SaveAs writes the canvas to a new project root and switches the handle to it.
func (e *Editor) SaveAs(ctx context.Context, root string) error {
	if e.project == nil {
		return e.NewProject(ctx, root)
	}
	m, err := storage.SaveAs(e.project, e.doc, root)
	if err != nil {
		return err
	}
	e.reindex(ctx, m)
	return nil
}

// Open loads a project into a fresh document and swaps it in only when the
// load succeeded. History is cleared.
func (e *Editor) Open(ctx context.Context, root string) error {
	ph, doc, m, err := storage.Open(root)
	if err != nil {
		return err
	}
	e.project = ph
	e.doc = doc
	e.ctl.SetDocument(doc)
	e.hist.Clear()
	e.filterActive = ""
	origin := e.mapper.Origin
	e.mapper = geom.NewMapper(doc.Width, doc.Height)
	e.mapper.Origin = origin
	if rebuilt, err := storage.DetectAndRebuildIndex(ctx, root, m); err != nil {
		e.log.Warn("index check failed", slog.Any("err", err))
	} else if rebuilt {
		e.log.Info("index rebuilt", slog.String("root", root))
	}
	e.invalidate()
	return nil
}

// reindex refreshes the search index and thumbnail. Failures only log: the
// manifest on disk is the source of truth.
func (e *Editor) reindex(ctx context.Context, m *storage.Manifest) {
	if err := storage.UpdateIndex(ctx, e.project.Root, m, e.Flatten()); err != nil {
		e.log.Warn("index update failed", slog.Any("err", err))
	}
}

// Thumbnail returns the project's cached canvas thumbnail as PNG. Saving
// refreshes the cache; when the index holds none, e.g. after a rebuild, the
// thumbnail is rendered from the live canvas and cached.
func (e *Editor) Thumbnail(ctx context.Context) ([]byte, error) {
	if e.project == nil {
		return nil, &domain.PersistenceError{Op: "thumbnail", Err: fmt.Errorf("no project open")}
	}
	return storage.GetOrCreatePreview(ctx, e.project.Root, storage.CanvasPreviewKey, 0, 0, func(context.Context) ([]byte, error) {
		var buf bytes.Buffer
		if err := codec.EncodePNG(&buf, raster.Thumbnail(e.Flatten(), storage.ThumbnailEdge)); err != nil {
			return nil, fmt.Errorf("encode thumbnail: %w", err)
		}
		return buf.Bytes(), nil
	})
}

// Export writes the flattened canvas. The format is taken from the file
// extension (.png or .pdf). Relative paths land in the project's exports
// directory when a project is open.
func (e *Editor) Export(outPath string) (string, error) {
	root := ""
	if e.project != nil {
		root = e.project.Root
	}
	out := export.ResolveOut(root, outPath)
	flat := e.Flatten()
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		return out, export.ExportPNG(flat, out)
	case ".pdf":
		title := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
		return out, export.ExportPDF(flat, out, export.PDFOptions{Title: title, Texts: e.doc.Texts})
	default:
		return out, fmt.Errorf("unsupported export format %q", filepath.Ext(out))
	}
}

// ReportDir is where crash reports are written.
func (e *Editor) ReportDir() string {
	if e.project == nil {
		return os.TempDir()
	}
	return filepath.Join(e.project.Root, storage.BackupsDirName)
}

// Autosave writes a recovery copy of the live canvas.
func (e *Editor) Autosave() (string, error) {
	return storage.Autosave(e.project, e.doc)
}
