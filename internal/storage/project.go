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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"adlicanvas/internal/codec"
	"adlicanvas/internal/domain"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/version"
)

const (
	ManifestFileName = "canvas.json"
	ResourcesDirName = "resources"
	ExportsDirName   = "exports"
	BackupsDirName   = "backups"
)

var standardSubDirs = []string{
	ResourcesDirName,
	ExportsDirName,
	BackupsDirName,
}

// ProjectHandle locates a project on disk. Root contains canvas.json and the
// standard subfolders.
type ProjectHandle struct {
	Root         string
	ManifestPath string
}

func newHandle(root string) *ProjectHandle {
	return &ProjectHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName)}
}

func persistErr(op, path string, err error) error {
	return &domain.PersistenceError{Op: op, Path: path, Err: err}
}

// InitProject creates a project directory at root, scaffolds the standard
// subfolders and saves doc into it.
func InitProject(root string, doc *domain.Document) (*ProjectHandle, *Manifest, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, persistErr("save", root, errors.New("root path is required"))
	}
	if err := scaffold(root); err != nil {
		return nil, nil, persistErr("save", root, err)
	}
	ph := newHandle(root)
	m, err := Save(ph, doc)
	if err != nil {
		return nil, nil, err
	}
	return ph, m, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Save writes doc to the project. Rasters are stored as content-addressed PNG
// resources, the manifest is replaced transactionally after the previous one
// has been copied to a timestamped backup, and resources no longer referenced
// are removed. The transient overlay is not persisted.
func Save(ph *ProjectHandle, doc *domain.Document) (*Manifest, error) {
	if ph == nil || ph.Root == "" || ph.ManifestPath == "" {
		return nil, persistErr("save", "", errors.New("invalid project handle"))
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "save").With(slog.String("root", ph.Root))
	if err := doc.Validate(); err != nil {
		return nil, persistErr("save", ph.Root, err)
	}
	if err := scaffold(ph.Root); err != nil {
		return nil, persistErr("save", ph.Root, err)
	}

	m := &Manifest{
		FormatVersion: FormatVersion,
		App:           version.String(),
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
		Canvas:        CanvasEntry{Width: doc.Width, Height: doc.Height, Paper: doc.Paper},
		Images:        make([]ImageEntry, 0, len(doc.Images)),
		Texts:         make([]TextEntry, 0, len(doc.Texts)),
		Selected:      doc.Selected,
	}
	var err error
	if m.Background, err = writeResource(ph.Root, doc.Background); err != nil {
		return nil, persistErr("save", ph.Root, err)
	}
	for _, img := range doc.Images {
		e := ImageEntry{Rect: rectOf(img.Rect)}
		if e.Pixels, err = writeResource(ph.Root, img.Pixels); err != nil {
			return nil, persistErr("save", ph.Root, err)
		}
		if e.Original, err = writeResource(ph.Root, img.Original); err != nil {
			return nil, persistErr("save", ph.Root, err)
		}
		m.Images = append(m.Images, e)
	}
	for _, t := range doc.Texts {
		m.Texts = append(m.Texts, textEntryOf(t))
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, persistErr("save", ph.ManifestPath, fmt.Errorf("marshal manifest: %w", err))
	}
	data = append(data, '\n')
	if err := ValidateManifest(data); err != nil {
		return nil, persistErr("save", ph.ManifestPath, err)
	}

	bdir := filepath.Join(ph.Root, BackupsDirName)
	if _, statErr := os.Stat(ph.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp))
		if cerr := copyFile(ph.ManifestPath, bpath); cerr != nil {
			return nil, persistErr("save", bpath, fmt.Errorf("backup current manifest: %w", cerr))
		}
	}
	if err := writeAtomic(ph.ManifestPath, data); err != nil {
		return nil, persistErr("save", ph.ManifestPath, err)
	}

	if n, err := pruneResources(ph.Root, m.resources(), bdir); err != nil {
		l.Warn("prune resources failed", slog.Any("err", err))
	} else if n > 0 {
		l.Debug("pruned resources", slog.Int("count", n))
	}
	l.Info("project saved", slog.Int("images", len(m.Images)), slog.Int("texts", len(m.Texts)))
	return m, nil
}

// SaveAs writes doc to a new root folder and updates the handle.
func SaveAs(ph *ProjectHandle, doc *domain.Document, newRoot string) (*Manifest, error) {
	if ph == nil {
		return nil, persistErr("save", newRoot, errors.New("nil project handle"))
	}
	if strings.TrimSpace(newRoot) == "" {
		return nil, persistErr("save", newRoot, errors.New("new root is empty"))
	}
	next := newHandle(newRoot)
	m, err := Save(next, doc)
	if err != nil {
		return nil, err
	}
	*ph = *next
	return m, nil
}

// Open loads the project at root into a fresh document. A manifest that is
// missing, unparsable or fails schema validation is replaced by the latest
// backup when one loads cleanly. Nothing is returned unless the whole
// document loaded.
func Open(root string) (*ProjectHandle, *domain.Document, *Manifest, error) {
	ph := newHandle(root)
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("root", root))

	m, err := readManifest(ph.ManifestPath)
	if err != nil {
		bm, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, nil, nil, persistErr("load", ph.ManifestPath, fmt.Errorf("%w; backup attempt: %v", err, berr))
		}
		l.Warn("manifest unusable, loaded latest backup", slog.Any("err", err))
		m = bm
	}
	doc, err := buildDocument(root, m)
	if err != nil {
		return nil, nil, nil, persistErr("load", root, err)
	}
	l.Info("project opened", slog.Int("images", len(doc.Images)), slog.Int("texts", len(doc.Texts)))
	return ph, doc, m, nil
}

func readManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := ValidateManifest(b); err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func buildDocument(root string, m *Manifest) (*domain.Document, error) {
	doc := domain.NewDocument(m.Canvas.Width, m.Canvas.Height, m.Canvas.Paper)
	bg, err := loadResource(root, m.Background, image.Pt(m.Canvas.Width, m.Canvas.Height))
	if err != nil {
		return nil, err
	}
	doc.Background = bg
	for i, e := range m.Images {
		r := e.Rect.Image()
		px, err := loadResource(root, e.Pixels, r.Size())
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		orig, err := loadResource(root, e.Original, image.Point{})
		if err != nil {
			return nil, fmt.Errorf("image %d original: %w", i, err)
		}
		doc.Images = append(doc.Images, &domain.ImageObject{Pixels: px, Original: orig, Rect: r})
	}
	for _, e := range m.Texts {
		doc.AddText(e.object())
	}
	if err := doc.Select(m.Selected); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// loadResource decodes a PNG resource; a zero want skips the size check.
func loadResource(root, rel string, want image.Point) (*image.RGBA, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource: %w", err)
	}
	if want == (image.Point{}) {
		img, err := codec.DecodePNG(bytes.NewReader(data))
		if err != nil {
			return nil, &domain.DecodeError{Source: path, Err: err}
		}
		return img, nil
	}
	img, err := decodeResource(data, want)
	if err != nil {
		return nil, &domain.DecodeError{Source: path, Err: err}
	}
	return img, nil
}

// writeResource stores img as PNG under resources/ named by a hash of the
// encoded bytes and returns the manifest-relative path. Existing files are
// reused.
func writeResource(root string, img *image.RGBA) (string, error) {
	var buf bytes.Buffer
	if err := codec.EncodePNG(&buf, img); err != nil {
		return "", fmt.Errorf("encode resource: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	name := hex.EncodeToString(sum[:8]) + ".png"
	rel := ResourcesDirName + "/" + name
	path := filepath.Join(root, ResourcesDirName, name)
	if _, err := os.Stat(path); err == nil {
		return rel, nil
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write resource %s: %w", name, err)
	}
	return rel, nil
}

// pruneResources deletes resource files not in keep, unless a manifest backup
// still references them. It returns the number of files removed.
func pruneResources(root string, keep resourceSet, backupsDir string) (int, error) {
	for rel := range backupReferences(backupsDir) {
		keep[rel] = true
	}
	ents, err := os.ReadDir(filepath.Join(root, ResourcesDirName))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		if keep[ResourcesDirName+"/"+e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(root, ResourcesDirName, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func backupReferences(backupsDir string) resourceSet {
	set := resourceSet{}
	for _, p := range backupCandidates(backupsDir) {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var m Manifest
		if json.Unmarshal(b, &m) != nil {
			continue
		}
		for rel := range m.resources() {
			set[rel] = true
		}
	}
	return set
}

// writeAtomic writes to a temp file in the same directory and renames it
// over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func backupCandidates(bdir string) []string {
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

// openFromLatestBackup returns the newest backup manifest that validates.
func openFromLatestBackup(root string) (*Manifest, error) {
	candidates := backupCandidates(filepath.Join(root, BackupsDirName))
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		m, err := readManifest(candidates[i])
		if err == nil {
			return m, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no usable backup: %w", lastErr)
}

// Autosave writes a complete copy of doc into a timestamped folder under the
// project's backups directory and returns its path. Without a project the
// copy goes to the system temp directory.
func Autosave(ph *ProjectHandle, doc *domain.Document) (string, error) {
	base := os.TempDir()
	if ph != nil && ph.Root != "" {
		base = filepath.Join(ph.Root, BackupsDirName)
	}
	dir := filepath.Join(base, "autosave-"+time.Now().Format("20060102-150405"))
	if _, err := Save(newHandle(dir), doc); err != nil {
		return dir, err
	}
	return dir, nil
}
