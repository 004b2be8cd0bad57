/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "adlicanvas/internal/log"
	"adlicanvas/internal/storage"
	"adlicanvas/internal/version"
)

// BundleManifestName is the human-readable note at the root of a bundle.
const BundleManifestName = "bundle.manifest.txt"

// ExportBundle zips the project's manifest and resources into destZipPath so
// the canvas can be moved as a single file. Backups, exports and the index
// are left out; the index is rebuilt on open.
func ExportBundle(projectRoot, destZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "bundle").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return 0, errors.New("projectRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destZipPath is required")
	}
	manifestPath := filepath.Join(projectRoot, storage.ManifestFileName)
	if _, err := os.Stat(manifestPath); err != nil {
		return 0, fmt.Errorf("project manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	note := fmt.Sprintf("adlicanvas bundle\nCreated: %s\nBy: %s\nProject: %s\n",
		time.Now().Format(time.RFC3339), version.String(), filepath.Base(projectRoot))
	w, err := zw.Create(BundleManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(note)); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	addFile := func(p string) error {
		rel, err := filepath.Rel(projectRoot, p)
		if err != nil {
			return err
		}
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	}
	if err := addFile(manifestPath); err != nil {
		return added, fmt.Errorf("build zip: %w", err)
	}
	resDir := filepath.Join(projectRoot, storage.ResourcesDirName)
	err = filepath.Walk(resDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		return addFile(p)
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return added, fmt.Errorf("build zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("bundle exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return added, nil
}

// ImportBundle unpacks a bundle into destRoot. Only the manifest and files
// under resources/ are extracted; the manifest must pass schema validation.
// Existing files are not overwritten. Returns the count of files written.
func ImportBundle(zipPath, destRoot string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "unbundle").With(slog.String("project", destRoot))
	if strings.TrimSpace(destRoot) == "" {
		return 0, errors.New("destRoot is required")
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	var files []*zip.File
	sawManifest := false
	for _, f := range r.File {
		name := path.Clean(f.Name)
		switch {
		case name == BundleManifestName || f.FileInfo().IsDir():
			continue
		case name == storage.ManifestFileName:
			data, err := readZipFile(f)
			if err != nil {
				return 0, err
			}
			if err := storage.ValidateManifest(data); err != nil {
				return 0, fmt.Errorf("bundle manifest: %w", err)
			}
			sawManifest = true
		case strings.HasPrefix(name, storage.ResourcesDirName+"/") && !strings.Contains(name, ".."):
		default:
			l.Warn("skip unexpected entry", slog.String("name", f.Name))
			continue
		}
		files = append(files, f)
	}
	if !sawManifest {
		return 0, fmt.Errorf("bundle has no %s", storage.ManifestFileName)
	}

	installed := 0
	for _, f := range files {
		target := filepath.Join(destRoot, filepath.FromSlash(path.Clean(f.Name)))
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return installed, err
		}
		data, err := readZipFile(f)
		if err != nil {
			return installed, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("bundle imported", slog.Int("files", installed))
	return installed, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
