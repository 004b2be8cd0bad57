/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"adlicanvas/internal/codec"
	applog "adlicanvas/internal/log"
)

// ResolveOut places relative output paths under <root>/exports. An empty root
// leaves the path as given.
func ResolveOut(root, outPath string) string {
	if root == "" || filepath.IsAbs(outPath) {
		return outPath
	}
	return filepath.Join(root, "exports", outPath)
}

// ExportPNG writes the flattened canvas as a PNG file. The file is written to a
// sibling temp file first and renamed into place.
func ExportPNG(flat image.Image, outPath string) error {
	if flat == nil {
		return fmt.Errorf("nothing to export")
	}
	var buf bytes.Buffer
	if err := codec.EncodePNG(&buf, flat); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := writeFile(outPath, buf.Bytes()); err != nil {
		return err
	}
	b := flat.Bounds()
	applog.WithComponent("export").Info("png written", "path", outPath, "w", b.Dx(), "h", b.Dy(), "bytes", buf.Len())
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
