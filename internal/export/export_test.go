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
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"adlicanvas/internal/codec"
	"adlicanvas/internal/domain"
	"adlicanvas/internal/raster"
)

func sampleFlat() *image.RGBA {
	img := raster.Filled(40, 30, color.White)
	raster.FillRect(img, image.Rect(5, 5, 15, 15), color.RGBA{R: 255, A: 255})
	return img
}

func TestExportPNGRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "canvas.png")
	flat := sampleFlat()
	if err := ExportPNG(flat, out); err != nil {
		t.Fatalf("ExportPNG: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	got, err := codec.DecodePNG(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !raster.Equal(got, flat) {
		t.Fatalf("exported pixels differ from source")
	}
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Fatalf("expected only the png in out dir, got %d entries", len(entries))
	}
}

func TestExportNil(t *testing.T) {
	dir := t.TempDir()
	if err := ExportPNG(nil, filepath.Join(dir, "a.png")); err == nil {
		t.Fatalf("expected error for nil image")
	}
	if err := ExportPDF(nil, filepath.Join(dir, "a.pdf"), PDFOptions{}); err == nil {
		t.Fatalf("expected error for nil image")
	}
}

func TestExportPDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "canvas.pdf")
	opt := PDFOptions{
		Title:  "Test Canvas",
		Author: "Tester",
		DPI:    72,
		Texts: []domain.TextObject{
			{Pos: image.Pt(5, 20), Text: "hello", Font: domain.DefaultFont, Color: domain.Black, Opacity: 1},
		},
	}
	if err := ExportPDF(sampleFlat(), out, opt); err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("missing PDF header")
	}
	if len(data) < 200 {
		t.Fatalf("pdf suspiciously small: %d bytes", len(data))
	}
}

func TestResolveOut(t *testing.T) {
	if got := ResolveOut("/p", "a.png"); got != filepath.Join("/p", "exports", "a.png") {
		t.Fatalf("relative: %s", got)
	}
	abs := filepath.Join(t.TempDir(), "a.png")
	if got := ResolveOut("/p", abs); got != abs {
		t.Fatalf("absolute: %s", got)
	}
	if got := ResolveOut("", "a.png"); got != "a.png" {
		t.Fatalf("no root: %s", got)
	}
}
