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

	"github.com/jung-kurt/gofpdf"

	"adlicanvas/internal/codec"
	"adlicanvas/internal/domain"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/version"
)

// PDFOptions controls single-page PDF export.
//   - DPI maps canvas pixels to points (72 per inch); 0 means 96.
//   - Texts, when set, are written as an invisible text layer so the PDF stays searchable.
type PDFOptions struct {
	Title  string
	Author string
	DPI    float64
	Texts  []domain.TextObject
}

// ExportPDF writes the flattened canvas as a single PDF page sized to the canvas.
func ExportPDF(flat image.Image, outPath string, opt PDFOptions) error {
	if flat == nil {
		return fmt.Errorf("nothing to export")
	}
	b := flat.Bounds()
	if b.Empty() {
		return fmt.Errorf("nothing to export: empty canvas")
	}
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}
	scale := 72.0 / dpi
	wPt := float64(b.Dx()) * scale
	hPt := float64(b.Dy()) * scale

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: wPt, Ht: hPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetCreator(version.String(), true)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wPt, Ht: hPt})

	var buf bytes.Buffer
	if err := codec.EncodePNG(&buf, flat); err != nil {
		return fmt.Errorf("encode page image: %w", err)
	}
	imgOpt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("canvas", imgOpt, &buf)
	pdf.ImageOptions("canvas", 0, 0, wPt, hPt, false, imgOpt, 0, "")

	if len(opt.Texts) > 0 {
		writeTextLayer(pdf, opt.Texts, scale)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	applog.WithComponent("export").Info("pdf written", "path", outPath, "w_pt", wPt, "h_pt", hPt, "texts", len(opt.Texts))
	return nil
}

// writeTextLayer places each committed text at its canvas position with zero
// alpha; the raster already shows the glyphs.
func writeTextLayer(pdf *gofpdf.Fpdf, texts []domain.TextObject, scale float64) {
	pdf.SetAlpha(0, "Normal")
	for _, t := range texts {
		if t.Text == "" {
			continue
		}
		style := ""
		if t.Font.Bold {
			style += "B"
		}
		if t.Font.Italic {
			style += "I"
		}
		size := t.Font.Size
		if size <= 0 {
			size = domain.DefaultFont.Size
		}
		pdf.SetFont("Helvetica", style, size*scale)
		setTextColor(pdf, t.Color)
		pdf.Text(float64(t.Pos.X)*scale, float64(t.Pos.Y)*scale, t.Text)
	}
	pdf.SetAlpha(1, "Normal")
}

func setTextColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
