/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package codec decodes import sources into RGBA buffers and encodes buffers
// for export and project resources.
package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/raster"
)

// MaxPixels bounds decoded images so a corrupt header cannot exhaust memory.
const MaxPixels = 64 << 20

// Decode reads an image in any registered format and returns it as RGBA
// together with the format name. Failures are *domain.DecodeError.
func Decode(r io.Reader, source string) (*image.RGBA, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", &domain.DecodeError{Source: source, Err: err}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil && cfg.Width*cfg.Height > MaxPixels {
		return nil, "", &domain.DecodeError{Source: source, Err: fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &domain.DecodeError{Source: source, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, "", &domain.DecodeError{Source: source, Err: fmt.Errorf("empty image")}
	}
	return raster.Clone(img), format, nil
}

// DecodeFile opens and decodes path.
func DecodeFile(path string) (*image.RGBA, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &domain.DecodeError{Source: path, Err: err}
	}
	defer f.Close()
	return Decode(f, path)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// DecodePNG reads a PNG resource written by EncodePNG.
func DecodePNG(r io.Reader) (*image.RGBA, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return raster.Clone(img), nil
}
