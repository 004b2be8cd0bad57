/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/raster"
)

func TestDecodePNGAndBMP(t *testing.T) {
	src := raster.Filled(40, 30, color.RGBA{0x10, 0x20, 0x30, 0xff})
	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, format, err := Decode(&buf, "mem.png")
	if err != nil || format != "png" {
		t.Fatalf("decode png: %v %q", err, format)
	}
	if !raster.Equal(img, src) {
		t.Fatalf("png round trip changed pixels")
	}

	buf.Reset()
	if err := bmp.Encode(&buf, src); err != nil {
		t.Fatalf("bmp encode: %v", err)
	}
	img, format, err = Decode(&buf, "mem.bmp")
	if err != nil || format != "bmp" || img.Bounds().Dx() != 40 {
		t.Fatalf("decode bmp: %v %q", err, format)
	}
}

func TestDecodeJPEGFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.jpg")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 16, 8)), nil); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	_ = f.Close()
	img, format, err := DecodeFile(p)
	if err != nil || format != "jpeg" || img.Bounds() != image.Rect(0, 0, 16, 8) {
		t.Fatalf("decode jpeg: %v %q %v", err, format, img)
	}
}

func TestDecodeFailure(t *testing.T) {
	_, _, err := Decode(strings.NewReader("not an image"), "junk.txt")
	var de *domain.DecodeError
	if !errors.As(err, &de) || de.Source != "junk.txt" {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	_, _, err = DecodeFile(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for missing file, got %v", err)
	}
}
