/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster contains the pixel-buffer primitives used by the editor:
// allocation, deep copies, compositing, cropping, flipping and resampling.
// All buffers are *image.RGBA anchored at the origin.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// New allocates a fully transparent w x h buffer.
func New(w, h int) *image.RGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Filled allocates a w x h buffer filled with c.
func Filled(w, h int, c color.Color) *image.RGBA {
	img := New(w, h)
	Fill(img, c)
	return img
}

// Fill paints every pixel of img with c, replacing what was there.
func Fill(img *image.RGBA, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Clear resets img to fully transparent.
func Clear(img *image.RGBA) {
	if img == nil {
		return
	}
	clear(img.Pix)
}

// Clone returns an independent copy of src rebased to the origin. A nil
// source yields nil.
func Clone(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	if rgba, ok := src.(*image.RGBA); ok && rgba == nil {
		return nil
	}
	b := src.Bounds()
	dst := New(b.Dx(), b.Dy())
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Equal reports whether a and b have the same size and identical pixels.
func Equal(a, b *image.RGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	w := a.Bounds().Dx() * 4
	for y := 0; y < a.Bounds().Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		if !bytes.Equal(ra, rb) {
			return false
		}
	}
	return true
}

// IsTransparent reports whether every pixel of img has zero alpha.
func IsTransparent(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// CompositeOver draws src over dst with its top-left at at.
func CompositeOver(dst *image.RGBA, src image.Image, at image.Point) {
	if src == nil {
		return
	}
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	draw.Draw(dst, r, src, sb.Min, draw.Over)
}

// Crop copies the part of src inside r (in src coordinates). The result is
// clipped to src and may be empty.
func Crop(src *image.RGBA, r image.Rectangle) *image.RGBA {
	r = r.Intersect(src.Bounds())
	dst := New(r.Dx(), r.Dy())
	if !r.Empty() {
		draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	}
	return dst
}

// FlipH mirrors src left to right into a new buffer.
func FlipH(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := New(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(b.Dx()-1-x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// FlipV mirrors src top to bottom into a new buffer.
func FlipV(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := New(b.Dx(), b.Dy())
	w := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, b.Dy()-1-y)
		copy(dst.Pix[di:di+w], src.Pix[si:si+w])
	}
	return dst
}

// Resize resamples src to w x h with Catmull-Rom interpolation.
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := New(w, h)
	if w == 0 || h == 0 {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Thumbnail downsamples src to fit within edge x edge using a fast bilinear
// filter, keeping the aspect ratio.
func Thumbnail(src image.Image, edge int) *image.RGBA {
	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), edge, edge)
	dst := New(w, h)
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// FitWithin scales w x h down to fit inside maxW x maxH keeping the aspect
// ratio. Sizes already inside the box are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	sw := float64(maxW) / float64(w)
	sh := float64(maxH) / float64(h)
	s := min(sw, sh)
	nw := max(1, int(float64(w)*s))
	nh := max(1, int(float64(h)*s))
	return nw, nh
}

// Bytes estimates the memory held by img.
func Bytes(img *image.RGBA) int64 {
	if img == nil {
		return 0
	}
	return int64(len(img.Pix))
}
