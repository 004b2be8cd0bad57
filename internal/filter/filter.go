/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package filter defines the pixel filter contract used by the editor and a
// handful of simple filters implementing it. Filters are pure: the same
// source and parameters always give the same result, and the source buffer
// is never modified.
package filter

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/raster"
)

// Filter transforms a buffer according to the adjustment slider values.
type Filter interface {
	Name() string
	Apply(src *image.RGBA, p domain.FilterParams) *image.RGBA
}

var builtins = map[string]Filter{}

func register(f Filter) { builtins[f.Name()] = f }

func init() {
	register(Gamma{})
	register(Threshold{})
	register(Grayscale{})
	register(Invert{})
	register(Sharpen{})
}

// Lookup returns a builtin filter by name.
func Lookup(name string) (Filter, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter %q", name)
	}
	return f, nil
}

// Names lists builtin filters in stable order.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for n := range builtins {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ForObject runs f against obj's original buffer and resizes the result to
// obj's current display size.
func ForObject(f Filter, obj *domain.ImageObject, p domain.FilterParams) *image.RGBA {
	out := f.Apply(obj.Original, p)
	size := obj.Rect.Size()
	if out.Bounds().Size() == size {
		return out
	}
	return raster.Resize(out, size.X, size.Y)
}

// mapRGB applies fn to every pixel's un-premultiplied color channels.
func mapRGB(src *image.RGBA, fn func(r, g, b uint8) (uint8, uint8, uint8)) *image.RGBA {
	dst := raster.Clone(src)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		a := dst.Pix[i+3]
		if a == 0 {
			continue
		}
		r, g, b := unpremul(dst.Pix[i], a), unpremul(dst.Pix[i+1], a), unpremul(dst.Pix[i+2], a)
		r, g, b = fn(r, g, b)
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = premul(r, a), premul(g, a), premul(b, a)
	}
	return dst
}

func unpremul(c, a uint8) uint8 {
	if a == 0xff {
		return c
	}
	return uint8(min(255, int(c)*255/int(a)))
}

func premul(c, a uint8) uint8 {
	if a == 0xff {
		return c
	}
	return uint8(int(c) * int(a) / 255)
}

func luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000)
}

// Gamma corrects brightness with gamma = Gamma/10, so the neutral slider
// value 10 leaves the image unchanged.
type Gamma struct{}

func (Gamma) Name() string { return "gamma" }

func (Gamma) Apply(src *image.RGBA, p domain.FilterParams) *image.RGBA {
	g := float64(p.Gamma) / 10
	if g <= 0 {
		g = 0.1
	}
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, 1/g)))
	}
	return mapRGB(src, func(r, gg, b uint8) (uint8, uint8, uint8) { return lut[r], lut[gg], lut[b] })
}

// Threshold turns pixels white when their luma reaches Threshold, black otherwise.
type Threshold struct{}

func (Threshold) Name() string { return "threshold" }

func (Threshold) Apply(src *image.RGBA, p domain.FilterParams) *image.RGBA {
	return mapRGB(src, func(r, g, b uint8) (uint8, uint8, uint8) {
		if int(luma(r, g, b)) >= p.Threshold {
			return 0xff, 0xff, 0xff
		}
		return 0, 0, 0
	})
}

type Grayscale struct{}

func (Grayscale) Name() string { return "grayscale" }

func (Grayscale) Apply(src *image.RGBA, _ domain.FilterParams) *image.RGBA {
	return mapRGB(src, func(r, g, b uint8) (uint8, uint8, uint8) {
		l := luma(r, g, b)
		return l, l, l
	})
}

type Invert struct{}

func (Invert) Name() string { return "invert" }

func (Invert) Apply(src *image.RGBA, _ domain.FilterParams) *image.RGBA {
	return mapRGB(src, func(r, g, b uint8) (uint8, uint8, uint8) { return 255 - r, 255 - g, 255 - b })
}

// Sharpen convolves with a 3x3 sharpening kernel of strength Sharpness/10.
type Sharpen struct{}

func (Sharpen) Name() string { return "sharpen" }

// SharpenKernel returns the kernel for the given strength.
func SharpenKernel(amount float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -amount, 0,
		-amount, 1 + 4*amount, -amount,
		0, -amount, 0,
	})
}

func (Sharpen) Apply(src *image.RGBA, p domain.FilterParams) *image.RGBA {
	if p.Sharpness <= 0 {
		return raster.Clone(src)
	}
	return Convolve(src, SharpenKernel(float64(p.Sharpness)/10))
}

// Convolve applies a square kernel to the color channels of src; alpha is
// kept and edges are clamped.
func Convolve(src *image.RGBA, k *mat.Dense) *image.RGBA {
	src = raster.Clone(src)
	dst := raster.Clone(src)
	kr, _ := k.Dims()
	half := kr / 2
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [3]float64
			for ky := 0; ky < kr; ky++ {
				sy := min(max(y+ky-half, 0), h-1)
				for kx := 0; kx < kr; kx++ {
					sx := min(max(x+kx-half, 0), w-1)
					wgt := k.At(ky, kx)
					if wgt == 0 {
						continue
					}
					o := src.PixOffset(sx, sy)
					acc[0] += wgt * float64(src.Pix[o])
					acc[1] += wgt * float64(src.Pix[o+1])
					acc[2] += wgt * float64(src.Pix[o+2])
				}
			}
			o := dst.PixOffset(x, y)
			a := float64(dst.Pix[o+3])
			for c := 0; c < 3; c++ {
				dst.Pix[o+c] = uint8(math.Round(min(max(acc[c], 0), a)))
			}
		}
	}
	return dst
}
