/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package filter

import (
	"image"
	"image/color"
	"math"
	"testing"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/raster"
)

func gray(v uint8) color.RGBA { return color.RGBA{v, v, v, 0xff} }

func TestNeutralGammaIsIdentity(t *testing.T) {
	src := raster.Filled(4, 4, gray(100))
	out := Gamma{}.Apply(src, domain.DefaultFilterParams)
	if !raster.Equal(src, out) {
		t.Fatalf("gamma 1.0 changed pixels")
	}
	out = Gamma{}.Apply(src, domain.FilterParams{Gamma: 20})
	if out.RGBAAt(0, 0).R <= 100 {
		t.Fatalf("gamma 2.0 should brighten, got %v", out.RGBAAt(0, 0))
	}
	if src.RGBAAt(0, 0) != gray(100) {
		t.Fatalf("source modified")
	}
}

func TestThresholdAndInvert(t *testing.T) {
	src := raster.New(2, 1)
	src.SetRGBA(0, 0, gray(200))
	src.SetRGBA(1, 0, gray(50))
	out := Threshold{}.Apply(src, domain.DefaultFilterParams)
	if out.RGBAAt(0, 0) != gray(255) || out.RGBAAt(1, 0) != gray(0) {
		t.Fatalf("threshold: %v %v", out.RGBAAt(0, 0), out.RGBAAt(1, 0))
	}
	inv := Invert{}.Apply(src, domain.FilterParams{})
	if inv.RGBAAt(0, 0) != gray(55) {
		t.Fatalf("invert: %v", inv.RGBAAt(0, 0))
	}
}

func TestFiltersArePure(t *testing.T) {
	src := raster.Filled(5, 5, color.RGBA{10, 200, 30, 0xff})
	p := domain.FilterParams{Threshold: 90, Sharpness: 5, Gamma: 7}
	for _, name := range Names() {
		f, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		a, b := f.Apply(src, p), f.Apply(src, p)
		if !raster.Equal(a, b) {
			t.Fatalf("%s not deterministic", name)
		}
	}
	if _, err := Lookup("dehaze"); err == nil {
		t.Fatalf("expected unknown filter error")
	}
}

func TestSharpenFlatImageUnchanged(t *testing.T) {
	src := raster.Filled(6, 6, gray(80))
	out := Sharpen{}.Apply(src, domain.FilterParams{Sharpness: 10})
	if !raster.Equal(src, out) {
		t.Fatalf("sharpening a flat image changed it")
	}
}

func TestForObjectResizesToDisplay(t *testing.T) {
	obj := domain.NewImageObject(raster.Filled(40, 30, gray(10)), image.Pt(0, 0))
	obj.SetPixels(raster.Resize(obj.Original, 20, 15))
	out := ForObject(Grayscale{}, obj, domain.DefaultFilterParams)
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 15 {
		t.Fatalf("filter result %v, want 20x15", out.Bounds())
	}
}

func TestHistogramStats(t *testing.T) {
	img := raster.New(2, 2)
	img.SetRGBA(0, 0, gray(0))
	img.SetRGBA(1, 0, gray(0))
	img.SetRGBA(0, 1, gray(100))
	img.SetRGBA(1, 1, gray(100))
	h := ComputeHistogram(img)
	if h.Count(Luma) != 4 {
		t.Fatalf("count = %v", h.Count(Luma))
	}
	mean, std := h.MeanStdDev(Red)
	if mean != 50 || math.Abs(std-57.735) > 0.01 {
		t.Fatalf("mean=%v std=%v", mean, std)
	}
	if p := h.Peak(Green); p != 0 {
		t.Fatalf("peak = %d", p)
	}
	var empty Histogram
	if m, s := empty.MeanStdDev(Blue); m != 0 || s != 0 {
		t.Fatalf("empty stats %v %v", m, s)
	}
}
