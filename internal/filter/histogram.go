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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Channel selects a histogram channel.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Luma
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Luma:
		return "luma"
	}
	return "channel"
}

// Histogram counts un-premultiplied channel values of non-transparent pixels.
type Histogram struct {
	Bins [4][256]float64
}

// ComputeHistogram builds the histogram of img.
func ComputeHistogram(img *image.RGBA) Histogram {
	var h Histogram
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			o := img.PixOffset(x, y)
			a := img.Pix[o+3]
			if a == 0 {
				continue
			}
			r, g, bl := unpremul(img.Pix[o], a), unpremul(img.Pix[o+1], a), unpremul(img.Pix[o+2], a)
			h.Bins[Red][r]++
			h.Bins[Green][g]++
			h.Bins[Blue][bl]++
			h.Bins[Luma][luma(r, g, bl)]++
		}
	}
	return h
}

var levels = func() []float64 {
	v := make([]float64, 256)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// Count is the number of pixels counted in c.
func (h Histogram) Count(c Channel) float64 { return floats.Sum(h.Bins[c][:]) }

// MeanStdDev returns the weighted mean and standard deviation of channel c.
// An empty histogram yields zeros.
func (h Histogram) MeanStdDev(c Channel) (mean, std float64) {
	if h.Count(c) == 0 {
		return 0, 0
	}
	mean, std = stat.MeanStdDev(levels, h.Bins[c][:])
	return mean, std
}

// Peak returns the most populated level of channel c.
func (h Histogram) Peak(c Channel) int { return floats.MaxIdx(h.Bins[c][:]) }
