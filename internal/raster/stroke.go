/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// LineStyle selects the on/off pattern of a freehand stroke.
type LineStyle int

const (
	Solid LineStyle = iota
	Dash
	Dot
)

func (s LineStyle) String() string {
	switch s {
	case Dash:
		return "dash"
	case Dot:
		return "dot"
	default:
		return "solid"
	}
}

// ParseLineStyle maps a config string to a LineStyle, defaulting to Solid.
func ParseLineStyle(s string) LineStyle {
	switch s {
	case "dash", "dashed":
		return Dash
	case "dot", "dotted":
		return Dot
	default:
		return Solid
	}
}

// Stroke describes how a segment is painted.
type Stroke struct {
	Color   color.NRGBA
	Width   int
	Opacity float64
	Style   LineStyle
}

// Paint returns the effective color with opacity folded into alpha.
func (s Stroke) Paint() color.NRGBA {
	c := s.Color
	op := s.Opacity
	if op < 0 {
		op = 0
	}
	if op > 1 {
		op = 1
	}
	c.A = uint8(float64(c.A)*op + 0.5)
	return c
}

func (s Stroke) width() int {
	if s.Width < 1 {
		return 1
	}
	return s.Width
}

// on reports whether step i of a stroke is inked for the stroke's style.
func (s Stroke) on(i int) bool {
	w := s.width()
	switch s.Style {
	case Dash:
		return (i/(3*w))%2 == 0
	case Dot:
		return (i/w)%2 == 0
	default:
		return true
	}
}

// dashes returns the on/off lengths in pixels matching on, or nil for solid.
func (s Stroke) dashes() []float64 {
	w := float64(s.width())
	switch s.Style {
	case Dash:
		return []float64{3 * w, 3 * w}
	case Dot:
		return []float64{w, w}
	default:
		return nil
	}
}

// DrawSegment rasterizes the segment a-b onto dst with a round brush of the
// stroke width. Every covered pixel is blended once, so overlapping brush
// stamps within the segment do not darken translucent strokes. phase is the
// number of steps already drawn in the current stroke and keeps dash
// patterns continuous across segments; the updated phase is returned.
func DrawSegment(dst *image.RGBA, a, b image.Point, s Stroke, phase int) int {
	w := s.width()
	lo := -w / 2
	hi := (w - 1) / 2
	r2 := float64(w*w) / 4
	bbox := image.Rectangle{Min: a, Max: b}.Canon()
	bbox.Min = bbox.Min.Add(image.Pt(lo, lo))
	bbox.Max = bbox.Max.Add(image.Pt(hi+1, hi+1))
	bbox = bbox.Intersect(dst.Bounds())
	if bbox.Empty() {
		return phase + steps(a, b)
	}
	mask := image.NewAlpha(bbox)
	stamp := func(x, y int) {
		for dy := lo; dy <= hi; dy++ {
			for dx := lo; dx <= hi; dx++ {
				if w > 2 && float64(dx*dx+dy*dy) > r2 {
					continue
				}
				p := image.Pt(x+dx, y+dy)
				if p.In(bbox) {
					mask.SetAlpha(p.X, p.Y, color.Alpha{A: 0xff})
				}
			}
		}
	}
	bresenham(a, b, func(x, y int) {
		if s.on(phase) {
			stamp(x, y)
		}
		phase++
	})
	draw.DrawMask(dst, bbox, image.NewUniform(s.Paint()), image.Point{}, mask, bbox.Min, draw.Over)
	return phase
}

func steps(a, b image.Point) int {
	return max(abs(b.X-a.X), abs(b.Y-a.Y)) + 1
}

// bresenham visits every integer point on the segment from a to b inclusive.
func bresenham(a, b image.Point, visit func(x, y int)) {
	x0, y0, x1, y1 := a.X, a.Y, b.X, b.Y
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FillRect paints r (clipped to dst) with c using source-over.
func FillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeRect outlines r with a 1px border inside r.
func StrokeRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	FillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	FillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// DashedRect outlines r with a 1px dashed border of the given dash length.
func DashedRect(dst *image.RGBA, r image.Rectangle, c color.Color, dash int) {
	if r.Empty() {
		return
	}
	if dash < 1 {
		dash = 1
	}
	x1, y1 := r.Max.X-1, r.Max.Y-1
	DashedLine(dst, r.Min, image.Pt(x1, r.Min.Y), c, dash)
	DashedLine(dst, image.Pt(x1, r.Min.Y), image.Pt(x1, y1), c, dash)
	DashedLine(dst, image.Pt(x1, y1), image.Pt(r.Min.X, y1), c, dash)
	DashedLine(dst, image.Pt(r.Min.X, y1), r.Min, c, dash)
}

// DashedLine draws a 1px dashed line from a to b.
func DashedLine(dst *image.RGBA, a, b image.Point, c color.Color, dash int) {
	if dash < 1 {
		dash = 1
	}
	bounds := dst.Bounds()
	i := 0
	bresenham(a, b, func(x, y int) {
		if (i/dash)%2 == 0 && image.Pt(x, y).In(bounds) {
			dst.Set(x, y, c)
		}
		i++
	})
}
