/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package raster

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
)

// ShapeKind enumerates the outlines the shape tool can draw.
type ShapeKind int

const (
	Rectangle ShapeKind = iota
	Ellipse
	Circle
	Square
	Triangle
	Line
	DashedLineShape
)

var shapeNames = map[ShapeKind]string{
	Rectangle:       "rectangle",
	Ellipse:         "ellipse",
	Circle:          "circle",
	Square:          "square",
	Triangle:        "triangle",
	Line:            "line",
	DashedLineShape: "dashed-line",
}

func (k ShapeKind) String() string {
	if s, ok := shapeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("shape(%d)", int(k))
}

// ShapeNames lists the shape names in declaration order.
func ShapeNames() []string {
	out := make([]string, 0, len(shapeNames))
	for k := Rectangle; k <= DashedLineShape; k++ {
		out = append(out, shapeNames[k])
	}
	return out
}

// ParseShapeKind resolves a shape name as printed by String.
func ParseShapeKind(s string) (ShapeKind, error) {
	for k, name := range shapeNames {
		if name == s {
			return k, nil
		}
	}
	return Rectangle, fmt.Errorf("unknown shape %q", s)
}

// ShapeBounds returns the box a shape between start and end occupies. Circle
// and square force a square box of side min(w,h) anchored at the top-left of
// the dragged rectangle.
func ShapeBounds(kind ShapeKind, start, end image.Point) image.Rectangle {
	r := image.Rectangle{Min: start, Max: end}.Canon()
	if kind == Circle || kind == Square {
		side := min(r.Dx(), r.Dy())
		r.Max = r.Min.Add(image.Pt(side, side))
	}
	return r
}

// DrawShape strokes the outline of kind between start and end onto dst.
// Rasterization happens on a gg context sized to the shape's bounds which is
// then composited over dst.
func DrawShape(dst *image.RGBA, kind ShapeKind, start, end image.Point, s Stroke) error {
	box := ShapeBounds(kind, start, end)
	pad := s.width() + 2
	area := box.Inset(-pad).Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}
	dc := gg.NewContext(area.Dx(), area.Dy())
	defer func() { _ = dc.Close() }()

	dc.SetColor(s.Paint())
	dc.SetLineWidth(float64(s.width()))
	if d := s.dashes(); d != nil {
		dc.SetDash(d...)
	}

	// odd widths are centered on pixel centers so 1px outlines stay crisp
	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	if s.width()%2 == 1 {
		ox, oy = ox-0.5, oy-0.5
	}
	x, y := float64(box.Min.X)-ox, float64(box.Min.Y)-oy
	w, h := float64(box.Dx()), float64(box.Dy())

	switch kind {
	case Rectangle, Square:
		dc.DrawRectangle(x, y, w, h)
	case Ellipse, Circle:
		if w == 0 || h == 0 {
			return nil
		}
		dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
	case Triangle:
		dc.MoveTo(x+w/2, y)
		dc.LineTo(x+w, y+h)
		dc.LineTo(x, y+h)
		dc.ClosePath()
	case Line, DashedLineShape:
		if kind == DashedLineShape {
			d := math.Max(4, float64(3*s.width()))
			dc.SetDash(d, d/2)
		}
		dc.DrawLine(float64(start.X)-ox, float64(start.Y)-oy, float64(end.X)-ox, float64(end.Y)-oy)
	default:
		return fmt.Errorf("draw shape: unsupported kind %v", kind)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("draw shape %v: %w", kind, err)
	}
	draw.Draw(dst, area, dc.Image(), image.Point{}, draw.Over)
	return nil
}
