/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the small amount of 2D geometry the canvas engine needs:
// float points, pixel rectangles, corner anchors and the screen/canvas mapper.
package geom

import (
	"image"
	"math"
)

// Pt is a 2D point in either widget or canvas space.
type Pt struct{ X, Y float64 }

func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Add(q Pt) Pt { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt { return Pt{p.X - q.X, p.Y - q.Y} }

// Image rounds p to the nearest pixel.
func (p Pt) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// FromImage converts an integer point.
func FromImage(p image.Point) Pt { return Pt{float64(p.X), float64(p.Y)} }

// Normalize returns the rectangle spanned by a and b regardless of drag direction.
func Normalize(a, b image.Point) image.Rectangle {
	return image.Rectangle{Min: a, Max: b}.Canon()
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// Corner names one of the four anchor handles of a rectangle.
type Corner int

const (
	NoCorner Corner = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return "none"
	}
}

// AnchorTolerance is the half-size of the square hit target around each corner.
const AnchorTolerance = 5

// CornerPoint returns the position of corner c on r.
func CornerPoint(r image.Rectangle, c Corner) image.Point {
	switch c {
	case TopLeft:
		return r.Min
	case TopRight:
		return image.Pt(r.Max.X, r.Min.Y)
	case BottomLeft:
		return image.Pt(r.Min.X, r.Max.Y)
	case BottomRight:
		return r.Max
	}
	return r.Min
}

// Opposite returns the corner diagonally across from c.
func (c Corner) Opposite() Corner {
	switch c {
	case TopLeft:
		return BottomRight
	case TopRight:
		return BottomLeft
	case BottomLeft:
		return TopRight
	case BottomRight:
		return TopLeft
	}
	return NoCorner
}

// AnchorRect is the square hit target centered on p.
func AnchorRect(p image.Point) image.Rectangle {
	return image.Rect(p.X-AnchorTolerance, p.Y-AnchorTolerance, p.X+AnchorTolerance, p.Y+AnchorTolerance)
}

// AllCorners lists corners in hit-test order.
var AllCorners = [4]Corner{TopLeft, TopRight, BottomLeft, BottomRight}

// HitCorner reports which anchor of r contains p.
func HitCorner(r image.Rectangle, p image.Point) Corner {
	for _, c := range AllCorners {
		if p.In(AnchorRect(CornerPoint(r, c))) {
			return c
		}
	}
	return NoCorner
}
