/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Mapper converts between widget coordinates and canvas logical space.
// The canvas buffer of BufferW x BufferH pixels is displayed at Origin with
// a size of DisplayW x DisplayH widget units.
type Mapper struct {
	Origin   Pt
	DisplayW float64
	DisplayH float64
	BufferW  int
	BufferH  int
}

// NewMapper returns an identity mapper for a buffer of the given size.
func NewMapper(w, h int) Mapper {
	return Mapper{DisplayW: float64(w), DisplayH: float64(h), BufferW: w, BufferH: h}
}

// Scale returns displayed/buffer per axis. A degenerate buffer maps 1:1.
func (m Mapper) Scale() (sx, sy float64) {
	sx, sy = 1, 1
	if m.BufferW > 0 && m.DisplayW > 0 {
		sx = m.DisplayW / float64(m.BufferW)
	}
	if m.BufferH > 0 && m.DisplayH > 0 {
		sy = m.DisplayH / float64(m.BufferH)
	}
	return sx, sy
}

// ToCanvas is the widget->canvas transform without clamping.
func (m Mapper) ToCanvas() Affine2D {
	sx, sy := m.Scale()
	return Scale(1/sx, 1/sy).Mul(Translate(-m.Origin.X, -m.Origin.Y))
}

// ToWidget is the canvas->widget transform.
func (m Mapper) ToWidget() Affine2D {
	sx, sy := m.Scale()
	return Translate(m.Origin.X, m.Origin.Y).Mul(Scale(sx, sy))
}

// Map converts a widget point to canvas space, clamped to the buffer.
func (m Mapper) Map(w Pt) Pt {
	c := m.ToCanvas().Apply(w)
	c.X = clamp(c.X, 0, float64(m.BufferW))
	c.Y = clamp(c.Y, 0, float64(m.BufferH))
	return c
}

// Unmap converts a canvas point back to widget space.
func (m Mapper) Unmap(c Pt) Pt { return m.ToWidget().Apply(c) }

// Zoom multiplies the displayed size by factor.
func (m *Mapper) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	m.DisplayW *= factor
	m.DisplayH *= factor
}

// ResetZoom restores a 1:1 display.
func (m *Mapper) ResetZoom() {
	m.DisplayW = float64(m.BufferW)
	m.DisplayH = float64(m.BufferH)
}

// Pan shifts the origin by the given widget delta.
func (m *Mapper) Pan(dx, dy float64) {
	m.Origin.X += dx
	m.Origin.Y += dy
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
