/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"fmt"
	"image"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/geom"
	"adlicanvas/internal/raster"
)

// MinObjectSize is the smallest width or height an anchor-scale may produce;
// sizes at or below it are rejected.
const MinObjectSize = 10

// transformTool moves the image under the pointer or, when a corner anchor
// of the selected image is grabbed, scales it with its aspect ratio kept.
type transformTool struct {
	idx      int
	corner   geom.Corner
	fixed    image.Point // corner opposite the grabbed one
	last     image.Point
	dragging bool
}

func (t *transformTool) Mode() Mode { return Transform }

func (t *transformTool) PointerDown(c *Controller, p image.Point) error {
	t.reset()
	c.beginGesture()
	doc := c.doc
	if sel, ok := doc.Selection(); ok {
		r := doc.Images[sel].Rect
		if corner := geom.HitCorner(r, p); corner != geom.NoCorner {
			t.idx = sel
			t.corner = corner
			t.fixed = geom.CornerPoint(r, corner.Opposite())
			return nil
		}
	}
	hit := doc.HitTest(p)
	if err := doc.Select(hit); err != nil {
		return err
	}
	if hit != domain.NoSelection {
		t.idx = hit
		t.last = p
		t.dragging = true
	}
	return nil
}

func (t *transformTool) PointerMove(c *Controller, p image.Point, held Buttons) error {
	if !held.Has(Primary) || t.idx >= len(c.doc.Images) {
		return nil
	}
	switch {
	case t.corner != geom.NoCorner:
		return t.scale(c, p)
	case t.dragging:
		d := p.Sub(t.last)
		if d == (image.Point{}) {
			return nil
		}
		c.checkpointOnce()
		c.doc.Images[t.idx].Translate(d)
		t.last = p
	}
	return nil
}

// scale resizes the grabbed image so the grabbed corner follows p while the
// opposite corner stays put. The height is derived from the new width and
// the original buffer's aspect ratio.
func (t *transformTool) scale(c *Controller, p image.Point) error {
	obj := c.doc.Images[t.idx]
	w, h := p.X-t.fixed.X, p.Y-t.fixed.Y
	left := t.corner == geom.TopLeft || t.corner == geom.BottomLeft
	top := t.corner == geom.TopLeft || t.corner == geom.TopRight
	if left {
		w = -w
	}
	if top {
		h = -h
	}
	if min(w, h) <= MinObjectSize {
		return fmt.Errorf("scale to %dx%d: %w", w, h, domain.ErrDegenerateGeometry)
	}
	ob := obj.Original.Bounds()
	nh := w * ob.Dy() / ob.Dx()
	if nh <= MinObjectSize {
		return fmt.Errorf("scale to %dx%d: %w", w, nh, domain.ErrDegenerateGeometry)
	}
	x0, y0 := t.fixed.X, t.fixed.Y
	if left {
		x0 -= w
	}
	if top {
		y0 -= nh
	}
	c.checkpointOnce()
	obj.Pixels = raster.Resize(obj.Original, w, nh)
	obj.Rect = image.Rect(x0, y0, x0+w, y0+nh)
	return nil
}

func (t *transformTool) PointerUp(*Controller, image.Point) error {
	t.reset()
	return nil
}

func (t *transformTool) Deactivate(*Controller) { t.reset() }

func (t *transformTool) reset() {
	*t = transformTool{}
}
