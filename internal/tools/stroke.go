/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"image"

	"adlicanvas/internal/raster"
)

// strokeTool draws freehand segments onto the overlay while the primary
// button is held and merges them into the background on release. In
// Erasing mode it paints with the document's paper color.
type strokeTool struct {
	mode   Mode
	active bool
	last   image.Point
	phase  int
}

func (t *strokeTool) Mode() Mode { return t.mode }

func (t *strokeTool) stroke(c *Controller) raster.Stroke {
	if t.mode == Erasing {
		return raster.Stroke{Color: c.doc.Paper.NRGBA(), Width: EraserWidth, Opacity: 1}
	}
	return c.pen.Stroke()
}

func (t *strokeTool) PointerDown(c *Controller, p image.Point) error {
	c.beginGesture()
	t.active = true
	t.last = p
	t.phase = 0
	return nil
}

func (t *strokeTool) PointerMove(c *Controller, p image.Point, held Buttons) error {
	if !t.active || !held.Has(Primary) {
		return nil
	}
	c.checkpointOnce()
	t.phase = raster.DrawSegment(c.doc.Overlay, t.last, p, t.stroke(c), t.phase)
	t.last = p
	return nil
}

func (t *strokeTool) PointerUp(c *Controller, _ image.Point) error {
	if !t.active {
		return nil
	}
	t.active = false
	if !c.gestureCheckpointed {
		return nil
	}
	raster.CompositeOver(c.doc.Background, c.doc.Overlay, image.Point{})
	raster.Clear(c.doc.Overlay)
	return nil
}

// Deactivate discards an unfinished stroke.
func (t *strokeTool) Deactivate(c *Controller) {
	if t.active {
		raster.Clear(c.doc.Overlay)
	}
	t.active = false
}
