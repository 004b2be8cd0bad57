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

// shapeTool previews the selected shape on the overlay while dragging and
// draws the final outline straight onto the background on release.
type shapeTool struct {
	active bool
	start  image.Point
}

func (t *shapeTool) Mode() Mode { return Shape }

func (t *shapeTool) PointerDown(c *Controller, p image.Point) error {
	c.beginGesture()
	t.active = true
	t.start = p
	return nil
}

func (t *shapeTool) PointerMove(c *Controller, p image.Point, held Buttons) error {
	if !t.active || !held.Has(Primary) {
		return nil
	}
	raster.Clear(c.doc.Overlay)
	return raster.DrawShape(c.doc.Overlay, c.shape, t.start, p, c.pen.Stroke())
}

func (t *shapeTool) PointerUp(c *Controller, p image.Point) error {
	if !t.active {
		return nil
	}
	t.active = false
	raster.Clear(c.doc.Overlay)
	if p == t.start {
		return nil
	}
	c.checkpointOnce()
	return raster.DrawShape(c.doc.Background, c.shape, t.start, p, c.pen.Stroke())
}

func (t *shapeTool) Deactivate(c *Controller) {
	if t.active {
		raster.Clear(c.doc.Overlay)
	}
	t.active = false
}
