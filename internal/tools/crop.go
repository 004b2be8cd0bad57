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

// cropTool drags a rectangle and, on release, crops the selected image to
// the part of it inside the rectangle.
type cropTool struct {
	active  bool
	start   image.Point
	preview image.Rectangle
}

func (t *cropTool) Mode() Mode { return Crop }

func (t *cropTool) PointerDown(_ *Controller, p image.Point) error {
	t.active = true
	t.start = p
	t.preview = image.Rectangle{}
	return nil
}

func (t *cropTool) PointerMove(_ *Controller, p image.Point, held Buttons) error {
	if t.active && held.Has(Primary) {
		t.preview = geom.Normalize(t.start, p)
	}
	return nil
}

func (t *cropTool) PointerUp(c *Controller, p image.Point) error {
	if !t.active {
		return nil
	}
	rect := geom.Normalize(t.start, p)
	t.Deactivate(c)
	obj, err := c.doc.SelectedImage()
	if err != nil {
		return fmt.Errorf("crop: %w", err)
	}
	local := rect.Sub(obj.Rect.Min).Intersect(obj.Pixels.Bounds())
	if local.Empty() {
		return fmt.Errorf("crop %v outside image %v: %w", rect, obj.Rect, domain.ErrDegenerateGeometry)
	}
	c.Checkpoint()
	cropped := raster.Crop(obj.Pixels, local)
	obj.Original = raster.Clone(cropped)
	obj.SetPixels(cropped)
	return nil
}

func (t *cropTool) Deactivate(*Controller) {
	t.active = false
	t.preview = image.Rectangle{}
}
