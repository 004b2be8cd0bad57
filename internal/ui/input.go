/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"adlicanvas/internal/geom"
	"adlicanvas/internal/tools"
)

// CanvasOrigin places the canvas to the right of the tool column and below
// the tool bar drawn by the renderer.
var CanvasOrigin = geom.P(100, 70)

// modeKeys maps single-key shortcuts to tool modes. They only apply while no
// text session is open.
var modeKeys = map[rune]tools.Mode{
	'v': tools.Idle,
	'm': tools.Transform,
	'b': tools.Drawing,
	'e': tools.Erasing,
	'u': tools.Shape,
	't': tools.Text,
	'c': tools.Crop,
}

// ModeForKey returns the mode bound to r.
func ModeForKey(r rune) (tools.Mode, bool) {
	m, ok := modeKeys[r]
	return m, ok
}

// ToPixels converts a position in device-independent units to raster pixels.
func ToPixels(x, y, scale float32) geom.Pt {
	if scale <= 0 {
		scale = 1
	}
	return geom.P(float64(x*scale), float64(y*scale))
}

// ZoomStep maps a wheel delta to a zoom direction: 1 in, -1 out, 0 none.
func ZoomStep(dy float32) int {
	switch {
	case dy > 0:
		return 1
	case dy < 0:
		return -1
	}
	return 0
}

// Controls mirrors the tool values shown in the property panel.
type Controls struct {
	// Pen is the preset name, empty when the pen matches no preset.
	Pen       string
	Gamma     float64
	Threshold float64
	Sharpness float64
}

// ControlsOf reads the panel values from c, e.g. after undo restored older
// tool settings.
func ControlsOf(c *tools.Controller) Controls {
	f := c.Filter()
	return Controls{
		Pen:       c.Pen().Name,
		Gamma:     float64(f.Gamma),
		Threshold: float64(f.Threshold),
		Sharpness: float64(f.Sharpness),
	}
}
