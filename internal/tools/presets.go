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

	"adlicanvas/internal/domain"
	"adlicanvas/internal/raster"
)

// PenSettings is the shared drawing configuration used by the drawing,
// shape and text tools.
type PenSettings struct {
	Name    string
	Color   domain.Color
	Width   int
	Opacity float64
	Style   raster.LineStyle
}

// Stroke converts the settings to raster stroke parameters.
func (p PenSettings) Stroke() raster.Stroke {
	return raster.Stroke{Color: p.Color.NRGBA(), Width: p.Width, Opacity: p.Opacity, Style: p.Style}
}

// PenFromStroke is the inverse of Stroke; the preset name is not kept.
func PenFromStroke(s raster.Stroke) PenSettings {
	return PenSettings{Color: domain.ColorOf(s.Color), Width: s.Width, Opacity: s.Opacity, Style: s.Style}
}

// EraserWidth is the fixed width of the eraser.
const EraserWidth = 10

var builtinPens = map[string]PenSettings{
	"Pencil":      {Name: "Pencil", Color: domain.Black, Width: 1, Opacity: 1.0},
	"Brush":       {Name: "Brush", Color: domain.Black, Width: 5, Opacity: 0.8},
	"Highlighter": {Name: "Highlighter", Color: domain.Color{R: 0xff, G: 0xff, A: 0xff}, Width: 10, Opacity: 0.5},
	"Marker":      {Name: "Marker", Color: domain.Color{R: 0xff, A: 0xff}, Width: 8, Opacity: 1.0},
	"Calligraphy": {Name: "Calligraphy", Color: domain.Black, Width: 6, Opacity: 0.9},
	"ShapeTool":   {Name: "ShapeTool", Color: domain.Color{B: 0xff, A: 0xff}, Width: 3, Opacity: 0.8, Style: raster.Dash},
}

// GetPen returns a builtin pen preset by name.
func GetPen(name string) (PenSettings, bool) {
	p, ok := builtinPens[name]
	return p, ok
}

// ListPens lists the names of the builtin pens in stable order.
func ListPens() []string {
	return []string{"Pencil", "Brush", "Highlighter", "Marker", "Calligraphy", "ShapeTool"}
}

// presetFor names the builtin pen drawing s, preferring current, or returns
// "" when s matches none.
func presetFor(s raster.Stroke, current string) string {
	if p, ok := builtinPens[current]; ok && p.Stroke() == s {
		return current
	}
	for _, name := range ListPens() {
		if builtinPens[name].Stroke() == s {
			return name
		}
	}
	return ""
}

// DefaultPen is the pencil.
func DefaultPen() PenSettings { return builtinPens["Pencil"] }

// Validate rejects settings the raster layer cannot draw.
func (p PenSettings) Validate() error {
	if p.Width < 1 || p.Width > 200 {
		return fmt.Errorf("pen width %d out of range 1..200", p.Width)
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("pen opacity %.2f out of range 0..1", p.Opacity)
	}
	return nil
}
