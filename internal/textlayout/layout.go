/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and draws single-line canvas text.
// All measurement goes through a Provider so tests can use a fixed bitmap
// face while the application uses OpenType fonts.
package textlayout

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"adlicanvas/internal/domain"
)

// Provider maps a font request to a concrete face.
type Provider interface {
	Face(domain.Font) (font.Face, error)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Face(domain.Font) (font.Face, error) { return basicfont.Face7x13, nil }

// Metrics are the pixel metrics of a face.
type Metrics struct {
	Ascent, Descent, Height int
	// AvgAdvance is the mean advance of the basic Latin letters.
	AvgAdvance int
}

const sampleGlyphs = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MetricsOf reads metrics from face.
func MetricsOf(face font.Face) Metrics {
	m := face.Metrics()
	adv := font.MeasureString(face, sampleGlyphs).Round() / len(sampleGlyphs)
	if adv < 1 {
		adv = 1
	}
	return Metrics{
		Ascent:     m.Ascent.Round(),
		Descent:    m.Descent.Round(),
		Height:     m.Height.Round(),
		AvgAdvance: adv,
	}
}

// Width returns the advance width of s in pixels.
func Width(face font.Face, s string) int { return font.MeasureString(face, s).Ceil() }

// Box returns the dashed entry box for text typed at baseline position pos:
// it starts one line height above the baseline, is ten average glyphs wide
// (or wider when the text needs it) and one line plus 5px padding tall.
func Box(face font.Face, pos image.Point, s string) image.Rectangle {
	m := MetricsOf(face)
	w := max(m.AvgAdvance*10, Width(face, s)+m.AvgAdvance)
	top := pos.Y - m.Height
	return image.Rect(pos.X, top, pos.X+w, top+m.Height+5)
}

// Extent is the tight-ish box of s drawn at baseline pos.
func Extent(face font.Face, pos image.Point, s string) image.Rectangle {
	m := MetricsOf(face)
	return image.Rect(pos.X, pos.Y-m.Ascent, pos.X+Width(face, s), pos.Y+m.Descent)
}

// Draw renders s with its baseline at pos, blending c at the given opacity.
func Draw(dst *image.RGBA, face font.Face, pos image.Point, s string, c color.NRGBA, opacity float64) {
	if s == "" {
		return
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(pos.X, pos.Y),
	}
	d.DrawString(s)
}

// DrawText resolves t's font through p and draws it.
func DrawText(dst *image.RGBA, p Provider, t domain.TextObject) error {
	face, err := p.Face(t.Font)
	if err != nil {
		return err
	}
	Draw(dst, face, t.Pos, t.Text, t.Color.NRGBA(), t.Opacity)
	return nil
}
