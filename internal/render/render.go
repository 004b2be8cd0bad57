/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render composites a document and the active tool state into the
// frame shown on screen, and flattens documents for export.
//
// Layers are painted back to front in a fixed order; later layers occlude
// earlier ones wherever they are opaque.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/geom"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/textlayout"
)

// Layer identifies one step of the compositing order.
type Layer int

const (
	LayerWorkspace Layer = iota
	LayerBackground
	LayerImages
	LayerSelection
	LayerCropPreview
	LayerOverlay
	LayerTexts
	LayerTextSession
	LayerGrid
	LayerRuler
)

var layerNames = [...]string{"workspace", "background", "images", "selection", "crop", "overlay", "texts", "session", "grid", "ruler"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "layer(" + strconv.Itoa(int(l)) + ")"
}

// Panel is a filled rectangle of workspace chrome in widget space.
type Panel struct {
	Rect  image.Rectangle
	Color color.NRGBA
}

// DefaultPanels lays out the tool bar, the tool column and the properties
// column around a canvas in a workspace of the given size.
func DefaultPanels(ws image.Rectangle) []Panel {
	top := image.Rect(ws.Min.X, ws.Min.Y, ws.Max.X, ws.Min.Y+50)
	left := image.Rect(ws.Min.X, top.Max.Y+10, ws.Min.X+80, ws.Max.Y)
	panels := []Panel{
		{Rect: top, Color: color.NRGBA{200, 200, 200, 255}},
		{Rect: left, Color: color.NRGBA{220, 220, 220, 255}},
	}
	if ws.Dx() >= 1000 {
		right := image.Rect(ws.Max.X-300, top.Max.Y+70, ws.Max.X, ws.Max.Y)
		panels = append(panels, Panel{Rect: right, Color: color.NRGBA{220, 220, 220, 255}})
	}
	return panels
}

// TextPreview is an open text entry: the typed text drawn at Pos with a
// dashed entry Box around it.
type TextPreview struct {
	Pos     image.Point
	Text    string
	Font    domain.Font
	Color   domain.Color
	Opacity float64
	Box     image.Rectangle
}

// Frame is everything needed to paint one frame.
type Frame struct {
	Doc    *domain.Document
	Mapper geom.Mapper
	Panels []Panel

	// Crop is the rectangle being dragged by the crop tool, if Cropping.
	Crop     image.Rectangle
	Cropping bool
	Session  *TextPreview

	Grid        bool
	Ruler       bool
	GridSpacing int
}

// Theme holds the colors used for chrome and guides.
type Theme struct {
	Workspace  color.NRGBA
	Selection  color.NRGBA
	CropFill   color.NRGBA
	CropEdge   color.NRGBA
	SessionBox color.NRGBA
	Grid       color.NRGBA
	Ruler      color.NRGBA
	RulerTick  color.NRGBA
	RulerLabel color.NRGBA
}

// DefaultTheme matches the stock editor look.
var DefaultTheme = Theme{
	Workspace:  color.NRGBA{0, 0, 0, 255},
	Selection:  color.NRGBA{0, 0, 255, 255},
	CropFill:   color.NRGBA{255, 255, 255, 50},
	CropEdge:   color.NRGBA{0, 0, 0, 255},
	SessionBox: color.NRGBA{0, 0, 0, 255},
	Grid:       color.NRGBA{200, 200, 200, 255},
	Ruler:      color.NRGBA{150, 150, 150, 255},
	RulerTick:  color.NRGBA{100, 100, 100, 255},
	RulerLabel: color.NRGBA{50, 50, 50, 255},
}

const (
	DefaultGridSpacing = 20
	RulerThickness     = 20
	rulerTickInterval  = 10
	rulerLabelInterval = 50
	rulerSmallTick     = 5
	rulerLargeTick     = 10
	handleDiameter     = 10
	guideDash          = 4
)

// Renderer paints frames. It is not safe for concurrent use.
type Renderer struct {
	Fonts textlayout.Provider
	Theme Theme

	log   *slog.Logger
	trace func(Layer)
}

// New returns a renderer that resolves text fonts through fonts.
func New(fonts textlayout.Provider) *Renderer {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	return &Renderer{Fonts: fonts, Theme: DefaultTheme, log: applog.WithComponent("render")}
}

func (r *Renderer) enter(l Layer) {
	if r.trace != nil {
		r.trace(l)
	}
}

// Render paints the workspace into dst and the composited canvas into the
// mapper's display rectangle, scaling when zoomed.
func (r *Renderer) Render(dst *image.RGBA, f Frame) {
	r.enter(LayerWorkspace)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Theme.Workspace), image.Point{}, draw.Src)
	for _, p := range f.Panels {
		draw.Draw(dst, p.Rect.Intersect(dst.Bounds()), image.NewUniform(p.Color), image.Point{}, draw.Src)
	}
	if f.Doc == nil {
		return
	}
	scene := r.Scene(f)
	tl := f.Mapper.Unmap(geom.P(0, 0)).Image()
	br := f.Mapper.Unmap(geom.P(float64(f.Doc.Width), float64(f.Doc.Height))).Image()
	target := image.Rectangle{Min: tl, Max: br}
	if target.Size() == scene.Bounds().Size() {
		draw.Draw(dst, target, scene, image.Point{}, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, target, scene, scene.Bounds(), draw.Src, nil)
}

// Scene composites every canvas-space layer of f into a new buffer the size
// of the document.
func (r *Renderer) Scene(f Frame) *image.RGBA {
	doc := f.Doc
	out := raster.New(doc.Width, doc.Height)

	r.enter(LayerBackground)
	draw.Draw(out, out.Bounds(), doc.Background, doc.Background.Bounds().Min, draw.Src)

	r.enter(LayerImages)
	r.drawImages(out, doc)

	if img, err := doc.SelectedImage(); err == nil {
		r.enter(LayerSelection)
		r.drawSelection(out, img.Rect)
	}

	if f.Cropping && !f.Crop.Empty() {
		r.enter(LayerCropPreview)
		raster.FillRect(out, f.Crop, r.Theme.CropFill)
		raster.DashedRect(out, f.Crop, r.Theme.CropEdge, guideDash)
	}

	r.enter(LayerOverlay)
	raster.CompositeOver(out, doc.Overlay, image.Point{})

	r.enter(LayerTexts)
	r.drawTexts(out, doc)

	if s := f.Session; s != nil {
		r.enter(LayerTextSession)
		r.drawSession(out, s)
	}

	if f.Grid {
		r.enter(LayerGrid)
		r.drawGrid(out, f.GridSpacing)
	}
	if f.Ruler {
		r.enter(LayerRuler)
		r.drawRuler(out)
	}
	return out
}

// Flatten composites only document content: background, images, overlay
// and texts. It is what export and thumbnails see.
func (r *Renderer) Flatten(doc *domain.Document) *image.RGBA {
	out := raster.Clone(doc.Background)
	r.drawImages(out, doc)
	raster.CompositeOver(out, doc.Overlay, image.Point{})
	r.drawTexts(out, doc)
	return out
}

func (r *Renderer) drawImages(dst *image.RGBA, doc *domain.Document) {
	for _, img := range doc.Images {
		raster.CompositeOver(dst, img.Pixels, img.Rect.Min)
	}
}

func (r *Renderer) drawTexts(dst *image.RGBA, doc *domain.Document) {
	for _, t := range doc.Texts {
		if err := textlayout.DrawText(dst, r.Fonts, t); err != nil {
			r.log.Warn("text skipped", slog.String("text", t.Text), slog.Any("err", err))
		}
	}
}

func (r *Renderer) drawSelection(dst *image.RGBA, rect image.Rectangle) {
	raster.StrokeRect(dst, rect, r.Theme.Selection)
	handle := raster.Stroke{Color: r.Theme.Selection, Width: handleDiameter, Opacity: 1}
	for _, c := range geom.AllCorners {
		p := geom.CornerPoint(rect, c)
		raster.DrawSegment(dst, p, p, handle, 0)
	}
}

func (r *Renderer) drawSession(dst *image.RGBA, s *TextPreview) {
	if s.Text != "" {
		face, err := r.Fonts.Face(s.Font)
		if err != nil {
			r.log.Warn("session font unavailable", slog.Any("err", err))
		} else {
			textlayout.Draw(dst, face, s.Pos, s.Text, s.Color.NRGBA(), s.Opacity)
		}
	}
	raster.DashedRect(dst, s.Box, r.Theme.SessionBox, guideDash)
}

func (r *Renderer) drawGrid(dst *image.RGBA, spacing int) {
	if spacing <= 1 {
		spacing = DefaultGridSpacing
	}
	b := dst.Bounds()
	for x := b.Min.X; x < b.Max.X; x += spacing {
		raster.DashedLine(dst, image.Pt(x, b.Min.Y), image.Pt(x, b.Max.Y-1), r.Theme.Grid, guideDash)
	}
	for y := b.Min.Y; y < b.Max.Y; y += spacing {
		raster.DashedLine(dst, image.Pt(b.Min.X, y), image.Pt(b.Max.X-1, y), r.Theme.Grid, guideDash)
	}
}

func (r *Renderer) drawRuler(dst *image.RGBA) {
	b := dst.Bounds()
	face := basicfont.Face7x13
	raster.FillRect(dst, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+RulerThickness), r.Theme.Ruler)
	raster.FillRect(dst, image.Rect(b.Min.X, b.Min.Y, b.Min.X+RulerThickness, b.Max.Y), r.Theme.Ruler)
	for x := 0; x < b.Dx(); x += rulerTickInterval {
		px := b.Min.X + x
		tick := rulerSmallTick
		if x%rulerLabelInterval == 0 {
			tick = rulerLargeTick
			textlayout.Draw(dst, face, image.Pt(px+2, b.Min.Y+15), strconv.Itoa(x), r.Theme.RulerLabel, 1)
		}
		raster.FillRect(dst, image.Rect(px, b.Min.Y, px+1, b.Min.Y+tick), r.Theme.RulerTick)
	}
	for y := 0; y < b.Dy(); y += rulerTickInterval {
		py := b.Min.Y + y
		tick := rulerSmallTick
		if y%rulerLabelInterval == 0 {
			tick = rulerLargeTick
			textlayout.Draw(dst, face, image.Pt(b.Min.X+5, py+5), strconv.Itoa(y), r.Theme.RulerLabel, 1)
		}
		raster.FillRect(dst, image.Rect(b.Min.X, py, b.Min.X+tick, py+1), r.Theme.RulerTick)
	}
}
