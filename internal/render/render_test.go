/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/geom"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/textlayout"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
)

func testDoc() *domain.Document {
	doc := domain.NewDocument(200, 150, domain.White)
	doc.AddImage(domain.NewImageObject(raster.Filled(40, 30, red), image.Pt(50, 50)))
	return doc
}

func rgba(img *image.RGBA, x, y int) color.RGBA { return img.RGBAAt(x, y) }

func TestLayerOrderIsFixed(t *testing.T) {
	r := New(textlayout.BasicProvider{})
	var got []Layer
	r.trace = func(l Layer) { got = append(got, l) }

	doc := testDoc()
	f := Frame{
		Doc: doc, Mapper: geom.NewMapper(doc.Width, doc.Height),
		Crop: image.Rect(10, 10, 60, 60), Cropping: true,
		Session: &TextPreview{Pos: image.Pt(20, 100), Text: "hi", Font: domain.DefaultFont, Color: domain.Black, Opacity: 1, Box: image.Rect(20, 87, 90, 105)},
		Grid:    true, Ruler: true,
	}
	r.Render(raster.New(200, 150), f)

	want := []Layer{LayerWorkspace, LayerBackground, LayerImages, LayerSelection, LayerCropPreview,
		LayerOverlay, LayerTexts, LayerTextSession, LayerGrid, LayerRuler}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("layer order = %v, want %v", got, want)
	}
}

func TestOptionalLayersSkipped(t *testing.T) {
	r := New(nil)
	var got []Layer
	r.trace = func(l Layer) { got = append(got, l) }
	doc := domain.NewDocument(50, 50, domain.White)
	r.Scene(Frame{Doc: doc})
	want := []Layer{LayerBackground, LayerImages, LayerOverlay, LayerTexts}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("layer order = %v, want %v", got, want)
	}
}

func TestLaterLayersOcclude(t *testing.T) {
	r := New(textlayout.BasicProvider{})
	doc := testDoc()
	doc.Selected = domain.NoSelection
	// a second image overlapping the first sits on top
	doc.Images = append(doc.Images, domain.NewImageObject(raster.Filled(10, 10, green), image.Pt(60, 60)))
	raster.FillRect(doc.Overlay, image.Rect(80, 70, 85, 75), color.NRGBA{0, 0, 255, 255})

	s := r.Scene(Frame{Doc: doc})
	if c := rgba(s, 5, 5); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("background = %v", c)
	}
	if c := rgba(s, 55, 55); c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("image 0 = %v", c)
	}
	if c := rgba(s, 65, 65); c != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("image 1 should cover image 0, got %v", c)
	}
	if c := rgba(s, 82, 72); c != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("overlay should cover images, got %v", c)
	}
}

func TestSelectionHighlightAndHandles(t *testing.T) {
	r := New(nil)
	doc := testDoc()
	s := r.Scene(Frame{Doc: doc})
	blue := color.RGBA{0, 0, 255, 255}
	if c := rgba(s, 70, 50); c != blue {
		t.Fatalf("selection edge = %v", c)
	}
	for _, p := range []image.Point{{50, 50}, {90, 50}, {50, 80}, {90, 80}} {
		if c := rgba(s, p.X, p.Y); c != blue {
			t.Fatalf("handle at %v = %v", p, c)
		}
	}
	// interior untouched
	if c := rgba(s, 70, 65); c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("interior = %v", c)
	}
}

func TestTextsDrawnAboveOverlay(t *testing.T) {
	r := New(textlayout.BasicProvider{})
	doc := domain.NewDocument(100, 40, domain.White)
	raster.FillRect(doc.Overlay, doc.Bounds(), green)
	doc.AddText(domain.TextObject{Pos: image.Pt(5, 25), Text: "MMMM", Font: domain.DefaultFont, Color: domain.Black, Opacity: 1})
	s := r.Scene(Frame{Doc: doc})
	dark := 0
	for y := 10; y < 30; y++ {
		for x := 5; x < 40; x++ {
			if c := rgba(s, x, y); c.G < 100 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("text not visible above overlay")
	}
}

func TestFlattenOmitsGuides(t *testing.T) {
	r := New(nil)
	doc := testDoc()
	flat := r.Flatten(doc)
	if c := rgba(flat, 70, 50); c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("flatten drew selection: %v", c)
	}
	if !raster.Equal(doc.Background, raster.Filled(200, 150, color.White)) {
		t.Fatalf("flatten mutated the background")
	}
}

func TestGridAndRuler(t *testing.T) {
	r := New(nil)
	doc := domain.NewDocument(120, 120, domain.White)
	s := r.Scene(Frame{Doc: doc, Grid: true, GridSpacing: 20})
	g := color.RGBA{200, 200, 200, 255}
	if c := rgba(s, 40, 1); c != g {
		t.Fatalf("grid line at x=40 = %v", c)
	}
	if c := rgba(s, 41, 41); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("between grid lines = %v", c)
	}

	s = r.Scene(Frame{Doc: doc, Ruler: true})
	if c := rgba(s, 100, 18); c != (color.RGBA{150, 150, 150, 255}) {
		t.Fatalf("ruler strip = %v", c)
	}
	if c := rgba(s, 30, 2); c != (color.RGBA{100, 100, 100, 255}) {
		t.Fatalf("small tick = %v", c)
	}
	if c := rgba(s, 50, 8); c != (color.RGBA{100, 100, 100, 255}) {
		t.Fatalf("large tick = %v", c)
	}
	if c := rgba(s, 60, 8); c == (color.RGBA{100, 100, 100, 255}) {
		t.Fatalf("small tick too long")
	}
	if c := rgba(s, 60, 60); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("ruler leaked into canvas: %v", c)
	}
}

func TestRenderPlacesCanvasThroughMapper(t *testing.T) {
	r := New(nil)
	doc := domain.NewDocument(50, 40, domain.White)
	m := geom.NewMapper(50, 40)
	m.Origin = geom.P(100, 60)
	dst := raster.New(300, 200)
	r.Render(dst, Frame{Doc: doc, Mapper: m, Panels: []Panel{{Rect: image.Rect(0, 0, 300, 50), Color: color.NRGBA{200, 200, 200, 255}}}})

	if c := rgba(dst, 10, 10); c != (color.RGBA{200, 200, 200, 255}) {
		t.Fatalf("panel = %v", c)
	}
	if c := rgba(dst, 10, 100); c != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("workspace = %v", c)
	}
	if c := rgba(dst, 120, 80); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("canvas = %v", c)
	}
	if c := rgba(dst, 151, 80); c != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("outside canvas = %v", c)
	}

	m.Zoom(2)
	r.Render(dst, Frame{Doc: doc, Mapper: m})
	if c := rgba(dst, 190, 130); c != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("zoomed canvas = %v", c)
	}
}

func TestDefaultPanels(t *testing.T) {
	if n := len(DefaultPanels(image.Rect(0, 0, 800, 600))); n != 2 {
		t.Fatalf("narrow workspace panels = %d", n)
	}
	if n := len(DefaultPanels(image.Rect(0, 0, 1400, 900))); n != 3 {
		t.Fatalf("wide workspace panels = %d", n)
	}
}
