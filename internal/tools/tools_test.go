/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/geom"
	"adlicanvas/internal/raster"
)

type recorder struct{ snaps []*domain.Snapshot }

func (r *recorder) push(s *domain.Snapshot) { r.snaps = append(r.snaps, s) }

func newTestController(w, h int) (*Controller, *recorder) {
	rec := &recorder{}
	doc := domain.NewDocument(w, h, domain.White)
	return NewController(doc, nil, rec.push), rec
}

func gesture(t *testing.T, c *Controller, pts ...geom.Pt) {
	t.Helper()
	if err := c.PointerDown(pts[0]); err != nil {
		t.Fatalf("down: %v", err)
	}
	for _, p := range pts[1:] {
		if err := c.PointerMove(p, Primary); err != nil {
			t.Fatalf("move %v: %v", p, err)
		}
	}
	if err := c.PointerUp(pts[len(pts)-1]); err != nil {
		t.Fatalf("up: %v", err)
	}
}

func addImage(c *Controller, w, h int, at image.Point) *domain.ImageObject {
	obj := domain.NewImageObject(raster.Filled(w, h, color.NRGBA{B: 0xff, A: 0xff}), at)
	c.Document().AddImage(obj)
	return obj
}

func TestVerticalLineScenario(t *testing.T) {
	c, rec := newTestController(800, 600)
	c.SetMode(Drawing)
	gesture(t, c, geom.P(10, 10), geom.P(10, 100))
	doc := c.Document()
	if got := doc.Background.RGBAAt(10, 50); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("background (10,50) = %v, want black", got)
	}
	if got := doc.Overlay.RGBAAt(10, 50); got.A != 0 {
		t.Fatalf("overlay (10,50) = %v, want transparent", got)
	}
	if !raster.IsTransparent(doc.Overlay) {
		t.Fatalf("overlay not cleared after release")
	}
	// one checkpoint for entering the mode, one for the stroke
	if len(rec.snaps) != 2 {
		t.Fatalf("checkpoints = %d, want 2", len(rec.snaps))
	}
	if rec.snaps[1].Background.RGBAAt(10, 50).R != 0xff {
		t.Fatalf("stroke checkpoint does not hold the pre-stroke state")
	}
}

func TestClickWithoutMoveDrawsNothing(t *testing.T) {
	c, rec := newTestController(50, 50)
	c.SetMode(Drawing)
	gesture(t, c, geom.P(5, 5))
	if len(rec.snaps) != 1 {
		t.Fatalf("checkpoints = %d, want only the mode entry", len(rec.snaps))
	}
}

func TestEraserPaintsPaper(t *testing.T) {
	c, _ := newTestController(60, 60)
	doc := c.Document()
	raster.Fill(doc.Background, color.Black)
	c.SetMode(Erasing)
	gesture(t, c, geom.P(10, 30), geom.P(50, 30))
	if got := doc.Background.RGBAAt(30, 30); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Fatalf("erased pixel = %v", got)
	}
	if got := doc.Background.RGBAAt(30, 10); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("pixel outside eraser changed: %v", got)
	}
}

func TestModesAreExclusive(t *testing.T) {
	c, rec := newTestController(10, 10)
	c.SetMode(Drawing)
	c.SetMode(Shape)
	if c.Mode() != Shape {
		t.Fatalf("mode = %v, want shape", c.Mode())
	}
	if len(rec.snaps) != 2 {
		t.Fatalf("entry checkpoints = %d", len(rec.snaps))
	}
	c.SetMode(Transform)
	c.SetMode(Crop)
	if len(rec.snaps) != 2 {
		t.Fatalf("transform/crop must not checkpoint on entry")
	}
	c.SetMode(Crop)
	if c.Mode() != Crop {
		t.Fatalf("mode = %v", c.Mode())
	}
}

func TestAnchorScaleKeepsAspect(t *testing.T) {
	c, rec := newTestController(800, 600)
	obj := addImage(c, 400, 300, image.Pt(100, 100))
	c.SetMode(Transform)
	br := geom.FromImage(obj.Rect.Max)
	gesture(t, c, br, br.Add(geom.P(50, 0)), br.Add(geom.P(100, 0)))
	if obj.Rect.Dx() != 500 || obj.Rect.Dy() != 375 {
		t.Fatalf("scaled rect = %v, want 500x375", obj.Rect)
	}
	if obj.Rect.Min != image.Pt(100, 100) {
		t.Fatalf("top-left moved: %v", obj.Rect.Min)
	}
	if obj.Pixels.Bounds().Size() != obj.Rect.Size() {
		t.Fatalf("pixels %v do not match rect %v", obj.Pixels.Bounds(), obj.Rect)
	}
	if len(rec.snaps) != 1 {
		t.Fatalf("checkpoints = %d, want exactly one per gesture", len(rec.snaps))
	}
}

func TestAnchorScaleFromTopLeftPinsBottomRight(t *testing.T) {
	c, _ := newTestController(800, 600)
	obj := addImage(c, 200, 100, image.Pt(300, 300))
	c.SetMode(Transform)
	tl := geom.FromImage(obj.Rect.Min)
	gesture(t, c, tl, tl.Sub(geom.P(100, 0)))
	if obj.Rect != image.Rect(200, 250, 500, 400) {
		t.Fatalf("rect = %v", obj.Rect)
	}
}

func TestAnchorScaleRejectsTinySizes(t *testing.T) {
	c, rec := newTestController(800, 600)
	obj := addImage(c, 400, 300, image.Pt(100, 100))
	before := obj.Rect
	c.SetMode(Transform)
	br := geom.FromImage(obj.Rect.Max)
	if err := c.PointerDown(br); err != nil {
		t.Fatalf("down: %v", err)
	}
	err := c.PointerMove(geom.P(108, 300), Primary)
	if !errors.Is(err, domain.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
	// width 12 passes the raw check but the aspect-corrected height is 9
	err = c.PointerMove(geom.P(112, 400), Primary)
	if !errors.Is(err, domain.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry for derived height, got %v", err)
	}
	_ = c.PointerUp(geom.P(112, 400))
	if obj.Rect != before {
		t.Fatalf("object changed: %v", obj.Rect)
	}
	if len(rec.snaps) != 0 {
		t.Fatalf("rejected scale recorded %d checkpoints", len(rec.snaps))
	}
}

func TestDragMovesSelected(t *testing.T) {
	c, rec := newTestController(800, 600)
	obj := addImage(c, 50, 50, image.Pt(10, 10))
	_ = c.Document().Select(domain.NoSelection)
	c.SetMode(Transform)
	gesture(t, c, geom.P(30, 30), geom.P(40, 35), geom.P(60, 50))
	if obj.Rect.Min != image.Pt(40, 30) {
		t.Fatalf("rect = %v", obj.Rect)
	}
	if sel, ok := c.Document().Selection(); !ok || sel != 0 {
		t.Fatalf("image not selected")
	}
	if len(rec.snaps) != 1 {
		t.Fatalf("checkpoints = %d", len(rec.snaps))
	}
	gesture(t, c, geom.P(700, 500))
	if _, ok := c.Document().Selection(); ok {
		t.Fatalf("click on empty canvas kept selection")
	}
}

func TestShapePreviewAndCommit(t *testing.T) {
	c, rec := newTestController(200, 200)
	c.SetMode(Shape)
	c.SetShapeKind(raster.Rectangle)
	doc := c.Document()
	if err := c.PointerDown(geom.P(20, 20)); err != nil {
		t.Fatal(err)
	}
	_ = c.PointerMove(geom.P(120, 80), Primary)
	if raster.IsTransparent(doc.Overlay) {
		t.Fatalf("no preview on overlay")
	}
	if doc.Background.RGBAAt(20, 50) != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Fatalf("preview leaked into background")
	}
	if err := c.PointerUp(geom.P(120, 80)); err != nil {
		t.Fatal(err)
	}
	if !raster.IsTransparent(doc.Overlay) {
		t.Fatalf("overlay not cleared")
	}
	if got := doc.Background.RGBAAt(20, 50); got.R > 0x80 {
		t.Fatalf("rectangle edge not drawn: %v", got)
	}
	if got := doc.Background.RGBAAt(70, 50); got.R != 0xff {
		t.Fatalf("rectangle interior filled: %v", got)
	}
	if len(rec.snaps) != 2 {
		t.Fatalf("checkpoints = %d", len(rec.snaps))
	}
}

func TestTextSessionLifecycle(t *testing.T) {
	c, rec := newTestController(300, 200)
	c.SetMode(Text)
	_ = c.PointerDown(geom.P(50, 100))
	s, ok := c.TextSession()
	if !ok || s.Box.Empty() {
		t.Fatalf("no session opened")
	}
	w0 := s.Box.Dx()
	for _, r := range "hello world, long enough to grow" {
		_ = c.TypeRune(r)
	}
	if s.Box.Dx() <= w0 {
		t.Fatalf("preview box did not grow")
	}
	_ = c.Backspace()
	if s.Text() != "hello world, long enough to gro" {
		t.Fatalf("text = %q", s.Text())
	}
	// a second click finalizes the first session
	_ = c.PointerDown(geom.P(10, 20))
	doc := c.Document()
	if len(doc.Texts) != 1 || doc.Texts[0].Pos != image.Pt(50, 100) {
		t.Fatalf("texts = %+v", doc.Texts)
	}
	_ = c.TypeRune('x')
	if err := c.Enter(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.TextSession(); ok {
		t.Fatalf("session still open")
	}
	if len(doc.Texts) != 2 || doc.Texts[1].Text != "x" {
		t.Fatalf("texts = %+v", doc.Texts)
	}
	// entry + two commits
	if len(rec.snaps) != 3 {
		t.Fatalf("checkpoints = %d", len(rec.snaps))
	}
	// an empty session is dropped
	_ = c.PointerDown(geom.P(1, 1))
	c.SetMode(Idle)
	if len(doc.Texts) != 2 || len(rec.snaps) != 3 {
		t.Fatalf("empty session committed")
	}
}

func TestCropSelected(t *testing.T) {
	c, rec := newTestController(400, 400)
	obj := addImage(c, 100, 80, image.Pt(50, 50))
	c.SetMode(Crop)
	_ = c.PointerDown(geom.P(120, 100))
	_ = c.PointerMove(geom.P(60, 60), Primary)
	if r, ok := c.CropPreview(); !ok || r != image.Rect(60, 60, 120, 100) {
		t.Fatalf("preview = %v %v", r, ok)
	}
	if obj.Rect.Dx() != 100 {
		t.Fatalf("preview mutated the image")
	}
	if err := c.PointerUp(geom.P(60, 60)); err != nil {
		t.Fatalf("crop: %v", err)
	}
	if obj.Rect != image.Rect(50, 50, 110, 90) {
		t.Fatalf("cropped rect = %v", obj.Rect)
	}
	if obj.Original.Bounds().Size() != obj.Rect.Size() {
		t.Fatalf("original not redefined by crop")
	}
	if len(rec.snaps) != 1 {
		t.Fatalf("checkpoints = %d", len(rec.snaps))
	}
	if _, ok := c.CropPreview(); ok {
		t.Fatalf("preview left after release")
	}
}

func TestCropErrors(t *testing.T) {
	c, rec := newTestController(400, 400)
	c.SetMode(Crop)
	_ = c.PointerDown(geom.P(0, 0))
	if err := c.PointerUp(geom.P(30, 30)); !errors.Is(err, domain.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	addImage(c, 10, 10, image.Pt(100, 100))
	_ = c.PointerDown(geom.P(0, 0))
	if err := c.PointerUp(geom.P(30, 30)); !errors.Is(err, domain.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
	if len(rec.snaps) != 0 {
		t.Fatalf("failed crops recorded checkpoints")
	}
}

func TestParamsRoundTrip(t *testing.T) {
	c, _ := newTestController(10, 10)
	hl, _ := GetPen("Highlighter")
	if err := c.SetPen(hl); err != nil {
		t.Fatal(err)
	}
	p := c.Params()
	if err := c.SetPen(DefaultPen()); err != nil {
		t.Fatal(err)
	}
	c.ApplyParams(p)
	if c.Pen().Width != 10 || c.Pen().Opacity != 0.5 || c.Pen().Name != "Highlighter" {
		t.Fatalf("pen = %+v", c.Pen())
	}
	if err := c.SetPen(PenSettings{Width: 0, Opacity: 1}); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(ListPens()) != 6 {
		t.Fatalf("pens = %v", ListPens())
	}
	for _, name := range ListPens() {
		if _, ok := GetPen(name); !ok {
			t.Fatalf("listed pen %q has no preset", name)
		}
	}
	if sp, _ := GetPen("ShapeTool"); sp.Style != raster.Dash || sp.Width != 3 {
		t.Fatalf("shape pen = %+v", sp)
	}
}

func TestParseMode(t *testing.T) {
	for m := Idle; m <= Crop; m++ {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("lasso"); err == nil {
		t.Fatalf("expected error")
	}
}
