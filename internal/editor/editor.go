/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor ties the canvas document, the tool controller, undo history
// and the renderer together behind the operations a front end calls.
package editor

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"adlicanvas/internal/codec"
	"adlicanvas/internal/domain"
	"adlicanvas/internal/filter"
	"adlicanvas/internal/geom"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/render"
	"adlicanvas/internal/storage"
	"adlicanvas/internal/textlayout"
	"adlicanvas/internal/tools"
	"adlicanvas/internal/undo"
)

// Zoom steps used by ZoomIn and ZoomOut.
const (
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Surface is the widget that displays the editor. Invalidate is called after
// every event that changed visible state.
type Surface interface {
	Invalidate()
}

// View holds the overlay toggles.
type View struct {
	Grid        bool
	Ruler       bool
	GridSpacing int
}

// Options configures a new editor.
type Options struct {
	Width, Height int
	Background    domain.Color
	History       undo.Config
	Fonts         textlayout.Provider
	Pen           tools.PenSettings
	View          View
}

// Editor is the single-threaded façade over one open canvas. Front ends drive
// it from their event loop.
type Editor struct {
	doc     *domain.Document
	hist    *undo.History
	ctl     *tools.Controller
	rend    *render.Renderer
	mapper  geom.Mapper
	view    View
	surface Surface
	project *storage.ProjectHandle
	log     *slog.Logger

	// filterActive is the filter whose slider gesture already checkpointed.
	filterActive string
}

// New creates an editor with an empty document.
func New(opts Options) *Editor {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1000, 800
	}
	if opts.Background == (domain.Color{}) {
		opts.Background = domain.White
	}
	if opts.Fonts == nil {
		opts.Fonts = textlayout.NewFontLibrary()
	}
	if opts.View.GridSpacing <= 0 {
		opts.View.GridSpacing = render.DefaultGridSpacing
	}
	e := &Editor{
		doc:    domain.NewDocument(opts.Width, opts.Height, opts.Background),
		hist:   undo.NewHistory(opts.History),
		rend:   render.New(opts.Fonts),
		mapper: geom.NewMapper(opts.Width, opts.Height),
		view:   opts.View,
		log:    applog.WithComponent("editor"),
	}
	e.ctl = tools.NewController(e.doc, opts.Fonts, e.push)
	if opts.Pen.Width > 0 {
		if err := e.ctl.SetPen(opts.Pen); err != nil {
			e.log.Warn("pen settings rejected", slog.Any("err", err))
		}
	}
	return e
}

func (e *Editor) push(s *domain.Snapshot) {
	e.hist.Push(s)
	e.filterActive = ""
}

// Document returns the live document.
func (e *Editor) Document() *domain.Document { return e.doc }

// Controller exposes the tool controller for settings not wrapped here.
func (e *Editor) Controller() *tools.Controller { return e.ctl }

// History exposes the undo history.
func (e *Editor) History() *undo.History { return e.hist }

// Mapper returns the current widget/canvas mapping.
func (e *Editor) Mapper() geom.Mapper { return e.mapper }

// View returns the overlay toggles.
func (e *Editor) View() View { return e.view }

// SetSurface attaches the display widget.
func (e *Editor) SetSurface(s Surface) { e.surface = s }

func (e *Editor) invalidate() {
	if e.surface != nil {
		e.surface.Invalidate()
	}
}

// SetViewport places the canvas at origin with the given displayed size in
// widget units.
func (e *Editor) SetViewport(origin geom.Pt, displayW, displayH float64) {
	e.mapper.Origin = origin
	e.mapper.DisplayW = displayW
	e.mapper.DisplayH = displayH
	e.invalidate()
}

// SetMode switches the active tool.
func (e *Editor) SetMode(m tools.Mode) {
	e.ctl.SetMode(m)
	e.filterActive = ""
	e.invalidate()
}

// Mode returns the active tool mode.
func (e *Editor) Mode() tools.Mode { return e.ctl.Mode() }

// SetPen updates the pen used by drawing, shape and text tools.
func (e *Editor) SetPen(p tools.PenSettings) error {
	if err := e.ctl.SetPen(p); err != nil {
		return err
	}
	e.invalidate()
	return nil
}

// PointerDown maps a widget point to the canvas and forwards it.
func (e *Editor) PointerDown(w geom.Pt) error {
	e.filterActive = ""
	err := e.ctl.PointerDown(e.mapper.Map(w))
	e.invalidate()
	return err
}

// PointerMove maps a widget point to the canvas and forwards it.
func (e *Editor) PointerMove(w geom.Pt, held tools.Buttons) error {
	err := e.ctl.PointerMove(e.mapper.Map(w), held)
	e.invalidate()
	return err
}

// PointerUp maps a widget point to the canvas and forwards it.
func (e *Editor) PointerUp(w geom.Pt) error {
	err := e.ctl.PointerUp(e.mapper.Map(w))
	e.invalidate()
	return err
}

func (e *Editor) TypeRune(r rune) error {
	err := e.ctl.TypeRune(r)
	e.invalidate()
	return err
}

func (e *Editor) Backspace() error {
	err := e.ctl.Backspace()
	e.invalidate()
	return err
}

func (e *Editor) Enter() error {
	err := e.ctl.Enter()
	e.invalidate()
	return err
}

// ImportReader decodes an image, scales it down to fit the canvas keeping its
// aspect ratio, centers it and adds it as the selected object. A decode
// failure leaves the document and history untouched.
func (e *Editor) ImportReader(r io.Reader, source string) (int, error) {
	img, format, err := codec.Decode(r, source)
	if err != nil {
		return domain.NoSelection, err
	}
	return e.place(img, source, format), nil
}

// Import is ImportReader for a file path.
func (e *Editor) Import(path string) (int, error) {
	img, format, err := codec.DecodeFile(path)
	if err != nil {
		return domain.NoSelection, err
	}
	return e.place(img, path, format), nil
}

func (e *Editor) place(img *image.RGBA, source, format string) int {
	e.ctl.Checkpoint()
	b := img.Bounds()
	w, h := raster.FitWithin(b.Dx(), b.Dy(), e.doc.Width, e.doc.Height)
	px := img
	if w != b.Dx() || h != b.Dy() {
		px = raster.Resize(img, w, h)
	}
	pos := image.Pt((e.doc.Width-w)/2, (e.doc.Height-h)/2)
	idx := e.doc.AddImage(domain.NewImageObject(px, pos))
	e.log.Info("image imported", slog.String("source", source), slog.String("format", format),
		slog.Int("w", w), slog.Int("h", h), slog.Int("index", idx))
	e.invalidate()
	return idx
}

// DeleteSelected removes the selected image.
func (e *Editor) DeleteSelected() error {
	idx, ok := e.doc.Selection()
	if !ok {
		return domain.ErrInvalidSelection
	}
	e.ctl.Checkpoint()
	if err := e.doc.RemoveImage(idx); err != nil {
		return err
	}
	e.invalidate()
	return nil
}

// FlipHorizontal mirrors the selected image left to right.
func (e *Editor) FlipHorizontal() error { return e.flip(raster.FlipH) }

// FlipVertical mirrors the selected image top to bottom.
func (e *Editor) FlipVertical() error { return e.flip(raster.FlipV) }

func (e *Editor) flip(fn func(*image.RGBA) *image.RGBA) error {
	obj, err := e.doc.SelectedImage()
	if err != nil {
		return err
	}
	e.ctl.Checkpoint()
	obj.Pixels = fn(obj.Pixels)
	obj.Original = fn(obj.Original)
	e.invalidate()
	return nil
}

// ApplyFilter runs the named filter on the selected image's original and
// replaces its pixels. Repeated calls for the same filter, as a slider is
// dragged, share one checkpoint until another operation intervenes.
func (e *Editor) ApplyFilter(name string, p domain.FilterParams) error {
	f, err := filter.Lookup(name)
	if err != nil {
		return err
	}
	obj, err := e.doc.SelectedImage()
	if err != nil {
		return err
	}
	if e.filterActive != name {
		e.ctl.Checkpoint()
		e.filterActive = name
	}
	e.ctl.SetFilter(p)
	obj.Pixels = filter.ForObject(f, obj, p)
	e.invalidate()
	return nil
}

// Histogram computes the histogram of the selected image.
func (e *Editor) Histogram() (filter.Histogram, error) {
	obj, err := e.doc.SelectedImage()
	if err != nil {
		return filter.Histogram{}, err
	}
	return filter.ComputeHistogram(obj.Pixels), nil
}

func (e *Editor) capture() *domain.Snapshot { return e.doc.Capture(e.ctl.Params()) }

// Undo restores the previous checkpoint. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	s, ok := e.hist.Undo(e.capture)
	if !ok {
		return false
	}
	e.restore(s)
	return true
}

// Redo reapplies the last undone state.
func (e *Editor) Redo() bool {
	s, ok := e.hist.Redo(e.capture)
	if !ok {
		return false
	}
	e.restore(s)
	return true
}

func (e *Editor) restore(s *domain.Snapshot) {
	e.ctl.CancelGesture()
	e.ctl.ApplyParams(e.doc.Restore(s))
	e.filterActive = ""
	e.invalidate()
}

func (e *Editor) ZoomIn()  { e.mapper.Zoom(ZoomInFactor); e.invalidate() }
func (e *Editor) ZoomOut() { e.mapper.Zoom(ZoomOutFactor); e.invalidate() }

func (e *Editor) ResetZoom() {
	e.mapper.ResetZoom()
	e.invalidate()
}

// Pan moves the canvas by a widget-space delta.
func (e *Editor) Pan(dx, dy float64) {
	e.mapper.Pan(dx, dy)
	e.invalidate()
}

func (e *Editor) SetGrid(on bool) {
	e.view.Grid = on
	e.invalidate()
}

func (e *Editor) SetRuler(on bool) {
	e.view.Ruler = on
	e.invalidate()
}

// Frame assembles what the renderer needs for the current state.
func (e *Editor) Frame(workspace image.Rectangle) render.Frame {
	f := render.Frame{
		Doc:         e.doc,
		Mapper:      e.mapper,
		Panels:      render.DefaultPanels(workspace),
		Grid:        e.view.Grid,
		Ruler:       e.view.Ruler,
		GridSpacing: e.view.GridSpacing,
	}
	if r, ok := e.ctl.CropPreview(); ok {
		f.Crop, f.Cropping = r, true
	}
	if s, ok := e.ctl.TextSession(); ok {
		f.Session = &render.TextPreview{
			Pos: s.Pos, Text: s.Text(), Font: s.Font, Color: s.Color, Opacity: s.Opacity, Box: s.Box,
		}
	}
	return f
}

// Render paints the full workspace into dst.
func (e *Editor) Render(dst *image.RGBA) {
	e.rend.Render(dst, e.Frame(dst.Bounds()))
}

// Flatten returns the document composite without editor chrome.
func (e *Editor) Flatten() *image.RGBA { return e.rend.Flatten(e.doc) }

// Describe returns a one-line summary for status bars and the CLI.
func (e *Editor) Describe() string {
	sel := "none"
	if i, ok := e.doc.Selection(); ok {
		sel = fmt.Sprint(i)
	}
	_, u, r := e.hist.Stats()
	return fmt.Sprintf("%dx%d images=%d texts=%d selected=%s mode=%s undo=%d redo=%d",
		e.doc.Width, e.doc.Height, len(e.doc.Images), len(e.doc.Texts), sel, e.ctl.Mode(), u, r)
}
