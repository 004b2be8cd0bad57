/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the document model of the canvas editor: the canvas
// document itself, the two kinds of objects it holds and the tool values
// that travel with history snapshots.

import (
	"fmt"
	"image"
	"image/color"

	"adlicanvas/internal/raster"
)

// NoSelection marks a document without a selected image.
const NoSelection = -1

// ObjectKind discriminates the closed set of document objects.
type ObjectKind int

const (
	KindImage ObjectKind = iota + 1
	KindText
)

func (k ObjectKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Object is implemented only by *ImageObject and TextObject.
type Object interface {
	Kind() ObjectKind
	Bounds() image.Rectangle
	object()
}

// Color is an 8-bit non-premultiplied RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// ColorOf converts any color to Color.
func ColorOf(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

var (
	White = Color{0xff, 0xff, 0xff, 0xff}
	Black = Color{0, 0, 0, 0xff}
)

// ImageObject is an imported picture placed on the canvas. Pixels is what is
// displayed; Original is the resampling source for scaling and filters.
// Rect always has the size of Pixels.
type ImageObject struct {
	Pixels   *image.RGBA
	Original *image.RGBA
	Rect     image.Rectangle
}

// NewImageObject places a copy of buf at pos, using it for both buffers.
func NewImageObject(buf image.Image, pos image.Point) *ImageObject {
	px := raster.Clone(buf)
	return &ImageObject{
		Pixels:   px,
		Original: raster.Clone(px),
		Rect:     image.Rectangle{Min: pos, Max: pos.Add(px.Bounds().Size())},
	}
}

func (o *ImageObject) Kind() ObjectKind        { return KindImage }
func (o *ImageObject) Bounds() image.Rectangle { return o.Rect }
func (o *ImageObject) object()                 {}

// Pos is the top-left corner of the object on the canvas.
func (o *ImageObject) Pos() image.Point { return o.Rect.Min }

// Translate moves the object by d.
func (o *ImageObject) Translate(d image.Point) { o.Rect = o.Rect.Add(d) }

// SetPixels replaces the displayed buffer and resizes Rect to match, keeping
// the top-left corner.
func (o *ImageObject) SetPixels(px *image.RGBA) {
	o.Pixels = px
	o.Rect = image.Rectangle{Min: o.Rect.Min, Max: o.Rect.Min.Add(px.Bounds().Size())}
}

// Clone returns a deep copy with independent buffers.
func (o *ImageObject) Clone() *ImageObject {
	return &ImageObject{Pixels: raster.Clone(o.Pixels), Original: raster.Clone(o.Original), Rect: o.Rect}
}

// Font describes a text face request.
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

// DefaultFont is used when no font has been configured.
var DefaultFont = Font{Family: "Go", Size: 16}

// TextObject is a committed piece of text. Values are never mutated in place.
type TextObject struct {
	Pos     image.Point `json:"pos"`
	Text    string      `json:"text"`
	Font    Font        `json:"font"`
	Color   Color       `json:"color"`
	Opacity float64     `json:"opacity"`
	// Extent is the measured box of the text, filled in by the text tool.
	Extent image.Rectangle `json:"extent"`
}

func (t TextObject) Kind() ObjectKind        { return KindText }
func (t TextObject) Bounds() image.Rectangle { return t.Extent }
func (t TextObject) object()                 {}

// FilterParams are the slider values of the adjustment panel.
type FilterParams struct {
	Threshold int `json:"threshold"`
	Sharpness int `json:"sharpness"`
	Gamma     int `json:"gamma"`
}

// DefaultFilterParams matches the neutral slider positions.
var DefaultFilterParams = FilterParams{Threshold: 127, Sharpness: 0, Gamma: 10}

// ToolParams are the tool values that affect what the user sees and are
// therefore captured with each snapshot.
type ToolParams struct {
	Pen    raster.Stroke
	Filter FilterParams
}

// Document is the canvas being edited.
type Document struct {
	Width      int
	Height     int
	Background *image.RGBA
	Overlay    *image.RGBA
	Images     []*ImageObject
	Texts      []TextObject
	Selected   int
	// Paper is the color the canvas starts with and the eraser paints.
	Paper Color
}

// NewDocument creates a w x h document filled with paper.
func NewDocument(w, h int, paper Color) *Document {
	return &Document{
		Width:      w,
		Height:     h,
		Background: raster.Filled(w, h, paper.NRGBA()),
		Overlay:    raster.New(w, h),
		Selected:   NoSelection,
		Paper:      paper,
	}
}

// Bounds is the canvas rectangle in logical space.
func (d *Document) Bounds() image.Rectangle { return image.Rect(0, 0, d.Width, d.Height) }

// Selection returns the selected index and whether one is set.
func (d *Document) Selection() (int, bool) {
	if d.Selected == NoSelection {
		return NoSelection, false
	}
	return d.Selected, true
}

// Select selects image i, or clears the selection for NoSelection.
func (d *Document) Select(i int) error {
	if i != NoSelection && (i < 0 || i >= len(d.Images)) {
		return fmt.Errorf("select image %d of %d: %w", i, len(d.Images), ErrInvalidSelection)
	}
	d.Selected = i
	return nil
}

// SelectedImage returns the selected image or ErrInvalidSelection.
func (d *Document) SelectedImage() (*ImageObject, error) {
	i, ok := d.Selection()
	if !ok {
		return nil, ErrInvalidSelection
	}
	return d.Images[i], nil
}

// AddImage appends obj on top of the z-order, selects it and returns its index.
func (d *Document) AddImage(obj *ImageObject) int {
	d.Images = append(d.Images, obj)
	d.Selected = len(d.Images) - 1
	return d.Selected
}

// RemoveImage deletes image i and keeps the selection pointing at the same
// object, or clears it when that object is the one removed.
func (d *Document) RemoveImage(i int) error {
	if i < 0 || i >= len(d.Images) {
		return fmt.Errorf("remove image %d of %d: %w", i, len(d.Images), ErrInvalidSelection)
	}
	d.Images = append(d.Images[:i], d.Images[i+1:]...)
	switch {
	case d.Selected == i:
		d.Selected = NoSelection
	case d.Selected > i:
		d.Selected--
	}
	return nil
}

// AddText commits a text object.
func (d *Document) AddText(t TextObject) { d.Texts = append(d.Texts, t) }

// HitTest returns the index of the topmost image containing p, or NoSelection.
func (d *Document) HitTest(p image.Point) int {
	for i := len(d.Images) - 1; i >= 0; i-- {
		if p.In(d.Images[i].Rect) {
			return i
		}
	}
	return NoSelection
}

// Objects lists every object in paint order: images by index, then texts.
func (d *Document) Objects() []Object {
	out := make([]Object, 0, len(d.Images)+len(d.Texts))
	for _, img := range d.Images {
		out = append(out, img)
	}
	for _, t := range d.Texts {
		out = append(out, t)
	}
	return out
}

// Validate checks the structural invariants of the document.
func (d *Document) Validate() error {
	if d.Background == nil || d.Overlay == nil {
		return fmt.Errorf("document rasters missing")
	}
	if d.Background.Bounds() != d.Bounds() {
		return fmt.Errorf("background is %v, canvas is %v", d.Background.Bounds(), d.Bounds())
	}
	if d.Overlay.Bounds() != d.Background.Bounds() {
		return fmt.Errorf("overlay is %v, background is %v", d.Overlay.Bounds(), d.Background.Bounds())
	}
	if d.Selected != NoSelection && (d.Selected < 0 || d.Selected >= len(d.Images)) {
		return fmt.Errorf("selection %d out of range: %w", d.Selected, ErrInvalidSelection)
	}
	for i, img := range d.Images {
		if img.Pixels == nil || img.Original == nil {
			return fmt.Errorf("image %d has no pixels", i)
		}
		if img.Pixels.Bounds().Size() != img.Rect.Size() {
			return fmt.Errorf("image %d rect %v does not match pixels %v", i, img.Rect, img.Pixels.Bounds())
		}
	}
	return nil
}
