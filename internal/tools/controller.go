/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tools implements the pointer-driven editing tools and the
// controller that keeps exactly one of them active.
//
// Tools receive canvas-space points. Every gesture (pointer down, moves,
// pointer up) produces at most one history checkpoint, taken right before
// the gesture first changes committed document state, so a gesture that
// ends up changing nothing leaves the history untouched.
package tools

import (
	"image"
	"log/slog"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/geom"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/textlayout"
)

// Tool is the pointer-gesture protocol every tool implements.
type Tool interface {
	Mode() Mode
	PointerDown(c *Controller, p image.Point) error
	PointerMove(c *Controller, p image.Point, held Buttons) error
	PointerUp(c *Controller, p image.Point) error
	// Deactivate releases per-gesture resources when another mode takes over.
	Deactivate(c *Controller)
}

// keyTool is implemented by tools that accept keyboard input.
type keyTool interface {
	TypeRune(c *Controller, r rune) error
	Backspace(c *Controller) error
	Enter(c *Controller) error
}

// CheckpointFunc receives a snapshot to record in history.
type CheckpointFunc func(*domain.Snapshot)

// Controller owns the active mode, the shared tool configuration and the
// per-gesture bookkeeping.
type Controller struct {
	doc   *domain.Document
	mode  Mode
	tools map[Mode]Tool
	fonts textlayout.Provider
	push  CheckpointFunc
	log   *slog.Logger

	pen    PenSettings
	font   domain.Font
	shape  raster.ShapeKind
	filter domain.FilterParams

	// gestureCheckpointed is set once the current gesture has recorded its checkpoint.
	gestureCheckpointed bool
}

// NewController creates a controller in Idle mode. push is called with every
// checkpoint; fonts measures text for the text tool.
func NewController(doc *domain.Document, fonts textlayout.Provider, push CheckpointFunc) *Controller {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	c := &Controller{
		doc:    doc,
		fonts:  fonts,
		push:   push,
		log:    applog.WithComponent("tools"),
		pen:    DefaultPen(),
		font:   domain.DefaultFont,
		filter: domain.DefaultFilterParams,
	}
	c.tools = map[Mode]Tool{
		Idle:      &selectTool{},
		Transform: &transformTool{},
		Drawing:   &strokeTool{mode: Drawing},
		Erasing:   &strokeTool{mode: Erasing},
		Shape:     &shapeTool{},
		Text:      &textTool{},
		Crop:      &cropTool{},
	}
	return c
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Document returns the document the tools act on.
func (c *Controller) Document() *domain.Document { return c.doc }

// SetDocument swaps the document, e.g. after a project was opened. Any open
// text session is dropped and the active tool is reset.
func (c *Controller) SetDocument(d *domain.Document) {
	c.tools[Text].(*textTool).session = nil
	c.tools[c.mode].Deactivate(c)
	c.doc = d
}

// SetMode activates m, deactivating the previous tool. Entering Drawing,
// Erasing, Shape or Text records a checkpoint so the switch can be undone.
func (c *Controller) SetMode(m Mode) {
	if _, ok := c.tools[m]; !ok {
		return
	}
	if m == c.mode {
		return
	}
	prev := c.mode
	c.tools[prev].Deactivate(c)
	c.mode = m
	c.gestureCheckpointed = false
	if m.checkpointsOnEntry() {
		c.Checkpoint()
	}
	c.log.Debug("mode changed", slog.String("from", prev.String()), slog.String("to", m.String()))
}

// Pen returns the shared pen configuration.
func (c *Controller) Pen() PenSettings { return c.pen }

// SetPen replaces the pen configuration.
func (c *Controller) SetPen(p PenSettings) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.pen = p
	return nil
}

func (c *Controller) Font() domain.Font     { return c.font }
func (c *Controller) SetFont(f domain.Font) { c.font = f }

func (c *Controller) ShapeKind() raster.ShapeKind     { return c.shape }
func (c *Controller) SetShapeKind(k raster.ShapeKind) { c.shape = k }

func (c *Controller) Filter() domain.FilterParams     { return c.filter }
func (c *Controller) SetFilter(p domain.FilterParams) { c.filter = p }

// Fonts returns the provider used for text measurement.
func (c *Controller) Fonts() textlayout.Provider { return c.fonts }

// Params returns the tool values captured with snapshots.
func (c *Controller) Params() domain.ToolParams {
	return domain.ToolParams{Pen: c.pen.Stroke(), Filter: c.filter}
}

// ApplyParams restores tool values from a snapshot.
func (c *Controller) ApplyParams(p domain.ToolParams) {
	name := presetFor(p.Pen, c.pen.Name)
	c.pen = PenFromStroke(p.Pen)
	c.pen.Name = name
	c.filter = p.Filter
}

// Checkpoint records the current document state in history.
func (c *Controller) Checkpoint() {
	if c.push != nil {
		c.push(c.doc.Capture(c.Params()))
	}
}

// CancelGesture abandons the gesture in progress, e.g. when history is
// restored mid-drag. Pointer moves are ignored until the next pointer-down.
// An open text session stays open and uncommitted.
func (c *Controller) CancelGesture() {
	if c.mode != Text {
		c.tools[c.mode].Deactivate(c)
	}
	c.gestureCheckpointed = false
}

// beginGesture starts a new undoable unit.
func (c *Controller) beginGesture() { c.gestureCheckpointed = false }

// checkpointOnce records a checkpoint the first time it is called in a gesture.
func (c *Controller) checkpointOnce() {
	if c.gestureCheckpointed {
		return
	}
	c.gestureCheckpointed = true
	c.Checkpoint()
}

// PointerDown forwards to the active tool.
func (c *Controller) PointerDown(p geom.Pt) error {
	return c.tools[c.mode].PointerDown(c, p.Image())
}

// PointerMove forwards to the active tool.
func (c *Controller) PointerMove(p geom.Pt, held Buttons) error {
	return c.tools[c.mode].PointerMove(c, p.Image(), held)
}

// PointerUp forwards to the active tool.
func (c *Controller) PointerUp(p geom.Pt) error {
	return c.tools[c.mode].PointerUp(c, p.Image())
}

// TypeRune forwards a typed character to the active tool if it takes text.
func (c *Controller) TypeRune(r rune) error {
	if kt, ok := c.tools[c.mode].(keyTool); ok {
		return kt.TypeRune(c, r)
	}
	return nil
}

// Backspace forwards a delete-last command.
func (c *Controller) Backspace() error {
	if kt, ok := c.tools[c.mode].(keyTool); ok {
		return kt.Backspace(c)
	}
	return nil
}

// Enter forwards a finalize command.
func (c *Controller) Enter() error {
	if kt, ok := c.tools[c.mode].(keyTool); ok {
		return kt.Enter(c)
	}
	return nil
}

// TextSession returns the open text entry session, if any.
func (c *Controller) TextSession() (*TextSession, bool) {
	tt := c.tools[Text].(*textTool)
	if tt.session == nil {
		return nil, false
	}
	return tt.session, true
}

// CropPreview returns the crop rectangle being dragged, if any.
func (c *Controller) CropPreview() (image.Rectangle, bool) {
	ct := c.tools[Crop].(*cropTool)
	if !ct.active || ct.preview.Empty() {
		return image.Rectangle{}, false
	}
	return ct.preview, true
}

// selectTool is the Idle behavior: clicking selects the topmost image under
// the pointer or clears the selection.
type selectTool struct{}

func (selectTool) Mode() Mode { return Idle }

func (selectTool) PointerDown(c *Controller, p image.Point) error {
	return c.doc.Select(c.doc.HitTest(p))
}

func (selectTool) PointerMove(*Controller, image.Point, Buttons) error { return nil }
func (selectTool) PointerUp(*Controller, image.Point) error            { return nil }
func (selectTool) Deactivate(*Controller)                              {}
