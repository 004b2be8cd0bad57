/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"image"
	"log/slog"

	"adlicanvas/internal/domain"
	"adlicanvas/internal/textlayout"
)

// TextSession is an open text entry. Pos is the baseline origin.
type TextSession struct {
	Pos     image.Point
	Font    domain.Font
	Color   domain.Color
	Opacity float64
	runes   []rune
	// Box is the dashed preview rectangle.
	Box image.Rectangle
}

// Text returns the buffer contents.
func (s *TextSession) Text() string { return string(s.runes) }

// textTool edits at most one session at a time. A click opens a session,
// finalizing any previous one first.
type textTool struct {
	session *TextSession
}

func (t *textTool) Mode() Mode { return Text }

func (t *textTool) PointerDown(c *Controller, p image.Point) error {
	if err := t.finalize(c); err != nil {
		return err
	}
	t.session = &TextSession{
		Pos:     p,
		Font:    c.font,
		Color:   c.pen.Color,
		Opacity: c.pen.Opacity,
	}
	return t.relayout(c)
}

func (t *textTool) PointerMove(*Controller, image.Point, Buttons) error { return nil }
func (t *textTool) PointerUp(*Controller, image.Point) error            { return nil }

func (t *textTool) TypeRune(c *Controller, r rune) error {
	if t.session == nil {
		return nil
	}
	switch r {
	case '\r', '\n':
		return t.finalize(c)
	case '\b':
		return t.Backspace(c)
	}
	t.session.runes = append(t.session.runes, r)
	return t.relayout(c)
}

func (t *textTool) Backspace(c *Controller) error {
	if t.session == nil || len(t.session.runes) == 0 {
		return nil
	}
	t.session.runes = t.session.runes[:len(t.session.runes)-1]
	return t.relayout(c)
}

func (t *textTool) Enter(c *Controller) error { return t.finalize(c) }

func (t *textTool) Deactivate(c *Controller) {
	if err := t.finalize(c); err != nil {
		c.log.Warn("finalize text on deactivate failed", slog.Any("err", err))
	}
}

func (t *textTool) relayout(c *Controller) error {
	face, err := c.fonts.Face(t.session.Font)
	if err != nil {
		return err
	}
	t.session.Box = textlayout.Box(face, t.session.Pos, t.session.Text())
	return nil
}

// finalize commits the open session as a TextObject. Empty sessions are
// dropped without a checkpoint.
func (t *textTool) finalize(c *Controller) error {
	s := t.session
	if s == nil {
		return nil
	}
	t.session = nil
	if len(s.runes) == 0 {
		return nil
	}
	obj := domain.TextObject{
		Pos:     s.Pos,
		Text:    s.Text(),
		Font:    s.Font,
		Color:   s.Color,
		Opacity: s.Opacity,
	}
	if face, err := c.fonts.Face(s.Font); err == nil {
		obj.Extent = textlayout.Extent(face, s.Pos, obj.Text)
	}
	c.Checkpoint()
	c.doc.AddText(obj)
	return nil
}
