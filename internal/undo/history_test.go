/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"image"
	"image/color"
	"testing"

	"adlicanvas/internal/domain"
)

// mark paints a distinguishing pixel so states can be told apart.
func mark(d *domain.Document, x int) {
	d.Background.Set(x, 0, color.Black)
}

func capture(d *domain.Document) func() *domain.Snapshot {
	return func() *domain.Snapshot { return d.Capture(domain.ToolParams{}) }
}

func TestUndoTwiceRedoOnce(t *testing.T) {
	h := NewHistory(Config{})
	d := domain.NewDocument(10, 10, domain.White)

	s1 := d.Capture(domain.ToolParams{})
	h.Push(d.Capture(domain.ToolParams{}))
	mark(d, 1)
	s2 := d.Capture(domain.ToolParams{})
	h.Push(d.Capture(domain.ToolParams{}))
	mark(d, 2)

	for i := 0; i < 2; i++ {
		s, ok := h.Undo(capture(d))
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		d.Restore(s)
	}
	if !d.Capture(domain.ToolParams{}).Equal(s1) {
		t.Fatalf("after two undos document is not S1")
	}
	s, ok := h.Redo(capture(d))
	if !ok {
		t.Fatalf("redo failed")
	}
	d.Restore(s)
	if !d.Capture(domain.ToolParams{}).Equal(s2) {
		t.Fatalf("after redo document is not S2")
	}
}

func TestUndoRedoRestoresExactState(t *testing.T) {
	h := NewHistory(Config{})
	d := domain.NewDocument(10, 10, domain.White)
	d.AddImage(domain.NewImageObject(image.NewRGBA(image.Rect(0, 0, 3, 3)), image.Pt(1, 1)))
	h.Push(d.Capture(domain.ToolParams{}))
	d.Images[0].Translate(image.Pt(4, 4))
	mark(d, 5)
	before := d.Capture(domain.ToolParams{})

	s, _ := h.Undo(capture(d))
	d.Restore(s)
	s, _ = h.Redo(capture(d))
	d.Restore(s)
	if !d.Capture(domain.ToolParams{}).Equal(before) {
		t.Fatalf("undo+redo changed the document")
	}
}

func TestUnderflowIsNoop(t *testing.T) {
	h := NewHistory(Config{})
	called := false
	cur := func() *domain.Snapshot { called = true; return nil }
	if _, ok := h.Undo(cur); ok {
		t.Fatalf("undo on empty stack reported ok")
	}
	if _, ok := h.Redo(cur); ok {
		t.Fatalf("redo on empty stack reported ok")
	}
	if called {
		t.Fatalf("live state captured for a no-op")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory(Config{})
	d := domain.NewDocument(4, 4, domain.White)
	h.Push(d.Capture(domain.ToolParams{}))
	s, _ := h.Undo(capture(d))
	d.Restore(s)
	if !h.CanRedo() {
		t.Fatalf("expected redo entry")
	}
	h.Push(d.Capture(domain.ToolParams{}))
	if h.CanRedo() {
		t.Fatalf("push did not clear redo")
	}
}

func TestDepthCap(t *testing.T) {
	h := NewHistory(Config{MaxDepth: 2})
	d := domain.NewDocument(4, 4, domain.White)
	for i := 0; i < 10; i++ {
		h.Push(d.Capture(domain.ToolParams{}))
	}
	if _, depth, _ := h.Stats(); depth != 2 {
		t.Fatalf("expected depth 2, got %d", depth)
	}
}

func TestByteCapKeepsNewest(t *testing.T) {
	d := domain.NewDocument(10, 10, domain.White)
	one := d.Capture(domain.ToolParams{}).Bytes()
	h := NewHistory(Config{MaxBytes: one*2 + 1})
	for i := 0; i < 5; i++ {
		mark(d, i)
		h.Push(d.Capture(domain.ToolParams{}))
	}
	tb, depth, _ := h.Stats()
	if depth != 2 || tb > one*2+1 {
		t.Fatalf("unexpected stats bytes=%d depth=%d", tb, depth)
	}
	s, ok := h.Undo(capture(d))
	if !ok || s.Background.RGBAAt(4, 0).A != 0xff || s.Background.RGBAAt(4, 0).R != 0 {
		t.Fatalf("newest entry was pruned")
	}
	h.Clear()
	if tb, u, r := h.Stats(); tb != 0 || u != 0 || r != 0 {
		t.Fatalf("clear left state: %d %d %d", tb, u, r)
	}
}
