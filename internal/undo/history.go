/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps the undo and redo stacks of the canvas editor.
//
// Entries are full document snapshots. The live document never shares
// storage with an entry: pushed snapshots are fresh captures, and a snapshot
// popped by Undo or Redo leaves both stacks before it is handed back, so the
// caller may adopt its buffers.
package undo

import (
	"sync"

	"adlicanvas/internal/domain"
)

// Config controls memory and depth caps.
type Config struct {
	// MaxBytes is a soft cap on snapshot pixel memory; the oldest undo entries
	// are pruned when it is exceeded. Zero means 256 MiB.
	MaxBytes int64
	// MaxDepth limits the number of undo entries (0 means unlimited).
	MaxDepth int
}

// History holds the undo and redo stacks. It is safe for concurrent use,
// although the editor drives it from a single goroutine.
type History struct {
	cfg  Config
	mu   sync.Mutex
	undo []*domain.Snapshot
	redo []*domain.Snapshot
	// accounting
	totalBytes int64
}

func NewHistory(cfg Config) *History {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 256 << 20
	}
	return &History{cfg: cfg}
}

// Push records a checkpoint and invalidates the redo stack.
func (h *History) Push(s *domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, s)
	h.totalBytes += s.Bytes()
	for _, r := range h.redo {
		h.totalBytes -= r.Bytes()
	}
	h.redo = nil
	h.enforceCapsLocked()
}

// Undo moves one step back. current is called to capture the live state,
// which is pushed onto the redo stack; the popped checkpoint is returned for
// the caller to restore. With an empty undo stack nothing happens and ok is
// false.
func (h *History) Undo(current func() *domain.Snapshot) (*domain.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return nil, false
	}
	cur := current()
	s := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = nil
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cur)
	h.totalBytes += cur.Bytes() - s.Bytes()
	return s, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current func() *domain.Snapshot) (*domain.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return nil, false
	}
	cur := current()
	s := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = nil
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cur)
	h.totalBytes += cur.Bytes() - s.Bytes()
	h.enforceCapsLocked()
	return s, true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Clear drops both stacks, e.g. after a project is opened.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo = nil, nil
	h.totalBytes = 0
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (totalBytes int64, undoDepth int, redoDepth int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totalBytes, len(h.undo), len(h.redo)
}

func (h *History) enforceCapsLocked() {
	drop := 0
	if h.cfg.MaxDepth > 0 && len(h.undo) > h.cfg.MaxDepth {
		drop = len(h.undo) - h.cfg.MaxDepth
	}
	for i := 0; i < drop; i++ {
		h.totalBytes -= h.undo[i].Bytes()
	}
	// keep at least the newest entry so one step back always exists
	for drop < len(h.undo)-1 && h.totalBytes > h.cfg.MaxBytes {
		h.totalBytes -= h.undo[drop].Bytes()
		drop++
	}
	if drop > 0 {
		h.undo = append([]*domain.Snapshot(nil), h.undo[drop:]...)
	}
}
