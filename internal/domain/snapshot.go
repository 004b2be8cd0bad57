/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"image"

	"adlicanvas/internal/raster"
)

// Snapshot is a deep copy of the document state and the visible tool values.
// Nothing in a snapshot shares backing storage with a live document.
type Snapshot struct {
	Images     []*ImageObject
	Selected   int
	Background *image.RGBA
	Overlay    *image.RGBA
	Texts      []TextObject
	Params     ToolParams
}

// Capture deep-copies the document together with params.
func (d *Document) Capture(params ToolParams) *Snapshot {
	imgs := make([]*ImageObject, len(d.Images))
	for i, img := range d.Images {
		imgs[i] = img.Clone()
	}
	return &Snapshot{
		Images:     imgs,
		Selected:   d.Selected,
		Background: raster.Clone(d.Background),
		Overlay:    raster.Clone(d.Overlay),
		Texts:      append([]TextObject(nil), d.Texts...),
		Params:     params,
	}
}

// Restore replaces the live state with s and returns the tool values it
// carried. The document takes ownership of s's buffers, so s must not be
// stored anywhere else afterwards.
func (d *Document) Restore(s *Snapshot) ToolParams {
	d.Images = s.Images
	d.Selected = s.Selected
	d.Background = s.Background
	d.Overlay = s.Overlay
	d.Texts = s.Texts
	if d.Selected >= len(d.Images) {
		d.Selected = NoSelection
	}
	return s.Params
}

// Bytes estimates the pixel memory held by the snapshot.
func (s *Snapshot) Bytes() int64 {
	n := raster.Bytes(s.Background) + raster.Bytes(s.Overlay)
	for _, img := range s.Images {
		n += raster.Bytes(img.Pixels) + raster.Bytes(img.Original)
	}
	return n
}

// Equal reports whether two snapshots hold identical state.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s.Selected != o.Selected || s.Params != o.Params {
		return false
	}
	if !raster.Equal(s.Background, o.Background) || !raster.Equal(s.Overlay, o.Overlay) {
		return false
	}
	if len(s.Images) != len(o.Images) || len(s.Texts) != len(o.Texts) {
		return false
	}
	for i := range s.Images {
		a, b := s.Images[i], o.Images[i]
		if a.Rect != b.Rect || !raster.Equal(a.Pixels, b.Pixels) || !raster.Equal(a.Original, b.Original) {
			return false
		}
	}
	for i := range s.Texts {
		if s.Texts[i] != o.Texts[i] {
			return false
		}
	}
	return true
}
