/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"adlicanvas/internal/codec"
	"adlicanvas/internal/domain"
)

// FormatVersion is written into every manifest.
const FormatVersion = 1

//go:embed canvas.schema.json
var manifestSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(manifestSchema)

// Manifest is the JSON form of a document. Pixel data lives in PNG
// resources referenced by path relative to the project root.
type Manifest struct {
	FormatVersion int          `json:"format_version"`
	App           string       `json:"app,omitempty"`
	SavedAt       string       `json:"saved_at,omitempty"`
	Canvas        CanvasEntry  `json:"canvas"`
	Background    string       `json:"background"`
	Images        []ImageEntry `json:"images"`
	Texts         []TextEntry  `json:"texts"`
	Selected      int          `json:"selected"`
}

type CanvasEntry struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Paper  domain.Color `json:"paper"`
}

type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func rectOf(r image.Rectangle) Rect { return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()} }

func (r Rect) Image() image.Rectangle { return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H) }

type ImageEntry struct {
	Pixels   string `json:"pixels"`
	Original string `json:"original"`
	Rect     Rect   `json:"rect"`
}

type TextEntry struct {
	X       int          `json:"x"`
	Y       int          `json:"y"`
	Text    string       `json:"text"`
	Font    domain.Font  `json:"font"`
	Color   domain.Color `json:"color"`
	Opacity float64      `json:"opacity"`
	Extent  *Rect        `json:"extent,omitempty"`
}

func textEntryOf(t domain.TextObject) TextEntry {
	e := TextEntry{X: t.Pos.X, Y: t.Pos.Y, Text: t.Text, Font: t.Font, Color: t.Color, Opacity: t.Opacity}
	if !t.Extent.Empty() {
		r := rectOf(t.Extent)
		e.Extent = &r
	}
	return e
}

func (e TextEntry) object() domain.TextObject {
	t := domain.TextObject{Pos: image.Pt(e.X, e.Y), Text: e.Text, Font: e.Font, Color: e.Color, Opacity: e.Opacity}
	if e.Extent != nil {
		t.Extent = e.Extent.Image()
	}
	return t
}

// ValidateManifest checks raw manifest bytes against the embedded JSON schema.
func ValidateManifest(data []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	var sb strings.Builder
	for i, e := range res.Errors() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.String())
	}
	return fmt.Errorf("manifest does not conform to schema: %s", sb.String())
}

// resourceSet tracks which resource files a manifest references.
type resourceSet map[string]bool

func (m *Manifest) resources() resourceSet {
	set := resourceSet{m.Background: true}
	for _, e := range m.Images {
		set[e.Pixels] = true
		set[e.Original] = true
	}
	return set
}

// check verifies cross-field constraints the schema cannot express.
func (m *Manifest) check() error {
	if m.FormatVersion > FormatVersion {
		return fmt.Errorf("format version %d is newer than supported %d", m.FormatVersion, FormatVersion)
	}
	if m.Selected < -1 || m.Selected >= len(m.Images) {
		return fmt.Errorf("selected index %d out of range for %d images", m.Selected, len(m.Images))
	}
	return nil
}

var errSizeMismatch = errors.New("resource size does not match manifest")

// decodeResource loads a PNG resource and checks it has the expected size.
func decodeResource(data []byte, want image.Point) (*image.RGBA, error) {
	img, err := codec.DecodePNG(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Size() != want {
		return nil, fmt.Errorf("%w: got %v, want %v", errSizeMismatch, img.Bounds().Size(), want)
	}
	return img, nil
}
