/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"adlicanvas/internal/domain"
)

// DefaultFamily is always available; unknown families resolve to it.
const DefaultFamily = "Go"

// FontLibrary stores parsed OpenType fonts by family/bold/italic and caches
// sized faces. Font enumeration is left to the host; callers register the
// fonts they want with LoadTTF.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[fontKey]*opentype.Font
	faces map[faceKey]font.Face
	// DPI used for faces, 72 if zero so that Size is in pixels.
	DPI float64
}

type fontKey struct {
	family       string
	bold, italic bool
}

type faceKey struct {
	fontKey
	size float64
}

// NewFontLibrary returns a library preloaded with the Go font family.
func NewFontLibrary() *FontLibrary {
	fl := &FontLibrary{fonts: make(map[fontKey]*opentype.Font), faces: make(map[faceKey]font.Face)}
	builtin := []struct {
		bold, italic bool
		data         []byte
	}{
		{false, false, goregular.TTF},
		{true, false, gobold.TTF},
		{false, true, goitalic.TTF},
		{true, true, gobolditalic.TTF},
	}
	for _, b := range builtin {
		f, err := opentype.Parse(b.data)
		if err != nil {
			// the embedded fonts are known good
			panic(fmt.Sprintf("parse builtin font: %v", err))
		}
		fl.fonts[fontKey{family: normFamily(DefaultFamily), bold: b.bold, italic: b.italic}] = f
	}
	return fl
}

// LoadTTF loads a font file into the library under the given family/bold/italic.
func (fl *FontLibrary) LoadTTF(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[fontKey{family: normFamily(family), bold: bold, italic: italic}] = f
	return nil
}

// Families lists registered family names.
func (fl *FontLibrary) Families() []string {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	return out
}

func normFamily(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (fl *FontLibrary) findLocked(f domain.Font) (*opentype.Font, fontKey) {
	fam := normFamily(f.Family)
	if fam == "" {
		fam = normFamily(DefaultFamily)
	}
	try := []fontKey{
		{fam, f.Bold, f.Italic},
		{fam, false, false},
		{normFamily(DefaultFamily), f.Bold, f.Italic},
	}
	for _, k := range try {
		if ot, ok := fl.fonts[k]; ok {
			return ot, k
		}
	}
	return nil, fontKey{}
}

// Face resolves f to a sized face.
func (fl *FontLibrary) Face(f domain.Font) (font.Face, error) {
	size := f.Size
	if size <= 0 {
		size = domain.DefaultFont.Size
	}
	dpi := fl.DPI
	if dpi <= 0 {
		dpi = 72
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	ot, key := fl.findLocked(f)
	if ot == nil {
		return nil, fmt.Errorf("no font for family %q", f.Family)
	}
	fk := faceKey{fontKey: key, size: size}
	if face, ok := fl.faces[fk]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(ot, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("face %s %.1f: %w", key.family, size, err)
	}
	fl.faces[fk] = face
	return face, nil
}
