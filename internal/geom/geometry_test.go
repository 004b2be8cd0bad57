/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"image"
	"math"
	"testing"
)

func TestMapIdentityAndClamp(t *testing.T) {
	m := NewMapper(800, 600)
	if got := m.Map(P(10, 20)); got != P(10, 20) {
		t.Fatalf("identity map: got %+v", got)
	}
	if got := m.Map(P(-5, 900)); got != P(0, 600) {
		t.Fatalf("clamp: got %+v", got)
	}
}

func TestMapHonorsOriginAndScale(t *testing.T) {
	m := Mapper{Origin: P(100, 50), DisplayW: 400, DisplayH: 300, BufferW: 800, BufferH: 600}
	got := m.Map(P(300, 200))
	if got.X != 400 || got.Y != 300 {
		t.Fatalf("expected (400,300), got %+v", got)
	}
}

func TestMapRoundTrip(t *testing.T) {
	m := Mapper{Origin: P(13, -7), DisplayW: 880, DisplayH: 660, BufferW: 800, BufferH: 600}
	for _, c := range []Pt{{0, 0}, {10, 50}, {399.5, 123.25}, {800, 600}} {
		back := m.Map(m.Unmap(c))
		if math.Abs(back.X-c.X) > 1 || math.Abs(back.Y-c.Y) > 1 {
			t.Fatalf("round trip %+v -> %+v", c, back)
		}
	}
}

func TestZoomAndReset(t *testing.T) {
	m := NewMapper(100, 100)
	m.Zoom(1.1)
	sx, sy := m.Scale()
	if math.Abs(sx-1.1) > 1e-9 || math.Abs(sy-1.1) > 1e-9 {
		t.Fatalf("unexpected scale %v %v", sx, sy)
	}
	m.Zoom(0)
	m.ResetZoom()
	if sx, _ := m.Scale(); sx != 1 {
		t.Fatalf("reset failed: %v", sx)
	}
	m.Pan(5, 5)
	if got := m.Map(P(5, 5)); got != P(0, 0) {
		t.Fatalf("pan: %+v", got)
	}
}

func TestHitCorner(t *testing.T) {
	r := image.Rect(100, 100, 500, 400)
	cases := []struct {
		p    image.Point
		want Corner
	}{
		{image.Pt(100, 100), TopLeft},
		{image.Pt(96, 104), TopLeft},
		{image.Pt(503, 99), TopRight},
		{image.Pt(101, 402), BottomLeft},
		{image.Pt(500, 400), BottomRight},
		{image.Pt(506, 400), NoCorner},
		{image.Pt(300, 250), NoCorner},
	}
	for _, tc := range cases {
		if got := HitCorner(r, tc.p); got != tc.want {
			t.Errorf("HitCorner(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if TopLeft.Opposite() != BottomRight || BottomLeft.Opposite() != TopRight {
		t.Fatalf("opposite corners wrong")
	}
}

func TestNormalize(t *testing.T) {
	r := Normalize(image.Pt(50, 40), image.Pt(10, 20))
	if r != image.Rect(10, 20, 50, 40) {
		t.Fatalf("got %v", r)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(P(1, 1))
	if p.X != 12 || p.Y != 8 {
		t.Fatalf("unexpected transform result: %+v", p)
	}
}
