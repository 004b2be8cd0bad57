/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"adlicanvas/internal/domain"
)

func TestLoadFileMissingGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Canvas.Width != 1000 || cfg.Canvas.Height != 800 || cfg.View.GridSpacing != 20 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Defaults()
	cfg.Canvas.Width = 640
	cfg.Pen.Preset = "Marker"
	cfg.Pen.Style = "dash"
	cfg.View.Grid = true
	cfg.Logging.Level = "debug"
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile() error: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got.Canvas.Width != 640 || got.Pen.Preset != "Marker" || got.Pen.Style != "dash" || !got.View.Grid || got.Logging.Level != "debug" {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestLoadFileParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("canvas: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
	if cfg.Canvas.Width != 1000 {
		t.Fatalf("defaults expected alongside the error, got %#v", cfg.Canvas)
	}
}

func TestConfigPathEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/adli/custom.yaml")
	p, err := ConfigPath()
	if err != nil || p != "/tmp/adli/custom.yaml" {
		t.Fatalf("ConfigPath() = %q, %v", p, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCanvasWidth, "320")
	t.Setenv(EnvShowGrid, "yes")
	t.Setenv(EnvLogFormat, "JSON")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Canvas.Width != 320 || !cfg.View.Grid || cfg.Logging.Format != "json" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if env, ok := EnvOverrideFor("canvas.width"); !ok || env != EnvCanvasWidth {
		t.Fatalf("EnvOverrideFor(canvas.width) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("canvas.height"); ok {
		t.Fatalf("canvas.height is not overridden")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging = LoggingConfig{Level: " DEBUG ", Format: "json", Source: true, File: "/tmp/adli.log"}
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/adli.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	o := dst.LogOptions()
	if o.Level != "debug" || !o.AddSource || o.File != "/tmp/adli.log" {
		t.Fatalf("LogOptions mismatch: %#v", o)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg.Canvas.Width = 0
	cfg.Pen.Opacity = 2
	cfg.Canvas.Background = "white"
	cfg.Pen.Style = "wavy"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"canvas size", "pen.opacity", "canvas.background", "pen.style"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	if err != nil || c != (domain.Color{R: 255, G: 128, A: 255}) {
		t.Fatalf("ParseColor = %+v, %v", c, err)
	}
	c, err = ParseColor("10203040")
	if err != nil || c != (domain.Color{R: 0x10, G: 0x20, B: 0x30, A: 0x40}) {
		t.Fatalf("ParseColor rgba = %+v, %v", c, err)
	}
	if FormatColor(c) != "#10203040" || FormatColor(domain.White) != "#ffffff" {
		t.Fatalf("FormatColor mismatch")
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatalf("short color should fail")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := SaveFile(path, Defaults()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan AppConfig, 4)
	w, err := Watch(ctx, path, 20*time.Millisecond, func(c AppConfig) { got <- c })
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	cfg := Defaults()
	cfg.Canvas.Width = 777
	if err := SaveFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-got:
		if c.Canvas.Width != 777 {
			t.Fatalf("reloaded width = %d", c.Canvas.Width)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reload observed")
	}

	cancel()
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}
