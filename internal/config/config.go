/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"adlicanvas/internal/domain"
	applog "adlicanvas/internal/log"
)

// AppConfig is the user-editable configuration persisted as YAML in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Pen           PenConfig     `yaml:"pen"`
	History       HistoryConfig `yaml:"history"`
	View          ViewConfig    `yaml:"view"`
	Logging       LoggingConfig `yaml:"logging"`
}

type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"` // #rrggbb
}

type PenConfig struct {
	Preset  string  `yaml:"preset"`
	Color   string  `yaml:"color,omitempty"` // overrides the preset color when set
	Width   int     `yaml:"width,omitempty"`
	Opacity float64 `yaml:"opacity,omitempty"`
	Style   string  `yaml:"style,omitempty"` // solid, dash or dot
}

type HistoryConfig struct {
	MaxDepth int   `yaml:"max_depth"`
	MaxBytes int64 `yaml:"max_bytes"`
}

type ViewConfig struct {
	Grid        bool `yaml:"grid"`
	Ruler       bool `yaml:"ruler"`
	GridSpacing int  `yaml:"grid_spacing"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// CurrentVersion is the config_version written by Save.
const CurrentVersion = 1

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Canvas:        CanvasConfig{Width: 1000, Height: 800, Background: "#ffffff"},
		Pen:           PenConfig{Preset: "Pencil"},
		History:       HistoryConfig{MaxDepth: 100, MaxBytes: 256 << 20},
		View:          ViewConfig{GridSpacing: 20},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "ADLI_CONFIG"
	EnvCanvasWidth  = "ADLI_CANVAS_WIDTH"
	EnvCanvasHeight = "ADLI_CANVAS_HEIGHT"
	EnvPenPreset    = "ADLI_PEN_PRESET"
	EnvHistoryDepth = "ADLI_HISTORY_DEPTH"
	EnvShowGrid     = "ADLI_SHOW_GRID"
	EnvLogLevel     = "ADLI_LOG_LEVEL"
	EnvLogFormat    = "ADLI_LOG_FORMAT"
	EnvLogSource    = "ADLI_LOG_SOURCE"
	EnvLogFile      = "ADLI_LOG_FILE"
)

// ConfigPath returns the per-user config file path. ADLI_CONFIG wins.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "AdliCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "AdliCanvas")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "adlicanvas")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "adlicanvas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file at ConfigPath.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile reads the YAML file at path (a missing file yields the defaults),
// merges it over the defaults and applies environment overrides. A file that
// does not parse is reported, and the defaults are returned with it.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML, replacing the file atomically.
func SaveFile(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.ConfigVersion = CurrentVersion
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Validate checks value ranges.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	if _, err := ParseColor(c.Canvas.Background); err != nil {
		errs = append(errs, fmt.Errorf("canvas.background: %w", err))
	}
	if c.Pen.Color != "" {
		if _, err := ParseColor(c.Pen.Color); err != nil {
			errs = append(errs, fmt.Errorf("pen.color: %w", err))
		}
	}
	if c.Pen.Width < 0 || c.Pen.Width > 200 {
		errs = append(errs, fmt.Errorf("pen.width out of range: %d", c.Pen.Width))
	}
	if c.Pen.Opacity < 0 || c.Pen.Opacity > 1 {
		errs = append(errs, fmt.Errorf("pen.opacity out of range: %g", c.Pen.Opacity))
	}
	switch c.Pen.Style {
	case "", "solid", "dash", "dashed", "dot", "dotted":
	default:
		errs = append(errs, fmt.Errorf("pen.style unknown: %q", c.Pen.Style))
	}
	if c.History.MaxDepth < 0 || c.History.MaxBytes < 0 {
		errs = append(errs, errors.New("history caps must not be negative"))
	}
	if c.View.GridSpacing < 2 {
		errs = append(errs, fmt.Errorf("view.grid_spacing too small: %d", c.View.GridSpacing))
	}
	return errors.Join(errs...)
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (domain.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return domain.Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return domain.Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return domain.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor is the inverse of ParseColor; opaque colors use the short form.
func FormatColor(c domain.Color) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if strings.TrimSpace(src.Canvas.Background) != "" {
		dst.Canvas.Background = strings.TrimSpace(src.Canvas.Background)
	}
	if strings.TrimSpace(src.Pen.Preset) != "" {
		dst.Pen.Preset = strings.TrimSpace(src.Pen.Preset)
	}
	dst.Pen.Color = strings.TrimSpace(src.Pen.Color)
	dst.Pen.Width = src.Pen.Width
	dst.Pen.Opacity = src.Pen.Opacity
	dst.Pen.Style = strings.TrimSpace(src.Pen.Style)
	if src.History.MaxDepth != 0 {
		dst.History.MaxDepth = src.History.MaxDepth
	}
	if src.History.MaxBytes != 0 {
		dst.History.MaxBytes = src.History.MaxBytes
	}
	// booleans: copy directly so user preferences persist
	dst.View.Grid = src.View.Grid
	dst.View.Ruler = src.View.Ruler
	if src.View.GridSpacing != 0 {
		dst.View.GridSpacing = src.View.GridSpacing
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPenPreset)); v != "" {
		cfg.Pen.Preset = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvShowGrid)); v != "" {
		cfg.View.Grid = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"canvas.width":      EnvCanvasWidth,
		"canvas.height":     EnvCanvasHeight,
		"pen.preset":        EnvPenPreset,
		"history.max_depth": EnvHistoryDepth,
		"view.grid":         EnvShowGrid,
		"logging.level":     EnvLogLevel,
		"logging.format":    EnvLogFormat,
		"logging.source":    EnvLogSource,
		"logging.file":      EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
