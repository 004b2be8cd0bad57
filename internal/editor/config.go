/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"adlicanvas/internal/config"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/render"
	"adlicanvas/internal/tools"
	"adlicanvas/internal/undo"
)

// OptionsFromConfig builds editor options from the application config.
// Invalid pen or color entries fall back to defaults with a warning.
func OptionsFromConfig(cfg config.AppConfig) Options {
	opts := Options{
		Width:   cfg.Canvas.Width,
		Height:  cfg.Canvas.Height,
		History: undo.Config{MaxDepth: cfg.History.MaxDepth, MaxBytes: cfg.History.MaxBytes},
		View:    viewOf(cfg),
		Pen:     penOf(cfg),
	}
	if bg, err := config.ParseColor(cfg.Canvas.Background); err == nil {
		opts.Background = bg
	}
	return opts
}

func viewOf(cfg config.AppConfig) View {
	return View{Grid: cfg.View.Grid, Ruler: cfg.View.Ruler, GridSpacing: cfg.View.GridSpacing}
}

func penOf(cfg config.AppConfig) tools.PenSettings {
	pen, ok := tools.GetPen(cfg.Pen.Preset)
	if !ok {
		pen = tools.DefaultPen()
	}
	if cfg.Pen.Color != "" {
		if c, err := config.ParseColor(cfg.Pen.Color); err == nil {
			pen.Color = c
		}
	}
	if cfg.Pen.Width > 0 {
		pen.Width = cfg.Pen.Width
	}
	if cfg.Pen.Opacity > 0 {
		pen.Opacity = cfg.Pen.Opacity
	}
	if cfg.Pen.Style != "" {
		pen.Style = raster.ParseLineStyle(cfg.Pen.Style)
	}
	return pen
}

// ApplyConfig takes over the view and pen settings of a reloaded config.
// Canvas size and history caps only apply to new editors.
func (e *Editor) ApplyConfig(cfg config.AppConfig) {
	e.view = viewOf(cfg)
	if e.view.GridSpacing <= 0 {
		e.view.GridSpacing = render.DefaultGridSpacing
	}
	if err := e.ctl.SetPen(penOf(cfg)); err != nil {
		e.log.Warn("reloaded pen rejected", slog.Any("err", err))
	}
	e.log.Info("config applied", slog.Bool("grid", e.view.Grid), slog.Bool("ruler", e.view.Ruler), slog.String("pen", e.ctl.Pen().Name))
	e.invalidate()
}
