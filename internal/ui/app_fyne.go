//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"adlicanvas/internal/config"
	"adlicanvas/internal/crash"
	"adlicanvas/internal/editor"
	"adlicanvas/internal/filter"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/tools"
	"adlicanvas/internal/version"
)

// Run starts the Fyne desktop editor, optionally opening the project at projectDir.
func Run(projectDir string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	ed := editor.New(editor.OptionsFromConfig(cfg))
	defer crash.Recover(ed)

	fyneApp := app.NewWithID("adlicanvas")
	w := fyneApp.NewWindow("adlicanvas")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1400)
	winH := prefs.IntWithFallback("window.height", 950)
	w.Resize(fyne.NewSize(float32(max(winW, 800)), float32(max(winH, 600))))

	status := widget.NewLabel("Ready")
	cv := NewCanvasView(ed, w)
	ed.SetSurface(cv)
	ed.SetViewport(CanvasOrigin, float64(ed.Document().Width), float64(ed.Document().Height))

	report := func(err error) {
		if err == nil {
			status.SetText(ed.Describe())
			return
		}
		l.Warn("operation failed", slog.Any("err", err))
		status.SetText(err.Error())
	}
	cv.onError = report

	if strings.TrimSpace(projectDir) != "" {
		report(ed.Open(context.Background(), projectDir))
	}

	// Mode buttons
	modeBar := container.NewHBox()
	for _, m := range []tools.Mode{tools.Idle, tools.Transform, tools.Drawing, tools.Erasing, tools.Shape, tools.Text, tools.Crop} {
		modeBar.Add(widget.NewButton(m.String(), func() {
			ed.SetMode(m)
			w.Canvas().Focus(cv)
			report(nil)
		}))
	}

	// syncing suppresses widget callbacks while controls are refreshed from
	// the controller.
	syncing := false
	penSelect := widget.NewSelect(tools.ListPens(), func(name string) {
		if syncing {
			return
		}
		if p, ok := tools.GetPen(name); ok {
			report(ed.SetPen(p))
		}
	})
	penSelect.SetSelected(ed.Controller().Pen().Name)

	shapeSelect := widget.NewSelect(raster.ShapeNames(), func(name string) {
		k, err := raster.ParseShapeKind(name)
		if err == nil {
			ed.Controller().SetShapeKind(k)
		}
		report(err)
	})
	shapeSelect.SetSelected(ed.Controller().ShapeKind().String())

	// Filter sliders reapply on every change; one checkpoint covers a drag.
	filterSelect := widget.NewSelect(filter.Names(), nil)
	filterSelect.SetSelected("gamma")
	params := ed.Controller().Filter()
	applyFilter := func() { report(ed.ApplyFilter(filterSelect.Selected, params)) }
	gamma := widget.NewSlider(1, 30)
	gamma.SetValue(float64(params.Gamma))
	gamma.OnChanged = func(v float64) {
		if !syncing {
			params.Gamma = int(v)
			applyFilter()
		}
	}
	threshold := widget.NewSlider(0, 255)
	threshold.SetValue(float64(params.Threshold))
	threshold.OnChanged = func(v float64) {
		if !syncing {
			params.Threshold = int(v)
			applyFilter()
		}
	}
	sharp := widget.NewSlider(0, 20)
	sharp.SetValue(float64(params.Sharpness))
	sharp.OnChanged = func(v float64) {
		if !syncing {
			params.Sharpness = int(v)
			applyFilter()
		}
	}

	syncControls := func() {
		syncing = true
		defer func() { syncing = false }()
		params = ed.Controller().Filter()
		c := ControlsOf(ed.Controller())
		gamma.SetValue(c.Gamma)
		threshold.SetValue(c.Threshold)
		sharp.SetValue(c.Sharpness)
		if c.Pen == "" {
			penSelect.ClearSelected()
		} else {
			penSelect.SetSelected(c.Pen)
		}
	}

	gridCheck := widget.NewCheck("Grid", func(on bool) { ed.SetGrid(on) })
	gridCheck.SetChecked(ed.View().Grid)
	rulerCheck := widget.NewCheck("Ruler", func(on bool) { ed.SetRuler(on) })
	rulerCheck.SetChecked(ed.View().Ruler)

	props := container.NewVBox(
		widget.NewLabel("Pen"), penSelect,
		widget.NewLabel("Shape"), shapeSelect,
		widget.NewLabel("Filter"), filterSelect,
		widget.NewLabel("Gamma"), gamma,
		widget.NewLabel("Threshold"), threshold,
		widget.NewLabel("Sharpness"), sharp,
		widget.NewButton("Apply filter", applyFilter),
		widget.NewButton("Histogram", func() {
			h, err := ed.Histogram()
			if err != nil {
				report(err)
				return
			}
			var b strings.Builder
			for _, ch := range []filter.Channel{filter.Red, filter.Green, filter.Blue, filter.Luma} {
				mean, std := h.MeanStdDev(ch)
				fmt.Fprintf(&b, "%s: mean %.1f  stddev %.1f  peak %d\n", ch, mean, std, h.Peak(ch))
			}
			dialog.ShowInformation("Histogram", b.String(), w)
		}),
		gridCheck, rulerCheck,
	)

	// Menus
	openItem := fyne.NewMenuItem("Open Project…", func() {
		dialog.ShowFolderOpen(func(u fyne.ListableURI, err error) {
			if err != nil || u == nil {
				return
			}
			report(ed.Open(context.Background(), u.Path()))
		}, w)
	})
	saveItem := fyne.NewMenuItem("Save", func() {
		if ed.Project() == nil {
			dialog.ShowFolderOpen(func(u fyne.ListableURI, err error) {
				if err != nil || u == nil {
					return
				}
				report(ed.NewProject(context.Background(), u.Path()))
			}, w)
			return
		}
		report(ed.Save(context.Background()))
	})
	importItem := fyne.NewMenuItem("Import Image…", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			defer rc.Close()
			_, err = ed.ImportReader(rc, rc.URI().Path())
			report(err)
		}, w)
	})
	exportItem := fyne.NewMenuItem("Export…", func() {
		name := widget.NewEntry()
		name.SetText("canvas.png")
		dialog.ShowForm("Export", "Export", "Cancel", []*widget.FormItem{widget.NewFormItem("File (.png/.pdf)", name)}, func(ok bool) {
			if !ok {
				return
			}
			out, err := ed.Export(name.Text)
			if err == nil {
				status.SetText("Exported " + out)
				return
			}
			report(err)
		}, w)
	})
	undoItem := fyne.NewMenuItem("Undo", func() {
		if ed.Undo() {
			syncControls()
		}
		report(nil)
	})
	redoItem := fyne.NewMenuItem("Redo", func() {
		if ed.Redo() {
			syncControls()
		}
		report(nil)
	})
	deleteItem := fyne.NewMenuItem("Delete", func() { report(ed.DeleteSelected()) })
	flipH := fyne.NewMenuItem("Flip Horizontal", func() { report(ed.FlipHorizontal()) })
	flipV := fyne.NewMenuItem("Flip Vertical", func() { report(ed.FlipVertical()) })
	zoomIn := fyne.NewMenuItem("Zoom In", ed.ZoomIn)
	zoomOut := fyne.NewMenuItem("Zoom Out", ed.ZoomOut)
	zoomReset := fyne.NewMenuItem("Actual Size", ed.ResetZoom)
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", openItem, saveItem, fyne.NewMenuItemSeparator(), importItem, exportItem),
		fyne.NewMenu("Edit", undoItem, redoItem, fyne.NewMenuItemSeparator(), deleteItem, flipH, flipV),
		fyne.NewMenu("View", zoomIn, zoomOut, zoomReset),
	))

	shortcut := func(key fyne.KeyName, fn func()) {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { fn() })
	}
	shortcut(fyne.KeyZ, undoItem.Action)
	shortcut(fyne.KeyY, redoItem.Action)
	shortcut(fyne.KeyS, saveItem.Action)
	shortcut(fyne.KeyO, openItem.Action)

	// Hot reload of the config file; callbacks arrive off the UI goroutine.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if path, err := config.ConfigPath(); err == nil {
		if _, err := config.Watch(ctx, path, 300*time.Millisecond, func(c config.AppConfig) {
			fyne.Do(func() {
				ed.ApplyConfig(c)
				gridCheck.SetChecked(c.View.Grid)
				rulerCheck.SetChecked(c.View.Ruler)
			})
		}); err != nil {
			l.Warn("config watch disabled", slog.Any("err", err))
		}
	}

	content := container.NewBorder(modeBar, status, nil, container.NewVScroll(props), cv)
	w.SetContent(content)
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	report(nil)
	w.ShowAndRun()
	return nil
}

// CanvasView displays the editor through a raster and forwards input to it.
type CanvasView struct {
	widget.BaseWidget
	ed      *editor.Editor
	win     fyne.Window
	raster  *canvas.Raster
	scale   float32
	down    bool
	last    fyne.Position
	onError func(error)
}

// NewCanvasView creates the widget for ed inside win.
func NewCanvasView(ed *editor.Editor, win fyne.Window) *CanvasView {
	v := &CanvasView{ed: ed, win: win, scale: 1}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

func (v *CanvasView) draw(w, h int) image.Image {
	if sz := v.Size(); sz.Width > 0 {
		v.scale = float32(w) / sz.Width
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	v.ed.Render(dst)
	return dst
}

// CreateRenderer implements fyne.Widget.
func (v *CanvasView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize keeps room for the canvas and the chrome around it.
func (v *CanvasView) MinSize() fyne.Size { return fyne.NewSize(800, 600) }

// Invalidate implements editor.Surface.
func (v *CanvasView) Invalidate() { v.raster.Refresh() }

func (v *CanvasView) fail(err error) {
	if err != nil && v.onError != nil {
		v.onError(err)
	}
}

func (v *CanvasView) MouseDown(e *desktop.MouseEvent) {
	v.win.Canvas().Focus(v)
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	v.down = true
	v.last = e.Position
	v.fail(v.ed.PointerDown(ToPixels(e.Position.X, e.Position.Y, v.scale)))
}

func (v *CanvasView) MouseUp(e *desktop.MouseEvent) {
	if !v.down {
		return
	}
	v.down = false
	v.fail(v.ed.PointerUp(ToPixels(e.Position.X, e.Position.Y, v.scale)))
}

func (v *CanvasView) Dragged(e *fyne.DragEvent) {
	if !v.down {
		return
	}
	v.last = e.Position
	v.fail(v.ed.PointerMove(ToPixels(e.Position.X, e.Position.Y, v.scale), tools.Primary))
}

func (v *CanvasView) DragEnd() {
	if !v.down {
		return
	}
	v.down = false
	v.fail(v.ed.PointerUp(ToPixels(v.last.X, v.last.Y, v.scale)))
}

func (v *CanvasView) Scrolled(e *fyne.ScrollEvent) {
	switch ZoomStep(e.Scrolled.DY) {
	case 1:
		v.ed.ZoomIn()
	case -1:
		v.ed.ZoomOut()
	}
}

func (v *CanvasView) FocusGained() {}
func (v *CanvasView) FocusLost()   {}

func (v *CanvasView) TypedRune(r rune) {
	if v.ed.Mode() != tools.Text {
		if m, ok := ModeForKey(r); ok {
			v.ed.SetMode(m)
			return
		}
	}
	v.fail(v.ed.TypeRune(r))
}

func (v *CanvasView) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyBackspace:
		v.fail(v.ed.Backspace())
	case fyne.KeyReturn, fyne.KeyEnter:
		v.fail(v.ed.Enter())
	case fyne.KeyDelete:
		if v.ed.Mode() != tools.Text {
			v.fail(v.ed.DeleteSelected())
		}
	case fyne.KeyEscape:
		v.ed.SetMode(tools.Idle)
	case fyne.KeyLeft:
		v.ed.Pan(-20, 0)
	case fyne.KeyRight:
		v.ed.Pan(20, 0)
	case fyne.KeyUp:
		v.ed.Pan(0, -20)
	case fyne.KeyDown:
		v.ed.Pan(0, 20)
	}
}

var _ editor.Surface = (*CanvasView)(nil)
