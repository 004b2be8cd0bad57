/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"adlicanvas/internal/config"
	"adlicanvas/internal/crash"
	"adlicanvas/internal/editor"
	"adlicanvas/internal/export"
	"adlicanvas/internal/geom"
	applog "adlicanvas/internal/log"
	"adlicanvas/internal/raster"
	"adlicanvas/internal/storage"
	"adlicanvas/internal/tools"
	"adlicanvas/internal/ui"
	"adlicanvas/internal/version"
)

func usage() {
	fmt.Println("adlicanvas raster canvas editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  adlicanvas version|-v|--version            Show version")
	fmt.Println("  adlicanvas new <dir> [<width> <height>]    Create a project with an empty canvas")
	fmt.Println("  adlicanvas info <dir>                      Open project at <dir> and print a summary")
	fmt.Println("  adlicanvas import <dir> <image>...         Import images into the project canvas and save")
	fmt.Println("  adlicanvas draw-demo <dir>                 Draw a stroke, a shape and a text into the canvas and save")
	fmt.Println("  adlicanvas export <dir> <out.png|out.pdf>  Export the flattened canvas")
	fmt.Println("  adlicanvas bundle <dir> <out.zip>          Pack manifest and resources into one zip")
	fmt.Println("  adlicanvas unbundle <zip> <dir>            Unpack a bundle into a new project directory")
	fmt.Println("  adlicanvas search <dir> <query>            Search committed texts")
	fmt.Println("  adlicanvas config [path|init]              Show the config path or write the defaults")
	fmt.Println("  adlicanvas ui [<dir>]                      Launch desktop UI (build with -tags fyne for full UI)")
}

// session lets the crash handler reach whichever editor is live.
type session struct{ ed *editor.Editor }

func (s *session) ReportDir() string {
	if s.ed == nil {
		return ""
	}
	return s.ed.ReportDir()
}

func (s *session) Autosave() (string, error) {
	if s.ed == nil {
		return "", errors.New("no canvas open")
	}
	return s.ed.Autosave()
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	defer applog.Close()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	sess := &session{}
	defer crash.Recover(sess)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	ctx := context.Background()
	var err error
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return
	case "new":
		err = cmdNew(ctx, cfg, sess, args[2:])
	case "info":
		err = cmdInfo(ctx, cfg, sess, args[2:])
	case "import":
		err = cmdImport(ctx, cfg, sess, args[2:])
	case "draw-demo":
		err = cmdDrawDemo(ctx, cfg, sess, args[2:])
	case "export":
		err = cmdExport(ctx, cfg, sess, args[2:])
	case "bundle":
		err = cmdBundle(args[2:])
	case "unbundle":
		err = cmdUnbundle(ctx, args[2:])
	case "search":
		err = cmdSearch(ctx, args[2:])
	case "config":
		err = cmdConfig(cfg, args[2:])
	case "ui":
		dir := ""
		if len(args) >= 3 {
			dir = args[2]
		}
		err = ui.Run(dir, cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error(args[1]+" failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("missing arguments, see usage")

func absDir(args []string) (string, error) {
	if len(args) < 1 {
		usage()
		return "", errUsage
	}
	return filepath.Abs(args[0])
}

// openEditor loads the project at dir into a new editor configured from cfg.
func openEditor(ctx context.Context, cfg config.AppConfig, sess *session, dir string) (*editor.Editor, error) {
	ed := editor.New(editor.OptionsFromConfig(cfg))
	if err := ed.Open(ctx, dir); err != nil {
		return nil, err
	}
	sess.ed = ed
	return ed, nil
}

func cmdNew(ctx context.Context, cfg config.AppConfig, sess *session, args []string) error {
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	if len(args) >= 3 {
		w, werr := strconv.Atoi(args[1])
		h, herr := strconv.Atoi(args[2])
		if werr != nil || herr != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("invalid canvas size %q x %q", args[1], args[2])
		}
		cfg.Canvas.Width, cfg.Canvas.Height = w, h
	}
	ed := editor.New(editor.OptionsFromConfig(cfg))
	sess.ed = ed
	if err := ed.NewProject(ctx, dir); err != nil {
		return err
	}
	fmt.Println("Created project at", dir)
	fmt.Println(ed.Describe())
	return nil
}

func cmdInfo(ctx context.Context, cfg config.AppConfig, sess *session, args []string) error {
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	ed, err := openEditor(ctx, cfg, sess, dir)
	if err != nil {
		return err
	}
	fmt.Println("Root:", dir)
	fmt.Println(ed.Describe())
	assets, err := storage.ListAssets(ctx, dir)
	if err != nil {
		return err
	}
	for _, a := range assets {
		fmt.Printf("  %-8s %4dx%-4d %8d  %s\n", a.Role, a.W, a.H, a.Bytes, a.Path)
	}
	if thumb, err := ed.Thumbnail(ctx); err != nil {
		applog.WithComponent("cli").Warn("thumbnail unavailable", slog.Any("err", err))
	} else {
		fmt.Printf("Thumbnail: %d bytes PNG\n", len(thumb))
	}
	if n, err := storage.TotalPreviewBytes(ctx, dir); err == nil {
		fmt.Printf("Preview cache: %d bytes\n", n)
	}
	return nil
}

func cmdImport(ctx context.Context, cfg config.AppConfig, sess *session, args []string) error {
	if len(args) < 2 {
		usage()
		return errUsage
	}
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	ed, err := openEditor(ctx, cfg, sess, dir)
	if err != nil {
		return err
	}
	for _, path := range args[1:] {
		idx, err := ed.Import(path)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s as image %d at %v\n", path, idx, ed.Document().Images[idx].Rect)
	}
	return ed.Save(ctx)
}

// cmdDrawDemo drives the tools the way a pointer would, which makes it a
// quick end-to-end check of the headless pipeline.
func cmdDrawDemo(ctx context.Context, cfg config.AppConfig, sess *session, args []string) error {
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	ed, err := openEditor(ctx, cfg, sess, dir)
	if err != nil {
		return err
	}
	doc := ed.Document()
	w, h := float64(doc.Width), float64(doc.Height)

	gesture := func(pts ...geom.Pt) error {
		if err := ed.PointerDown(pts[0]); err != nil {
			return err
		}
		for _, p := range pts[1:] {
			if err := ed.PointerMove(p, tools.Primary); err != nil {
				return err
			}
		}
		return ed.PointerUp(pts[len(pts)-1])
	}
	toWidget := func(x, y float64) geom.Pt { return ed.Mapper().Unmap(geom.P(x, y)) }

	brush, _ := tools.GetPen("Brush")
	if err := ed.SetPen(brush); err != nil {
		return err
	}
	ed.SetMode(tools.Drawing)
	if err := gesture(toWidget(w*0.1, h*0.8), toWidget(w*0.3, h*0.6), toWidget(w*0.5, h*0.8)); err != nil {
		return err
	}

	marker, _ := tools.GetPen("Marker")
	if err := ed.SetPen(marker); err != nil {
		return err
	}
	ed.Controller().SetShapeKind(raster.Ellipse)
	ed.SetMode(tools.Shape)
	if err := gesture(toWidget(w*0.55, h*0.1), toWidget(w*0.9, h*0.4)); err != nil {
		return err
	}

	ed.SetMode(tools.Text)
	if err := ed.PointerDown(toWidget(w*0.1, h*0.2)); err != nil {
		return err
	}
	for _, r := range "adlicanvas " + version.Version {
		if err := ed.TypeRune(r); err != nil {
			return err
		}
	}
	if err := ed.Enter(); err != nil {
		return err
	}
	ed.SetMode(tools.Idle)
	fmt.Println(ed.Describe())
	return ed.Save(ctx)
}

func cmdExport(ctx context.Context, cfg config.AppConfig, sess *session, args []string) error {
	if len(args) < 2 {
		usage()
		return errUsage
	}
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	ed, err := openEditor(ctx, cfg, sess, dir)
	if err != nil {
		return err
	}
	out, err := ed.Export(args[1])
	if err != nil {
		return err
	}
	fmt.Println("Exported", out)
	return nil
}

func cmdBundle(args []string) error {
	if len(args) < 2 {
		usage()
		return errUsage
	}
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	n, err := export.ExportBundle(dir, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Bundled %d file(s) into %s\n", n, args[1])
	return nil
}

func cmdUnbundle(ctx context.Context, args []string) error {
	if len(args) < 2 {
		usage()
		return errUsage
	}
	dir, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}
	n, err := export.ImportBundle(args[0], dir)
	if err != nil {
		return err
	}
	_, _, m, err := storage.Open(dir)
	if err != nil {
		return err
	}
	if err := storage.RebuildIndex(ctx, dir, m); err != nil {
		return err
	}
	fmt.Printf("Unpacked %d file(s) into %s\n", n, dir)
	return nil
}

func cmdSearch(ctx context.Context, args []string) error {
	if len(args) < 2 {
		usage()
		return errUsage
	}
	dir, err := absDir(args)
	if err != nil {
		return err
	}
	res, err := storage.Search(ctx, dir, storage.SearchQuery{Text: strings.Join(args[1:], " "), Limit: 50})
	if err != nil {
		return err
	}
	for _, r := range res {
		fmt.Printf("text %d: %s\n", r.Index, r.Snippet)
	}
	fmt.Printf("%d match(es)\n", len(res))
	return nil
}

func cmdConfig(cfg config.AppConfig, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if len(args) > 0 && args[0] == "init" {
		if err := config.SaveFile(path, cfg); err != nil {
			return err
		}
		fmt.Println("Wrote", path)
		return nil
	}
	fmt.Println(path)
	return nil
}
