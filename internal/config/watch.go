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
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "adlicanvas/internal/log"
)

// DefaultWatchDebounce collapses the burst of events an editor save produces.
const DefaultWatchDebounce = 300 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	done chan struct{}
}

// Done is closed once the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Watch observes path until ctx is cancelled. After each debounced change the
// file is reloaded with LoadFile and, if it parses and validates, passed to
// onChange. The parent directory is watched so editors that save through a
// rename are picked up.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(AppConfig)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	w := &Watcher{done: make(chan struct{})}
	go w.loop(ctx, fw, path, debounce, onChange)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, path string, debounce time.Duration, onChange func(AppConfig)) {
	defer close(w.done)
	defer fw.Close()
	l := applog.WithOperation(applog.WithComponent("config"), "watch")

	abs, _ := filepath.Abs(path)
	base := filepath.Base(path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			evAbs, _ := filepath.Abs(ev.Name)
			if filepath.Base(ev.Name) != base && evAbs != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			timer, fire = nil, nil
			cfg, err := LoadFile(path)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				l.Warn("config reload rejected", slog.String("path", path), slog.Any("err", err))
				continue
			}
			l.Info("config reloaded", slog.String("path", path))
			if onChange != nil {
				onChange(cfg)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			l.Warn("watch error", slog.Any("err", err))
		}
	}
}
