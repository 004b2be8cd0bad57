/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeAutosaver struct {
	dir   string
	calls int
	err   error
}

func (f *fakeAutosaver) ReportDir() string { return f.dir }

func (f *fakeAutosaver) Autosave() (string, error) {
	f.calls++
	return filepath.Join(f.dir, "autosave"), f.err
}

func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = old
		_, _ = io.Copy(io.Discard, r)
	})
}

func interceptExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "adlicanvas crash report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("report content missing: %s", s)
	}
}

func TestRecoverWritesReportAndAutosaves(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	src := &fakeAutosaver{dir: t.TempDir()}

	func() {
		defer Recover(src)
		panic("kaboom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	if src.calls != 1 {
		t.Fatalf("autosave called %d times", src.calls)
	}
	matches, _ := filepath.Glob(filepath.Join(src.dir, "crash-*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one crash report in %s, got %v", src.dir, matches)
	}
	b, _ := os.ReadFile(matches[0])
	if !strings.Contains(string(b), "Panic: kaboom") {
		t.Fatalf("report does not contain panic: %s", b)
	}
}

func TestRecoverAutosaveFailureStillExits(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	src := &fakeAutosaver{dir: t.TempDir(), err: errors.New("disk full")}
	func() {
		defer Recover(src)
		panic("again")
	}()
	if *code != 2 || src.calls != 1 {
		t.Fatalf("exit=%d calls=%d", *code, src.calls)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	code := interceptExit(t)
	func() {
		defer Recover(nil)
	}()
	if *code != -1 {
		t.Fatalf("exit should not be called, got %d", *code)
	}
}
