/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tools

import (
	"fmt"
	"strings"
)

// Mode is the single active tool of the editor.
type Mode int

const (
	Idle Mode = iota
	Transform
	Drawing
	Erasing
	Shape
	Text
	Crop
)

var modeNames = [...]string{"idle", "transform", "drawing", "erasing", "shape", "text", "crop"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return Idle, fmt.Errorf("unknown tool mode %q", s)
}

// checkpointsOnEntry reports whether entering m records a history checkpoint.
func (m Mode) checkpointsOnEntry() bool {
	switch m {
	case Drawing, Erasing, Shape, Text:
		return true
	}
	return false
}

// Buttons is the set of pointer buttons held during a move.
type Buttons uint8

const (
	Primary Buttons = 1 << iota
	Secondary
)

func (b Buttons) Has(o Buttons) bool { return b&o != 0 }
