// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"fmt"
	"strings"
)

// Mode is the effective log mode of a request.
type Mode string

const (
	// Simple publishes a [SimpleRecord].
	Simple Mode = "SIMPLE"
	// Detailed publishes a [DetailedRecord].
	Detailed Mode = "DETAILED"
)

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case Simple:
		return Simple, nil
	case Detailed:
		return Detailed, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == Simple || m == Detailed
}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	return string(m)
}
