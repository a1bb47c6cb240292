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

// Package pathmatch matches request paths against glob patterns.
//
// Patterns follow doublestar semantics: "*" matches any run of characters
// inside one path segment, "**" matches zero or more whole segments, "?"
// matches one character and "{a,b}" matches alternatives. Both the forced
// detail patterns and the URI filter use this package.
package pathmatch

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for patterns doublestar cannot parse.
var ErrBadPattern = errors.New("invalid path pattern")

// Matcher holds an ordered list of validated patterns.
type Matcher struct {
	patterns []string
}

// New validates every pattern and returns a matcher that tests them in the
// given order.
func New(patterns ...string) (*Matcher, error) {
	m := &Matcher{patterns: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
		m.patterns = append(m.patterns, p)
	}

	return m, nil
}

// MustNew is like [New] but panics on an invalid pattern.
func MustNew(patterns ...string) *Matcher {
	m, err := New(patterns...)
	if err != nil {
		panic(err)
	}

	return m
}

// Match returns the first pattern matching path.
func (m *Matcher) Match(path string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, p := range m.patterns {
		// Patterns were validated in New, so the error is always nil.
		if ok, _ := doublestar.Match(p, path); ok {
			return p, true
		}
	}

	return "", false
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}

	return len(m.patterns)
}
