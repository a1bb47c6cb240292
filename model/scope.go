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
	"context"
	"sync"
)

// Scope is the decision state of a single intercepted call.
//
// The mode only ever moves from [Simple] to [Detailed]. Once a force
// pattern or a trigger escalates it, the scope is decided and later
// decision points are skipped. The handler result can be stored once.
//
// A Scope is owned by one request. The mutex only protects handlers that
// read it from goroutines they spawn.
type Scope struct {
	mu        sync.Mutex
	mode      Mode
	decided   bool
	result    any
	resultSet bool
	released  bool
}

// NewScope creates a scope starting in the given mode.
func NewScope(initial Mode) *Scope {
	if !initial.Valid() {
		initial = Simple
	}

	return &Scope{mode: initial}
}

// Mode returns the current effective mode.
func (s *Scope) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// Decided reports whether a force pattern or trigger has already settled
// the mode for this request.
func (s *Scope) Decided() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.decided
}

// Escalate switches the scope to [Detailed] and marks it decided.
// It has no effect after [Scope.Release].
func (s *Scope) Escalate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.mode = Detailed
	s.decided = true
}

// SetResult records the handler's return value. Only the first call is kept.
func (s *Scope) SetResult(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resultSet || s.released {
		return
	}
	s.result = v
	s.resultSet = true
}

// Result returns the recorded handler result, or nil.
func (s *Scope) Result() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// Release drops the captured result and freezes the scope.
// It is safe to call more than once.
func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result = nil
	s.released = true
}

// Released reports whether [Scope.Release] has been called.
func (s *Scope) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.released
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope stored in ctx by [WithScope].
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeKey{}).(*Scope)

	return s, ok && s != nil
}
