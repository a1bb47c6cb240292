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

// Package trigger holds the named predicates that escalate a call from
// SIMPLE to DETAILED logging.
//
// Only triggers listed in the settings' allow-list run. They run in
// registration order and the first one that fires wins. A trigger that
// returns an error or panics is logged and counts as "not fired".
//
// The same set is evaluated twice per call: before the handler (no result,
// no error) and after it.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rivaas.dev/apilog/internal/guard"
	"rivaas.dev/apilog/model"
)

var (
	// ErrUnnamedTrigger is returned for a trigger with an empty name.
	ErrUnnamedTrigger = errors.New("trigger has no name")
	// ErrDuplicateTrigger is returned when two triggers share a name.
	ErrDuplicateTrigger = errors.New("duplicate trigger name")
)

// Input is what a trigger sees.
type Input struct {
	Invocation *model.Invocation
	Scope      *model.Scope
	// Err is nil before the handler runs.
	Err      error
	Settings *model.Settings
}

// Trigger escalates a call to DETAILED.
type Trigger interface {
	// Name is the identifier used in the allow-list.
	Name() string
	ShouldEscalate(ctx context.Context, in Input) (bool, error)
}

// Set is an ordered collection of triggers.
// It is safe for concurrent use.
type Set struct {
	logger   *slog.Logger
	triggers []Trigger
}

// NewSet keeps triggers in the given order.
func NewSet(logger *slog.Logger, triggers ...Trigger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: %T", ErrUnnamedTrigger, t)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTrigger, name)
		}
		seen[name] = struct{}{}
	}

	return &Set{logger: logger, triggers: triggers}, nil
}

// Evaluate returns the name of the first allow-listed trigger that fires.
// Without settings every trigger is allowed.
func (s *Set) Evaluate(ctx context.Context, in Input) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, t := range s.triggers {
		name := t.Name()
		if in.Settings != nil && !in.Settings.TriggerEnabled(name) {
			continue
		}
		if guard.Predicate(ctx, s.logger, "trigger", name, func() (bool, error) {
			return t.ShouldEscalate(ctx, in)
		}) {
			return name, true
		}
	}

	return "", false
}

// Names returns the trigger names in evaluation order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.triggers))
	for i, t := range s.triggers {
		names[i] = t.Name()
	}

	return names
}

type funcTrigger struct {
	name string
	fn   func(context.Context, Input) (bool, error)
}

func (f *funcTrigger) Name() string { return f.name }

func (f *funcTrigger) ShouldEscalate(ctx context.Context, in Input) (bool, error) {
	return f.fn(ctx, in)
}

// Func adapts a function into a trigger. Remember to add name to the
// allow-list.
func Func(name string, fn func(context.Context, Input) (bool, error)) Trigger {
	return &funcTrigger{name: name, fn: fn}
}
