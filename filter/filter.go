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

// Package filter decides which intercepted calls are not logged at all.
//
// A filter votes to skip logging. Pre-filters run before the handler and a
// skip there bypasses every other step. Post-filters run after it and a
// skip there discards the record. Filters run in ascending [Filter.Order];
// filters with equal order keep their registration order.
//
// A filter that returns an error or panics is logged and counts as "do not
// skip".
package filter

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"rivaas.dev/apilog/internal/guard"
	"rivaas.dev/apilog/internal/typename"
	"rivaas.dev/apilog/model"
)

// ErrNotAFilter is returned by [NewChain] for a value that implements
// neither [PreFilter] nor [PostFilter].
var ErrNotAFilter = errors.New("filter implements neither SkipPre nor SkipPost")

// Filter is the common part of pre- and post-filters.
type Filter interface {
	// Order places the filter in the chain, lowest first.
	Order() int
}

// Named is implemented by filters that report a name in log messages.
// Filters without it are named after their type.
type Named interface {
	Name() string
}

// PreInput is what a pre-filter sees.
type PreInput struct {
	Invocation *model.Invocation
	Scope      *model.Scope
}

// PostInput is what a post-filter sees.
type PostInput struct {
	Invocation *model.Invocation
	Scope      *model.Scope
	// Result is the handler's return value, nil when it failed.
	Result any
	// Err is the handler's error or a [*model.PanicError].
	Err     error
	Elapsed time.Duration
}

// Status resolves the status code of the finished call.
func (in PostInput) Status() (int, bool) {
	var live model.Response
	if in.Invocation != nil {
		live = in.Invocation.Response
	}

	return model.ResolveStatus(in.Result, live)
}

// PreFilter runs before the handler.
type PreFilter interface {
	Filter
	SkipPre(ctx context.Context, in PreInput) (bool, error)
}

// PostFilter runs after the handler.
type PostFilter interface {
	Filter
	SkipPost(ctx context.Context, in PostInput) (bool, error)
}

// Chain is an ordered, immutable set of filters.
// It is safe for concurrent use.
type Chain struct {
	logger *slog.Logger
	pre    []PreFilter
	post   []PostFilter
}

// NewChain sorts filters by order once. A filter may implement both stages.
func NewChain(logger *slog.Logger, filters ...Filter) (*Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sorted := slices.Clone(filters)
	slices.SortStableFunc(sorted, func(a, b Filter) int {
		return cmp.Compare(a.Order(), b.Order())
	})

	c := &Chain{logger: logger}
	for _, f := range sorted {
		pre, isPre := f.(PreFilter)
		post, isPost := f.(PostFilter)
		if !isPre && !isPost {
			return nil, fmt.Errorf("%w: %s", ErrNotAFilter, NameOf(f))
		}
		if isPre {
			c.pre = append(c.pre, pre)
		}
		if isPost {
			c.post = append(c.post, post)
		}
	}

	return c, nil
}

// EvaluatePre reports whether a pre-filter voted to skip, and which one.
func (c *Chain) EvaluatePre(ctx context.Context, in PreInput) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, f := range c.pre {
		name := NameOf(f)
		if guard.Predicate(ctx, c.logger, "pre-filter", name, func() (bool, error) {
			return f.SkipPre(ctx, in)
		}) {
			return name, true
		}
	}

	return "", false
}

// EvaluatePost reports whether a post-filter voted to skip, and which one.
func (c *Chain) EvaluatePost(ctx context.Context, in PostInput) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, f := range c.post {
		name := NameOf(f)
		if guard.Predicate(ctx, c.logger, "post-filter", name, func() (bool, error) {
			return f.SkipPost(ctx, in)
		}) {
			return name, true
		}
	}

	return "", false
}

// Len returns the number of pre- and post-filters.
func (c *Chain) Len() (pre, post int) {
	if c == nil {
		return 0, 0
	}

	return len(c.pre), len(c.post)
}

// NameOf returns the filter's name.
func NameOf(f Filter) string {
	if n, ok := f.(Named); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}

	return typename.Simple(f)
}
