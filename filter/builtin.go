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

package filter

import (
	"context"
	"strings"
	"time"

	"rivaas.dev/apilog/internal/pathmatch"
	"rivaas.dev/apilog/model"
)

// Orders of the built-in filters.
const (
	OrderURIPattern     = -100
	OrderRequestHeader  = -90
	OrderHandlerName    = -80
	OrderErrorsOnly     = 0
	OrderProcessingTime = 10
)

// URIPattern skips calls whose request path matches one of its patterns.
// It runs in both stages.
type URIPattern struct {
	matcher *pathmatch.Matcher
}

// NewURIPattern compiles the exclude patterns.
func NewURIPattern(patterns ...string) (*URIPattern, error) {
	m, err := pathmatch.New(patterns...)
	if err != nil {
		return nil, err
	}

	return &URIPattern{matcher: m}, nil
}

func (f *URIPattern) Order() int   { return OrderURIPattern }
func (f *URIPattern) Name() string { return "uri-pattern" }

func (f *URIPattern) SkipPre(_ context.Context, in PreInput) (bool, error) {
	return f.matches(in.Invocation), nil
}

func (f *URIPattern) SkipPost(_ context.Context, in PostInput) (bool, error) {
	return f.matches(in.Invocation), nil
}

func (f *URIPattern) matches(inv *model.Invocation) bool {
	if inv == nil || inv.Request == nil {
		return false
	}
	_, ok := f.matcher.Match(inv.Request.URI())

	return ok
}

// RequestHeader skips calls carrying one of the expected header values.
// Values are trimmed and compared case-insensitively.
type RequestHeader struct {
	expected map[string]string
}

// NewRequestHeader returns the filter for name → value pairs. Pairs with a
// blank name or value are dropped.
func NewRequestHeader(expected map[string]string) *RequestHeader {
	f := &RequestHeader{expected: make(map[string]string, len(expected))}
	for name, value := range expected {
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		f.expected[name] = value
	}

	return f
}

func (f *RequestHeader) Order() int   { return OrderRequestHeader }
func (f *RequestHeader) Name() string { return "request-header" }

func (f *RequestHeader) SkipPost(_ context.Context, in PostInput) (bool, error) {
	if in.Invocation == nil || in.Invocation.Request == nil {
		return false, nil
	}
	for name, want := range f.expected {
		got := strings.TrimSpace(model.FirstHeader(in.Invocation.Request, name))
		if got != "" && strings.EqualFold(got, want) {
			return true, nil
		}
	}

	return false, nil
}

// HandlerName skips calls to excluded handler types or operations.
// It runs in both stages.
type HandlerName struct {
	types      map[string]struct{}
	operations map[string]struct{}
}

// NewHandlerName returns the filter for the given simple type names and
// operation names.
func NewHandlerName(types, operations []string) *HandlerName {
	return &HandlerName{types: toSet(types), operations: toSet(operations)}
}

func (f *HandlerName) Order() int   { return OrderHandlerName }
func (f *HandlerName) Name() string { return "handler-name" }

func (f *HandlerName) SkipPre(_ context.Context, in PreInput) (bool, error) {
	return f.matches(in.Invocation), nil
}

func (f *HandlerName) SkipPost(_ context.Context, in PostInput) (bool, error) {
	return f.matches(in.Invocation), nil
}

func (f *HandlerName) matches(inv *model.Invocation) bool {
	if inv == nil {
		return false
	}
	if _, ok := f.types[inv.Target]; ok && inv.Target != "" {
		return true
	}
	_, ok := f.operations[inv.Operation]

	return ok && inv.Operation != ""
}

// ErrorsOnly skips calls that neither failed nor answered with a status of
// 400 or above.
type ErrorsOnly struct{}

func (ErrorsOnly) Order() int   { return OrderErrorsOnly }
func (ErrorsOnly) Name() string { return "errors-only" }

func (ErrorsOnly) SkipPost(_ context.Context, in PostInput) (bool, error) {
	if in.Err != nil {
		return false, nil
	}
	status, ok := in.Status()

	return !ok || status < 400, nil
}

// ProcessingTime skips calls faster than Min, or slower than Max when Max is
// positive.
type ProcessingTime struct {
	Min time.Duration
	Max time.Duration
}

func (ProcessingTime) Order() int   { return OrderProcessingTime }
func (ProcessingTime) Name() string { return "processing-time" }

func (f ProcessingTime) SkipPost(_ context.Context, in PostInput) (bool, error) {
	if in.Elapsed < f.Min {
		return true, nil
	}

	return f.Max > 0 && in.Elapsed > f.Max, nil
}

type preFunc struct {
	name  string
	order int
	fn    func(context.Context, PreInput) (bool, error)
}

func (f *preFunc) Order() int   { return f.order }
func (f *preFunc) Name() string { return f.name }

func (f *preFunc) SkipPre(ctx context.Context, in PreInput) (bool, error) { return f.fn(ctx, in) }

// PreFunc adapts a function into a pre-filter.
//
//	filter.PreFunc("health", -50, func(_ context.Context, in filter.PreInput) (bool, error) {
//		return in.Invocation.Operation == "Health", nil
//	})
func PreFunc(name string, order int, fn func(context.Context, PreInput) (bool, error)) PreFilter {
	return &preFunc{name: name, order: order, fn: fn}
}

type postFunc struct {
	name  string
	order int
	fn    func(context.Context, PostInput) (bool, error)
}

func (f *postFunc) Order() int   { return f.order }
func (f *postFunc) Name() string { return f.name }

func (f *postFunc) SkipPost(ctx context.Context, in PostInput) (bool, error) { return f.fn(ctx, in) }

// PostFunc adapts a function into a post-filter.
func PostFunc(name string, order int, fn func(context.Context, PostInput) (bool, error)) PostFilter {
	return &postFunc{name: name, order: order, fn: fn}
}

// FromSettings builds the built-in filters declared in s. Filters whose
// settings are empty are left out.
func FromSettings(s model.FilterSettings) ([]Filter, error) {
	var out []Filter
	if len(s.ExcludeURIPatterns) > 0 {
		f, err := NewURIPattern(s.ExcludeURIPatterns...)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if f := NewRequestHeader(s.ExcludeHeaders); len(f.expected) > 0 {
		out = append(out, f)
	}
	if len(s.ExcludeHandlerTypes) > 0 || len(s.ExcludeOperations) > 0 {
		out = append(out, NewHandlerName(s.ExcludeHandlerTypes, s.ExcludeOperations))
	}
	if s.ErrorsOnly {
		out = append(out, ErrorsOnly{})
	}
	if s.MinProcessingTime > 0 || s.MaxProcessingTime > 0 {
		out = append(out, ProcessingTime{Min: s.MinProcessingTime, Max: s.MaxProcessingTime})
	}

	return out, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}

	return set
}
