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

package format

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"rivaas.dev/apilog/model"
)

// Placeholders written instead of content.
const (
	Omitted         = "[omitted]"
	TruncatedMarker = "...[truncated]"
	EmptyBody       = "[response body empty]"
	StreamBody      = "[response contains stream-like body]"
	UnknownIP       = "unknown"
)

// Formatter renders the content of a log record.
type Formatter interface {
	// Arguments renders the handler's arguments as a JSON object.
	Arguments(args []model.Arg, req model.Request, s *model.Settings) string
	// Queries renders the decoded query string. It reports false when the
	// request has none.
	Queries(req model.Request, s *model.Settings) (string, bool)
	// ReturnValue renders the handler result. It reports false outside the
	// detailed mode or for a nil result.
	ReturnValue(v any, mode model.Mode, s *model.Settings) (string, bool)
	// Exception renders an error, with stack lines when enabled.
	Exception(err error, mode model.Mode, s *model.Settings) string
	// Headers returns the request headers with sensitive values masked.
	Headers(req model.Request, s *model.Settings) map[string]string
	// ClientIP returns the originating client address.
	ClientIP(req model.Request) string
}

// MarshalFunc serializes a value for a log record.
type MarshalFunc func(v any) ([]byte, error)

// Option configures a [Default] formatter.
type Option func(*Default)

// WithMarshal replaces the JSON serializer used for argument values and
// return values.
func WithMarshal(fn MarshalFunc) Option {
	return func(d *Default) {
		if fn != nil {
			d.marshal = fn
		}
	}
}

// WithInternalTypes adds framework types whose values are never logged.
// Interface types match every implementation, other types match exactly.
//
//	format.New(format.WithInternalTypes(reflect.TypeFor[echo.Context]()))
func WithInternalTypes(types ...reflect.Type) Option {
	return func(d *Default) {
		for _, t := range types {
			if t != nil {
				d.internal = append(d.internal, t)
			}
		}
	}
}

// Default is the built-in [Formatter]. It is stateless after construction
// and safe for concurrent use.
type Default struct {
	marshal  MarshalFunc
	internal []reflect.Type
}

var _ Formatter = (*Default)(nil)

// New returns a [Default] formatter.
func New(opts ...Option) *Default {
	d := &Default{
		marshal: json.Marshal,
		internal: []reflect.Type{
			reflect.TypeFor[*http.Request](),
			reflect.TypeFor[http.ResponseWriter](),
			reflect.TypeFor[io.Reader](),
			reflect.TypeFor[io.Writer](),
			reflect.TypeFor[context.Context](),
			reflect.TypeFor[validator.ValidationErrors](),
		},
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Truncate shortens text to maxLen runes followed by [TruncatedMarker].
// A negative maxLen disables truncation.
func Truncate(text string, maxLen int) string {
	if maxLen < 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	n := 0
	for i := range text {
		if n == maxLen {
			return text[:i] + TruncatedMarker
		}
		n++
	}

	return text
}

func (d *Default) isInternal(v any) bool {
	t := reflect.TypeOf(v)
	for _, it := range d.internal {
		if it.Kind() == reflect.Interface {
			if t.Implements(it) {
				return true
			}
			continue
		}
		if t == it {
			return true
		}
	}

	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}

	return false
}
