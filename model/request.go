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
	"net/http"
	"slices"
	"strings"
)

// Request is the read-only view of an incoming HTTP request.
type Request interface {
	Method() string
	// URI is the request path without the query string.
	URI() string
	// RawQuery is the undecoded query string without the leading '?'.
	RawQuery() string
	// Header returns the values of the named header, case-insensitively.
	Header(name string) []string
	// HeaderNames returns the header names in sorted order.
	HeaderNames() []string
	RemoteAddr() string
	ContentType() string
}

// Response is the live response of the current request.
type Response interface {
	// Status returns the status written so far, or 0 when nothing has
	// been written yet.
	Status() int
}

// ResponseFunc adapts a function to [Response].
type ResponseFunc func() int

// Status implements [Response].
func (f ResponseFunc) Status() int { return f() }

// HTTPRequest adapts an [*http.Request] to [Request].
type HTTPRequest struct {
	r *http.Request
}

// NewHTTPRequest wraps r. It returns nil when r is nil so that callers can
// pass the result straight into an [Invocation].
func NewHTTPRequest(r *http.Request) Request {
	if r == nil {
		return nil
	}

	return HTTPRequest{r: r}
}

// Raw returns the wrapped request.
func (h HTTPRequest) Raw() *http.Request { return h.r }

// Method implements [Request].
func (h HTTPRequest) Method() string { return h.r.Method }

// URI implements [Request].
func (h HTTPRequest) URI() string {
	if h.r.URL == nil {
		return h.r.RequestURI
	}
	if p := h.r.URL.EscapedPath(); p != "" {
		return p
	}

	return "/"
}

// RawQuery implements [Request].
func (h HTTPRequest) RawQuery() string {
	if h.r.URL == nil {
		return ""
	}

	return h.r.URL.RawQuery
}

// Header implements [Request].
func (h HTTPRequest) Header(name string) []string {
	if v := h.r.Header.Values(name); len(v) > 0 {
		return v
	}
	// Non-canonical keys set directly on the map.
	for k, v := range h.r.Header {
		if strings.EqualFold(k, name) {
			return v
		}
	}

	return nil
}

// HeaderNames implements [Request].
func (h HTTPRequest) HeaderNames() []string {
	names := make([]string, 0, len(h.r.Header))
	for k := range h.r.Header {
		names = append(names, k)
	}
	slices.Sort(names)

	return names
}

// RemoteAddr implements [Request].
func (h HTTPRequest) RemoteAddr() string { return h.r.RemoteAddr }

// ContentType implements [Request].
func (h HTTPRequest) ContentType() string { return h.r.Header.Get("Content-Type") }

// FirstHeader returns the first value of the named header, or "".
func FirstHeader(r Request, name string) string {
	if r == nil {
		return ""
	}
	if v := r.Header(name); len(v) > 0 {
		return v[0]
	}

	return ""
}
