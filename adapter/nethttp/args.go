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

package nethttp

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"rivaas.dev/apilog/model"
)

// Args is the default [ArgsFunc]. Path wildcards of pattern come first, in
// pattern order, followed by [QueryArgs].
func Args(r *http.Request, pattern string) []model.Arg {
	if r == nil || r.URL == nil {
		return nil
	}

	return append(PathArgs(pattern, r.URL.EscapedPath()), QueryArgs(r)...)
}

// QueryArgs returns the query parameters of r sorted by name. A parameter
// given once is a string, one given several times a []string.
func QueryArgs(r *http.Request) []model.Arg {
	if r == nil || r.URL == nil || r.URL.RawQuery == "" {
		return nil
	}

	query := r.URL.Query()
	args := make([]model.Arg, 0, len(query))
	for _, name := range slices.Sorted(maps.Keys(query)) {
		values := query[name]
		if len(values) == 1 {
			args = append(args, model.Arg{Name: name, Value: values[0]})
			continue
		}
		args = append(args, model.Arg{Name: name, Value: values})
	}

	return args
}

// PathArgs matches path against the wildcards of a ServeMux pattern such as
// "GET /orders/{id}/items/{rest...}". Segments that are not wildcards are
// not compared; the pattern is assumed to have matched already.
func PathArgs(pattern, path string) []model.Arg {
	if _, rest, ok := strings.Cut(pattern, " "); ok {
		pattern = strings.TrimLeft(rest, " \t")
	}
	slash := strings.IndexByte(pattern, '/')
	if slash < 0 {
		return nil
	}

	wildcards := strings.Split(strings.Trim(pattern[slash:], "/"), "/")
	segments := strings.Split(strings.Trim(path, "/"), "/")

	var args []model.Arg
	for i, w := range wildcards {
		if len(w) < 3 || w[0] != '{' || w[len(w)-1] != '}' {
			continue
		}
		name := w[1 : len(w)-1]
		if name == "$" || i >= len(segments) {
			continue
		}
		if multi, ok := strings.CutSuffix(name, "..."); ok {
			args = append(args, model.Arg{Name: multi, Value: unescape(strings.Join(segments[i:], "/"))})
			break
		}
		args = append(args, model.Arg{Name: name, Value: unescape(segments[i])})
	}

	return args
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}

	return s
}
