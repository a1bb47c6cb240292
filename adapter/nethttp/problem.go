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
	"encoding/json"
	"errors"
	"net/http"
)

// ProblemContentType is the media type of RFC 9457 problem documents.
const ProblemContentType = "application/problem+json; charset=utf-8"

// StatusCoder is implemented by errors that choose their HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// Coder is implemented by errors that carry a machine-readable code.
// The code becomes the problem type.
type Coder interface {
	Code() string
}

// Problem is an RFC 9457 problem detail.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Extensions are marshaled inline. Keys that collide with the
	// standard members are ignored.
	Extensions map[string]any `json:"-"`
}

// MarshalJSON implements [json.Marshaler].
func (p Problem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}

	return json.Marshal(m)
}

// NewProblem describes err as a problem about r. The status comes from a
// [StatusCoder] in err's chain and defaults to 500.
func NewProblem(r *http.Request, err error) Problem {
	status := http.StatusInternalServerError
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.HTTPStatus()
	}

	p := Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}
	if r != nil && r.URL != nil {
		p.Instance = r.URL.Path
	}

	var coded Coder
	if errors.As(err, &coded) && coded.Code() != "" {
		p.Type = coded.Code()
		p.Extensions = map[string]any{"code": coded.Code()}
	}

	return p
}

// WriteProblem is the default [ErrorWriter].
func WriteProblem(w http.ResponseWriter, r *http.Request, err error) {
	p := NewProblem(r, err)

	w.Header().Set("Content-Type", ProblemContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
