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
	"reflect"
	"strconv"
)

// StatusCarrier is a handler result that declares its own HTTP status.
type StatusCarrier interface {
	StatusCode() int
}

// BodyCarrier is a structured response: a status plus a body.
type BodyCarrier interface {
	StatusCarrier
	Body() any
}

// Reply is the generic structured response handlers may return.
//
//	return model.Reply[User]{Status: http.StatusCreated, Payload: u}, nil
type Reply[T any] struct {
	Status  int
	Header  http.Header
	Payload T
}

// NewReply builds a [Reply].
func NewReply[T any](status int, payload T) Reply[T] {
	return Reply[T]{Status: status, Payload: payload}
}

// StatusCode implements [StatusCarrier].
func (r Reply[T]) StatusCode() int { return r.Status }

// Body implements [BodyCarrier].
func (r Reply[T]) Body() any { return r.Payload }

// View is a template-rendering result: a view name plus its model.
// Its content is never logged.
type View struct {
	Name  string
	Model map[string]any
}

// CarriedStatus returns the status declared by a [StatusCarrier] result.
func CarriedStatus(result any) (int, bool) {
	sc, ok := result.(StatusCarrier)
	if !ok || isNil(sc) {
		return 0, false
	}

	return sc.StatusCode(), true
}

// ResolveStatus determines the status code of a finished call.
// The structured result wins, then a raw response object returned by the
// handler, then the live response. It returns false when none is known.
func ResolveStatus(result any, live Response) (int, bool) {
	if code, ok := CarriedStatus(result); ok {
		return code, true
	}

	switch r := result.(type) {
	case *http.Response:
		if r != nil {
			return r.StatusCode, true
		}
	case Response:
		if isNil(r) {
			break
		}
		if code := r.Status(); code > 0 {
			return code, true
		}
	}

	if !isNil(live) {
		if code := live.Status(); code > 0 {
			return code, true
		}
	}

	return 0, false
}

// isNil reports whether v is nil or a nil pointer, map, slice, func or
// channel held in an interface.
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

// ErrorIndicator classifies a finished call for quick filtering of records.
//
// errType is the simple type name of the error and is only used when failed
// is true. A status of 0 means unknown.
func ErrorIndicator(failed bool, errType string, status int) string {
	if failed {
		if status == 0 || status >= 500 {
			return "ERROR:" + errType
		}
		return "WARN:" + errType
	}

	switch {
	case status >= 500:
		return "ERROR_HTTP_STATUS_" + strconv.Itoa(status)
	case status >= 400:
		return "WARN_HTTP_STATUS_" + strconv.Itoa(status)
	}

	return ""
}
