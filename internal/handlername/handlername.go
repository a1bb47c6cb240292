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

// Package handlername turns handler functions into the "<Type>#<operation>"
// pair shown in log records.
package handlername

import (
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"rivaas.dev/apilog/internal/typename"
)

// Parse splits a runtime function name such as
// "github.com/acme/app/api.(*UserHandler).Get-fm" into its receiver type
// ("UserHandler") and operation ("Get"). Plain functions use the package
// name as the type: "main.listUsers" gives ("main", "listUsers").
func Parse(funcName string) (target, operation string) {
	name := funcName
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	name = stripTypeArgs(name)

	pkg, rest, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}

	if strings.HasPrefix(rest, "(") {
		recv, op, found := strings.Cut(rest, ").")
		if found {
			return strings.TrimLeft(recv, "(*"), op
		}
	}

	if recv, op, found := strings.Cut(rest, "."); found && !strings.HasPrefix(op, "func") {
		return recv, op
	}

	return pkg, rest
}

// FromFunc resolves the name of a function value.
func FromFunc(fn any) (target, operation string) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "", ""
	}

	return Parse(f.Name())
}

// FromHandler resolves an [http.Handler]. Handler funcs are named after the
// function, other handlers after their type and ServeHTTP.
func FromHandler(h http.Handler) (target, operation string) {
	if h == nil {
		return "", ""
	}
	if fn, ok := h.(http.HandlerFunc); ok {
		return FromFunc(fn)
	}

	return typename.Simple(h), "ServeHTTP"
}

func stripTypeArgs(name string) string {
	for {
		open := strings.Index(name, "[")
		if open < 0 {
			return name
		}
		end := strings.Index(name[open:], "]")
		if end < 0 {
			return name
		}
		name = name[:open] + name[open+end+1:]
	}
}
