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

// Package typename renders Go types the way log records show them.
package typename

import "reflect"

// Simple returns the bare type name of v: no package, no pointer.
// *errors.errorString becomes "errorString". Unnamed types use their
// literal form, nil yields "nil".
func Simple(v any) string {
	if v == nil {
		return "nil"
	}

	return SimpleOf(reflect.TypeOf(v))
}

// SimpleOf is [Simple] for a [reflect.Type].
func SimpleOf(t reflect.Type) string {
	t = deref(t)
	if t.Name() != "" {
		return t.Name()
	}

	return t.String()
}

// Qualified returns the import path qualified name of v's type, pointer
// stripped: "github.com/acme/app/api.CreateUser". Unnamed and predeclared
// types use their literal form.
func Qualified(v any) string {
	if v == nil {
		return "nil"
	}

	return QualifiedOf(reflect.TypeOf(v))
}

// QualifiedOf is [Qualified] for a [reflect.Type].
func QualifiedOf(t reflect.Type) string {
	t = deref(t)
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}

	return t.PkgPath() + "." + t.Name()
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
