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

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSource is returned by [WithSource] for a nil source.
	ErrNilSource = errors.New("source cannot be nil")
	// ErrNilDumper is returned by [WithDumper] for a nil dumper.
	ErrNilDumper = errors.New("dumper cannot be nil")
	// ErrUnknownFormat is returned when a file extension maps to no codec.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrNotLoaded is returned by [Loader.Dump] before a successful Load.
	ErrNotLoaded = errors.New("settings not loaded")
)

// Error describes where loading failed.
type Error struct {
	Source    string // e.g. "source[0]", "json-schema", "settings"
	Field     string // offending key, when known
	Operation string // e.g. "load", "merge", "decode", "validate"
	Err       error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s.%s during %s: %v", e.Source, e.Field, e.Operation, e.Err)
	}

	return fmt.Sprintf("config error in %s during %s: %v", e.Source, e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an [Error] without a field.
func NewError(source, operation string, err error) *Error {
	return &Error{Source: source, Operation: operation, Err: err}
}

// NewFieldError creates an [Error] for a specific key.
func NewFieldError(source, field, operation string, err error) *Error {
	return &Error{Source: source, Field: field, Operation: operation, Err: err}
}
