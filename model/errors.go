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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMode indicates a log mode other than SIMPLE or DETAILED.
	ErrInvalidMode = errors.New("invalid log mode")

	// ErrInvalidSettings wraps settings validation failures.
	ErrInvalidSettings = errors.New("invalid settings")
)

// PanicError carries a value recovered from a panicking handler together
// with the stack of the goroutine that panicked.
//
// Formatting with %+v renders the message followed by the stack, one frame
// per line, which is what the exception formatter consumes.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError wraps a recovered value.
func NewPanicError(value any, stack []byte) *PanicError {
	return &PanicError{Value: value, Stack: stack}
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// Format implements [fmt.Formatter].
func (e *PanicError) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		_, _ = fmt.Fprint(s, e.Error())
		if len(e.Stack) > 0 {
			_, _ = fmt.Fprint(s, "\n", strings.TrimRight(string(e.Stack), "\n"))
		}
	case verb == 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	default:
		_, _ = fmt.Fprint(s, e.Error())
	}
}
