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

import "context"

// Arg is one declared argument of an intercepted call.
// Name may be empty when the framework cannot resolve it.
type Arg struct {
	Name  string
	Value any
}

// ProceedFunc runs the wrapped handler.
type ProceedFunc func(ctx context.Context) (any, error)

// Invocation describes one handler call as seen by the interceptor.
//
// Request and Response are nil outside an HTTP context.
type Invocation struct {
	// Target is the simple type name of the handler's receiver,
	// or the package name for plain functions.
	Target string
	// Operation is the handler's method or function name.
	Operation string

	Args []Arg
	// ResolveArgs, when set, replaces Args. It is called only for calls
	// that are logged, and a panic in it only empties the logged arguments.
	ResolveArgs func() []Arg

	Request  Request
	Response Response

	Proceed ProceedFunc
}

// HandlerID returns "<Target>#<Operation>".
func (inv *Invocation) HandlerID() string {
	switch {
	case inv.Target == "":
		return inv.Operation
	case inv.Operation == "":
		return inv.Target
	}

	return inv.Target + "#" + inv.Operation
}
