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

// Package model holds the types shared by the apilog packages: the settings
// object, the per-request [Scope], the intercepted [Invocation] and the
// published log records.
//
// # Log modes
//
// Every intercepted call ends in one of two modes. [Simple] produces a
// [SimpleRecord] with timing, status and error information. [Detailed]
// produces a [DetailedRecord], which additionally carries request headers,
// the decoded query, the formatted arguments and the formatted response.
//
// A request starts in [Settings.LogMode] and may be escalated to [Detailed]
// at most once through [Scope.Escalate]. It never goes back.
//
// # Request scope
//
// The scope is threaded through [context.Context]:
//
//	scope := model.NewScope(settings.LogMode)
//	ctx = model.WithScope(ctx, scope)
//	defer scope.Release()
//
// Handlers and extensions read it back with [ScopeFrom].
package model
