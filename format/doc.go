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

// Package format renders request and response data for log records.
//
// Every method of [Formatter] is total: serialization and decoding failures
// become an inline placeholder in the returned text, never an error or a
// panic. Output is bounded by [model.Settings.MaxPayloadLength] and
// [model.ExceptionStackSettings.MaxLines].
//
// # Arguments
//
// [Default.Arguments] decides per argument, in this order:
//
//  1. names listed in sensitive.arg_names are replaced by the mask
//  2. framework types (requests, writers, readers, contexts, binding
//     errors) become "[excluded type: Name]"
//  3. uploaded files become {fileName, contentType, size}
//  4. scalars, and any value of a JSON, form, text or multipart request,
//     are logged as is
//  5. everything else becomes "[excluded complex type: path.Name]"
//
// The result is a JSON object in argument order.
//
// # Truncation
//
// [Truncate] keeps the first n runes and appends [TruncatedMarker]. It is
// idempotent: truncating an already truncated text with the same limit
// returns it unchanged.
package format
