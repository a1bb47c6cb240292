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

// Package source provides the places settings are loaded from.
//
// Every source returns a nested map with the raw values it found. The
// config package merges the maps in order and decodes the result.
//
//   - [File]: a file on disk or an in-memory document
//   - [OSEnvVar]: environment variables sharing a prefix
//   - [Consul]: a key in Consul's KV store
//
// Example:
//
//	decoder, _ := codec.GetDecoder(codec.TypeYAML)
//	values, err := source.NewFile("apilog.yaml", decoder).Load(ctx)
package source
