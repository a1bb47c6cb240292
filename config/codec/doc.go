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

// Package codec converts configuration data between bytes and Go values.
//
// [Encoder] and [Decoder] implementations are kept in a registry keyed by
// [Type]. JSON, YAML and TOML are registered for files, Consul values and
// dumps; the environment codec turns KEY=value lines into nested maps.
//
// # Custom Codecs
//
//	codec.RegisterDecoder(codec.Type("hcl"), hclCodec{})
//
// # Single values
//
// Caster decoders read one scalar, such as a Consul key holding only
// "DETAILED" or "2048":
//
//	decoder, _ := codec.GetDecoder(codec.TypeCasterInt)
//	var value any
//	_ = decoder.Decode([]byte("2048"), &value) // value is int(2048)
package codec
