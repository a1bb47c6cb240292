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

// Package dumper writes effective settings out.
//
// [File] writes to a path, [Writer] to any io.Writer such as stdout. Both
// encode with a codec from the codec package:
//
//	encoder, _ := codec.GetEncoder(codec.TypeYAML)
//	err := dumper.NewWriter(os.Stdout, encoder).Dump(ctx, &values)
package dumper
