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

package logging

import "errors"

var (
	// ErrNilOutput indicates a nil writer was given to [WithOutput].
	ErrNilOutput = errors.New("output writer cannot be nil")

	// ErrNilLogger indicates a nil logger was given to [WithCustomLogger].
	ErrNilLogger = errors.New("custom logger is nil")

	// ErrInvalidHandler indicates an unsupported handler type.
	// Valid types: JSONHandler, TextHandler, ConsoleHandler.
	ErrInvalidHandler = errors.New("invalid handler type")

	// ErrInvalidSampling indicates negative sampling values.
	ErrInvalidSampling = errors.New("sampling config values must be non-negative")

	// ErrCannotChangeLevel is returned by [Logger.SetLevel] when the level
	// is controlled by a custom logger.
	ErrCannotChangeLevel = errors.New("cannot change level on custom logger")
)
