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

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rivaas.dev/apilog/config/codec"
)

// EnvOption configures an [OSEnvVar].
type EnvOption func(*OSEnvVar)

// WithKnownKeys matches variable names against a known key tree instead of
// nesting on every underscore. See [codec.EnvVarCodec].
func WithKnownKeys(keys map[string]any) EnvOption {
	return func(e *OSEnvVar) {
		e.decoder = codec.EnvVarCodec{Keys: keys}
	}
}

// OSEnvVar loads the environment variables that start with a prefix.
// The prefix is stripped before the names are decoded, so with prefix
// "APILOG_" the variable APILOG_ENABLED becomes the key "enabled".
type OSEnvVar struct {
	prefix  string
	decoder codec.Decoder
	environ func() []string
}

// NewOSEnvVar creates an environment source for prefix.
func NewOSEnvVar(prefix string, opts ...EnvOption) *OSEnvVar {
	e := &OSEnvVar{
		prefix:  prefix,
		decoder: codec.EnvVarCodec{},
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Load implements the config source contract. Values are returned as
// strings; typing happens when the settings are decoded.
func (e *OSEnvVar) Load(_ context.Context) (map[string]any, error) {
	env := e.environ()
	lines := make([]string, 0, len(env))
	for _, kv := range env {
		if rest, ok := strings.CutPrefix(kv, e.prefix); ok {
			lines = append(lines, rest)
		}
	}

	var conf map[string]any
	if err := e.decoder.Decode([]byte(strings.Join(lines, "\n")), &conf); err != nil {
		return nil, fmt.Errorf("failed to decode environment variables: %w", err)
	}

	return conf, nil
}
